package aws

import (
	"context"
	"fmt"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sts"
)

const serviceAccountTokenPath = "/var/run/secrets/kubernetes.io/serviceaccount/token"

// Options narrows the default AWS config chain. Empty fields fall back to
// the environment.
type Options struct {
	Region string
	// Profile is a shared config profile. When empty, THORTX_AWS_PROFILE and
	// then AWS_PROFILE are consulted.
	Profile string
}

// LoadAWSConfig loads the AWS config used for KMS signing. KMS calls need a
// region, so a config without one is an error.
func LoadAWSConfig(ctx context.Context, opts Options) (aws.Config, error) {
	var loadOpts []func(*config.LoadOptions) error

	// inside Kubernetes credentials come from the service account
	if profile := resolveProfile(opts.Profile); profile != "" && !inKubernetes() {
		loadOpts = append(loadOpts, config.WithSharedConfigProfile(profile))
	}
	if opts.Region != "" {
		loadOpts = append(loadOpts, config.WithRegion(opts.Region))
	}

	cfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return aws.Config{}, fmt.Errorf("failed to load AWS config: %w", err)
	}
	if cfg.Region == "" {
		return aws.Config{}, fmt.Errorf("no AWS region configured: set --aws-region or AWS_REGION")
	}
	return cfg, nil
}

func resolveProfile(explicit string) string {
	if explicit != "" {
		return explicit
	}
	if profile := os.Getenv("THORTX_AWS_PROFILE"); profile != "" {
		return profile
	}
	return os.Getenv("AWS_PROFILE")
}

func inKubernetes() bool {
	_, err := os.Stat(serviceAccountTokenPath)
	return err == nil
}

// CallerIdentity is the AWS principal a config resolves to.
type CallerIdentity struct {
	Account string
	Arn     string
}

// GetCallerIdentity asks STS which principal cfg authenticates as.
func GetCallerIdentity(ctx context.Context, cfg aws.Config) (*CallerIdentity, error) {
	out, err := sts.NewFromConfig(cfg).GetCallerIdentity(ctx, &sts.GetCallerIdentityInput{})
	if err != nil {
		return nil, fmt.Errorf("failed to get caller identity: %w", err)
	}
	return &CallerIdentity{
		Account: aws.ToString(out.Account),
		Arn:     aws.ToString(out.Arn),
	}, nil
}
