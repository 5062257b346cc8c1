package config

import (
	"fmt"
	"net/url"
	"strings"

	"k8s.io/apimachinery/pkg/util/validation/field"
)

// Environment variable names for the thortx CLI
const (
	EnvNodeURL        = "THORTX_NODE_URL"
	EnvNetwork        = "THORTX_NETWORK"
	EnvPrivateKey     = "THORTX_PRIVATE_KEY"
	EnvSignerType     = "THORTX_SIGNER_TYPE"
	EnvKMSKeyID       = "THORTX_KMS_KEY_ID"
	EnvAWSRegion      = "THORTX_AWS_REGION"
	EnvJournalType    = "THORTX_JOURNAL_TYPE"
	EnvJournalPath    = "THORTX_JOURNAL_PATH"
	EnvRedisAddress   = "THORTX_REDIS_ADDRESS"
	EnvRedisPassword  = "THORTX_REDIS_PASSWORD"
	EnvRedisDB        = "THORTX_REDIS_DB"
	EnvRedisKeyPrefix = "THORTX_REDIS_KEY_PREFIX"
	EnvVerbose        = "THORTX_VERBOSE"
)

type NetworkName string

const (
	NetworkName_Mainnet NetworkName = "mainnet"
	NetworkName_Testnet NetworkName = "testnet"
	NetworkName_Solo    NetworkName = "solo"
)

// Chain tags are the last byte of each network's genesis block id.
const (
	ChainTag_Mainnet byte = 0x4a
	ChainTag_Testnet byte = 0x27
	ChainTag_Solo    byte = 0xf6
)

var NetworkToChainTag = map[NetworkName]byte{
	NetworkName_Mainnet: ChainTag_Mainnet,
	NetworkName_Testnet: ChainTag_Testnet,
	NetworkName_Solo:    ChainTag_Solo,
}

var NetworkToDefaultNodeURL = map[NetworkName]string{
	NetworkName_Mainnet: "https://mainnet.vechain.org",
	NetworkName_Testnet: "https://testnet.vechain.org",
	NetworkName_Solo:    "http://127.0.0.1:8669",
}

// GetChainTagForNetwork returns the chain tag of a known network.
func GetChainTagForNetwork(network NetworkName) (byte, error) {
	tag, ok := NetworkToChainTag[network]
	if !ok {
		return 0, fmt.Errorf("unsupported network: %s", network)
	}
	return tag, nil
}

// GetSupportedNetworksString returns supported networks for CLI help
func GetSupportedNetworksString() string {
	return fmt.Sprintf("%s (0x%02x), %s (0x%02x), %s (0x%02x)",
		NetworkName_Mainnet, ChainTag_Mainnet,
		NetworkName_Testnet, ChainTag_Testnet,
		NetworkName_Solo, ChainTag_Solo)
}

// Transaction defaults
const (
	// DefaultExpiration is 720 blocks, about two hours at 10s per block
	DefaultExpiration   uint32 = 720
	DefaultGasPriceCoef uint8  = 0
)

type SignerType string

const (
	SignerType_Local  SignerType = "local"
	SignerType_AWSKMS SignerType = "aws-kms"
)

type SignerConfig struct {
	Type       SignerType `json:"type" yaml:"type"`
	PrivateKey string     `json:"privateKey" yaml:"privateKey"`
	KMSKeyID   string     `json:"kmsKeyId" yaml:"kmsKeyId"`
	AWSRegion  string     `json:"awsRegion" yaml:"awsRegion"`
}

func (sc *SignerConfig) Validate(path *field.Path) field.ErrorList {
	var allErrors field.ErrorList
	switch sc.Type {
	case SignerType_Local:
		key := strings.TrimPrefix(sc.PrivateKey, "0x")
		if key == "" {
			allErrors = append(allErrors, field.Required(path.Child("privateKey"), "privateKey is required for the local signer"))
		} else if len(key) != 64 {
			allErrors = append(allErrors, field.Invalid(path.Child("privateKey"), "<redacted>", "private key must be 32 bytes (64 hex chars)"))
		}
	case SignerType_AWSKMS:
		if sc.KMSKeyID == "" {
			allErrors = append(allErrors, field.Required(path.Child("kmsKeyId"), "kmsKeyId is required for the aws-kms signer"))
		}
	default:
		allErrors = append(allErrors, field.NotSupported(path.Child("type"), sc.Type, []string{string(SignerType_Local), string(SignerType_AWSKMS)}))
	}
	return allErrors
}

type JournalType string

const (
	JournalType_Memory JournalType = "memory"
	JournalType_Badger JournalType = "badger"
	JournalType_Redis  JournalType = "redis"
)

type RedisConfig struct {
	Address   string `json:"address" yaml:"address"`
	Password  string `json:"password" yaml:"password"`
	DB        int    `json:"db" yaml:"db"`
	KeyPrefix string `json:"keyPrefix" yaml:"keyPrefix"`
}

type JournalConfig struct {
	Type     JournalType  `json:"type" yaml:"type"`
	DataPath string       `json:"dataPath" yaml:"dataPath"`
	Redis    *RedisConfig `json:"redis,omitempty" yaml:"redis,omitempty"`
}

func (jc *JournalConfig) Validate(path *field.Path) field.ErrorList {
	var allErrors field.ErrorList
	switch jc.Type {
	case JournalType_Memory:
	case JournalType_Badger:
		if jc.DataPath == "" {
			allErrors = append(allErrors, field.Required(path.Child("dataPath"), "dataPath is required for the badger journal"))
		}
	case JournalType_Redis:
		if jc.Redis == nil || jc.Redis.Address == "" {
			allErrors = append(allErrors, field.Required(path.Child("redis", "address"), "redis address is required for the redis journal"))
		} else if jc.Redis.DB < 0 || jc.Redis.DB > 15 {
			allErrors = append(allErrors, field.Invalid(path.Child("redis", "db"), jc.Redis.DB, "db must be between 0-15"))
		}
	default:
		allErrors = append(allErrors, field.NotSupported(path.Child("type"), jc.Type,
			[]string{string(JournalType_Memory), string(JournalType_Badger), string(JournalType_Redis)}))
	}
	return allErrors
}

// ClientConfig is the complete configuration of the thortx client
type ClientConfig struct {
	NodeURL string      `json:"nodeUrl" yaml:"nodeUrl"`
	Network NetworkName `json:"network" yaml:"network"`

	// Transaction defaults
	Expiration   uint32 `json:"expiration" yaml:"expiration"`
	GasPriceCoef uint8  `json:"gasPriceCoef" yaml:"gasPriceCoef"`

	Signer  SignerConfig  `json:"signer" yaml:"signer"`
	Journal JournalConfig `json:"journal" yaml:"journal"`

	Debug   bool `json:"debug" yaml:"debug"`
	Verbose bool `json:"verbose" yaml:"verbose"`
}

// Validate checks the configuration and fills the node URL from the network when unset.
func (c *ClientConfig) Validate() error {
	var allErrors field.ErrorList

	if c.Network != "" {
		if _, ok := NetworkToChainTag[c.Network]; !ok {
			allErrors = append(allErrors, field.NotSupported(field.NewPath("network"), c.Network,
				[]string{string(NetworkName_Mainnet), string(NetworkName_Testnet), string(NetworkName_Solo)}))
		} else if c.NodeURL == "" {
			c.NodeURL = NetworkToDefaultNodeURL[c.Network]
		}
	}

	if c.NodeURL == "" {
		allErrors = append(allErrors, field.Required(field.NewPath("nodeUrl"), "nodeUrl or network is required"))
	} else if u, err := url.Parse(c.NodeURL); err != nil || u.Scheme == "" || u.Host == "" {
		allErrors = append(allErrors, field.Invalid(field.NewPath("nodeUrl"), c.NodeURL, "must be an absolute http(s) URL"))
	}

	if c.Expiration == 0 {
		c.Expiration = DefaultExpiration
	}

	allErrors = append(allErrors, c.Signer.Validate(field.NewPath("signer"))...)
	allErrors = append(allErrors, c.Journal.Validate(field.NewPath("journal"))...)

	if len(allErrors) > 0 {
		return allErrors.ToAggregate()
	}
	return nil
}
