package thorClient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/thortx/thortx-go/pkg/thor"
	"github.com/thortx/thortx-go/pkg/tx"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// RetryConfig configures retry behavior for idempotent requests and
// transport failures.
type RetryConfig struct {
	MaxAttempts     int
	InitialBackoff  time.Duration
	MaxBackoff      time.Duration
	BackoffMultiple float64
}

// DefaultRetryConfig provides default retry settings
var DefaultRetryConfig = RetryConfig{
	MaxAttempts:     5,
	InitialBackoff:  100 * time.Millisecond,
	MaxBackoff:      5 * time.Second,
	BackoffMultiple: 2.0,
}

type ClientConfig struct {
	BaseUrl string
	// PollInterval is the minimum time between receipt queries.
	PollInterval time.Duration
	// RequestTimeout bounds a single HTTP request.
	RequestTimeout time.Duration
	Retry          *RetryConfig
}

// HTTPError is a non-2xx answer from the node.
type HTTPError struct {
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("thor node returned %d: %s", e.StatusCode, e.Body)
}

func (e *HTTPError) retryable() bool {
	return e.StatusCode >= 500 || e.StatusCode == http.StatusTooManyRequests
}

// Client talks to the REST API of a thor node.
type Client struct {
	baseUrl     string
	httpClient  *http.Client
	logger      *zap.Logger
	retryConfig RetryConfig
	pollLimiter *rate.Limiter
}

func NewClient(cfg *ClientConfig, logger *zap.Logger) (*Client, error) {
	if cfg == nil || cfg.BaseUrl == "" {
		return nil, fmt.Errorf("base url cannot be empty")
	}
	pollInterval := cfg.PollInterval
	if pollInterval <= 0 {
		pollInterval = time.Second
	}
	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	retry := DefaultRetryConfig
	if cfg.Retry != nil {
		retry = *cfg.Retry
	}
	if retry.MaxAttempts < 1 {
		retry.MaxAttempts = 1
	}

	return &Client{
		baseUrl:     strings.TrimRight(cfg.BaseUrl, "/"),
		httpClient:  &http.Client{Timeout: timeout},
		logger:      logger,
		retryConfig: retry,
		pollLimiter: rate.NewLimiter(rate.Every(pollInterval), 1),
	}, nil
}

// SetHttpClient replaces the HTTP client, mostly for tests.
func (c *Client) SetHttpClient(client *http.Client) {
	c.httpClient = client
}

func (c *Client) doOnce(ctx context.Context, method, path string, body []byte, out interface{}) error {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseUrl+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &HTTPError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(respBody))}
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("failed to decode response from %s: %w", path, err)
	}
	return nil
}

// do sends a request, retrying transport errors and 5xx answers with backoff.
func (c *Client) do(ctx context.Context, method, path string, body []byte, out interface{}) error {
	backoff := c.retryConfig.InitialBackoff
	var lastErr error
	for attempt := 0; attempt < c.retryConfig.MaxAttempts; attempt++ {
		lastErr = c.doOnce(ctx, method, path, body, out)
		if lastErr == nil {
			return nil
		}
		if httpErr, ok := lastErr.(*HTTPError); ok && !httpErr.retryable() {
			return lastErr
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}

		c.logger.Sugar().Debugw("Request to thor node failed",
			"method", method,
			"path", path,
			"attempt", attempt+1,
			"error", lastErr,
		)

		if attempt < c.retryConfig.MaxAttempts-1 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
			}
			backoff = time.Duration(float64(backoff) * c.retryConfig.BackoffMultiple)
			if backoff > c.retryConfig.MaxBackoff {
				backoff = c.retryConfig.MaxBackoff
			}
		}
	}
	return fmt.Errorf("request %s %s failed after %d attempts: %w", method, path, c.retryConfig.MaxAttempts, lastErr)
}

// GetBlock fetches a block by revision: "best", a number, or a block id.
// It returns nil when the block does not exist.
func (c *Client) GetBlock(ctx context.Context, revision string) (*Block, error) {
	var block *Block
	if err := c.do(ctx, http.MethodGet, "/blocks/"+revision, nil, &block); err != nil {
		return nil, fmt.Errorf("failed to get block %s: %w", revision, err)
	}
	return block, nil
}

func (c *Client) BestBlock(ctx context.Context) (*Block, error) {
	block, err := c.GetBlock(ctx, "best")
	if err != nil {
		return nil, err
	}
	if block == nil {
		return nil, fmt.Errorf("node returned no best block")
	}
	return block, nil
}

// ChainTag is the last byte of the genesis block id.
func (c *Client) ChainTag(ctx context.Context) (byte, error) {
	genesis, err := c.GetBlock(ctx, "0")
	if err != nil {
		return 0, err
	}
	if genesis == nil {
		return 0, fmt.Errorf("node returned no genesis block")
	}
	return genesis.ID[thor.Bytes32Length-1], nil
}

// BlockRef references the current best block.
func (c *Client) BlockRef(ctx context.Context) (thor.BlockRef, error) {
	best, err := c.BestBlock(ctx)
	if err != nil {
		return thor.BlockRef{}, err
	}
	return thor.NewBlockRefFromID(best.ID), nil
}

// SendRawTransaction injects a raw signed transaction and returns the id the
// node assigned to it. Rejections (4xx) are not retried.
func (c *Client) SendRawTransaction(ctx context.Context, raw []byte) (thor.Bytes32, error) {
	body, err := json.Marshal(&rawTxRequest{Raw: hexutil.Encode(raw)})
	if err != nil {
		return thor.Bytes32{}, fmt.Errorf("failed to marshal raw transaction: %w", err)
	}

	var res txIDResponse
	if err := c.do(ctx, http.MethodPost, "/transactions", body, &res); err != nil {
		return thor.Bytes32{}, fmt.Errorf("failed to send transaction: %w", err)
	}

	c.logger.Info("Transaction sent", zap.String("txId", res.ID.String()))
	return res.ID, nil
}

// SendTransaction encodes and injects a signed transaction.
func (c *Client) SendTransaction(ctx context.Context, signed *tx.Signed) (thor.Bytes32, error) {
	raw, err := tx.EncodeSigned(signed)
	if err != nil {
		return thor.Bytes32{}, err
	}
	return c.SendRawTransaction(ctx, raw)
}

// GetReceipt returns the receipt of a transaction, or nil while it is pending.
func (c *Client) GetReceipt(ctx context.Context, id thor.Bytes32) (*Receipt, error) {
	var receipt *Receipt
	if err := c.do(ctx, http.MethodGet, "/transactions/"+id.String()+"/receipt", nil, &receipt); err != nil {
		return nil, fmt.Errorf("failed to get receipt of %s: %w", id, err)
	}
	return receipt, nil
}

// WaitForReceipt polls until the receipt shows up or ctx is done.
func (c *Client) WaitForReceipt(ctx context.Context, id thor.Bytes32) (*Receipt, error) {
	for {
		if err := c.pollLimiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("stopped waiting for receipt of %s: %w", id, err)
		}
		receipt, err := c.GetReceipt(ctx, id)
		if err != nil {
			return nil, err
		}
		if receipt != nil {
			c.logger.Info("Transaction receipt received",
				zap.String("txId", id.String()),
				zap.Uint32("blockNumber", receipt.Meta.BlockNumber),
				zap.Bool("reverted", receipt.Reverted),
			)
			return receipt, nil
		}
		c.logger.Debug("Receipt not available yet", zap.String("txId", id.String()))
	}
}

// Call executes clauses read-only against the best block.
func (c *Client) Call(ctx context.Context, clauses []*tx.Clause, caller *thor.Address) ([]*CallResult, error) {
	req := &callRequest{Caller: caller}
	for _, cl := range clauses {
		req.Clauses = append(req.Clauses, &CallClause{
			To:    cl.To(),
			Value: (*hexutil.Big)(cl.Value().ToBig()),
			Data:  hexutil.Encode(cl.Data()),
		})
	}
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal call: %w", err)
	}

	var results []*CallResult
	if err := c.do(ctx, http.MethodPost, "/accounts/*", body, &results); err != nil {
		return nil, fmt.Errorf("failed to call contract: %w", err)
	}
	return results, nil
}
