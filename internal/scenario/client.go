package scenario

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync/atomic"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/nmeo-op/palm-engine/pkg/types"
)

// ErrStale marks a response that arrived after a newer request for the
// same logical scenario was issued; its data must be discarded.
var ErrStale = errors.New("stale scenario response superseded by a newer request")

// NetworkError wraps transport-level failures so callers can surface a
// retryable banner. The client itself never retries.
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string { return fmt.Sprintf("simulation service unreachable: %v", e.Err) }
func (e *NetworkError) Unwrap() error { return e.Err }

// Client dispatches simulation requests to the external service. Each
// Monte-Carlo dispatch is tagged with a monotonically increasing
// sequence number; responses whose sequence is no longer the latest
// issued come back as ErrStale. In-flight requests are not cancelled
// at the transport level when superseded, only suppressed.
type Client struct {
	baseURL    string
	httpClient *http.Client
	seq        atomic.Uint64
}

// NewClient creates a client with a transport timeout. A timeout must
// exist; an unbounded hang that blocks the caller indefinitely is a
// defect, so a non-positive value falls back to 30s.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// RunTariff executes the single-point simulation
func (c *Client) RunTariff(ctx context.Context, req types.TariffRequest) (types.TariffOutcome, error) {
	body, err := c.post(ctx, "/tariff-simulation", req)
	if err != nil {
		return types.TariffOutcome{}, err
	}
	return NormalizeTariff(body)
}

// RunMonteCarlo executes the multi-year inflation/cost-push simulation.
// The request is normalized via BuildScenarioRequest before dispatch.
func (c *Client) RunMonteCarlo(ctx context.Context, req types.ScenarioRequest) (*types.ScenarioResult, error) {
	normalized, err := BuildScenarioRequest(req)
	if err != nil {
		return nil, err
	}

	seq := c.seq.Add(1)
	log.WithFields(log.Fields{
		"sequence": seq,
		"paths":    normalized.PathCount,
		"rounds":   normalized.RoundCount,
	}).Info("Dispatching Monte-Carlo scenario")

	body, err := c.post(ctx, "/tariff-simulation-inflation-costpush", normalized)
	if err != nil {
		return nil, err
	}
	if c.seq.Load() != seq {
		log.WithField("sequence", seq).Info("Discarding stale scenario response")
		return nil, ErrStale
	}

	result, err := NormalizeMonteCarlo(body, normalized)
	if err != nil {
		return nil, err
	}
	result.Sequence = seq
	return result, nil
}

// RunTrade executes the opaque multi-agent trade scenario. The
// response contract is whatever JSON the service returns this session;
// it is repaired and passed through as a generic object.
func (c *Client) RunTrade(ctx context.Context, payload map[string]interface{}) (map[string]interface{}, error) {
	body, err := c.post(ctx, "/simulate", payload)
	if err != nil {
		return nil, err
	}
	return decodeObject(body)
}

// Ping probes the service root for health reporting
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/", nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &NetworkError{Err: err}
	}
	resp.Body.Close()
	return nil
}

func (c *Client) post(ctx context.Context, path string, payload interface{}) ([]byte, error) {
	encoded, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(encoded))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &NetworkError{Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &NetworkError{Err: err}
	}
	if resp.StatusCode >= 500 {
		return nil, &NetworkError{Err: fmt.Errorf("service returned %d", resp.StatusCode)}
	}
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("simulation service rejected request: %d %s", resp.StatusCode, truncate(body, 200))
	}
	return body, nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
