// Package walrus is a read-only client for a walrus-style blob aggregator:
// blobs are fetched with a plain GET from {base}/v1/blobs/{ref}.
package walrus

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/sakif/oracle-enclave/internal/apperror"
)

// Client implements repository.BlobStore against an HTTP aggregator.
type Client struct {
	baseURL string
	client  *http.Client
	logger  *slog.Logger
}

// New creates a Client for the aggregator at baseURL.
func New(baseURL string, client *http.Client, logger *slog.Logger) *Client {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  client,
		logger:  logger,
	}
}

// GetBlob fetches the payload bytes stored under ref.
func (c *Client) GetBlob(ctx context.Context, ref string) ([]byte, error) {
	url := fmt.Sprintf("%s/v1/blobs/%s", c.baseURL, ref)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, apperror.Transport("fetch", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, apperror.Transport("fetch", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, apperror.NotFound("blob", ref)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, apperror.Transport("fetch",
			fmt.Errorf("aggregator returned status %d for blob %s", resp.StatusCode, ref))
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperror.Transport("fetch", err)
	}

	c.logger.Debug("fetched blob", slog.String("ref", ref), slog.Int("bytes", len(data)))
	return data, nil
}
