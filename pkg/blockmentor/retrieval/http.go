package retrieval

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/hashicorp/go-cleanhttp"
	"github.com/hashicorp/go-retryablehttp"

	bmerrors "github.com/randalmurphal/blockmentor/pkg/blockmentor/errors"
)

// HTTPOptions are shared by the embedding and vector-store clients.
type HTTPOptions struct {
	// MaxRetries is the number of retries after the first attempt.
	MaxRetries int
	// RetryWait is the minimum wait between attempts.
	RetryWait time.Duration
	// Timeout bounds each attempt.
	Timeout time.Duration
	Logger  *slog.Logger
}

func (o HTTPOptions) client() *retryablehttp.Client {
	c := retryablehttp.NewClient()
	c.HTTPClient = cleanhttp.DefaultPooledClient()
	if o.Timeout > 0 {
		c.HTTPClient.Timeout = o.Timeout
	}
	c.RetryMax = max(o.MaxRetries, 0)
	if o.RetryWait > 0 {
		c.RetryWaitMin = o.RetryWait
		c.RetryWaitMax = 10 * o.RetryWait
	}
	c.ErrorHandler = retryablehttp.PassthroughErrorHandler
	c.Logger = nil
	if o.Logger != nil {
		c.Logger = o.Logger // *slog.Logger satisfies retryablehttp.LeveledLogger
	}
	return c
}

// postJSON sends body as JSON and decodes a 2xx reply into out.
// Non-2xx replies become *errors.HTTPError.
func postJSON(ctx context.Context, c *retryablehttp.Client, url string, header http.Header, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, url, payload)
	if err != nil {
		return err
	}
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return bmerrors.Transient(err, "read response")
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return bmerrors.NewHTTPError(resp, url, data)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return &bmerrors.JSONParseError{Input: string(data), Message: err.Error()}
	}
	return nil
}
