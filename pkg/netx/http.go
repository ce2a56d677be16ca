package netx

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/cockroachdb/errors"
)

// maxErrBody caps how much of a failed response body is kept in the error.
const maxErrBody = 512

// StatusError is returned for non-2xx responses.
type StatusError struct {
	Method string
	URL    string
	Code   int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s: %d %s", e.Method, e.URL, e.Code, e.Body)
}

// Client sends and receives JSON bodies.
type Client struct {
	HTTP *http.Client
}

// NewClient .
func NewClient(cli *http.Client) *Client {
	if cli == nil {
		cli = http.DefaultClient
	}
	return &Client{HTTP: cli}
}

// GetJSON decodes the response of a GET into out.
func (c *Client) GetJSON(ctx context.Context, url string, out any) error {
	raw, err := c.Do(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return errors.Wrapf(err, "failed to decode response of GET %s", url)
	}
	return nil
}

// Do sends body encoded as JSON, and returns the raw response body.
func (c *Client) Do(ctx context.Context, method, url string, body any) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return nil, errors.Wrap(err, "")
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, errors.Wrap(err, "")
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "%s %s", method, url)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read response of %s %s", method, url)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		if len(raw) > maxErrBody {
			raw = raw[:maxErrBody]
		}
		return nil, &StatusError{Method: method, URL: url, Code: resp.StatusCode, Body: string(bytes.TrimSpace(raw))}
	}

	return raw, nil
}
