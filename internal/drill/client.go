package drill

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/okian/safetravel/internal/domain/hold"
	"github.com/okian/safetravel/internal/domain/model"
)

// panicReply mirrors the panic endpoints' response body.
type panicReply struct {
	Changed bool `json:"changed"`
	hold.Snapshot
}

type client struct {
	http    *http.Client
	baseURL string
}

func newClient(baseURL string, timeout time.Duration) *client {
	return &client{
		http:    &http.Client{Timeout: timeout},
		baseURL: baseURL,
	}
}

// do sends a request and decodes a JSON body into out when out is non-nil.
func (c *client) do(ctx context.Context, method, path string, body, out any) (int, error) {
	var r io.Reader = http.NoBody
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return 0, fmt.Errorf("marshal request body: %w", err)
		}
		r = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, r)
	if err != nil {
		return 0, fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, err
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, fmt.Errorf("read %s %s: %w", method, path, err)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return resp.StatusCode, fmt.Errorf("%s %s: status %d: %s", method, path, resp.StatusCode, bytes.TrimSpace(data))
	}
	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return resp.StatusCode, fmt.Errorf("decode %s %s: %w", method, path, err)
		}
	}
	return resp.StatusCode, nil
}

func (c *client) health(ctx context.Context) error {
	_, err := c.do(ctx, http.MethodGet, "/healthz", nil, nil)
	return err
}

func (c *client) roster(ctx context.Context) ([]model.Tourist, error) {
	var out []model.Tourist
	_, err := c.do(ctx, http.MethodGet, "/tourists", nil, &out)
	return out, err
}

func (c *client) press(ctx context.Context, id string) (panicReply, int, error) {
	var out panicReply
	code, err := c.do(ctx, http.MethodPost, "/tourists/"+id+"/panic/press", nil, &out)
	return out, code, err
}

func (c *client) release(ctx context.Context, id string) (panicReply, error) {
	var out panicReply
	_, err := c.do(ctx, http.MethodPost, "/tourists/"+id+"/panic/release", nil, &out)
	return out, err
}

func (c *client) status(ctx context.Context, id string) (hold.Snapshot, error) {
	var out hold.Snapshot
	_, err := c.do(ctx, http.MethodGet, "/tourists/"+id+"/panic", nil, &out)
	return out, err
}

func (c *client) alerts(ctx context.Context, limit int) ([]model.Alert, error) {
	var out []model.Alert
	_, err := c.do(ctx, http.MethodGet, fmt.Sprintf("/alerts?limit=%d", limit), nil, &out)
	return out, err
}

func (c *client) notifications(ctx context.Context, limit int) ([]model.Notification, error) {
	var out []model.Notification
	_, err := c.do(ctx, http.MethodGet, fmt.Sprintf("/notifications?limit=%d", limit), nil, &out)
	return out, err
}
