package control

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// ErrNoServer is returned when no backend URL is configured.
var ErrNoServer = errors.New("control: server url required")

const (
	defaultTimeout  = 10 * time.Second
	requestIDHeader = "X-Request-ID"
)

// RequestError is a non-2xx answer from the backend.
type RequestError struct {
	StatusCode int
	Detail     string
	RequestID  string
}

func (e *RequestError) Error() string {
	if e == nil {
		return ""
	}
	detail := strings.TrimSpace(e.Detail)
	if detail != "" {
		return fmt.Sprintf("http %d: %s", e.StatusCode, detail)
	}
	return fmt.Sprintf("http %d", e.StatusCode)
}

// NotFound reports whether the backend did not know the device.
func (e *RequestError) NotFound() bool {
	return e != nil && e.StatusCode == http.StatusNotFound
}

// Client calls the backend's control endpoints. Every call is a single round
// trip; nothing is retried.
type Client struct {
	baseURL string
	client  *http.Client
	timeout time.Duration
	log     logrus.FieldLogger
}

// New returns a client for the backend at baseURL.
func New(baseURL string) (*Client, error) {
	if strings.TrimSpace(baseURL) == "" {
		return nil, ErrNoServer
	}
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse server url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("server url %q must be http or https", baseURL)
	}
	return NewWithClient(baseURL, nil), nil
}

// NewWithClient returns a client that sends requests through client.
func NewWithClient(baseURL string, client *http.Client) *Client {
	if client == nil {
		client = &http.Client{}
	}
	return &Client{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		client:  client,
		timeout: defaultTimeout,
		log:     logrus.StandardLogger(),
	}
}

// WithTimeout returns a copy whose calls are bounded by timeout.
func (c *Client) WithTimeout(timeout time.Duration) *Client {
	clone := *c
	clone.timeout = timeout
	return &clone
}

// WithLogger returns a copy that logs through log.
func (c *Client) WithLogger(log logrus.FieldLogger) *Client {
	clone := *c
	if log != nil {
		clone.log = log
	}
	return &clone
}

// BaseURL returns the backend URL.
func (c *Client) BaseURL() string { return c.baseURL }

// SetBlock blocks or unblocks the device keyed by mac.
func (c *Client) SetBlock(ctx context.Context, mac string, blocked bool) (BlockResult, error) {
	var out BlockResult
	body := map[string]any{"mac": mac, "blocked": blocked}
	err := c.do(ctx, http.MethodPost, "/api/block", nil, body, &out)
	return out, err
}

// SetKillSwitch turns the network-wide kill switch on or off. The backend
// takes the flag as a query parameter.
func (c *Client) SetKillSwitch(ctx context.Context, enabled bool) (KillSwitchResult, error) {
	var out KillSwitchResult
	q := url.Values{}
	q.Set("enabled", strconv.FormatBool(enabled))
	err := c.do(ctx, http.MethodPost, "/api/kill-switch", q, nil, &out)
	return out, err
}

// SetSchedule stores an access window for mac.
func (c *Client) SetSchedule(ctx context.Context, mac, start, end string) (ScheduleResult, error) {
	var out ScheduleResult
	body := map[string]any{"mac": mac, "start": start, "end": end}
	err := c.do(ctx, http.MethodPost, "/api/schedule", nil, body, &out)
	return out, err
}

// GetSettings fetches the scan settings and the interfaces to choose from.
func (c *Client) GetSettings(ctx context.Context) (SettingsView, error) {
	var out SettingsView
	err := c.do(ctx, http.MethodGet, "/api/settings", nil, nil, &out)
	return out, err
}

// SetSettings applies a partial settings change and returns the result.
func (c *Client) SetSettings(ctx context.Context, update SettingsUpdate) (Settings, error) {
	var out struct {
		Status   string   `json:"status"`
		Settings Settings `json:"settings"`
	}
	err := c.do(ctx, http.MethodPost, "/api/settings", nil, update, &out)
	return out.Settings, err
}

// Stats fetches the network summary.
func (c *Client) Stats(ctx context.Context) (Stats, error) {
	var out Stats
	err := c.do(ctx, http.MethodGet, "/api/stats", nil, nil, &out)
	return out, err
}

// Devices fetches the stored device list.
func (c *Client) Devices(ctx context.Context) ([]DeviceInfo, error) {
	var out []DeviceInfo
	err := c.do(ctx, http.MethodGet, "/api/devices", nil, nil, &out)
	return out, err
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	if c.baseURL == "" {
		return ErrNoServer
	}
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	reqCtx := ctx
	if c.timeout > 0 {
		if deadline, ok := ctx.Deadline(); !ok || time.Until(deadline) > c.timeout {
			var cancel context.CancelFunc
			reqCtx, cancel = context.WithTimeout(ctx, c.timeout)
			defer cancel()
		}
	}
	var reqBody io.Reader
	if body != nil {
		buf := &bytes.Buffer{}
		if err := json.NewEncoder(buf).Encode(body); err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		reqBody = buf
	}
	req, err := http.NewRequestWithContext(reqCtx, method, u, reqBody)
	if err != nil {
		return err
	}
	id := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set(requestIDHeader, id)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	log := c.log.WithFields(logrus.Fields{"method": method, "path": path, "request_id": id})
	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		log.WithError(err).Debug("request failed")
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close() //nolint:errcheck

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%s %s: read body: %w", method, path, err)
	}
	log.WithFields(logrus.Fields{"status": resp.StatusCode, "elapsed": time.Since(start)}).Debug("request done")

	if resp.StatusCode >= 400 {
		return &RequestError{
			StatusCode: resp.StatusCode,
			Detail:     errorDetail(payload),
			RequestID:  id,
		}
	}
	if out == nil || len(bytes.TrimSpace(payload)) == 0 {
		return nil
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return fmt.Errorf("%s %s: decode response: %w", method, path, err)
	}
	return nil
}

// errorDetail extracts a readable message from an error body. The backend
// answers {"detail": "..."} for known failures and {"detail": [...]} for
// validation errors.
func errorDetail(payload []byte) string {
	var body struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(payload, &body); err == nil && len(body.Detail) > 0 {
		var s string
		if err := json.Unmarshal(body.Detail, &s); err == nil {
			return s
		}
		var items []struct {
			Loc []any  `json:"loc"`
			Msg string `json:"msg"`
		}
		if err := json.Unmarshal(body.Detail, &items); err == nil && len(items) > 0 {
			msgs := make([]string, 0, len(items))
			for _, it := range items {
				loc := make([]string, 0, len(it.Loc))
				for _, l := range it.Loc {
					loc = append(loc, fmt.Sprint(l))
				}
				msgs = append(msgs, fmt.Sprintf("%s: %s", strings.Join(loc, "."), it.Msg))
			}
			return strings.Join(msgs, "; ")
		}
		return string(body.Detail)
	}
	return strings.TrimSpace(string(payload))
}
