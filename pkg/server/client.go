package server

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"

	"github.com/voluzi/debugpilot/pkg/cpusampler"
)

var (
	// httpClient is a shared HTTP client. Archive creation can be slow.
	httpClient = &http.Client{
		Timeout: 2 * time.Minute,
	}
)

// Client talks to a running debugpilot server.
type Client struct {
	url string
}

// NewClient creates a client for the given base URL, e.g. http://127.0.0.1:5077.
func NewClient(url string) *Client {
	return &Client{url: strings.TrimSuffix(url, "/")}
}

func (c *Client) do(ctx context.Context, method, endpoint string, body io.Reader) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.url+endpoint, body)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "text/plain")
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
	}
	return resp, nil
}

func (c *Client) httpGet(ctx context.Context, endpoint string) (string, error) {
	resp, err := c.do(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(resp.Body)
	return string(b), err
}

func (c *Client) httpPost(ctx context.Context, endpoint, body string) (string, error) {
	resp, err := c.do(ctx, http.MethodPost, endpoint, strings.NewReader(body))
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(resp.Body)
	return string(b), err
}

func (c *Client) Health(ctx context.Context) error {
	_, err := c.httpGet(ctx, "/health")
	return err
}

// GetThreadCpuUsage returns the sampler history of the server.
func (c *Client) GetThreadCpuUsage(ctx context.Context) ([]cpusampler.TimeAndThreadCpuUsages, error) {
	body, err := c.httpGet(ctx, "/debuginfos/threadcpuusage")
	if err != nil {
		return nil, err
	}
	var history []cpusampler.TimeAndThreadCpuUsages
	if err := json.Unmarshal([]byte(body), &history); err != nil {
		return nil, fmt.Errorf("failed to parse thread cpu usage: %w", err)
	}
	return history, nil
}

// DownloadDebugInfos writes the debug infos archive to w and returns the file
// name suggested by the server.
func (c *Client) DownloadDebugInfos(ctx context.Context, w io.Writer) (string, error) {
	resp, err := c.do(ctx, http.MethodGet, "/debuginfos/logandconfig", nil)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var filename string
	if _, params, err := mime.ParseMediaType(resp.Header.Get("Content-Disposition")); err == nil {
		filename = params["filename"]
	}
	_, err = io.Copy(w, resp.Body)
	return filename, err
}

// ExecuteSQLQuery returns the query result as CSV.
func (c *Client) ExecuteSQLQuery(ctx context.Context, sql string) (string, error) {
	return c.httpPost(ctx, "/debuginfos/executesqlquery", sql)
}

// ExecuteSQLUpdate returns the number of affected rows.
func (c *Client) ExecuteSQLUpdate(ctx context.Context, sql string) (int64, error) {
	body, err := c.httpPost(ctx, "/debuginfos/executesqlupdate", sql)
	if err != nil {
		return 0, err
	}
	return strconv.ParseInt(strings.TrimSpace(body), 10, 64)
}

func (c *Client) ThreadDump(ctx context.Context) (string, error) {
	return c.httpGet(ctx, "/debuginfos/threaddump")
}

// StreamThreadCpuUsage calls fn with every record sampled by the server until
// ctx is done or the server closes the stream.
func (c *Client) StreamThreadCpuUsage(ctx context.Context, fn func(cpusampler.TimeAndThreadCpuUsages)) error {
	wsURL := "ws" + strings.TrimPrefix(c.url, "http") + "/debuginfos/threadcpuusage/stream"
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		return fmt.Errorf("failed to connect to %s: %w", wsURL, err)
	}
	defer conn.Close()

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil || websocket.IsCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				return nil
			}
			return err
		}
		var msg StreamMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			return fmt.Errorf("failed to parse stream message: %w", err)
		}
		if msg.Type == MessageTypeThreadCpuUsage {
			fn(msg.Payload)
		}
	}
}
