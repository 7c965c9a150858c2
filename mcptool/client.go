// Package mcptool speaks the generic tool-invocation protocol (list-tools,
// call-tool) to a remote MCP server over HTTP. JSON-RPC 2.0 framing, one
// attempt per call, bounded timeout, optional TCP pre-check so an unreachable
// server fails fast instead of costing a connection timeout.
package mcptool

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sourcegraph/jsonrpc2"

	"github.com/jenningsloy318/context-keeper/settings"
)

const (
	protocolVersion = "2024-11-05"
	dialProbeWait   = 2 * time.Second
	defaultTimeout  = 30 * time.Second
)

// Tool describes one remotely callable tool.
type Tool struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// Client invokes tools on a single MCP server.
type Client struct {
	ServerName string

	url       string
	headers   map[string]string
	http      *http.Client
	nextID    uint64
	sessionID string // Mcp-Session-Id assigned by the server at initialize
}

// New builds a client for a discovered server. Timeout bounds each HTTP
// round trip; zero means the default.
func New(srv *settings.MCPServer, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		ServerName: srv.Name,
		url:        srv.URL,
		headers:    srv.Headers,
		http:       &http.Client{Timeout: timeout},
	}
}

// Reachable probes the server's TCP endpoint. Used to skip remote work
// cheaply when the server is down; a false result is advisory only.
func (c *Client) Reachable() bool {
	u, err := url.Parse(c.url)
	if err != nil {
		return false
	}
	host := u.Host
	if u.Port() == "" {
		if u.Scheme == "https" {
			host = net.JoinHostPort(u.Hostname(), "443")
		} else {
			host = net.JoinHostPort(u.Hostname(), "80")
		}
	}
	conn, err := net.DialTimeout("tcp", host, dialProbeWait)
	if err != nil {
		return false
	}
	conn.Close()
	return true
}

// Initialize performs the protocol handshake. Must be called once before
// ListTools or CallTool.
func (c *Client) Initialize(ctx context.Context) error {
	_, err := c.call(ctx, "initialize", map[string]any{
		"protocolVersion": protocolVersion,
		"capabilities":    map[string]any{},
		"clientInfo": map[string]any{
			"name":    "context-keeper",
			"version": "1.0",
		},
	})
	if err != nil {
		return fmt.Errorf("initialize: %w", err)
	}
	return c.notify(ctx, "notifications/initialized")
}

// ListTools returns the server's tool catalog.
func (c *Client) ListTools(ctx context.Context) ([]Tool, error) {
	result, err := c.call(ctx, "tools/list", map[string]any{})
	if err != nil {
		return nil, err
	}
	var out struct {
		Tools []Tool `json:"tools"`
	}
	if err := json.Unmarshal(*result, &out); err != nil {
		return nil, fmt.Errorf("decode tool list: %w", err)
	}
	return out.Tools, nil
}

// CallTool invokes one tool and returns the raw result object.
func (c *Client) CallTool(ctx context.Context, name string, args map[string]any) (json.RawMessage, error) {
	if args == nil {
		args = map[string]any{}
	}
	result, err := c.call(ctx, "tools/call", map[string]any{
		"name":      name,
		"arguments": args,
	})
	if err != nil {
		return nil, err
	}
	return json.RawMessage(*result), nil
}

func (c *Client) call(ctx context.Context, method string, params any) (*json.RawMessage, error) {
	c.nextID++
	req := jsonrpc2.Request{Method: method, ID: jsonrpc2.ID{Num: c.nextID}}
	if err := req.SetParams(params); err != nil {
		return nil, err
	}

	resp, err := c.post(ctx, &req)
	if err != nil {
		return nil, err
	}
	if resp.Error != nil {
		return nil, fmt.Errorf("%s failed: %s (code %d)", method, resp.Error.Message, resp.Error.Code)
	}
	if resp.Result == nil {
		return nil, fmt.Errorf("%s returned no result", method)
	}
	return resp.Result, nil
}

func (c *Client) notify(ctx context.Context, method string) error {
	req := jsonrpc2.Request{Method: method, Notif: true}
	body, err := json.Marshal(&req)
	if err != nil {
		return err
	}
	httpResp, err := c.send(ctx, body)
	if err != nil {
		return err
	}
	httpResp.Body.Close()
	return nil
}

func (c *Client) post(ctx context.Context, req *jsonrpc2.Request) (*jsonrpc2.Response, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}
	httpResp, err := c.send(ctx, body)
	if err != nil {
		return nil, err
	}
	defer httpResp.Body.Close()

	if sid := httpResp.Header.Get("Mcp-Session-Id"); sid != "" {
		c.sessionID = sid
	}
	if httpResp.StatusCode < 200 || httpResp.StatusCode > 299 {
		return nil, fmt.Errorf("server returned HTTP %d", httpResp.StatusCode)
	}

	data, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, err
	}
	if strings.Contains(httpResp.Header.Get("Content-Type"), "text/event-stream") {
		return decodeEventStream(data)
	}

	var resp jsonrpc2.Response
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &resp, nil
}

func (c *Client) send(ctx context.Context, body []byte) (*http.Response, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json, text/event-stream")
	if c.sessionID != "" {
		httpReq.Header.Set("Mcp-Session-Id", c.sessionID)
	}
	for k, v := range c.headers {
		httpReq.Header.Set(k, v)
	}
	return c.http.Do(httpReq)
}

// decodeEventStream extracts the JSON-RPC response from an SSE body: the
// first data line that decodes as a response message wins.
func decodeEventStream(data []byte) (*jsonrpc2.Response, error) {
	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 1<<20), 1<<20)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if !strings.HasPrefix(line, "data:") {
			continue
		}
		payload := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		var resp jsonrpc2.Response
		if err := json.Unmarshal([]byte(payload), &resp); err != nil {
			continue
		}
		if resp.Result != nil || resp.Error != nil {
			return &resp, nil
		}
	}
	return nil, fmt.Errorf("event stream carried no response")
}
