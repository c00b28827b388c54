package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/amirbrooks/tasker-assistant/internal/store"
)

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Request is the body posted to the chat endpoint.
type Request struct {
	Messages []Message `json:"messages"`
	Mode     Mode      `json:"mode"`
}

type response struct {
	Response string `json:"response"`
	Error    string `json:"error,omitempty"`
}

// Responder answers free-form chat. Implementations must honor ctx.
type Responder interface {
	Respond(ctx context.Context, req Request) (string, error)
}

// HTTPResponder posts requests as JSON and reads {"response": "..."}.
type HTTPResponder struct {
	Endpoint string
	Client   *http.Client
}

func NewHTTPResponder(endpoint string, timeout time.Duration) *HTTPResponder {
	return &HTTPResponder{
		Endpoint: endpoint,
		Client:   &http.Client{Timeout: timeout},
	}
}

func (h *HTTPResponder) Respond(ctx context.Context, req Request) (string, error) {
	if strings.TrimSpace(h.Endpoint) == "" {
		return "", fmt.Errorf("chat: no endpoint configured")
	}
	body, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("chat: encode request: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, h.Endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("chat: build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	client := h.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("chat: post: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("chat: read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("chat: status %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}
	var out response
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", fmt.Errorf("chat: decode response: %w", err)
	}
	return out.Response, nil
}

// BuildContextPrompt prefixes query with the user's current collections so the
// model can answer questions about them. Empty collections are omitted, and
// with no data at all the query is returned unchanged.
func BuildContextPrompt(ctx context.Context, st store.Store, query string) (string, error) {
	var b strings.Builder
	for _, kind := range store.Kinds {
		items, err := st.List(ctx, kind)
		if err != nil {
			return "", fmt.Errorf("list %s: %w", kind.Plural(), err)
		}
		if len(items) == 0 {
			continue
		}
		data, err := json.Marshal(items)
		if err != nil {
			return "", fmt.Errorf("encode %s: %w", kind.Plural(), err)
		}
		fmt.Fprintf(&b, "\n\nUser's current %s: %s", kind.Plural(), data)
	}
	if b.Len() == 0 {
		return query, nil
	}
	return "User's context:\n" + b.String() + "\n\nUser's query: " + query, nil
}
