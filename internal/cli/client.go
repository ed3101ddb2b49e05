package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"gritinterview/internal/model"
)

// APIError is a non-2xx response from the interview server
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("server returned %d: %s", e.Status, e.Message)
}

// Retryable reports whether the failed step may be resubmitted unchanged
func (e *APIError) Retryable() bool {
	switch e.Status {
	case http.StatusBadGateway, http.StatusGatewayTimeout:
		return true
	}
	return false
}

// Client talks to the interview REST API as one respondent
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

// NewClient creates a client for the server at baseURL
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// SetToken sets the respondent token sent with every request
func (c *Client) SetToken(token string) {
	c.token = token
}

// StartSession begins a new interview and keeps its token
func (c *Client) StartSession(ctx context.Context) (*model.StartSessionResponse, error) {
	var resp model.StartSessionResponse
	if err := c.do(ctx, http.MethodPost, "/v1/sessions", nil, &resp); err != nil {
		return nil, err
	}
	c.token = resp.Token
	return &resp, nil
}

// GetSession fetches the session state
func (c *Client) GetSession(ctx context.Context, sessionID string) (*model.Session, error) {
	var session model.Session
	if err := c.do(ctx, http.MethodGet, "/v1/sessions/"+sessionID, nil, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

// SubmitAnswer posts the answer to a turn
func (c *Client) SubmitAnswer(ctx context.Context, sessionID string, turnIndex int, answer string) (*model.SubmitAnswerResponse, error) {
	req := model.SubmitAnswerRequest{TurnIndex: turnIndex, Answer: answer}
	var resp model.SubmitAnswerResponse
	if err := c.do(ctx, http.MethodPost, "/v1/sessions/"+sessionID+"/answers", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetSummary fetches the closing narrative
func (c *Client) GetSummary(ctx context.Context, sessionID string) (*model.SummaryReport, error) {
	var report model.SummaryReport
	if err := c.do(ctx, http.MethodGet, "/v1/sessions/"+sessionID+"/summary", nil, &report); err != nil {
		return nil, err
	}
	return &report, nil
}

// Watch streams session events to out until ctx ends or the server closes the socket
func (c *Client) Watch(ctx context.Context, sessionID string, out io.Writer) error {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return err
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}
	u.Path = "/v1/ws/sessions/" + sessionID
	u.RawQuery = url.Values{"token": {c.token}}.Encode()

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		return fmt.Errorf("connecting to event stream: %w", err)
	}
	go func() {
		<-ctx.Done()
		conn.Close()
	}()

	for {
		var msg struct {
			Type    string          `json:"type"`
			Payload json.RawMessage `json:"payload"`
		}
		if err := conn.ReadJSON(&msg); err != nil {
			if ctx.Err() != nil || websocket.IsCloseError(err, websocket.CloseNormalClosure) {
				return nil
			}
			return err
		}
		fmt.Fprintf(out, "  [event] %s %s\n", msg.Type, msg.Payload)
	}
}

func (c *Client) do(ctx context.Context, method, path string, in, out interface{}) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		var apiErr struct {
			Error string `json:"error"`
		}
		json.NewDecoder(resp.Body).Decode(&apiErr)
		return &APIError{Status: resp.StatusCode, Message: apiErr.Error}
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
