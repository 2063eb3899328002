// Package userclient talks to a running kdrama server so the terminal quiz
// can play against shared sessions.
package userclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"kdrama-dashboard/internal/quiz"
)

const (
	defaultServer = "http://127.0.0.1:8080"
	sessionHeader = "X-Session-ID"
)

var ErrServiceUnavailable = errors.New("quiz service unavailable")

type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if strings.TrimSpace(e.Message) == "" {
		return fmt.Sprintf("request failed with status %d", e.StatusCode)
	}
	return e.Message
}

// HTTPClient plays one session on a remote server. The session id is sent as
// a header on every request.
type HTTPClient struct {
	baseURL    string
	sessionID  string
	httpClient *http.Client
}

type actionRequest struct {
	Action quiz.Action `json:"action"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// NewHTTPClient returns a client for baseURL. An empty sessionID starts a new
// session.
func NewHTTPClient(baseURL, sessionID string, httpClient *http.Client) *HTTPClient {
	baseURL = strings.TrimSpace(baseURL)
	baseURL = strings.TrimRight(baseURL, "/")
	if baseURL == "" {
		baseURL = defaultServer
	}
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		sessionID = uuid.NewString()
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	return &HTTPClient{
		baseURL:    baseURL,
		sessionID:  sessionID,
		httpClient: httpClient,
	}
}

func (c *HTTPClient) SessionID() string {
	return c.sessionID
}

func (c *HTTPClient) View(ctx context.Context) (quiz.View, error) {
	var view quiz.View
	if err := c.doJSON(ctx, http.MethodGet, "/quiz", nil, &view); err != nil {
		return quiz.View{}, err
	}
	return view, nil
}

func (c *HTTPClient) Dispatch(ctx context.Context, action quiz.Action) (quiz.View, error) {
	var view quiz.View
	if err := c.doJSON(ctx, http.MethodPost, "/quiz/actions", actionRequest{Action: action}, &view); err != nil {
		return quiz.View{}, err
	}
	return view, nil
}

// DescribeError turns transport failures into a message naming the server.
func DescribeError(err error, serverURL string) error {
	if errors.Is(err, ErrServiceUnavailable) {
		return fmt.Errorf("quiz service unavailable at %s", serverURL)
	}
	return err
}

func (c *HTTPClient) doJSON(ctx context.Context, method, path string, requestBody any, responseBody any) error {
	fullURL := c.baseURL + path

	var body io.Reader
	if requestBody != nil {
		encoded, err := json.Marshal(requestBody)
		if err != nil {
			return err
		}
		body = bytes.NewReader(encoded)
	}

	request, err := http.NewRequestWithContext(ctx, method, fullURL, body)
	if err != nil {
		return err
	}
	request.Header.Set(sessionHeader, c.sessionID)
	if requestBody != nil {
		request.Header.Set("Content-Type", "application/json")
	}

	response, err := c.httpClient.Do(request)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrServiceUnavailable, err)
	}
	defer response.Body.Close()

	if response.StatusCode < http.StatusOK || response.StatusCode >= http.StatusMultipleChoices {
		apiErr := APIError{StatusCode: response.StatusCode}
		var payload errorResponse
		if err := json.NewDecoder(response.Body).Decode(&payload); err == nil && strings.TrimSpace(payload.Error) != "" {
			apiErr.Message = payload.Error
		}
		if apiErr.Message == "" {
			apiErr.Message = response.Status
		}
		return &apiErr
	}

	if responseBody == nil {
		return nil
	}
	return json.NewDecoder(response.Body).Decode(responseBody)
}
