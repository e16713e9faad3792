package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"slidesage-backend/internal/llm"
)

const (
	DefaultBaseURL = "https://generativelanguage.googleapis.com"
	DefaultModel   = "gemini-1.5-flash"
	defaultTimeout = 60 * time.Second
	maxBodyBytes   = 1 << 20
)

// Options configures a Client. Values are resolved once at startup and passed in.
type Options struct {
	APIKey  string
	Model   string
	BaseURL string
	Timeout time.Duration
	// KeyInQuery sends the API key as ?key= instead of the x-goog-api-key header.
	KeyInQuery bool
	HTTPClient *http.Client
}

// Client implements llm.Summarizer against the Gemini generateContent endpoint.
type Client struct {
	apiKey     string
	endpoint   string
	keyInQuery bool
	httpClient *http.Client
}

// StatusError reports a non-200 response.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("gemini http status %d", e.StatusCode)
	}
	return fmt.Sprintf("gemini http status %d: %s", e.StatusCode, e.Body)
}

// NewClient constructs a Gemini client.
func NewClient(opts Options) (*Client, error) {
	if strings.TrimSpace(opts.APIKey) == "" {
		return nil, errors.New("gemini api key is required")
	}
	model := strings.TrimSpace(opts.Model)
	if model == "" {
		model = DefaultModel
	}
	base := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if base == "" {
		base = DefaultBaseURL
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	return &Client{
		apiKey:     opts.APIKey,
		endpoint:   base + "/v1beta/models/" + url.PathEscape(model) + ":generateContent",
		keyInQuery: opts.KeyInQuery,
		httpClient: httpClient,
	}, nil
}

type part struct {
	Text string `json:"text"`
}

type content struct {
	Parts []part `json:"parts"`
}

type generateRequest struct {
	Contents []content `json:"contents"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

// Summarize sends one generateContent request built from the summary prompt.
// Only a 200 response carrying candidates[0].content.parts[0].text succeeds.
func (c *Client) Summarize(ctx context.Context, text string) (string, error) {
	return c.Generate(ctx, llm.SummaryPrompt(text))
}

// Generate sends prompt verbatim and returns the first candidate's text.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	payload, err := json.Marshal(generateRequest{
		Contents: []content{{Parts: []part{{Text: prompt}}}},
	})
	if err != nil {
		return "", err
	}

	endpoint := c.endpoint
	if c.keyInQuery {
		endpoint += "?key=" + url.QueryEscape(c.apiKey)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	if !c.keyInQuery {
		req.Header.Set("x-goog-api-key", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || strings.Contains(err.Error(), "Client.Timeout") {
			return "", fmt.Errorf("gemini request timeout: %w", err)
		}
		return "", fmt.Errorf("gemini request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return "", fmt.Errorf("gemini read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", &StatusError{StatusCode: resp.StatusCode, Body: snippet(body)}
	}

	var parsed generateResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("gemini response parse: %w", err)
	}
	if len(parsed.Candidates) == 0 {
		return "", errors.New("gemini response missing candidates")
	}
	parts := parsed.Candidates[0].Content.Parts
	if len(parts) == 0 {
		return "", errors.New("gemini response missing parts")
	}
	out := strings.TrimSpace(parts[0].Text)
	if out == "" {
		return "", errors.New("gemini response empty text")
	}
	return out, nil
}

// maxSnippet bounds the response body carried in a StatusError, in bytes.
const maxSnippet = 200

func snippet(body []byte) string {
	s := strings.ToValidUTF8(strings.Join(strings.Fields(string(body)), " "), "")
	if len(s) <= maxSnippet {
		return s
	}
	cut := 0
	for i := range s {
		if i > maxSnippet {
			break
		}
		cut = i
	}
	return s[:cut]
}

var _ llm.Summarizer = (*Client)(nil)
