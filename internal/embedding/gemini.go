package embedding

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
)

// DefaultBaseURL is the public Generative Language API endpoint.
const DefaultBaseURL = "https://generativelanguage.googleapis.com"

// GeminiClient calls the embedContent endpoint.
type GeminiClient struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// NewGeminiClient returns a client; an empty baseURL selects DefaultBaseURL.
func NewGeminiClient(apiKey, baseURL string) *GeminiClient {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &GeminiClient{
		apiKey:     apiKey,
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

func (g *GeminiClient) Configured() bool {
	return g.apiKey != ""
}

type geminiRequest struct {
	Model   string        `json:"model"`
	Content geminiContent `json:"content"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiResponse struct {
	Embedding *struct {
		Values []float64 `json:"values"`
	} `json:"embedding"`
}

// Prompt renders the text sent for c.
func Prompt(c Chunk) string {
	var b strings.Builder
	b.WriteString("You are Gemini 2.5 Flash acting strictly as an embedder. ")
	b.WriteString("Return only the raw embedding without commentary.\n")
	fmt.Fprintf(&b, "User UID: %s\n", c.UserUID)
	fmt.Fprintf(&b, "Chunk ID: %s\n", c.ID)
	fmt.Fprintf(&b, "Chunk Type: %s\n", c.Type)
	b.WriteString("Text:\n")
	b.WriteString(Truncate(c.Text))
	return b.String()
}

func (g *GeminiClient) Embed(ctx context.Context, c Chunk) ([]float64, error) {
	if !g.Configured() {
		return nil, ErrNotConfigured
	}
	if strings.TrimSpace(c.Text) == "" {
		return nil, ErrEmptyText
	}

	body, err := json.Marshal(geminiRequest{
		Model:   "models/" + Model,
		Content: geminiContent{Parts: []geminiPart{{Text: Prompt(c)}}},
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/v1beta/models/%s:embedContent?key=%s", g.baseURL, Model, url.QueryEscape(g.apiKey))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProviderFailed, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("%w: status %d: %s", ErrProviderFailed, resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	var out geminiResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", ErrProviderFailed, err)
	}
	if out.Embedding == nil || len(out.Embedding.Values) == 0 {
		return nil, fmt.Errorf("%w: no embedding values", ErrProviderFailed)
	}
	return out.Embedding.Values, nil
}
