package classify

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"sync"
	"time"
)

// RemoteConfig configures the LLM-backed classifier. Endpoint is an
// OpenAI-compatible chat completions URL.
type RemoteConfig struct {
	Endpoint    string
	APIKey      string
	Model       string
	Temperature float64
	MaxTokens   int

	// Timeout is the hard per-request deadline. On expiry the affected
	// fragments fall back to the rule-based classifier.
	Timeout time.Duration

	// Batching limits, applied together.
	MaxTextsPerBatch int
	MaxUnitsPerBatch int

	CacheEnabled bool
}

func (c *RemoteConfig) applyDefaults() {
	if c.Model == "" {
		c.Model = "qwen-plus"
	}
	if c.MaxTokens <= 0 {
		c.MaxTokens = 1000
	}
	if c.Timeout <= 0 {
		c.Timeout = 30 * time.Second
	}
	if c.MaxTextsPerBatch <= 0 {
		c.MaxTextsPerBatch = 20
	}
	if c.MaxUnitsPerBatch <= 0 {
		c.MaxUnitsPerBatch = 3000
	}
}

// Remote classifies headings via a chat-completion API. Failures of any
// kind (network, timeout, malformed response) degrade to the injected
// rule-based classifier; they are never surfaced to the pipeline.
type Remote struct {
	cfg        RemoteConfig
	fallback   BatchClassifier
	httpClient *http.Client

	// Stats is optional; when set it records latency, cache hits and
	// fallback counts for the stats endpoint.
	Stats *Stats

	mu    sync.Mutex
	cache map[string]Result
}

// NewRemote builds a remote classifier. fallback must not be nil; it
// handles every fragment the remote path cannot.
func NewRemote(cfg RemoteConfig, fallback BatchClassifier) *Remote {
	cfg.applyDefaults()
	r := &Remote{
		cfg:      cfg,
		fallback: fallback,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
	if cfg.CacheEnabled {
		r.cache = make(map[string]Result)
	}
	return r
}

// Model returns the configured model name.
func (r *Remote) Model() string {
	return r.cfg.Model
}

// Classify classifies a single fragment. Prefer ClassifyBatch when many
// fragments are available.
func (r *Remote) Classify(text string) Result {
	ctx, cancel := context.WithTimeout(context.Background(), r.cfg.Timeout)
	defer cancel()
	return r.ClassifyBatch(ctx, []string{text})[0]
}

// ClassifyBatch classifies fragments in token/count-bounded batches,
// answering from the content-hash cache where possible. The result
// slice always has one entry per input, in order.
func (r *Remote) ClassifyBatch(ctx context.Context, texts []string) []Result {
	results := make([]Result, len(texts))
	pending := make([]int, 0, len(texts))

	cacheHits := 0
	for i, text := range texts {
		if cached, ok := r.cacheGet(text); ok {
			results[i] = cached
			cacheHits++
			continue
		}
		pending = append(pending, i)
	}
	if r.Stats != nil && cacheHits > 0 {
		r.Stats.RecordCacheHits(cacheHits)
	}
	if len(pending) == 0 {
		return results
	}

	for _, batch := range r.makeBatches(texts, pending) {
		batchTexts := make([]string, len(batch))
		for j, idx := range batch {
			batchTexts[j] = texts[idx]
		}

		batchResults, err := r.classifyBatchOnce(ctx, batchTexts)
		if err != nil {
			if r.Stats != nil {
				r.Stats.RecordFallbacks(len(batchTexts))
			}
			batchResults = r.fallback.ClassifyBatch(ctx, batchTexts)
		} else {
			for j, idx := range batch {
				r.cachePut(texts[idx], batchResults[j])
			}
		}
		for j, idx := range batch {
			results[idx] = batchResults[j]
		}
	}

	return results
}

// makeBatches groups pending indices under the configured text-count
// and estimated-token budgets.
func (r *Remote) makeBatches(texts []string, pending []int) [][]int {
	var batches [][]int
	var current []int
	units := 0

	for _, idx := range pending {
		est := estimateUnits(texts[idx])
		if len(current) > 0 &&
			(len(current) >= r.cfg.MaxTextsPerBatch || units+est > r.cfg.MaxUnitsPerBatch) {
			batches = append(batches, current)
			current = nil
			units = 0
		}
		current = append(current, idx)
		units += est
	}
	if len(current) > 0 {
		batches = append(batches, current)
	}
	return batches
}

// estimateUnits roughly prices a fragment: one unit per rune plus half
// a unit per whitespace-separated word.
func estimateUnits(text string) int {
	return len([]rune(text)) + len(strings.Fields(text))/2
}

func (r *Remote) classifyBatchOnce(ctx context.Context, texts []string) ([]Result, error) {
	prompt := buildBatchPrompt(texts)

	var lastErr error
	for attempt := 0; attempt < MaxRetries; attempt++ {
		start := time.Now()
		raw, err := r.call(ctx, prompt)
		if r.Stats != nil {
			r.Stats.RecordCall(time.Since(start).Milliseconds())
		}
		if err == nil {
			return parseBatchResponse(raw, len(texts))
		}
		lastErr = err
		if !IsRetryable(err) {
			break
		}
		select {
		case <-time.After(Backoff(attempt)):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return nil, lastErr
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

func (r *Remote) call(ctx context.Context, prompt string) (string, error) {
	reqBody := chatRequest{
		Model:       r.cfg.Model,
		Messages:    []chatMessage{{Role: "user", Content: prompt}},
		Temperature: r.cfg.Temperature,
		MaxTokens:   r.cfg.MaxTokens,
	}
	body, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, r.cfg.Endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+r.cfg.APIKey)

	resp, err := r.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("classifier api: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
		return "", &RetryableError{StatusCode: resp.StatusCode, Message: string(respBody)}
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("classifier api status %d: %s", resp.StatusCode, truncate(string(respBody), 200))
	}

	var apiResp chatResponse
	if err := json.Unmarshal(respBody, &apiResp); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if apiResp.Error != nil {
		return "", fmt.Errorf("classifier error: %s: %s", apiResp.Error.Type, apiResp.Error.Message)
	}
	if len(apiResp.Choices) == 0 {
		return "", fmt.Errorf("empty response from classifier")
	}
	return apiResp.Choices[0].Message.Content, nil
}

var (
	codeBlockRe = regexp.MustCompile("(?s)^```(?:json)?\\s*(.*?)\\s*```$")
	jsonArrayRe = regexp.MustCompile(`(?s)\[.*\]`)
)

func stripCodeBlock(s string) string {
	s = strings.TrimSpace(s)
	if m := codeBlockRe.FindStringSubmatch(s); len(m) > 1 {
		return m[1]
	}
	return s
}

// parseBatchResponse extracts and validates the JSON array the model
// returned. Any shape mismatch is an error; the caller falls back.
func parseBatchResponse(raw string, expected int) ([]Result, error) {
	text := stripCodeBlock(raw)
	arr := jsonArrayRe.FindString(text)
	if arr == "" {
		return nil, fmt.Errorf("no JSON array in response (raw: %s)", truncate(text, 200))
	}

	var results []Result
	if err := json.Unmarshal([]byte(arr), &results); err != nil {
		return nil, fmt.Errorf("parse results json: %w (raw: %s)", err, truncate(arr, 200))
	}
	if len(results) != expected {
		return nil, fmt.Errorf("expected %d results, got %d", expected, len(results))
	}

	for i := range results {
		sanitizeResult(&results[i])
	}
	return results, nil
}

// sanitizeResult clamps model output into the valid level and
// confidence ranges.
func sanitizeResult(r *Result) {
	if !r.IsHeading {
		r.Level = LevelDefault
	}
	if r.Level < LevelBook || r.Level > LevelNumbering {
		r.Level = LevelDefault
	}
	if r.Confidence < 0 {
		r.Confidence = 0
	}
	if r.Confidence > 1 {
		r.Confidence = 1
	}
}

func (r *Remote) cacheGet(text string) (Result, bool) {
	if r.cache == nil {
		return Result{}, false
	}
	key := contentKey(text)
	r.mu.Lock()
	defer r.mu.Unlock()
	res, ok := r.cache[key]
	return res, ok
}

func (r *Remote) cachePut(text string, res Result) {
	if r.cache == nil {
		return
	}
	key := contentKey(text)
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cache[key] = res
}

func contentKey(text string) string {
	h := sha256.Sum256([]byte(text))
	return fmt.Sprintf("%x", h[:])
}

// Close releases idle connections.
func (r *Remote) Close() {
	r.httpClient.CloseIdleConnections()
}
