package enrich

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
	"unicode/utf8"

	"github.com/abelbrown/rreader/internal/brain"
	"github.com/abelbrown/rreader/internal/logging"
)

// maxDocBytes caps how much stripped article text goes into the prompt.
const maxDocBytes = 100_000

const summarizeUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36"

// FetchError reports that the article page itself could not be
// retrieved, as opposed to the backend failing.
type FetchError struct {
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("page fetch failed (HTTP %d)", e.StatusCode)
	}
	return fmt.Sprintf("page fetch failed: %v", e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// Summarizer fetches an article and asks the backend for a summary.
// The call is synchronous; the UI deliberately blocks on it.
type Summarizer struct {
	provider brain.Provider
	language string
	client   *http.Client
}

// NewSummarizer creates a Summarizer.
func NewSummarizer(provider brain.Provider, language string) *Summarizer {
	return &Summarizer{
		provider: provider,
		language: language,
		client:   &http.Client{Timeout: 15 * time.Second},
	}
}

// Summarize fetches url, strips its markup and returns the backend's
// bullet-point summary. A *FetchError means the page was unreachable;
// backend errors come back as-is.
func (s *Summarizer) Summarize(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", &FetchError{Err: err}
	}
	req.Header.Set("User-Agent", summarizeUserAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return "", &FetchError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return "", &FetchError{StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &FetchError{Err: err}
	}

	text := truncateBytes(StripHTML(string(body)), maxDocBytes)

	prompt := fmt.Sprintf(
		"Summarize the main points of the following article in %s as a bullet point list. "+
			"Output only the list, with no preamble, restatement or closing paragraph.\n\n%s",
		s.language, text)

	logging.Info("summarizing", "url", url, "doc_bytes", len(text))

	result, err := s.provider.Generate(ctx, brain.Request{UserPrompt: prompt, MaxTokens: 4096})
	if err != nil {
		return "", err
	}
	return result.Content, nil
}

// truncateBytes cuts s to at most n bytes without splitting a rune.
func truncateBytes(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
