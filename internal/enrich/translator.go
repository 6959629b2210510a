// Package enrich holds the two backend-powered flows: background batch
// title translation and blocking article summarization.
package enrich

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/abelbrown/rreader/internal/brain"
	"github.com/abelbrown/rreader/internal/logging"
)

// translateTimeout bounds one batch translation call.
const translateTimeout = 90 * time.Second

// Translator translates entry titles in batches through the backend.
//
// At most one translation job runs system-wide; triggers while one is
// in flight are dropped. Completed batches land in a pending buffer
// that the UI drains once per tick when the redraw flag is set.
type Translator struct {
	provider  brain.Provider
	language  string
	cachePath string

	mu       sync.Mutex
	cache    map[string]string            // original title -> translation, append-only
	pending  map[string]map[string]string // category -> original -> translation
	redraw   bool
	inFlight bool
}

// NewTranslator creates a Translator persisting its cache under dataDir.
func NewTranslator(provider brain.Provider, dataDir, language string) *Translator {
	t := &Translator{
		provider:  provider,
		language:  language,
		cachePath: filepath.Join(dataDir, "translations.json"),
		cache:     make(map[string]string),
		pending:   make(map[string]map[string]string),
	}
	t.loadCache()
	return t
}

// InFlight reports whether a translation job is currently running.
func (t *Translator) InFlight() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.inFlight
}

// Trigger starts translation of the given canonical (pre-translation)
// titles for a category. Fully cached titles are applied without any
// network call; otherwise one background job translates the rest.
// A no-op while another job is in flight.
func (t *Translator) Trigger(category string, titles []string) {
	if t.provider == nil || !t.provider.Available() || len(titles) == 0 {
		return
	}

	t.mu.Lock()
	if t.inFlight {
		t.mu.Unlock()
		return
	}

	cached := make(map[string]string)
	var uncached []string
	for _, title := range titles {
		if title == "" {
			continue
		}
		if tr, ok := t.cache[title]; ok {
			cached[title] = tr
		} else {
			uncached = append(uncached, title)
		}
	}

	if len(uncached) == 0 {
		if len(cached) > 0 {
			t.stashLocked(category, cached)
		}
		t.mu.Unlock()
		return
	}

	t.inFlight = true
	t.mu.Unlock()

	go t.run(category, cached, uncached)
}

func (t *Translator) run(category string, cached map[string]string, uncached []string) {
	ctx, cancel := context.WithTimeout(context.Background(), translateTimeout)
	defer cancel()

	translated, err := t.translateBatch(ctx, uncached)
	if err != nil {
		// Titles without a translation stay untouched on screen.
		logging.Warn("batch translation failed", "category", category, "titles", len(uncached), "err", err)
	}

	t.mu.Lock()
	for orig, tr := range translated {
		t.cache[orig] = tr
		cached[orig] = tr
	}
	t.stashLocked(category, cached)
	t.inFlight = false
	t.mu.Unlock()

	if len(translated) > 0 {
		t.saveCache()
	}
}

// stashLocked merges results into the pending buffer and raises the
// redraw flag. Caller holds t.mu.
func (t *Translator) stashLocked(category string, results map[string]string) {
	if t.pending[category] == nil {
		t.pending[category] = make(map[string]string)
	}
	for orig, tr := range results {
		t.pending[category][orig] = tr
	}
	t.redraw = true
}

// TakePending hands the entire pending buffer to the caller when the
// redraw flag is set, clearing both. Returns nil when nothing is ready.
func (t *Translator) TakePending() map[string]map[string]string {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.redraw {
		return nil
	}
	out := t.pending
	t.pending = make(map[string]map[string]string)
	t.redraw = false
	return out
}

// translateBatch submits all titles in one prompt and parses the JSON
// object mapping original to translation, tolerating code fences.
func (t *Translator) translateBatch(ctx context.Context, titles []string) (map[string]string, error) {
	payload, err := json.Marshal(map[string][]string{"titles": titles})
	if err != nil {
		return nil, err
	}

	prompt := fmt.Sprintf(
		"Translate the 'titles' in the following JSON to %s and return the result as a JSON object "+
			"where each original title from the input is a key and its %s translation is the value. "+
			"Respond with ONLY the JSON object.\n\nInput:\n%s",
		t.language, t.language, payload)

	resp, err := t.provider.Generate(ctx, brain.Request{UserPrompt: prompt})
	if err != nil {
		return nil, err
	}

	cleaned := stripCodeFence(resp.Content)

	var translated map[string]string
	if err := json.Unmarshal([]byte(cleaned), &translated); err != nil {
		// Some models echo the input wrapper back.
		var wrapped struct {
			Titles map[string]string `json:"titles"`
		}
		if err2 := json.Unmarshal([]byte(cleaned), &wrapped); err2 != nil || wrapped.Titles == nil {
			return nil, fmt.Errorf("unparsable translation response: %w", err)
		}
		translated = wrapped.Titles
	}
	return translated, nil
}

// stripCodeFence removes ```json fences a model may wrap its reply in.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, "```json", "")
	s = strings.ReplaceAll(s, "```", "")
	return strings.TrimSpace(s)
}

func (t *Translator) loadCache() {
	data, err := os.ReadFile(t.cachePath)
	if err != nil {
		return
	}
	var cache map[string]string
	if err := json.Unmarshal(data, &cache); err != nil {
		logging.Warn("translation cache corrupt, starting empty", "err", err)
		return
	}
	t.cache = cache
}

func (t *Translator) saveCache() {
	t.mu.Lock()
	data, err := json.MarshalIndent(t.cache, "", "  ")
	t.mu.Unlock()
	if err != nil {
		return
	}
	if err := os.WriteFile(t.cachePath, data, 0644); err != nil {
		logging.Warn("translation cache write failed", "err", err)
	}
}
