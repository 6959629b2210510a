package enrich

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/abelbrown/rreader/internal/brain"
)

// fakeProvider scripts backend responses and records prompts.
type fakeProvider struct {
	calls   atomic.Int64
	content string
	err     error
	block   chan struct{} // when non-nil, Generate waits on it
	prompts chan string
}

func (f *fakeProvider) Name() string    { return "fake" }
func (f *fakeProvider) Available() bool { return true }

func (f *fakeProvider) Generate(ctx context.Context, req brain.Request) (brain.Response, error) {
	f.calls.Add(1)
	if f.prompts != nil {
		f.prompts <- req.UserPrompt
	}
	if f.block != nil {
		<-f.block
	}
	if f.err != nil {
		return brain.Response{}, f.err
	}
	return brain.Response{Content: f.content, Model: "fake"}, nil
}

// waitPending polls TakePending until a batch lands or the deadline hits.
func waitPending(t *testing.T, tr *Translator) map[string]map[string]string {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if got := tr.TakePending(); got != nil {
			return got
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("no pending translations arrived in time")
	return nil
}

func TestTriggerTranslatesBatch(t *testing.T) {
	p := &fakeProvider{content: `{"Hello": "안녕", "World": "세계"}`}
	tr := NewTranslator(p, t.TempDir(), "Korean")

	tr.Trigger("news", []string{"Hello", "World"})
	got := waitPending(t, tr)

	news := got["news"]
	if news["Hello"] != "안녕" || news["World"] != "세계" {
		t.Errorf("pending = %v", news)
	}
	if p.calls.Load() != 1 {
		t.Errorf("provider called %d times, want 1", p.calls.Load())
	}
}

func TestTriggerFencedResponse(t *testing.T) {
	p := &fakeProvider{content: "```json\n{\"Hi\": \"안녕\"}\n```"}
	tr := NewTranslator(p, t.TempDir(), "Korean")

	tr.Trigger("news", []string{"Hi"})
	got := waitPending(t, tr)
	if got["news"]["Hi"] != "안녕" {
		t.Errorf("pending = %v, want fenced JSON parsed", got)
	}
}

func TestTriggerWrappedResponse(t *testing.T) {
	p := &fakeProvider{content: `{"titles": {"Hi": "안녕"}}`}
	tr := NewTranslator(p, t.TempDir(), "Korean")

	tr.Trigger("news", []string{"Hi"})
	got := waitPending(t, tr)
	if got["news"]["Hi"] != "안녕" {
		t.Errorf("pending = %v, want wrapper tolerated", got)
	}
}

func TestTriggerSingleFlight(t *testing.T) {
	p := &fakeProvider{content: `{"a": "가"}`, block: make(chan struct{})}
	tr := NewTranslator(p, t.TempDir(), "Korean")

	tr.Trigger("news", []string{"a"})

	deadline := time.Now().Add(time.Second)
	for !tr.InFlight() && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	if !tr.InFlight() {
		t.Fatal("first trigger never took off")
	}

	// Dropped while the first job runs.
	tr.Trigger("news", []string{"b"})
	close(p.block)

	waitPending(t, tr)
	if p.calls.Load() != 1 {
		t.Errorf("provider called %d times, want 1 (second trigger dropped)", p.calls.Load())
	}
}

func TestTriggerAllCachedSkipsNetwork(t *testing.T) {
	p := &fakeProvider{content: `{"Hello": "안녕"}`}
	tr := NewTranslator(p, t.TempDir(), "Korean")

	tr.Trigger("news", []string{"Hello"})
	waitPending(t, tr)

	// Same canonical title again: served from cache, no second call.
	tr.Trigger("news", []string{"Hello"})
	got := tr.TakePending()
	if got == nil || got["news"]["Hello"] != "안녕" {
		t.Fatalf("cached batch not stashed immediately: %v", got)
	}
	if p.calls.Load() != 1 {
		t.Errorf("provider called %d times, want 1", p.calls.Load())
	}
}

func TestTriggerPromptCarriesTitles(t *testing.T) {
	p := &fakeProvider{content: `{"Breaking news": "속보"}`, prompts: make(chan string, 1)}
	tr := NewTranslator(p, t.TempDir(), "Korean")

	tr.Trigger("news", []string{"Breaking news"})
	prompt := <-p.prompts
	if !strings.Contains(prompt, "Breaking news") {
		t.Errorf("prompt missing title: %q", prompt)
	}
	if !strings.Contains(prompt, "Korean") {
		t.Errorf("prompt missing target language: %q", prompt)
	}
	waitPending(t, tr)
}

func TestTakePendingEdgeTriggered(t *testing.T) {
	p := &fakeProvider{content: `{"x": "엑스"}`}
	tr := NewTranslator(p, t.TempDir(), "Korean")

	tr.Trigger("news", []string{"x"})
	if got := waitPending(t, tr); got == nil {
		t.Fatal("first take returned nil")
	}
	if got := tr.TakePending(); got != nil {
		t.Errorf("second take = %v, want nil until the next batch", got)
	}
}

func TestTranslationCachePersisted(t *testing.T) {
	dir := t.TempDir()
	p := &fakeProvider{content: `{"Hello": "안녕"}`}
	tr := NewTranslator(p, dir, "Korean")

	tr.Trigger("news", []string{"Hello"})
	waitPending(t, tr)

	data, err := os.ReadFile(filepath.Join(dir, "translations.json"))
	if err != nil {
		t.Fatalf("cache file not written: %v", err)
	}
	var cache map[string]string
	if err := json.Unmarshal(data, &cache); err != nil {
		t.Fatalf("cache not valid JSON: %v", err)
	}
	if cache["Hello"] != "안녕" {
		t.Errorf("cache = %v, keys must be original titles", cache)
	}

	// A fresh Translator over the same dir sees the cache and needs no call.
	p2 := &fakeProvider{}
	tr2 := NewTranslator(p2, dir, "Korean")
	tr2.Trigger("news", []string{"Hello"})
	got := tr2.TakePending()
	if got == nil || got["news"]["Hello"] != "안녕" {
		t.Fatalf("reloaded cache not applied: %v", got)
	}
	if p2.calls.Load() != 0 {
		t.Errorf("provider called %d times, want 0", p2.calls.Load())
	}
}

func TestTriggerBackendFailureLeavesTitlesAlone(t *testing.T) {
	p := &fakeProvider{err: context.DeadlineExceeded}
	tr := NewTranslator(p, t.TempDir(), "Korean")

	tr.Trigger("news", []string{"Hello"})

	deadline := time.Now().Add(2 * time.Second)
	for tr.InFlight() || p.calls.Load() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("translation job never finished")
		}
		time.Sleep(5 * time.Millisecond)
	}

	if got := tr.TakePending(); got != nil && len(got["news"]) != 0 {
		t.Errorf("failed batch produced translations: %v", got)
	}
	// The flag clears so a later trigger can retry.
	if tr.InFlight() {
		t.Error("inFlight stuck after failure")
	}
}
