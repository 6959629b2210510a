package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/abelbrown/rreader/internal/config"
	"github.com/abelbrown/rreader/internal/logging"
)

// RefreshInterval is the cache freshness window. A cache file older
// than this (or an in-memory list last refreshed longer ago) is stale.
const RefreshInterval = 120 * time.Second

// maxConcurrentFetches limits parallel per-source fetch operations.
const maxConcurrentFetches = 5

// LoadingState is the progress of the in-flight aggregation, readable
// concurrently with the fetch updating it.
type LoadingState struct {
	IsLoading bool
	Current   int
	Total     int
}

// Aggregator fetches all sources of a category, merges the results and
// maintains the per-category cache files.
type Aggregator struct {
	dataDir string
	fetcher *Fetcher
	now     func() time.Time

	mu      sync.Mutex
	loading LoadingState
}

// NewAggregator creates an Aggregator writing caches under dataDir.
func NewAggregator(dataDir string, fetcher *Fetcher) *Aggregator {
	return &Aggregator{
		dataDir: dataDir,
		fetcher: fetcher,
		now:     time.Now,
	}
}

// Loading returns a snapshot of the current loading state.
func (a *Aggregator) Loading() LoadingState {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.loading
}

// FetchFeeds fetches every source of cat, merges the entries by id
// (last write wins) and returns them sorted newest first. Individual
// source failures are swallowed; an empty result is still success.
// Sources are fetched in parallel but merged in sorted name order so
// id collisions resolve the same way every run.
func (a *Aggregator) FetchFeeds(ctx context.Context, cat config.Category) ([]Entry, error) {
	names := make([]string, 0, len(cat.Feeds))
	for name := range cat.Feeds {
		names = append(names, name)
	}
	sort.Strings(names)

	a.mu.Lock()
	a.loading = LoadingState{IsLoading: true, Current: 0, Total: len(names)}
	a.mu.Unlock()

	defer func() {
		a.mu.Lock()
		a.loading.IsLoading = false
		a.mu.Unlock()
	}()

	results := make([][]Entry, len(names))

	var g errgroup.Group
	g.SetLimit(maxConcurrentFetches)
	for i, name := range names {
		i, name := i, name
		g.Go(func() error {
			entries, err := a.fetcher.Fetch(ctx, name, cat.Feeds[name], cat.ShowAuthor)
			if err != nil {
				logging.Warn("source fetch failed", "category", cat.Key, "source", name, "err", err)
			} else {
				results[i] = entries
			}

			a.mu.Lock()
			a.loading.Current++
			a.mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	merged := make(map[int64]Entry)
	for _, entries := range results {
		for _, e := range entries {
			merged[e.ID] = e
		}
	}

	entries := make([]Entry, 0, len(merged))
	for _, e := range merged {
		entries = append(entries, e)
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Timestamp > entries[j].Timestamp
	})

	if len(entries) > 0 {
		if err := a.saveCache(cat.Key, CachedFeed{Entries: entries, CreatedAt: a.now().Unix()}); err != nil {
			logging.Warn("cache write failed", "category", cat.Key, "err", err)
		}
	}

	logging.Info("feeds fetched", "category", cat.Key, "sources", len(names), "entries", len(entries))
	return entries, nil
}

// LoadOrRefresh returns the cached entries when the cache is fresh and
// non-empty, otherwise fetches. A corrupt cache file is a cache miss.
func (a *Aggregator) LoadOrRefresh(ctx context.Context, cat config.Category) ([]Entry, error) {
	if cached, ok := a.loadCache(cat.Key); ok {
		age := a.now().Unix() - cached.CreatedAt
		if age < int64(RefreshInterval/time.Second) && len(cached.Entries) > 0 {
			return cached.Entries, nil
		}
	}
	return a.FetchFeeds(ctx, cat)
}

func (a *Aggregator) cachePath(category string) string {
	return filepath.Join(a.dataDir, fmt.Sprintf("rss_%s.json", category))
}

func (a *Aggregator) loadCache(category string) (CachedFeed, bool) {
	data, err := os.ReadFile(a.cachePath(category))
	if err != nil {
		return CachedFeed{}, false
	}
	var cached CachedFeed
	if err := json.Unmarshal(data, &cached); err != nil {
		logging.Warn("cache corrupt, refetching", "category", category, "err", err)
		return CachedFeed{}, false
	}
	return cached, true
}

func (a *Aggregator) saveCache(category string, feed CachedFeed) error {
	data, err := json.MarshalIndent(feed, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(a.cachePath(category), data, 0644)
}
