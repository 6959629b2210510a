package feed

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/mmcdole/gofeed/atom"
	"github.com/mmcdole/gofeed/rss"
	"golang.org/x/time/rate"
)

const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// placeholderTitle is used when an item carries no title at all.
const placeholderTitle = "(no title)"

// Fetcher retrieves one feed source and normalizes its items.
type Fetcher struct {
	client  *http.Client
	limiter *rate.Limiter
	now     func() time.Time
}

// NewFetcher creates a Fetcher with the given HTTP timeout. Requests
// across all sources share one rate limiter so a large category does
// not burst-hammer the network.
func NewFetcher(timeout time.Duration) *Fetcher {
	return &Fetcher{
		client:  &http.Client{Timeout: timeout},
		limiter: rate.NewLimiter(rate.Every(100*time.Millisecond), 5),
		now:     time.Now,
	}
}

// Fetch performs one GET against url and returns the normalized
// entries. The body is parsed as RSS first and as Atom on failure; if
// both parsers reject it the source contributes nothing.
func (f *Fetcher) Fetch(ctx context.Context, sourceName, url string, showAuthor bool) ([]Entry, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP error: %d %s", resp.StatusCode, resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read feed body: %w", err)
	}

	now := f.now()

	rssParser := &rss.Parser{}
	if feed, err := rssParser.Parse(bytes.NewReader(body)); err == nil {
		return f.convertRSS(feed, sourceName, showAuthor, now), nil
	}

	atomParser := &atom.Parser{}
	if feed, err := atomParser.Parse(bytes.NewReader(body)); err == nil {
		return f.convertAtom(feed, sourceName, showAuthor, now), nil
	}

	return nil, fmt.Errorf("%s: body is neither RSS nor Atom", sourceName)
}

func (f *Fetcher) convertRSS(feed *rss.Feed, sourceName string, showAuthor bool, now time.Time) []Entry {
	entries := make([]Entry, 0, len(feed.Items))
	for _, item := range feed.Items {
		title := item.Title
		if title == "" {
			title = placeholderTitle
		}

		published := now
		if item.PubDateParsed != nil {
			published = *item.PubDateParsed
		}

		name := sourceName
		if showAuthor {
			name = rssAuthor(item, sourceName)
		}

		ts := published.Unix()
		entries = append(entries, Entry{
			ID:         ts,
			SourceName: name,
			PubDate:    displayDate(published, now),
			Timestamp:  ts,
			URL:        item.Link,
			Title:      title,
		})
	}
	return entries
}

func (f *Fetcher) convertAtom(feed *atom.Feed, sourceName string, showAuthor bool, now time.Time) []Entry {
	entries := make([]Entry, 0, len(feed.Entries))
	for _, item := range feed.Entries {
		title := item.Title
		if title == "" {
			title = placeholderTitle
		}

		published := now
		if item.PublishedParsed != nil {
			published = *item.PublishedParsed
		} else if item.UpdatedParsed != nil {
			published = *item.UpdatedParsed
		}

		link := ""
		if len(item.Links) > 0 {
			link = item.Links[0].Href
		}

		name := sourceName
		if showAuthor {
			name = atomAuthor(item, sourceName)
		}

		ts := published.Unix()
		entries = append(entries, Entry{
			ID:         ts,
			SourceName: name,
			PubDate:    displayDate(published, now),
			Timestamp:  ts,
			URL:        link,
			Title:      title,
		})
	}
	return entries
}

// rssAuthor resolves the display name for an RSS item: item author,
// then Dublin Core creator, then the source name.
func rssAuthor(item *rss.Item, sourceName string) string {
	if item.Author != "" {
		return item.Author
	}
	if item.DublinCoreExt != nil && len(item.DublinCoreExt.Creator) > 0 && item.DublinCoreExt.Creator[0] != "" {
		return item.DublinCoreExt.Creator[0]
	}
	return sourceName
}

// atomAuthor resolves the display name for an Atom entry: first author
// name with any leading /u/ marker stripped, then the source name.
// Reddit's Atom feeds name authors "/u/whoever".
func atomAuthor(entry *atom.Entry, sourceName string) string {
	if len(entry.Authors) > 0 && entry.Authors[0].Name != "" {
		return strings.TrimPrefix(entry.Authors[0].Name, "/u/")
	}
	return sourceName
}
