// Package config loads the category and backend configuration for rreader.
//
// Everything lives under one data directory (normally ~/.rreader): the
// category config in feeds.json, the Gemini key in gemini.json, caches
// and logs alongside. The directory is created on first run and a
// default feeds.json is seeded so the program works out of the box.
package config

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

//go:embed default_feeds.json
var defaultFeeds []byte

// Category is one named group of feed sources, rendered as a tab.
type Category struct {
	Key        string
	Title      string            `json:"title"`
	Feeds      map[string]string `json:"feeds"`
	ShowAuthor bool              `json:"show_author"`
}

// Gemini holds the text backend settings.
type Gemini struct {
	APIKey   string `json:"api_key"`
	Model    string `json:"model,omitempty"`
	Language string `json:"language,omitempty"`
}

// DefaultDataDir returns ~/.rreader.
func DefaultDataDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".rreader"), nil
}

// LoadCategories reads feeds.json from dataDir, seeding the embedded
// default config if the file does not exist. Categories are returned in
// sorted key order so tabs and source iteration are deterministic.
func LoadCategories(dataDir string) ([]Category, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	path := filepath.Join(dataDir, "feeds.json")
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		if werr := os.WriteFile(path, defaultFeeds, 0644); werr != nil {
			return nil, fmt.Errorf("failed to seed feeds config: %w", werr)
		}
		data = defaultFeeds
	} else if err != nil {
		return nil, fmt.Errorf("failed to read feeds config: %w", err)
	}

	var raw map[string]Category
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("invalid feeds config %s: %w", path, err)
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("feeds config %s defines no categories", path)
	}

	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	categories := make([]Category, 0, len(keys))
	for _, k := range keys {
		c := raw[k]
		c.Key = k
		if c.Title == "" {
			c.Title = k
		}
		categories = append(categories, c)
	}
	return categories, nil
}

// LoadGemini resolves the backend settings. The environment wins over
// the config file, GEMINI_API_KEY over GOOGLE_API_KEY; a missing key
// just disables enrichment.
func LoadGemini(dataDir string) Gemini {
	g := Gemini{}

	path := filepath.Join(dataDir, "gemini.json")
	if data, err := os.ReadFile(path); err == nil {
		// Malformed file means no backend, not a fatal error.
		_ = json.Unmarshal(data, &g)
	}

	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		g.APIKey = key
	} else if key := os.Getenv("GOOGLE_API_KEY"); key != "" {
		g.APIKey = key
	}

	if g.Model == "" {
		g.Model = "gemini-2.5-flash-lite"
	}
	if g.Language == "" {
		g.Language = "Korean"
	}
	return g
}
