// ABOUTME: Remembers the skill filters used on the project list
// ABOUTME: Stores the most recent searches as JSON in the config directory

package recent

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// MaxSearches is the maximum number of searches to keep
const MaxSearches = 5

// FileName is the JSON file inside the config directory
const FileName = "recent_searches.json"

// Searches manages the list of recently used skill filters, most recent first
type Searches struct {
	configDir string
	items     []string
}

type searchData struct {
	Skills []string `json:"skills"`
}

// New creates a Searches manager for configDir. An empty configDir keeps
// the list in memory only.
func New(configDir string) *Searches {
	return &Searches{configDir: configDir}
}

func (s *Searches) configFile() string {
	return filepath.Join(s.configDir, FileName)
}

// Load reads the list from disk. A missing or corrupt file yields an empty list.
func (s *Searches) Load() ([]string, error) {
	if s.configDir == "" {
		if s.items == nil {
			s.items = []string{}
		}
		return s.items, nil
	}

	data, err := os.ReadFile(s.configFile())
	if errors.Is(err, fs.ErrNotExist) {
		s.items = []string{}
		return s.items, nil
	}
	if err != nil {
		return nil, err
	}

	var saved searchData
	if err := json.Unmarshal(data, &saved); err != nil {
		s.items = []string{}
		return s.items, nil
	}

	s.items = make([]string, 0, len(saved.Skills))
	for _, skill := range saved.Skills {
		if skill = strings.TrimSpace(skill); skill != "" {
			s.items = append(s.items, skill)
		}
	}
	return s.items, nil
}

// Save replaces the list, keeping at most MaxSearches entries
func (s *Searches) Save(items []string) error {
	if len(items) > MaxSearches {
		items = items[:MaxSearches]
	}
	s.items = items
	if s.configDir == "" {
		return nil
	}

	if err := os.MkdirAll(s.configDir, 0700); err != nil {
		return err
	}
	data, err := json.MarshalIndent(searchData{Skills: items}, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.configFile(), data, 0600)
}

// Add moves skill to the front of the list. Matching is case-insensitive;
// blank skills are ignored.
func (s *Searches) Add(skill string) error {
	skill = strings.TrimSpace(skill)
	if skill == "" {
		return nil
	}
	if s.items == nil {
		if _, err := s.Load(); err != nil {
			s.items = []string{}
		}
	}

	next := make([]string, 0, len(s.items)+1)
	next = append(next, skill)
	for _, existing := range s.items {
		if !strings.EqualFold(existing, skill) {
			next = append(next, existing)
		}
	}
	return s.Save(next)
}

// List returns the current list, loading it on first use
func (s *Searches) List() []string {
	if s.items == nil {
		s.Load()
	}
	return s.items
}
