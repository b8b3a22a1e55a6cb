package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Feed names one inspection inventory to watch. Exactly one of InventoryURL
// or InventoryPath is set.
type Feed struct {
	Name          string        `yaml:"name"`
	InventoryURL  string        `yaml:"inventory_url,omitempty"`
	InventoryPath string        `yaml:"inventory_path,omitempty"`
	Timeout       time.Duration `yaml:"timeout,omitempty"`
}

// FeedsFile is the YAML layout of PS_FEEDS_FILE:
// feeds: [{name, inventory_url | inventory_path, timeout}]
type FeedsFile struct {
	Feeds []Feed `yaml:"feeds"`
}

// DefaultFeedName labels the single feed configured through PS_INVENTORY_URL.
const DefaultFeedName = "default"

// LoadFeedsFile parses a feeds file. Returns nil if path is empty.
func LoadFeedsFile(path string) ([]Feed, error) {
	if path == "" {
		return nil, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read feeds file: %w", err)
	}

	var ff FeedsFile
	if err := yaml.Unmarshal(data, &ff); err != nil {
		return nil, fmt.Errorf("parse feeds file: %w", err)
	}

	if err := validateFeeds(ff.Feeds); err != nil {
		return nil, err
	}

	return ff.Feeds, nil
}

// Feeds resolves the feeds to watch: the feeds file when set, otherwise a
// single default feed for PS_INVENTORY_URL.
func (c Config) Feeds() ([]Feed, error) {
	if c.FeedsFile != "" {
		return LoadFeedsFile(c.FeedsFile)
	}
	if c.InventoryURL == "" {
		return nil, fmt.Errorf("no inventory configured")
	}
	return []Feed{{Name: DefaultFeedName, InventoryURL: c.InventoryURL}}, nil
}

func validateFeeds(feeds []Feed) error {
	if len(feeds) == 0 {
		return fmt.Errorf("feeds file contains no feeds")
	}

	seen := make(map[string]bool, len(feeds))
	for i, f := range feeds {
		if f.Name == "" {
			return fmt.Errorf("feed %d: name is required", i)
		}
		if seen[f.Name] {
			return fmt.Errorf("feed %q: duplicate name", f.Name)
		}
		seen[f.Name] = true

		switch {
		case f.InventoryURL == "" && f.InventoryPath == "":
			return fmt.Errorf("feed %q: inventory_url or inventory_path is required", f.Name)
		case f.InventoryURL != "" && f.InventoryPath != "":
			return fmt.Errorf("feed %q: set only one of inventory_url and inventory_path", f.Name)
		case f.InventoryURL != "":
			if err := validateHTTPURL(f.InventoryURL, "inventory_url"); err != nil {
				return fmt.Errorf("feed %q: %w", f.Name, err)
			}
		}

		if f.Timeout < 0 {
			return fmt.Errorf("feed %q: timeout cannot be negative", f.Name)
		}
	}

	return nil
}
