package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// TomlFeed holds the feed rendering knobs
type TomlFeed struct {
	MaxItems      int `toml:"max_items"`
	MaxDepth      int `toml:"max_depth"`
	Concurrency   int `toml:"concurrency"`
	SummaryLength int `toml:"summary_length"`
}

// TomlConfig represents the top-level configuration
type TomlConfig struct {
	// Public base URL of the instance, e.g. https://notes.example.com
	Url string `toml:"url"`
	// Host name used in handles and mention rendering
	Host string `toml:"host"`
	// Base URL media files are served from; defaults to Url
	MediaUrl string `toml:"media_url"`

	Feed TomlFeed `toml:"feed"`
}

func LoadConfig(path string) (*TomlConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	var config TomlConfig
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	config.ApplyDefaults()

	return &config, nil
}

// ApplyDefaults fills in zero values with the defaults the original
// behavior is specified against.
func (c *TomlConfig) ApplyDefaults() {
	if c.MediaUrl == "" {
		c.MediaUrl = c.Url
	}
	if c.Feed.MaxItems == 0 {
		c.Feed.MaxItems = 20
	}
	if c.Feed.MaxDepth == 0 {
		c.Feed.MaxDepth = 10
	}
	if c.Feed.Concurrency == 0 {
		c.Feed.Concurrency = 4
	}
	if c.Feed.SummaryLength == 0 {
		c.Feed.SummaryLength = 100
	}
}
