package config

import (
	"path/filepath"

	"github.com/nibzard/tasklist-go/internal/filter"
	"github.com/nibzard/tasklist-go/internal/todo"
)

// Source represents where a configuration value came from.
type Source string

const (
	SourceDefault  Source = "default"
	SourceUserFile Source = "user file"
	SourceProjFile Source = "project file"
	SourceDotEnv   Source = ".env"
	SourceEnv      Source = "environment"
	SourceFlag     Source = "flag"
)

// WithSources holds configuration along with the source of each field.
type WithSources struct {
	Config  *Config
	Sources map[string]Source
	// Files lists the config files that were read, lowest priority first.
	Files []string
	// Warnings collects non-fatal problems, such as unknown keys.
	Warnings []string
}

// Default values.
const (
	DefaultDataDir   = "~/.tasklist"
	DefaultStoreKey  = "tasks"
	DefaultLogDir    = "~/.tasklist/logs"
	DefaultLogLevel  = "info"
	DefaultLogFormat = "text"
	DefaultPriority  = "medium"
)

// HistoryFileName is the shell history file inside the data directory.
const HistoryFileName = "shell_history"

// Config holds the full configuration for tasklist.
type Config struct {
	// Storage
	DataDir  string `toml:"data_dir"`
	StoreKey string `toml:"store_key"`

	// Logging
	LogDir        string `toml:"log_dir"`
	LogLevel      string `toml:"log_level"`
	LogFormat     string `toml:"log_format"`
	LogTimestamps bool   `toml:"log_timestamps"`

	// Task defaults
	Categories      []string `toml:"categories"`
	DefaultPriority string   `toml:"default_priority"`
	DefaultCategory string   `toml:"default_category"`

	// Write drag reorders back to the store.
	PersistOrder bool `toml:"persist_order"`

	// Initial filter of the TUI and shell.
	Filter FilterConfig `toml:"filter"`
}

// FilterConfig holds the three filter selectors.
type FilterConfig struct {
	Priority string `toml:"priority"`
	Category string `toml:"category"`
	Status   string `toml:"status"`
}

// Criteria returns the configured filter. Values were validated by Load.
func (c *Config) Criteria() filter.Criteria {
	crit, err := filter.Parse(c.Filter.Priority, c.Filter.Category, c.Filter.Status)
	if err != nil {
		return filter.Default()
	}
	return crit
}

// Priority returns the default priority for new tasks.
func (c *Config) Priority() todo.Priority {
	p, err := todo.ParsePriority(c.DefaultPriority)
	if err != nil {
		return todo.PriorityMedium
	}
	return p
}

// Category returns the default category for new tasks.
func (c *Config) Category() todo.Category {
	if c.DefaultCategory == "" {
		return todo.CategoryWork
	}
	return todo.Category(c.DefaultCategory)
}

// CategoryList returns the configured categories as todo.Category values.
func (c *Config) CategoryList() []todo.Category {
	if len(c.Categories) == 0 {
		return todo.DefaultCategories()
	}
	out := make([]todo.Category, 0, len(c.Categories))
	for _, name := range c.Categories {
		out = append(out, todo.Category(name))
	}
	return out
}

// HistoryFile returns the shell history path.
func (c *Config) HistoryFile() string {
	return filepath.Join(c.DataDir, HistoryFileName)
}
