package config

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"github.com/nibzard/tasklist-go/internal/filter"
	"github.com/nibzard/tasklist-go/internal/kv"
	"github.com/nibzard/tasklist-go/internal/logging"
	"github.com/nibzard/tasklist-go/internal/todo"
)

// DotEnvFile is the dotenv file read from the working directory.
const DotEnvFile = ".env"

// Load loads configuration from multiple sources in priority order:
// 1. Defaults
// 2. User config file (~/.tasklist/tasklist.toml or OS-specific config dir)
// 3. Project config file (tasklist.toml or .tasklist.toml in current directory)
// 4. .env file (only for variables not already in the environment)
// 5. Environment variables
// 6. CLI flags
func Load(flags *flag.FlagSet, args []string) (*Config, error) {
	ws, err := LoadWithSources(flags, args)
	if err != nil {
		return nil, err
	}
	return ws.Config, nil
}

// LoadWithSources loads configuration and tracks the source of each value.
// Global flags are registered on flags and parsed from args; the remaining
// arguments are available from flags.Args().
func LoadWithSources(flags *flag.FlagSet, args []string) (*WithSources, error) {
	ws := &WithSources{
		Config:  &Config{},
		Sources: make(map[string]Source),
	}

	// 1. Defaults
	setDefaults(ws.Config)
	for _, field := range configFields() {
		ws.Sources[field] = SourceDefault
	}

	// 2. User config file
	if path := findUserConfigFile(); path != "" {
		if err := loadConfigFile(ws, path, SourceUserFile); err != nil {
			return nil, fmt.Errorf("loading user config file %s: %w", path, err)
		}
	}

	// 3. Project config file (overrides user config)
	if path := findProjectConfigFile(); path != "" {
		if err := loadConfigFile(ws, path, SourceProjFile); err != nil {
			return nil, fmt.Errorf("loading project config file %s: %w", path, err)
		}
	}

	// 4 + 5. Environment, with .env filling the gaps
	dotenv, err := readDotEnv(DotEnvFile)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", DotEnvFile, err)
	}
	if err := loadFromEnv(ws, envLookup(dotenv)); err != nil {
		return nil, err
	}

	// 6. CLI flags
	if err := parseFlags(ws, flags, args); err != nil {
		return nil, err
	}

	// 7. Derived values and validation
	if err := finalizeConfig(ws.Config); err != nil {
		return nil, fmt.Errorf("finalizing config: %w", err)
	}
	return ws, nil
}

// configFields returns the configurable field names for source tracking.
func configFields() []string {
	return []string{
		"data_dir",
		"store_key",
		"log_dir",
		"log_level",
		"log_format",
		"log_timestamps",
		"categories",
		"default_priority",
		"default_category",
		"persist_order",
		"filter.priority",
		"filter.category",
		"filter.status",
	}
}

// Fields returns the configurable field names in display order.
func Fields() []string {
	return configFields()
}

// loadConfigFile decodes a TOML file over cfg and marks every key the file
// defines with source.
func loadConfigFile(ws *WithSources, path string, source Source) error {
	md, err := toml.DecodeFile(path, ws.Config)
	if err != nil {
		return err
	}
	for _, field := range configFields() {
		if md.IsDefined(strings.Split(field, ".")...) {
			ws.Sources[field] = source
		}
	}
	for _, key := range md.Undecoded() {
		ws.Warnings = append(ws.Warnings, fmt.Sprintf("%s: unknown key %q", path, key.String()))
	}
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	ws.Files = append(ws.Files, path)
	return nil
}

// readDotEnv reads path with godotenv. A missing file is not an error.
func readDotEnv(path string) (map[string]string, error) {
	values, err := godotenv.Read(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	return values, nil
}

// finalizeConfig expands paths and validates values.
func finalizeConfig(cfg *Config) error {
	var err error
	if cfg.DataDir, err = absPath(cfg.DataDir); err != nil {
		return fmt.Errorf("data_dir: %w", err)
	}
	if cfg.LogDir, err = absPath(cfg.LogDir); err != nil {
		return fmt.Errorf("log_dir: %w", err)
	}
	if err := kv.ValidateKey(cfg.StoreKey); err != nil {
		return fmt.Errorf("store_key: %w", err)
	}

	cfg.LogLevel = strings.ToLower(strings.TrimSpace(cfg.LogLevel))
	if _, err := logging.ParseLevel(cfg.LogLevel); err != nil {
		return fmt.Errorf("log_level: %w", err)
	}
	cfg.LogFormat = strings.ToLower(strings.TrimSpace(cfg.LogFormat))
	if _, err := logging.ParseFormatter(cfg.LogFormat); err != nil {
		return fmt.Errorf("log_format: %w", err)
	}

	p, err := todo.ParsePriority(cfg.DefaultPriority)
	if err != nil {
		return fmt.Errorf("default_priority: %w", err)
	}
	cfg.DefaultPriority = string(p)

	cfg.Categories = normalizeCategories(cfg.Categories)
	if strings.TrimSpace(cfg.DefaultCategory) == "" {
		cfg.DefaultCategory = cfg.Categories[0]
	} else {
		c, err := todo.ParseCategory(cfg.DefaultCategory)
		if err != nil {
			return fmt.Errorf("default_category: %w", err)
		}
		cfg.DefaultCategory = string(c)
		if !contains(cfg.Categories, cfg.DefaultCategory) {
			cfg.Categories = append(cfg.Categories, cfg.DefaultCategory)
		}
	}

	crit, err := filter.Parse(cfg.Filter.Priority, cfg.Filter.Category, cfg.Filter.Status)
	if err != nil {
		return fmt.Errorf("filter: %w", err)
	}
	cfg.Filter = FilterConfig{
		Priority: crit.Priority,
		Category: crit.Category,
		Status:   string(crit.Status),
	}
	return nil
}

// absPath expands ~ and environment variables, then makes p absolute.
func absPath(p string) (string, error) {
	p = expandPath(strings.TrimSpace(p))
	if p == "" {
		return "", fmt.Errorf("path is empty")
	}
	if filepath.IsAbs(p) {
		return filepath.Clean(p), nil
	}
	return filepath.Abs(p)
}

// normalizeCategories lowercases, drops blanks and duplicates, and falls
// back to the defaults when nothing is left.
func normalizeCategories(in []string) []string {
	out := make([]string, 0, len(in))
	for _, name := range in {
		c, err := todo.ParseCategory(name)
		if err != nil || contains(out, string(c)) {
			continue
		}
		out = append(out, string(c))
	}
	if len(out) == 0 {
		for _, c := range todo.DefaultCategories() {
			out = append(out, string(c))
		}
	}
	return out
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// ActiveFile returns the highest-priority config file that was read.
func (ws *WithSources) ActiveFile() string {
	if len(ws.Files) == 0 {
		return ""
	}
	return ws.Files[len(ws.Files)-1]
}

// Value returns the effective value of field formatted for display.
func (ws *WithSources) Value(field string) string {
	cfg := ws.Config
	switch field {
	case "data_dir":
		return cfg.DataDir
	case "store_key":
		return cfg.StoreKey
	case "log_dir":
		return cfg.LogDir
	case "log_level":
		return cfg.LogLevel
	case "log_format":
		return cfg.LogFormat
	case "log_timestamps":
		return fmt.Sprint(cfg.LogTimestamps)
	case "categories":
		return strings.Join(cfg.Categories, ", ")
	case "default_priority":
		return cfg.DefaultPriority
	case "default_category":
		return cfg.DefaultCategory
	case "persist_order":
		return fmt.Sprint(cfg.PersistOrder)
	case "filter.priority":
		return cfg.Filter.Priority
	case "filter.category":
		return cfg.Filter.Category
	case "filter.status":
		return cfg.Filter.Status
	}
	return ""
}
