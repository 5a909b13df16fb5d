package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/nibzard/tasklist-go/internal/utils"
)

// lookupFunc returns an environment value and where it came from.
type lookupFunc func(key string) (string, Source, bool)

// envLookup reads the process environment first and falls back to the
// values read from a .env file.
func envLookup(dotenv map[string]string) lookupFunc {
	return func(key string) (string, Source, bool) {
		if v, ok := os.LookupEnv(key); ok && v != "" {
			return v, SourceEnv, true
		}
		if v, ok := dotenv[key]; ok && v != "" {
			return v, SourceDotEnv, true
		}
		return "", "", false
	}
}

// loadFromEnv overrides config from TASKLIST_* variables.
func loadFromEnv(ws *WithSources, lookup lookupFunc) error {
	cfg := ws.Config
	str := func(key, field string, target *string) {
		if v, src, ok := lookup(key); ok {
			*target = v
			ws.Sources[field] = src
		}
	}
	boolean := func(key, field string, target *bool) error {
		v, src, ok := lookup(key)
		if !ok {
			return nil
		}
		b, err := parseBool(v)
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		*target = b
		ws.Sources[field] = src
		return nil
	}

	str("TASKLIST_DATA_DIR", "data_dir", &cfg.DataDir)
	str("TASKLIST_STORE_KEY", "store_key", &cfg.StoreKey)
	str("TASKLIST_LOG_DIR", "log_dir", &cfg.LogDir)
	str("TASKLIST_LOG_LEVEL", "log_level", &cfg.LogLevel)
	str("TASKLIST_LOG_FORMAT", "log_format", &cfg.LogFormat)
	str("TASKLIST_DEFAULT_PRIORITY", "default_priority", &cfg.DefaultPriority)
	str("TASKLIST_DEFAULT_CATEGORY", "default_category", &cfg.DefaultCategory)
	if v, src, ok := lookup("TASKLIST_CATEGORIES"); ok {
		cfg.Categories = utils.SplitAndTrim(v, ",")
		ws.Sources["categories"] = src
	}
	if err := boolean("TASKLIST_LOG_TIMESTAMPS", "log_timestamps", &cfg.LogTimestamps); err != nil {
		return err
	}
	return boolean("TASKLIST_PERSIST_ORDER", "persist_order", &cfg.PersistOrder)
}

// parseBool accepts 1/0, true/false, yes/no, and on/off.
func parseBool(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "yes", "on":
		return true, nil
	case "0", "false", "no", "off":
		return false, nil
	}
	return false, fmt.Errorf("invalid boolean %q", s)
}
