package config

import (
	"flag"
)

// parseFlags registers the global flags on fs, parses args, and applies
// only the flags that were set explicitly.
func parseFlags(ws *WithSources, fs *flag.FlagSet, args []string) error {
	if fs == nil {
		fs = flag.NewFlagSet("tasklist", flag.ContinueOnError)
	}
	cfg := ws.Config

	dataDir := fs.String("data-dir", cfg.DataDir, "Directory holding the task store")
	storeKey := fs.String("key", cfg.StoreKey, "Key the task collection is stored under")
	logDir := fs.String("log-dir", cfg.LogDir, "Log directory")
	logLevel := fs.String("log-level", cfg.LogLevel, "Log level (debug|info|warn|error)")
	logFormat := fs.String("log-format", cfg.LogFormat, "Log format (text|json|logfmt)")
	persistOrder := fs.Bool("persist-order", cfg.PersistOrder, "Save drag reorders in the TUI")

	if err := fs.Parse(args); err != nil {
		return err
	}

	set := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) {
		set[f.Name] = true
	})

	apply := func(name, field string, fn func()) {
		if set[name] {
			fn()
			ws.Sources[field] = SourceFlag
		}
	}
	apply("data-dir", "data_dir", func() { cfg.DataDir = *dataDir })
	apply("key", "store_key", func() { cfg.StoreKey = *storeKey })
	apply("log-dir", "log_dir", func() { cfg.LogDir = *logDir })
	apply("log-level", "log_level", func() { cfg.LogLevel = *logLevel })
	apply("log-format", "log_format", func() { cfg.LogFormat = *logFormat })
	apply("persist-order", "persist_order", func() { cfg.PersistOrder = *persistOrder })
	return nil
}
