package config

// ExampleConfig returns an example configuration showing all available options.
func ExampleConfig() string {
	return `# tasklist configuration file
# Values can be overridden by TASKLIST_* environment variables or CLI flags.

# Directory holding the task store (supports ~ expansion and %VAR% on Windows)
data_dir = "~/.tasklist"

# The collection is stored as <data_dir>/<store_key>.json
store_key = "tasks"

# Log directory; the TUI writes tasklist.log here
log_dir = "~/.tasklist/logs"

# debug, info, warn, or error
log_level = "info"

# text, json, or logfmt
log_format = "text"
log_timestamps = false

# Categories offered by the TUI and shell; any name is accepted on add
categories = ["work", "personal"]

# Defaults for new tasks (default_category falls back to the first category)
default_priority = "medium"
default_category = "work"

# Save drag reorders made in the TUI instead of keeping them for the session
persist_order = false

# Initial filter of the TUI and shell
[filter]
priority = "all"   # all, low, medium, high
category = "all"   # all or a category name
status = "all"     # all, active, completed
`
}
