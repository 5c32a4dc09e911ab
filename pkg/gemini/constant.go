package gemini

import "time"

// Defaults applied by Config.Validate when the llm.providers entry for
// gemini leaves model, base_url or timeout empty.
const (
	DefaultModel   = "gemini-2.5-flash"
	DefaultAPIURL  = "https://generativelanguage.googleapis.com/v1beta"
	DefaultTimeout = 30 * time.Second
)
