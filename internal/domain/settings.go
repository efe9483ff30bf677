package domain

// Settings mirrors ~/.quillai/config.yaml. It is the snapshot of externally
// supplied configuration the orchestrator consumes; persistence lives in the
// settings loader.
type Settings struct {
	ConfigFormatVersion string    `yaml:"config_format_version"`
	APIKey              string    `yaml:"api_key"`
	ModelID             string    `yaml:"model_id"`
	Redaction           Redaction `yaml:"redaction"`
	PrivateMode         bool      `yaml:"private_mode"`
	CostPer1KTokens     float64   `yaml:"cost_per_1k_tokens"`
	History             History   `yaml:"history"`
	Backends            Backends  `yaml:"backends"`
}

// Redaction captures the per-category scrub toggles and the preview gate.
type Redaction struct {
	Emails        bool  `yaml:"redact_emails"`
	Paths         bool  `yaml:"redact_paths"`
	Tokens        *bool `yaml:"redact_tokens"`           // default true
	PreviewPrompt *bool `yaml:"preview_redacted_prompt"` // default true
}

// TokensEnabled resolves the redact_tokens toggle with its default.
func (r Redaction) TokensEnabled() bool {
	return r.Tokens == nil || *r.Tokens
}

// PreviewEnabled resolves the preview_redacted_prompt toggle with its default.
func (r Redaction) PreviewEnabled() bool {
	return r.PreviewPrompt == nil || *r.PreviewPrompt
}

// History configures the usage recorder and its backing store.
type History struct {
	MaxEntries   int    `yaml:"max_entries"`
	PreviewChars int    `yaml:"preview_chars"`
	Store        string `yaml:"store"` // "sqlite" (default) or "jsonl"
}

// Backends holds the endpoints of the fallback chain.
type Backends struct {
	ChatEndpoint   string `yaml:"chat_endpoint"`
	LegacyEndpoint string `yaml:"legacy_endpoint"`
}
