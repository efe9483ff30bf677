package domain

import "time"

// File permissions constants
const (
	// DirectoryPermissions is the default permission for directories (rwxr-xr-x)
	DirectoryPermissions = 0o755
	// SecureFilePermissions is the permission for sensitive files (rw-------)
	SecureFilePermissions = 0o600
)

// Timeout and duration constants
const (
	// DefaultHTTPClientTimeout is the timeout for HTTP client requests
	DefaultHTTPClientTimeout = 60 * time.Second
)

// History constants
const (
	// DefaultHistoryMaxEntries caps the in-memory usage history (FIFO eviction)
	DefaultHistoryMaxEntries = 200
	// DefaultPreviewChars is how many leading runes the previews keep
	DefaultPreviewChars = 80
	// DefaultHistoryListLimit is the default number of history records to display
	DefaultHistoryListLimit = 20
)

// Accounting constants
const (
	// CharsPerToken is the coarse character-to-token ratio used for estimates
	CharsPerToken = 4
)

// Time formats
const (
	// TimestampFormat is the standard timestamp format
	TimestampFormat = time.RFC3339
)
