package config

import "strings"

// Default values applied to any configuration field left unset.
const (
	// DefaultLogLevel is the default logging level
	DefaultLogLevel = "INFO"

	// DefaultStoreType is the default document store backend
	DefaultStoreType = "memory"

	// DefaultBlockSize is the default content split size (256 KiB), small
	// enough to travel as individual exchange units and large enough to
	// keep block lists short
	DefaultBlockSize = 256 * 1024

	// DefaultMaxDocumentBytes is the default decode size cap (64 MiB)
	DefaultMaxDocumentBytes = 64 * 1024 * 1024
)

// ApplyDefaults fills in default values for any unset fields and
// normalizes case-insensitive values.
func ApplyDefaults(cfg *Config) {
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = DefaultLogLevel
	}
	cfg.Logging.Level = strings.ToUpper(cfg.Logging.Level)

	if cfg.Store.Type == "" {
		cfg.Store.Type = DefaultStoreType
	}
	cfg.Store.Type = strings.ToLower(cfg.Store.Type)

	if cfg.Limits.BlockSize == 0 {
		cfg.Limits.BlockSize = DefaultBlockSize
	}
	if cfg.Limits.MaxDocumentBytes == 0 {
		cfg.Limits.MaxDocumentBytes = DefaultMaxDocumentBytes
	}
}
