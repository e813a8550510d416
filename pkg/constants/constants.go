// Package constants provides shared constants for the P&L forecasting core.
package constants

import "time"

// Numeric precision constants
const (
	// CurrencyPlaces is the number of decimal places kept for currency values
	CurrencyPlaces = 2

	// PercentPlaces is the number of decimal places kept for derived percentages
	PercentPlaces = 1

	// CurrencyTolerance is the tolerance for currency comparisons (1 cent)
	CurrencyTolerance = 0.01

	// PercentageMultiplier is used for percentage conversions
	PercentageMultiplier = 100.0

	// MonthsPerYear is the number of months in a year
	MonthsPerYear = 12
)

// Output format constants
const (
	// OutputFormatPretty is the human-readable output format
	OutputFormatPretty = "pretty"

	// OutputFormatCSV is the CSV output format
	OutputFormatCSV = "csv"

	// OutputFormatJSON is the JSON output format
	OutputFormatJSON = "json"

	// OutputFormatYAML is the YAML output format
	OutputFormatYAML = "yaml"
)

// Configuration file constants
const (
	// DefaultConfigFile is the default configuration file name
	DefaultConfigFile = "config.yaml"

	// EnvPrefix prefixes environment overrides, e.g. PNL_STORE_BACKEND
	EnvPrefix = "PNL"
)

// Store defaults
const (
	// DefaultRecalcDebounce delays reconciliation after a data edit
	DefaultRecalcDebounce = 100 * time.Millisecond

	// DefaultHeavyDebounce delays notification of heavy-calculation subscribers
	DefaultHeavyDebounce = 150 * time.Millisecond

	// DefaultMaxPasses bounds the reconciler's fixed-point iterations
	DefaultMaxPasses = 4

	// DefaultPersistTimeout bounds a single persister call
	DefaultPersistTimeout = 2 * time.Second

	// DefaultStorePath is the default file used by the file persister
	DefaultStorePath = "answers.json"

	// DefaultRedisKey is the default Redis key used by the Redis persister
	DefaultRedisKey = "pnl:answers"

	// StoreBackendMemory keeps the aggregate in memory only
	StoreBackendMemory = "memory"

	// StoreBackendFile persists the aggregate as a JSON file
	StoreBackendFile = "file"

	// StoreBackendRedis persists the aggregate in Redis
	StoreBackendRedis = "redis"
)

// SchemaVersion is the current version of the persisted answers layout.
const SchemaVersion = 1
