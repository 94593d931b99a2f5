package constants

import "time"

const (
	PayloadCacheTTL = 5 * time.Minute
	SessionIdleTTL  = 30 * time.Minute
	SessionSweep    = 1 * time.Minute
)

const (
	ExternalAPITimeout = 20 * time.Second
	DatabaseTimeout    = 5 * time.Second
	RequestTimeout     = 60 * time.Second
	RetryBackoff       = 500 * time.Millisecond
	UpstreamRetries    = 1
)

const (
	DBMaxOpenConns    = 1
	DBMaxIdleConns    = 1
	DBConnMaxLifetime = 0
	DBMaxIdleTime     = 0
)

const (
	ShutdownTimeout = 5 * time.Second
)

const (
	SearchSuggestionLimit = 10
)

// radar geometry, in SVG user units
const (
	RadarCenter      = 150.0
	RadarRadius      = 100.0
	RadarLabelOffset = 35.0
	RadarSize        = 300
)

const (
	SynergySimilar       = 70
	SynergyComplementary = 94
	DefaultDuoWinRate    = 56
)

const (
	FallbackChampion    = "Yasuo"
	FallbackDuoChampion = "Malphite"
	DefaultDDragonVer   = "13.24.1"
)
