package config

// Layout constants.
const (
	// CompactModeThreshold hides the reporter and phone columns below this width.
	CompactModeThreshold = 100

	// MinDescriptionWidth is the narrowest the problem column may shrink to.
	MinDescriptionWidth = 12

	// ChromeHeight is the number of lines taken by header, footer and status line.
	ChromeHeight = 9
)

// Display limits.
const (
	// MaxStaleShown limits the stale panel before it reports "and N more".
	MaxStaleShown = 5

	// TruncationSuffix appended to truncated strings.
	TruncationSuffix = "…"
)

// Input constraints.
const (
	MaxNumberLength      = 20
	MaxEntityLength      = 100
	MaxDescriptionLength = 500
	MaxReporterLength    = 100
	MaxPhoneLength       = 20
	MaxPathLength        = 1024
)
