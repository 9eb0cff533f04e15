package service

const (
	// Unit conversions
	MetersPerMile    = 1609.34
	SecondsPerMinute = 60

	// History loaded for one evaluation. Two years covers the race look-back
	// plus enough training to warm up the 42-day load average.
	DataLookbackDays = 730

	// DefaultHistoryLimit bounds History when the caller passes zero
	DefaultHistoryLimit = 90
)
