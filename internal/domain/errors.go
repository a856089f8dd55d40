package domain

import "errors"

var (
	// ErrRefreshInProgress is returned when a refresh is requested for a feed
	// type that already has one in flight. It is an expected outcome, not a
	// failure: callers report it and move on rather than retrying.
	ErrRefreshInProgress = errors.New("refresh already in progress")

	// ErrRateUnavailable is returned when no current exchange rate exists for
	// the configured currency pair. Pricing degrades to source-currency-only.
	ErrRateUnavailable = errors.New("exchange rate unavailable")

	// ErrNoCSVInArchive is returned when the supplier's ZIP response does not
	// contain a CSV file.
	ErrNoCSVInArchive = errors.New("no CSV file found in archive")

	// ErrJobNotFound is returned when an import job lookup misses
	ErrJobNotFound = errors.New("import job not found")
)
