package models

import "errors"

var (
	// ErrPortfolioNotFound is returned when a portfolio id has no stored record.
	ErrPortfolioNotFound = errors.New("portfolio not found")

	// ErrUnknownRange is returned for a range token outside 1D/1W/1M/3M/YTD/1Y/ALL.
	ErrUnknownRange = errors.New("unknown time range")

	// ErrSnapshotExists is returned when a snapshot for that portfolio and day is already recorded.
	ErrSnapshotExists = errors.New("snapshot already recorded for date")

	// ErrPricesUnavailable is returned when a snapshot would have to be valued at cost basis.
	ErrPricesUnavailable = errors.New("live prices unavailable")
)
