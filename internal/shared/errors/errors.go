package errors

import "errors"

var (
	ErrMissingBotToken    = errors.New("TELEGRAM_BOT_TOKEN environment variable is required")
	ErrMissingDeveloperID = errors.New("DEVELOPER_ID environment variable is required")
	ErrUnauthorized       = errors.New("unauthorized user")

	// ErrScrapeStatus is returned when the scraping API answers with a non-2xx status.
	ErrScrapeStatus = errors.New("scraping api returned unexpected status")
	// ErrScrapeDecode is returned when the scraping API body does not match the expected shape.
	ErrScrapeDecode = errors.New("scraping api returned malformed response")

	ErrMediaUnavailable    = errors.New("media unavailable")
	ErrMediaSizeUnknown    = errors.New("media size unknown")
	ErrTransportBadRequest = errors.New("transport rejected request")
	ErrWorkerPoolClosed    = errors.New("worker pool closed")
)
