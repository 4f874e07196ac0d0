package domain

import "errors"

var (
	// ErrInvalidQuery is returned when a search request has no usable query.
	ErrInvalidQuery = errors.New("search query must not be empty")

	// ErrNotFound is returned when neither the cache nor a provider knows
	// the requested product. Barcode lookups translate it into a
	// "not_found" result rather than surfacing it.
	ErrNotFound = errors.New("product not found")

	// ErrProviderFailure is returned when a remote nutrition provider
	// request fails at the HTTP level. Wrapped with the status code.
	ErrProviderFailure = errors.New("nutrition provider request failed")

	// ErrProviderParse is returned when a provider response cannot be decoded.
	ErrProviderParse = errors.New("nutrition provider returned malformed response")

	// ErrStoreFailure is returned on persistence failures that cannot be
	// absorbed locally.
	ErrStoreFailure = errors.New("food cache store failure")

	// ErrSourceMissing is returned when the bulk ingestion source file does
	// not exist. The only error that may abort an ingestion run at startup.
	ErrSourceMissing = errors.New("ingestion source file not found")
)
