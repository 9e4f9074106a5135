package billing

import "errors"

var (
	// ErrProviderLookup is returned when the provider query for a
	// notification's subject fails. The notification is abandoned, not
	// retried.
	ErrProviderLookup = errors.New("provider lookup failed")
)
