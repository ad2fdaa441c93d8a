package models

import "errors"

// ErrTokenNotFound is returned by data providers when the trading venue has
// no record of the requested address. It aborts that address's cycle without
// side effects; it is never treated as a vendor outage.
var ErrTokenNotFound = errors.New("token not found")
