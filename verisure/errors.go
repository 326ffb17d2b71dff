package verisure

import "errors"

var (
	// ErrCredentialsRejected is returned when the vendor refuses the username/password pair
	// or the session it issued is no longer accepted.
	ErrCredentialsRejected = errors.New("verisure: credentials rejected")

	// ErrConnectivity is returned when the vendor could not be reached.
	ErrConnectivity = errors.New("verisure: connection failed")

	// ErrVendor is returned for any other failure reported by the vendor API.
	ErrVendor = errors.New("verisure: vendor error")

	ErrUnknownCategory = errors.New("verisure: unknown device category")
)
