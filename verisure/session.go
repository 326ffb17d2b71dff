package verisure

import "context"

// Session is an authenticated connection to the vendor's cloud.
//
// Errors are wrapped around ErrCredentialsRejected, ErrConnectivity or ErrVendor.
type Session interface {
	Login(ctx context.Context) error
	GetOverview(ctx context.Context, category DeviceCategory) ([]Overview, error)
}
