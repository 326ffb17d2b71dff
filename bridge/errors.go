package bridge

import (
	"errors"
	"fmt"
	"strings"
)

// ErrSessionLocked is returned by Refresh once the vendor has rejected the configured credentials.
// Nothing is sent to the vendor after that until the process is restarted with new credentials.
var ErrSessionLocked = errors.New("bridge: session locked after credential rejection")

// ConfigError reports required configuration keys that are missing.
type ConfigError struct {
	Missing []string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("bridge: missing required config keys: %s", strings.Join(e.Missing, ", "))
}

// AuthError wraps the vendor error returned by the initial login.
type AuthError struct {
	Err error
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("bridge: could not log in to vendor: %s", e.Err)
}

func (e *AuthError) Unwrap() error {
	return e.Err
}
