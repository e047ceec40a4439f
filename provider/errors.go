package provider

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/launchdarkly/go-server-sdk/v7/interfaces"
)

var (
	// ErrAuthenticationFailed is wrapped by the error from Init when LaunchDarkly rejected the SDK key.
	ErrAuthenticationFailed = errors.New("Authentication failed. Double check your SDK key.") //nolint:stylecheck

	// ErrInitializationFailed is wrapped by the error from Init when the LaunchDarkly client stopped
	// trying to connect for any other reason.
	ErrInitializationFailed = errors.New("LaunchDarkly client initialization failed")

	errUnknownInitProblem = errors.New("Unknown problem encountered during initialization") //nolint:stylecheck
)

// initializationError describes why the data source was shut off, based on its last status.
func initializationError(status interfaces.DataSourceStatus) error {
	info := status.LastError
	switch info.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("%w (HTTP %d)", ErrAuthenticationFailed, info.StatusCode)
	}
	if info.StatusCode > 0 {
		return fmt.Errorf("%w: HTTP error %d", ErrInitializationFailed, info.StatusCode)
	}
	if info.Message != "" {
		return fmt.Errorf("%w: %s", ErrInitializationFailed, info.Message)
	}
	return ErrInitializationFailed
}
