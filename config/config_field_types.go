package config

import (
	"crypto/tls"
	"fmt"
	"strings"

	"github.com/launchdarkly/go-sdk-common/v3/ldlog"
)

// OptLogLevel represents an optional log level parameter. It must match one of the level names "debug",
// "info", "warn", "error", or "none" (case-insensitive).
//
// The zero value OptLogLevel{} is valid and undefined (IsDefined() is false).
type OptLogLevel struct {
	level ldlog.LogLevel
}

// NewOptLogLevel creates an OptLogLevel that wraps the given value.
func NewOptLogLevel(level ldlog.LogLevel) OptLogLevel {
	return OptLogLevel{level: level}
}

// NewOptLogLevelFromString creates an OptLogLevel from a string that must either be a valid log level
// name or an empty string.
func NewOptLogLevelFromString(levelName string) (OptLogLevel, error) {
	if levelName == "" {
		return OptLogLevel{}, nil
	}
	for _, level := range []ldlog.LogLevel{ldlog.Debug, ldlog.Info, ldlog.Warn, ldlog.Error, ldlog.None} {
		if strings.EqualFold(level.Name(), levelName) {
			return NewOptLogLevel(level), nil
		}
	}
	return OptLogLevel{}, errBadLogLevel(levelName)
}

// IsDefined returns true if the instance contains a value.
func (o OptLogLevel) IsDefined() bool {
	return o.level != 0
}

// GetOrElse returns the wrapped value, or the alternative value if there is no value.
func (o OptLogLevel) GetOrElse(orElseValue ldlog.LogLevel) ldlog.LogLevel {
	if o.level == 0 {
		return orElseValue
	}
	return o.level
}

// UnmarshalText attempts to parse the value from a byte string, using the same logic as
// NewOptLogLevelFromString.
func (o *OptLogLevel) UnmarshalText(data []byte) error {
	opt, err := NewOptLogLevelFromString(string(data))
	if err == nil {
		*o = opt
	}
	return err
}

func errBadLogLevel(s string) error {
	return fmt.Errorf("%q is not a valid log level", s)
}

// OptTLSVersion represents an optional minimum TLS version parameter. Its string form is "1.0", "1.1",
// "1.2", or "1.3".
//
// The zero value OptTLSVersion{} is valid and undefined (IsDefined() is false).
type OptTLSVersion struct {
	value uint16
}

var tlsVersionNames = map[uint16]string{ //nolint:gochecknoglobals
	tls.VersionTLS10: "1.0",
	tls.VersionTLS11: "1.1",
	tls.VersionTLS12: "1.2",
	tls.VersionTLS13: "1.3",
}

// NewOptTLSVersion creates an OptTLSVersion that wraps one of the crypto/tls version constants.
func NewOptTLSVersion(value uint16) OptTLSVersion {
	return OptTLSVersion{value: value}
}

// NewOptTLSVersionFromString creates an OptTLSVersion from a version string, or from an empty string
// for an undefined value.
func NewOptTLSVersionFromString(s string) (OptTLSVersion, error) {
	if s == "" {
		return OptTLSVersion{}, nil
	}
	for value, name := range tlsVersionNames {
		if name == s {
			return NewOptTLSVersion(value), nil
		}
	}
	return OptTLSVersion{}, errBadTLSVersion(s)
}

// IsDefined returns true if the instance contains a value.
func (o OptTLSVersion) IsDefined() bool {
	return o.value != 0
}

// Get returns the wrapped crypto/tls version constant, or zero if undefined.
func (o OptTLSVersion) Get() uint16 {
	return o.value
}

// String returns the version string, or "" if undefined.
func (o OptTLSVersion) String() string {
	if name, ok := tlsVersionNames[o.value]; ok {
		return name
	}
	if o.value == 0 {
		return ""
	}
	return fmt.Sprintf("0x%x", o.value)
}

// UnmarshalText attempts to parse the value from a byte string, using the same logic as
// NewOptTLSVersionFromString.
func (o *OptTLSVersion) UnmarshalText(data []byte) error {
	opt, err := NewOptTLSVersionFromString(string(data))
	if err == nil {
		*o = opt
	}
	return err
}

func errBadTLSVersion(s string) error {
	return fmt.Errorf("%q is not a valid TLS version", s)
}
