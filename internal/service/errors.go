package service

import (
	"errors"
	"fmt"
)

type ConfigErrorKind string

const (
	ConfigurationMissing ConfigErrorKind = "configuration_missing"
	ConfigurationInvalid ConfigErrorKind = "configuration_invalid"
)

// ConfigError is returned by the configuration resolver before any network call is made.
type ConfigError struct {
	Kind   ConfigErrorKind
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	switch e.Kind {
	case ConfigurationMissing:
		return fmt.Sprintf("sync is not configured: %s is missing", e.Field)
	default:
		return fmt.Sprintf("invalid sync configuration: %s %s", e.Field, e.Reason)
	}
}

func IsConfigError(err error, kind ConfigErrorKind) bool {
	var cfgErr *ConfigError
	return errors.As(err, &cfgErr) && cfgErr.Kind == kind
}

var (
	ErrSyncInProgress = errors.New("sync already in progress")
	ErrSyncerStopped  = errors.New("auto-sync is stopped")
	ErrInvalidLogin   = errors.New("invalid credentials")
)
