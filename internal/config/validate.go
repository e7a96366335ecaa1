package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/hashicorp/go-multierror"
)

// minSessionSecretLength is the minimum length of the cookie hash key
const minSessionSecretLength = 32

var (
	ErrNoListener             = errors.New("no listener defined, please specify at least one --listen-* flag")
	ErrStaticNoURLRoot        = errors.New("static url root must start with /")
	ErrStaticNoFSRoot         = errors.New("static fs root must not be empty")
	ErrStaticDuplicateURLRoot = errors.New("static url root is used more than once")
	ErrInvalidHeader          = errInvalidHeaderParameter
	ErrSessionSecretTooShort  = fmt.Errorf("session-secret must be at least %d bytes long", minSessionSecretLength)
	ErrNegativeLimit          = errors.New("limits must not be negative")
	ErrInvalidStatusPath      = errors.New("status-path must start with /")
)

// Validate returns every problem found in config at once
func Validate(config *Config) error {
	var result *multierror.Error

	result = multierror.Append(result, validateListeners(config))
	result = multierror.Append(result, validateStatic(config.Static))
	result = multierror.Append(result, validateGeneral(config))
	result = multierror.Append(result, validateSession(config.Session))

	return result.ErrorOrNil()
}

func validateListeners(config *Config) error {
	if len(config.Listeners.HTTP) == 0 && len(config.Listeners.Proxyv2) == 0 {
		return ErrNoListener
	}

	return nil
}

func validateStatic(mounts []StaticMount) error {
	var result *multierror.Error

	seen := make(map[string]bool, len(mounts))
	for _, mount := range mounts {
		if !strings.HasPrefix(mount.URLRoot, "/") {
			result = multierror.Append(result, fmt.Errorf("%s: %w", mount, ErrStaticNoURLRoot))
		}

		if mount.FSRoot == "" {
			result = multierror.Append(result, fmt.Errorf("%s: %w", mount, ErrStaticNoFSRoot))
		}

		urlRoot := strings.TrimSuffix(mount.URLRoot, "/")
		if seen[urlRoot] {
			result = multierror.Append(result, fmt.Errorf("%s: %w", mount, ErrStaticDuplicateURLRoot))
		}
		seen[urlRoot] = true
	}

	return result.ErrorOrNil()
}

func validateGeneral(config *Config) error {
	var result *multierror.Error

	if config.General.MaxConns < 0 || config.General.MaxURILength < 0 ||
		config.RateLimit.SourceIPLimitPerSecond < 0 || config.RateLimit.SourceIPBurst < 0 {
		result = multierror.Append(result, ErrNegativeLimit)
	}

	if config.General.StatusPath != "" && !strings.HasPrefix(config.General.StatusPath, "/") {
		result = multierror.Append(result, ErrInvalidStatusPath)
	}

	if _, err := ParseHeaderString(config.General.CustomHeaders); err != nil {
		result = multierror.Append(result, err)
	}

	return result.ErrorOrNil()
}

func validateSession(session Session) error {
	if session.Secret == "" {
		return nil
	}

	if len(session.Secret) < minSessionSecretLength {
		return ErrSessionSecretTooShort
	}

	return nil
}
