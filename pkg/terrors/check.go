package terrors

import "github.com/cockroachdb/errors"

// IsKeyExistsErr .
func IsKeyExistsErr(err error) bool {
	return errors.Is(err, ErrKeyExists)
}

// IsKeyNotExistsErr .
func IsKeyNotExistsErr(err error) bool {
	return errors.Is(err, ErrKeyNotExists)
}

// IsResolutionErr .
func IsResolutionErr(err error) bool {
	return errors.Is(err, ErrResolution)
}

// IsRouteErr reports both empty and malformed routes.
func IsRouteErr(err error) bool {
	return errors.IsAny(err, ErrRoute, ErrNoRoute, ErrMalformedRoute)
}

// IsConfigurationErr .
func IsConfigurationErr(err error) bool {
	return errors.IsAny(err, ErrConfiguration, ErrUnsupportedProtocol)
}

// IsInstallErr .
func IsInstallErr(err error) bool {
	return errors.Is(err, ErrInstall)
}

// IsConnectionExistsErr .
func IsConnectionExistsErr(err error) bool {
	return errors.Is(err, ErrConnectionExists)
}

// IsConnectionNotExistsErr .
func IsConnectionNotExistsErr(err error) bool {
	return errors.Is(err, ErrConnectionNotExists)
}

// IsUnauthorizedErr .
func IsUnauthorizedErr(err error) bool {
	return errors.Is(err, ErrUnauthorized)
}
