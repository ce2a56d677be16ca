package terrors

import "github.com/cockroachdb/errors"

var (
	// ErrInvalidValue indicates the value is invalid.
	ErrInvalidValue = errors.New("invalid value")

	// ErrKeyExists .
	ErrKeyExists = errors.New("key exists")
	// ErrKeyNotExists .
	ErrKeyNotExists = errors.New("key not exists")
	// ErrKeyBadVersion .
	ErrKeyBadVersion = errors.New("bad version")

	// ErrResolution indicates a hardware or IP address has no known attachment point.
	ErrResolution = errors.New("cannot resolve attachment point")

	// ErrRoute indicates the route between two attachment points is unusable.
	ErrRoute = errors.New("route error")
	// ErrNoRoute is a route error: the controller returned an empty path.
	ErrNoRoute = errors.New("no route found")
	// ErrMalformedRoute is a route error: odd length or mismatched hop pairs.
	ErrMalformedRoute = errors.New("malformed route")

	// ErrConfiguration .
	ErrConfiguration = errors.New("configuration error")
	// ErrUnsupportedProtocol is a configuration error.
	ErrUnsupportedProtocol = errors.New("unsupported transport protocol")

	// ErrInstall indicates at least one flow rule could not be pushed or deleted.
	ErrInstall = errors.New("flow install error")

	// ErrConnectionExists .
	ErrConnectionExists = errors.New("connection exists")
	// ErrConnectionNotExists .
	ErrConnectionNotExists = errors.New("connection not exists")
	// ErrUnauthorized .
	ErrUnauthorized = errors.New("student is not authorized")
	// ErrOperationInProgress .
	ErrOperationInProgress = errors.New("another operation is in progress")

	// ErrFlockLocked indicates the lock file is held by another process or handle.
	ErrFlockLocked = errors.New("flock locked")

	// ErrUnknownNetworkDriver .
	ErrUnknownNetworkDriver = errors.New("unknown network driver")
	// ErrUnknownMetaType .
	ErrUnknownMetaType = errors.New("unknown meta type")
)
