package fetch

import "errors"

// Common errors for fetch operations
var (
	// ErrInvalidRequest marks a request rejected before any network I/O.
	ErrInvalidRequest = errors.New("invalid fetch request")

	// ErrNoMechanisms marks a process configured with an empty mechanism
	// list. This is a configuration error, not an authentication failure.
	ErrNoMechanisms = errors.New("no authentication mechanisms configured")

	// ErrUnknownMechanism marks an unrecognized mechanism name in the
	// configuration.
	ErrUnknownMechanism = errors.New("unknown authentication mechanism")

	// ErrCredential marks a failure to resolve or apply local credential
	// material inside a transport. The origin never saw the request, so
	// the negotiation advances to the next mechanism instead of aborting.
	ErrCredential = errors.New("credential resolution failed")
)
