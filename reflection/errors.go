package reflection

import "errors"

var (
	// ErrSealed is returned when a provider is registered after the first
	// descriptor was computed.
	ErrSealed = errors.New("registry is sealed")
	// ErrDuplicate is returned when a type already has a provider.
	ErrDuplicate = errors.New("provider already registered")
	// ErrOwnerMismatch is returned when a provider declares members of
	// another type.
	ErrOwnerMismatch = errors.New("member declared on another type")

	// ErrReadOnly is returned when writing through a read-only attribute.
	ErrReadOnly = errors.New("attribute is read-only")
	// ErrTypeMismatch is returned when a value does not have the attribute's
	// declared type.
	ErrTypeMismatch = errors.New("type mismatch")
	// ErrArgument is returned when a bound method is called with arguments
	// that do not fit its signature.
	ErrArgument = errors.New("invalid argument")
	// ErrUnbound is returned when a bound member cannot reach its storage
	// in the instance.
	ErrUnbound = errors.New("member is not reachable from the instance")
)
