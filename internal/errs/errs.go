package errs

import "errors"

// Sentinel errors used across the service layer. Handlers map these to
// HTTP status codes; anything else is treated as a backend failure.
var (
	// ErrNotAuthenticated is returned when no authenticated user can be
	// resolved for the current request.
	ErrNotAuthenticated = errors.New("no authenticated user")

	// ErrUnauthorized is returned when the caller is not a participant
	// in the row it is trying to mutate.
	ErrUnauthorized = errors.New("not allowed to modify this resource")

	// ErrNotFound is returned when a row does not exist, or when a
	// mutation filtered by owner matched zero rows.
	ErrNotFound = errors.New("resource not found")

	// ErrAlreadyRequested is returned when a friend request between the
	// pair already exists in either direction.
	ErrAlreadyRequested = errors.New("friend request already exists")

	// ErrAlreadyFriends is returned when the pair already has an
	// accepted friendship.
	ErrAlreadyFriends = errors.New("already friends")

	// ErrSelfRequest is returned when a user tries to befriend themselves.
	ErrSelfRequest = errors.New("cannot send friend request to yourself")
)

// Validation describes a rejected input value.
type Validation struct {
	Msg string
}

func (e Validation) Error() string {
	return e.Msg
}

// NewValidation builds a Validation error with the given message.
func NewValidation(msg string) error {
	return Validation{Msg: msg}
}

// IsValidation reports whether err is a validation error.
func IsValidation(err error) bool {
	var v Validation
	return errors.As(err, &v)
}
