package credlock

import "errors"

var (
	// ErrManagerNotReady is returned when a Manager method is called on a
	// nil or incompletely constructed Manager.
	ErrManagerNotReady = errors.New("manager not initialized")
	// ErrEmptySecret is returned by Set and Rotate when the plaintext is
	// empty. An empty credential defeats the purpose of authentication.
	ErrEmptySecret = errors.New("empty secret")
	// ErrConfirmationMismatch is returned when a supplied confirmation
	// value differs from the plaintext. No prior digest is touched.
	ErrConfirmationMismatch = errors.New("confirmation does not match secret")
	// ErrCurrentMismatch is returned by Rotate when the current secret
	// does not verify against the stored digest.
	ErrCurrentMismatch = errors.New("current secret does not match stored digest")
	// ErrSecretReuse is returned by Rotate when the replacement secret
	// verifies against the existing digest.
	ErrSecretReuse = errors.New("new secret must differ from current secret")
	// ErrVerifyRateLimited is returned by VerifyGuarded when the caller
	// identity or IP has exhausted its attempt budget.
	ErrVerifyRateLimited = errors.New("verification rate limited")
	// ErrGuardUnavailable is returned by VerifyGuarded when the guard
	// backend cannot be reached; the check fails closed.
	ErrGuardUnavailable = errors.New("verification guard backend unavailable")
	// ErrRotationDisabled is returned by the ticket operations when
	// rotation tickets are not enabled in configuration.
	ErrRotationDisabled = errors.New("rotation tickets disabled")
	// ErrTicketInvalid is returned when a rotation ticket fails signature,
	// expiry, issuer, or subject validation.
	ErrTicketInvalid = errors.New("rotation ticket invalid")
	// ErrTicketReplay is returned when a rotation ticket is redeemed more
	// than once.
	ErrTicketReplay = errors.New("rotation ticket replay detected")
	// ErrRotationUnavailable is returned when the ticket backend cannot be
	// reached.
	ErrRotationUnavailable = errors.New("rotation ticket backend unavailable")
)
