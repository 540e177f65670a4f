package userauth

import (
	stderrors "errors"
	"strings"

	"github.com/goliatone/go-errors"
)

// Text codes attached to rich errors so callers can match on a stable
// identifier instead of the message.
const (
	TextCodeUsernameTaken       = "USERNAME_TAKEN"
	TextCodeInvalidCredentials  = "INVALID_CREDENTIALS"
	TextCodeTooManyAttempts     = "TOO_MANY_LOGIN_ATTEMPTS"
	TextCodeTokenMalformed      = "TOKEN_MALFORMED"
	TextCodeTokenBadSignature   = "TOKEN_BAD_SIGNATURE"
	TextCodeTokenExpired        = "TOKEN_EXPIRED"
	TextCodeStoreUnavailable    = "STORE_UNAVAILABLE"
	TextCodeInternalCodecFault  = "CODEC_FAULT"
	TextCodeRegistrationInvalid = "REGISTRATION_INVALID"
)

// ErrUsernameTaken is returned when a registration targets an already
// registered username, including the case where a concurrent insert loses
// the race against the store's unique constraint.
var ErrUsernameTaken = errors.New("username already registered", errors.CategoryConflict).
	WithTextCode(TextCodeUsernameTaken)

// ErrInvalidCredentials covers both the unknown-username and the
// wrong-password case. The two must stay indistinguishable to callers.
var ErrInvalidCredentials = errors.New("invalid credentials", errors.CategoryAuth).
	WithTextCode(TextCodeInvalidCredentials)

// ErrTooManyLoginAttempts rejects logins while an account is cooling down
// after repeated failures.
var ErrTooManyLoginAttempts = errors.New("too many login attempts", errors.CategoryAuth).
	WithTextCode(TextCodeTooManyAttempts)

// ErrTokenMalformed is the rejection for tokens that are not a well formed
// signed envelope, including tokens signed with an unexpected algorithm.
var ErrTokenMalformed = errors.New("token is malformed", errors.CategoryAuth).
	WithTextCode(TextCodeTokenMalformed)

// ErrTokenBadSignature is the rejection for well formed tokens whose
// signature does not verify against the configured secret.
var ErrTokenBadSignature = errors.New("token signature mismatch", errors.CategoryAuth).
	WithTextCode(TextCodeTokenBadSignature)

// ErrTokenExpired is the rejection for tokens past their expiry.
var ErrTokenExpired = errors.New("token is expired", errors.CategoryAuth).
	WithTextCode(TextCodeTokenExpired)

// ErrStoreUnavailable is the fault wrapper for credential store round trips
// that fail or time out. Never surfaced to clients verbatim.
var ErrStoreUnavailable = errors.New("credential store unavailable", errors.CategoryInternal).
	WithTextCode(TextCodeStoreUnavailable)

// ErrInternalCodecFault marks serialization failures inside the token
// codec. Effectively unreachable with a valid configuration.
var ErrInternalCodecFault = errors.New("token codec fault", errors.CategoryInternal).
	WithTextCode(TextCodeInternalCodecFault)

// ErrIdentityNotFound is the error we return for non found identities
var ErrIdentityNotFound = stderrors.New("identity not found")

// ErrNoEmptyString rejects empty passwords before hashing
var ErrNoEmptyString = stderrors.New("empty string not allowed")

// ErrMismatchedHashAndPassword is the normalized bcrypt mismatch error
var ErrMismatchedHashAndPassword = stderrors.New("mismatched hash and password")

func textCodeOf(err error) string {
	var richErr *errors.Error
	if errors.As(err, &richErr) {
		return richErr.TextCode
	}
	return ""
}

// IsUsernameTaken will check for uniqueness conflicts
func IsUsernameTaken(err error) bool {
	return textCodeOf(err) == TextCodeUsernameTaken
}

// IsInvalidCredentialsError matches both halves of the credential pair
// failing, plus the throttling rejection which maps to the same outward
// response.
func IsInvalidCredentialsError(err error) bool {
	code := textCodeOf(err)
	return code == TextCodeInvalidCredentials || code == TextCodeTooManyAttempts
}

// IsTokenExpiredError will check for expired tokens
func IsTokenExpiredError(err error) bool {
	if err == nil {
		return false
	}
	if textCodeOf(err) == TextCodeTokenExpired {
		return true
	}
	return strings.Contains(err.Error(), "token is expired")
}

// IsMalformedError will check for error message
func IsMalformedError(err error) bool {
	if err == nil {
		return false
	}
	if textCodeOf(err) == TextCodeTokenMalformed {
		return true
	}
	return strings.Contains(err.Error(), "token is malformed") ||
		strings.Contains(err.Error(), "missing or malformed JWT")
}

// IsBadSignatureError will check for signature mismatches
func IsBadSignatureError(err error) bool {
	return textCodeOf(err) == TextCodeTokenBadSignature
}

// IsStoreFault reports whether the error is an infrastructure fault rather
// than a recoverable rejection.
func IsStoreFault(err error) bool {
	return textCodeOf(err) == TextCodeStoreUnavailable
}
