package userauth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/goliatone/go-errors"
)

// TokenService is the session token codec. It signs and validates HS256
// tokens. The signing key is a parameter on every call; the service never
// captures it, so callers remain free to rotate the secret.
type TokenService struct {
	sessionLifetime time.Duration
	issuer          string
	logger          Logger
}

// NewTokenService creates a new TokenService instance
func NewTokenService(sessionLifetime time.Duration, issuer string, logger Logger) *TokenService {
	if logger == nil {
		logger = defLogger{}
	}
	return &TokenService{
		sessionLifetime: sessionLifetime,
		issuer:          issuer,
		logger:          logger,
	}
}

// NewSessionClaims builds claims for a fresh session: iat = issuedAt,
// exp = issuedAt + lifetime, subject and uid set to the identity id.
func (ts *TokenService) NewSessionClaims(identity Identity, issuedAt time.Time) *SessionClaims {
	return &SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    ts.issuer,
			Subject:   identity.ID(),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(ts.sessionLifetime)),
		},
		UID: identity.ID(),
	}
}

// Generate creates a signed session token for the given identity
func (ts *TokenService) Generate(identity Identity, signingKey []byte) (string, error) {
	return ts.SignClaims(ts.NewSessionClaims(identity, time.Now()), signingKey)
}

// SignClaims signs the given claims with the provided key.
func (ts *TokenService) SignClaims(claims *SessionClaims, signingKey []byte) (string, error) {
	if claims == nil {
		return "", errors.New("claims must not be nil", ErrInternalCodecFault.Category).
			WithTextCode(ErrInternalCodecFault.TextCode)
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signedString, err := token.SignedString(signingKey)
	if err != nil {
		return "", errors.Wrap(err, ErrInternalCodecFault.Category, "failed to sign session token").
			WithTextCode(ErrInternalCodecFault.TextCode)
	}

	return signedString, nil
}

// Validate parses and validates a token string against the provided key,
// returning the embedded claims unchanged. Rejections in order: malformed
// envelope, unexpected algorithm, signature mismatch, expiry.
func (ts *TokenService) Validate(tokenString string, signingKey []byte) (*SessionClaims, error) {
	parserOptions := make([]jwt.ParserOption, 0, 1)
	if ts.issuer != "" {
		parserOptions = append(parserOptions, jwt.WithIssuer(ts.issuer))
	}

	token, err := jwt.ParseWithClaims(tokenString, &SessionClaims{}, func(t *jwt.Token) (any, error) {
		// Pin the exact method, not just the HMAC family. Anything else is
		// treated as a malformed envelope.
		if t.Method != jwt.SigningMethodHS256 {
			ts.logger.Error("token validate encountered unexpected signing method: %v", t.Header["alg"])
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return signingKey, nil
	}, parserOptions...)

	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrTokenExpired
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return nil, ErrTokenBadSignature
		default:
			return nil, errors.Wrap(err, ErrTokenMalformed.Category, ErrTokenMalformed.Message).
				WithTextCode(ErrTokenMalformed.TextCode)
		}
	}

	if claims, ok := token.Claims.(*SessionClaims); ok && token.Valid {
		return claims, nil
	}

	ts.logger.Error("token validate could not decode claims")
	return nil, ErrTokenMalformed
}

// SessionLifetime exposes the configured lifetime for cookie expiry.
func (ts *TokenService) SessionLifetime() time.Duration {
	return ts.sessionLifetime
}
