package userauth

import (
	"context"
	"reflect"
)

// Auther issues and validates session tokens. The signing key is read-only
// process configuration: held here once, handed to the codec on every call.
type Auther struct {
	provider     IdentityProvider
	signingKey   []byte
	logger       Logger
	tokenService *TokenService
}

// NewAuthenticator returns a new Authenticator
func NewAuthenticator(provider IdentityProvider, opts Config) *Auther {
	tokenService := NewTokenService(
		opts.GetSessionLifetime(),
		opts.GetIssuer(),
		defLogger{},
	)

	return &Auther{
		provider:     provider,
		signingKey:   []byte(opts.GetSigningKey()),
		logger:       defLogger{},
		tokenService: tokenService,
	}
}

func (s *Auther) WithLogger(logger Logger) *Auther {
	s.logger = logger
	s.tokenService = NewTokenService(
		s.tokenService.sessionLifetime,
		s.tokenService.issuer,
		logger,
	)
	return s
}

// TokenService returns the TokenService instance used by this Authenticator
func (s *Auther) TokenService() *TokenService {
	return s.tokenService
}

// Login verifies the credential pair and returns a fresh signed session
// token. Failure never reveals which half of the pair was wrong.
func (s *Auther) Login(ctx context.Context, identifier, password string) (string, error) {
	var err error
	var identity Identity

	if identity, err = s.provider.VerifyIdentity(ctx, identifier, password); err != nil {
		s.logger.Info("login verify identity rejected: %v", err)
		return "", err
	}

	if identity == nil || reflect.ValueOf(identity).IsZero() {
		s.logger.Error("login identity is nil or zero value")
		return "", ErrInvalidCredentials
	}

	token, err := s.tokenService.Generate(identity, s.signingKey)
	if err != nil {
		s.logger.Error("login token generation failed: %v", err)
		return "", err
	}

	return token, nil
}

// ValidateToken runs the codec against the configured secret and returns
// the verified claims.
func (s *Auther) ValidateToken(raw string) (*SessionClaims, error) {
	return s.tokenService.Validate(raw, s.signingKey)
}

// SessionFromToken validates a raw token and yields the session it encodes.
func (s *Auther) SessionFromToken(raw string) (Session, error) {
	claims, err := s.ValidateToken(raw)
	if err != nil {
		s.logger.Info("session from token validation failed: %v", err)
		return nil, err
	}

	return sessionFromClaims(claims), nil
}

var _ Authenticator = (*Auther)(nil)
