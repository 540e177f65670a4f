package userauth

import (
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/goliatone/go-errors"
)

// EnvConfig is the process configuration, loaded once at startup. A missing
// signing secret is a fatal startup condition.
type EnvConfig struct {
	SigningKey      string        `env:"SECRET,required,notEmpty"`
	Address         string        `env:"ADDRESS" envDefault:":3000"`
	DatabaseDSN     string        `env:"DATABASE_DSN" envDefault:"file::memory:?cache=shared"`
	SessionLifetime time.Duration `env:"SESSION_LIFETIME" envDefault:"1h"`
	Issuer          string        `env:"TOKEN_ISSUER" envDefault:"go-userauth"`
	CookieName      string        `env:"TOKEN_COOKIE" envDefault:"token"`
	TokenLookup     string        `env:"TOKEN_LOOKUP" envDefault:"cookie:token,header:Authorization"`
	AuthScheme      string        `env:"AUTH_SCHEME" envDefault:"Bearer"`
	ContextKey      string        `env:"AUTH_CONTEXT_KEY" envDefault:"user"`
}

var _ Config = (*EnvConfig)(nil)

// LoadConfig reads configuration from the environment.
func LoadConfig() (*EnvConfig, error) {
	cfg := &EnvConfig{}
	if err := env.Parse(cfg); err != nil {
		return nil, errors.Wrap(err, errors.CategoryValidation, "failed to load configuration from environment")
	}
	return cfg, nil
}

func (c *EnvConfig) GetSigningKey() string { return c.SigningKey }

// GetSigningMethod is fixed: the codec refuses anything but HS256.
func (c *EnvConfig) GetSigningMethod() string { return "HS256" }

func (c *EnvConfig) GetContextKey() string { return c.ContextKey }

func (c *EnvConfig) GetCookieName() string { return c.CookieName }

func (c *EnvConfig) GetTokenLookup() string { return c.TokenLookup }

func (c *EnvConfig) GetAuthScheme() string { return c.AuthScheme }

func (c *EnvConfig) GetSessionLifetime() time.Duration { return c.SessionLifetime }

func (c *EnvConfig) GetIssuer() string { return c.Issuer }

func (c *EnvConfig) GetAddress() string { return c.Address }

func (c *EnvConfig) GetDatabaseDSN() string { return c.DatabaseDSN }
