package session

import (
	"time"
)

// Config controls session token signing and cookie delivery.
//
// The secret has no default on purpose: startup fails loudly instead of
// minting tokens an attacker could forge.
type Config struct {
	Secret        string        `env:"DEVSPHERE_SESSION_SECRET"`
	TTL           time.Duration `env:"DEVSPHERE_SESSION_TTL" envDefault:"168h"`
	SecureCookies bool          `env:"DEVSPHERE_SECURE_COOKIES" envDefault:"false"`
}
