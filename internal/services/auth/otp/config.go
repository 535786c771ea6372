package otp

import "time"

// Config controls passcode timing.
//
// The TTL is read at startup so operators can tune the verification window
// without changing runtime code paths.
type Config struct {
	TTL time.Duration `env:"DEVSPHERE_OTP_TTL" envDefault:"10m"`
}
