package mail

// Config locates the SMTP relay used for transactional email.
type Config struct {
	Host     string `env:"DEVSPHERE_SMTP_HOST" envDefault:"localhost"`
	Port     int    `env:"DEVSPHERE_SMTP_PORT" envDefault:"587"`
	Username string `env:"DEVSPHERE_SMTP_USERNAME"`
	Password string `env:"DEVSPHERE_SMTP_PASSWORD"`
	From     string `env:"DEVSPHERE_SMTP_FROM" envDefault:"DevSphere <onboarding@devsphere.dev>"`
}
