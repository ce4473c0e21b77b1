package config

// MailConfig holds SMTP settings used by the ticket email worker.
type MailConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// LoadMailConfig reads SMTP_* variables.
func LoadMailConfig() MailConfig {
	return MailConfig{
		Host:     envStr("SMTP_HOST", "localhost"),
		Port:     envInt("SMTP_PORT", 25),
		Username: envStr("SMTP_USERNAME", ""),
		Password: envStr("SMTP_PASSWORD", ""),
		From:     envStr("SMTP_FROM", "tickets@cinebook.local"),
	}
}
