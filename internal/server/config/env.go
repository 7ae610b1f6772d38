package config

import (
	"github.com/spf13/viper"
)

type envBinding struct {
	key   string
	names []string
	apply func(v *viper.Viper, key string, c *Config)
}

func str(dst func(c *Config) *string) func(v *viper.Viper, key string, c *Config) {
	return func(v *viper.Viper, key string, c *Config) { *dst(c) = v.GetString(key) }
}

// envBindings maps config keys to environment variables. Where the previous
// deployment already used a variable name (MAILGUN_SIGNING_KEY,
// AUTOMATION_SECRET_KEY, GEMINI_API_KEY, RECIPIENT_EMAIL) it is kept.
var envBindings = []envBinding{
	{"endpoint_addr_http", []string{"TODOKEEPER_ADDR"}, str(func(c *Config) *string { return &c.EndpointAddrHTTP })},
	{"database_dsn", []string{"TODOKEEPER_DATABASE_DSN", "DATABASE_URL"}, str(func(c *Config) *string { return &c.DatabaseDSN })},
	{"secret_key", []string{"TODOKEEPER_SECRET_KEY"}, str(func(c *Config) *string { return &c.SecretKey })},
	{"unlock_token_validity_duration", []string{"TODOKEEPER_UNLOCK_TOKEN_TTL"}, func(v *viper.Viper, key string, c *Config) {
		c.UnlockTokenValidityDuration = v.GetDuration(key)
	}},
	{"require_unlock_token", []string{"TODOKEEPER_REQUIRE_UNLOCK_TOKEN"}, func(v *viper.Viper, key string, c *Config) {
		c.RequireUnlockToken = v.GetBool(key)
	}},
	{"pin_hash_cost", []string{"TODOKEEPER_PIN_HASH_COST"}, func(v *viper.Viper, key string, c *Config) {
		c.PinHashCost = v.GetInt(key)
	}},
	{"mailgun_signing_key", []string{"MAILGUN_SIGNING_KEY"}, str(func(c *Config) *string { return &c.MailgunSigningKey })},
	{"webhook_max_age", []string{"MAILGUN_WEBHOOK_MAX_AGE"}, func(v *viper.Viper, key string, c *Config) {
		c.WebhookMaxAge = v.GetDuration(key)
	}},
	{"automation_secret_key", []string{"AUTOMATION_SECRET_KEY"}, str(func(c *Config) *string { return &c.AutomationSecretKey })},
	{"gemini_api_key", []string{"GEMINI_API_KEY"}, str(func(c *Config) *string { return &c.GeminiAPIKey })},
	{"gemini_model", []string{"GEMINI_MODEL"}, str(func(c *Config) *string { return &c.GeminiModel })},
	{"smtp_host", []string{"SMTP_HOST"}, str(func(c *Config) *string { return &c.SMTPHost })},
	{"smtp_port", []string{"SMTP_PORT"}, func(v *viper.Viper, key string, c *Config) {
		c.SMTPPort = v.GetInt(key)
	}},
	{"smtp_username", []string{"SMTP_USERNAME"}, str(func(c *Config) *string { return &c.SMTPUsername })},
	{"smtp_password", []string{"SMTP_PASSWORD"}, str(func(c *Config) *string { return &c.SMTPPassword })},
	{"mail_from", []string{"MAIL_FROM"}, str(func(c *Config) *string { return &c.MailFrom })},
	{"mail_to", []string{"RECIPIENT_EMAIL"}, str(func(c *Config) *string { return &c.MailTo })},
	{"owner_name", []string{"OWNER_NAME"}, str(func(c *Config) *string { return &c.OwnerName })},
	{"prompt_note_id", []string{"TODOKEEPER_PROMPT_NOTE_ID"}, func(v *viper.Viper, key string, c *Config) {
		c.PromptNoteID = v.GetInt64(key)
	}},
	{"s3_root_user", []string{"S3_ROOT_USER"}, str(func(c *Config) *string { return &c.S3RootUser })},
	{"s3_root_password", []string{"S3_ROOT_PASSWORD"}, str(func(c *Config) *string { return &c.S3RootPassword })},
	{"s3_bucket", []string{"S3_BUCKET"}, str(func(c *Config) *string { return &c.S3Bucket })},
	{"s3_region", []string{"S3_REGION"}, str(func(c *Config) *string { return &c.S3Region })},
	{"s3_base_endpoint", []string{"S3_BASE_ENDPOINT"}, str(func(c *Config) *string { return &c.S3BaseEndpoint })},
}

// parseEnv overlays values from environment variables. Unset or empty
// variables leave the current value alone.
func parseEnv(config *Config) {
	v := viper.New()

	for _, b := range envBindings {
		args := append([]string{b.key}, b.names...)
		if err := v.BindEnv(args...); err != nil {
			panic(err)
		}
	}

	for _, b := range envBindings {
		if v.IsSet(b.key) {
			b.apply(v, b.key, config)
		}
	}
}
