package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/todokeeper/internal/flagx"
	"github.com/dmitrijs2005/todokeeper/internal/timex"
)

// JsonConfig is the on-disk shape of the configuration file. Durations use
// timex.Duration so both "15m" and integer nanoseconds are accepted. Fields
// absent from the file keep the values already present in Config.
type JsonConfig struct {
	EndpointAddrHTTP            *string         `json:"endpoint_addr_http"`
	DatabaseDSN                 *string         `json:"database_dsn"`
	SecretKey                   *string         `json:"secret_key"`
	UnlockTokenValidityDuration *timex.Duration `json:"unlock_token_validity_duration"`
	RequireUnlockToken          *bool           `json:"require_unlock_token"`
	PinHashCost                 *int            `json:"pin_hash_cost"`
	MailgunSigningKey           *string         `json:"mailgun_signing_key"`
	WebhookMaxAge               *timex.Duration `json:"webhook_max_age"`
	AutomationSecretKey         *string         `json:"automation_secret_key"`
	GeminiAPIKey                *string         `json:"gemini_api_key"`
	GeminiModel                 *string         `json:"gemini_model"`
	SMTPHost                    *string         `json:"smtp_host"`
	SMTPPort                    *int            `json:"smtp_port"`
	SMTPUsername                *string         `json:"smtp_username"`
	SMTPPassword                *string         `json:"smtp_password"`
	MailFrom                    *string         `json:"mail_from"`
	MailTo                      *string         `json:"mail_to"`
	OwnerName                   *string         `json:"owner_name"`
	PromptNoteID                *int64          `json:"prompt_note_id"`
	DefaultNoteID               *int64          `json:"default_note_id"`
	S3RootUser                  *string         `json:"s3_root_user"`
	S3RootPassword              *string         `json:"s3_root_password"`
	S3Bucket                    *string         `json:"s3_bucket"`
	S3Region                    *string         `json:"s3_region"`
	S3BaseEndpoint              *string         `json:"s3_base_endpoint"`
}

// parseJson overlays values from the JSON file named by -c/-config. Without
// the flag nothing is loaded. An unreadable or invalid file panics, the same
// way a bad flag does.
func parseJson(config *Config) {
	path := flagx.ConfigFilePath()
	if path == "" {
		return
	}

	file, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	c.apply(config)
}

func (c *JsonConfig) apply(config *Config) {
	setString(&config.EndpointAddrHTTP, c.EndpointAddrHTTP)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.SecretKey, c.SecretKey)
	if c.UnlockTokenValidityDuration != nil {
		config.UnlockTokenValidityDuration = c.UnlockTokenValidityDuration.Duration
	}
	if c.RequireUnlockToken != nil {
		config.RequireUnlockToken = *c.RequireUnlockToken
	}
	if c.PinHashCost != nil {
		config.PinHashCost = *c.PinHashCost
	}
	setString(&config.MailgunSigningKey, c.MailgunSigningKey)
	if c.WebhookMaxAge != nil {
		config.WebhookMaxAge = c.WebhookMaxAge.Duration
	}
	setString(&config.AutomationSecretKey, c.AutomationSecretKey)
	setString(&config.GeminiAPIKey, c.GeminiAPIKey)
	setString(&config.GeminiModel, c.GeminiModel)
	setString(&config.SMTPHost, c.SMTPHost)
	if c.SMTPPort != nil {
		config.SMTPPort = *c.SMTPPort
	}
	setString(&config.SMTPUsername, c.SMTPUsername)
	setString(&config.SMTPPassword, c.SMTPPassword)
	setString(&config.MailFrom, c.MailFrom)
	setString(&config.MailTo, c.MailTo)
	setString(&config.OwnerName, c.OwnerName)
	if c.PromptNoteID != nil {
		config.PromptNoteID = *c.PromptNoteID
	}
	if c.DefaultNoteID != nil {
		config.DefaultNoteID = *c.DefaultNoteID
	}
	setString(&config.S3RootUser, c.S3RootUser)
	setString(&config.S3RootPassword, c.S3RootPassword)
	setString(&config.S3Bucket, c.S3Bucket)
	setString(&config.S3Region, c.S3Region)
	setString(&config.S3BaseEndpoint, c.S3BaseEndpoint)
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}
