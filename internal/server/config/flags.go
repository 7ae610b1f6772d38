package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/todokeeper/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   HTTP bind address (e.g., ":8080")
//	-d string   PostgreSQL DSN
//	-s string   unlock token HMAC secret
//	-t int      unlock token validity, minutes
//	-l bool     require an unlock token on destructive routes
//	-k int      bcrypt cost for new PIN hashes
//	-w string   Mailgun webhook signing key
//	-m string   automation secret key
//	-g string   Gemini API key
//	-u string   S3 root user
//	-p string   S3 root password
//	-b string   S3 bucket name (empty disables the summary archive)
//	-r string   S3 region
//	-e string   S3 base endpoint
func parseFlags(config *Config) {
	args := flagx.FilterArgsWithBools(os.Args[1:],
		[]string{"-a", "-d", "-s", "-t", "-l", "-k", "-w", "-m", "-g", "-u", "-p", "-b", "-r", "-e"},
		[]string{"-l"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddrHTTP, "a", config.EndpointAddrHTTP, "address and port to run server")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")

	unlockTokenValidity := fs.Int("t", int(config.UnlockTokenValidityDuration.Minutes()), "unlock_token_validity_duration (in minutes)")

	fs.BoolVar(&config.RequireUnlockToken, "l", config.RequireUnlockToken, "require unlock token for destructive routes")
	fs.IntVar(&config.PinHashCost, "k", config.PinHashCost, "bcrypt cost for PIN hashes")
	fs.StringVar(&config.MailgunSigningKey, "w", config.MailgunSigningKey, "Mailgun webhook signing key")
	fs.StringVar(&config.AutomationSecretKey, "m", config.AutomationSecretKey, "automation secret key")
	fs.StringVar(&config.GeminiAPIKey, "g", config.GeminiAPIKey, "Gemini API key")
	fs.StringVar(&config.S3RootUser, "u", config.S3RootUser, "S3 root user")
	fs.StringVar(&config.S3RootPassword, "p", config.S3RootPassword, "S3 root password")
	fs.StringVar(&config.S3Bucket, "b", config.S3Bucket, "S3 summary archive bucket")
	fs.StringVar(&config.S3Region, "r", config.S3Region, "S3 region")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	// -t only counts when given; its default would truncate a sub-minute TTL.
	fs.Visit(func(f *flag.Flag) {
		if f.Name == "t" {
			config.UnlockTokenValidityDuration = time.Duration(*unlockTokenValidity) * time.Minute
		}
	})
}
