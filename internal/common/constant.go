// Package common contains shared constants and sentinel errors used across
// todokeeper components.
package common

// UnlockTokenHeaderName is the HTTP header carrying the short-lived token
// issued by a successful PIN check.
const UnlockTokenHeaderName = "X-Unlock-Token"

// SettingsID is the primary key of the singleton settings row.
const SettingsID = 1
