package models

// Setting is the singleton settings row holding the PIN hash. PinHash is a
// bcrypt string, or empty while no PIN has been provisioned.
type Setting struct {
	ID      int64
	PinHash string
}
