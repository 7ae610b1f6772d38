package common

// WipeByteArray zeroes b in place. Used for PIN bytes read from a terminal.
func WipeByteArray(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
