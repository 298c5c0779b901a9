// Package shared holds small helpers used across the client packages.
package shared

// WipeByteArray zeroes b in place. Use it on passwords once they have been
// sent. A nil slice is ignored.
func WipeByteArray(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
