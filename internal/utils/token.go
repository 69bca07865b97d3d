package utils

import (
	"crypto/rand"
	"encoding/base64"
)

// ResetPhrase returns an opaque reset token: several independent random
// values concatenated and base64 encoded. URL-safe so it can live in the
// reset link path.
func ResetPhrase() string {
	buf := make([]byte, 0, 48)
	for i := 0; i < 3; i++ {
		chunk := make([]byte, 16)
		rand.Read(chunk)
		buf = append(buf, chunk...)
	}
	return base64.RawURLEncoding.EncodeToString(buf)
}
