package weakrand

import (
	crand "crypto/rand"
	"math/rand" // want "math/rand is not a secure random source, use crypto/rand"
)

func key() []byte {
	b := make([]byte, 6)
	_, _ = crand.Read(b)
	b[0] = byte(rand.Intn(256))
	return b
}
