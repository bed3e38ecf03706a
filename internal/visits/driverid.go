package visits

import (
	"crypto/rand"
)

const (
	driverIDPrefix   = "DRIVER-"
	driverIDAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	driverIDLength   = 9
)

// NewDriverID returns an identifier like DRIVER-K3X9Q0Z1A. Uniqueness is
// probabilistic; the drivers table enforces it.
func NewDriverID() string {
	buf := make([]byte, driverIDLength)
	if _, err := rand.Read(buf); err != nil {
		panic(err)
	}
	for i, b := range buf {
		buf[i] = driverIDAlphabet[int(b)%len(driverIDAlphabet)]
	}
	return driverIDPrefix + string(buf)
}
