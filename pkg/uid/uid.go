// Package uid generates tracker identifiers: 11 characters, a letter
// followed by ten alphanumerics.
package uid

import (
	"crypto/rand"
	"math/big"
)

const (
	letters  = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"
	alphanum = letters + "0123456789"
	length   = 11
)

// Generator produces globally unique opaque identifiers, one per new
// entity, enrollment, or event.
type Generator interface {
	UID() string
}

// Func adapts a plain function to the Generator interface.
type Func func() string

// UID implements Generator.
func (f Func) UID() string { return f() }

// New returns a Generator backed by crypto/rand.
func New() Generator {
	return Func(generate)
}

func generate() string {
	buf := make([]byte, length)
	buf[0] = letters[index(len(letters))]
	for i := 1; i < length; i++ {
		buf[i] = alphanum[index(len(alphanum))]
	}
	return string(buf)
}

func index(n int) int {
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		// crypto/rand only fails when the platform source is broken;
		// an identifier of zeros would silently collide.
		panic(err)
	}
	return int(v.Int64())
}
