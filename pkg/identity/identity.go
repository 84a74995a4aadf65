// Package identity describes the verified caller identity handed to the engines.
package identity

import (
	"errors"
	"strings"

	"github.com/google/uuid"
)

var ErrEmptyAddress = errors.New("empty address")

// Address is an opaque identity already verified by the host.
// Two addresses name the same caller only when they are exactly equal.
type Address string

// Parse trims s and rejects the empty address.
func Parse(s string) (Address, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", ErrEmptyAddress
	}
	return Address(s), nil
}

// New mints a random address. Handy for tools and tests.
func New() Address {
	return Address(uuid.New().String())
}

func (a Address) Equal(other Address) bool {
	return a == other
}

func (a Address) String() string {
	return string(a)
}
