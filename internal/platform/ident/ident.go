// Package ident generates and checks the UUID identifiers used for books and
// users.
package ident

import "github.com/google/uuid"

// New returns a fresh random identifier.
func New() string {
	return uuid.NewString()
}

// Valid reports whether raw is a canonical 36-character UUID string.
// uuid.Parse alone also accepts the urn and braced forms.
func Valid(raw string) bool {
	if len(raw) != 36 {
		return false
	}
	_, err := uuid.Parse(raw)
	return err == nil
}
