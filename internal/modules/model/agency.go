package model

import (
	"strings"

	"github.com/google/uuid"
)

// AgencyContextKey is where the auth middleware stores the verified Agency.
const AgencyContextKey = "agency"

// Agency is the verified identity behind an agency request. It is never persisted here.
type Agency struct {
	ID       uuid.UUID
	Email    string
	FullName string
}

// DisplayName is the full name from the identity claims, falling back to email.
func (a Agency) DisplayName() string {
	if n := strings.TrimSpace(a.FullName); n != "" {
		return n
	}
	return a.Email
}
