// SPDX-License-Identifier: Apache-2.0
package registration

import (
	"errors"
	"fmt"
	"strings"
)

// Role is the kind of account being registered
type Role string

const (
	RoleClient Role = "client"
	RoleClinic Role = "clinic"
)

// ErrUnknownRole is returned by ParseRole
var ErrUnknownRole = errors.New("unknown role")

// Roles lists every role
func Roles() []Role {
	return []Role{RoleClient, RoleClinic}
}

// ParseRole parses a role name case-insensitively
func ParseRole(s string) (Role, error) {
	switch Role(strings.ToLower(strings.TrimSpace(s))) {
	case RoleClient:
		return RoleClient, nil
	case RoleClinic:
		return RoleClinic, nil
	default:
		return "", fmt.Errorf("%w: %q (expected client or clinic)", ErrUnknownRole, s)
	}
}

// Collection is the document collection holding records for this role
func (r Role) Collection() string {
	switch r {
	case RoleClinic:
		return "clinic_records"
	default:
		return "client_records"
	}
}

// Title is the display name of the role
func (r Role) Title() string {
	switch r {
	case RoleClinic:
		return "Clinic"
	default:
		return "Client"
	}
}
