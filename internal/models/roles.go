package models

import (
	"encoding/json"
	"fmt"
)

// Role is a canonical semantic column of a statement.
type Role string

const (
	RoleDate        Role = "date"
	RoleAmount      Role = "amount"
	RoleDescription Role = "description"
)

// Roles lists every role in assignment priority order.
var Roles = []Role{RoleAmount, RoleDate, RoleDescription}

// DiagnosticKind classifies a role resolution finding.
type DiagnosticKind string

const (
	DiagnosticMissing   DiagnosticKind = "missing"   // no column matched the role
	DiagnosticAmbiguous DiagnosticKind = "ambiguous" // several columns matched the role
	DiagnosticCollision DiagnosticKind = "collision" // best column already taken by another role
)

// Diagnostic captures what the resolver decided for one role.
type Diagnostic struct {
	Kind    DiagnosticKind `json:"kind"`
	Role    Role           `json:"role"`
	Columns []int          `json:"columns,omitempty"`
	Message string         `json:"message"`
}

// RoleMapping maps each role to at most one source column.
type RoleMapping struct {
	columns     map[Role]int
	Diagnostics []Diagnostic
}

// NewRoleMapping returns a mapping with every role unassigned.
func NewRoleMapping() RoleMapping {
	return RoleMapping{columns: make(map[Role]int, len(Roles))}
}

// Assign records col as the source column for role.
func (m *RoleMapping) Assign(role Role, col int) {
	if m.columns == nil {
		m.columns = make(map[Role]int, len(Roles))
	}
	m.columns[role] = col
}

// Column returns the column assigned to role.
func (m RoleMapping) Column(role Role) (int, bool) {
	col, ok := m.columns[role]
	return col, ok
}

// Index returns the column assigned to role, or -1.
func (m RoleMapping) Index(role Role) int {
	if col, ok := m.columns[role]; ok {
		return col
	}
	return -1
}

// String renders the mapping for logs, e.g. "amount=2 date=0 description=-1".
func (m RoleMapping) String() string {
	return fmt.Sprintf("amount=%d date=%d description=%d",
		m.Index(RoleAmount), m.Index(RoleDate), m.Index(RoleDescription))
}

// MarshalJSON renders assigned columns by role name, unassigned roles as -1.
func (m RoleMapping) MarshalJSON() ([]byte, error) {
	cols := make(map[Role]int, len(Roles))
	for _, r := range Roles {
		cols[r] = m.Index(r)
	}
	return json.Marshal(struct {
		Columns     map[Role]int `json:"columns"`
		Diagnostics []Diagnostic `json:"diagnostics"`
	}{cols, m.Diagnostics})
}
