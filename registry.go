package main

// The reserved display name that grants the host role when no admin
// token is configured. Kept for compatibility with the browser client,
// which prompts users to type it to run the room.
const reservedHostName = "docente"

type Role int

const (
	RolePlayer Role = iota
	RoleHost
)

// Participant is one named connection in the room.
type Participant struct {
	ConnID string
	Name   string
	Role   Role
}

// Registry maps live connection IDs to participants. It is owned by the
// hub's run goroutine and must only be touched from there; with a single
// owner no locking is needed.
type Registry struct {
	participants map[string]Participant
}

func newRegistry() *Registry {
	return &Registry{
		participants: make(map[string]Participant),
	}
}

// register adds or overwrites the participant for connID. Overwriting is
// allowed so a client can re-announce after reconnecting.
func (reg *Registry) register(connID, name string, role Role) Participant {
	p := Participant{
		ConnID: connID,
		Name:   name,
		Role:   role,
	}
	reg.participants[connID] = p
	return p
}

// unregister removes and returns the participant for connID, if any.
// Safe to call repeatedly for the same connection.
func (reg *Registry) unregister(connID string) (Participant, bool) {
	p, ok := reg.participants[connID]
	if ok {
		delete(reg.participants, connID)
	}
	return p, ok
}

func (reg *Registry) lookup(connID string) (Participant, bool) {
	p, ok := reg.participants[connID]
	return p, ok
}

func (reg *Registry) count() int {
	return len(reg.participants)
}

// isPrivileged reports whether name claims the reserved host name,
// ignoring case and outer whitespace.
func isPrivileged(name string) bool {
	return normalize(name) == reservedHostName
}
