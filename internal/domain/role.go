package domain

// Role is a caller's permission level against current room state.
type Role int

const (
	RoleParticipant Role = iota
	RoleKing
	RoleHost
)

func (r Role) String() string {
	switch r {
	case RoleHost:
		return "host"
	case RoleKing:
		return "king"
	default:
		return "participant"
	}
}

// RoleOf computes the caller's role from room state alone. It must be
// re-evaluated on every inbound mutating event; the result is never
// cached and never taken from the client.
func RoleOf(r *Room, id UserID) Role {
	if id != "" && r.Host == id {
		return RoleHost
	}
	if r.HasKing(id) {
		return RoleKing
	}
	return RoleParticipant
}

// CanControlPlayback gates playback-mutating commands: host or king,
// or anyone once the room is collaborative.
func CanControlPlayback(r *Room, id UserID) bool {
	if r.IsCollaborative {
		return true
	}
	return RoleOf(r, id) != RoleParticipant
}

// CanManageRoom gates role-management commands (crowning kings,
// toggling collaborative mode). Host only.
func CanManageRoom(r *Room, id UserID) bool {
	return RoleOf(r, id) == RoleHost
}
