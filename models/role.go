package models

// Role is the four-level access role a user holds in a shared team library.
type Role string

const (
	RoleViewer Role = "viewer"
	RoleEditor Role = "editor"
	RoleAdmin  Role = "admin"
	RoleOwner  Role = "owner"
)

// WritePermission is the write gate derived from a Role. Read access
// (downloads and remote-tombstone-triggered local deletions) is always
// unconditional; the planner only consults this gate for uploads and remote
// deletions.
type WritePermission struct {
	CanUpload bool
	CanDelete bool
}

// Permission maps a role to its write gate: editor and above may upload,
// admin and above may delete. Unknown roles get no write access.
func (r Role) Permission() WritePermission {
	switch r {
	case RoleEditor:
		return WritePermission{CanUpload: true}
	case RoleAdmin, RoleOwner:
		return WritePermission{CanUpload: true, CanDelete: true}
	default:
		return WritePermission{}
	}
}

// FullAccess is the permission used for personal-library sync, where no role
// gate applies.
func FullAccess() WritePermission {
	return WritePermission{CanUpload: true, CanDelete: true}
}
