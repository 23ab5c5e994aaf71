package chat

// Role distinguishes the two sides of the marketplace.
type Role string

const (
	RoleClient   Role = "client"
	RoleProvider Role = "provider"
)

// DisplayProfile is the minimal identity used to render the other party:
// name and avatar, plus the role used to validate conversation pairs.
type DisplayProfile struct {
	ID        string  `db:"id"`
	FullName  string  `db:"full_name"`
	AvatarURL *string `db:"profile_image"`
	Role      Role    `db:"role"`
}
