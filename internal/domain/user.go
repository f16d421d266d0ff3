package domain

// User roles known to the mock identity provider.
const (
	UserRoleAdmin = "Admin"
	UserRoleUser  = "User"
)

// User is the signed-in person.
type User struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	Email  string  `json:"email"`
	Avatar *string `json:"avatar,omitempty"`
	Role   string  `json:"role"`
}

// UserPatch lists profile fields to merge into the current user.
type UserPatch struct {
	Name   *string
	Email  *string
	Avatar *string
	Role   *string
}

// Apply copies the non-nil fields onto u.
func (p UserPatch) Apply(u *User) {
	if p.Name != nil {
		u.Name = *p.Name
	}
	if p.Email != nil {
		u.Email = *p.Email
	}
	if p.Avatar != nil {
		avatar := *p.Avatar
		u.Avatar = &avatar
	}
	if p.Role != nil {
		u.Role = *p.Role
	}
}
