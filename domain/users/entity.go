package users

import (
	"time"

	"github.com/uptrace/bun"
)

// Role values for PrimaryUser.Role
const (
	RoleNone = "none"
	RoleRoot = "root"
)

// PrimaryUser represents a registered user or a placeholder ancestor record.
// Placeholders are created by the family graph engine on behalf of relatives
// who have not registered themselves; they carry IsActive=false and no
// password hash.
type PrimaryUser struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	ID           string     `bun:"id,pk,type:uuid,default:uuid_generate_v4()" json:"id"`
	FullName     string     `bun:"full_name,notnull" json:"fullName"`
	UserName     *string    `bun:"user_name" json:"userName,omitempty"`
	Email        *string    `bun:"email" json:"email,omitempty"`
	Phone        *string    `bun:"phone" json:"phone,omitempty"`
	PasswordHash *string    `bun:"password_hash" json:"-"`
	Gender       *string    `bun:"gender" json:"gender,omitempty"`
	DOB          *time.Time `bun:"dob" json:"dob,omitempty"`
	ProfilePhoto *string    `bun:"profile_photo" json:"profilePhoto,omitempty"`

	// Role is "root" for the anchor ancestor of a family, else "none".
	// FamilyRootedTo is the single family this user anchors.
	Role           string  `bun:"role,notnull,default:'none'" json:"role"`
	FamilyRootedTo *string `bun:"family_rooted_to,type:uuid" json:"familyRootedTo,omitempty"`

	// CreatorID is set on placeholder records: the member who declared them.
	CreatorID *string `bun:"creator_id,type:uuid" json:"creatorId,omitempty"`
	IsActive  bool    `bun:"is_active,notnull,default:true" json:"isActive"`

	CreatedAt time.Time `bun:"created_at,notnull,default:now()" json:"createdAt"`
	UpdatedAt time.Time `bun:"updated_at,notnull,default:now()" json:"updatedAt"`
}

// IsRoot reports whether the user already anchors a family.
func (u *PrimaryUser) IsRoot() bool {
	return u.Role == RoleRoot
}

// PublicProfile is the partial projection exposed in rosters and query results.
type PublicProfile struct {
	ID           string  `json:"id"`
	FullName     string  `json:"fullName"`
	UserName     *string `json:"userName,omitempty"`
	Role         string  `json:"role"`
	ProfilePhoto *string `json:"profilePhoto,omitempty"`
}

// ToPublic converts a PrimaryUser to its public projection.
func (u *PrimaryUser) ToPublic() PublicProfile {
	return PublicProfile{
		ID:           u.ID,
		FullName:     u.FullName,
		UserName:     u.UserName,
		Role:         u.Role,
		ProfilePhoto: u.ProfilePhoto,
	}
}
