package model

import (
	"time"

	"github.com/google/uuid"
)

type Organization struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name      string    `gorm:"not null" json:"name"`
	Slug      string    `gorm:"uniqueIndex;not null" json:"slug"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (Organization) TableName() string {
	return "organization"
}

// MemberRole is the role of a user inside an organization.
type MemberRole string

const (
	RoleOwner  MemberRole = "owner"
	RoleAdmin  MemberRole = "admin"
	RoleMember MemberRole = "member"
)

// CanManage reports whether the role may administer rewards, goals and redemptions.
func (r MemberRole) CanManage() bool {
	switch r {
	case RoleOwner, RoleAdmin:
		return true
	case RoleMember:
		return false
	}
	return false
}

// Member links a user to an organization.
type Member struct {
	ID             uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	OrganizationID uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_member_org_user" json:"organization_id"`
	UserID         uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_member_org_user" json:"user_id"`
	Role           MemberRole `gorm:"not null" json:"role"`
	CreatedAt      time.Time  `gorm:"autoCreateTime" json:"created_at"`

	User User `gorm:"foreignKey:UserID" json:"user"`
}

func (Member) TableName() string {
	return "member"
}
