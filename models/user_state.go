package models

import "time"

/************************************************
/**** MARK: REGISTRATION ROLES ****/
/************************************************/
const ROLE_COMMITTEE_MEMBER = "committee_member"
const ROLE_COMMUNITY_MANAGER = "community_manager"
const ROLE_COMMUNITY_SECRETARY = "community_secretary"
const ROLE_SECURITY = "security"
const ROLE_RESIDENT = "resident"

// Roles is the fixed role set, in the order shown on the quick-reply buttons.
// The stored value and the button label are the same string, so an exact
// match on the incoming text is enough.
var Roles = []string{
	ROLE_COMMITTEE_MEMBER,
	ROLE_COMMUNITY_MANAGER,
	ROLE_COMMUNITY_SECRETARY,
	ROLE_SECURITY,
	ROLE_RESIDENT,
}

func IsValidRole(s string) bool {
	for _, r := range Roles {
		if s == r {
			return true
		}
	}
	return false
}

/************************************************
/**** MARK: PENDING REGISTRATION FIELD ****/
/************************************************/
const PENDING_NONE = ""
const PENDING_COMMUNITY = "community"
const PENDING_ROLE = "role"

// UserState is the per-user conversation state. One row per LINE user,
// created implicitly on first contact and never deleted.
type UserState struct {
	ID                   int64      `gorm:"primary_key;AUTO_INCREMENT" json:"id"`
	LineUserID           string     `gorm:"column:line_user_id;not null;unique_index" json:"line_user_id"`
	IsRegistered         bool       `gorm:"column:is_registered;not null;default:false" json:"is_registered"`
	PendingField         string     `gorm:"column:pending_field;default:''" json:"pending_field"`
	Community            string     `gorm:"column:community;default:''" json:"community"`
	Role                 string     `gorm:"column:role;default:''" json:"role"`
	Nickname             string     `gorm:"column:nickname;default:''" json:"nickname"`
	IsHumanMode          bool       `gorm:"column:is_human_mode;not null;default:false" json:"is_human_mode"`
	LastHumanInteraction *time.Time `gorm:"column:last_human_interaction" json:"last_human_interaction"`
	CreatedAt            *time.Time `json:"created_at"`
	UpdatedAt            *time.Time `json:"updated_at"`
}
