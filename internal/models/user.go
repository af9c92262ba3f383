package models

import "time"

// User represents a member of the network.
type User struct {
	ID         string    `json:"id" gorm:"primaryKey;type:varchar(24)"`
	Username   string    `json:"username" gorm:"uniqueIndex;type:varchar(30);not null" validate:"required,min=3,max=30,alphanum"`
	Email      string    `json:"email" gorm:"uniqueIndex;type:varchar(255);not null" validate:"required,email"`
	Password   string    `json:"-" gorm:"type:varchar(255);not null" validate:"required,min=6"` // bcrypt hash once stored
	FullName   string    `json:"fullName" gorm:"type:varchar(50);not null" validate:"required,min=1,max=50"`
	Bio        string    `json:"bio" gorm:"type:varchar(200)"`
	Avatar     string    `json:"avatar"`
	IsVerified bool      `json:"isVerified"`
	Followers  []string  `json:"followers" gorm:"-"`
	Following  []string  `json:"following" gorm:"-"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// DisplayName is the name used in notification messages.
func (u *User) DisplayName() string {
	if u.FullName != "" {
		return u.FullName
	}
	return u.Username
}

// Summary returns the public author fields embedded in posts and notifications.
func (u *User) Summary() UserSummary {
	return UserSummary{
		ID:         u.ID,
		Username:   u.Username,
		FullName:   u.FullName,
		Avatar:     u.Avatar,
		IsVerified: u.IsVerified,
	}
}

// Follow is a directed edge of the social graph. The composite key makes the
// edge unique, so both sides of the relation are derived from one row.
type Follow struct {
	FollowerID  string    `gorm:"primaryKey;type:varchar(24)"`
	FollowingID string    `gorm:"primaryKey;type:varchar(24);index"`
	CreatedAt   time.Time
}

// ProfileUpdate holds the editable profile fields; nil means unchanged.
type ProfileUpdate struct {
	FullName *string `json:"fullName" validate:"omitempty,min=1,max=50"`
	Bio      *string `json:"bio" validate:"omitempty,max=200"`
	Avatar   *string `json:"avatar" validate:"omitempty,url"`
}
