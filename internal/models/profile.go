package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UserProfile mirrors the identity provider's user record locally so the
// dashboard can edit the display name and avatar.
type UserProfile struct {
	ID        uuid.UUID      `gorm:"type:varchar(36);primarykey" json:"id"`
	UserID    string         `gorm:"size:128;not null;uniqueIndex" json:"user_id"`
	Name      string         `gorm:"size:100" json:"name"`
	Email     string         `gorm:"size:255" json:"email"`
	AvatarURL string         `gorm:"size:512" json:"avatar"`
	LastLogin time.Time      `json:"last_login"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// BeforeCreate assigns a primary key when none is set.
func (p *UserProfile) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
