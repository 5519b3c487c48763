package database

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type User struct {
	Id uuid.UUID `gorm:"type:uuid;primaryKey"`

	Email        string `gorm:"uniqueIndex;size:255;not null"`
	PasswordHash []byte `gorm:"not null"`

	EmailVerified     bool   `gorm:"default:false"`
	VerificationToken string `gorm:"index;size:64"`

	CreationTime time.Time
}

type AuthToken struct {
	Token  string    `gorm:"primaryKey;size:64"`
	UserId uuid.UUID `gorm:"type:uuid;index;not null"`
	User   *User     `gorm:"foreignKey:UserId;constraint:OnDelete:CASCADE"`

	ExpiresAt time.Time
}

// SessionRecord is one saved chat session in the per-user collection,
// addressed by (user_id, session_id) the way a remote document store
// addresses users/{uid}/chats/{chatId}.
type SessionRecord struct {
	UserID    string    `gorm:"primaryKey;size:64"`
	SessionID uuid.UUID `gorm:"type:uuid;primaryKey"`

	Title     string
	Timestamp time.Time      `gorm:"index"`
	Data      datatypes.JSON `gorm:"type:jsonb;not null"`
}

// BreachAccount marks an email as present in the breach fixture set, even
// when it has no associated breaches.
type BreachAccount struct {
	Email string `gorm:"primaryKey;size:255"`

	Breaches []Breach `gorm:"foreignKey:Email;constraint:OnDelete:CASCADE"`
}

type Breach struct {
	Id    uuid.UUID `gorm:"type:uuid;primaryKey"`
	Email string    `gorm:"index;size:255;not null"`

	Name        string `gorm:"not null"`
	Date        string `gorm:"size:10"` // YYYY-MM-DD
	Description string
	DataClasses datatypes.JSON `gorm:"type:jsonb"` // ["Email addresses", ...]
}

type IntelAlert struct {
	Id uuid.UUID `gorm:"type:uuid;primaryKey"`

	Title    string `gorm:"not null"`
	Summary  string
	Date     time.Time `gorm:"index"`
	Severity string    `gorm:"size:16;not null"`
	Source   string
	Link     string
	Tags     datatypes.JSON `gorm:"type:jsonb"` // ["phishing", ...]
}
