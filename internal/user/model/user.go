package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"

	DefaultPhoto = "default.jpg"
)

// User is the persisted account document. The credential is stored only as a
// bcrypt digest and never serialized outward.
type User struct {
	ID                 primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name               string             `bson:"name" json:"name"`
	Email              string             `bson:"email" json:"email"`
	Photo              string             `bson:"photo" json:"photo"`
	Role               string             `bson:"role" json:"role"`
	PasswordHashed     string             `bson:"password" json:"-"`
	Active             bool               `bson:"active" json:"-"`
	PasswordChangedAt  time.Time          `bson:"password_changed_at,omitempty" json:"-"`
	ResetTokenHash     string             `bson:"reset_token_hash,omitempty" json:"-"`
	ResetTokenExpires  time.Time          `bson:"reset_token_expires_at,omitempty" json:"-"`
	LastLoginAt        time.Time          `bson:"last_login_at,omitempty" json:"-"`
	CreatedAt          time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt          time.Time          `bson:"updated_at" json:"updated_at"`
}

// ChangedPasswordAfter reports whether the password was changed after the
// given token issuance time. Tokens minted earlier are stale and must be
// rejected even though their signature still verifies.
func (u *User) ChangedPasswordAfter(issuedAt time.Time) bool {
	if u.PasswordChangedAt.IsZero() {
		return false
	}
	return issuedAt.Before(u.PasswordChangedAt)
}

// HasValidResetToken reports whether a reset token is pending and unexpired.
// An expired token is treated as absent.
func (u *User) HasValidResetToken(now time.Time) bool {
	return u.ResetTokenHash != "" && !u.ResetTokenExpires.IsZero() && now.Before(u.ResetTokenExpires)
}
