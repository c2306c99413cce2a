package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type User struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserName string             `bson:"userName" json:"userName"`
	Email    string             `bson:"email" json:"email"`
	Phone    string             `bson:"phone" json:"phone"`
	Password string             `bson:"password,omitempty" json:"-"`
	Image    string             `bson:"image,omitempty" json:"image,omitempty"`
	IsAdmin  bool               `bson:"isAdmin" json:"isAdmin"`

	// One-time codes for password reset and account deletion.
	// Nulled out after consumption; expiry is checked on use.
	ResetPasswordToken       string     `bson:"resetPasswordToken,omitempty" json:"-"`
	ResetPasswordExpire      *time.Time `bson:"resetPasswordExpire,omitempty" json:"-"`
	DeleteAccountToken       string     `bson:"deleteAccountToken,omitempty" json:"-"`
	DeleteAccountTokenExpire *time.Time `bson:"deleteAccountTokenExpire,omitempty" json:"-"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}
