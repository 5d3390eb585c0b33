// internal/models/user.go
package models

import (
	"golang.org/x/crypto/bcrypt"
)

type User struct {
	BaseModel            `bson:",inline"`
	FirstName            string  `json:"first_name" bson:"first_name" gorm:"size:100"`
	LastName             string  `json:"last_name" bson:"last_name" gorm:"size:100"`
	Email                string  `json:"email" bson:"email" gorm:"uniqueIndex;size:255;not null"`
	Age                  int     `json:"age" bson:"age"`
	PasswordHash         string  `json:"-" bson:"password_hash" gorm:"size:255;not null"`
	PreviousPasswordHash *string `json:"-" bson:"previous_password_hash,omitempty" gorm:"size:255"`
	CartID               string  `json:"cart" bson:"cart" gorm:"type:uuid;index"`
	Role                 Role    `json:"role" bson:"role" gorm:"type:varchar(20);not null;default:'user'"`
}

func (u *User) SetPassword(password string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hashedPassword)
	return nil
}

func (u *User) CheckPassword(password string) error {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password))
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
