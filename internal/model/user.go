package model

import (
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// User is an account allowed past the login gate.
type User struct {
	ID           uint   `gorm:"primaryKey" json:"id"`
	Role         string `gorm:"type:varchar(50);not null;default:''" json:"role"`
	FullName     string `gorm:"type:varchar(100);not null;default:''" json:"full_name"`
	Login        string `gorm:"type:varchar(100);uniqueIndex;not null" json:"login"`
	Password     string `gorm:"type:varchar(100);not null" json:"-"`
	TokenVersion string `gorm:"type:varchar(64);not null;default:''" json:"-"` // For single session enforcement
}

// SetPassword hashes and sets the user's password
func (u *User) SetPassword(password string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.Password = string(hashedPassword)
	return nil
}

// CheckPassword verifies if the provided password matches the stored hash
func (u *User) CheckPassword(password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password))
	return err == nil
}

// HasHashedPassword reports whether the stored password is a bcrypt hash.
// Rows imported from the legacy database hold plaintext.
func (u *User) HasHashedPassword() bool {
	if !strings.HasPrefix(u.Password, "$2") {
		return false
	}
	_, err := bcrypt.Cost([]byte(u.Password))
	return err == nil
}

// NormalizedRole resolves the stored role label.
func (u *User) NormalizedRole() Role {
	if u == nil {
		return RoleGuest
	}
	return ParseRole(u.Role)
}

// UserResponse is used for API responses (without sensitive data)
type UserResponse struct {
	ID       uint   `json:"id"`
	Login    string `json:"login"`
	FullName string `json:"full_name"`
	Role     Role   `json:"role"`
	RoleName string `json:"role_name"`
}

// ToResponse converts User to UserResponse
func (u *User) ToResponse() UserResponse {
	return UserResponse{
		ID:       u.ID,
		Login:    u.Login,
		FullName: u.FullName,
		Role:     u.NormalizedRole(),
		RoleName: u.Role,
	}
}
