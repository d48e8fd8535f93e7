package users

import (
	"encoding/json"
	"fmt"
	"strings"
	"unicode"

	"github.com/jrsteele09/academy-admin/internal/utils"
	"golang.org/x/crypto/bcrypt"
)

// RoleType is the closed set of roles the academy backend assigns to an account
type RoleType string

const (
	RoleAdmin   RoleType = "admin"   // Academy staff, the only role allowed into the admin client
	RoleCoach   RoleType = "coach"   // Coaches manage their own students and schedules
	RoleStudent RoleType = "student" // Students and athletes
)

// ParseRole converts a raw role string, rejecting anything outside the known set.
func ParseRole(role string) (RoleType, error) {
	r := RoleType(strings.ToLower(strings.TrimSpace(role)))
	if !r.Valid() {
		return "", fmt.Errorf("unknown role %q", role)
	}
	return r, nil
}

func (r RoleType) Valid() bool {
	switch r {
	case RoleAdmin, RoleCoach, RoleStudent:
		return true
	}
	return false
}

// User is the profile returned by the backend and cached alongside the tokens.
type User struct {
	ID           string   `json:"_id"`             // Backend identifier, also accepted as "id"
	Name         string   `json:"name,omitempty"`  // Display name
	Email        string   `json:"email,omitempty"` // Login email
	Role         RoleType `json:"role"`            // admin, coach or student
	Phone        *string  `json:"phone,omitempty"` // Optional contact number
	PasswordHash string   `json:"-"`               // Only populated by the development backend - never serialize
}

// UnmarshalJSON accepts both the Mongo style "_id" and a plain "id".
func (u *User) UnmarshalJSON(data []byte) error {
	type plain User
	var aux struct {
		plain
		AltID string `json:"id"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*u = User(aux.plain)
	if u.ID == "" {
		u.ID = aux.AltID
	}
	return nil
}

// IsAdmin reports whether this profile may hold an admin session.
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

func (u *User) PhoneNumber() string {
	return utils.Value(u.Phone)
}

// ValidatePasswordStrength checks if password meets the backend's account requirements:
// - At least 8 characters long
// - Contains uppercase and lowercase letters
// - Contains at least one number
func ValidatePasswordStrength(password string) error {
	if len(password) < 8 {
		return fmt.Errorf("password must be at least 8 characters long")
	}

	var (
		hasUpper  bool
		hasLower  bool
		hasNumber bool
	)

	for _, char := range password {
		if unicode.IsUpper(char) {
			hasUpper = true
		} else if unicode.IsLower(char) {
			hasLower = true
		} else if unicode.IsDigit(char) {
			hasNumber = true
		}
	}

	if !hasUpper {
		return fmt.Errorf("password must contain at least one uppercase letter")
	}
	if !hasLower {
		return fmt.Errorf("password must contain at least one lowercase letter")
	}
	if !hasNumber {
		return fmt.Errorf("password must contain at least one number")
	}

	return nil
}

func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}
