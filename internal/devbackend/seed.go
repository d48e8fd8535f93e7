package devbackend

import (
	"fmt"

	"github.com/jrsteele09/academy-admin/users"
)

// Account is a login seeded into the development backend.
type Account struct {
	Name     string
	Email    string
	Password string
	Role     users.RoleType
}

// DefaultAccounts are the logins of a fresh devserver.
var DefaultAccounts = []Account{
	{Name: "Academy Admin", Email: "admin@academy.local", Password: "Admin1234", Role: users.RoleAdmin},
	{Name: "Head Coach", Email: "coach@academy.local", Password: "Coach1234", Role: users.RoleCoach},
	{Name: "First Student", Email: "student@academy.local", Password: "Student1234", Role: users.RoleStudent},
}

// Seed adds accounts to the user repo. Passwords must meet the backend's strength rules.
func Seed(repo users.UserRepo, accounts ...Account) ([]*users.User, error) {
	created := make([]*users.User, 0, len(accounts))
	for _, a := range accounts {
		if !a.Role.Valid() {
			return nil, fmt.Errorf("[devbackend Seed] %s: unknown role %q", a.Email, a.Role)
		}
		if err := users.ValidatePasswordStrength(a.Password); err != nil {
			return nil, fmt.Errorf("[devbackend Seed] %s: %w", a.Email, err)
		}
		hash, err := users.HashPassword(a.Password)
		if err != nil {
			return nil, fmt.Errorf("[devbackend Seed] %s: failed to hash password: %w", a.Email, err)
		}
		u := &users.User{Name: a.Name, Email: a.Email, Role: a.Role, PasswordHash: hash}
		if err := repo.Upsert(u); err != nil {
			return nil, fmt.Errorf("[devbackend Seed] %s: %w", a.Email, err)
		}
		created = append(created, u)
	}
	return created, nil
}

// SeedSamples fills the catalogue collections with a few documents.
func (s *Server) SeedSamples() {
	for _, name := range []string{"Football", "Tennis", "Swimming"} {
		s.items["sport-categories"].Insert(item{"name": name, "description": name + " programme"})
	}
	s.items["tournaments"].Insert(item{
		"name":          "Spring Open",
		"sportCategory": "Tennis",
		"organizer":     "Academy",
		"location":      "Main Courts",
	})
	s.items["notifications"].Insert(item{"title": "Welcome", "message": "Season starts Monday", "type": "system", "read": false})
}
