package resources

import (
	"time"
)

type SportCategoryInput struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description,omitempty"`
	// SportImage is an inline data:image/...;base64 image, uploaded by the backend.
	SportImage string `json:"sportImage,omitempty" validate:"omitempty,datauri"`
}

type Address struct {
	Street  string `json:"street,omitempty"`
	City    string `json:"city,omitempty"`
	State   string `json:"state,omitempty"`
	Country string `json:"country,omitempty"`
}

type Location struct {
	Name    string  `json:"name" validate:"required"`
	Address Address `json:"address"`
}

type TournamentInput struct {
	Name                 string    `json:"name" validate:"required"`
	Description          string    `json:"description,omitempty"`
	SportCategory        string    `json:"sportCategory" validate:"required"`
	StartDate            time.Time `json:"startDate" validate:"required"`
	EndDate              time.Time `json:"endDate" validate:"required,gtefield=StartDate"`
	RegistrationDeadline time.Time `json:"registrationDeadline" validate:"required,ltefield=StartDate"`
	Location             Location  `json:"location"`
	MaxParticipants      int       `json:"maxParticipants,omitempty" validate:"gte=0"`
	FormURL              string    `json:"formUrl,omitempty" validate:"omitempty,url"`
	TournamentImage      string    `json:"tournamentImage,omitempty" validate:"omitempty,datauri"`
	Organizer            string    `json:"organizer" validate:"required"`
}

// Recipient groups of a system notification.
const (
	RecipientsAll      = "all"
	RecipientsStudents = "students"
	RecipientsCoaches  = "coaches"
	RecipientsSpecific = "specific"
)

type NotificationInput struct {
	Title         string     `json:"title" validate:"required"`
	Message       string     `json:"message" validate:"required"`
	RecipientType string     `json:"recipientType" validate:"required,oneof=all students coaches specific"`
	RecipientIDs  []string   `json:"recipientIds,omitempty" validate:"required_if=RecipientType specific,dive,required"`
	Priority      string     `json:"priority,omitempty" validate:"omitempty,oneof=low medium high"`
	ExpiresAt     *time.Time `json:"expiresAt,omitempty"`
}

type DietPlanAssignment struct {
	StudentIDs []string `json:"studentIds" validate:"min=1,dive,required"`
}

type CoachInput struct {
	Name             string   `json:"name" validate:"required"`
	Email            string   `json:"email" validate:"required,email"`
	Phone            string   `json:"phone,omitempty"`
	Password         string   `json:"password" validate:"required,min=6"`
	PasswordConfirm  string   `json:"passwordConfirm" validate:"eqfield=Password"`
	Bio              string   `json:"bio,omitempty"`
	Expertise        []string `json:"expertise,omitempty"`
	ExperienceYears  int      `json:"experienceYears" validate:"gte=0"`
	SportsCategories []string `json:"sportsCategories" validate:"min=1,dive,required"`
	Certifications   []string `json:"certifications,omitempty"`
}
