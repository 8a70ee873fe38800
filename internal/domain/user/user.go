package user

import (
	"strings"
	"time"

	"jobboard/internal/common"
)

type Role string

const (
	RoleCandidate Role = "candidate"
	RoleEmployer  Role = "employer"
	RoleAdmin     Role = "admin"
)

// ParseRole normalizes value and reports whether it names a known role.
func ParseRole(value string) (Role, bool) {
	role := Role(strings.ToLower(strings.TrimSpace(value)))
	switch role {
	case RoleCandidate, RoleEmployer, RoleAdmin:
		return role, true
	default:
		return "", false
	}
}

type Profile struct {
	FirstName         string   `json:"firstName"`
	LastName          string   `json:"lastName"`
	Phone             string   `json:"phone,omitempty"`
	Headline          string   `json:"headline,omitempty"`
	Bio               string   `json:"bio,omitempty"`
	Location          string   `json:"location,omitempty"`
	Website           string   `json:"website,omitempty"`
	Skills            []string `json:"skills,omitempty"`
	YearsOfExperience int      `json:"yearsOfExperience,omitempty"`
}

type User struct {
	ID            common.UUID   `json:"id"`
	Email         string        `json:"email"`
	PasswordHash  string        `json:"-"`
	Role          Role          `json:"role"`
	IsActive      bool          `json:"isActive"`
	EmailVerified bool          `json:"emailVerified"`
	Profile       Profile       `json:"profile"`
	SavedJobs     []common.UUID `json:"savedJobs"`
	LastLoginAt   *time.Time    `json:"lastLoginAt,omitempty"`
	CreatedAt     time.Time     `json:"createdAt"`
	UpdatedAt     time.Time     `json:"updatedAt"`
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
