package job

import (
	"strings"
	"time"

	"jobboard/internal/common"
)

type Status string

const (
	StatusActive Status = "active"
	StatusPaused Status = "paused"
	StatusClosed Status = "closed"
	StatusDraft  Status = "draft"
)

func ParseStatus(value string) (Status, bool) {
	status := Status(strings.ToLower(strings.TrimSpace(value)))
	switch status {
	case StatusActive, StatusPaused, StatusClosed, StatusDraft:
		return status, true
	default:
		return "", false
	}
}

type Type string

const (
	TypeFullTime   Type = "full-time"
	TypePartTime   Type = "part-time"
	TypeContract   Type = "contract"
	TypeInternship Type = "internship"
	TypeTemporary  Type = "temporary"
)

type ExperienceLevel string

const (
	LevelEntry     ExperienceLevel = "entry"
	LevelMid       ExperienceLevel = "mid"
	LevelSenior    ExperienceLevel = "senior"
	LevelExecutive ExperienceLevel = "executive"
)

// RequiredYears maps an experience level to the years of experience it
// implies. ok is false for unknown levels.
func (l ExperienceLevel) RequiredYears() (years int, ok bool) {
	switch l {
	case LevelEntry:
		return 0, true
	case LevelMid:
		return 3, true
	case LevelSenior:
		return 7, true
	case LevelExecutive:
		return 15, true
	default:
		return 0, false
	}
}

type Salary struct {
	Min      float64 `json:"min,omitempty"`
	Max      float64 `json:"max,omitempty"`
	Currency string  `json:"currency,omitempty"`
	Period   string  `json:"period,omitempty"`
}

type Job struct {
	ID              common.UUID     `json:"id"`
	PostedBy        common.UUID     `json:"postedBy"`
	CompanyID       *common.UUID    `json:"company,omitempty"`
	Title           string          `json:"title"`
	Description     string          `json:"description"`
	Location        string          `json:"location"`
	Type            Type            `json:"type"`
	Category        string          `json:"category"`
	ExperienceLevel ExperienceLevel `json:"experienceLevel"`
	Salary          Salary          `json:"salary"`
	Remote          bool            `json:"remote"`
	Skills          []string        `json:"skills"`
	Benefits        []string        `json:"benefits"`
	Requirements    []string        `json:"requirements"`
	Deadline        *time.Time      `json:"deadline,omitempty"`
	Status          Status          `json:"status"`
	Views           int             `json:"views"`
	Applications    []common.UUID   `json:"applications"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}

func (j Job) AcceptsApplications(now time.Time) bool {
	if j.Status != StatusActive {
		return false
	}
	return j.Deadline == nil || now.Before(*j.Deadline)
}

type Filter struct {
	PostedBy        *common.UUID
	CompanyID       *common.UUID
	Statuses        []Status
	Category        string
	Type            Type
	ExperienceLevel ExperienceLevel
	Location        string
	Remote          *bool
	Query           string
	Skills          []string
}
