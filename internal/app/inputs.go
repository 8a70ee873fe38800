package app

import (
	"time"

	"jobboard/internal/domain/application"
	"jobboard/internal/domain/job"
)

type RegisterInput struct {
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=8,max=72"`
	Role      string `json:"role" validate:"omitempty,oneof=candidate employer"`
	FirstName string `json:"firstName" validate:"required,max=100"`
	LastName  string `json:"lastName" validate:"required,max=100"`
	Phone     string `json:"phone" validate:"max=40"`
}

type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type ForgotPasswordInput struct {
	Email string `json:"email" validate:"required,email"`
}

type ResetPasswordInput struct {
	Token    string `json:"token" validate:"required"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

type ChangePasswordInput struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,min=8,max=72"`
}

type ProfileInput struct {
	FirstName         string   `json:"firstName" validate:"required,max=100"`
	LastName          string   `json:"lastName" validate:"required,max=100"`
	Phone             string   `json:"phone" validate:"max=40"`
	Headline          string   `json:"headline" validate:"max=200"`
	Bio               string   `json:"bio" validate:"max=2000"`
	Location          string   `json:"location" validate:"max=200"`
	Website           string   `json:"website" validate:"omitempty,url"`
	Skills            []string `json:"skills" validate:"max=50,dive,required,max=60"`
	YearsOfExperience int      `json:"yearsOfExperience" validate:"gte=0,lte=70"`
}

type JobInput struct {
	Company         string     `json:"company" validate:"omitempty,uuid"`
	Title           string     `json:"title" validate:"required,max=200"`
	Description     string     `json:"description" validate:"required,max=20000"`
	Location        string     `json:"location" validate:"max=200"`
	Type            job.Type   `json:"type" validate:"required,oneof=full-time part-time contract internship temporary"`
	Category        string     `json:"category" validate:"max=100"`
	ExperienceLevel string     `json:"experienceLevel" validate:"omitempty,oneof=entry mid senior executive"`
	Salary          job.Salary `json:"salary"`
	Remote          bool       `json:"remote"`
	Skills          []string   `json:"skills" validate:"max=50,dive,required,max=60"`
	Benefits        []string   `json:"benefits" validate:"max=50"`
	Requirements    []string   `json:"requirements" validate:"max=50"`
	Deadline        *time.Time `json:"deadline"`
	Status          string     `json:"status" validate:"omitempty,oneof=active paused closed draft"`
}

type JobQuery struct {
	Status          string
	Category        string
	Type            string
	ExperienceLevel string
	Location        string
	Remote          *bool
	Query           string
	Skills          []string
	Page            int
	Limit           int
}

type CompanyInput struct {
	Name        string `json:"name" validate:"required,max=200"`
	Description string `json:"description" validate:"max=5000"`
	Website     string `json:"website" validate:"omitempty,url"`
	Industry    string `json:"industry" validate:"max=100"`
	Size        string `json:"size" validate:"omitempty,oneof=1-10 11-50 51-200 201-500 501-1000 1000+"`
	Location    string `json:"location" validate:"max=200"`
	LogoURL     string `json:"logoUrl" validate:"omitempty,url"`
	Founded     int    `json:"founded" validate:"omitempty,gte=1800,lte=2100"`
}

// SubmitInput carries an application submission after the multipart body
// has been parsed and its files stored.
type SubmitInput struct {
	JobID               string
	PersonalInfo        application.PersonalInfo
	CoverLetter         string
	ExpectedSalary      *application.ExpectedSalary
	Availability        *application.Availability
	Experience          *application.Experience
	Skills              []string
	Education           []application.Education
	Languages           []application.Language
	Answers             []application.Answer
	Resume              *application.FileDescriptor
	Portfolio           *application.FileDescriptor
	AdditionalDocuments []application.FileDescriptor
	// InvalidFields holds form values that could not be decoded. They are
	// reported with the personal information check, after the job and
	// duplicate checks.
	InvalidFields map[string]string
}

type UpdateStatusInput struct {
	Status string `json:"status" validate:"required"`
	Notes  string `json:"notes" validate:"max=2000"`
}

type NoteInput struct {
	Body string `json:"body" validate:"required,max=2000"`
}

type InterviewInput struct {
	ScheduledAt time.Time `json:"scheduledAt" validate:"required"`
	Type        string    `json:"type" validate:"required,oneof=phone video onsite"`
	Location    string    `json:"location" validate:"max=200"`
	Notes       string    `json:"notes" validate:"max=2000"`
}

type ApplicationQuery struct {
	Status string
	JobID  string
	Page   int
	Limit  int
}
