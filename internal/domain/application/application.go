package application

import (
	"strings"
	"time"

	"jobboard/internal/common"
	"jobboard/internal/domain/user"
)

type Status string

const (
	StatusPending     Status = "pending"
	StatusReviewing   Status = "reviewing"
	StatusShortlisted Status = "shortlisted"
	StatusInterviewed Status = "interviewed"
	StatusOffered     Status = "offered"
	StatusRejected    Status = "rejected"
	StatusWithdrawn   Status = "withdrawn"
)

var statuses = []Status{
	StatusPending,
	StatusReviewing,
	StatusShortlisted,
	StatusInterviewed,
	StatusOffered,
	StatusRejected,
	StatusWithdrawn,
}

func Statuses() []Status {
	return append([]Status(nil), statuses...)
}

func ParseStatus(value string) (Status, bool) {
	normalized := Status(strings.ToLower(strings.TrimSpace(value)))
	for _, status := range statuses {
		if status == normalized {
			return status, true
		}
	}
	return "", false
}

// IsTerminal reports whether no further employer transition is expected.
func (s Status) IsTerminal() bool {
	return s == StatusOffered || s == StatusRejected || s == StatusWithdrawn
}

type PersonalInfo struct {
	FirstName string `json:"firstName" validate:"required"`
	LastName  string `json:"lastName" validate:"required"`
	Email     string `json:"email" validate:"required,email"`
	Phone     string `json:"phone" validate:"required"`
	Location  string `json:"location,omitempty"`
	LinkedIn  string `json:"linkedIn,omitempty"`
	Website   string `json:"website,omitempty"`
}

// Normalize trims every field in place.
func (p *PersonalInfo) Normalize() {
	p.FirstName = strings.TrimSpace(p.FirstName)
	p.LastName = strings.TrimSpace(p.LastName)
	p.Email = strings.ToLower(strings.TrimSpace(p.Email))
	p.Phone = strings.TrimSpace(p.Phone)
	p.Location = strings.TrimSpace(p.Location)
	p.LinkedIn = strings.TrimSpace(p.LinkedIn)
	p.Website = strings.TrimSpace(p.Website)
}

type FileDescriptor struct {
	Filename     string `json:"filename"`
	OriginalName string `json:"originalName"`
	MimeType     string `json:"mimeType"`
	Size         int64  `json:"size"`
	URL          string `json:"url"`
}

type ExpectedSalary struct {
	Amount   float64 `json:"amount,omitempty"`
	Currency string  `json:"currency,omitempty"`
	Period   string  `json:"period,omitempty"`
}

type Availability struct {
	StartDate    *time.Time `json:"startDate,omitempty"`
	NoticePeriod string     `json:"noticePeriod,omitempty"`
}

type Experience struct {
	Years          int    `json:"years"`
	CurrentTitle   string `json:"currentTitle,omitempty"`
	CurrentCompany string `json:"currentCompany,omitempty"`
	Summary        string `json:"summary,omitempty"`
}

type Education struct {
	Institution    string `json:"institution"`
	Degree         string `json:"degree,omitempty"`
	Field          string `json:"field,omitempty"`
	GraduationYear int    `json:"graduationYear,omitempty"`
}

type Language struct {
	Name        string `json:"name"`
	Proficiency string `json:"proficiency,omitempty"`
}

type Answer struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

type TimelineEntry struct {
	Status    Status      `json:"status"`
	Date      time.Time   `json:"date"`
	Notes     string      `json:"notes,omitempty"`
	UpdatedBy common.UUID `json:"updatedBy,omitempty"`
}

type Note struct {
	Author     common.UUID `json:"author"`
	AuthorRole user.Role   `json:"authorRole"`
	Body       string      `json:"body"`
	CreatedAt  time.Time   `json:"createdAt"`
}

type Interview struct {
	ScheduledAt time.Time   `json:"scheduledAt"`
	Type        string      `json:"type"`
	Location    string      `json:"location,omitempty"`
	Notes       string      `json:"notes,omitempty"`
	CreatedBy   common.UUID `json:"createdBy"`
	CreatedAt   time.Time   `json:"createdAt"`
}

type Application struct {
	ID                  common.UUID      `json:"id"`
	ApplicantID         common.UUID      `json:"applicant"`
	JobID               common.UUID      `json:"job"`
	Status              Status           `json:"status"`
	PersonalInfo        PersonalInfo     `json:"personalInfo"`
	CoverLetter         string           `json:"coverLetter,omitempty"`
	ExpectedSalary      *ExpectedSalary  `json:"expectedSalary,omitempty"`
	Availability        *Availability    `json:"availability,omitempty"`
	Experience          *Experience      `json:"experience,omitempty"`
	Skills              []string         `json:"skills"`
	Education           []Education      `json:"education"`
	Languages           []Language       `json:"languages"`
	Answers             []Answer         `json:"answers"`
	Resume              *FileDescriptor  `json:"resume"`
	Portfolio           *FileDescriptor  `json:"portfolio,omitempty"`
	AdditionalDocuments []FileDescriptor `json:"additionalDocuments"`
	Timeline            []TimelineEntry  `json:"timeline"`
	Notes               []Note           `json:"notes"`
	Interviews          []Interview      `json:"interviews"`
	CompatibilityScore  int              `json:"compatibilityScore"`
	CreatedAt           time.Time        `json:"createdAt"`
	UpdatedAt           time.Time        `json:"updatedAt"`
}

// Filter scopes listing queries. EmployerID restricts to applications whose
// job was posted by that user.
type Filter struct {
	ApplicantID *common.UUID
	EmployerID  *common.UUID
	JobID       *common.UUID
	Status      Status
}
