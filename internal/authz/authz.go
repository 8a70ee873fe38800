// Package authz decides which actor may read or mutate which resource.
// Roles are a closed enum; each role carries a fixed capability set and
// ownership rules are expressed as one function per operation.
package authz

import (
	"jobboard/internal/common"
	"jobboard/internal/domain/application"
	"jobboard/internal/domain/company"
	"jobboard/internal/domain/job"
	"jobboard/internal/domain/user"
)

type Actor struct {
	ID   common.UUID
	Role user.Role
}

func (a Actor) IsAdmin() bool {
	return a.Role == user.RoleAdmin
}

type Capability string

const (
	CapJobCreate         Capability = "job:create"
	CapApplicationSubmit Capability = "application:submit"
	CapApplicationReview Capability = "application:review"
	CapCompanyManage     Capability = "company:manage"
	CapUserManage        Capability = "user:manage"
	CapStatsAll          Capability = "stats:all"
)

var roleCapabilities = map[user.Role]map[Capability]struct{}{
	user.RoleCandidate: {
		CapApplicationSubmit: {},
	},
	user.RoleEmployer: {
		CapJobCreate:         {},
		CapApplicationReview: {},
		CapCompanyManage:     {},
	},
	user.RoleAdmin: {
		CapJobCreate:         {},
		CapApplicationReview: {},
		CapCompanyManage:     {},
		CapUserManage:        {},
		CapStatsAll:          {},
	},
}

func Has(role user.Role, capability Capability) bool {
	caps, ok := roleCapabilities[role]
	if !ok {
		return false
	}
	_, ok = caps[capability]
	return ok
}

func Require(actor Actor, capability Capability) error {
	if !Has(actor.Role, capability) {
		return forbidden("insufficient role")
	}
	return nil
}

func CanWriteJob(actor Actor, j job.Job) error {
	if actor.IsAdmin() {
		return nil
	}
	if !Has(actor.Role, CapJobCreate) || j.PostedBy != actor.ID {
		return forbidden("job belongs to another employer")
	}
	return nil
}

// CanReadApplication allows the applicant, the employer who posted the job
// and admins.
func CanReadApplication(actor Actor, app application.Application, j job.Job) error {
	if actor.IsAdmin() || app.ApplicantID == actor.ID || j.PostedBy == actor.ID {
		return nil
	}
	return forbidden("not allowed to access this application")
}

func CanWithdrawApplication(actor Actor, app application.Application) error {
	if app.ApplicantID != actor.ID {
		return forbidden("only the applicant can withdraw an application")
	}
	return nil
}

// CanReviewApplications gates status changes, interviews and per-job
// listings.
func CanReviewApplications(actor Actor, j job.Job) error {
	if actor.IsAdmin() {
		return nil
	}
	if !Has(actor.Role, CapApplicationReview) || j.PostedBy != actor.ID {
		return forbidden("not allowed to manage applications for this job")
	}
	return nil
}

func CanWriteCompany(actor Actor, c company.Company) error {
	if actor.IsAdmin() {
		return nil
	}
	if !Has(actor.Role, CapCompanyManage) || c.EmployerID != actor.ID {
		return forbidden("company belongs to another employer")
	}
	return nil
}

func CanAccessUser(actor Actor, userID common.UUID) error {
	if actor.IsAdmin() || actor.ID == userID {
		return nil
	}
	return forbidden("not allowed to access this user")
}

func forbidden(message string) error {
	return common.NewError(common.CodeForbidden, message, nil)
}
