// Package memory holds mutex-guarded implementations of every repository.
// It backs development runs without DATABASE_URL and the package tests, and
// mirrors the uniqueness rules the Postgres schema enforces.
package memory

import (
	"slices"
	"sort"
	"sync"
	"time"

	"jobboard/internal/common"
	"jobboard/internal/domain/application"
	"jobboard/internal/domain/auth"
	"jobboard/internal/domain/company"
	"jobboard/internal/domain/job"
	"jobboard/internal/domain/user"
)

type Store struct {
	mu            sync.RWMutex
	users         map[common.UUID]user.User
	emails        map[string]common.UUID
	jobs          map[common.UUID]job.Job
	applications  map[common.UUID]application.Application
	companies     map[common.UUID]company.Company
	refreshTokens map[string]auth.RefreshToken
	resetTokens   map[string]auth.ResetToken
	now           func() time.Time
}

func NewStore() *Store {
	return &Store{
		users:         make(map[common.UUID]user.User),
		emails:        make(map[string]common.UUID),
		jobs:          make(map[common.UUID]job.Job),
		applications:  make(map[common.UUID]application.Application),
		companies:     make(map[common.UUID]company.Company),
		refreshTokens: make(map[string]auth.RefreshToken),
		resetTokens:   make(map[string]auth.ResetToken),
		now:           time.Now,
	}
}

func (s *Store) timestamp() time.Time {
	return s.now().UTC()
}

func notFound(entity string) error {
	return common.NewError(common.CodeNotFound, entity+" not found", nil)
}

func paginate[T any](items []T, page common.Page) []T {
	offset := page.Offset()
	if offset < 0 || offset >= len(items) {
		return []T{}
	}
	end := offset + page.Limit
	if end > len(items) {
		end = len(items)
	}
	return slices.Clone(items[offset:end])
}

// newestFirst orders by creation time descending with id as a tiebreaker so
// pagination is stable.
func newestFirst[T any](items []T, created func(T) time.Time, id func(T) common.UUID) {
	sort.SliceStable(items, func(i, j int) bool {
		ci, cj := created(items[i]), created(items[j])
		if !ci.Equal(cj) {
			return ci.After(cj)
		}
		return id(items[i]) > id(items[j])
	})
}
