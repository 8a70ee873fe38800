package app

import (
	"math"
	"strings"

	"jobboard/internal/domain/job"
)

const (
	pointsPerSkill       = 10
	pointsForExperience  = 20
	pointsNearExperience = 10
)

// CompatibilityScore rates how well an applicant's skills and years of
// experience cover a job, from 0 to 100. It is advisory and never gates a
// submission.
func CompatibilityScore(j job.Job, skills []string, years int) int {
	possible, earned := 0, 0

	have := make(map[string]struct{}, len(skills))
	for _, s := range skills {
		have[strings.ToLower(strings.TrimSpace(s))] = struct{}{}
	}
	for _, required := range j.Skills {
		possible += pointsPerSkill
		if _, ok := have[strings.ToLower(strings.TrimSpace(required))]; ok {
			earned += pointsPerSkill
		}
	}

	if want, ok := j.ExperienceLevel.RequiredYears(); ok {
		possible += pointsForExperience
		switch {
		case years >= want:
			earned += pointsForExperience
		case float64(years) >= 0.7*float64(want):
			earned += pointsNearExperience
		}
	}

	if possible == 0 {
		return 0
	}
	return int(math.Round(float64(earned) / float64(possible) * 100))
}
