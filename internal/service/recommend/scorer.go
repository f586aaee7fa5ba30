package recommend

import (
	"unicode/utf8"

	"github.com/shhmatch/backend/internal/db"
)

// Score computes the compatibility score for a (user, candidate) pair.
// Pure and deterministic; no I/O, no randomness. Additive point system:
//
//	age difference ≤2 → +3.0, ≤5 → +2.0, ≤10 → +1.0
//	same non-empty region → +2.0
//	candidate intro longer than 20 characters → +1.0
//	candidate has at least 2 photos → +1.0
//	base → +1.0
//
// Scores are unbounded above; the minimum non-zero score is 1.0.
// Returns 0.0 if either party lacks a profile, which upstream filtering
// should prevent.
func Score(user, candidate *db.User) float64 {
	if user.Profile == nil || candidate.Profile == nil {
		return 0.0
	}

	score := 0.0

	ageDiff := user.Profile.BirthYear - candidate.Profile.BirthYear
	if ageDiff < 0 {
		ageDiff = -ageDiff
	}
	switch {
	case ageDiff <= 2:
		score += 3.0
	case ageDiff <= 5:
		score += 2.0
	case ageDiff <= 10:
		score += 1.0
	}

	if user.Profile.Region != "" && user.Profile.Region == candidate.Profile.Region {
		score += 2.0
	}

	// Profile completeness bonuses. Intro length counts characters, not
	// bytes, so Korean text is measured fairly.
	if utf8.RuneCountInString(candidate.Profile.Intro) > 20 {
		score += 1.0
	}
	if len(candidate.Profile.Photos) >= 2 {
		score += 1.0
	}

	// Base score for any pair that reaches scoring.
	score += 1.0

	return score
}
