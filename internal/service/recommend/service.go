package recommend

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/shhmatch/backend/internal/app"
	"github.com/shhmatch/backend/internal/cache"
	"github.com/shhmatch/backend/internal/db"
	svcErr "github.com/shhmatch/backend/internal/errors"
	"github.com/shhmatch/backend/internal/repository"
)

const (
	// DefaultMaxPerUser caps recommendations created per user per week.
	DefaultMaxPerUser = 10
	// ExposureWindowWeeks is how far back the ledger suppresses repeats.
	ExposureWindowWeeks = 12
	// ReasonWeeklyRec tags exposure facts written by the weekly batch.
	ReasonWeeklyRec = "weekly_rec"
)

// CandidateSource supplies the batch population and per-user candidate
// selection. Satisfied by repository.UserRepository.
type CandidateSource interface {
	EligibleUsers(ctx context.Context) ([]db.User, error)
	FindCandidates(ctx context.Context, user *db.User, now time.Time) ([]db.User, error)
}

// RecommendationStore persists recommendations and exposure facts.
// Satisfied by repository.RecommendationRepository.
type RecommendationStore interface {
	Create(ctx context.Context, userID, targetID uuid.UUID, batchWeek string, score float64, sentAt time.Time) error
	RecordExposure(ctx context.Context, userID, targetID uuid.UUID, reason string) error
	RecentTargets(ctx context.Context, userID uuid.UUID, windowWeeks int, now time.Time) (map[uuid.UUID]struct{}, error)
}

// UserError is one per-user failure surfaced in the run summary.
type UserError struct {
	UserID string `json:"user_id,omitempty"`
	Error  string `json:"error"`
}

// Summary aggregates one batch run. Consumed by the admin audit log.
type Summary struct {
	Week                   string      `json:"week"`
	UsersProcessed         int         `json:"users_processed"`
	RecommendationsCreated int         `json:"recommendations_created"`
	Errors                 []UserError `json:"errors"`
}

// Service is the weekly recommendation engine: candidate selection,
// exposure suppression, scoring, ranking and persistence.
type Service struct {
	users  CandidateSource
	store  RecommendationStore
	cache  *cache.RedisCache
	logger *slog.Logger
	now    func() time.Time
}

// NewService wires the engine from shared app dependencies.
func NewService(appCtx *app.AppContext) *Service {
	return &Service{
		users:  repository.NewUserRepository(appCtx.DB),
		store:  repository.NewRecommendationRepository(appCtx.DB),
		cache:  appCtx.RedisCache,
		logger: appCtx.Logger,
		now:    time.Now,
	}
}

// NewServiceWith wires the engine from explicit collaborators. The
// injected clock keeps age math and the exposure window deterministic.
func NewServiceWith(users CandidateSource, store RecommendationStore, logger *slog.Logger, now func() time.Time) *Service {
	if now == nil {
		now = time.Now
	}
	return &Service{users: users, store: store, logger: logger, now: now}
}

type scoredCandidate struct {
	user  *db.User
	score float64
}

// BuildForUser selects, scores and persists up to maxCount
// recommendations for one user, and records an exposure fact for each.
// Candidates shown within the exposure window are excluded. Duplicate
// inserts for (user, target, week) are skipped silently; any other
// per-candidate persistence failure is logged and does not abort the
// remaining candidates. Returns the number actually created.
func (s *Service) BuildForUser(ctx context.Context, user *db.User, batchWeek string, maxCount int) (int, error) {
	if maxCount <= 0 {
		maxCount = DefaultMaxPerUser
	}
	now := s.now()

	recent, err := s.store.RecentTargets(ctx, user.ID, ExposureWindowWeeks, now)
	if err != nil {
		return 0, fmt.Errorf("recent targets: %w", err)
	}

	candidates, err := s.users.FindCandidates(ctx, user, now)
	if err != nil {
		return 0, fmt.Errorf("find candidates: %w", err)
	}

	fresh := make([]db.User, 0, len(candidates))
	for _, c := range candidates {
		if _, seen := recent[c.ID]; !seen {
			fresh = append(fresh, c)
		}
	}
	if len(fresh) == 0 {
		s.logger.Debug("no new candidates", "user_id", user.ID, "week", batchWeek)
		return 0, nil
	}

	scored := make([]scoredCandidate, 0, len(fresh))
	for i := range fresh {
		scored = append(scored, scoredCandidate{
			user:  &fresh[i],
			score: Score(user, &fresh[i]),
		})
	}

	// Score descending; equal scores break on candidate id ascending so
	// reruns over the same data rank identically.
	sort.Slice(scored, func(i, j int) bool {
		if scored[i].score != scored[j].score {
			return scored[i].score > scored[j].score
		}
		return strings.Compare(scored[i].user.ID.String(), scored[j].user.ID.String()) < 0
	})
	if len(scored) > maxCount {
		scored = scored[:maxCount]
	}

	created := 0
	for _, sc := range scored {
		if err := s.store.Create(ctx, user.ID, sc.user.ID, batchWeek, sc.score, now); err != nil {
			if svcErr.IsDuplicateKey(err) {
				// Already recommended this week; not an error, not counted.
				continue
			}
			s.logger.Error("failed to create recommendation",
				"user_id", user.ID, "target_id", sc.user.ID, "week", batchWeek, "err", err)
			continue
		}
		if err := s.store.RecordExposure(ctx, user.ID, sc.user.ID, ReasonWeeklyRec); err != nil {
			s.logger.Error("failed to record exposure",
				"user_id", user.ID, "target_id", sc.user.ID, "err", err)
		}
		created++
	}

	s.logger.Info("built recommendations", "user_id", user.ID, "week", batchWeek, "created", created)
	return created, nil
}

// Run executes one batch over the whole eligible population. Per-user
// failures are isolated into the summary's Errors; a population-query
// failure terminates the run with a single general error. Run never
// returns an error to the caller.
func (s *Service) Run(ctx context.Context, batchWeek string) Summary {
	summary := Summary{Week: batchWeek, Errors: []UserError{}}

	users, err := s.users.EligibleUsers(ctx)
	if err != nil {
		s.logger.Error("failed to load batch population", "week", batchWeek, "err", err)
		summary.Errors = append(summary.Errors, UserError{Error: err.Error()})
		return summary
	}

	s.logger.Info("building weekly recommendations", "week", batchWeek, "users", len(users))

	for i := range users {
		// Per-user deadline check; completed users' writes are already
		// committed.
		if err := ctx.Err(); err != nil {
			summary.Errors = append(summary.Errors, UserError{Error: err.Error()})
			break
		}

		user := &users[i]
		created, err := s.buildOne(ctx, user, batchWeek)
		if err != nil {
			s.logger.Error("failed to build recommendations for user",
				"user_id", user.ID, "week", batchWeek, "err", err)
			summary.Errors = append(summary.Errors, UserError{
				UserID: user.ID.String(),
				Error:  err.Error(),
			})
			continue
		}
		summary.UsersProcessed++
		summary.RecommendationsCreated += created
	}

	s.logger.Info("completed recommendation generation",
		"week", batchWeek,
		"users_processed", summary.UsersProcessed,
		"recommendations_created", summary.RecommendationsCreated,
		"errors_count", len(summary.Errors))

	s.cacheSummary(ctx, summary)
	return summary
}

// buildOne isolates one user's build, converting panics into errors so
// a bad user never aborts the whole run.
func (s *Service) buildOne(ctx context.Context, user *db.User, batchWeek string) (created int, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return s.BuildForUser(ctx, user, batchWeek, DefaultMaxPerUser)
}

// cacheSummary stores the latest run summary for the admin panel; best
// effort, the audit log keeps the durable copy.
func (s *Service) cacheSummary(ctx context.Context, summary Summary) {
	if s.cache == nil {
		return
	}
	payload, err := json.Marshal(summary)
	if err != nil {
		return
	}
	if err := s.cache.SetLastRunSummary(ctx, string(payload)); err != nil {
		s.logger.Warn("failed to cache run summary", "err", err)
	}
}
