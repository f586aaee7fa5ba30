// Package admin is the operator panel: user moderation, match and
// payment management, and manual control of the weekly batch. Every
// mutation is recorded in the audit trail.
package admin

import (
	"encoding/json"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/shhmatch/backend/internal/app"
	"github.com/shhmatch/backend/internal/auth"
	"github.com/shhmatch/backend/internal/db"
	svcErr "github.com/shhmatch/backend/internal/errors"
	"github.com/shhmatch/backend/internal/repository"
	"github.com/shhmatch/backend/internal/service/recommend"
	"github.com/shhmatch/backend/internal/service/views"
	"github.com/shhmatch/backend/internal/utils/week"
)

const defaultPageSize = 20

// Service implements the admin endpoints.
type Service struct {
	appCtx      *app.AppContext
	userRepo    *repository.UserRepository
	matchRepo   *repository.MatchRepository
	paymentRepo *repository.PaymentRepository
	adminRepo   *repository.AdminRepository
	recs        *recommend.Service
	loc         *time.Location
}

func NewService(appCtx *app.AppContext) *Service {
	loc, err := time.LoadLocation(appCtx.Cfg.Batch.Timezone)
	if err != nil {
		loc = time.UTC
	}
	return &Service{
		appCtx:      appCtx,
		userRepo:    repository.NewUserRepository(appCtx.DB),
		matchRepo:   repository.NewMatchRepository(appCtx.DB),
		paymentRepo: repository.NewPaymentRepository(appCtx.DB),
		adminRepo:   repository.NewAdminRepository(appCtx.DB),
		recs:        recommend.NewService(appCtx),
		loc:         loc,
	}
}

type adminUser struct {
	views.User
	Profile *views.Profile `json:"profile,omitempty"`
}

// ListUsers returns a cursor-paginated page of users, optionally
// filtered by nickname substring.
func (s *Service) ListUsers(c *gin.Context) {
	var token *string
	if raw := c.Query("cursor"); raw != "" {
		token = &raw
	}
	limit := intQuery(c, "limit", defaultPageSize)

	users, nextToken, err := s.userRepo.ListForAdmin(c.Request.Context(), c.Query("query"), token, limit)
	if err != nil {
		svcErr.Abort(c, err)
		return
	}

	out := make([]adminUser, 0, len(users))
	for _, u := range users {
		item := adminUser{User: views.FromUser(&u)}
		if u.Profile != nil {
			p := views.FromProfile(u.Profile)
			item.Profile = &p
		}
		out = append(out, item)
	}

	resp := gin.H{"users": out}
	if nextToken != nil {
		resp["nextCursor"] = *nextToken
	}
	c.JSON(200, resp)
}

// BanUser bans the user and records the action.
func (s *Service) BanUser(c *gin.Context) { s.setBanned(c, true, "user.ban") }

// UnbanUser lifts a ban and records the action.
func (s *Service) UnbanUser(c *gin.Context) { s.setBanned(c, false, "user.unban") }

func (s *Service) setBanned(c *gin.Context, banned bool, action string) {
	userID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		svcErr.Abort(c, svcErr.BadRequest("invalid user id"))
		return
	}

	ctx := c.Request.Context()
	if err := s.userRepo.SetBanned(ctx, userID, banned); err != nil {
		svcErr.Abort(c, err)
		return
	}
	s.audit(c, action, userID.String(), nil)
	c.JSON(200, gin.H{"ok": true})
}

// ListMatches returns matches with an optional status filter,
// offset-paginated.
func (s *Service) ListMatches(c *gin.Context) {
	status := c.Query("status")
	switch status {
	case "", db.MatchPending, db.MatchActive, db.MatchClosed:
	default:
		svcErr.Abort(c, svcErr.BadRequest("unknown match status"))
		return
	}

	page := intQuery(c, "page", 0)
	limit := intQuery(c, "limit", defaultPageSize)
	rows, err := s.matchRepo.ListForAdmin(c.Request.Context(), status, page, limit)
	if err != nil {
		svcErr.Abort(c, err)
		return
	}

	type adminMatch struct {
		views.Match
		Payment *views.Payment `json:"payment,omitempty"`
	}
	out := make([]adminMatch, 0, len(rows))
	for _, m := range rows {
		item := adminMatch{Match: views.FromMatch(&m)}
		if m.Payment != nil {
			p := views.FromPayment(m.Payment)
			item.Payment = &p
		}
		out = append(out, item)
	}
	c.JSON(200, gin.H{"matches": out, "page": page})
}

// ActivateMatch moves a match to active, normally after its payment
// was verified.
func (s *Service) ActivateMatch(c *gin.Context) {
	matchID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		svcErr.Abort(c, svcErr.BadRequest("invalid match id"))
		return
	}

	ctx := c.Request.Context()
	match, err := s.matchRepo.UpdateStatus(ctx, matchID, db.MatchActive)
	if err != nil {
		svcErr.Abort(c, err)
		return
	}
	s.audit(c, "match.activate", matchID.String(), nil)
	c.JSON(200, views.FromMatch(match))
}

// ListPayments returns payments filtered by verification state,
// offset-paginated. status is "verified", "pending", or empty for all.
func (s *Service) ListPayments(c *gin.Context) {
	status := c.Query("status")
	switch status {
	case "", "verified", "pending":
	default:
		svcErr.Abort(c, svcErr.BadRequest("status must be verified or pending"))
		return
	}

	page := intQuery(c, "page", 0)
	limit := intQuery(c, "limit", defaultPageSize)
	rows, err := s.paymentRepo.ListForAdmin(c.Request.Context(), status, page, limit)
	if err != nil {
		svcErr.Abort(c, err)
		return
	}

	out := make([]views.Payment, 0, len(rows))
	for _, p := range rows {
		out = append(out, views.FromPayment(&p))
	}
	c.JSON(200, gin.H{"payments": out, "page": page})
}

type verifyPaymentRequest struct {
	DepositorName string `json:"depositorName" binding:"required"`
	Memo          string `json:"memo"`
}

// VerifyPayment marks a transfer as manually confirmed.
func (s *Service) VerifyPayment(c *gin.Context) {
	paymentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		svcErr.Abort(c, svcErr.BadRequest("invalid payment id"))
		return
	}
	var req verifyPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		svcErr.Abort(c, svcErr.BadRequest("depositorName is required"))
		return
	}

	ctx := c.Request.Context()
	payment, err := s.paymentRepo.Verify(ctx, paymentID, req.DepositorName, req.Memo)
	if err != nil {
		svcErr.Abort(c, err)
		return
	}
	s.audit(c, "payment.verify", paymentID.String(), map[string]any{
		"depositorName": req.DepositorName,
	})
	c.JSON(200, views.FromPayment(payment))
}

type runRecsRequest struct {
	Week string `json:"week"`
}

// RunRecs triggers the weekly recommendation batch out of schedule.
// The body may pin a batch week; the current week is used otherwise.
func (s *Service) RunRecs(c *gin.Context) {
	var req runRecsRequest
	_ = c.ShouldBindJSON(&req)

	batchWeek := req.Week
	if batchWeek == "" {
		batchWeek = week.Current(s.loc)
	} else if !week.Valid(batchWeek) {
		svcErr.Abort(c, svcErr.BadRequest("week must look like 2025-W07"))
		return
	}

	summary := s.recs.Run(c.Request.Context(), batchWeek)
	s.audit(c, "recs.run", batchWeek, map[string]any{
		"usersProcessed":         summary.UsersProcessed,
		"recommendationsCreated": summary.RecommendationsCreated,
		"errors":                 len(summary.Errors),
	})
	c.JSON(200, summary)
}

// LastRecsRun returns the cached summary of the most recent batch run.
func (s *Service) LastRecsRun(c *gin.Context) {
	raw, err := s.appCtx.RedisCache.GetLastRunSummary(c.Request.Context())
	if err != nil {
		svcErr.Abort(c, err)
		return
	}
	if raw == "" {
		svcErr.Abort(c, svcErr.NotFound("no batch has run yet"))
		return
	}

	var summary recommend.Summary
	if err := json.Unmarshal([]byte(raw), &summary); err != nil {
		svcErr.Abort(c, err)
		return
	}
	c.JSON(200, summary)
}

func (s *Service) audit(c *gin.Context, action, targetID string, detail map[string]any) {
	if err := s.adminRepo.RecordAction(c.Request.Context(), auth.UserID(c), action, targetID, detail); err != nil {
		s.appCtx.Logger.Warn("failed to record admin action", "action", action, "error", err)
	}
}

func intQuery(c *gin.Context, name string, fallback int) int {
	raw := c.Query(name)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return fallback
	}
	return n
}
