// Package likes handles the like response to a weekly recommendation
// and creates a match when the like turns out to be mutual.
package likes

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/shhmatch/backend/internal/app"
	"github.com/shhmatch/backend/internal/auth"
	"github.com/shhmatch/backend/internal/db"
	svcErr "github.com/shhmatch/backend/internal/errors"
	"github.com/shhmatch/backend/internal/repository"
	"github.com/shhmatch/backend/internal/service/views"
	"github.com/shhmatch/backend/internal/utils/week"
)

// Service implements the likes endpoint.
type Service struct {
	appCtx    *app.AppContext
	userRepo  *repository.UserRepository
	likeRepo  *repository.LikeRepository
	matchRepo *repository.MatchRepository
	recRepo   *repository.RecommendationRepository
	loc       *time.Location
}

func NewService(appCtx *app.AppContext) *Service {
	loc, err := time.LoadLocation(appCtx.Cfg.Batch.Timezone)
	if err != nil {
		loc = time.UTC
	}
	return &Service{
		appCtx:    appCtx,
		userRepo:  repository.NewUserRepository(appCtx.DB),
		likeRepo:  repository.NewLikeRepository(appCtx.DB),
		matchRepo: repository.NewMatchRepository(appCtx.DB),
		recRepo:   repository.NewRecommendationRepository(appCtx.DB),
		loc:       loc,
	}
}

type likeView struct {
	FromUser  string    `json:"fromUser"`
	ToUser    string    `json:"toUser"`
	BatchWeek string    `json:"batchWeek"`
	CreatedAt time.Time `json:"createdAt"`
}

func toLikeViews(rows []db.Like) []likeView {
	out := make([]likeView, 0, len(rows))
	for _, l := range rows {
		out = append(out, likeView{
			FromUser:  l.FromUser.String(),
			ToUser:    l.ToUser.String(),
			BatchWeek: l.BatchWeek,
			CreatedAt: l.CreatedAt,
		})
	}
	return out
}

// List returns the likes the caller sent and received, newest first.
func (s *Service) List(c *gin.Context) {
	ctx := c.Request.Context()
	userID := auth.UserID(c)

	sent, err := s.likeRepo.SentBy(ctx, userID)
	if err != nil {
		svcErr.Abort(c, err)
		return
	}
	received, err := s.likeRepo.ReceivedBy(ctx, userID)
	if err != nil {
		svcErr.Abort(c, err)
		return
	}
	c.JSON(200, gin.H{
		"sent":     toLikeViews(sent),
		"received": toLikeViews(received),
	})
}

type createLikeRequest struct {
	ToUserID  string `json:"toUserId" binding:"required"`
	BatchWeek string `json:"batchWeek"`
}

type createLikeResponse struct {
	OK      bool         `json:"ok"`
	Matched bool         `json:"matched"`
	Match   *views.Match `json:"match,omitempty"`
}

// Create records a like from the caller to another user. Re-liking the
// same user in the same week is a no-op. When the other side already
// liked back, a pending match is created (or reused if a concurrent
// request created it first).
func (s *Service) Create(c *gin.Context) {
	var req createLikeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		svcErr.Abort(c, svcErr.BadRequest("toUserId is required"))
		return
	}

	toUser, err := uuid.Parse(req.ToUserID)
	if err != nil {
		svcErr.Abort(c, svcErr.BadRequest("toUserId must be a user id"))
		return
	}
	fromUser := auth.UserID(c)
	if toUser == fromUser {
		svcErr.Abort(c, svcErr.BadRequest("cannot like yourself"))
		return
	}

	batchWeek := req.BatchWeek
	if batchWeek == "" {
		batchWeek = week.Current(s.loc)
	} else if !week.Valid(batchWeek) {
		svcErr.Abort(c, svcErr.BadRequest("batchWeek must look like 2025-W07"))
		return
	}

	ctx := c.Request.Context()
	target, err := s.userRepo.GetByID(ctx, toUser)
	if err != nil {
		if svcErr.IsNotFound(err) {
			svcErr.Abort(c, svcErr.NotFound("user not found"))
			return
		}
		svcErr.Abort(c, err)
		return
	}
	if target.Banned {
		svcErr.Abort(c, svcErr.BadRequest("user is not available"))
		return
	}

	if err := s.likeRepo.Create(ctx, fromUser, toUser, batchWeek); err != nil && !svcErr.IsDuplicateKey(err) {
		svcErr.Abort(c, err)
		return
	}

	// The like is this week's response to the recommendation, if there
	// was one, and it stales the cached list.
	if err := s.recRepo.MarkResponded(ctx, fromUser, toUser, batchWeek); err != nil {
		s.appCtx.Logger.Warn("failed to mark recommendation responded", "error", err)
	}
	if err := s.appCtx.RedisCache.InvalidateWeeklyRecs(ctx, fromUser.String(), batchWeek); err != nil {
		s.appCtx.Logger.Warn("failed to invalidate recommendation cache", "error", err)
	}

	resp := createLikeResponse{OK: true}

	mutual, err := s.likeRepo.IsMutual(ctx, fromUser, toUser, batchWeek)
	if err != nil {
		svcErr.Abort(c, err)
		return
	}
	if mutual {
		match, err := s.matchRepo.Create(ctx, fromUser, toUser)
		if err != nil {
			if !svcErr.IsDuplicateKey(err) {
				svcErr.Abort(c, err)
				return
			}
			if match, err = s.matchRepo.GetByUsers(ctx, fromUser, toUser); err != nil {
				svcErr.Abort(c, err)
				return
			}
		}
		s.appCtx.Logger.Info("mutual like, match created",
			"match_id", match.ID, "user_a", match.UserA, "user_b", match.UserB)
		resp.Matched = true
		mv := views.FromMatch(match)
		resp.Match = &mv
	}

	c.JSON(200, resp)
}
