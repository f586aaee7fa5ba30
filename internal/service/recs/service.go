// Package recs serves a user's weekly recommendation list.
package recs

import (
	"encoding/json"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/shhmatch/backend/internal/app"
	"github.com/shhmatch/backend/internal/auth"
	svcErr "github.com/shhmatch/backend/internal/errors"
	"github.com/shhmatch/backend/internal/repository"
	"github.com/shhmatch/backend/internal/service/views"
	"github.com/shhmatch/backend/internal/utils/week"
)

// Service implements the recommendation read endpoint. Lists are
// cached in Redis per (user, week) and invalidated when the user
// responds with a like.
type Service struct {
	appCtx   *app.AppContext
	recRepo  *repository.RecommendationRepository
	userRepo *repository.UserRepository
	loc      *time.Location
}

func NewService(appCtx *app.AppContext) *Service {
	loc, err := time.LoadLocation(appCtx.Cfg.Batch.Timezone)
	if err != nil {
		loc = time.UTC
	}
	return &Service{
		appCtx:   appCtx,
		recRepo:  repository.NewRecommendationRepository(appCtx.DB),
		userRepo: repository.NewUserRepository(appCtx.DB),
		loc:      loc,
	}
}

type listResponse struct {
	Week            string                 `json:"week"`
	Recommendations []views.Recommendation `json:"recommendations"`
}

// List returns the caller's recommendations for the requested batch
// week (current week when the query param is absent), each with the
// target's visibility-filtered profile.
func (s *Service) List(c *gin.Context) {
	batchWeek := c.Query("week")
	if batchWeek == "" {
		batchWeek = week.Current(s.loc)
	} else if !week.Valid(batchWeek) {
		svcErr.Abort(c, svcErr.BadRequest("week must look like 2025-W07"))
		return
	}

	ctx := c.Request.Context()
	userID := auth.UserID(c)

	if cached, err := s.appCtx.RedisCache.GetWeeklyRecs(ctx, userID.String(), batchWeek); err == nil && cached != "" {
		c.Data(200, "application/json; charset=utf-8", []byte(cached))
		return
	}

	recRows, err := s.recRepo.ListForWeek(ctx, userID, batchWeek)
	if err != nil {
		svcErr.Abort(c, err)
		return
	}

	targetIDs := make([]uuid.UUID, 0, len(recRows))
	for _, rec := range recRows {
		targetIDs = append(targetIDs, rec.TargetUserID)
	}
	profiles, err := s.userRepo.GetProfiles(ctx, targetIDs)
	if err != nil {
		svcErr.Abort(c, err)
		return
	}

	resp := listResponse{
		Week:            batchWeek,
		Recommendations: make([]views.Recommendation, 0, len(recRows)),
	}
	for _, rec := range recRows {
		resp.Recommendations = append(resp.Recommendations,
			views.FromRecommendation(&rec, profiles[rec.TargetUserID]))
	}

	if payload, err := json.Marshal(resp); err == nil {
		if err := s.appCtx.RedisCache.SetWeeklyRecs(ctx, userID.String(), batchWeek, string(payload)); err != nil {
			s.appCtx.Logger.Warn("failed to cache recommendations", "error", err)
		}
	}
	c.JSON(200, resp)
}
