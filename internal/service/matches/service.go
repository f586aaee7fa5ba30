// Package matches serves a user's matches and the match detail view.
package matches

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/shhmatch/backend/internal/app"
	"github.com/shhmatch/backend/internal/auth"
	svcErr "github.com/shhmatch/backend/internal/errors"
	"github.com/shhmatch/backend/internal/repository"
	"github.com/shhmatch/backend/internal/service/views"
)

// Service implements the match endpoints.
type Service struct {
	appCtx    *app.AppContext
	matchRepo *repository.MatchRepository
	userRepo  *repository.UserRepository
}

func NewService(appCtx *app.AppContext) *Service {
	return &Service{
		appCtx:    appCtx,
		matchRepo: repository.NewMatchRepository(appCtx.DB),
		userRepo:  repository.NewUserRepository(appCtx.DB),
	}
}

// List returns the caller's matches, newest first.
func (s *Service) List(c *gin.Context) {
	rows, err := s.matchRepo.ListForUser(c.Request.Context(), auth.UserID(c))
	if err != nil {
		svcErr.Abort(c, err)
		return
	}

	out := make([]views.Match, 0, len(rows))
	for _, m := range rows {
		out = append(out, views.FromMatch(&m))
	}
	c.JSON(200, gin.H{"matches": out})
}

// Get returns one match with the counterpart's visibility-filtered
// profile and the payment attached to it, if any. Only participants
// may look.
func (s *Service) Get(c *gin.Context) {
	matchID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		svcErr.Abort(c, svcErr.BadRequest("invalid match id"))
		return
	}

	ctx := c.Request.Context()
	match, err := s.matchRepo.GetByID(ctx, matchID)
	if err != nil {
		svcErr.Abort(c, err)
		return
	}

	userID := auth.UserID(c)
	if !repository.Involves(match, userID) {
		svcErr.Abort(c, svcErr.Forbidden("not your match"))
		return
	}

	resp := gin.H{"match": views.FromMatch(match)}

	other := repository.OtherUser(match, userID)
	profiles, err := s.userRepo.GetProfiles(ctx, []uuid.UUID{other})
	if err != nil {
		svcErr.Abort(c, err)
		return
	}
	if p, ok := profiles[other]; ok {
		resp["otherProfile"] = views.RedactedProfile(p)
	}
	if match.Payment != nil {
		resp["payment"] = views.FromPayment(match.Payment)
	}

	c.JSON(200, resp)
}
