// Package payments issues bank-transfer payment intents for matches
// and serves payment status. Verification is manual and lives in the
// admin service.
package payments

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/shhmatch/backend/internal/app"
	"github.com/shhmatch/backend/internal/auth"
	svcErr "github.com/shhmatch/backend/internal/errors"
	"github.com/shhmatch/backend/internal/repository"
	"github.com/shhmatch/backend/internal/service/views"
)

// Service implements the payment endpoints.
type Service struct {
	appCtx      *app.AppContext
	matchRepo   *repository.MatchRepository
	paymentRepo *repository.PaymentRepository
}

func NewService(appCtx *app.AppContext) *Service {
	return &Service{
		appCtx:      appCtx,
		matchRepo:   repository.NewMatchRepository(appCtx.DB),
		paymentRepo: repository.NewPaymentRepository(appCtx.DB),
	}
}

type intentRequest struct {
	MatchID string `json:"matchId" binding:"required"`
}

// Intent creates (or returns the existing) transfer intent for a
// match: amount plus the code the depositor must quote in the transfer
// memo. One payment per match; a concurrent duplicate insert falls
// back to reading the winner's row.
func (s *Service) Intent(c *gin.Context) {
	var req intentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		svcErr.Abort(c, svcErr.BadRequest("matchId is required"))
		return
	}
	matchID, err := uuid.Parse(req.MatchID)
	if err != nil {
		svcErr.Abort(c, svcErr.BadRequest("matchId must be a match id"))
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

	if match.Payment != nil {
		c.JSON(200, views.FromPayment(match.Payment))
		return
	}

	payment, err := s.paymentRepo.Create(ctx, match)
	if err != nil {
		if !svcErr.IsDuplicateKey(err) {
			svcErr.Abort(c, err)
			return
		}
		if payment, err = s.paymentRepo.GetByMatchID(ctx, matchID); err != nil {
			svcErr.Abort(c, err)
			return
		}
	}
	c.JSON(200, views.FromPayment(payment))
}

// Get returns one payment. Only participants of the paying match may
// look.
func (s *Service) Get(c *gin.Context) {
	paymentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		svcErr.Abort(c, svcErr.BadRequest("invalid payment id"))
		return
	}

	ctx := c.Request.Context()
	payment, err := s.paymentRepo.GetByID(ctx, paymentID)
	if err != nil {
		svcErr.Abort(c, err)
		return
	}

	match, err := s.matchRepo.GetByID(ctx, payment.MatchID)
	if err != nil {
		svcErr.Abort(c, err)
		return
	}
	if !repository.Involves(match, auth.UserID(c)) {
		svcErr.Abort(c, svcErr.Forbidden("not your payment"))
		return
	}

	c.JSON(200, views.FromPayment(payment))
}
