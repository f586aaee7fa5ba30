package admin

import (
	"github.com/gin-gonic/gin"

	"github.com/shhmatch/backend/internal/app"
	"github.com/shhmatch/backend/internal/auth"
)

// Registrar ties the admin service into the HTTP router
type Registrar struct {
	appCtx *app.AppContext
	tokens *auth.TokenIssuer
}

func NewRegistrar(appCtx *app.AppContext, tokens *auth.TokenIssuer) *Registrar {
	return &Registrar{appCtx: appCtx, tokens: tokens}
}

func (r *Registrar) Register(api *gin.RouterGroup) {
	service := NewService(r.appCtx)

	g := api.Group("/admin", auth.RequireAuth(r.tokens), auth.RequireAdmin())
	g.GET("/users", service.ListUsers)
	g.POST("/users/:id/ban", service.BanUser)
	g.POST("/users/:id/unban", service.UnbanUser)
	g.GET("/matches", service.ListMatches)
	g.POST("/matches/:id/activate", service.ActivateMatch)
	g.GET("/payments", service.ListPayments)
	g.POST("/payments/:id/verify", service.VerifyPayment)
	g.POST("/recs/run", service.RunRecs)
	g.GET("/recs/last", service.LastRecsRun)
}
