package matches

import (
	"github.com/gin-gonic/gin"

	"github.com/shhmatch/backend/internal/app"
	"github.com/shhmatch/backend/internal/auth"
)

// Registrar ties the matches service into the HTTP router
type Registrar struct {
	appCtx *app.AppContext
	tokens *auth.TokenIssuer
}

func NewRegistrar(appCtx *app.AppContext, tokens *auth.TokenIssuer) *Registrar {
	return &Registrar{appCtx: appCtx, tokens: tokens}
}

func (r *Registrar) Register(api *gin.RouterGroup) {
	service := NewService(r.appCtx)

	g := api.Group("/matches", auth.RequireAuth(r.tokens))
	g.GET("", service.List)
	g.GET("/:id", service.Get)
}
