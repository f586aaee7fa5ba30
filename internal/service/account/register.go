package account

import (
	"github.com/gin-gonic/gin"

	"github.com/shhmatch/backend/internal/app"
	"github.com/shhmatch/backend/internal/auth"
)

// Registrar ties the account service into the HTTP router
type Registrar struct {
	appCtx *app.AppContext
	tokens *auth.TokenIssuer
}

func NewRegistrar(appCtx *app.AppContext, tokens *auth.TokenIssuer) *Registrar {
	return &Registrar{appCtx: appCtx, tokens: tokens}
}

func (r *Registrar) Register(api *gin.RouterGroup) {
	service := NewService(r.appCtx, r.tokens)

	g := api.Group("/auth")
	g.POST("/sync-kakao", service.SyncKakao)
	g.POST("/admin-login", service.AdminLogin)
	g.GET("/me", auth.RequireAuth(r.tokens), service.Me)
}
