// Package account handles Kakao identity sync, admin login, and the
// authenticated "who am I" endpoint.
package account

import (
	"strings"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"github.com/shhmatch/backend/internal/app"
	"github.com/shhmatch/backend/internal/auth"
	"github.com/shhmatch/backend/internal/db"
	svcErr "github.com/shhmatch/backend/internal/errors"
	"github.com/shhmatch/backend/internal/repository"
	"github.com/shhmatch/backend/internal/service/views"
)

// Service implements the auth endpoints.
type Service struct {
	appCtx   *app.AppContext
	userRepo *repository.UserRepository
	tokens   *auth.TokenIssuer
}

func NewService(appCtx *app.AppContext, tokens *auth.TokenIssuer) *Service {
	return &Service{
		appCtx:   appCtx,
		userRepo: repository.NewUserRepository(appCtx.DB),
		tokens:   tokens,
	}
}

type syncKakaoRequest struct {
	KakaoUserID string `json:"kakaoUserId" binding:"required"`
	Nickname    string `json:"nickname"`
}

// SyncKakao finds or creates the user behind a Kakao login and returns
// a session token. First-time users get a default profile and
// preferences so the weekly batch can pick them up once they fill
// these in.
func (s *Service) SyncKakao(c *gin.Context) {
	var req syncKakaoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		svcErr.Abort(c, svcErr.BadRequest("kakaoUserId is required"))
		return
	}

	ctx := c.Request.Context()
	user, err := s.userRepo.GetByKakaoID(ctx, req.KakaoUserID)
	if err != nil && !svcErr.IsNotFound(err) {
		svcErr.Abort(c, err)
		return
	}

	if user == nil {
		nickname := strings.TrimSpace(req.Nickname)
		if nickname == "" {
			nickname = "사용자"
		}
		user = &db.User{
			KakaoUserID: req.KakaoUserID,
			Role:        db.RoleUser,
			Profile: &db.Profile{
				Nickname:  nickname,
				Gender:    "M",
				BirthYear: 1990,
				Visible:   db.DefaultVisibility(),
			},
			Preferences: &db.Preferences{
				TargetGender: "F",
				AgeMin:       20,
				AgeMax:       40,
			},
		}
		if err := s.userRepo.Create(ctx, user); err != nil {
			if svcErr.IsDuplicateKey(err) {
				// Concurrent first sync; the other request won.
				if user, err = s.userRepo.GetByKakaoID(ctx, req.KakaoUserID); err != nil {
					svcErr.Abort(c, err)
					return
				}
			} else {
				svcErr.Abort(c, err)
				return
			}
		}
		s.appCtx.Logger.Info("user created from kakao sync", "user_id", user.ID)
	}

	if user.Banned {
		svcErr.Abort(c, svcErr.Forbidden("account is banned"))
		return
	}

	token, err := s.tokens.Issue(user.ID.String(), user.Role)
	if err != nil {
		svcErr.Abort(c, err)
		return
	}

	c.JSON(200, gin.H{
		"token": token,
		"user":  views.FromUser(user),
	})
}

type adminLoginRequest struct {
	KakaoUserID string `json:"kakaoUserId" binding:"required"`
	Password    string `json:"password" binding:"required"`
}

// AdminLogin authenticates an admin account with a password on top of
// its Kakao identity.
func (s *Service) AdminLogin(c *gin.Context) {
	var req adminLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		svcErr.Abort(c, svcErr.BadRequest("kakaoUserId and password are required"))
		return
	}

	ctx := c.Request.Context()
	user, err := s.userRepo.GetByKakaoID(ctx, req.KakaoUserID)
	if err != nil {
		if svcErr.IsNotFound(err) {
			svcErr.Abort(c, svcErr.Unauthorized("invalid credentials"))
			return
		}
		svcErr.Abort(c, err)
		return
	}

	if user.Role != db.RoleAdmin || user.PasswordHash == "" {
		svcErr.Abort(c, svcErr.Unauthorized("invalid credentials"))
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		svcErr.Abort(c, svcErr.Unauthorized("invalid credentials"))
		return
	}

	token, err := s.tokens.Issue(user.ID.String(), user.Role)
	if err != nil {
		svcErr.Abort(c, err)
		return
	}

	c.JSON(200, gin.H{
		"token": token,
		"user":  views.FromUser(user),
	})
}

// Me returns the caller's account with profile and preferences.
func (s *Service) Me(c *gin.Context) {
	user, err := s.userRepo.GetByID(c.Request.Context(), auth.UserID(c))
	if err != nil {
		svcErr.Abort(c, err)
		return
	}

	resp := gin.H{"user": views.FromUser(user)}
	if user.Profile != nil {
		resp["profile"] = views.FromProfile(user.Profile)
	}
	if user.Preferences != nil {
		resp["preferences"] = views.FromPreferences(user.Preferences)
	}
	c.JSON(200, resp)
}
