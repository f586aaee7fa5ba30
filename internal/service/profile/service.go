// Package profile handles profile and matching-preference updates.
package profile

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/shhmatch/backend/internal/app"
	"github.com/shhmatch/backend/internal/auth"
	"github.com/shhmatch/backend/internal/db"
	svcErr "github.com/shhmatch/backend/internal/errors"
	"github.com/shhmatch/backend/internal/repository"
	"github.com/shhmatch/backend/internal/service/views"
)

// Service implements the profile endpoints.
type Service struct {
	appCtx   *app.AppContext
	userRepo *repository.UserRepository
}

func NewService(appCtx *app.AppContext) *Service {
	return &Service{
		appCtx:   appCtx,
		userRepo: repository.NewUserRepository(appCtx.DB),
	}
}

type updateProfileRequest struct {
	Nickname  string          `json:"nickname" binding:"required"`
	Gender    string          `json:"gender" binding:"required"`
	BirthYear int             `json:"birthYear" binding:"required"`
	Height    int             `json:"height"`
	Region    string          `json:"region"`
	Job       string          `json:"job"`
	Intro     string          `json:"intro"`
	Photos    []string        `json:"photos"`
	Visible   map[string]bool `json:"visible"`
}

// UpdateProfile replaces the caller's profile card.
func (s *Service) UpdateProfile(c *gin.Context) {
	var req updateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		svcErr.Abort(c, svcErr.BadRequest("nickname, gender and birthYear are required"))
		return
	}

	req.Gender = strings.ToUpper(req.Gender)
	if req.Gender != "M" && req.Gender != "F" {
		svcErr.Abort(c, svcErr.BadRequest("gender must be M or F"))
		return
	}
	thisYear := time.Now().Year()
	if req.BirthYear < thisYear-80 || req.BirthYear > thisYear-18 {
		svcErr.Abort(c, svcErr.BadRequest("birthYear is out of range"))
		return
	}

	visible := req.Visible
	if visible == nil {
		visible = db.DefaultVisibility()
	}

	p := &db.Profile{
		UserID:    auth.UserID(c),
		Nickname:  strings.TrimSpace(req.Nickname),
		Gender:    req.Gender,
		BirthYear: req.BirthYear,
		Height:    req.Height,
		Region:    strings.TrimSpace(req.Region),
		Job:       strings.TrimSpace(req.Job),
		Intro:     req.Intro,
		Photos:    req.Photos,
		Visible:   visible,
	}
	if err := s.userRepo.UpsertProfile(c.Request.Context(), p); err != nil {
		svcErr.Abort(c, err)
		return
	}
	c.JSON(200, views.FromProfile(p))
}

type updatePreferencesRequest struct {
	TargetGender string   `json:"targetGender" binding:"required"`
	AgeMin       int      `json:"ageMin" binding:"required"`
	AgeMax       int      `json:"ageMax" binding:"required"`
	Regions      []string `json:"regions"`
	Keywords     []string `json:"keywords"`
	Blocks       []string `json:"blocks"`
}

// UpdatePreferences replaces the caller's matching preferences.
func (s *Service) UpdatePreferences(c *gin.Context) {
	var req updatePreferencesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		svcErr.Abort(c, svcErr.BadRequest("targetGender, ageMin and ageMax are required"))
		return
	}

	req.TargetGender = strings.ToUpper(req.TargetGender)
	if req.TargetGender != "M" && req.TargetGender != "F" {
		svcErr.Abort(c, svcErr.BadRequest("targetGender must be M or F"))
		return
	}
	if req.AgeMin < 18 || req.AgeMax > 80 || req.AgeMin > req.AgeMax {
		svcErr.Abort(c, svcErr.BadRequest("age range must satisfy 18 <= ageMin <= ageMax <= 80"))
		return
	}

	userID := auth.UserID(c)
	blocks := make([]uuid.UUID, 0, len(req.Blocks))
	for _, raw := range req.Blocks {
		id, err := uuid.Parse(raw)
		if err != nil {
			svcErr.Abort(c, svcErr.BadRequest("blocks must be user ids"))
			return
		}
		if id != userID {
			blocks = append(blocks, id)
		}
	}

	p := &db.Preferences{
		UserID:       userID,
		TargetGender: req.TargetGender,
		AgeMin:       req.AgeMin,
		AgeMax:       req.AgeMax,
		Regions:      req.Regions,
		Keywords:     req.Keywords,
		Blocks:       blocks,
	}
	if err := s.userRepo.UpsertPreferences(c.Request.Context(), p); err != nil {
		svcErr.Abort(c, err)
		return
	}
	c.JSON(200, views.FromPreferences(p))
}
