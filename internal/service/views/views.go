// Package views holds the JSON response shapes shared by the HTTP
// services, including visibility-filtered profile rendering.
package views

import (
	"time"

	"github.com/shhmatch/backend/internal/db"
)

type User struct {
	ID            string    `json:"id"`
	KakaoUserID   string    `json:"kakaoUserId"`
	PhoneVerified bool      `json:"phoneVerified"`
	Role          string    `json:"role"`
	Banned        bool      `json:"banned"`
	CreatedAt     time.Time `json:"createdAt"`
}

func FromUser(u *db.User) User {
	return User{
		ID:            u.ID.String(),
		KakaoUserID:   u.KakaoUserID,
		PhoneVerified: u.PhoneVerified,
		Role:          u.Role,
		Banned:        u.Banned,
		CreatedAt:     u.CreatedAt,
	}
}

type Profile struct {
	UserID    string          `json:"userId"`
	Nickname  string          `json:"nickname"`
	Gender    string          `json:"gender"`
	BirthYear *int            `json:"birthYear,omitempty"`
	Height    *int            `json:"height,omitempty"`
	Region    *string         `json:"region,omitempty"`
	Job       *string         `json:"job,omitempty"`
	Intro     *string         `json:"intro,omitempty"`
	Photos    []string        `json:"photos"`
	Visible   map[string]bool `json:"visible"`
}

// FromProfile renders a profile for its owner (or an admin): every
// field disclosed.
func FromProfile(p *db.Profile) Profile {
	v := Profile{
		UserID:   p.UserID.String(),
		Nickname: p.Nickname,
		Gender:   p.Gender,
		Photos:   p.Photos,
		Visible:  p.Visible,
	}
	v.BirthYear = &p.BirthYear
	if p.Height != 0 {
		v.Height = &p.Height
	}
	if p.Region != "" {
		v.Region = &p.Region
	}
	if p.Job != "" {
		v.Job = &p.Job
	}
	if p.Intro != "" {
		v.Intro = &p.Intro
	}
	if v.Photos == nil {
		v.Photos = []string{}
	}
	return v
}

// RedactedProfile renders a profile for another user, blanking any
// field whose visibility flag is off. Missing flags default to
// visible. Photos are always shown.
func RedactedProfile(p *db.Profile) Profile {
	v := FromProfile(p)
	shows := func(field string) bool {
		if p.Visible == nil {
			return true
		}
		show, ok := p.Visible[field]
		return !ok || show
	}
	if !shows("age") {
		v.BirthYear = nil
	}
	if !shows("height") {
		v.Height = nil
	}
	if !shows("region") {
		v.Region = nil
	}
	if !shows("job") {
		v.Job = nil
	}
	if !shows("intro") {
		v.Intro = nil
	}
	return v
}

type Preferences struct {
	UserID       string   `json:"userId"`
	TargetGender string   `json:"targetGender"`
	AgeMin       int      `json:"ageMin"`
	AgeMax       int      `json:"ageMax"`
	Regions      []string `json:"regions"`
	Keywords     []string `json:"keywords"`
	Blocks       []string `json:"blocks"`
}

func FromPreferences(p *db.Preferences) Preferences {
	v := Preferences{
		UserID:       p.UserID.String(),
		TargetGender: p.TargetGender,
		AgeMin:       p.AgeMin,
		AgeMax:       p.AgeMax,
		Regions:      p.Regions,
		Keywords:     p.Keywords,
		Blocks:       []string{},
	}
	if v.Regions == nil {
		v.Regions = []string{}
	}
	if v.Keywords == nil {
		v.Keywords = []string{}
	}
	for _, b := range p.Blocks {
		v.Blocks = append(v.Blocks, b.String())
	}
	return v
}

type Match struct {
	ID        string    `json:"id"`
	UserA     string    `json:"userA"`
	UserB     string    `json:"userB"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
}

func FromMatch(m *db.Match) Match {
	return Match{
		ID:        m.ID.String(),
		UserA:     m.UserA.String(),
		UserB:     m.UserB.String(),
		Status:    m.Status,
		CreatedAt: m.CreatedAt,
	}
}

type Payment struct {
	ID            string     `json:"id"`
	MatchID       string     `json:"matchId"`
	Method        string     `json:"method"`
	Amount        int        `json:"amount"`
	Code          string     `json:"code"`
	DepositorName string     `json:"depositorName,omitempty"`
	VerifiedAt    *time.Time `json:"verifiedAt,omitempty"`
	Memo          string     `json:"memo,omitempty"`
}

func FromPayment(p *db.Payment) Payment {
	return Payment{
		ID:            p.ID.String(),
		MatchID:       p.MatchID.String(),
		Method:        p.Method,
		Amount:        p.Amount,
		Code:          p.Code,
		DepositorName: p.DepositorName,
		VerifiedAt:    p.VerifiedAt,
		Memo:          p.Memo,
	}
}

type Recommendation struct {
	ID            uint64    `json:"id"`
	TargetUserID  string    `json:"targetUserId"`
	BatchWeek     string    `json:"batchWeek"`
	Score         float64   `json:"score"`
	SentAt        time.Time `json:"sentAt"`
	Responded     bool      `json:"responded"`
	TargetProfile *Profile  `json:"targetProfile,omitempty"`
}

func FromRecommendation(r *db.Recommendation, targetProfile *db.Profile) Recommendation {
	v := Recommendation{
		ID:           r.ID,
		TargetUserID: r.TargetUserID.String(),
		BatchWeek:    r.BatchWeek,
		Score:        r.Score,
		SentAt:       r.SentAt,
		Responded:    r.Responded,
	}
	if targetProfile != nil {
		p := RedactedProfile(targetProfile)
		v.TargetProfile = &p
	}
	return v
}
