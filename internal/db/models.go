package db

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Role and status values stored as plain strings.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"

	MatchPending = "pending"
	MatchActive  = "active"
	MatchClosed  = "closed"

	PaymentMethodTransfer = "transfer"
)

// User is the root aggregate. Identity is keyed by the external Kakao
// login id; a user is created on first sync and never duplicated.
// Profile and Preferences are owned 1:1 and cascade on delete.
type User struct {
	ID            uuid.UUID `gorm:"type:char(36);primaryKey"`
	KakaoUserID   string    `gorm:"uniqueIndex;size:128;not null"`
	PhoneVerified bool      `gorm:"default:false"`
	Role          string    `gorm:"size:16;default:user"`
	Banned        bool      `gorm:"default:false"`
	// PasswordHash is set only for admin accounts (admin panel login).
	PasswordHash string    `gorm:"size:255"`
	CreatedAt    time.Time `gorm:"autoCreateTime"`

	Profile     *Profile     `gorm:"constraint:OnDelete:CASCADE"`
	Preferences *Preferences `gorm:"constraint:OnDelete:CASCADE"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// Profile holds the user-facing identity card. Visible controls which
// fields are disclosed to other users; consumers apply it on read.
type Profile struct {
	UserID    uuid.UUID       `gorm:"type:char(36);primaryKey"`
	Nickname  string          `gorm:"size:64;not null"`
	Gender    string          `gorm:"size:1;not null"` // M or F
	BirthYear int             `gorm:"not null"`
	Height    int
	Region    string          `gorm:"size:64"`
	Job       string          `gorm:"size:64"`
	Intro     string          `gorm:"type:text"`
	Photos    []string        `gorm:"serializer:json"`
	Visible   map[string]bool `gorm:"serializer:json"`
}

// DefaultVisibility is applied when a profile is first created.
func DefaultVisibility() map[string]bool {
	return map[string]bool{
		"age":    true,
		"height": false,
		"region": true,
		"job":    true,
		"intro":  true,
	}
}

// Preferences is the user's matching criteria. Keywords are collected
// but not used by the current scoring. Blocks are excluded from
// candidate selection.
type Preferences struct {
	UserID       uuid.UUID   `gorm:"type:char(36);primaryKey"`
	TargetGender string      `gorm:"size:1;not null"` // M or F
	AgeMin       int         `gorm:"not null"`
	AgeMax       int         `gorm:"not null"`
	Regions      []string    `gorm:"serializer:json"`
	Keywords     []string    `gorm:"serializer:json"`
	Blocks       []uuid.UUID `gorm:"serializer:json"`
}

// ExposureLog is an append-only fact: UserID was shown TargetUserID at
// SeenAt. No uniqueness constraint; duplicates are tolerated and the
// engine only reads the trailing window.
type ExposureLog struct {
	ID           uint64    `gorm:"primaryKey;autoIncrement"`
	UserID       uuid.UUID `gorm:"type:char(36);not null;index:idx_exposure_user_seen,priority:1"`
	TargetUserID uuid.UUID `gorm:"type:char(36);not null"`
	Reason       string    `gorm:"size:32"`
	SeenAt       time.Time `gorm:"autoCreateTime;index:idx_exposure_user_seen,priority:2"`
}

func (ExposureLog) TableName() string { return "exposure_log" }

// Recommendation is one weekly suggestion of TargetUserID to UserID.
// The composite unique index is the sole arbiter of "already
// recommended this week"; duplicate inserts are rejected by the store.
type Recommendation struct {
	ID           uint64    `gorm:"primaryKey;autoIncrement"`
	UserID       uuid.UUID `gorm:"type:char(36);not null;uniqueIndex:uniq_rec_per_week,priority:1"`
	TargetUserID uuid.UUID `gorm:"type:char(36);not null;uniqueIndex:uniq_rec_per_week,priority:2"`
	BatchWeek    string    `gorm:"size:8;not null;uniqueIndex:uniq_rec_per_week,priority:3"` // YYYY-Www
	Score        float64   `gorm:"not null;default:0"`
	SentAt       time.Time
	Responded    bool `gorm:"default:false"`
}

// Like records FromUser liking ToUser within a batch week. Unique per
// (from, to, week); re-liking is a no-op.
type Like struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement"`
	FromUser  uuid.UUID `gorm:"type:char(36);not null;uniqueIndex:uniq_like_per_week,priority:1"`
	ToUser    uuid.UUID `gorm:"type:char(36);not null;uniqueIndex:uniq_like_per_week,priority:2"`
	BatchWeek string    `gorm:"size:8;not null;uniqueIndex:uniq_like_per_week,priority:3"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

// Match pairs two mutually-liking users. UserA/UserB are stored in
// lexicographic order so a pair maps to a single row.
type Match struct {
	ID        uuid.UUID `gorm:"type:char(36);primaryKey"`
	UserA     uuid.UUID `gorm:"type:char(36);not null;uniqueIndex:uniq_match_pair,priority:1;index"`
	UserB     uuid.UUID `gorm:"type:char(36);not null;uniqueIndex:uniq_match_pair,priority:2;index"`
	Status    string    `gorm:"size:16;not null;default:pending"`
	CreatedAt time.Time `gorm:"autoCreateTime"`

	Payment *Payment `gorm:"constraint:OnDelete:CASCADE"`
}

func (m *Match) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

// Payment is the manual bank-transfer confirmation attached to a match.
// The depositor quotes Code in the transfer memo; an admin verifies the
// transfer by hand and sets VerifiedAt.
type Payment struct {
	ID            uuid.UUID `gorm:"type:char(36);primaryKey"`
	MatchID       uuid.UUID `gorm:"type:char(36);uniqueIndex;not null"`
	Method        string    `gorm:"size:16;not null;default:transfer"`
	Amount        int       `gorm:"not null"`
	Code          string    `gorm:"size:16;not null"`
	DepositorName string    `gorm:"size:64"`
	VerifiedAt    *time.Time
	Memo          string    `gorm:"type:text"`
	CreatedAt     time.Time `gorm:"autoCreateTime"`
}

func (p *Payment) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// AdminAction is the audit trail for the admin panel.
type AdminAction struct {
	ID        uint64         `gorm:"primaryKey;autoIncrement"`
	AdminID   uuid.UUID      `gorm:"type:char(36);not null;index"`
	Action    string         `gorm:"size:64;not null"`
	TargetID  string         `gorm:"size:64"`
	Detail    map[string]any `gorm:"serializer:json"`
	CreatedAt time.Time      `gorm:"autoCreateTime"`
}
