package repository

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/shhmatch/backend/internal/db"
)

// DefaultPaymentAmount is the bank-transfer amount in KRW.
const DefaultPaymentAmount = 10000

// PaymentRepository provides data access for manual bank-transfer
// payments.
type PaymentRepository struct {
	db *gorm.DB
}

func NewPaymentRepository(database *gorm.DB) *PaymentRepository {
	return &PaymentRepository{db: database}
}

// paymentCode builds the code the depositor quotes in the transfer
// memo: KM-<last 4 of user id>-<3 random digits>.
func paymentCode(userID uuid.UUID) string {
	s := userID.String()
	return fmt.Sprintf("KM-%s-%03d", s[len(s)-4:], rand.Intn(1000))
}

// Create inserts a payment for the match. The unique index on match_id
// rejects a second payment; callers handle gorm.ErrDuplicatedKey by
// re-reading the existing row.
func (r *PaymentRepository) Create(ctx context.Context, match *db.Match) (*db.Payment, error) {
	payment := db.Payment{
		MatchID: match.ID,
		Method:  db.PaymentMethodTransfer,
		Amount:  DefaultPaymentAmount,
		Code:    paymentCode(match.UserA),
	}
	if err := r.db.WithContext(ctx).Create(&payment).Error; err != nil {
		return nil, err
	}
	return &payment, nil
}

func (r *PaymentRepository) GetByID(ctx context.Context, id uuid.UUID) (*db.Payment, error) {
	var payment db.Payment
	if err := r.db.WithContext(ctx).First(&payment, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &payment, nil
}

func (r *PaymentRepository) GetByMatchID(ctx context.Context, matchID uuid.UUID) (*db.Payment, error) {
	var payment db.Payment
	if err := r.db.WithContext(ctx).First(&payment, "match_id = ?", matchID).Error; err != nil {
		return nil, err
	}
	return &payment, nil
}

// Verify marks the payment as confirmed by an admin.
func (r *PaymentRepository) Verify(ctx context.Context, id uuid.UUID, depositorName, memo string) (*db.Payment, error) {
	var payment db.Payment
	if err := r.db.WithContext(ctx).First(&payment, "id = ?", id).Error; err != nil {
		return nil, err
	}
	now := time.Now()
	payment.VerifiedAt = &now
	if depositorName != "" {
		payment.DepositorName = depositorName
	}
	if memo != "" {
		payment.Memo = memo
	}
	if err := r.db.WithContext(ctx).Save(&payment).Error; err != nil {
		return nil, err
	}
	return &payment, nil
}

// ListForAdmin returns payments filtered by verification status
// ("verified", "pending" or "" for all), newest first.
func (r *PaymentRepository) ListForAdmin(ctx context.Context, status string, page, limit int) ([]db.Payment, error) {
	q := r.db.WithContext(ctx).
		Order("created_at DESC").
		Offset(page * limit).
		Limit(limit)
	switch status {
	case "verified":
		q = q.Where("verified_at IS NOT NULL")
	case "pending":
		q = q.Where("verified_at IS NULL")
	}
	var payments []db.Payment
	err := q.Find(&payments).Error
	return payments, err
}
