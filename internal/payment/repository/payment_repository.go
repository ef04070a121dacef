package repository

import (
	"time"

	"roadbuddy-backend/internal/payment/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PaymentRepository is the Postgres payment ledger.
type PaymentRepository interface {
	Create(record *domain.PaymentRecord) error
	ListByUser(userID string) ([]domain.PaymentRecord, error)
}

type paymentRepository struct {
	db *gorm.DB
}

func NewPaymentRepository(db *gorm.DB) PaymentRepository {
	return &paymentRepository{db: db}
}

func (r *paymentRepository) Create(record *domain.PaymentRecord) error {
	if record.ID == "" {
		record.ID = uuid.New().String()
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now()
	}
	return r.db.Create(record).Error
}

func (r *paymentRepository) ListByUser(userID string) ([]domain.PaymentRecord, error) {
	var records []domain.PaymentRecord
	if err := r.db.Where("user_id = ?", userID).Order("created_at DESC").Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}
