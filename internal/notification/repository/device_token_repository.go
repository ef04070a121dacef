package repository

import (
	"time"

	"roadbuddy-backend/internal/notification/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DeviceTokenRepository stores FCM registration tokens in Postgres.
type DeviceTokenRepository interface {
	SaveToken(userID, token, deviceInfo string) error
	GetTokensByUserID(userID string) ([]domain.DeviceToken, error)
	DeleteToken(token string) error
	// DeleteUserToken removes token only if it belongs to userID.
	DeleteUserToken(userID, token string) error
}

type deviceTokenRepository struct {
	db *gorm.DB
}

func NewDeviceTokenRepository(db *gorm.DB) DeviceTokenRepository {
	return &deviceTokenRepository{db: db}
}

// SaveToken upserts on the token so a device that changes hands follows the
// latest user.
func (r *deviceTokenRepository) SaveToken(userID, token, deviceInfo string) error {
	now := time.Now()
	deviceToken := &domain.DeviceToken{
		ID:         uuid.New().String(),
		UserID:     userID,
		Token:      token,
		DeviceInfo: deviceInfo,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "token"}},
		DoUpdates: clause.AssignmentColumns([]string{"user_id", "device_info", "updated_at"}),
	}).Create(deviceToken).Error
}

func (r *deviceTokenRepository) GetTokensByUserID(userID string) ([]domain.DeviceToken, error) {
	var tokens []domain.DeviceToken
	if err := r.db.Where("user_id = ?", userID).Find(&tokens).Error; err != nil {
		return nil, err
	}
	return tokens, nil
}

func (r *deviceTokenRepository) DeleteToken(token string) error {
	return r.db.Where("token = ?", token).Delete(&domain.DeviceToken{}).Error
}

func (r *deviceTokenRepository) DeleteUserToken(userID, token string) error {
	return r.db.Where("user_id = ? AND token = ?", userID, token).Delete(&domain.DeviceToken{}).Error
}
