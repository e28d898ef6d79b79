package ledger

import (
	"context"
	"encoding/json"
	"time"

	"capitalrise/apperrors"
	"capitalrise/models"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// logActivity appends an admin audit row inside the caller's transaction.
func logActivity(tx *gorm.DB, p Principal, at time.Time, action string, details map[string]any) error {
	raw, err := json.Marshal(details)
	if err != nil {
		return err
	}
	entry := models.AdminActivityLog{
		AdminID:    p.ID,
		Action:     action,
		Details:    datatypes.JSON(raw),
		IPAddress:  p.IP,
		DeviceInfo: p.Device,
		Timestamp:  at,
	}
	return tx.Create(&entry).Error
}

// ActivityLog lists admin actions, newest first.
func (s *Service) ActivityLog(ctx context.Context, p Principal, adminID string, page Page) ([]models.AdminActivityLog, int64, error) {
	if err := p.canRead(); err != nil {
		return nil, 0, err
	}
	page = page.normalize()
	query := s.db.WithContext(ctx).Model(&models.AdminActivityLog{})
	if adminID != "" {
		query = query.Where("admin_id = ?", adminID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, apperrors.Internal(err, "Failed to fetch activity log")
	}
	var rows []models.AdminActivityLog
	if err := query.Order("timestamp DESC, id DESC").Offset(page.offset()).Limit(page.Limit).Find(&rows).Error; err != nil {
		return nil, 0, apperrors.Internal(err, "Failed to fetch activity log")
	}
	return rows, total, nil
}
