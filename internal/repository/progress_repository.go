package repository

import (
	"classroom_backend/internal/model"

	"gorm.io/gorm"
)

type ProgressRepository struct {
	DB *gorm.DB
}

func NewProgressRepository(db *gorm.DB) *ProgressRepository {
	return &ProgressRepository{DB: db}
}

// Find 上一次落库的进度快照；仅用于保留首次完成时间戳，
// 不作为权威状态来源
func (r *ProgressRepository) Find(userID, moduleID uint) (*model.ModuleProgress, error) {
	var progress model.ModuleProgress
	err := r.DB.Where("user_id = ? AND module_id = ?", userID, moduleID).First(&progress).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &progress, nil
}

// Upsert 以 (user, module) 为键写回最新求值结果
func (r *ProgressRepository) Upsert(progress *model.ModuleProgress) error {
	existing, err := r.Find(progress.UserID, progress.ModuleID)
	if err != nil {
		return err
	}
	if existing == nil {
		return r.DB.Create(progress).Error
	}
	progress.ID = existing.ID
	progress.CreatedAt = existing.CreatedAt
	return r.DB.Save(progress).Error
}
