package repository

import (
	"classroom_backend/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type RoleRepository struct {
	DB *gorm.DB
}

func NewRoleRepository(db *gorm.DB) *RoleRepository {
	return &RoleRepository{DB: db}
}

func (r *RoleRepository) CreateRole(role *model.Role) error {
	return r.DB.Create(role).Error
}

// RoleExists 角色名在账户内是否已占用；内置角色视为全局存在
func (r *RoleRepository) RoleExists(accountID uint, name string) (bool, error) {
	if model.IsBaseRole(name) {
		return true, nil
	}
	var count int64
	err := r.DB.Model(&model.Role{}).
		Where("account_id = ? AND name = ?", accountID, name).Count(&count).Error
	return count > 0, err
}

// UpsertOverride 以 (account, role, permission) 为键替换覆盖行
func (r *RoleRepository) UpsertOverride(ov *model.RoleOverride) error {
	return r.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "account_id"}, {Name: "role"}, {Name: "permission"}},
		DoUpdates: clause.AssignmentColumns([]string{"enabled", "locked", "updated_at"}),
	}).Create(ov).Error
}

// FindOverrides 一组账户上某角色的全部覆盖，按账户分组返回
func (r *RoleRepository) FindOverrides(accountIDs []uint, role string) (map[uint][]model.RoleOverride, error) {
	if len(accountIDs) == 0 {
		return map[uint][]model.RoleOverride{}, nil
	}
	var overrides []model.RoleOverride
	err := r.DB.Where("account_id IN ? AND role = ?", accountIDs, role).Find(&overrides).Error
	if err != nil {
		return nil, err
	}
	grouped := make(map[uint][]model.RoleOverride)
	for _, ov := range overrides {
		grouped[ov.AccountID] = append(grouped[ov.AccountID], ov)
	}
	return grouped, nil
}
