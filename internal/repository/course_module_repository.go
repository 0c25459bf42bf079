package repository

import (
	"classroom_backend/internal/model"

	"gorm.io/gorm"
)

type CourseModuleRepository struct {
	DB *gorm.DB
}

func NewCourseModuleRepository(db *gorm.DB) *CourseModuleRepository {
	return &CourseModuleRepository{DB: db}
}

func (r *CourseModuleRepository) Create(mod *model.CourseModule) error {
	return r.DB.Create(mod).Error
}

func (r *CourseModuleRepository) Save(mod *model.CourseModule) error {
	return r.DB.Save(mod).Error
}

func (r *CourseModuleRepository) FindByID(id uint) (*model.CourseModule, error) {
	var mod model.CourseModule
	err := r.DB.First(&mod, id).Error
	if err != nil {
		return nil, err
	}
	return &mod, nil
}

// FindByCourse 课程下全部模块，按 position 升序
func (r *CourseModuleRepository) FindByCourse(courseID uint) ([]model.CourseModule, error) {
	var mods []model.CourseModule
	err := r.DB.Where("course_id = ?", courseID).Order("position ASC").Find(&mods).Error
	return mods, err
}

// NextPosition 课程内下一个可用的 position（稠密 1 起始）
func (r *CourseModuleRepository) NextPosition(courseID uint) (int, error) {
	var count int64
	err := r.DB.Model(&model.CourseModule{}).Where("course_id = ?", courseID).Count(&count).Error
	return int(count) + 1, err
}

func (r *CourseModuleRepository) CreateItem(item *model.ModuleItem) error {
	return r.DB.Create(item).Error
}

func (r *CourseModuleRepository) FindItem(id uint) (*model.ModuleItem, error) {
	var item model.ModuleItem
	err := r.DB.First(&item, id).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// FindItems 模块下全部模块项，按 position 升序
func (r *CourseModuleRepository) FindItems(moduleID uint) ([]model.ModuleItem, error) {
	var items []model.ModuleItem
	err := r.DB.Where("module_id = ?", moduleID).Order("position ASC").Find(&items).Error
	return items, err
}

func (r *CourseModuleRepository) NextItemPosition(moduleID uint) (int, error) {
	var count int64
	err := r.DB.Model(&model.ModuleItem{}).Where("module_id = ?", moduleID).Count(&count).Error
	return int(count) + 1, err
}

// ReindexItems 删除或重排后压实兄弟项的 position，保持稠密 1 起始
func (r *CourseModuleRepository) ReindexItems(moduleID uint) error {
	items, err := r.FindItems(moduleID)
	if err != nil {
		return err
	}
	return r.DB.Transaction(func(tx *gorm.DB) error {
		for i := range items {
			if items[i].Position == i+1 {
				continue
			}
			if err := tx.Model(&model.ModuleItem{}).Where("id = ?", items[i].ID).
				Update("position", i+1).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *CourseModuleRepository) DeleteItem(id uint) error {
	return r.DB.Delete(&model.ModuleItem{}, id).Error
}
