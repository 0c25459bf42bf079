package repository

import (
	"classroom_backend/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type EventRepository struct {
	DB *gorm.DB
}

func NewEventRepository(db *gorm.DB) *EventRepository {
	return &EventRepository{DB: db}
}

// Record 追加一条行为事件。(user, item, kind) 为幂等键：
// 重复记录是无操作；计分事件保留最高分，满足判定因此单调
func (r *EventRepository) Record(event *model.RequirementEvent) error {
	if event.Kind == model.EventScore {
		return r.DB.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}, {Name: "item_id"}, {Name: "kind"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"score": gorm.Expr("GREATEST(score, VALUES(score))"),
			}),
		}).Create(event).Error
	}
	return r.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "item_id"}, {Name: "kind"}},
		DoNothing: true,
	}).Create(event).Error
}

// FindByUserAndItems 用户针对一组模块项的全部事件
func (r *EventRepository) FindByUserAndItems(userID uint, itemIDs []uint) ([]model.RequirementEvent, error) {
	if len(itemIDs) == 0 {
		return nil, nil
	}
	var events []model.RequirementEvent
	err := r.DB.Where("user_id = ? AND item_id IN ?", userID, itemIDs).Find(&events).Error
	return events, err
}
