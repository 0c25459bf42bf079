package model

// EventKind 学习行为事件类型
type EventKind string

const (
	EventView       EventKind = "view"
	EventContribute EventKind = "contribute"
	EventSubmit     EventKind = "submit"
	EventScore      EventKind = "score"
)

// RequirementEvent 学习行为事实，只追加不修改；
// 完成状态由事件与要求的匹配推导，不落为可变标志位
type RequirementEvent struct {
	BaseModel
	UserID uint      `gorm:"uniqueIndex:idx_event_key;not null" json:"userId"`
	ItemID uint      `gorm:"uniqueIndex:idx_event_key;not null" json:"itemId"`
	Kind   EventKind `gorm:"uniqueIndex:idx_event_key;size:16;not null" json:"kind"`
	Score  float64   `gorm:"default:0" json:"score"`
}

func (RequirementEvent) TableName() string {
	return "requirement_events"
}

// Satisfies 判断该事件是否满足给定完成要求
func (e *RequirementEvent) Satisfies(req *CompletionRequirement) bool {
	if req == nil {
		return false
	}
	switch req.Type {
	case MustView:
		return e.Kind == EventView
	case MustContribute:
		return e.Kind == EventContribute
	case MustSubmit:
		return e.Kind == EventSubmit
	case MinScore:
		return e.Kind == EventScore && req.MinScore != nil && e.Score >= *req.MinScore
	}
	return false
}
