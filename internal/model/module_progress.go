package model

import "time"

// ProgressState 模块进度状态机
type ProgressState string

const (
	StateLocked    ProgressState = "locked"
	StateUnlocked  ProgressState = "unlocked"
	StateStarted   ProgressState = "started"
	StateCompleted ProgressState = "completed"
)

// ModuleProgress 每用户每模块的派生进度。
// 状态是 (模块定义, 前置状态, 当前时间, 事件历史) 的纯函数，
// 落库仅为保留首次完成时间戳，不作为权威来源
type ModuleProgress struct {
	BaseModel
	UserID      uint          `gorm:"uniqueIndex:idx_progress_key;not null" json:"userId"`
	ModuleID    uint          `gorm:"uniqueIndex:idx_progress_key;not null" json:"moduleId"`
	State       ProgressState `gorm:"size:16;not null" json:"state"`
	CompletedAt *time.Time    `json:"completedAt"`
}

func (ModuleProgress) TableName() string {
	return "module_progress"
}
