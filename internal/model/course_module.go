package model

import (
	"strconv"
	"strings"
	"time"
)

// ModuleItemType 模块项内容类型
type ModuleItemType string

const (
	ItemAssignment  ModuleItemType = "Assignment"
	ItemQuiz        ModuleItemType = "Quiz"
	ItemDiscussion  ModuleItemType = "Discussion"
	ItemSubHeader   ModuleItemType = "SubHeader"
	ItemExternalUrl ModuleItemType = "ExternalUrl"
	ItemPage        ModuleItemType = "Page"
	ItemFile        ModuleItemType = "File"
)

// RequirementType 完成要求类型
type RequirementType string

const (
	MustView       RequirementType = "must_view"
	MustContribute RequirementType = "must_contribute"
	MustSubmit     RequirementType = "must_submit"
	MinScore       RequirementType = "min_score"
)

// CourseModule 课程模块，按 position 排序，可声明前置模块与解锁时间
type CourseModule struct {
	BaseModel
	CourseID                  uint       `gorm:"index;not null" json:"courseId"`
	Name                      string     `gorm:"size:255;not null" json:"name"`
	Position                  int        `gorm:"not null" json:"position"`
	UnlockAt                  *time.Time `json:"unlockAt"`
	RequireSequentialProgress bool       `gorm:"default:false" json:"requireSequentialProgress"`
	// 前置模块 ID，逗号分隔存储；前置模块的 position 必须严格小于本模块
	PrerequisiteIDs string       `gorm:"size:1024;default:''" json:"-"`
	Items           []ModuleItem `gorm:"foreignKey:ModuleID" json:"items,omitempty"`
}

func (CourseModule) TableName() string {
	return "course_modules"
}

// Prerequisites 解析前置模块 ID 列表
func (m *CourseModule) Prerequisites() []uint {
	if m.PrerequisiteIDs == "" {
		return nil
	}
	parts := strings.Split(m.PrerequisiteIDs, ",")
	ids := make([]uint, 0, len(parts))
	for _, p := range parts {
		id, err := strconv.ParseUint(strings.TrimSpace(p), 10, 32)
		if err != nil {
			continue
		}
		ids = append(ids, uint(id))
	}
	return ids
}

func (m *CourseModule) SetPrerequisites(ids []uint) {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.FormatUint(uint64(id), 10)
	}
	m.PrerequisiteIDs = strings.Join(parts, ",")
}

// ModuleItem 模块项，引用一项内容（作业、测验、讨论、页面、文件、外链或子标题）
type ModuleItem struct {
	BaseModel
	ModuleID    uint           `gorm:"index;not null" json:"moduleId"`
	Type        ModuleItemType `gorm:"size:32;not null" json:"type"`
	Title       string         `gorm:"size:255" json:"title"`
	Position    int            `gorm:"not null" json:"position"`
	Indent      int            `gorm:"default:0" json:"indent"`
	ContentID   uint           `gorm:"default:0" json:"contentId"`
	PageSlug    string         `gorm:"size:255" json:"pageSlug,omitempty"`
	ExternalURL string         `gorm:"size:1024" json:"externalUrl,omitempty"`

	// 完成要求，最多一个；RequirementType 为空表示无要求
	RequirementType RequirementType `gorm:"size:32;default:''" json:"requirementType,omitempty"`
	MinScore        float64         `gorm:"default:0" json:"minScore,omitempty"`
}

func (ModuleItem) TableName() string {
	return "module_items"
}

// Requirement 返回该项的完成要求，无要求时返回 nil
func (i *ModuleItem) Requirement() *CompletionRequirement {
	if i.RequirementType == "" {
		return nil
	}
	req := &CompletionRequirement{Type: i.RequirementType}
	if i.RequirementType == MinScore {
		req.MinScore = &i.MinScore
	}
	return req
}

// CompletionRequirement 完成要求的标签变体
type CompletionRequirement struct {
	Type     RequirementType `json:"type"`
	MinScore *float64        `json:"min_score,omitempty"`
}
