package service

import (
	"classroom_backend/internal/model"
	"classroom_backend/internal/util"
	"sort"
	"time"
)

// ProgressInput 一次模块进度求值所需的全部快照。
// 求值是只读的纯函数：不触库、不写缓存
type ProgressInput struct {
	Module       *model.CourseModule
	Items        []model.ModuleItem // 将按 position 排序求值
	PrereqStates map[uint]model.ProgressState
	Events       []model.RequirementEvent // 该用户针对这些模块项的事件
	Prior        *model.ModuleProgress    // 上一次求值结果，用于保留首次完成时间；可为 nil
	Now          time.Time
}

// EvaluateModule 计算用户对单个模块的进度。
// 优先级：解锁时间 > 前置模块 > 逐项完成要求。
// 前置模块 ID 引用不存在的模块时返回 ConfigurationError
func EvaluateModule(in ProgressInput) (*model.ModuleProgress, error) {
	progress := &model.ModuleProgress{
		UserID:   userIDFromEvents(in.Events, in.Prior),
		ModuleID: in.Module.ID,
	}

	// 1. 时间闸门优先于一切
	if in.Module.UnlockAt != nil && in.Now.Before(*in.Module.UnlockAt) {
		progress.State = model.StateLocked
		return progress, nil
	}

	// 2. 前置模块必须全部 completed
	for _, prereqID := range in.Module.Prerequisites() {
		state, ok := in.PrereqStates[prereqID]
		if !ok {
			return nil, &util.ConfigurationError{
				Detail: "prerequisite references unknown module",
				ID:     prereqID,
			}
		}
		if state != model.StateCompleted {
			progress.State = model.StateLocked
			return progress, nil
		}
	}

	// 3-4. 按 position 逐项匹配要求；开启顺序进度时，
	// 前面的要求未满足则后面的要求不可达
	items := make([]model.ModuleItem, len(in.Items))
	copy(items, in.Items)
	sort.Slice(items, func(i, j int) bool { return items[i].Position < items[j].Position })

	total, met := 0, 0
	reachable := true
	for i := range items {
		req := items[i].Requirement()
		if req == nil {
			continue
		}
		total++
		if in.Module.RequireSequentialProgress && !reachable {
			continue
		}
		if requirementMet(&items[i], req, in.Events) {
			met++
		} else {
			reachable = false
		}
	}

	// 5. 聚合状态与完成时间戳
	switch {
	case total == 0 || met == 0:
		progress.State = model.StateUnlocked
	case met < total:
		progress.State = model.StateStarted
	default:
		progress.State = model.StateCompleted
	}

	if progress.State == model.StateCompleted {
		if in.Prior != nil && in.Prior.State == model.StateCompleted && in.Prior.CompletedAt != nil {
			progress.CompletedAt = in.Prior.CompletedAt
		} else {
			now := in.Now
			progress.CompletedAt = &now
		}
	}

	return progress, nil
}

// ItemCompletion 单项投影：返回该项的要求及其是否已满足。
// 无要求的项返回 (nil, false)
func ItemCompletion(item *model.ModuleItem, events []model.RequirementEvent) (*model.CompletionRequirement, bool) {
	req := item.Requirement()
	if req == nil {
		return nil, false
	}
	return req, requirementMet(item, req, events)
}

func requirementMet(item *model.ModuleItem, req *model.CompletionRequirement, events []model.RequirementEvent) bool {
	for i := range events {
		if events[i].ItemID != item.ID {
			continue
		}
		if events[i].Satisfies(req) {
			return true
		}
	}
	return false
}

// ValidatePrerequisites 校验前置声明：只能引用同课程中 position 更小的模块
func ValidatePrerequisites(mod *model.CourseModule, siblings []model.CourseModule) error {
	byID := make(map[uint]*model.CourseModule, len(siblings))
	for i := range siblings {
		byID[siblings[i].ID] = &siblings[i]
	}
	for _, prereqID := range mod.Prerequisites() {
		prereq, ok := byID[prereqID]
		if !ok {
			return &util.ConfigurationError{Detail: "prerequisite references unknown module", ID: prereqID}
		}
		if prereq.Position >= mod.Position {
			return &util.ConfigurationError{Detail: "prerequisite must precede module", ID: prereqID}
		}
	}
	return nil
}

func userIDFromEvents(events []model.RequirementEvent, prior *model.ModuleProgress) uint {
	if prior != nil {
		return prior.UserID
	}
	if len(events) > 0 {
		return events[0].UserID
	}
	return 0
}
