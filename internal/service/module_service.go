package service

import (
	"classroom_backend/internal/model"
	"classroom_backend/internal/repository"
	"classroom_backend/internal/util"
	"classroom_backend/pkg/logger"
	"classroom_backend/pkg/monitoring"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

type ModuleService struct {
	ModuleRepo   *repository.CourseModuleRepository
	CourseRepo   *repository.CourseRepository
	EventRepo    *repository.EventRepository
	ProgressRepo *repository.ProgressRepository
	Content      *ContentService
	Redis        *redis.Client
}

func NewModuleService(
	moduleRepo *repository.CourseModuleRepository,
	courseRepo *repository.CourseRepository,
	eventRepo *repository.EventRepository,
	progressRepo *repository.ProgressRepository,
	content *ContentService,
	rdb *redis.Client,
) *ModuleService {
	return &ModuleService{
		ModuleRepo:   moduleRepo,
		CourseRepo:   courseRepo,
		EventRepo:    eventRepo,
		ProgressRepo: progressRepo,
		Content:      content,
		Redis:        rdb,
	}
}

// ModuleJSON 模块列表/详情的序列化结构；字段名是对外契约
type ModuleJSON struct {
	ID                        uint                `json:"id"`
	Name                      string              `json:"name"`
	UnlockAt                  *time.Time          `json:"unlock_at"`
	Position                  int                 `json:"position"`
	RequireSequentialProgress bool                `json:"require_sequential_progress"`
	PrerequisiteModuleIDs     []uint              `json:"prerequisite_module_ids"`
	State                     model.ProgressState `json:"state,omitempty"`
	CompletedAt               *time.Time          `json:"completed_at,omitempty"`
}

// RequirementJSON 完成要求序列化；Completed 仅对学生视角出现
type RequirementJSON struct {
	Type      model.RequirementType `json:"type"`
	MinScore  *float64              `json:"min_score,omitempty"`
	Completed *bool                 `json:"completed,omitempty"`
}

// ModuleItemJSON 模块项序列化结构
type ModuleItemJSON struct {
	ID                    uint                 `json:"id"`
	Type                  model.ModuleItemType `json:"type"`
	Title                 string               `json:"title"`
	Position              int                  `json:"position"`
	Indent                int                  `json:"indent"`
	HTMLURL               string               `json:"html_url,omitempty"`
	URL                   string               `json:"url,omitempty"`
	CompletionRequirement *RequirementJSON     `json:"completion_requirement,omitempty"`
}

// ListModules 课程下全部模块，position 升序
func (s *ModuleService) ListModules(courseID uint) ([]ModuleJSON, error) {
	mods, err := s.ModuleRepo.FindByCourse(courseID)
	if err != nil {
		return nil, err
	}
	result := make([]ModuleJSON, len(mods))
	for i := range mods {
		result[i] = s.moduleJSON(&mods[i])
	}
	return result, nil
}

// GetModule 单个模块；userID 非 0 时附带该用户的 state 与 completed_at
func (s *ModuleService) GetModule(courseID, moduleID, userID uint, now time.Time) (*ModuleJSON, error) {
	mod, err := s.findModule(courseID, moduleID)
	if err != nil {
		return nil, err
	}

	result := s.moduleJSON(mod)
	if userID != 0 {
		progress, err := s.EvaluateForUser(mod, userID, now)
		if err != nil {
			return nil, err
		}
		result.State = progress.State
		result.CompletedAt = progress.CompletedAt
	}
	return &result, nil
}

// ListItems 模块项列表；includeCompletion 时附带该用户的完成状态
func (s *ModuleService) ListItems(courseID, moduleID, userID uint) ([]ModuleItemJSON, error) {
	mod, err := s.findModule(courseID, moduleID)
	if err != nil {
		return nil, err
	}
	items, err := s.ModuleRepo.FindItems(mod.ID)
	if err != nil {
		return nil, err
	}

	var events []model.RequirementEvent
	if userID != 0 {
		events, err = s.EventRepo.FindByUserAndItems(userID, itemIDs(items))
		if err != nil {
			return nil, err
		}
	}

	result := make([]ModuleItemJSON, len(items))
	for i := range items {
		result[i] = s.itemJSON(courseID, &items[i], events, userID != 0)
	}
	return result, nil
}

// GetItem 单个模块项
func (s *ModuleService) GetItem(courseID, moduleID, itemID, userID uint) (*ModuleItemJSON, error) {
	mod, err := s.findModule(courseID, moduleID)
	if err != nil {
		return nil, err
	}
	item, err := s.ModuleRepo.FindItem(itemID)
	if err != nil || item.ModuleID != mod.ID {
		return nil, util.ErrItemNotFound
	}

	var events []model.RequirementEvent
	if userID != 0 {
		events, err = s.EventRepo.FindByUserAndItems(userID, []uint{item.ID})
		if err != nil {
			return nil, err
		}
	}

	result := s.itemJSON(courseID, item, events, userID != 0)
	return &result, nil
}

// RedirectURL 外链项的跳转地址；跳转即记录一次 view 事件
func (s *ModuleService) RedirectURL(courseID, itemID, userID uint) (string, error) {
	item, err := s.ModuleRepo.FindItem(itemID)
	if err != nil {
		return "", util.ErrItemNotFound
	}
	if item.Type != model.ItemExternalUrl {
		return "", util.ErrNotExternalURL
	}
	mod, err := s.ModuleRepo.FindByID(item.ModuleID)
	if err != nil || mod.CourseID != courseID {
		return "", util.ErrItemNotFound
	}

	if userID != 0 {
		if err := s.RecordEvent(userID, item.ID, model.EventView, 0); err != nil {
			return "", err
		}
	}
	return item.ExternalURL, nil
}

// RecordEvent 追加行为事件并失效相关进度缓存。
// 事件是唯一的变更入口：进度永远由事件历史重新推导
func (s *ModuleService) RecordEvent(userID, itemID uint, kind model.EventKind, score float64) error {
	item, err := s.ModuleRepo.FindItem(itemID)
	if err != nil {
		return util.ErrItemNotFound
	}

	event := &model.RequirementEvent{
		UserID: userID,
		ItemID: item.ID,
		Kind:   kind,
		Score:  score,
	}
	if err := s.EventRepo.Record(event); err != nil {
		return err
	}

	mod, err := s.ModuleRepo.FindByID(item.ModuleID)
	if err != nil {
		return err
	}
	s.invalidateCourse(userID, mod.CourseID)
	return nil
}

// EvaluateForUser 求取用户对单个模块的进度。
// 前置模块按 position 顺序先行求值（前置只能引用更小的 position）；
// Redis 缓存仅为旁路加速，未命中时总是从事件历史重算
func (s *ModuleService) EvaluateForUser(mod *model.CourseModule, userID uint, now time.Time) (*model.ModuleProgress, error) {
	if cached := s.cacheGet(userID, mod.ID); cached != nil {
		monitoring.ProgressCacheHits.WithLabelValues("hit").Inc()
		return cached, nil
	}
	monitoring.ProgressCacheHits.WithLabelValues("miss").Inc()

	siblings, err := s.ModuleRepo.FindByCourse(mod.CourseID)
	if err != nil {
		return nil, err
	}

	states := make(map[uint]model.ProgressState, len(siblings))
	var target *model.ModuleProgress
	for i := range siblings {
		progress, err := s.evaluateOne(&siblings[i], userID, states, now)
		if err != nil {
			return nil, err
		}
		states[siblings[i].ID] = progress.State
		if siblings[i].ID == mod.ID {
			target = progress
		}
	}
	if target == nil {
		return nil, util.ErrModuleNotFound
	}

	s.cacheSet(userID, mod.ID, target)
	return target, nil
}

func (s *ModuleService) evaluateOne(mod *model.CourseModule, userID uint, states map[uint]model.ProgressState, now time.Time) (*model.ModuleProgress, error) {
	items, err := s.ModuleRepo.FindItems(mod.ID)
	if err != nil {
		return nil, err
	}
	events, err := s.EventRepo.FindByUserAndItems(userID, itemIDs(items))
	if err != nil {
		return nil, err
	}
	prior, err := s.ProgressRepo.Find(userID, mod.ID)
	if err != nil {
		return nil, err
	}

	progress, err := EvaluateModule(ProgressInput{
		Module:       mod,
		Items:        items,
		PrereqStates: states,
		Events:       events,
		Prior:        prior,
		Now:          now,
	})
	if err != nil {
		return nil, err
	}
	progress.UserID = userID
	monitoring.ModuleEvaluations.WithLabelValues(string(progress.State)).Inc()

	// 落库仅为记住首次完成时间戳；状态本身随时可重算
	if err := s.ProgressRepo.Upsert(progress); err != nil {
		return nil, err
	}
	return progress, nil
}

// CreateModule 新建模块；position 稠密追加，前置声明先校验
func (s *ModuleService) CreateModule(courseID uint, name string, unlockAt *time.Time, sequential bool, prereqIDs []uint) (*ModuleJSON, error) {
	if _, err := s.CourseRepo.FindByID(courseID); err != nil {
		return nil, util.ErrCourseNotFound
	}
	position, err := s.ModuleRepo.NextPosition(courseID)
	if err != nil {
		return nil, err
	}

	mod := &model.CourseModule{
		CourseID:                  courseID,
		Name:                      name,
		Position:                  position,
		UnlockAt:                  unlockAt,
		RequireSequentialProgress: sequential,
	}
	mod.SetPrerequisites(prereqIDs)

	siblings, err := s.ModuleRepo.FindByCourse(courseID)
	if err != nil {
		return nil, err
	}
	if err := ValidatePrerequisites(mod, siblings); err != nil {
		return nil, err
	}

	if err := s.ModuleRepo.Create(mod); err != nil {
		return nil, err
	}
	result := s.moduleJSON(mod)
	return &result, nil
}

// UpdateModule 更新模块定义；要求集变化后既有进度在下次求值时自动重算
func (s *ModuleService) UpdateModule(courseID, moduleID uint, name *string, unlockAt *time.Time, clearUnlock bool, sequential *bool, prereqIDs []uint) (*ModuleJSON, error) {
	mod, err := s.findModule(courseID, moduleID)
	if err != nil {
		return nil, err
	}

	if name != nil {
		mod.Name = *name
	}
	if clearUnlock {
		mod.UnlockAt = nil
	} else if unlockAt != nil {
		mod.UnlockAt = unlockAt
	}
	if sequential != nil {
		mod.RequireSequentialProgress = *sequential
	}
	if prereqIDs != nil {
		mod.SetPrerequisites(prereqIDs)
	}

	siblings, err := s.ModuleRepo.FindByCourse(courseID)
	if err != nil {
		return nil, err
	}
	if err := ValidatePrerequisites(mod, siblings); err != nil {
		return nil, err
	}

	if err := s.ModuleRepo.Save(mod); err != nil {
		return nil, err
	}
	result := s.moduleJSON(mod)
	return &result, nil
}

// CreateItem 向模块追加一项；SubHeader 不能携带完成要求
func (s *ModuleService) CreateItem(courseID, moduleID uint, item *model.ModuleItem) (*ModuleItemJSON, error) {
	mod, err := s.findModule(courseID, moduleID)
	if err != nil {
		return nil, err
	}
	if item.Type == model.ItemSubHeader && item.RequirementType != "" {
		return nil, errors.New("sub-headers cannot have completion requirements")
	}
	if item.RequirementType == model.MinScore && item.MinScore <= 0 {
		return nil, errors.New("min_score requirement needs a positive threshold")
	}
	if item.Indent < 0 {
		item.Indent = 0
	}

	position, err := s.ModuleRepo.NextItemPosition(mod.ID)
	if err != nil {
		return nil, err
	}
	item.ModuleID = mod.ID
	item.Position = position

	if err := s.ModuleRepo.CreateItem(item); err != nil {
		return nil, err
	}
	result := s.itemJSON(courseID, item, nil, false)
	return &result, nil
}

// DeleteItem 删除模块项并压实兄弟项的 position
func (s *ModuleService) DeleteItem(courseID, moduleID, itemID uint) error {
	mod, err := s.findModule(courseID, moduleID)
	if err != nil {
		return err
	}
	item, err := s.ModuleRepo.FindItem(itemID)
	if err != nil || item.ModuleID != mod.ID {
		return util.ErrItemNotFound
	}
	if err := s.ModuleRepo.DeleteItem(item.ID); err != nil {
		return err
	}
	return s.ModuleRepo.ReindexItems(mod.ID)
}

func (s *ModuleService) findModule(courseID, moduleID uint) (*model.CourseModule, error) {
	mod, err := s.ModuleRepo.FindByID(moduleID)
	if err != nil || mod.CourseID != courseID {
		return nil, util.ErrModuleNotFound
	}
	return mod, nil
}

func (s *ModuleService) moduleJSON(mod *model.CourseModule) ModuleJSON {
	prereqs := mod.Prerequisites()
	if prereqs == nil {
		prereqs = []uint{}
	}
	return ModuleJSON{
		ID:                        mod.ID,
		Name:                      mod.Name,
		UnlockAt:                  mod.UnlockAt,
		Position:                  mod.Position,
		RequireSequentialProgress: mod.RequireSequentialProgress,
		PrerequisiteModuleIDs:     prereqs,
	}
}

func (s *ModuleService) itemJSON(courseID uint, item *model.ModuleItem, events []model.RequirementEvent, includeCompletion bool) ModuleItemJSON {
	result := ModuleItemJSON{
		ID:       item.ID,
		Type:     item.Type,
		Title:    item.Title,
		Position: item.Position,
		Indent:   item.Indent,
		HTMLURL:  s.Content.HTMLURL(courseID, item),
		URL:      s.Content.ContentURL(courseID, item),
	}

	req, completed := ItemCompletion(item, events)
	if req != nil {
		result.CompletionRequirement = &RequirementJSON{
			Type:     req.Type,
			MinScore: req.MinScore,
		}
		if includeCompletion {
			result.CompletionRequirement.Completed = &completed
		}
	}
	return result
}

func itemIDs(items []model.ModuleItem) []uint {
	ids := make([]uint, len(items))
	for i := range items {
		ids[i] = items[i].ID
	}
	return ids
}

func progressCacheKey(userID, moduleID uint) string {
	return fmt.Sprintf("progress:%d:%d", userID, moduleID)
}

func (s *ModuleService) cacheGet(userID, moduleID uint) *model.ModuleProgress {
	if s.Redis == nil {
		return nil
	}
	data, err := s.Redis.Get(context.Background(), progressCacheKey(userID, moduleID)).Bytes()
	if err != nil {
		return nil
	}
	var progress model.ModuleProgress
	if err := json.Unmarshal(data, &progress); err != nil {
		return nil
	}
	return &progress
}

func (s *ModuleService) cacheSet(userID, moduleID uint, progress *model.ModuleProgress) {
	if s.Redis == nil {
		return
	}
	data, err := json.Marshal(progress)
	if err != nil {
		return
	}
	if err := s.Redis.Set(context.Background(), progressCacheKey(userID, moduleID), data, 5*time.Minute).Err(); err != nil {
		logger.Log.Warn("Failed to cache module progress", zap.Error(err))
	}
}

// invalidateCourse 新事件到达后丢弃该用户在整门课程上的进度缓存；
// 事件可能解锁依赖该模块的后继模块，因此按课程粒度失效
func (s *ModuleService) invalidateCourse(userID, courseID uint) {
	if s.Redis == nil {
		return
	}
	mods, err := s.ModuleRepo.FindByCourse(courseID)
	if err != nil {
		return
	}
	keys := make([]string, len(mods))
	for i := range mods {
		keys[i] = progressCacheKey(userID, mods[i].ID)
	}
	if len(keys) > 0 {
		s.Redis.Del(context.Background(), keys...)
	}
}
