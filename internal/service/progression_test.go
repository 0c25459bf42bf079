package service

import (
	"classroom_backend/internal/model"
	"classroom_backend/internal/util"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testModule(id uint) *model.CourseModule {
	mod := &model.CourseModule{Name: "第一章"}
	mod.ID = id
	return mod
}

func testItem(id uint, position int, reqType model.RequirementType, minScore float64) model.ModuleItem {
	item := model.ModuleItem{
		Type:            model.ItemAssignment,
		Position:        position,
		RequirementType: reqType,
		MinScore:        minScore,
	}
	item.ID = id
	return item
}

func testEvent(userID, itemID uint, kind model.EventKind, score float64) model.RequirementEvent {
	return model.RequirementEvent{UserID: userID, ItemID: itemID, Kind: kind, Score: score}
}

func TestEvaluateModuleNoRequirements(t *testing.T) {
	now := time.Now()
	mod := testModule(1)
	items := []model.ModuleItem{
		testItem(10, 1, "", 0),
		testItem(11, 2, "", 0),
	}

	progress, err := EvaluateModule(ProgressInput{Module: mod, Items: items, Now: now})
	require.NoError(t, err)

	// 没有任何完成要求的模块永远停在 unlocked，不会自动 completed
	assert.Equal(t, model.StateUnlocked, progress.State)
	assert.Nil(t, progress.CompletedAt)
}

func TestEvaluateModuleUnlockAtGate(t *testing.T) {
	now := time.Now()
	future := now.Add(time.Hour)
	mod := testModule(1)
	mod.UnlockAt = &future
	items := []model.ModuleItem{testItem(10, 1, model.MustView, 0)}
	events := []model.RequirementEvent{testEvent(7, 10, model.EventView, 0)}

	progress, err := EvaluateModule(ProgressInput{Module: mod, Items: items, Events: events, Now: now})
	require.NoError(t, err)

	// 解锁时间未到时即使要求全部满足也保持 locked
	assert.Equal(t, model.StateLocked, progress.State)

	progress, err = EvaluateModule(ProgressInput{Module: mod, Items: items, Events: events, Now: future.Add(time.Minute)})
	require.NoError(t, err)
	assert.Equal(t, model.StateCompleted, progress.State)
}

func TestEvaluateModulePrerequisites(t *testing.T) {
	now := time.Now()
	mod := testModule(2)
	mod.SetPrerequisites([]uint{1})

	progress, err := EvaluateModule(ProgressInput{
		Module:       mod,
		PrereqStates: map[uint]model.ProgressState{1: model.StateStarted},
		Now:          now,
	})
	require.NoError(t, err)
	assert.Equal(t, model.StateLocked, progress.State)

	progress, err = EvaluateModule(ProgressInput{
		Module:       mod,
		PrereqStates: map[uint]model.ProgressState{1: model.StateCompleted},
		Now:          now,
	})
	require.NoError(t, err)
	assert.Equal(t, model.StateUnlocked, progress.State)
}

func TestEvaluateModuleDanglingPrerequisite(t *testing.T) {
	mod := testModule(2)
	mod.SetPrerequisites([]uint{99})

	_, err := EvaluateModule(ProgressInput{Module: mod, PrereqStates: map[uint]model.ProgressState{}, Now: time.Now()})
	require.Error(t, err)
	assert.True(t, util.IsConfigurationError(err))
}

func TestEvaluateModuleStateProgression(t *testing.T) {
	now := time.Now()
	mod := testModule(1)
	items := []model.ModuleItem{
		testItem(10, 1, model.MustView, 0),
		testItem(11, 2, model.MustSubmit, 0),
		testItem(12, 3, "", 0),
		testItem(13, 4, model.MinScore, 60),
	}

	// 无事件：unlocked
	progress, err := EvaluateModule(ProgressInput{Module: mod, Items: items, Now: now})
	require.NoError(t, err)
	assert.Equal(t, model.StateUnlocked, progress.State)

	// 满足一部分：started
	events := []model.RequirementEvent{testEvent(7, 10, model.EventView, 0)}
	progress, err = EvaluateModule(ProgressInput{Module: mod, Items: items, Events: events, Now: now})
	require.NoError(t, err)
	assert.Equal(t, model.StateStarted, progress.State)
	assert.Nil(t, progress.CompletedAt)

	// 分数不够：仍是 started
	events = append(events,
		testEvent(7, 11, model.EventSubmit, 0),
		testEvent(7, 13, model.EventScore, 59),
	)
	progress, err = EvaluateModule(ProgressInput{Module: mod, Items: items, Events: events, Now: now})
	require.NoError(t, err)
	assert.Equal(t, model.StateStarted, progress.State)

	// 全部满足：completed，并盖上完成时间
	events[2] = testEvent(7, 13, model.EventScore, 60)
	progress, err = EvaluateModule(ProgressInput{Module: mod, Items: items, Events: events, Now: now})
	require.NoError(t, err)
	assert.Equal(t, model.StateCompleted, progress.State)
	require.NotNil(t, progress.CompletedAt)
	assert.Equal(t, now, *progress.CompletedAt)
	assert.Equal(t, uint(7), progress.UserID)
}

func TestEvaluateModuleCompletedAtPreserved(t *testing.T) {
	mod := testModule(1)
	items := []model.ModuleItem{testItem(10, 1, model.MustView, 0)}
	events := []model.RequirementEvent{testEvent(7, 10, model.EventView, 0)}

	firstAt := time.Now().Add(-24 * time.Hour)
	prior := &model.ModuleProgress{UserID: 7, ModuleID: 1, State: model.StateCompleted, CompletedAt: &firstAt}

	progress, err := EvaluateModule(ProgressInput{Module: mod, Items: items, Events: events, Prior: prior, Now: time.Now()})
	require.NoError(t, err)

	// 重复求值保持首次完成时间，不随 Now 漂移
	assert.Equal(t, model.StateCompleted, progress.State)
	require.NotNil(t, progress.CompletedAt)
	assert.Equal(t, firstAt, *progress.CompletedAt)
}

func TestEvaluateModuleRegressionClearsCompletedAt(t *testing.T) {
	mod := testModule(1)
	items := []model.ModuleItem{
		testItem(10, 1, model.MustView, 0),
		testItem(11, 2, model.MustSubmit, 0),
	}
	// 只剩 view 事件，模块定义新增了 must_submit 要求
	events := []model.RequirementEvent{testEvent(7, 10, model.EventView, 0)}

	firstAt := time.Now().Add(-time.Hour)
	prior := &model.ModuleProgress{UserID: 7, ModuleID: 1, State: model.StateCompleted, CompletedAt: &firstAt}

	progress, err := EvaluateModule(ProgressInput{Module: mod, Items: items, Events: events, Prior: prior, Now: time.Now()})
	require.NoError(t, err)

	// 完成是推导值：要求集变化后状态回退，时间戳一并清空
	assert.Equal(t, model.StateStarted, progress.State)
	assert.Nil(t, progress.CompletedAt)
}

func TestEvaluateModuleSequentialProgress(t *testing.T) {
	now := time.Now()
	mod := testModule(1)
	mod.RequireSequentialProgress = true
	items := []model.ModuleItem{
		testItem(10, 1, model.MustView, 0),
		testItem(11, 2, model.MustSubmit, 0),
		testItem(12, 3, model.MustView, 0),
	}

	// 第二项未满足时第三项不可达：即使有事件也不计入 met
	events := []model.RequirementEvent{
		testEvent(7, 10, model.EventView, 0),
		testEvent(7, 12, model.EventView, 0),
	}
	progress, err := EvaluateModule(ProgressInput{Module: mod, Items: items, Events: events, Now: now})
	require.NoError(t, err)
	assert.Equal(t, model.StateStarted, progress.State)

	// 补上第二项后全部可达
	events = append(events, testEvent(7, 11, model.EventSubmit, 0))
	progress, err = EvaluateModule(ProgressInput{Module: mod, Items: items, Events: events, Now: now})
	require.NoError(t, err)
	assert.Equal(t, model.StateCompleted, progress.State)
}

func TestEvaluateModuleIdempotent(t *testing.T) {
	now := time.Now()
	mod := testModule(1)
	items := []model.ModuleItem{testItem(10, 1, model.MustView, 0)}
	events := []model.RequirementEvent{
		testEvent(7, 10, model.EventView, 0),
		testEvent(7, 10, model.EventView, 0),
	}

	first, err := EvaluateModule(ProgressInput{Module: mod, Items: items, Events: events, Now: now})
	require.NoError(t, err)
	second, err := EvaluateModule(ProgressInput{Module: mod, Items: items, Events: events, Prior: first, Now: now.Add(time.Hour)})
	require.NoError(t, err)

	assert.Equal(t, first.State, second.State)
	assert.Equal(t, first.CompletedAt, second.CompletedAt)
}

func TestItemCompletion(t *testing.T) {
	item := testItem(10, 1, model.MinScore, 80)

	req, done := ItemCompletion(&item, nil)
	require.NotNil(t, req)
	assert.Equal(t, model.MinScore, req.Type)
	require.NotNil(t, req.MinScore)
	assert.Equal(t, 80.0, *req.MinScore)
	assert.False(t, done)

	_, done = ItemCompletion(&item, []model.RequirementEvent{testEvent(7, 10, model.EventScore, 85)})
	assert.True(t, done)

	noReq := testItem(11, 2, "", 0)
	req, done = ItemCompletion(&noReq, nil)
	assert.Nil(t, req)
	assert.False(t, done)
}

func TestValidatePrerequisites(t *testing.T) {
	first := model.CourseModule{Position: 1}
	first.ID = 1
	second := model.CourseModule{Position: 2}
	second.ID = 2
	siblings := []model.CourseModule{first, second}

	mod := &model.CourseModule{Position: 2}
	mod.ID = 2
	mod.SetPrerequisites([]uint{1})
	assert.NoError(t, ValidatePrerequisites(mod, siblings))

	// 引用不存在的模块
	mod.SetPrerequisites([]uint{42})
	err := ValidatePrerequisites(mod, siblings)
	assert.True(t, util.IsConfigurationError(err))

	// 前置必须出现在本模块之前
	low := &model.CourseModule{Position: 1}
	low.ID = 1
	low.SetPrerequisites([]uint{2})
	err = ValidatePrerequisites(low, siblings)
	assert.True(t, util.IsConfigurationError(err))
}
