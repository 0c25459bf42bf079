package service

import (
	"classroom_backend/internal/model"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func boolPtr(v bool) *bool { return &v }

func rootAccount(id uint) model.Account {
	acc := model.Account{Name: "Root"}
	acc.ID = id
	return acc
}

func subAccount(id, parentID, rootID uint) model.Account {
	acc := model.Account{Name: "Sub", ParentAccountID: &parentID, RootAccountID: &rootID}
	acc.ID = id
	return acc
}

func override(accountID uint, role, permission string, enabled, locked *bool) model.RoleOverride {
	return model.RoleOverride{
		AccountID:  accountID,
		Role:       role,
		Permission: permission,
		Enabled:    enabled,
		Locked:     locked,
	}
}

func TestResolvePermissionDefaults(t *testing.T) {
	set := &OverrideSet{
		Chain:     []model.Account{rootAccount(1)},
		Overrides: map[uint][]model.RoleOverride{},
	}

	eff := ResolvePermission(set, model.RoleAccountAdmin, "manage_courses")
	require.NotNil(t, eff)
	assert.True(t, eff.Enabled)
	assert.False(t, eff.Locked)
	assert.False(t, eff.Explicit)
	assert.False(t, eff.Readonly)
	assert.Nil(t, eff.PriorDefault)

	eff = ResolvePermission(set, model.RoleStudentEnrollment, "manage_courses")
	require.NotNil(t, eff)
	assert.False(t, eff.Enabled)

	assert.Nil(t, ResolvePermission(set, model.RoleAccountAdmin, "no_such_permission"))
}

func TestResolvePermissionChainFold(t *testing.T) {
	root := rootAccount(1)
	sub := subAccount(2, 1, 1)
	set := &OverrideSet{
		Chain: []model.Account{root, sub},
		Overrides: map[uint][]model.RoleOverride{
			1: {override(1, model.RoleTeacherEnrollment, "manage_grades", boolPtr(false), nil)},
			2: {override(2, model.RoleTeacherEnrollment, "manage_grades", nil, boolPtr(true))},
		},
	}

	// 根关了 enabled，子账户只补了 locked；缺省字段沿链继承
	eff := ResolvePermission(set, model.RoleTeacherEnrollment, "manage_grades")
	require.NotNil(t, eff)
	assert.False(t, eff.Enabled)
	assert.True(t, eff.Locked)
	assert.True(t, eff.Explicit)
	require.NotNil(t, eff.PriorDefault)
	assert.True(t, *eff.PriorDefault)
}

func TestResolvePermissionNearerOverrideWins(t *testing.T) {
	root := rootAccount(1)
	sub := subAccount(2, 1, 1)
	set := &OverrideSet{
		Chain: []model.Account{root, sub},
		Overrides: map[uint][]model.RoleOverride{
			1: {override(1, model.RoleStudentEnrollment, "post_to_forum", boolPtr(false), nil)},
			2: {override(2, model.RoleStudentEnrollment, "post_to_forum", boolPtr(true), nil)},
		},
	}

	eff := ResolvePermission(set, model.RoleStudentEnrollment, "post_to_forum")
	require.NotNil(t, eff)
	assert.True(t, eff.Enabled)
	// 最终值回到默认，prior_default 不回显
	assert.Nil(t, eff.PriorDefault)
}

func TestResolvePermissionReadonly(t *testing.T) {
	set := &OverrideSet{
		Chain: []model.Account{rootAccount(1)},
		Overrides: map[uint][]model.RoleOverride{
			1: {override(1, model.RoleStudentEnrollment, "read_forum", boolPtr(false), nil)},
		},
	}

	// 只读权限忽略覆盖：恒为默认值且 locked
	eff := ResolvePermission(set, model.RoleStudentEnrollment, "read_forum")
	require.NotNil(t, eff)
	assert.True(t, eff.Enabled)
	assert.True(t, eff.Locked)
	assert.True(t, eff.Readonly)
	assert.False(t, eff.Explicit)

	// 管理员不在只读集合里，可正常覆盖
	eff = ResolvePermission(set, model.RoleAccountAdmin, "read_forum")
	require.NotNil(t, eff)
	assert.False(t, eff.Readonly)
}

func TestListEffectivePermissionsOmitsRootOnly(t *testing.T) {
	root := rootAccount(1)
	sub := subAccount(2, 1, 1)

	atRoot := ListEffectivePermissions(&OverrideSet{
		Chain:     []model.Account{root},
		Overrides: map[uint][]model.RoleOverride{},
	}, model.RoleAccountAdmin)
	assert.Contains(t, atRoot, "become_user")
	assert.Contains(t, atRoot, "site_admin")

	atSub := ListEffectivePermissions(&OverrideSet{
		Chain:     []model.Account{root, sub},
		Overrides: map[uint][]model.RoleOverride{},
	}, model.RoleAccountAdmin)
	// 仅根账户可用的权限在子账户整体省略
	assert.NotContains(t, atSub, "become_user")
	assert.NotContains(t, atSub, "site_admin")
	assert.Contains(t, atSub, "manage_courses")
}

func TestOverrideUpdateShouldPersist(t *testing.T) {
	// explicit + enabled：落库
	u := OverrideUpdate{Explicit: true, Enabled: boolPtr(false)}
	assert.True(t, u.ShouldPersist())

	// 仅 explicit 没有 enabled：不落库
	u = OverrideUpdate{Explicit: true}
	assert.False(t, u.ShouldPersist())

	// 仅 enabled 没有 explicit，locked 为假：不落库
	u = OverrideUpdate{Enabled: boolPtr(true), Locked: boolPtr(false)}
	assert.False(t, u.ShouldPersist())

	// locked 为真：单独成立
	u = OverrideUpdate{Locked: boolPtr(true)}
	assert.True(t, u.ShouldPersist())
}

func TestOverrideUpdateBuildOverride(t *testing.T) {
	u := OverrideUpdate{Explicit: false, Enabled: boolPtr(true), Locked: boolPtr(true)}
	ov := u.BuildOverride(2, model.RoleStudentEnrollment, "post_to_forum")

	// 没有 explicit 时 enabled 不写入，只保留 locked
	assert.Nil(t, ov.Enabled)
	require.NotNil(t, ov.Locked)
	assert.True(t, *ov.Locked)
	assert.Equal(t, uint(2), ov.AccountID)
}

func TestFilterUpdatesDropsUnavailable(t *testing.T) {
	sub := subAccount(2, 1, 1)
	updates := map[string]OverrideUpdate{
		"become_user":    {Explicit: true, Enabled: boolPtr(true)},
		"manage_courses": {Explicit: true, Enabled: boolPtr(true)},
		"made_up":        {Explicit: true, Enabled: boolPtr(true)},
	}

	kept := FilterUpdates(&sub, updates)

	// 不可用与未注册的权限静默丢弃，其余独立生效
	assert.NotContains(t, kept, "become_user")
	assert.NotContains(t, kept, "made_up")
	assert.Contains(t, kept, "manage_courses")

	root := rootAccount(1)
	kept = FilterUpdates(&root, updates)
	assert.Contains(t, kept, "become_user")
}
