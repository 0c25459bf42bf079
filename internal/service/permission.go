package service

import (
	"classroom_backend/internal/model"
)

// EffectivePermission 解析后的有效权限；字段名即响应契约
type EffectivePermission struct {
	Enabled      bool  `json:"enabled"`
	Locked       bool  `json:"locked"`
	Readonly     bool  `json:"readonly"`
	Explicit     bool  `json:"explicit"`
	PriorDefault *bool `json:"prior_default,omitempty"`
}

// OverrideSet 覆盖链：沿父链从目标账户上溯到根后反转得到，
// 根在前、目标账户在后；解析时从左到右折叠，越靠近目标的覆盖优先
type OverrideSet struct {
	Chain     []model.Account
	Overrides map[uint][]model.RoleOverride // accountID -> 该账户的覆盖
}

// ResolvePermission 计算角色在覆盖链末端账户上的有效权限。
// 缺省字段沿链继承前值而不是回落到全局默认；
// 只读权限忽略覆盖，恒为 locked
func ResolvePermission(set *OverrideSet, role, permission string) *EffectivePermission {
	spec := model.LookupPermission(permission)
	if spec == nil {
		return nil
	}

	defaultEnabled := spec.DefaultEnabled(role)
	eff := &EffectivePermission{
		Enabled:  defaultEnabled,
		Readonly: spec.Readonly(role),
	}

	if eff.Readonly {
		eff.Locked = true
		return eff
	}

	for _, account := range set.Chain {
		for _, ov := range set.Overrides[account.ID] {
			if ov.Role != role || ov.Permission != permission {
				continue
			}
			if ov.Enabled != nil {
				eff.Enabled = *ov.Enabled
				eff.Explicit = true
			}
			if ov.Locked != nil {
				eff.Locked = *ov.Locked
			}
		}
	}

	// prior_default 仅在显式覆盖改变了默认值时回显，供审计/界面使用
	if eff.Explicit && eff.Enabled != defaultEnabled {
		eff.PriorDefault = &defaultEnabled
	}

	return eff
}

// ListEffectivePermissions 对账户可用的每个权限做解析；
// 不可用的权限整体省略
func ListEffectivePermissions(set *OverrideSet, role string) map[string]*EffectivePermission {
	target := set.Target()
	result := make(map[string]*EffectivePermission)
	for _, name := range model.AvailablePermissions(target) {
		result[name] = ResolvePermission(set, role, name)
	}
	return result
}

// Target 覆盖链末端，即解析的目标账户
func (s *OverrideSet) Target() *model.Account {
	if len(s.Chain) == 0 {
		return nil
	}
	return &s.Chain[len(s.Chain)-1]
}

// OverrideUpdate 客户端提交的单个权限覆盖
type OverrideUpdate struct {
	Explicit bool
	Enabled  *bool
	Locked   *bool
}

// ShouldPersist 判定提交的覆盖是否落库：
// 要么 explicit 且给出了 enabled，要么 locked 为真；
// 其余提交不产生任何覆盖行
func (u *OverrideUpdate) ShouldPersist() bool {
	if u.Explicit && u.Enabled != nil {
		return true
	}
	return u.Locked != nil && *u.Locked
}

// BuildOverride 将提交转换为覆盖行，只写入明确给出的部分
func (u *OverrideUpdate) BuildOverride(accountID uint, role, permission string) *model.RoleOverride {
	ov := &model.RoleOverride{
		AccountID:  accountID,
		Role:       role,
		Permission: permission,
	}
	if u.Explicit && u.Enabled != nil {
		ov.Enabled = u.Enabled
	}
	if u.Locked != nil && *u.Locked {
		locked := true
		ov.Locked = &locked
	}
	return ov
}

// FilterUpdates 按可用性过滤一批提交：对目标账户不可用或未注册的权限
// 静默丢弃，其余权限继续独立处理（部分成功语义）
func FilterUpdates(account *model.Account, updates map[string]OverrideUpdate) map[string]OverrideUpdate {
	kept := make(map[string]OverrideUpdate, len(updates))
	for name, u := range updates {
		spec := model.LookupPermission(name)
		if spec == nil || !spec.AvailableAt(account) {
			continue
		}
		kept[name] = u
	}
	return kept
}
