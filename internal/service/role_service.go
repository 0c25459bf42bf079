package service

import (
	"classroom_backend/internal/model"
	"classroom_backend/internal/repository"
	"classroom_backend/internal/util"
	"classroom_backend/pkg/logger"

	"go.uber.org/zap"
)

type RoleService struct {
	AccountRepo *repository.AccountRepository
	RoleRepo    *repository.RoleRepository
}

func NewRoleService(accountRepo *repository.AccountRepository, roleRepo *repository.RoleRepository) *RoleService {
	return &RoleService{AccountRepo: accountRepo, RoleRepo: roleRepo}
}

// AccountJSON 账户序列化结构；字段名是对外契约
type AccountJSON struct {
	ID              uint   `json:"id"`
	Name            string `json:"name"`
	RootAccountID   *uint  `json:"root_account_id"`
	ParentAccountID *uint  `json:"parent_account_id"`
}

// RoleJSON 角色响应：账户、角色名，以及逐权限的有效值
type RoleJSON struct {
	Account     AccountJSON                     `json:"account"`
	Role        string                          `json:"role"`
	Permissions map[string]*EffectivePermission `json:"permissions"`
}

// AddRole 在账户下新建角色并应用提交的权限覆盖。
// 角色名缺失与重名是用户输入错误；对账户不可用的权限静默丢弃，
// 同一请求中的其余权限独立生效
func (s *RoleService) AddRole(accountID uint, roleName string, updates map[string]OverrideUpdate) (*RoleJSON, error) {
	if roleName == "" {
		return nil, util.ErrMissingRole
	}
	account, err := s.AccountRepo.FindByID(accountID)
	if err != nil {
		return nil, util.ErrAccountNotFound
	}

	exists, err := s.RoleRepo.RoleExists(account.ID, roleName)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, util.ErrRoleExists
	}

	if err := s.RoleRepo.CreateRole(&model.Role{AccountID: account.ID, Name: roleName}); err != nil {
		return nil, err
	}

	return s.applyOverrides(account, roleName, updates)
}

// UpdateRole 修改既有角色（含内置角色）的权限覆盖
func (s *RoleService) UpdateRole(accountID uint, roleName string, updates map[string]OverrideUpdate) (*RoleJSON, error) {
	if roleName == "" {
		return nil, util.ErrMissingRole
	}
	account, err := s.AccountRepo.FindByID(accountID)
	if err != nil {
		return nil, util.ErrAccountNotFound
	}

	exists, err := s.RoleRepo.RoleExists(account.ID, roleName)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, util.ErrPermissionDenied
	}

	return s.applyOverrides(account, roleName, updates)
}

// ShowRole 角色当前的全量有效权限
func (s *RoleService) ShowRole(accountID uint, roleName string) (*RoleJSON, error) {
	account, err := s.AccountRepo.FindByID(accountID)
	if err != nil {
		return nil, util.ErrAccountNotFound
	}
	return s.buildResponse(account, roleName)
}

func (s *RoleService) applyOverrides(account *model.Account, roleName string, updates map[string]OverrideUpdate) (*RoleJSON, error) {
	for name, update := range FilterUpdates(account, updates) {
		spec := model.LookupPermission(name)
		if spec.Readonly(roleName) {
			// 只读权限不可覆盖，提交被忽略
			continue
		}
		if !update.ShouldPersist() {
			continue
		}
		ov := update.BuildOverride(account.ID, roleName, name)
		if err := s.RoleRepo.UpsertOverride(ov); err != nil {
			return nil, err
		}
		logger.Log.Info("Role override applied",
			zap.Uint("account", account.ID),
			zap.String("role", roleName),
			zap.String("permission", name))
	}

	return s.buildResponse(account, roleName)
}

func (s *RoleService) buildResponse(account *model.Account, roleName string) (*RoleJSON, error) {
	set, err := s.OverrideSetFor(account.ID, roleName)
	if err != nil {
		return nil, err
	}

	return &RoleJSON{
		Account: AccountJSON{
			ID:              account.ID,
			Name:            account.Name,
			RootAccountID:   account.RootAccountID,
			ParentAccountID: account.ParentAccountID,
		},
		Role:        roleName,
		Permissions: ListEffectivePermissions(set, roleName),
	}, nil
}

// OverrideSetFor 构建从根到目标账户的覆盖链
func (s *RoleService) OverrideSetFor(accountID uint, roleName string) (*OverrideSet, error) {
	chain, err := s.AccountRepo.Chain(accountID)
	if err != nil {
		return nil, err
	}
	ids := make([]uint, len(chain))
	for i := range chain {
		ids[i] = chain[i].ID
	}
	overrides, err := s.RoleRepo.FindOverrides(ids, roleName)
	if err != nil {
		return nil, err
	}
	return &OverrideSet{Chain: chain, Overrides: overrides}, nil
}
