package controller

import (
	"classroom_backend/internal/model"
	"classroom_backend/internal/service"
	"classroom_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type RoleController struct {
	RoleService *service.RoleService
}

func NewRoleController(roleService *service.RoleService) *RoleController {
	return &RoleController{RoleService: roleService}
}

// permissionParam 单个权限覆盖提交；布尔字段接受 1/0 与 true/false，
// 且区分"未提供"与"提供了 false"
type permissionParam struct {
	Explicit util.FlexBool `json:"explicit"`
	Enabled  util.FlexBool `json:"enabled"`
	Locked   util.FlexBool `json:"locked"`
}

type addRoleRequest struct {
	Role        string                     `json:"role"`
	Permissions map[string]permissionParam `json:"permissions"`
}

type updateRoleRequest struct {
	Permissions map[string]permissionParam `json:"permissions"`
}

// requireAdmin 角色管理只对管理员开放；未授权一律 401，不泄露既有状态
func requireAdmin(ctx *gin.Context) bool {
	user := util.GetUserFromContext(ctx)
	if user == nil || user.Role != model.Admin {
		util.Unauthorized(ctx)
		return false
	}
	return true
}

func toOverrideUpdates(params map[string]permissionParam) map[string]service.OverrideUpdate {
	updates := make(map[string]service.OverrideUpdate, len(params))
	for name, p := range params {
		updates[name] = service.OverrideUpdate{
			Explicit: p.Explicit.Set && p.Explicit.Value,
			Enabled:  p.Enabled.Ptr(),
			Locked:   p.Locked.Ptr(),
		}
	}
	return updates
}

// @Summary 新建角色
// @Description 在账户下创建角色并应用权限覆盖；账户范围外的权限静默丢弃
// @Tags 角色
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param accountId path int true "账户ID"
// @Param role body addRoleRequest true "角色与权限覆盖"
// @Success 200 {object} util.Response
// @Router /accounts/{accountId}/roles [post]
func (c *RoleController) AddRole(ctx *gin.Context) {
	if !requireAdmin(ctx) {
		return
	}
	accountID := util.MustParseUint(ctx.Param("accountId"))

	var req addRoleRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	result, err := c.RoleService.AddRole(accountID, req.Role, toOverrideUpdates(req.Permissions))
	if err != nil {
		respondRoleError(ctx, err)
		return
	}

	util.Success(ctx, result)
}

// @Summary 修改角色权限
// @Description 对既有角色（含内置角色）应用权限覆盖
// @Tags 角色
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param accountId path int true "账户ID"
// @Param role path string true "角色名"
// @Param permissions body updateRoleRequest true "权限覆盖"
// @Success 200 {object} util.Response
// @Router /accounts/{accountId}/roles/{role} [put]
func (c *RoleController) UpdateRole(ctx *gin.Context) {
	if !requireAdmin(ctx) {
		return
	}
	accountID := util.MustParseUint(ctx.Param("accountId"))
	roleName := ctx.Param("role")

	var req updateRoleRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	result, err := c.RoleService.UpdateRole(accountID, roleName, toOverrideUpdates(req.Permissions))
	if err != nil {
		respondRoleError(ctx, err)
		return
	}

	util.Success(ctx, result)
}

// @Summary 角色详情
// @Description 角色在账户上的全量有效权限
// @Tags 角色
// @Produce json
// @Security ApiKeyAuth
// @Param accountId path int true "账户ID"
// @Param role path string true "角色名"
// @Success 200 {object} util.Response
// @Router /accounts/{accountId}/roles/{role} [get]
func (c *RoleController) ShowRole(ctx *gin.Context) {
	if !requireAdmin(ctx) {
		return
	}
	accountID := util.MustParseUint(ctx.Param("accountId"))
	roleName := ctx.Param("role")

	result, err := c.RoleService.ShowRole(accountID, roleName)
	if err != nil {
		respondRoleError(ctx, err)
		return
	}

	util.Success(ctx, result)
}

func respondRoleError(ctx *gin.Context, err error) {
	switch err {
	case util.ErrMissingRole, util.ErrRoleExists:
		util.BadRequest(ctx, err.Error())
	case util.ErrAccountNotFound:
		util.NotFound(ctx)
	case util.ErrPermissionDenied:
		util.Unauthorized(ctx)
	default:
		util.LogInternalError(ctx, err)
	}
}
