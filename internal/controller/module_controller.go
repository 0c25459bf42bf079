package controller

import (
	"classroom_backend/internal/model"
	"classroom_backend/internal/service"
	"classroom_backend/internal/util"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

type ModuleController struct {
	ModuleService *service.ModuleService
}

func NewModuleController(moduleService *service.ModuleService) *ModuleController {
	return &ModuleController{ModuleService: moduleService}
}

// viewerID 学生视角返回用户 ID（响应附带进度），教师/管理员视角返回 0
func viewerID(ctx *gin.Context) uint {
	user := util.GetUserFromContext(ctx)
	if user == nil || user.Role != model.Student {
		return 0
	}
	return user.UserID
}

// @Summary 课程模块列表
// @Description 按 position 返回课程下的模块，Link 头分页
// @Tags 模块
// @Produce json
// @Security ApiKeyAuth
// @Param courseId path int true "课程ID"
// @Success 200 {object} util.Response
// @Router /courses/{courseId}/modules [get]
func (c *ModuleController) Index(ctx *gin.Context) {
	courseID := util.MustParseUint(ctx.Param("courseId"))

	modules, err := c.ModuleService.ListModules(courseID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	page := util.ParsePage(ctx)
	util.SetLinkHeader(ctx, page, len(modules))
	util.Success(ctx, util.Slice(modules, page))
}

// @Summary 模块详情
// @Description 学生视角附带 state 与 completed_at
// @Tags 模块
// @Produce json
// @Security ApiKeyAuth
// @Param courseId path int true "课程ID"
// @Param moduleId path int true "模块ID"
// @Success 200 {object} util.Response
// @Router /courses/{courseId}/modules/{moduleId} [get]
func (c *ModuleController) Show(ctx *gin.Context) {
	courseID := util.MustParseUint(ctx.Param("courseId"))
	moduleID := util.MustParseUint(ctx.Param("moduleId"))

	result, err := c.ModuleService.GetModule(courseID, moduleID, viewerID(ctx), time.Now())
	if err != nil {
		respondModuleError(ctx, err)
		return
	}

	util.Success(ctx, result)
}

type createModuleRequest struct {
	Name                      string     `json:"name" binding:"required"`
	UnlockAt                  *time.Time `json:"unlock_at"`
	RequireSequentialProgress bool       `json:"require_sequential_progress"`
	PrerequisiteModuleIDs     []uint     `json:"prerequisite_module_ids"`
}

// @Summary 新建模块
// @Tags 模块
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param courseId path int true "课程ID"
// @Param module body createModuleRequest true "模块定义"
// @Success 201 {object} util.Response
// @Router /courses/{courseId}/modules [post]
func (c *ModuleController) Create(ctx *gin.Context) {
	courseID := util.MustParseUint(ctx.Param("courseId"))

	var req createModuleRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	result, err := c.ModuleService.CreateModule(courseID, req.Name, req.UnlockAt,
		req.RequireSequentialProgress, req.PrerequisiteModuleIDs)
	if err != nil {
		respondModuleError(ctx, err)
		return
	}

	util.Created(ctx, result)
}

type updateModuleRequest struct {
	Name                      *string    `json:"name"`
	UnlockAt                  *time.Time `json:"unlock_at"`
	ClearUnlockAt             bool       `json:"clear_unlock_at"`
	RequireSequentialProgress *bool      `json:"require_sequential_progress"`
	PrerequisiteModuleIDs     []uint     `json:"prerequisite_module_ids"`
}

// @Summary 更新模块
// @Tags 模块
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param courseId path int true "课程ID"
// @Param moduleId path int true "模块ID"
// @Param module body updateModuleRequest true "模块定义"
// @Success 200 {object} util.Response
// @Router /courses/{courseId}/modules/{moduleId} [put]
func (c *ModuleController) Update(ctx *gin.Context) {
	courseID := util.MustParseUint(ctx.Param("courseId"))
	moduleID := util.MustParseUint(ctx.Param("moduleId"))

	var req updateModuleRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	result, err := c.ModuleService.UpdateModule(courseID, moduleID, req.Name,
		req.UnlockAt, req.ClearUnlockAt, req.RequireSequentialProgress, req.PrerequisiteModuleIDs)
	if err != nil {
		respondModuleError(ctx, err)
		return
	}

	util.Success(ctx, result)
}

// @Summary 模块项列表
// @Description 学生视角的 completion_requirement 附带 completed
// @Tags 模块
// @Produce json
// @Security ApiKeyAuth
// @Param courseId path int true "课程ID"
// @Param moduleId path int true "模块ID"
// @Success 200 {object} util.Response
// @Router /courses/{courseId}/modules/{moduleId}/items [get]
func (c *ModuleController) ListItems(ctx *gin.Context) {
	courseID := util.MustParseUint(ctx.Param("courseId"))
	moduleID := util.MustParseUint(ctx.Param("moduleId"))

	items, err := c.ModuleService.ListItems(courseID, moduleID, viewerID(ctx))
	if err != nil {
		respondModuleError(ctx, err)
		return
	}

	page := util.ParsePage(ctx)
	util.SetLinkHeader(ctx, page, len(items))
	util.Success(ctx, util.Slice(items, page))
}

// @Summary 模块项详情
// @Tags 模块
// @Produce json
// @Security ApiKeyAuth
// @Param courseId path int true "课程ID"
// @Param moduleId path int true "模块ID"
// @Param itemId path int true "模块项ID"
// @Success 200 {object} util.Response
// @Router /courses/{courseId}/modules/{moduleId}/items/{itemId} [get]
func (c *ModuleController) ShowItem(ctx *gin.Context) {
	courseID := util.MustParseUint(ctx.Param("courseId"))
	moduleID := util.MustParseUint(ctx.Param("moduleId"))
	itemID := util.MustParseUint(ctx.Param("itemId"))

	result, err := c.ModuleService.GetItem(courseID, moduleID, itemID, viewerID(ctx))
	if err != nil {
		respondModuleError(ctx, err)
		return
	}

	util.Success(ctx, result)
}

type createItemRequest struct {
	Type        model.ModuleItemType     `json:"type" binding:"required"`
	Title       string                   `json:"title"`
	Indent      int                      `json:"indent"`
	ContentID   uint                     `json:"content_id"`
	PageSlug    string                   `json:"page_slug"`
	ExternalURL string                   `json:"external_url"`
	Requirement *service.RequirementJSON `json:"completion_requirement"`
}

// @Summary 追加模块项
// @Tags 模块
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param courseId path int true "课程ID"
// @Param moduleId path int true "模块ID"
// @Param item body createItemRequest true "模块项"
// @Success 201 {object} util.Response
// @Router /courses/{courseId}/modules/{moduleId}/items [post]
func (c *ModuleController) CreateItem(ctx *gin.Context) {
	courseID := util.MustParseUint(ctx.Param("courseId"))
	moduleID := util.MustParseUint(ctx.Param("moduleId"))

	var req createItemRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	item := &model.ModuleItem{
		Type:        req.Type,
		Title:       req.Title,
		Indent:      req.Indent,
		ContentID:   req.ContentID,
		PageSlug:    req.PageSlug,
		ExternalURL: req.ExternalURL,
	}
	if req.Requirement != nil {
		item.RequirementType = req.Requirement.Type
		if req.Requirement.MinScore != nil {
			item.MinScore = *req.Requirement.MinScore
		}
	}

	result, err := c.ModuleService.CreateItem(courseID, moduleID, item)
	if err != nil {
		respondModuleError(ctx, err)
		return
	}

	util.Created(ctx, result)
}

// @Summary 删除模块项
// @Tags 模块
// @Produce json
// @Security ApiKeyAuth
// @Param courseId path int true "课程ID"
// @Param moduleId path int true "模块ID"
// @Param itemId path int true "模块项ID"
// @Success 200 {object} util.Response
// @Router /courses/{courseId}/modules/{moduleId}/items/{itemId} [delete]
func (c *ModuleController) DeleteItem(ctx *gin.Context) {
	courseID := util.MustParseUint(ctx.Param("courseId"))
	moduleID := util.MustParseUint(ctx.Param("moduleId"))
	itemID := util.MustParseUint(ctx.Param("itemId"))

	if err := c.ModuleService.DeleteItem(courseID, moduleID, itemID); err != nil {
		respondModuleError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{"deleted": true})
}

type recordEventRequest struct {
	Kind  model.EventKind `json:"kind" binding:"required"`
	Score float64         `json:"score"`
}

// @Summary 记录学习行为事件
// @Description 追加 (用户, 模块项, 事件) 事实；重复记录幂等
// @Tags 模块
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param courseId path int true "课程ID"
// @Param itemId path int true "模块项ID"
// @Param event body recordEventRequest true "事件"
// @Success 200 {object} util.Response
// @Router /courses/{courseId}/module_items/{itemId}/events [post]
func (c *ModuleController) RecordEvent(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}
	itemID := util.MustParseUint(ctx.Param("itemId"))

	var req recordEventRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	switch req.Kind {
	case model.EventView, model.EventContribute, model.EventSubmit, model.EventScore:
	default:
		util.BadRequest(ctx, "unknown event kind")
		return
	}

	if err := c.ModuleService.RecordEvent(user.UserID, itemID, req.Kind, req.Score); err != nil {
		respondModuleError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{"recorded": true})
}

// @Summary 外链跳转
// @Description 302 跳转到外部地址，同时为当前用户记录 view 事件
// @Tags 模块
// @Param courseId path int true "课程ID"
// @Param itemId path int true "模块项ID"
// @Success 302
// @Router /courses/{courseId}/module_item_redirect/{itemId} [get]
func (c *ModuleController) Redirect(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}
	courseID := util.MustParseUint(ctx.Param("courseId"))
	itemID := util.MustParseUint(ctx.Param("itemId"))

	target, err := c.ModuleService.RedirectURL(courseID, itemID, user.UserID)
	if err != nil {
		respondModuleError(ctx, err)
		return
	}

	ctx.Redirect(http.StatusFound, target)
}

func respondModuleError(ctx *gin.Context, err error) {
	switch {
	case err == util.ErrModuleNotFound, err == util.ErrItemNotFound, err == util.ErrCourseNotFound:
		util.NotFound(ctx)
	case util.IsConfigurationError(err):
		// 前置图损坏是服务端故障，不是用户输入问题
		util.LogInternalError(ctx, err)
	case err == util.ErrNotExternalURL:
		util.BadRequest(ctx, err.Error())
	default:
		util.BadRequest(ctx, err.Error())
	}
}
