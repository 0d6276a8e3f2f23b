package controller

import (
	"errors"
	"hr_training_backend/internal/service"
	"hr_training_backend/internal/util"
	"net/http"

	"github.com/gin-gonic/gin"
)

type EmployeeTrainingController struct {
	TrainingService *service.EmployeeTrainingService
}

func NewEmployeeTrainingController(trainingService *service.EmployeeTrainingService) *EmployeeTrainingController {
	return &EmployeeTrainingController{TrainingService: trainingService}
}

// UnlockRequest 扫码解锁请求
// swagger:model UnlockRequest
type UnlockRequest struct {
	QRCode string `json:"qr_code" binding:"required,qrcode"`
}

// ProgressRequest 学习时长上报
// swagger:model ProgressRequest
type ProgressRequest struct {
	Minutes int `json:"minutes" binding:"required,gt=0"`
}

// CompleteRequest 完成培训请求，completion_data 为任意键值
// swagger:model CompleteRequest
type CompleteRequest struct {
	CompletionData map[string]interface{} `json:"completion_data"`
}

// handleTrainingError 将业务错误映射为 HTTP 状态码
func handleTrainingError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, util.ErrEmployeeNotFound),
		errors.Is(err, util.ErrModuleNotFound),
		errors.Is(err, util.ErrAssignmentNotFound),
		errors.Is(err, util.ErrInvalidQRCode):
		util.Error(ctx, http.StatusNotFound, err.Error())
	case errors.Is(err, util.ErrTrainingLocked):
		util.Error(ctx, http.StatusForbidden, err.Error())
	case errors.Is(err, util.ErrTrainingNotCompletable),
		errors.Is(err, util.ErrAlreadyAssigned):
		util.Error(ctx, http.StatusConflict, err.Error())
	case errors.Is(err, util.ErrInvalidMinutes),
		errors.Is(err, util.ErrInvalidModule):
		util.BadRequest(ctx, err.Error())
	default:
		util.LogInternalError(ctx, err)
	}
}

// @Summary 获取我的培训
// @Description 获取当前员工的培训分配、所有启用模块以及统计
// @Tags 员工培训
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response
// @Router /api/training/modules [get]
func (c *EmployeeTrainingController) GetAssignedModules(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	result, err := c.TrainingService.GetAssignedTrainingModules(user.EmployeeID)
	if err != nil {
		handleTrainingError(ctx, err)
		return
	}

	util.Success(ctx, result)
}

// @Summary 扫码解锁培训
// @Description 提交模块二维码解锁对应的培训
// @Tags 员工培训
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body UnlockRequest true "二维码"
// @Success 200 {object} util.Response
// @Router /api/training/unlock [post]
func (c *EmployeeTrainingController) UnlockViaQR(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	var req UnlockRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	result, err := c.TrainingService.UnlockTrainingViaQR(user.EmployeeID, req.QRCode)
	if err != nil {
		handleTrainingError(ctx, err)
		return
	}

	util.Success(ctx, result)
}

// @Summary 获取培训内容
// @Description 获取已解锁模块的内容并开始学习会话
// @Tags 员工培训
// @Produce json
// @Security BearerAuth
// @Param moduleId path string true "模块ID"
// @Success 200 {object} util.Response
// @Router /api/training/modules/{moduleId}/content [get]
func (c *EmployeeTrainingController) GetModuleContent(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	result, err := c.TrainingService.GetModuleContent(user.EmployeeID, ctx.Param("moduleId"))
	if err != nil {
		handleTrainingError(ctx, err)
		return
	}

	util.Success(ctx, result)
}

// @Summary 上报学习时长
// @Tags 员工培训
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param moduleId path string true "模块ID"
// @Param request body ProgressRequest true "分钟数"
// @Success 200 {object} util.Response
// @Router /api/training/modules/{moduleId}/progress [post]
func (c *EmployeeTrainingController) RecordProgress(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	var req ProgressRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	result, err := c.TrainingService.RecordProgress(user.EmployeeID, ctx.Param("moduleId"), req.Minutes)
	if err != nil {
		handleTrainingError(ctx, err)
		return
	}

	util.Success(ctx, result)
}

// @Summary 完成培训
// @Tags 员工培训
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param moduleId path string true "模块ID"
// @Param request body CompleteRequest false "完成数据"
// @Success 200 {object} util.Response
// @Router /api/training/modules/{moduleId}/complete [post]
func (c *EmployeeTrainingController) CompleteTraining(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	var req CompleteRequest
	// 允许空请求体
	if ctx.Request.ContentLength != 0 {
		if err := ctx.ShouldBindJSON(&req); err != nil {
			util.BadRequest(ctx, err.Error())
			return
		}
	}

	result, err := c.TrainingService.CompleteTraining(user.EmployeeID, ctx.Param("moduleId"), req.CompletionData)
	if err != nil {
		handleTrainingError(ctx, err)
		return
	}

	util.Success(ctx, result)
}

// @Summary 我的培训统计
// @Tags 员工培训
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response
// @Router /api/training/stats [get]
func (c *EmployeeTrainingController) GetStats(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	stats, err := c.TrainingService.GetEmployeeTrainingStats(user.EmployeeID)
	if err != nil {
		handleTrainingError(ctx, err)
		return
	}

	util.Success(ctx, stats)
}
