package controller

import (
	"encoding/base64"
	"hr_training_backend/internal/service"
	"hr_training_backend/internal/util"
	"strconv"

	"github.com/gin-gonic/gin"
)

type TrainingAdminController struct {
	AdminService    *service.TrainingAdminService
	TrainingService *service.EmployeeTrainingService
	StorageService  *service.StorageService
}

func NewTrainingAdminController(
	adminService *service.TrainingAdminService,
	trainingService *service.EmployeeTrainingService,
	storageService *service.StorageService,
) *TrainingAdminController {
	return &TrainingAdminController{
		AdminService:    adminService,
		TrainingService: trainingService,
		StorageService:  storageService,
	}
}

// @Summary 创建培训模块
// @Tags 培训管理
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body service.CreateModuleRequest true "模块信息"
// @Success 201 {object} util.Response
// @Router /api/admin/training/modules [post]
func (c *TrainingAdminController) CreateModule(ctx *gin.Context) {
	var req service.CreateModuleRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	module, err := c.AdminService.CreateModule(&req)
	if err != nil {
		handleTrainingError(ctx, err)
		return
	}

	util.Created(ctx, module)
}

// @Summary 培训模块列表
// @Tags 培训管理
// @Produce json
// @Security BearerAuth
// @Param include_inactive query bool false "包含停用模块"
// @Success 200 {object} util.Response
// @Router /api/admin/training/modules [get]
func (c *TrainingAdminController) ListModules(ctx *gin.Context) {
	includeInactive, _ := strconv.ParseBool(ctx.DefaultQuery("include_inactive", "false"))

	modules, err := c.AdminService.ListModules(includeInactive)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{
		"modules": modules,
		"total":   len(modules),
	})
}

// @Summary 生成模块二维码
// @Description 模块没有二维码时生成并保存，返回二维码内容和图片
// @Tags 培训管理
// @Produce json
// @Security BearerAuth
// @Param moduleId path string true "模块ID"
// @Success 200 {object} util.Response
// @Router /api/admin/training/modules/{moduleId}/qr [post]
func (c *TrainingAdminController) GenerateQR(ctx *gin.Context) {
	qr, err := c.TrainingService.GenerateTrainingQR(ctx.Param("moduleId"))
	if err != nil {
		handleTrainingError(ctx, err)
		return
	}

	imageURL, err := c.StorageService.StoreQRImage(ctx.Request.Context(), qr)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{
		"module_id":  qr.ModuleID,
		"qr_code":    qr.QRCode,
		"payload":    qr.Payload,
		"image_url":  imageURL,
		"image_data": "data:" + util.QRImageMimeType + ";base64," + base64.StdEncoding.EncodeToString(qr.Image),
	})
}

// @Summary 分配培训
// @Tags 培训管理
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body service.AssignTrainingRequest true "分配信息"
// @Success 201 {object} util.Response
// @Router /api/admin/training/assignments [post]
func (c *TrainingAdminController) AssignTraining(ctx *gin.Context) {
	var req service.AssignTrainingRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	assignment, err := c.AdminService.AssignTraining(&req)
	if err != nil {
		handleTrainingError(ctx, err)
		return
	}

	util.Created(ctx, assignment)
}

// @Summary 移除培训分配
// @Tags 培训管理
// @Produce json
// @Security BearerAuth
// @Param id path string true "分配ID"
// @Success 200 {object} util.Response
// @Router /api/admin/training/assignments/{id} [delete]
func (c *TrainingAdminController) RemoveAssignment(ctx *gin.Context) {
	if err := c.AdminService.RemoveAssignment(ctx.Param("id")); err != nil {
		handleTrainingError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{"message": "Training assignment removed"})
}

// @Summary 员工培训统计
// @Tags 培训管理
// @Produce json
// @Security BearerAuth
// @Param employeeId path string true "员工ID"
// @Success 200 {object} util.Response
// @Router /api/admin/employees/{employeeId}/training/stats [get]
func (c *TrainingAdminController) GetEmployeeStats(ctx *gin.Context) {
	stats, err := c.TrainingService.GetEmployeeTrainingStats(ctx.Param("employeeId"))
	if err != nil {
		handleTrainingError(ctx, err)
		return
	}

	util.Success(ctx, stats)
}
