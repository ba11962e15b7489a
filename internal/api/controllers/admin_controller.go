package controllers

import (
	"github.com/gin-gonic/gin"
	"workhub/internal/services"
	"workhub/pkg/utils"
)

type AdminController struct {
	adminService services.AdminServiceInterface
}

func NewAdminController(adminService services.AdminServiceInterface) *AdminController {
	return &AdminController{
		adminService: adminService,
	}
}

func (a *AdminController) ListOrganizations(c *gin.Context) {
	page, pageSize := pageParams(c)

	orgs, err := a.adminService.ListOrganizations(c.Request.Context(), page, pageSize)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, orgs, "")
}

func (a *AdminController) TriggerReconcile(c *gin.Context) {
	report, err := a.adminService.TriggerReconcile(c.Request.Context())
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, report, "Reconciliation finished")
}
