package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"workhub/internal/models/request_models"
	"workhub/internal/services"
	"workhub/pkg/utils"
)

type OrganizationController struct {
	orgService services.OrganizationServiceInterface
}

func NewOrganizationController(orgService services.OrganizationServiceInterface) *OrganizationController {
	return &OrganizationController{
		orgService: orgService,
	}
}

func (o *OrganizationController) Create(c *gin.Context) {
	actor, ok := actorID(c)
	if !ok {
		return
	}

	var request request_models.CreateOrganizationRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid request payload")
		return
	}

	org, err := o.orgService.CreateOrganization(c.Request.Context(), request.Name, actor)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, org, "Organization created successfully")
}

func (o *OrganizationController) Get(c *gin.Context) {
	actor, ok := actorID(c)
	if !ok {
		return
	}
	orgID, ok := orgIDParam(c)
	if !ok {
		return
	}

	org, err := o.orgService.GetOrganization(c.Request.Context(), orgID, actor)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, org, "")
}

func (o *OrganizationController) AddMember(c *gin.Context) {
	actor, ok := actorID(c)
	if !ok {
		return
	}
	orgID, ok := orgIDParam(c)
	if !ok {
		return
	}

	var request request_models.AddMemberRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid request payload")
		return
	}

	if err := o.orgService.AddMember(c.Request.Context(), orgID, actor, request.Email); err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, nil, "Member added successfully")
}

func (o *OrganizationController) RemoveMember(c *gin.Context) {
	actor, ok := actorID(c)
	if !ok {
		return
	}
	orgID, ok := orgIDParam(c)
	if !ok {
		return
	}

	memberID, err := uuid.Parse(c.Param("accountId"))
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid account id")
		return
	}

	if err := o.orgService.RemoveMember(c.Request.Context(), orgID, actor, memberID); err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, nil, "Member removed successfully")
}

func (o *OrganizationController) Delete(c *gin.Context) {
	actor, ok := actorID(c)
	if !ok {
		return
	}
	orgID, ok := orgIDParam(c)
	if !ok {
		return
	}

	if err := o.orgService.DeleteOrganization(c.Request.Context(), orgID, actor); err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, nil, "Organization deleted")
}
