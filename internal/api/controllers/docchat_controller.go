package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"workhub/internal/models/request_models"
	"workhub/internal/services"
	"workhub/pkg/utils"
)

type DocChatController struct {
	docChatService services.DocChatServiceInterface
}

func NewDocChatController(docChatService services.DocChatServiceInterface) *DocChatController {
	return &DocChatController{
		docChatService: docChatService,
	}
}

func (d *DocChatController) Upload(c *gin.Context) {
	actor, ok := actorID(c)
	if !ok {
		return
	}
	orgID, ok := orgIDParam(c)
	if !ok {
		return
	}

	var request request_models.UploadDocumentRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid request payload")
		return
	}

	doc, err := d.docChatService.UploadDocument(c.Request.Context(), orgID, actor, request.Title, request.Content, request.Tags)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, doc, "Document uploaded")
}

func (d *DocChatController) List(c *gin.Context) {
	actor, ok := actorID(c)
	if !ok {
		return
	}
	orgID, ok := orgIDParam(c)
	if !ok {
		return
	}

	docs, err := d.docChatService.ListDocuments(c.Request.Context(), orgID, actor)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, docs, "")
}

func (d *DocChatController) Ask(c *gin.Context) {
	actor, ok := actorID(c)
	if !ok {
		return
	}
	orgID, ok := orgIDParam(c)
	if !ok {
		return
	}

	var request request_models.ChatRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid request payload")
		return
	}

	answer, err := d.docChatService.Ask(c.Request.Context(), orgID, actor, request.Question)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, answer, "")
}
