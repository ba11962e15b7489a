package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"workhub/internal/models/request_models"
	"workhub/internal/services"
	"workhub/pkg/utils"
)

type TaskController struct {
	taskService services.TaskServiceInterface
}

func NewTaskController(taskService services.TaskServiceInterface) *TaskController {
	return &TaskController{
		taskService: taskService,
	}
}

func (t *TaskController) Create(c *gin.Context) {
	actor, ok := actorID(c)
	if !ok {
		return
	}
	orgID, ok := orgIDParam(c)
	if !ok {
		return
	}

	var request request_models.CreateTaskRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid request payload")
		return
	}

	task, err := t.taskService.CreateTask(c.Request.Context(), orgID, actor, request)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, task, "Task created")
}

func (t *TaskController) List(c *gin.Context) {
	actor, ok := actorID(c)
	if !ok {
		return
	}
	orgID, ok := orgIDParam(c)
	if !ok {
		return
	}
	page, pageSize := pageParams(c)

	tasks, err := t.taskService.ListTasks(c.Request.Context(), orgID, actor, c.Query("status"), page, pageSize)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, tasks, "")
}

func (t *TaskController) Update(c *gin.Context) {
	actor, ok := actorID(c)
	if !ok {
		return
	}
	orgID, ok := orgIDParam(c)
	if !ok {
		return
	}
	taskID, err := uuid.Parse(c.Param("taskId"))
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid task id")
		return
	}

	var request request_models.UpdateTaskRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid request payload")
		return
	}

	task, err := t.taskService.UpdateTask(c.Request.Context(), orgID, actor, taskID, request)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, task, "Task updated")
}

func (t *TaskController) Delete(c *gin.Context) {
	actor, ok := actorID(c)
	if !ok {
		return
	}
	orgID, ok := orgIDParam(c)
	if !ok {
		return
	}
	taskID, err := uuid.Parse(c.Param("taskId"))
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid task id")
		return
	}

	if err := t.taskService.DeleteTask(c.Request.Context(), orgID, actor, taskID); err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, nil, "Task deleted")
}
