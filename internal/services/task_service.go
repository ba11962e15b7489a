package services

import (
	"context"

	"github.com/google/uuid"
	"workhub/internal/models/db_models"
	"workhub/internal/models/request_models"
	"workhub/internal/models/response_models"
	"workhub/internal/repositories"
	"workhub/pkg/utils"
)

type TaskServiceInterface interface {
	CreateTask(ctx context.Context, orgID, actorID uuid.UUID, request request_models.CreateTaskRequest) (*response_models.TaskResponse, error)
	ListTasks(ctx context.Context, orgID, actorID uuid.UUID, status string, page, pageSize int) ([]response_models.TaskResponse, error)
	UpdateTask(ctx context.Context, orgID, actorID, taskID uuid.UUID, request request_models.UpdateTaskRequest) (*response_models.TaskResponse, error)
	DeleteTask(ctx context.Context, orgID, actorID, taskID uuid.UUID) error
}

type TaskService struct {
	taskRepo repositories.ITaskRepository
	orgRepo  repositories.IOrganizationRepository
}

func NewTaskService(taskRepo repositories.ITaskRepository, orgRepo repositories.IOrganizationRepository) TaskServiceInterface {
	return &TaskService{
		taskRepo: taskRepo,
		orgRepo:  orgRepo,
	}
}

func (t *TaskService) CreateTask(ctx context.Context, orgID, actorID uuid.UUID, request request_models.CreateTaskRequest) (*response_models.TaskResponse, error) {
	if err := t.requireMember(ctx, orgID, actorID); err != nil {
		return nil, err
	}

	task := &db_models.Task{
		OrganizationID: orgID,
		CreatedByID:    actorID,
		Title:          request.Title,
		Description:    request.Description,
		Status:         db_models.TaskStatusTodo,
		DueAt:          request.DueAt,
	}

	if err := t.taskRepo.CreateTask(ctx, task); err != nil {
		return nil, utils.ErrDatabaseError
	}

	return toTaskResponse(task), nil
}

func (t *TaskService) ListTasks(ctx context.Context, orgID, actorID uuid.UUID, status string, page, pageSize int) ([]response_models.TaskResponse, error) {
	if err := t.requireMember(ctx, orgID, actorID); err != nil {
		return nil, err
	}
	if page < 1 {
		return nil, utils.ErrInvalidPage
	}
	if pageSize < 1 || pageSize > 100 {
		return nil, utils.ErrInvalidPageSize
	}

	tasks, err := t.taskRepo.ListTasks(ctx, orgID, status, page, pageSize)
	if err != nil {
		return nil, utils.ErrDatabaseError
	}

	taskResponses := make([]response_models.TaskResponse, 0, len(tasks))
	for i := range tasks {
		taskResponses = append(taskResponses, *toTaskResponse(&tasks[i]))
	}
	return taskResponses, nil
}

func (t *TaskService) UpdateTask(ctx context.Context, orgID, actorID, taskID uuid.UUID, request request_models.UpdateTaskRequest) (*response_models.TaskResponse, error) {
	if err := t.requireMember(ctx, orgID, actorID); err != nil {
		return nil, err
	}

	task, err := t.taskRepo.GetTask(ctx, orgID, taskID)
	if err != nil {
		return nil, utils.ErrDatabaseError
	}
	if task == nil {
		return nil, utils.ErrTaskNotFound
	}

	if request.Title != nil {
		task.Title = *request.Title
	}
	if request.Description != nil {
		task.Description = request.Description
	}
	if request.Status != nil {
		task.Status = db_models.TaskStatus(*request.Status)
	}
	if request.DueAt != nil {
		task.DueAt = request.DueAt
	}

	if err := t.taskRepo.UpdateTask(ctx, task); err != nil {
		return nil, utils.ErrDatabaseError
	}

	return toTaskResponse(task), nil
}

func (t *TaskService) DeleteTask(ctx context.Context, orgID, actorID, taskID uuid.UUID) error {
	if err := t.requireMember(ctx, orgID, actorID); err != nil {
		return err
	}

	task, err := t.taskRepo.GetTask(ctx, orgID, taskID)
	if err != nil {
		return utils.ErrDatabaseError
	}
	if task == nil {
		return utils.ErrTaskNotFound
	}

	if err := t.taskRepo.DeleteTask(ctx, orgID, taskID); err != nil {
		return utils.ErrDatabaseError
	}
	return nil
}

func (t *TaskService) requireMember(ctx context.Context, orgID, actorID uuid.UUID) error {
	membership, err := t.orgRepo.GetMembership(ctx, orgID, actorID)
	if err != nil {
		return utils.ErrDatabaseError
	}
	if membership == nil {
		return utils.ErrNotOrgMember
	}
	return nil
}

func toTaskResponse(task *db_models.Task) *response_models.TaskResponse {
	return &response_models.TaskResponse{
		ID:          task.ID.String(),
		Title:       task.Title,
		Description: task.Description,
		Status:      string(task.Status),
		DueAt:       task.DueAt,
		CreatedBy:   task.CreatedByID.String(),
		CreatedAt:   task.CreatedAt,
	}
}
