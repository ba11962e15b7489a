package task_fx

import (
	"go.uber.org/fx"
	"gorm.io/gorm"
	"workhub/internal/api/controllers"
	"workhub/internal/repositories"
	"workhub/internal/services"
)

var Module = fx.Provide(
	provideTaskRepo, provideTaskService, provideTaskController)

func provideTaskRepo(db *gorm.DB) repositories.ITaskRepository {
	return repositories.NewTaskRepository(db)
}

func provideTaskService(taskRepo repositories.ITaskRepository, orgRepo repositories.IOrganizationRepository) services.TaskServiceInterface {
	return services.NewTaskService(taskRepo, orgRepo)
}

func provideTaskController(taskService services.TaskServiceInterface) *controllers.TaskController {
	return controllers.NewTaskController(taskService)
}
