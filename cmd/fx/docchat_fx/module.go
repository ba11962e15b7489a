package docchat_fx

import (
	"log"
	"os"

	"go.uber.org/fx"
	"gorm.io/gorm"
	"workhub/internal/api/controllers"
	"workhub/internal/billing"
	"workhub/internal/repositories"
	"workhub/internal/services"
	"workhub/pkg/utils"
)

var Module = fx.Provide(
	provideDocumentRepo,
	provideEmbeddingClient,
	provideChatClient,
	provideDocChatService,
	provideDocChatController,
)

func provideDocumentRepo(db *gorm.DB) repositories.IDocumentRepository {
	return repositories.NewDocumentRepository(db)
}

func provideEmbeddingClient() utils.EmbeddingClientInterface {
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		log.Fatal("OPENAI_API_KEY is required for document embeddings")
	}
	return utils.NewOpenAIEmbeddingClient(apiKey)
}

func provideChatClient() utils.ChatClientInterface {
	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		log.Fatal("GEMINI_API_KEY is required for document chat")
	}

	client, err := utils.NewGeminiChatClient(apiKey, os.Getenv("GEMINI_MODEL"))
	if err != nil {
		log.Fatalf("Failed to create Gemini client: %v", err)
	}
	return client
}

func provideDocChatService(
	docRepo repositories.IDocumentRepository,
	orgRepo repositories.IOrganizationRepository,
	subscripSvc services.SubscriptionServiceInterface,
	registry *billing.Registry,
	embedder utils.EmbeddingClientInterface,
	chat utils.ChatClientInterface,
) services.DocChatServiceInterface {
	return services.NewDocChatService(docRepo, orgRepo, subscripSvc, registry, embedder, chat)
}

func provideDocChatController(docChatService services.DocChatServiceInterface) *controllers.DocChatController {
	return controllers.NewDocChatController(docChatService)
}
