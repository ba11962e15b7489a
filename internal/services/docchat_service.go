package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"workhub/internal/billing"
	"workhub/internal/models/db_models"
	"workhub/internal/models/response_models"
	"workhub/internal/repositories"
	"workhub/pkg/utils"
)

const chunkTargetSize = 1200

const chatContextChunks = 5

type DocChatServiceInterface interface {
	UploadDocument(ctx context.Context, orgID, actorID uuid.UUID, title, content string, tags []string) (*response_models.DocumentResponse, error)
	ListDocuments(ctx context.Context, orgID, actorID uuid.UUID) ([]response_models.DocumentResponse, error)
	Ask(ctx context.Context, orgID, actorID uuid.UUID, question string) (*response_models.ChatAnswer, error)
}

type DocChatService struct {
	docRepo     repositories.IDocumentRepository
	orgRepo     repositories.IOrganizationRepository
	subscripSvc SubscriptionServiceInterface
	registry    *billing.Registry
	embedder    utils.EmbeddingClientInterface
	chat        utils.ChatClientInterface
}

func NewDocChatService(
	docRepo repositories.IDocumentRepository,
	orgRepo repositories.IOrganizationRepository,
	subscripSvc SubscriptionServiceInterface,
	registry *billing.Registry,
	embedder utils.EmbeddingClientInterface,
	chat utils.ChatClientInterface,
) DocChatServiceInterface {
	return &DocChatService{
		docRepo:     docRepo,
		orgRepo:     orgRepo,
		subscripSvc: subscripSvc,
		registry:    registry,
		embedder:    embedder,
		chat:        chat,
	}
}

func (d *DocChatService) UploadDocument(ctx context.Context, orgID, actorID uuid.UUID, title, content string, tags []string) (*response_models.DocumentResponse, error) {
	if err := d.requirePaidMember(ctx, orgID, actorID); err != nil {
		return nil, err
	}

	pieces := chunkText(content, chunkTargetSize)

	chunks := make([]db_models.DocumentChunk, 0, len(pieces))
	for i, piece := range pieces {
		vector, err := d.embedder.EmbedText(ctx, piece)
		if err != nil {
			return nil, fmt.Errorf("embedding chunk %d: %w", i, err)
		}
		chunks = append(chunks, db_models.DocumentChunk{
			ID:        uuid.New(),
			Seq:       i,
			Content:   piece,
			Embedding: vector,
		})
	}

	doc := &db_models.Document{
		OrganizationID: orgID,
		UploadedByID:   actorID,
		Title:          title,
		Tags:           tags,
		ChunkCount:     len(chunks),
	}
	if err := d.docRepo.CreateDocument(ctx, doc, chunks); err != nil {
		return nil, utils.ErrDatabaseError
	}

	return toDocumentResponse(doc), nil
}

func (d *DocChatService) ListDocuments(ctx context.Context, orgID, actorID uuid.UUID) ([]response_models.DocumentResponse, error) {
	if err := d.requireMember(ctx, orgID, actorID); err != nil {
		return nil, err
	}

	docs, err := d.docRepo.ListDocuments(ctx, orgID)
	if err != nil {
		return nil, utils.ErrDatabaseError
	}

	out := make([]response_models.DocumentResponse, 0, len(docs))
	for i := range docs {
		out = append(out, *toDocumentResponse(&docs[i]))
	}
	return out, nil
}

func (d *DocChatService) Ask(ctx context.Context, orgID, actorID uuid.UUID, question string) (*response_models.ChatAnswer, error) {
	if err := d.requirePaidMember(ctx, orgID, actorID); err != nil {
		return nil, err
	}

	vector, err := d.embedder.EmbedText(ctx, question)
	if err != nil {
		return nil, fmt.Errorf("embedding question: %w", err)
	}

	chunks, err := d.docRepo.SearchChunksByVector(ctx, orgID, vector, chatContextChunks)
	if err != nil {
		return nil, utils.ErrDatabaseError
	}
	if len(chunks) == 0 {
		return &response_models.ChatAnswer{
			Answer: "No documents have been uploaded yet, so there is nothing to answer from.",
		}, nil
	}

	var contextText strings.Builder
	sources := make([]string, 0, len(chunks))
	for _, chunk := range chunks {
		contextText.WriteString(chunk.Content)
		contextText.WriteString("\n---\n")
		sources = append(sources, chunk.DocumentID.String())
	}

	systemPrompt := "You answer questions using only the provided document excerpts. " +
		"If the excerpts do not contain the answer, say so plainly."
	userPrompt := fmt.Sprintf("Document excerpts:\n%s\nQuestion: %s", contextText.String(), question)

	answer, err := d.chat.Complete(ctx, systemPrompt, userPrompt)
	if err != nil {
		return nil, fmt.Errorf("chat completion: %w", err)
	}

	return &response_models.ChatAnswer{
		Answer:  answer,
		Sources: sources,
	}, nil
}

func (d *DocChatService) requireMember(ctx context.Context, orgID, actorID uuid.UUID) error {
	membership, err := d.orgRepo.GetMembership(ctx, orgID, actorID)
	if err != nil {
		return utils.ErrDatabaseError
	}
	if membership == nil {
		return utils.ErrNotOrgMember
	}
	return nil
}

// Document chat is a paid feature: the organization's effective tier has to
// be at least pro.
func (d *DocChatService) requirePaidMember(ctx context.Context, orgID, actorID uuid.UUID) error {
	if err := d.requireMember(ctx, orgID, actorID); err != nil {
		return err
	}

	info, err := d.subscripSvc.GetSubscription(ctx, orgID)
	if err != nil {
		return err
	}
	if !d.registry.MeetsTier(info.EffectiveTier, billing.TierPro) {
		return utils.ErrTierRequired
	}
	return nil
}

func chunkText(content string, targetSize int) []string {
	paragraphs := strings.Split(content, "\n\n")

	var chunks []string
	var current strings.Builder
	for _, p := range paragraphs {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if current.Len() > 0 && current.Len()+len(p) > targetSize {
			chunks = append(chunks, current.String())
			current.Reset()
		}
		if current.Len() > 0 {
			current.WriteString("\n\n")
		}
		current.WriteString(p)
	}
	if current.Len() > 0 {
		chunks = append(chunks, current.String())
	}
	return chunks
}

func toDocumentResponse(doc *db_models.Document) *response_models.DocumentResponse {
	return &response_models.DocumentResponse{
		ID:         doc.ID.String(),
		Title:      doc.Title,
		Tags:       doc.Tags,
		ChunkCount: doc.ChunkCount,
		CreatedAt:  doc.CreatedAt,
	}
}
