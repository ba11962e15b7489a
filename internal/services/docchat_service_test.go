package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"workhub/internal/billing"
	"workhub/internal/models/db_models"
	"workhub/pkg/utils"
)

type mockDocRepo struct {
	docs         []db_models.Document
	chunks       []db_models.DocumentChunk
	searchResult []db_models.DocumentChunk
}

func (m *mockDocRepo) CreateDocument(ctx context.Context, doc *db_models.Document, chunks []db_models.DocumentChunk) error {
	if doc.ID == uuid.Nil {
		doc.ID = uuid.New()
	}
	m.docs = append(m.docs, *doc)
	m.chunks = append(m.chunks, chunks...)
	return nil
}

func (m *mockDocRepo) GetDocument(ctx context.Context, orgID, docID uuid.UUID) (*db_models.Document, error) {
	for i := range m.docs {
		if m.docs[i].ID == docID {
			return &m.docs[i], nil
		}
	}
	return nil, nil
}

func (m *mockDocRepo) ListDocuments(ctx context.Context, orgID uuid.UUID) ([]db_models.Document, error) {
	return m.docs, nil
}

func (m *mockDocRepo) SearchChunksByVector(ctx context.Context, orgID uuid.UUID, vector pgvector.Vector, limit int) ([]db_models.DocumentChunk, error) {
	return m.searchResult, nil
}

type mockEmbedder struct {
	calls int
}

func (m *mockEmbedder) EmbedText(ctx context.Context, text string) (pgvector.Vector, error) {
	m.calls++
	return pgvector.NewVector(make([]float32, 1536)), nil
}

type mockChat struct {
	lastUserPrompt string
}

func (m *mockChat) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	m.lastUserPrompt = userPrompt
	return "the answer", nil
}

type docChatFixture struct {
	orgID    uuid.UUID
	actorID  uuid.UUID
	docRepo  *mockDocRepo
	embedder *mockEmbedder
	chat     *mockChat
	svc      DocChatServiceInterface
}

func newDocChatFixture(t *testing.T, tier string) *docChatFixture {
	t.Helper()

	orgID := uuid.New()
	actorID := uuid.New()

	subRepo := &mockSubscriptionRepo{}
	if tier != billing.TierFree {
		subRepo.rows = []*db_models.Subscription{{
			BaseModel:        db_models.BaseModel{ID: uuid.New()},
			OrganizationID:   orgID,
			Tier:             tier,
			Status:           billing.StatusActive,
			CurrentPeriodEnd: unixPtr(time.Now().Add(20 * 24 * time.Hour)),
			Provider:         "stripe",
			ProviderSubID:    "sub_1",
			Version:          1,
		}}
	}

	orgRepo := (&mockOrgRepo{}).withMember(orgID, actorID, db_models.OrgRoleMember)
	registry := billing.NewRegistry("")
	docRepo := &mockDocRepo{}
	embedder := &mockEmbedder{}
	chat := &mockChat{}

	svc := NewDocChatService(docRepo, orgRepo, NewSubscriptionService(subRepo, registry), registry, embedder, chat)

	return &docChatFixture{
		orgID:    orgID,
		actorID:  actorID,
		docRepo:  docRepo,
		embedder: embedder,
		chat:     chat,
		svc:      svc,
	}
}

func TestUploadDocument_RequiresPaidTier(t *testing.T) {
	f := newDocChatFixture(t, billing.TierFree)

	_, err := f.svc.UploadDocument(context.Background(), f.orgID, f.actorID, "Handbook", "some content", nil)
	assert.ErrorIs(t, err, utils.ErrTierRequired)
	assert.Zero(t, f.embedder.calls)
}

func TestUploadDocument_EmbedsEveryChunk(t *testing.T) {
	f := newDocChatFixture(t, billing.TierPro)

	content := strings.Repeat("first paragraph with enough text to matter.\n\n", 60)
	doc, err := f.svc.UploadDocument(context.Background(), f.orgID, f.actorID, "Handbook", content, []string{"policies"})
	require.NoError(t, err)

	assert.Equal(t, []string{"policies"}, doc.Tags)
	assert.Greater(t, doc.ChunkCount, 1)
	assert.Equal(t, doc.ChunkCount, f.embedder.calls)
	assert.Len(t, f.docRepo.chunks, doc.ChunkCount)
}

func TestAsk_AnswersFromRetrievedChunks(t *testing.T) {
	f := newDocChatFixture(t, billing.TierBusiness)
	docID := uuid.New()
	f.docRepo.searchResult = []db_models.DocumentChunk{
		{ID: uuid.New(), DocumentID: docID, Content: "vacation policy is 25 days"},
	}

	answer, err := f.svc.Ask(context.Background(), f.orgID, f.actorID, "How many vacation days?")
	require.NoError(t, err)

	assert.Equal(t, "the answer", answer.Answer)
	assert.Contains(t, f.chat.lastUserPrompt, "vacation policy is 25 days")
	assert.Contains(t, f.chat.lastUserPrompt, "How many vacation days?")
	require.Len(t, answer.Sources, 1)
	assert.Equal(t, docID.String(), answer.Sources[0])
}

func TestAsk_NoDocumentsGivesFriendlyAnswer(t *testing.T) {
	f := newDocChatFixture(t, billing.TierPro)

	answer, err := f.svc.Ask(context.Background(), f.orgID, f.actorID, "Anything?")
	require.NoError(t, err)

	assert.Contains(t, answer.Answer, "No documents")
	assert.Empty(t, answer.Sources)
}

func TestChunkText_SplitsOnParagraphs(t *testing.T) {
	content := "alpha\n\nbeta\n\n\n\ngamma"
	chunks := chunkText(content, 1200)
	require.Len(t, chunks, 1)
	assert.Equal(t, "alpha\n\nbeta\n\ngamma", chunks[0])

	chunks = chunkText(content, 6)
	assert.Equal(t, []string{"alpha", "beta", "gamma"}, chunks)
}
