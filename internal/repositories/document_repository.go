package repositories

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
	"workhub/internal/models/db_models"
)

type IDocumentRepository interface {
	CreateDocument(ctx context.Context, doc *db_models.Document, chunks []db_models.DocumentChunk) error
	GetDocument(ctx context.Context, orgID, docID uuid.UUID) (*db_models.Document, error)
	ListDocuments(ctx context.Context, orgID uuid.UUID) ([]db_models.Document, error)
	SearchChunksByVector(ctx context.Context, orgID uuid.UUID, vector pgvector.Vector, limit int) ([]db_models.DocumentChunk, error)
}

type documentRepository struct {
	db *gorm.DB
}

func NewDocumentRepository(db *gorm.DB) IDocumentRepository {
	return &documentRepository{db: db}
}

func (r *documentRepository) CreateDocument(ctx context.Context, doc *db_models.Document, chunks []db_models.DocumentChunk) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(doc).Error; err != nil {
			return err
		}
		for i := range chunks {
			chunks[i].DocumentID = doc.ID
			chunks[i].OrganizationID = doc.OrganizationID
		}
		return tx.CreateInBatches(chunks, 100).Error
	})
}

func (r *documentRepository) GetDocument(ctx context.Context, orgID, docID uuid.UUID) (*db_models.Document, error) {
	var doc db_models.Document
	err := r.db.WithContext(ctx).
		Where("organization_id = ? AND id = ?", orgID, docID).
		First(&doc).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return &doc, nil
}

func (r *documentRepository) ListDocuments(ctx context.Context, orgID uuid.UUID) ([]db_models.Document, error) {
	var docs []db_models.Document
	err := r.db.WithContext(ctx).
		Where("organization_id = ?", orgID).
		Order("created_at DESC").
		Find(&docs).Error
	return docs, err
}

func (r *documentRepository) SearchChunksByVector(ctx context.Context, orgID uuid.UUID, vector pgvector.Vector, limit int) ([]db_models.DocumentChunk, error) {
	var results []db_models.DocumentChunk

	query := `
        SELECT * FROM document_chunks
        WHERE organization_id = $1
        ORDER BY embedding <=> $2
        LIMIT $3
    `

	err := r.db.WithContext(ctx).Raw(query, orgID, vector.String(), limit).Scan(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}
