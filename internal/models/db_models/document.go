package db_models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/pgvector/pgvector-go"
)

type Document struct {
	BaseModel
	OrganizationID uuid.UUID `gorm:"index"`
	UploadedByID   uuid.UUID `gorm:"index"`

	Title      string
	Tags       pq.StringArray `gorm:"type:text[]"`
	ChunkCount int

	Organization Organization `gorm:"foreignKey:OrganizationID"`
}

// DocumentChunk holds one embedded slice of a document for similarity
// search. Embeddings are 1536-dim (text-embedding-3-small).
type DocumentChunk struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey"`
	DocumentID     uuid.UUID `gorm:"index"`
	OrganizationID uuid.UUID `gorm:"index"`

	Seq       int
	Content   string
	Embedding pgvector.Vector `gorm:"type:vector(1536)"`

	CreatedAt time.Time `gorm:"autoCreateTime"`
}
