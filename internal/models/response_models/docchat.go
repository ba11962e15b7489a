package response_models

type DocumentResponse struct {
	ID         string   `json:"id"`
	Title      string   `json:"title"`
	Tags       []string `json:"tags,omitempty"`
	ChunkCount int      `json:"chunk_count"`
	CreatedAt  int64    `json:"created_at"`
}

type ChatAnswer struct {
	Answer  string   `json:"answer"`
	Sources []string `json:"sources,omitempty"`
}
