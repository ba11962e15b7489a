package request_models

type UploadDocumentRequest struct {
	Title   string   `json:"title" binding:"required,min=1,max=200"`
	Content string   `json:"content" binding:"required,min=1"`
	Tags    []string `json:"tags" binding:"max=10,dive,min=1,max=50"`
}

type ChatRequest struct {
	Question string `json:"question" binding:"required,min=1,max=2000"`
}
