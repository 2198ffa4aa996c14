package models

// Chunk is a fixed-size slice of the source document, identified by its
// position in the chunk collection.
type Chunk struct {
	Index   int    `json:"index"`
	Content string `json:"content"`
}

// ChatRequest is the body accepted by the chat endpoint.
type ChatRequest struct {
	Question string `json:"question"`
}

// ChatResponse is the body returned by the chat endpoint.
type ChatResponse struct {
	Answer string `json:"answer"`
}
