package domain

// Hit is a single search result. Similarity is the inner product of
// L2-normalized vectors (cosine-like, higher is closer).
type Hit struct {
	Content    string            `json:"content"`
	Title      string            `json:"title,omitempty"`
	Similarity float32           `json:"similarity"`
	DocType    string            `json:"type"`
	Metadata   map[string]string `json:"metadata,omitempty"`
}
