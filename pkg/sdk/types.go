package lawdex

// Hit is a single similarity search result. Similarity is the inner
// product of L2-normalized vectors (higher is closer).
type Hit struct {
	Content    string            `json:"content"`
	Title      string            `json:"title,omitempty"`
	Similarity float32           `json:"similarity"`
	DocType    string            `json:"type"`
	Metadata   map[string]string `json:"metadata,omitempty"`
}

// AskResult is the answer to a question with its supporting references.
// Degraded is set when the service retrieved references but could not
// produce a summary answer.
type AskResult struct {
	Answer       string `json:"answer"`
	References   []Hit  `json:"references"`
	QuestionType string `json:"question_type"`
	Degraded     bool   `json:"degraded,omitempty"`
}

// CollectionStatus reports the load state of one collection.
type CollectionStatus struct {
	Loaded        bool   `json:"loaded"`
	DocumentCount int    `json:"document_count"`
	Path          string `json:"path"`
}

// HealthStatus represents the aggregated service health.
type HealthStatus struct {
	Status string            `json:"status"` // "ok" or "degraded"
	Checks map[string]string `json:"checks"` // component -> "ok"/"error"
}

type searchResponse struct {
	Results []Hit `json:"results"`
	Count   int   `json:"count"`
}
