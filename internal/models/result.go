package models

// RetrievalResult is one nearest-neighbour hit. Lower Distance is closer.
type RetrievalResult struct {
	Document *Document `json:"document"`
	Distance float32   `json:"distance"`
	Position int       `json:"position"`
	Rank     int       `json:"rank"`
}

// SearchResponse is the response for a retrieval request.
type SearchResponse struct {
	Results   []*RetrievalResult `json:"results"`
	Total     int                `json:"total"`
	QueryTime int64              `json:"query_time_ms"`
	Query     string             `json:"query"`
}

// Answer is a generated answer with the documents that were placed in the prompt.
type Answer struct {
	Question  string             `json:"question"`
	Answer    string             `json:"answer"`
	Sources   []*RetrievalResult `json:"sources"`
	RequestID string             `json:"request_id"`
	Failed    bool               `json:"failed,omitempty"`
	QueryTime int64              `json:"query_time_ms"`
}
