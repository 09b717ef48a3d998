package models

// DocType classifies a loaded document for chunking dispatch.
type DocType string

const (
	DocTypeText DocType = "text"
	DocTypeCSV  DocType = "csv"
	DocTypePDF  DocType = "pdf"
	DocTypeHTML DocType = "html"

	// Sniffing outcomes that the loader drops before chunking.
	DocTypeBinary  DocType = "binary"
	DocTypeUnknown DocType = "unknown"
)

// Document is a single loaded file, ready for chunking.
type Document struct {
	ID      string
	Source  string
	Type    DocType
	Content string
}

// Chunk is a bounded unit of document text prepared for retrieval.
type Chunk struct {
	ChunkID  string
	Source   string
	Content  string
	Metadata map[string]string
}

// Hit is one matched entry from a vector store query. Distance is
// cosine distance, lower means more similar.
type Hit struct {
	Text     string
	Distance float64
	Metadata map[string]string
}

// Response is the externally visible result of one question.
type Response struct {
	Answer     string  `json:"answer"`
	Confidence float64 `json:"confidence"`
}
