package domain

// Chunk is a bounded-size segment of a source file, tagged with its origin.
// One file typically yields many chunks sharing the same SourceName.
type Chunk struct {
	SourceName string
	Text       string
}

// EmbeddedChunk pairs a chunk with its embedding vector. Created once at
// index-build time and never mutated afterwards.
type EmbeddedChunk struct {
	Chunk  Chunk
	Vector []float32
}

// SearchResult is a scored match for a single query. Score is a cosine
// distance: lower means more relevant.
type SearchResult struct {
	Score float64
	Chunk EmbeddedChunk
}

// Role identifies the author of a conversation turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is one entry in the running conversation history.
type Turn struct {
	Role    Role
	Content string
}

// ToolSpec describes a remotely discovered tool in a provider-neutral form.
// Parameters is a JSON-schema object as returned by the tool server.
type ToolSpec struct {
	Name        string
	Description string
	Parameters  map[string]any
}
