package domain

import "context"

// Embedder converts free text into fixed-dimension numeric vectors via an
// external embedding service. Vectors are L2-normalised.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	Dimension() int
}

// Index ranks stored chunk vectors against a query vector. Implementations
// are immutable after construction and safe for concurrent Search calls.
type Index interface {
	Search(vector []float32, topK int) []SearchResult
	Len() int
}

// Completer sends a message plus running history to an external chat
// completion service and returns the final text reply. Implementations may
// run bounded multi-turn tool use internally before producing the reply.
type Completer interface {
	Complete(ctx context.Context, history []Turn, message string) (string, error)
}

// ToolCaller exposes the tools discovered from a remote provider and a way
// to invoke them by name.
type ToolCaller interface {
	Tools() []ToolSpec
	Call(ctx context.Context, name string, args map[string]any) (string, error)
}
