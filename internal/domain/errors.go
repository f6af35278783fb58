package domain

import "fmt"

// ConfigError reports missing or invalid startup configuration. It is fatal:
// the process aborts before the conversation loop starts.
type ConfigError struct {
	Key    string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config: %s: %s", e.Key, e.Reason)
}

// IngestError reports a single file that could not be read or chunked.
// Ingestion of other files continues.
type IngestError struct {
	File string
	Err  error
}

func (e *IngestError) Error() string {
	return fmt.Sprintf("ingest %s: %v", e.File, e.Err)
}

func (e *IngestError) Unwrap() error { return e.Err }

// EmbeddingError reports a failure of the external embedding service.
// During index build it is fatal; during a query it degrades the turn to an
// unaugmented prompt.
type EmbeddingError struct {
	Op  string
	Err error
}

func (e *EmbeddingError) Error() string {
	return fmt.Sprintf("embedding %s: %v", e.Op, e.Err)
}

func (e *EmbeddingError) Unwrap() error { return e.Err }

// RetrievalError reports a failed context search. The caller falls back to
// the raw query instead of aborting the turn.
type RetrievalError struct {
	Err error
}

func (e *RetrievalError) Error() string { return fmt.Sprintf("retrieval: %v", e.Err) }

func (e *RetrievalError) Unwrap() error { return e.Err }

// CompletionError reports a failed chat completion. It affects a single turn
// only; the conversation loop keeps running.
type CompletionError struct {
	Err error
}

func (e *CompletionError) Error() string { return fmt.Sprintf("completion: %v", e.Err) }

func (e *CompletionError) Unwrap() error { return e.Err }
