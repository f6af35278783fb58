// Package ingest walks the configured root directories and turns every
// recognised file into chunks for indexing. Files are routed to a splitter
// by extension; anything unrecognised is skipped. A file that cannot be
// read is logged and skipped without aborting the rest of the walk.
package ingest

import (
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"solagent/internal/chunker"
	"solagent/internal/domain"
)

const mdExtension = ".md"

// workerCount bounds concurrent file reads during ingestion.
const workerCount = 8

// Ingester routes files to the markdown or source-code splitter and
// collects the resulting chunks.
type Ingester struct {
	markdown  *chunker.Markdown
	source    *chunker.Solidity
	sourceExt string
}

// New creates an Ingester. sourceExt selects which extension is treated as
// source code (".sol" by default upstream).
func New(maxChunkSize int, sourceExt string) (*Ingester, error) {
	md, err := chunker.NewMarkdown(maxChunkSize)
	if err != nil {
		return nil, err
	}
	sol, err := chunker.NewSolidity(maxChunkSize)
	if err != nil {
		return nil, err
	}
	if !strings.HasPrefix(sourceExt, ".") {
		sourceExt = "." + sourceExt
	}
	return &Ingester{markdown: md, source: sol, sourceExt: sourceExt}, nil
}

type fileJob struct {
	path string
	name string
	ext  string
}

// Ingest walks each root and returns the chunks of every .md and source
// file found. Regular files only; chunk order across files is not
// guaranteed stable between runs.
func (ing *Ingester) Ingest(roots []string) []domain.Chunk {
	var jobs []fileJob
	for _, root := range roots {
		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				log.Printf("warning: %v", &domain.IngestError{File: path, Err: err})
				return nil
			}
			if !d.Type().IsRegular() {
				return nil
			}
			ext := strings.ToLower(filepath.Ext(path))
			if ext != mdExtension && ext != ing.sourceExt {
				return nil
			}
			jobs = append(jobs, fileJob{path: path, name: sourceName(root, path), ext: ext})
			return nil
		})
		if err != nil {
			log.Printf("warning: %v", &domain.IngestError{File: root, Err: err})
		}
	}

	var mu sync.Mutex
	var chunks []domain.Chunk
	var wg sync.WaitGroup
	sem := make(chan struct{}, workerCount)
	for _, job := range jobs {
		wg.Add(1)
		sem <- struct{}{}
		go func(job fileJob) {
			defer wg.Done()
			defer func() { <-sem }()
			fileChunks, err := ing.chunkFile(job)
			if err != nil {
				log.Printf("warning: %v", err)
				return
			}
			mu.Lock()
			chunks = append(chunks, fileChunks...)
			mu.Unlock()
		}(job)
	}
	wg.Wait()
	return chunks
}

func (ing *Ingester) chunkFile(job fileJob) ([]domain.Chunk, error) {
	data, err := os.ReadFile(job.path)
	if err != nil {
		return nil, &domain.IngestError{File: job.path, Err: err}
	}
	var parts []string
	switch job.ext {
	case mdExtension:
		parts = ing.markdown.Split(string(data))
	default:
		parts = ing.source.Split(string(data))
	}
	chunks := make([]domain.Chunk, 0, len(parts))
	for _, part := range parts {
		chunks = append(chunks, domain.Chunk{SourceName: job.name, Text: part})
	}
	return chunks, nil
}

// sourceName is the stable, human-readable citation name for a file: its
// path relative to the ingestion root.
func sourceName(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return filepath.Base(path)
	}
	return filepath.ToSlash(rel)
}
