package domain

import "strconv"

// Document is a source file after text extraction.
// It lives only for the duration of an ingestion run and is discarded
// once chunked.
type Document struct {
	// Title is the stable document name, used as the chunk id prefix.
	Title string

	// Path is the original location on disk.
	Path string

	// Format is the lowercase extension the text was extracted with.
	Format string

	// Content is the extracted text. Post-processors may rewrite it.
	Content string
}

// Chunk is a contiguous slice of a document's normalised text.
type Chunk struct {
	// ID is the composite identifier "{title}_{index}".
	ID string

	// Title is the owning document's title.
	Title string

	// Index is the 0-based position within the document.
	Index int

	// Content is the chunk text.
	Content string
}

// ChunkID builds the composite chunk identifier for a document title and
// chunk index. The same pair always yields the same id.
func ChunkID(title string, index int) string {
	return title + "_" + strconv.Itoa(index)
}

// EntryMetadata is stored alongside every index entry.
type EntryMetadata struct {
	// Title is the owning document's title.
	Title string `json:"title"`

	// ChunkIndex is the chunk's position within the document.
	ChunkIndex int `json:"chunk_id"`
}

// IndexEntry is the persisted unit owned by the vector index.
type IndexEntry struct {
	// ID is the chunk id. Upserting an existing ID replaces the entry.
	ID string

	// Embedding is the vector for Text.
	Embedding []float32

	// Text is the chunk text.
	Text string

	// Metadata carries the title and chunk index.
	Metadata EntryMetadata
}

// NewIndexEntry builds an index entry for a chunk and its embedding.
func NewIndexEntry(c Chunk, embedding []float32) IndexEntry {
	return IndexEntry{
		ID:        c.ID,
		Embedding: embedding,
		Text:      c.Content,
		Metadata: EntryMetadata{
			Title:      c.Title,
			ChunkIndex: c.Index,
		},
	}
}

// ScoredEntry is an index entry returned by a similarity query.
type ScoredEntry struct {
	// Entry is the matched entry.
	Entry IndexEntry

	// Score is the similarity to the query vector. Higher is better.
	Score float64
}
