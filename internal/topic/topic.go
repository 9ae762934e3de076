package topic

import (
	"path/filepath"
	"sync"

	"github.com/google/uuid"

	"github.com/fyrsmithlabs/topicd/internal/vectormath"
)

// Topic is a named (or pending) conversational segment.
//
// The history/embeddings pair, the file index, and the folder structure are
// guarded by a single long-lived mutex per topic. Name, description, and the
// description embedding share the same lock because drift analysis may name
// a topic while the router is matching against it.
type Topic struct {
	id string

	mu                   sync.Mutex
	name                 string
	description          string
	descriptionEmbedding []float32
	history              []Message
	embeddings           [][]float32
	files                map[string]FileRecord
	folder               *Tree
}

// New creates a topic. An empty name means the topic is unsorted: it
// collects messages until drift analysis names it.
func New(name, description string) *Topic {
	return &Topic{
		id:          uuid.NewString(),
		name:        name,
		description: description,
		files:       make(map[string]FileRecord),
	}
}

// ID returns the immutable topic identity, independent of its name.
func (t *Topic) ID() string { return t.id }

// Name returns the topic name, empty while unsorted.
func (t *Topic) Name() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.name
}

// Description returns the topic description.
func (t *Topic) Description() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.description
}

// DescriptionEmbedding returns the embedding of the topic description,
// nil until the topic has been named.
func (t *Topic) DescriptionEmbedding() []float32 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.descriptionEmbedding
}

// SetInfo names the topic and stores its description embedding.
func (t *Topic) SetInfo(name, description string, embedding []float32) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.name = name
	t.description = description
	t.descriptionEmbedding = embedding
}

// AddMessage appends a message and its embedding as an atomic pair,
// preserving the invariant len(history) == len(embeddings).
func (t *Topic) AddMessage(role Role, content string, embedding []float32) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.history = append(t.history, Message{Role: role, Content: content})
	t.embeddings = append(t.embeddings, embedding)
}

// HistoryLen returns the number of messages in the topic.
func (t *Topic) HistoryLen() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.history)
}

// History returns a copy of the full message history.
func (t *Topic) History() []Message {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]Message, len(t.history))
	copy(out, t.history)
	return out
}

// HistoryFrom returns a copy of history[start:]. Out-of-range starts
// yield an empty slice.
func (t *Topic) HistoryFrom(start int) []Message {
	t.mu.Lock()
	defer t.mu.Unlock()
	if start < 0 {
		start = 0
	}
	if start >= len(t.history) {
		return nil
	}
	out := make([]Message, len(t.history)-start)
	copy(out, t.history[start:])
	return out
}

// LastN returns a copy of the trailing n messages, fewer if the history
// is shorter.
func (t *Topic) LastN(n int) []Message {
	t.mu.Lock()
	defer t.mu.Unlock()
	if n > len(t.history) {
		n = len(t.history)
	}
	if n <= 0 {
		return nil
	}
	out := make([]Message, n)
	copy(out, t.history[len(t.history)-n:])
	return out
}

// TruncateHistory drops history[n:] and the matching embeddings tail,
// keeping the pair index-aligned. Used after a drift segment has been
// migrated to another topic.
func (t *Topic) TruncateHistory(n int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if n < 0 || n >= len(t.history) {
		return
	}
	t.history = t.history[:n]
	t.embeddings = t.embeddings[:n]
}

// BestContext scores embedding against every history entry and returns the
// best similarity with its index. Returns (0.0, -1) when the history is
// empty; ties resolve to the first occurrence.
func (t *Topic) BestContext(embedding []float32) (float64, int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.embeddings) == 0 {
		return 0.0, -1
	}

	bestScore := vectormath.CosineSimilarity(embedding, t.embeddings[0])
	bestIndex := 0
	for i := 1; i < len(t.embeddings); i++ {
		if s := vectormath.CosineSimilarity(embedding, t.embeddings[i]); s > bestScore {
			bestScore = s
			bestIndex = i
		}
	}
	return bestScore, bestIndex
}

// IndexFile upserts a file record keyed by path. Re-indexing a path
// overwrites its embedding. The record name is the final path segment.
func (t *Topic) IndexFile(filePath string, embedding []float32) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.files[filePath] = FileRecord{
		Name:      filepath.Base(filePath),
		Path:      filePath,
		Embedding: embedding,
	}
}

// Files returns a copy of the file index.
func (t *Topic) Files() map[string]FileRecord {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make(map[string]FileRecord, len(t.files))
	for k, v := range t.files {
		out[k] = v
	}
	return out
}

// Folder returns the folder structure associated with the topic, nil if none.
func (t *Topic) Folder() *Tree {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.folder
}

// SetFolder associates a folder structure with the topic.
func (t *Topic) SetFolder(tree *Tree) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.folder = tree
}
