package router

import (
	"context"
	"fmt"
	"os"
	"regexp"
	"sort"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/fyrsmithlabs/topicd/internal/topic"
	"github.com/fyrsmithlabs/topicd/internal/vectormath"
)

// fileNamePattern matches filename-like tokens: slash-separated
// alphanumeric/underscore/hyphen segments ending in a dotted extension,
// with or without a leading path.
var fileNamePattern = regexp.MustCompile(`[a-zA-Z0-9_\-]+(?:/[a-zA-Z0-9_\-]+)*/[a-zA-Z0-9_\-]+\.[a-zA-Z0-9]+|[a-zA-Z0-9_\-]+\.[a-zA-Z0-9]+`)

// ExtractFileName returns the first filename-like token in query, if any.
func ExtractFileName(query string) (string, bool) {
	match := fileNamePattern.FindString(query)
	return match, match != ""
}

// FileContent pairs a file path with its content for prompt assembly.
type FileContent struct {
	Path    string
	Content string
}

// scoredFile is a candidate file with its match score.
type scoredFile struct {
	path  string
	score float64
}

// RelevantFiles resolves the files most relevant to query.
//
// An extracted filename is matched first against the current topic's file
// index by case-insensitive substring on the file name, at a fixed score
// of 1.0. Failing that, the current topic's files are scored by embedding
// similarity; failing that, the search expands to every stored topic's
// files. The top-k surviving candidates are read from disk; unreadable
// files are dropped. Returns nil when nothing relevant is found.
func (r *Router) RelevantFiles(ctx context.Context, query string) []FileContent {
	name, hasName := ExtractFileName(query)

	// The query embedding is always computed so the fallback paths and
	// later prompt assembly reuse the cached vector.
	queryEmbedding := r.cache.Fetch(ctx, query)

	var scores []scoredFile
	if hasName {
		files := r.Current().Files()
		lowered := strings.ToLower(name)
		for path, rec := range files {
			if strings.Contains(strings.ToLower(rec.Name), lowered) {
				scores = append(scores, scoredFile{path: path, score: 1.0})
			}
		}
		if len(scores) == 0 {
			scores = scoreByEmbedding(files, queryEmbedding, r.cfg.FileThreshold)
		}
	}

	if len(scores) == 0 {
		r.logger.Debug("no relevant files in current topic, expanding search across stored topics")
		all := make(map[string]topic.FileRecord)
		for _, t := range r.Topics() {
			for path, rec := range t.Files() {
				all[path] = rec
			}
		}
		scores = scoreByEmbedding(all, queryEmbedding, r.cfg.FileThreshold)
	}

	if len(scores) == 0 {
		return nil
	}

	sort.Slice(scores, func(i, j int) bool {
		if scores[i].score != scores[j].score {
			return scores[i].score > scores[j].score
		}
		return scores[i].path < scores[j].path
	})

	topK := r.cfg.TopKFiles
	if topK <= 0 {
		topK = 1
	}
	if len(scores) > topK {
		scores = scores[:topK]
	}

	return r.readFiles(ctx, scores)
}

// scoreByEmbedding scores every file record against the query embedding,
// keeping those at or above threshold.
func scoreByEmbedding(files map[string]topic.FileRecord, queryEmbedding []float32, threshold float64) []scoredFile {
	var scores []scoredFile
	for path, rec := range files {
		if sim := vectormath.CosineSimilarity(queryEmbedding, rec.Embedding); sim >= threshold {
			scores = append(scores, scoredFile{path: path, score: sim})
		}
	}
	return scores
}

// readFiles reads the selected files concurrently. Read failures and
// empty files are excluded from the result, not surfaced.
func (r *Router) readFiles(ctx context.Context, selected []scoredFile) []FileContent {
	contents := make([]string, len(selected))
	g, _ := errgroup.WithContext(ctx)
	for i, sf := range selected {
		g.Go(func() error {
			data, err := os.ReadFile(sf.path)
			if err != nil {
				r.logger.Warn("could not read file, excluding from context",
					zap.String("path", sf.path),
					zap.Error(err))
				return nil
			}
			contents[i] = string(data)
			return nil
		})
	}
	_ = g.Wait()

	results := make([]FileContent, 0, len(selected))
	for i, sf := range selected {
		if contents[i] != "" {
			results = append(results, FileContent{Path: sf.path, Content: contents[i]})
		}
	}
	if len(results) == 0 {
		return nil
	}
	return results
}

// ProjectStructure returns the folder tree of the first registered project
// whose name occurs in the query, case-insensitively.
func (r *Router) ProjectStructure(query string) *topic.Tree {
	lowered := strings.ToLower(query)
	for _, name := range r.projectNames() {
		if strings.Contains(lowered, strings.ToLower(name)) {
			r.logger.Debug("found project structure in query", zap.String("project", name))
			return r.project(name)
		}
	}
	return nil
}

// BuildPrompt assembles a retrieval-augmented prompt for query.
//
// The query is embedded and matched against stored topics, switching when
// one qualifies. A project folder structure mentioned in the query is
// attached to the current topic. The composed prompt (query plus folder
// rendering plus referenced file contents) is recorded as a new user
// message reusing the query embedding, and the trailing PromptMessages
// entries of the current topic's history are returned.
func (r *Router) BuildPrompt(ctx context.Context, query string) []topic.Message {
	embedding := r.cache.Fetch(ctx, query)

	if matched := r.Match(ctx, embedding, nil); matched != nil {
		r.SwitchTopic(matched)
	}

	if tree := r.ProjectStructure(query); tree != nil {
		r.Current().SetFolder(tree)
	}

	files := r.RelevantFiles(ctx, query)

	var refs strings.Builder
	if folder := r.Current().Folder(); folder != nil {
		refs.WriteString(fmt.Sprintf("Folder structure:\n%s\n", folder.Render()))
	}
	for _, f := range files {
		refs.WriteString(fmt.Sprintf("\n[Referenced File: %s]\n%s\n...", f.Path, f.Content))
	}

	prompt := query
	if refs.Len() > 0 {
		prompt = fmt.Sprintf("%s\n\n%s", query, refs.String())
	}

	r.RouteMessage(ctx, topic.RoleUser, prompt, embedding)

	return r.Current().LastN(r.cfg.PromptMessages)
}
