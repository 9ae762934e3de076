package router

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/fyrsmithlabs/topicd/internal/embeddings"
	"github.com/fyrsmithlabs/topicd/internal/summarizer"
	"github.com/fyrsmithlabs/topicd/internal/topic"
	"github.com/fyrsmithlabs/topicd/internal/vectormath"
)

// Router routes messages and files to topics and maintains the active
// topic pointer.
//
// One long-lived mutex guards the current pointer, the stored topic
// collection, and the project map. The stored collection never contains
// the active topic; a topic moves into it when the router switches away.
type Router struct {
	cfg        Config
	cache      *embeddings.Cache
	summarizer summarizer.Client
	logger     *zap.Logger

	mu       sync.Mutex
	current  *topic.Topic
	topics   []*topic.Topic
	projects map[string]*topic.Tree

	tasks     chan struct{}
	pending   sync.WaitGroup
	done      chan struct{}
	closeOnce sync.Once
}

// New creates a router with an empty unnamed current topic and starts the
// drift-analysis worker. Call Close to stop the worker.
func New(cache *embeddings.Cache, client summarizer.Client, cfg Config, logger *zap.Logger) *Router {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = DefaultConfig().QueueSize
	}

	r := &Router{
		cfg:        cfg,
		cache:      cache,
		summarizer: client,
		logger:     logger,
		current:    topic.New("", ""),
		projects:   make(map[string]*topic.Tree),
		tasks:      make(chan struct{}, cfg.QueueSize),
		done:       make(chan struct{}),
	}
	go r.worker()
	return r
}

// Current returns the active topic. Never nil.
func (r *Router) Current() *topic.Topic {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current
}

// Topics returns a snapshot of the stored topics, excluding the active one.
func (r *Router) Topics() []*topic.Topic {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*topic.Topic, len(r.topics))
	copy(out, r.topics)
	return out
}

// Match finds the stored topic whose description embedding is most similar
// to embedding, excluding the given topic. A topic without a description
// embedding, or an empty query embedding, scores zero. Returns nil when no
// topic reaches the similarity threshold. Ties resolve to the earliest
// stored topic.
func (r *Router) Match(ctx context.Context, embedding []float32, exclude *topic.Topic) *topic.Topic {
	r.mu.Lock()
	candidates := make([]*topic.Topic, 0, len(r.topics))
	for _, t := range r.topics {
		if t != exclude {
			candidates = append(candidates, t)
		}
	}
	r.mu.Unlock()

	if len(candidates) == 0 {
		return nil
	}

	descriptions := make([][]float32, len(candidates))
	for i, t := range candidates {
		descriptions[i] = t.DescriptionEmbedding()
	}

	best, bestScore := vectormath.BestMatch(descriptions, embedding, r.cfg.SimilarityThreshold)
	if best < 0 {
		return nil
	}

	r.logger.Debug("matched topic",
		zap.String("topic", candidates[best].Name()),
		zap.Float64("similarity", bestScore))
	return candidates[best]
}

// SwitchTopic makes target the active topic. The previous active topic is
// moved into the stored collection unless a topic of the same name is
// already there; switching to the already-active topic is a no-op. The
// whole transition is a single critical section, so concurrent switches
// can neither double-insert the pre-switch topic nor lose a switch.
func (r *Router) SwitchTopic(target *topic.Topic) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.switchTopicLocked(target)
}

func (r *Router) switchTopicLocked(target *topic.Topic) {
	if target == r.current || target.Name() == r.current.Name() {
		return
	}

	currentName := r.current.Name()
	stored := false
	for _, t := range r.topics {
		if t.Name() == currentName {
			stored = true
			break
		}
	}
	if !stored {
		r.topics = append(r.topics, r.current)
	}

	// The active topic never stays in the stored collection.
	for i, t := range r.topics {
		if t == target {
			r.topics = append(r.topics[:i], r.topics[i+1:]...)
			break
		}
	}

	r.logger.Info("switched topic",
		zap.String("from", currentName),
		zap.String("to", target.Name()))
	r.current = target
}

// RouteMessage routes a (role, message) pair to the best-matching topic.
// A nil embedding is fetched from the cache. When a stored topic other
// than the current one matches, the router switches to it before
// appending. Drift analysis is enqueued without blocking; its effects may
// not be visible to an immediately following call.
func (r *Router) RouteMessage(ctx context.Context, role topic.Role, message string, embedding []float32) {
	if embedding == nil {
		embedding = r.cache.Fetch(ctx, message)
	}

	if matched := r.Match(ctx, embedding, r.Current()); matched != nil {
		r.SwitchTopic(matched)
	}

	r.Current().AddMessage(role, message, embedding)
	r.enqueueAnalysis()
}

// AddFile computes a combined path+content embedding and indexes the file
// into the current topic.
func (r *Router) AddFile(ctx context.Context, path, content string) {
	combined := fmt.Sprintf("Path: %s\nContent: %s", path, content)
	embedding := r.cache.Fetch(ctx, combined)
	r.Current().IndexFile(path, embedding)
	r.logger.Debug("indexed file", zap.String("path", path))
}

// AddFolderStructure applies a folder structure to the named topic, or to
// the current topic when name is empty or unknown.
func (r *Router) AddFolderStructure(tree *topic.Tree, name string) {
	if name != "" {
		if t := r.topicByName(name); t != nil {
			t.SetFolder(tree)
			return
		}
		r.logger.Warn("topic not found, applying folder structure to current topic",
			zap.String("topic", name))
	}
	r.Current().SetFolder(tree)
}

// topicByName finds a topic by name across the active topic and the
// stored collection.
func (r *Router) topicByName(name string) *topic.Topic {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.current.Name() == name {
		return r.current
	}
	for _, t := range r.topics {
		if t.Name() == name {
			return t
		}
	}
	return nil
}

// RegisterProject associates a folder structure tree with a project name.
// Queries mentioning the project name pull the tree into the prompt.
func (r *Router) RegisterProject(name string, tree *topic.Tree) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.projects[name] = tree
}

// projectNames returns registered project names in stable order.
func (r *Router) projectNames() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	names := make([]string, 0, len(r.projects))
	for name := range r.projects {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (r *Router) project(name string) *topic.Tree {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.projects[name]
}

// enqueueAnalysis schedules a drift-analysis pass without blocking the
// caller. A full queue drops the task; analysis re-triggers on a later
// message.
func (r *Router) enqueueAnalysis() {
	r.pending.Add(1)
	select {
	case r.tasks <- struct{}{}:
	default:
		r.pending.Done()
		r.logger.Warn("analysis queue full, skipping drift analysis")
	}
}

// worker serializes all drift analysis and topic migration.
func (r *Router) worker() {
	for {
		select {
		case <-r.done:
			return
		case <-r.tasks:
			r.analyze(context.Background())
			r.pending.Done()
		}
	}
}

// Wait blocks until all enqueued drift analyses have completed. Useful
// for callers that need the post-analysis topic state.
func (r *Router) Wait() {
	r.pending.Wait()
}

// Close stops the drift-analysis worker. Call Wait first if pending
// analyses should finish.
func (r *Router) Close() {
	r.closeOnce.Do(func() {
		close(r.done)
	})
}
