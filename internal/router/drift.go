package router

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/fyrsmithlabs/topicd/internal/summarizer"
	"github.com/fyrsmithlabs/topicd/internal/topic"
	"github.com/fyrsmithlabs/topicd/internal/vectormath"
)

// analyze runs one drift-analysis pass over the topic that is current at
// the time the pass executes.
//
// An unnamed topic is named once its history exceeds the naming threshold;
// naming and drift detection never run in the same pass. A named topic is
// checked for drift whenever its history length is a multiple of the
// off-topic frequency: the trailing slice is scored against the topic
// description, and when strictly more than half of the slice falls below
// the off-topic threshold the tail segment is migrated to a matching or a
// newly created topic.
func (r *Router) analyze(ctx context.Context) {
	cur := r.Current()

	if cur.Name() == "" {
		if cur.HistoryLen() <= r.cfg.NamingThreshold {
			return
		}
		info, err := r.topicInfo(ctx, cur.History())
		if err != nil {
			r.logger.Warn("could not name topic, will retry on a later message", zap.Error(err))
			return
		}
		cur.SetInfo(info.Name, info.Description, r.cache.Fetch(ctx, info.Description))
		r.logger.Info("named topic",
			zap.String("name", info.Name),
			zap.Int("history", cur.HistoryLen()))
		return
	}

	n := cur.HistoryLen()
	if n < r.cfg.OffTopicFrequency || n%r.cfg.OffTopicFrequency != 0 {
		return
	}

	sliceStart := n - r.cfg.SliceSize
	if sliceStart < 0 {
		sliceStart = 0
	}
	slice := cur.HistoryFrom(sliceStart)

	similarities := r.sliceSimilarities(ctx, slice, cur.DescriptionEmbedding())

	below := 0
	firstBelow := -1
	for i, sim := range similarities {
		if sim < r.cfg.OffTopicThreshold {
			below++
			if firstBelow < 0 {
				firstBelow = i
			}
		}
	}

	// Drift requires strictly more than half of the slice off-topic; an
	// exact half split does not trigger.
	if below*2 <= len(similarities) {
		return
	}

	start := sliceStart
	if firstBelow >= 0 {
		start = sliceStart + firstBelow
	}
	segment := cur.HistoryFrom(start)
	if len(segment) == 0 {
		return
	}

	r.logger.Info("detected off-topic segment",
		zap.String("topic", cur.Name()),
		zap.Int("start", start),
		zap.Int("messages", len(segment)))

	info, err := r.topicInfo(ctx, segment)
	if err != nil {
		r.logger.Warn("could not characterize off-topic segment, skipping split", zap.Error(err))
		return
	}

	candidateEmbedding := r.cache.Fetch(ctx, info.Description)

	target := r.Match(ctx, candidateEmbedding, cur)
	if target == nil {
		target = topic.New(info.Name, info.Description)
		target.SetInfo(info.Name, info.Description, candidateEmbedding)
		r.logger.Info("created topic for off-topic segment", zap.String("name", info.Name))
	}

	for _, msg := range segment {
		embedding := r.cache.Fetch(ctx, msg.Content)
		target.AddMessage(msg.Role, msg.Content, embedding)
	}

	r.SwitchTopic(target)

	// Truncate the pre-drift topic by reference: a name lookup would miss
	// a topic that has not yet been moved into the stored collection.
	cur.TruncateHistory(start)
}

// sliceSimilarities fetches embeddings for the slice concurrently and
// scores each message against the topic description embedding.
func (r *Router) sliceSimilarities(ctx context.Context, slice []topic.Message, description []float32) []float64 {
	embeddings := make([][]float32, len(slice))
	g, gctx := errgroup.WithContext(ctx)
	for i, msg := range slice {
		g.Go(func() error {
			embeddings[i] = r.cache.Fetch(gctx, msg.Content)
			return nil
		})
	}
	_ = g.Wait()

	similarities := make([]float64, len(embeddings))
	for i, emb := range embeddings {
		similarities[i] = vectormath.CosineSimilarity(emb, description)
	}
	return similarities
}

// topicInfo asks the summarizer for a (name, description) pair describing
// history, retrying on empty or malformed responses up to the configured
// bound.
func (r *Router) topicInfo(ctx context.Context, history []topic.Message) (summarizer.TopicInfo, error) {
	prompt := summarizer.TopicInfoPrompt(history)

	var lastErr error
	for attempt := 1; attempt <= r.cfg.MaxRetries; attempt++ {
		response, err := r.summarizer.Respond(ctx, prompt)
		if err == nil {
			info, perr := summarizer.ParseTopicInfo(response)
			if perr == nil {
				return info, nil
			}
			err = perr
		}

		lastErr = err
		r.logger.Warn("topic extraction attempt failed",
			zap.Int("attempt", attempt),
			zap.Int("max_retries", r.cfg.MaxRetries),
			zap.Error(err))
	}

	return summarizer.TopicInfo{}, fmt.Errorf("extracting topic info: %w", lastErr)
}
