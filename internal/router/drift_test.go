package router

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fyrsmithlabs/topicd/internal/topic"
)

// onTopic / offTopic are the two embedding directions used to steer drift
// detection: onTopic aligns with the topic description, offTopic is
// orthogonal to it.
var (
	onTopic  = []float32{1, 0}
	offTopic = []float32{0, 1}
)

// seedNamedTopic routes enough on-topic messages through the router for
// drift analysis to name the current topic "alpha" with an on-topic
// description embedding.
func seedNamedTopic(t *testing.T, r *Router, emb *stubEmbedder) {
	t.Helper()
	emb.set("alpha description", onTopic)
	ctx := context.Background()
	for i := 1; i <= 5; i++ {
		content := fmt.Sprintf("alpha message %d", i)
		emb.set(content, onTopic)
		r.RouteMessage(ctx, topic.RoleUser, content, nil)
		r.Wait()
	}
	require.Equal(t, "alpha", r.Current().Name())
	require.Equal(t, onTopic, r.Current().DescriptionEmbedding())
}

func TestAnalyze_NamesUnnamedTopic(t *testing.T) {
	emb := newStubEmbedder()
	sum := &fakeSummarizer{responses: []string{topicInfoJSON("alpha", "alpha description")}}
	r := newTestRouter(t, emb, sum)

	seedNamedTopic(t, r, emb)

	assert.Equal(t, "alpha description", r.Current().Description())
	assert.Equal(t, 5, r.Current().HistoryLen())
	assert.Equal(t, 1, sum.callCount(), "naming must happen exactly once")
}

func TestAnalyze_NoNamingBelowThreshold(t *testing.T) {
	emb := newStubEmbedder()
	sum := &fakeSummarizer{responses: []string{topicInfoJSON("alpha", "alpha description")}}
	r := newTestRouter(t, emb, sum)

	ctx := context.Background()
	for i := 1; i <= 4; i++ {
		content := fmt.Sprintf("m%d", i)
		emb.set(content, onTopic)
		r.RouteMessage(ctx, topic.RoleUser, content, nil)
	}
	r.Wait()

	assert.Empty(t, r.Current().Name())
	assert.Zero(t, sum.callCount())
}

func TestAnalyze_NamingFailureRetriesAndLeavesUnnamed(t *testing.T) {
	emb := newStubEmbedder()
	sum := &fakeSummarizer{err: errors.New("summarizer down")}
	r := newTestRouter(t, emb, sum)

	ctx := context.Background()
	for i := 1; i <= 5; i++ {
		content := fmt.Sprintf("m%d", i)
		emb.set(content, onTopic)
		r.RouteMessage(ctx, topic.RoleUser, content, nil)
	}
	r.Wait()

	assert.Empty(t, r.Current().Name(), "exhausted retries leave the topic unnamed")
	assert.Equal(t, DefaultConfig().MaxRetries, sum.callCount(),
		"one naming cycle retries up to the bound")
}

func TestAnalyze_DriftCreatesNewTopicAndTruncatesOriginal(t *testing.T) {
	emb := newStubEmbedder()
	sum := &fakeSummarizer{responses: []string{
		topicInfoJSON("alpha", "alpha description"),
		topicInfoJSON("beta", "beta description"),
	}}
	r := newTestRouter(t, emb, sum)

	seedNamedTopic(t, r, emb)
	alpha := r.Current()

	emb.set("beta description", offTopic)
	ctx := context.Background()
	for i := 6; i <= 8; i++ {
		content := fmt.Sprintf("beta message %d", i)
		emb.set(content, offTopic)
		r.RouteMessage(ctx, topic.RoleUser, content, nil)
		r.Wait()
	}

	// At history length 8 the trailing slice scores [1, 0, 0, 0] against
	// the alpha description: three of four below threshold, drift starts
	// at the first off-topic message (absolute index 5).
	beta := r.Current()
	require.Equal(t, "beta", beta.Name())
	assert.Equal(t, 3, beta.HistoryLen())
	assert.Equal(t, offTopic, beta.DescriptionEmbedding())

	assert.Equal(t, 5, alpha.HistoryLen(), "migrated tail is dropped from the original topic")
	history := beta.History()
	assert.Equal(t, "beta message 6", history[0].Content)
	assert.Equal(t, "beta message 8", history[2].Content)

	// Alpha moved into the stored collection on the switch.
	assert.Contains(t, r.Topics(), alpha)
}

func TestAnalyze_ExactHalfSplitDoesNotTriggerDrift(t *testing.T) {
	emb := newStubEmbedder()
	sum := &fakeSummarizer{responses: []string{topicInfoJSON("alpha", "alpha description")}}
	r := newTestRouter(t, emb, sum)

	seedNamedTopic(t, r, emb)

	// Slice at length 8: [on, off, off, on] scores [1, 0, 0, 1] — exactly
	// half below threshold must not trigger drift.
	ctx := context.Background()
	for i, vec := range [][]float32{offTopic, offTopic, onTopic} {
		content := fmt.Sprintf("mixed message %d", i)
		emb.set(content, vec)
		r.RouteMessage(ctx, topic.RoleUser, content, nil)
		r.Wait()
	}

	assert.Equal(t, "alpha", r.Current().Name())
	assert.Equal(t, 8, r.Current().HistoryLen())
	assert.Equal(t, 1, sum.callCount(), "no drift summarization beyond the naming call")
}

func TestAnalyze_DriftMigratesToMatchingStoredTopic(t *testing.T) {
	emb := newStubEmbedder()
	sum := &fakeSummarizer{responses: []string{
		topicInfoJSON("alpha", "alpha description"),
		topicInfoJSON("beta-like", "beta description"),
	}}
	r := newTestRouter(t, emb, sum)

	seedNamedTopic(t, r, emb)
	alpha := r.Current()
	beta := storeTopic(r, "beta", []float32{0, 1, 0})

	// Segment messages score zero against both the alpha description and
	// the beta description, so routing never switches directly; only the
	// drift candidate description matches beta.
	emb.set("beta description", []float32{0, 1, 0})
	ctx := context.Background()
	for i := 6; i <= 8; i++ {
		content := fmt.Sprintf("beta message %d", i)
		emb.set(content, []float32{0, 0, 1})
		r.RouteMessage(ctx, topic.RoleUser, content, nil)
		r.Wait()
	}

	// The candidate description matches the stored beta topic, so the
	// segment migrates there instead of creating "beta-like".
	require.Same(t, beta, r.Current())
	assert.Equal(t, 5, alpha.HistoryLen())
	assert.GreaterOrEqual(t, beta.HistoryLen(), 3)
	for _, tp := range r.Topics() {
		assert.NotEqual(t, "beta-like", tp.Name())
	}
}

func TestAnalyze_DriftSummarizationFailureSkipsCycle(t *testing.T) {
	emb := newStubEmbedder()
	sum := &fakeSummarizer{responses: []string{topicInfoJSON("alpha", "alpha description")}}
	r := newTestRouter(t, emb, sum)

	seedNamedTopic(t, r, emb)
	// After the naming response is consumed the fake keeps returning it,
	// so make the summarizer fail for the drift call instead.
	sum.mu.Lock()
	sum.err = errors.New("summarizer down")
	sum.mu.Unlock()

	ctx := context.Background()
	for i := 6; i <= 8; i++ {
		content := fmt.Sprintf("beta message %d", i)
		emb.set(content, offTopic)
		r.RouteMessage(ctx, topic.RoleUser, content, nil)
		r.Wait()
	}

	assert.Equal(t, "alpha", r.Current().Name(), "failed split leaves the topic intact")
	assert.Equal(t, 8, r.Current().HistoryLen())
}
