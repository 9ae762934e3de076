package topic

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTopic_AddMessageKeepsPairAligned(t *testing.T) {
	tp := New("", "")

	for i := 0; i < 5; i++ {
		tp.AddMessage(RoleUser, fmt.Sprintf("message %d", i), []float32{float32(i), 1})
	}

	require.Equal(t, 5, tp.HistoryLen())
	history := tp.History()
	require.Len(t, history, 5)
	for i, msg := range history {
		assert.Equal(t, fmt.Sprintf("message %d", i), msg.Content)
	}
}

func TestTopic_BestContextEmptyHistory(t *testing.T) {
	tp := New("go", "all about go")

	score, idx := tp.BestContext([]float32{1, 2, 3})
	assert.Equal(t, 0.0, score)
	assert.Equal(t, -1, idx)
}

func TestTopic_BestContextFindsClosestMessage(t *testing.T) {
	tp := New("go", "all about go")
	tp.AddMessage(RoleUser, "first", []float32{0, 1})
	tp.AddMessage(RoleAssistant, "second", []float32{1, 0.1})
	tp.AddMessage(RoleUser, "third", []float32{1, 1})

	score, idx := tp.BestContext([]float32{1, 0})
	assert.Equal(t, 1, idx)
	assert.InDelta(t, 0.995, score, 0.001)
}

func TestTopic_BestContextTieResolvesToFirst(t *testing.T) {
	tp := New("go", "all about go")
	tp.AddMessage(RoleUser, "first", []float32{2, 0})
	tp.AddMessage(RoleUser, "second", []float32{1, 0}) // same direction, same score

	_, idx := tp.BestContext([]float32{1, 0})
	assert.Equal(t, 0, idx)
}

func TestTopic_IndexFileUpserts(t *testing.T) {
	tp := New("", "")

	tp.IndexFile("src/app/main.py", []float32{1, 0})
	tp.IndexFile("src/app/main.py", []float32{0, 1})

	files := tp.Files()
	require.Len(t, files, 1)
	rec := files["src/app/main.py"]
	assert.Equal(t, "main.py", rec.Name)
	assert.Equal(t, "src/app/main.py", rec.Path)
	assert.Equal(t, []float32{0, 1}, rec.Embedding)
}

func TestTopic_TruncateHistory(t *testing.T) {
	tp := New("go", "all about go")
	for i := 0; i < 6; i++ {
		tp.AddMessage(RoleUser, fmt.Sprintf("m%d", i), []float32{float32(i)})
	}

	tp.TruncateHistory(4)
	assert.Equal(t, 4, tp.HistoryLen())

	// Out-of-range truncation is a no-op.
	tp.TruncateHistory(10)
	assert.Equal(t, 4, tp.HistoryLen())
	tp.TruncateHistory(-1)
	assert.Equal(t, 4, tp.HistoryLen())
}

func TestTopic_LastN(t *testing.T) {
	tp := New("go", "all about go")
	for i := 0; i < 3; i++ {
		tp.AddMessage(RoleUser, fmt.Sprintf("m%d", i), nil)
	}

	last := tp.LastN(5)
	require.Len(t, last, 3, "never more than the total history length")

	last = tp.LastN(2)
	require.Len(t, last, 2)
	assert.Equal(t, "m1", last[0].Content)
	assert.Equal(t, "m2", last[1].Content)
}

func TestTopic_SetInfo(t *testing.T) {
	tp := New("", "")
	assert.Empty(t, tp.Name())

	tp.SetInfo("debugging", "segfault in the parser", []float32{1, 2})
	assert.Equal(t, "debugging", tp.Name())
	assert.Equal(t, "segfault in the parser", tp.Description())
	assert.Equal(t, []float32{1, 2}, tp.DescriptionEmbedding())
}

func TestTopic_ConcurrentAddMessage(t *testing.T) {
	tp := New("", "")

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			tp.AddMessage(RoleUser, fmt.Sprintf("m%d", i), []float32{float32(i)})
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 50, tp.HistoryLen())
}

func TestTree_Render(t *testing.T) {
	tree := &Tree{Roots: []Node{
		Dir{Name: "src", Children: []Node{
			File{Name: "main.py"},
		}},
	}}

	want := "src/\n    -- main.py\n"
	assert.Equal(t, want, tree.Render())
}

func TestTree_RenderNested(t *testing.T) {
	tree := &Tree{Roots: []Node{
		Dir{Name: "src", Children: []Node{
			Dir{Name: "app", Children: []Node{
				File{Name: "main.py"},
				File{Name: "util.py"},
			}},
			File{Name: "README.md"},
		}},
	}}

	want := "src/\n" +
		"    app/\n" +
		"        -- main.py\n" +
		"        -- util.py\n" +
		"    -- README.md\n"
	assert.Equal(t, want, tree.Render())
}

func TestTree_RenderEmpty(t *testing.T) {
	var tree *Tree
	assert.Empty(t, tree.Render())
	assert.Empty(t, (&Tree{}).Render())
}
