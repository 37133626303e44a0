package index

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestFlatSearch(t *testing.T) {
	f := NewFlat(2)
	require.NoError(t, f.Add(
		[]Chunk{{Text: "origin"}, {Text: "far"}, {Text: "near"}},
		[][]float32{{0, 0}, {10, 10}, {1, 1}},
	))
	assert.Equal(t, 3, f.Len())

	hits, err := f.Search([]float32{0.9, 0.9}, 2)
	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, "near", hits[0].Chunk.Text)
	assert.Equal(t, "origin", hits[1].Chunk.Text)
	assert.InDelta(t, 0.02, hits[0].Distance, 1e-6)

	all, err := f.Search([]float32{0, 0}, 10)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	for _, k := range []int{0, -1} {
		none, err := f.Search([]float32{0, 0}, k)
		require.NoError(t, err)
		assert.Empty(t, none)
	}
}

func TestFlatDimensionChecks(t *testing.T) {
	f := NewFlat(3)
	err := f.Add([]Chunk{{Text: "a"}, {Text: "b"}}, [][]float32{{1, 2, 3}, {1, 2}})
	assert.ErrorIs(t, err, ErrDimensionMismatch)
	assert.Equal(t, 0, f.Len())

	assert.Error(t, f.Add([]Chunk{{Text: "a"}}, nil))

	_, err = f.Search([]float32{1}, 1)
	assert.ErrorIs(t, err, ErrDimensionMismatch)
}

type keywordEmbedder struct{}

// Embeds on two axes: mentions of "cell" and mentions of "star".
func (keywordEmbedder) vec(s string) []float32 {
	return []float32{float32(strings.Count(s, "cell")), float32(strings.Count(s, "star"))}
}

func (k keywordEmbedder) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = k.vec(t)
	}
	return out, nil
}

func (k keywordEmbedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	return k.vec(text), nil
}

type recordingGenerator struct{ prompt string }

func (g *recordingGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	g.prompt = prompt
	return "answer", nil
}

func TestEngineQuery(t *testing.T) {
	f := NewFlat(2)
	texts := []string{"the cell membrane", "a star is born", "cell cell division"}
	vecs, _ := keywordEmbedder{}.EmbedDocuments(context.Background(), texts)
	require.NoError(t, f.Add([]Chunk{{Text: texts[0]}, {Text: texts[1]}, {Text: texts[2]}}, vecs))

	gen := &recordingGenerator{}
	e := NewEngine(f, keywordEmbedder{}, gen, 1, zap.NewNop())
	out, err := e.Query(context.Background(), "tell me about the cell")
	require.NoError(t, err)
	assert.Equal(t, "answer", out)
	assert.Contains(t, gen.prompt, "the cell membrane")
	assert.NotContains(t, gen.prompt, "a star is born")
	assert.Contains(t, gen.prompt, "Query: tell me about the cell")
}
