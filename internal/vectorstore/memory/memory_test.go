package memory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"medrag/internal/domain"
)

func rec(chapter string, idx int, topic string) domain.DatasetRecord {
	return domain.DatasetRecord{ChapterID: chapter, ChunkIndex: idx, TopicName: topic}
}

func TestSearchOrdersByScore(t *testing.T) {
	s := NewStorage()
	require.NoError(t, s.Init(2))
	require.NoError(t, s.Upsert(
		[]domain.DatasetRecord{rec("CH-0001", 0, "a"), rec("CH-0001", 1, "b"), rec("CH-0002", 0, "c")},
		[][]float64{{1, 0}, {0, 1}, {0.6, 0.8}},
	))

	res, err := s.Search([]float64{0, 1}, 2)
	require.NoError(t, err)
	require.Len(t, res, 2)
	assert.Equal(t, "b", res[0].Record.TopicName)
	assert.Equal(t, "c", res[1].Record.TopicName)
	assert.InDelta(t, 0.8, res[1].Score, 1e-9)

	all, err := s.Search([]float64{1, 0}, 0)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestUpsertReplacesByKey(t *testing.T) {
	s := NewStorage()
	require.NoError(t, s.Init(2))
	require.NoError(t, s.Upsert([]domain.DatasetRecord{rec("CH-0001", 0, "old")}, [][]float64{{1, 0}}))
	require.NoError(t, s.Upsert([]domain.DatasetRecord{rec("CH-0001", 0, "new")}, [][]float64{{0, 1}}))
	assert.Equal(t, 1, s.Len())

	res, err := s.Search([]float64{0, 1}, 1)
	require.NoError(t, err)
	assert.Equal(t, "new", res[0].Record.TopicName)
}

func TestValidation(t *testing.T) {
	s := NewStorage()
	assert.Error(t, s.Init(0))
	require.NoError(t, s.Init(3))
	assert.Error(t, s.Upsert([]domain.DatasetRecord{rec("CH-0001", 0, "a")}, nil))
	assert.Error(t, s.Upsert([]domain.DatasetRecord{rec("CH-0001", 0, "a")}, [][]float64{{1, 0}}))

	require.NoError(t, s.Upsert([]domain.DatasetRecord{rec("CH-0001", 0, "a")}, [][]float64{{1, 0, 0}}))
	require.NoError(t, s.Clear())
	assert.Equal(t, 0, s.Len())
}
