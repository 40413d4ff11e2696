package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/h32109/stock-service/internal/feature/stocks/domain/entity"
	"github.com/h32109/stock-service/internal/shared/hangul"
)

func TestNewIndex_RecomputesInitials(t *testing.T) {
	t.Parallel()

	secs := testSecurities()
	secs[0].NameInitial = "stale"

	idx, err := NewIndex(secs)
	require.NoError(t, err)

	for _, s := range idx.Securities() {
		assert.Equal(t, hangul.Initials(s.Name), s.NameInitial, s.Code)
	}
	sec, ok := idx.ByCode("005930")
	require.True(t, ok)
	assert.Equal(t, "ㅅㅅㅈㅈ", sec.NameInitial)
	// caller's slice is untouched
	assert.Equal(t, "stale", secs[0].NameInitial)
}

func TestNewIndex_RejectsBadCodes(t *testing.T) {
	t.Parallel()

	_, err := NewIndex([]entity.Security{{Code: "1", Name: "a"}, {Code: "1", Name: "b"}})
	assert.Error(t, err)

	_, err = NewIndex([]entity.Security{{Name: "no code"}})
	assert.Error(t, err)

	_, err = NewIndex([]entity.Security{{Code: "a0001", Name: "a"}, {Code: "A0001", Name: "b"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "collide after normalization")
}

func TestIndex_ByName(t *testing.T) {
	t.Parallel()

	idx, err := NewIndex(testSecurities())
	require.NoError(t, err)

	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{name: "korean substring", query: "삼성", want: []string{"005930", "009150", "028260", "999990"}},
		{name: "single rune", query: "카", want: []string{"035720"}},
		{name: "english case insensitive", query: Normalize("HYNIX"), want: []string{"000660"}},
		{name: "english spaces stripped", query: Normalize("samsung c&t"), want: []string{"028260"}},
		{name: "mixed script", query: Normalize("sk하이"), want: []string{"000660"}},
		{name: "no bigram", query: "없음", want: nil},
		{name: "missing bigram", query: "삼전", want: nil},
		{name: "empty", query: "", want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, idx.ByName(tt.query))
		})
	}
}

func TestIndex_ByInitial(t *testing.T) {
	t.Parallel()

	idx, err := NewIndex(testSecurities())
	require.NoError(t, err)

	assert.Equal(t, []string{"005930"}, idx.ByInitial("ㅅㅅㅈㅈ"))
	assert.Equal(t, []string{"009150", "005930"}, idx.ByInitial("ㅅㅅㅈ"))
	assert.Equal(t, []string{"028260", "009150", "005930", "999990"}, idx.ByInitial("ㅅㅅ"))
	assert.Nil(t, idx.ByInitial("ㅎㅎ"))
	assert.Nil(t, idx.ByInitial(""))
}

func TestIndex_ByCode(t *testing.T) {
	t.Parallel()

	idx, err := NewIndex([]entity.Security{{Code: "0000J0", Name: "신규상장"}})
	require.NoError(t, err)

	_, ok := idx.ByCode("0000j0")
	assert.False(t, ok)
	sec, ok := idx.ByCodeKey(Normalize("0000j0"))
	require.True(t, ok)
	assert.Equal(t, "0000J0", sec.Code)
}

func TestIndex_ByClassification(t *testing.T) {
	t.Parallel()

	idx, err := NewIndex(testSecurities())
	require.NoError(t, err)

	assert.Equal(t, []string{"000660", "005930", "999990"}, idx.ByClassification("tech-001-001"))
	// direct associations only
	assert.Empty(t, idx.ByClassification("tech-001"))
}
