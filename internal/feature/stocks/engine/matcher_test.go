package engine

import (
	"strings"
	"testing"

	"github.com/panjf2000/ants/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/h32109/stock-service/internal/feature/stocks/domain"
	"github.com/h32109/stock-service/internal/feature/stocks/domain/entity"
)

func kinds(ks ...entity.MatchKind) KindSet {
	var s KindSet
	for _, k := range ks {
		s = s.Add(k)
	}
	return s
}

func TestMatcher_Match(t *testing.T) {
	t.Parallel()

	snap := buildTestSnapshot(t)
	m := NewMatcher()

	tests := []struct {
		name  string
		query string
		want  Matches
	}{
		{
			name:  "initial sequence",
			query: "ㅅㅅㅈㅈ",
			want:  Matches{"005930": kinds(entity.MatchInitial)},
		},
		{
			name:  "initial prefix",
			query: "ㅅㅅㅈ",
			want: Matches{
				"005930": kinds(entity.MatchInitial),
				"009150": kinds(entity.MatchInitial),
			},
		},
		{
			name:  "small classification",
			query: "메모리",
			want: Matches{
				"005930": kinds(entity.MatchSmallIndustry),
				"000660": kinds(entity.MatchSmallIndustry),
			},
		},
		{
			name:  "medium classification expands to descendants",
			query: "반도체",
			want: Matches{
				"005930": kinds(entity.MatchMediumIndustry),
				"000660": kinds(entity.MatchMediumIndustry),
				"042700": kinds(entity.MatchName, entity.MatchMediumIndustry, entity.MatchSmallIndustry),
			},
		},
		{
			name:  "large classification",
			query: "기술",
			want: Matches{
				"005930": kinds(entity.MatchLargeIndustry),
				"000660": kinds(entity.MatchLargeIndustry),
				"042700": kinds(entity.MatchLargeIndustry),
				"009150": kinds(entity.MatchLargeIndustry),
			},
		},
		{
			name:  "exact code",
			query: "005930",
			want:  Matches{"005930": kinds(entity.MatchCode)},
		},
		{
			name:  "korean name also matches initials",
			query: "삼성",
			want: Matches{
				"005930": kinds(entity.MatchName, entity.MatchInitial),
				"009150": kinds(entity.MatchName, entity.MatchInitial),
				"028260": kinds(entity.MatchName, entity.MatchInitial),
			},
		},
		{
			name:  "english name",
			query: "Samsung",
			want: Matches{
				"005930": kinds(entity.MatchName),
				"009150": kinds(entity.MatchName),
				"028260": kinds(entity.MatchName),
			},
		},
		{
			name:  "full width latin",
			query: "ＫＡＫＡＯ",
			want:  Matches{"035720": kinds(entity.MatchName)},
		},
		{
			name:  "inactive only match",
			query: "삼성폐지",
			want:  Matches{},
		},
		{
			name:  "no match",
			query: "없는회사",
			want:  Matches{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := m.Match(snap, tt.query)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMatcher_Match_InvalidQuery(t *testing.T) {
	t.Parallel()

	snap := buildTestSnapshot(t)
	m := NewMatcher()

	for _, q := range []string{"", "   ", strings.Repeat("가", 21)} {
		_, err := m.Match(snap, q)
		assert.ErrorIs(t, err, domain.ErrInvalidQuery, "%q", q)
	}

	_, err := m.Match(snap, strings.Repeat("가", 20))
	assert.NoError(t, err)
}

func TestMatcher_Match_IndexUnavailable(t *testing.T) {
	t.Parallel()

	m := NewMatcher()

	_, err := m.Match(nil, "삼성")
	assert.ErrorIs(t, err, domain.ErrIndexUnavailable)

	_, err = m.Match(&Snapshot{Version: "broken"}, "삼성")
	assert.ErrorIs(t, err, domain.ErrIndexUnavailable)
}

func TestMatcher_Match_LegacyIndustryTag(t *testing.T) {
	t.Parallel()

	snap := buildTestSnapshot(t)
	m := NewMatcher(WithLegacyIndustryTag(true))

	got, err := m.Match(snap, "메모리")
	require.NoError(t, err)
	assert.Equal(t, Matches{
		"005930": kinds(entity.MatchIndustry),
		"000660": kinds(entity.MatchIndustry),
	}, got)
}

func TestMatcher_Match_PoolMatchesSequential(t *testing.T) {
	t.Parallel()

	pool, err := ants.NewPool(4)
	require.NoError(t, err)
	defer pool.Release()

	snap := buildTestSnapshot(t)
	seq := NewMatcher()
	par := NewMatcher(WithPool(pool))

	for _, q := range []string{"삼성", "반도체", "ㅅㅅ", "005930", "hynix", "기술"} {
		want, err := seq.Match(snap, q)
		require.NoError(t, err)
		got, err := par.Match(snap, q)
		require.NoError(t, err)
		assert.Equal(t, want, got, q)
	}
}

func TestMatcher_Match_ReleasedPoolFailsWholeCall(t *testing.T) {
	t.Parallel()

	pool, err := ants.NewPool(1)
	require.NoError(t, err)
	pool.Release()

	_, err = NewMatcher(WithPool(pool)).Match(buildTestSnapshot(t), "삼성")
	assert.ErrorIs(t, err, domain.ErrIndexUnavailable)
}
