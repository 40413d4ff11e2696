package engine

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/h32109/stock-service/internal/feature/stocks/domain"
	"github.com/h32109/stock-service/internal/feature/stocks/domain/entity"
	"github.com/h32109/stock-service/internal/shared/hangul"
)

func TestBuildSnapshot_InitialsConsistent(t *testing.T) {
	t.Parallel()

	snap := buildTestSnapshot(t)
	for _, s := range snap.Index.Securities() {
		assert.Equal(t, hangul.Initials(s.Name), s.NameInitial, s.Code)
	}
}

func TestBuildSnapshot_DropsDanglingThemes(t *testing.T) {
	t.Parallel()

	cat := testCatalog()
	cat.Securities[0].ThemeCodes = append(cat.Securities[0].ThemeCodes, "gone")

	snap, err := BuildSnapshot(cat, "v1", time.Now())
	require.NoError(t, err)
	assert.Equal(t, []string{"005930/gone"}, snap.DanglingThemes)

	sec, ok := snap.Index.ByCode("005930")
	require.True(t, ok)
	assert.Equal(t, []string{"tech-001-001"}, sec.ThemeCodes)
}

func TestBuildSnapshot_InvalidHierarchy(t *testing.T) {
	t.Parallel()

	cat := testCatalog()
	cat.Nodes = append(cat.Nodes, entity.ClassificationNode{Code: "orphan", Name: "고아", Level: entity.LevelSmall, ParentCode: "none"})

	_, err := BuildSnapshot(cat, "v1", time.Now())
	assert.ErrorIs(t, err, domain.ErrInvalidHierarchy)
}

func TestHolder_SwapKeepsInFlightSnapshot(t *testing.T) {
	t.Parallel()

	h := NewHolder()
	assert.Nil(t, h.Load())

	old := buildTestSnapshot(t)
	assert.Nil(t, h.Swap(old))

	inFlight := h.Load()

	cat := testCatalog()
	cat.Securities = cat.Securities[:1]
	fresh, err := BuildSnapshot(cat, "v-next", time.Now())
	require.NoError(t, err)

	assert.Same(t, old, h.Swap(fresh))
	assert.Same(t, fresh, h.Load())
	// the reader that started before the swap still sees the full catalog
	assert.Equal(t, 8, inFlight.Index.Len())
	assert.Equal(t, 1, h.Load().Index.Len())
}

func TestHolder_ConcurrentReaders(t *testing.T) {
	t.Parallel()

	h := NewHolder()
	h.Swap(buildTestSnapshot(t))
	m := NewMatcher()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				_, err := m.Match(h.Load(), "삼성")
				assert.NoError(t, err)
			}
		}()
	}
	for i := 0; i < 5; i++ {
		snap, err := BuildSnapshot(testCatalog(), "v", time.Now())
		require.NoError(t, err)
		h.Swap(snap)
	}
	wg.Wait()
}

func TestDetail(t *testing.T) {
	t.Parallel()

	snap := buildTestSnapshot(t)

	d, err := Detail(snap, "005930")
	require.NoError(t, err)
	assert.Equal(t, "삼성전자", d.Security.Name)
	require.Len(t, d.Themes, 1)
	assert.Equal(t, "tech", d.Themes[0].Large.Code)

	inactive, err := Detail(snap, "999990")
	require.NoError(t, err)
	assert.False(t, inactive.Security.IsActive)

	largeOnly, err := Detail(snap, "009150")
	require.NoError(t, err)
	require.Len(t, largeOnly.Themes, 1)
	assert.Nil(t, largeOnly.Themes[0].Medium)

	_, err = Detail(snap, "123456")
	assert.ErrorIs(t, err, domain.ErrStockNotFound)

	_, err = Detail(nil, "005930")
	assert.ErrorIs(t, err, domain.ErrIndexUnavailable)
}

func TestNormalize(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "samsungelectronics", Normalize("  Samsung   Electronics "))
	assert.Equal(t, "sk하이닉스", Normalize("ＳＫ 하이닉스"))
	assert.Equal(t, "삼성전자", Normalize("삼성\t전자"))
	assert.Equal(t, "", Normalize(" \n "))
}
