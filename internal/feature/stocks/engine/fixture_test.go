package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/h32109/stock-service/internal/feature/stocks/domain/entity"
)

func testNodes() []entity.ClassificationNode {
	return []entity.ClassificationNode{
		{Code: "tech", Name: "기술", Level: entity.LevelLarge},
		{Code: "tech-001", Name: "반도체", Level: entity.LevelMedium, ParentCode: "tech"},
		{Code: "tech-001-001", Name: "메모리", Level: entity.LevelSmall, ParentCode: "tech-001"},
		{Code: "tech-001-002", Name: "반도체장비", Level: entity.LevelSmall, ParentCode: "tech-001"},
		{Code: "auto", Name: "자동차", Level: entity.LevelLarge},
		{Code: "auto-001", Name: "완성차", Level: entity.LevelMedium, ParentCode: "auto"},
	}
}

func testSecurities() []entity.Security {
	sec := func(code, name, nameEn string, active bool, themes ...string) entity.Security {
		return entity.Security{
			Code:         code,
			Name:         name,
			NameEn:       nameEn,
			SecurityType: entity.SecurityTypeStock,
			MarketType:   entity.MarketKOSPI,
			IsActive:     active,
			ThemeCodes:   themes,
		}
	}
	return []entity.Security{
		sec("005930", "삼성전자", "Samsung Electronics", true, "tech-001-001"),
		sec("000660", "SK하이닉스", "SK hynix", true, "tech-001-001"),
		sec("042700", "한미반도체", "Hanmi Semiconductor", true, "tech-001-002"),
		sec("005380", "현대차", "Hyundai Motor", true, "auto-001"),
		sec("028260", "삼성물산", "Samsung C&T", true),
		sec("009150", "삼성전기", "Samsung Electro-Mechanics", true, "tech"),
		sec("999990", "삼성폐지", "Samsung Delisted", false, "tech-001-001"),
		sec("035720", "카카오", "Kakao", true),
	}
}

func testCatalog() entity.Catalog {
	return entity.Catalog{Securities: testSecurities(), Nodes: testNodes()}
}

func buildTestSnapshot(t *testing.T) *Snapshot {
	t.Helper()
	s, err := BuildSnapshot(testCatalog(), "v-test", time.Date(2026, 1, 2, 9, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	return s
}
