// Package excel reads and writes the catalog workbook used for bulk imports
// (KRX listing exports reshaped into four sheets).
package excel

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/h32109/stock-service/internal/feature/stocks/domain/entity"
	"github.com/h32109/stock-service/internal/feature/stocks/usecase"
)

const (
	SheetSecurities      = "securities"
	SheetClassifications = "classifications"
	SheetThemes          = "themes"
	SheetQuotes          = "quotes"

	dateLayout = "2006-01-02"
)

var (
	securityHeaders       = []string{"code", "name", "name_en", "security_type", "market_type", "industry_code", "listing_date", "shares_outstanding", "is_active"}
	classificationHeaders = []string{"code", "name", "level", "parent_code"}
	themeHeaders          = []string{"stock_code", "node_code"}
	quoteHeaders          = []string{"code", "trading_date", "current_price", "previous_price", "open_price", "high_price", "low_price", "volume", "price_change", "market_cap"}
)

type catalogWorkbook struct {
	path string
}

var _ usecase.CatalogProvider = (*catalogWorkbook)(nil)

// NewCatalogWorkbook returns a provider reading the workbook at path on every load.
func NewCatalogWorkbook(path string) *catalogWorkbook {
	return &catalogWorkbook{path: path}
}

func (w *catalogWorkbook) LoadCatalog(ctx context.Context) (entity.Catalog, error) {
	f, err := excelize.OpenFile(w.path)
	if err != nil {
		return entity.Catalog{}, fmt.Errorf("open workbook %s: %w", w.path, err)
	}
	defer f.Close()
	return ReadCatalog(f)
}

// ReadCatalogFrom parses a workbook from r.
func ReadCatalogFrom(r io.Reader) (entity.Catalog, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return entity.Catalog{}, fmt.Errorf("parse workbook: %w", err)
	}
	defer f.Close()
	return ReadCatalog(f)
}

// ReadCatalog parses the securities and classifications sheets, plus the
// optional themes and quotes sheets. Columns are located by header name.
func ReadCatalog(f *excelize.File) (entity.Catalog, error) {
	var out entity.Catalog

	secRows, err := sheetRows(f, SheetSecurities, true)
	if err != nil {
		return out, err
	}
	byCode := make(map[string]int, len(secRows))
	for _, row := range secRows {
		s, err := parseSecurity(row)
		if err != nil {
			return out, fmt.Errorf("%s row %d: %w", SheetSecurities, row.line, err)
		}
		if _, dup := byCode[s.Code]; dup {
			return out, fmt.Errorf("%s row %d: duplicate code %q", SheetSecurities, row.line, s.Code)
		}
		byCode[s.Code] = len(out.Securities)
		out.Securities = append(out.Securities, s)
	}

	nodeRows, err := sheetRows(f, SheetClassifications, true)
	if err != nil {
		return out, err
	}
	for _, row := range nodeRows {
		n := entity.ClassificationNode{
			Code:       row.get("code"),
			Name:       row.get("name"),
			Level:      entity.Level(strings.ToUpper(row.get("level"))),
			ParentCode: row.get("parent_code"),
		}
		if n.Code == "" || n.Name == "" {
			return out, fmt.Errorf("%s row %d: code and name are required", SheetClassifications, row.line)
		}
		out.Nodes = append(out.Nodes, n)
	}

	themeRows, err := sheetRows(f, SheetThemes, false)
	if err != nil {
		return out, err
	}
	for _, row := range themeRows {
		idx, ok := byCode[row.get("stock_code")]
		if !ok {
			return out, fmt.Errorf("%s row %d: unknown stock %q", SheetThemes, row.line, row.get("stock_code"))
		}
		out.Securities[idx].ThemeCodes = append(out.Securities[idx].ThemeCodes, row.get("node_code"))
	}

	quoteRows, err := sheetRows(f, SheetQuotes, false)
	if err != nil {
		return out, err
	}
	for _, row := range quoteRows {
		idx, ok := byCode[row.get("code")]
		if !ok {
			return out, fmt.Errorf("%s row %d: unknown stock %q", SheetQuotes, row.line, row.get("code"))
		}
		q, err := parseQuote(row)
		if err != nil {
			return out, fmt.Errorf("%s row %d: %w", SheetQuotes, row.line, err)
		}
		out.Securities[idx].Quote = q
	}
	return out, nil
}

type row struct {
	line   int // 1 始まりのシート上の行番号
	header map[string]int
	cells  []string
}

func (r row) get(name string) string {
	i, ok := r.header[name]
	if !ok || i >= len(r.cells) {
		return ""
	}
	return strings.TrimSpace(r.cells[i])
}

// sheetRows returns the data rows of sheet. A missing optional sheet yields no rows.
func sheetRows(f *excelize.File, sheet string, required bool) ([]row, error) {
	if idx, err := f.GetSheetIndex(sheet); err != nil || idx < 0 {
		if required {
			return nil, fmt.Errorf("sheet %q not found", sheet)
		}
		return nil, nil
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	header := make(map[string]int, len(rows[0]))
	for i, h := range rows[0] {
		header[strings.ToLower(strings.TrimSpace(h))] = i
	}
	out := make([]row, 0, len(rows)-1)
	for i, cells := range rows[1:] {
		if isBlank(cells) {
			continue
		}
		out = append(out, row{line: i + 2, header: header, cells: cells})
	}
	return out, nil
}

func isBlank(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

func parseSecurity(r row) (entity.Security, error) {
	s := entity.Security{
		Code:         r.get("code"),
		Name:         r.get("name"),
		NameEn:       r.get("name_en"),
		SecurityType: entity.SecurityType(strings.ToUpper(r.get("security_type"))),
		MarketType:   entity.MarketType(strings.ToUpper(r.get("market_type"))),
		IndustryCode: r.get("industry_code"),
		IsActive:     true,
	}
	if s.Code == "" || s.Name == "" {
		return s, fmt.Errorf("code and name are required")
	}
	if !s.SecurityType.Valid() {
		return s, fmt.Errorf("unknown security_type %q", s.SecurityType)
	}
	if !s.MarketType.Valid() {
		return s, fmt.Errorf("unknown market_type %q", s.MarketType)
	}
	if v := r.get("listing_date"); v != "" {
		t, err := time.Parse(dateLayout, v)
		if err != nil {
			return s, fmt.Errorf("listing_date: %w", err)
		}
		s.ListingDate = t
	}
	if v := r.get("shares_outstanding"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return s, fmt.Errorf("shares_outstanding: %w", err)
		}
		s.SharesOutstanding = n
	}
	if v := r.get("is_active"); v != "" {
		b, err := parseBool(v)
		if err != nil {
			return s, fmt.Errorf("is_active: %w", err)
		}
		s.IsActive = b
	}
	return s, nil
}

func parseBool(v string) (bool, error) {
	switch strings.ToUpper(v) {
	case "Y", "YES":
		return true, nil
	case "N", "NO":
		return false, nil
	}
	return strconv.ParseBool(v)
}

func parseQuote(r row) (*entity.Quote, error) {
	td, err := time.Parse(dateLayout, r.get("trading_date"))
	if err != nil {
		return nil, fmt.Errorf("trading_date: %w", err)
	}
	q := &entity.Quote{TradingDate: td}
	fields := []struct {
		name string
		dst  *decimal.Decimal
	}{
		{"current_price", &q.CurrentPrice},
		{"previous_price", &q.PreviousPrice},
		{"open_price", &q.OpenPrice},
		{"high_price", &q.HighPrice},
		{"low_price", &q.LowPrice},
		{"price_change", &q.PriceChange},
		{"market_cap", &q.MarketCap},
	}
	for _, fd := range fields {
		v := r.get(fd.name)
		if v == "" {
			continue
		}
		d, err := decimal.NewFromString(strings.ReplaceAll(v, ",", ""))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", fd.name, err)
		}
		*fd.dst = d
	}
	if v := r.get("volume"); v != "" {
		n, err := strconv.ParseInt(strings.ReplaceAll(v, ",", ""), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("volume: %w", err)
		}
		q.Volume = n
	}
	return q, nil
}

// WriteCatalog writes catalog into a new workbook at path using the same
// layout ReadCatalog expects.
func WriteCatalog(path string, catalog entity.Catalog) error {
	f := excelize.NewFile()
	defer f.Close()

	var secRows, themeRows, quoteRows [][]any
	for _, s := range catalog.Securities {
		listing := ""
		if !s.ListingDate.IsZero() {
			listing = s.ListingDate.Format(dateLayout)
		}
		secRows = append(secRows, []any{
			s.Code, s.Name, s.NameEn, string(s.SecurityType), string(s.MarketType),
			s.IndustryCode, listing, strconv.FormatInt(s.SharesOutstanding, 10), strconv.FormatBool(s.IsActive),
		})
		for _, node := range s.ThemeCodes {
			themeRows = append(themeRows, []any{s.Code, node})
		}
		if q := s.Quote; q != nil {
			quoteRows = append(quoteRows, []any{
				s.Code, q.TradingDate.Format(dateLayout),
				q.CurrentPrice.String(), q.PreviousPrice.String(), q.OpenPrice.String(),
				q.HighPrice.String(), q.LowPrice.String(), strconv.FormatInt(q.Volume, 10),
				q.PriceChange.String(), q.MarketCap.String(),
			})
		}
	}
	var nodeRows [][]any
	for _, n := range catalog.Nodes {
		nodeRows = append(nodeRows, []any{n.Code, n.Name, string(n.Level), n.ParentCode})
	}

	sheets := []struct {
		name    string
		headers []string
		rows    [][]any
	}{
		{SheetSecurities, securityHeaders, secRows},
		{SheetClassifications, classificationHeaders, nodeRows},
		{SheetThemes, themeHeaders, themeRows},
		{SheetQuotes, quoteHeaders, quoteRows},
	}
	for i, sh := range sheets {
		if _, err := f.NewSheet(sh.name); err != nil {
			return fmt.Errorf("create sheet %s: %w", sh.name, err)
		}
		if i == 0 {
			if err := f.DeleteSheet("Sheet1"); err != nil {
				return fmt.Errorf("delete default sheet: %w", err)
			}
		}
		if err := writeRow(f, sh.name, 1, toAny(sh.headers)); err != nil {
			return err
		}
		for j, r := range sh.rows {
			if err := writeRow(f, sh.name, j+2, r); err != nil {
				return err
			}
		}
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook %s: %w", path, err)
	}
	return nil
}

func writeRow(f *excelize.File, sheet string, rowNum int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, rowNum)
	if err != nil {
		return fmt.Errorf("failed to convert coordinates: %w", err)
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("write %s!%s: %w", sheet, cell, err)
	}
	return nil
}

func toAny(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}
