package portfolio

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/dpetrov/folio/internal/common"
	"github.com/dpetrov/folio/internal/models"
	"github.com/dpetrov/folio/internal/parsers/xlsx"
)

// Canonical holding fields resolved from spreadsheet headers.
const (
	fieldTicker   = "ticker"
	fieldName     = "name"
	fieldType     = "type"
	fieldCurrency = "currency"
	fieldQty      = "qty"
	fieldAvgPrice = "avg_price"
	fieldInvested = "invested_value"
	fieldCurrent  = "current_value"
)

// columnAliases maps each canonical field to the header spellings the
// IntelliInvest export is known to use. Resolution picks the first alias
// present in the header.
var columnAliases = map[string][]string{
	fieldTicker:   {"Тикер", "Ticker", "Код", "Symbol"},
	fieldName:     {"Название", "Инструмент", "Name"},
	fieldType:     {"Тип", "Тип актива", "Type", "Asset Type"},
	fieldCurrency: {"Валюта", "Currency"},
	fieldQty:      {"Количество", "Кол-во", "Qty", "Quantity"},
	fieldAvgPrice: {"Средняя цена", "Цена покупки", "Avg Price", "Average Price"},
	fieldInvested: {"Вложено", "Сумма покупки", "Invested", "Invested Value"},
	fieldCurrent:  {"Стоимость", "Текущая стоимость", "Value", "Current Value"},
}

// requiredFields must resolve to a header column or the sync aborts.
var requiredFields = []string{fieldTicker, fieldQty, fieldCurrent}

// MissingColumnError indicates a required column could not be resolved from
// the header under any known alias.
type MissingColumnError struct {
	Field   string
	Aliases []string
}

func (e *MissingColumnError) Error() string {
	return fmt.Sprintf("required column '%s' not found (accepted headers: %s)",
		e.Field, strings.Join(e.Aliases, ", "))
}

// columnMap maps canonical fields to the actual header labels of this file.
type columnMap map[string]string

// resolveColumns matches the header labels against the alias table.
// Matching is case-insensitive on trimmed labels.
func resolveColumns(header []string) (columnMap, error) {
	byLower := make(map[string]string, len(header))
	for _, label := range header {
		byLower[strings.ToLower(strings.TrimSpace(label))] = label
	}

	cols := make(columnMap)
	for field, aliases := range columnAliases {
		for _, alias := range aliases {
			if label, ok := byLower[strings.ToLower(alias)]; ok {
				cols[field] = label
				break
			}
		}
	}

	for _, field := range requiredFields {
		if _, ok := cols[field]; !ok {
			return nil, &MissingColumnError{Field: field, Aliases: columnAliases[field]}
		}
	}

	return cols, nil
}

func (c columnMap) value(raw xlsx.RawRow, field string) string {
	label, ok := c[field]
	if !ok {
		return ""
	}
	return strings.TrimSpace(raw[label])
}

// normalizeRows maps raw rows to candidate holdings. Required columns are
// validated against the header even when no data rows follow, so an empty
// export with a broken header still aborts the sync. Rows whose required
// numerics fail to parse are skipped with a warning; duplicate tickers keep
// the last occurrence. share_pct is filled by a second pass over the
// surviving set.
func normalizeRows(header []string, rows []xlsx.RawRow, loc xlsx.Locale, logger *common.Logger) ([]*models.Holding, error) {
	cols, err := resolveColumns(header)
	if err != nil {
		return nil, err
	}

	byTicker := make(map[string]int)
	var holdings []*models.Holding
	for i, raw := range rows {
		holding, err := normalizeRow(raw, cols, loc)
		if err != nil {
			logger.Warn().Err(err).Int("row", i+1).Msg("Skipping unparsable row")
			continue
		}
		if idx, seen := byTicker[holding.Ticker]; seen {
			holdings[idx] = holding
			continue
		}
		byTicker[holding.Ticker] = len(holdings)
		holdings = append(holdings, holding)
	}

	computeShares(holdings)
	return holdings, nil
}

func normalizeRow(raw xlsx.RawRow, cols columnMap, loc xlsx.Locale) (*models.Holding, error) {
	ticker := cols.value(raw, fieldTicker)
	if ticker == "" {
		return nil, fmt.Errorf("row has no ticker")
	}
	ticker = strings.ToUpper(ticker)

	qty, err := xlsx.ParseDecimal(cols.value(raw, fieldQty), loc)
	if err != nil {
		return nil, fmt.Errorf("ticker %s: qty: %w", ticker, err)
	}
	current, err := xlsx.ParseDecimal(cols.value(raw, fieldCurrent), loc)
	if err != nil {
		return nil, fmt.Errorf("ticker %s: current_value: %w", ticker, err)
	}

	avgPrice := optionalDecimal(cols.value(raw, fieldAvgPrice), loc)
	invested := optionalDecimal(cols.value(raw, fieldInvested), loc)

	pnl := current.Sub(invested)
	pnlPct := decimal.Zero
	if !invested.IsZero() {
		pnlPct = pnl.Div(invested).Mul(decimal.NewFromInt(100))
	}

	currency := strings.ToUpper(cols.value(raw, fieldCurrency))
	if currency == "" {
		currency = models.InferCurrency(ticker)
	}

	return &models.Holding{
		Ticker:        ticker,
		Name:          cols.value(raw, fieldName),
		AssetType:     models.NormalizeAssetType(cols.value(raw, fieldType), ticker),
		Currency:      currency,
		Qty:           qty.InexactFloat64(),
		AvgPrice:      avgPrice.InexactFloat64(),
		InvestedValue: invested.InexactFloat64(),
		CurrentValue:  current.InexactFloat64(),
		PnlValue:      pnl.InexactFloat64(),
		PnlPct:        pnlPct.InexactFloat64(),
	}, nil
}

// optionalDecimal parses an optional numeric cell, treating absent or
// unparsable values as zero.
func optionalDecimal(s string, loc xlsx.Locale) decimal.Decimal {
	if strings.TrimSpace(s) == "" {
		return decimal.Zero
	}
	d, err := xlsx.ParseDecimal(s, loc)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// computeShares fills share_pct across the snapshot. All shares are zero
// when the total current value is zero.
func computeShares(holdings []*models.Holding) {
	total := decimal.Zero
	for _, h := range holdings {
		total = total.Add(decimal.NewFromFloat(h.CurrentValue))
	}
	if total.IsZero() {
		for _, h := range holdings {
			h.SharePct = 0
		}
		return
	}
	hundred := decimal.NewFromInt(100)
	for _, h := range holdings {
		h.SharePct = decimal.NewFromFloat(h.CurrentValue).Div(total).Mul(hundred).InexactFloat64()
	}
}
