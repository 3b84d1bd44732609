package models

import (
	"strings"
	"time"
)

// Asset type constants
const (
	AssetTypeStock  = "stock"
	AssetTypeBond   = "bond"
	AssetTypeCrypto = "crypto"
	AssetTypeCash   = "cash"
	AssetTypeAsset  = "asset"
)

// Sentiment label constants
const (
	SentimentPositive = "positive"
	SentimentNeutral  = "neutral"
	SentimentNegative = "negative"
)

// Origin tags written by the sync variants. Spreadsheet uploads and public
// page scrapes maintain separate snapshots.
const (
	SourceIntelliInvest       = "intellinvest"
	SourceIntelliInvestPublic = "intellinvest_public"
)

// Holding represents one portfolio position for a ticker at snapshot time.
// The store holds at most one live row per ticker; a sync replaces the full
// set for its source.
type Holding struct {
	Ticker        string    `json:"ticker" badgerhold:"key"`
	Name          string    `json:"name"`
	AssetType     string    `json:"asset_type"`
	Currency      string    `json:"currency"`
	Qty           float64   `json:"qty"`
	AvgPrice      float64   `json:"avg_price"`
	InvestedValue float64   `json:"invested_value"`
	CurrentValue  float64   `json:"current_value"`
	PnlValue      float64   `json:"pnl_value"`
	PnlPct        float64   `json:"pnl_pct"`
	SharePct      float64   `json:"share_pct"`
	Source        string    `json:"source" badgerhold:"index"`
	AsOf          time.Time `json:"as_of"`
	Sentiment     string    `json:"sentiment,omitempty"`
}

// HoldingFilter narrows List queries. Ticker matches as a case-insensitive
// substring. Zero Limit means no cap.
type HoldingFilter struct {
	Ticker    string
	AssetType string
	Currency  string
	Skip      int
	Limit     int
}

// SyncResult summarizes one synchronization run.
type SyncResult struct {
	Status string    `json:"status"`
	Count  int       `json:"count"`
	AsOf   time.Time `json:"as_of"`
	Source string    `json:"source"`
}

// PortfolioStats is the aggregate view over the current snapshot.
type PortfolioStats struct {
	TotalHoldings      int                      `json:"total_holdings"`
	TotalInvestedValue float64                  `json:"total_invested_value"`
	TotalCurrentValue  float64                  `json:"total_current_value"`
	TotalPnlValue      float64                  `json:"total_pnl_value"`
	TotalPnlPct        float64                  `json:"total_pnl_pct"`
	ByAssetType        map[string]AssetTypeStat `json:"by_asset_type"`
	ByCurrency         map[string]float64       `json:"by_currency"`
	LastSync           time.Time                `json:"last_sync"`
}

// AssetTypeStat is one by_asset_type bucket.
type AssetTypeStat struct {
	Value    float64 `json:"value"`
	ValuePct float64 `json:"value_pct"`
}

// assetTypeLabels maps source export type labels to canonical asset types.
// The IntelliInvest export uses Russian labels.
var assetTypeLabels = map[string]string{
	"акции":        AssetTypeStock,
	"акция":        AssetTypeStock,
	"облигации":    AssetTypeBond,
	"облигация":    AssetTypeBond,
	"криптовалюта": AssetTypeCrypto,
	"крипто":       AssetTypeCrypto,
	"деньги":       AssetTypeCash,
	"валюта":       AssetTypeCash,
	"актив":        AssetTypeAsset,
	"stock":        AssetTypeStock,
	"bond":         AssetTypeBond,
	"crypto":       AssetTypeCrypto,
	"cash":         AssetTypeCash,
	"asset":        AssetTypeAsset,
}

// cryptoTickers are positions quoted in USD regardless of exchange suffix.
var cryptoTickers = map[string]bool{
	"BTC": true, "ETH": true, "SOL": true, "TON": true,
	"USDT": true, "USDC": true, "XRP": true, "ADA": true,
}

// usTickers are US-listed positions that carry no exchange suffix in the export.
var usTickers = map[string]bool{
	"AAPL": true, "MSFT": true, "GOOGL": true, "AMZN": true, "NVDA": true,
	"META": true, "TSLA": true, "LRN": true, "INTC": true, "AMD": true,
	"BABA": true, "V": true, "KO": true, "PFE": true, "T": true,
}

// NormalizeAssetType maps a source type label to a canonical asset type,
// defaulting to "asset" when the label is unrecognized. Crypto ticker
// overrides take precedence over the label.
func NormalizeAssetType(label, ticker string) string {
	if cryptoTickers[strings.ToUpper(ticker)] {
		return AssetTypeCrypto
	}
	if t, ok := assetTypeLabels[strings.ToLower(strings.TrimSpace(label))]; ok {
		return t
	}
	return AssetTypeAsset
}

// InferCurrency derives a currency code from the ticker when the export
// carries none. Moscow exchange suffixes map to RUB, known European suffixes
// to EUR, known US and crypto tickers to USD. The export's home market is
// RUB, so that is the fallback.
func InferCurrency(ticker string) string {
	upper := strings.ToUpper(ticker)
	if cryptoTickers[upper] || usTickers[upper] {
		return "USD"
	}
	switch {
	case strings.HasSuffix(upper, ".ME"), strings.HasSuffix(upper, ".RM"), strings.HasSuffix(upper, ".RT"):
		return "RUB"
	case strings.HasSuffix(upper, ".DE"), strings.HasSuffix(upper, ".PA"), strings.HasSuffix(upper, ".AS"):
		return "EUR"
	case strings.HasSuffix(upper, ".US"):
		return "USD"
	}
	return "RUB"
}
