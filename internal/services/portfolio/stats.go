package portfolio

import (
	"context"
	"time"

	"github.com/dpetrov/folio/internal/models"
)

// Stats aggregates the current snapshot into portfolio-level totals and
// per-asset-type / per-currency breakdowns.
func (s *Service) Stats(ctx context.Context) (*models.PortfolioStats, error) {
	holdings, _, err := s.storage.Holdings().List(ctx, models.HoldingFilter{})
	if err != nil {
		return nil, err
	}

	stats := &models.PortfolioStats{
		TotalHoldings: len(holdings),
		ByAssetType:   make(map[string]models.AssetTypeStat),
		ByCurrency:    make(map[string]float64),
	}

	typeValues := make(map[string]float64)
	for _, holding := range holdings {
		stats.TotalInvestedValue += holding.InvestedValue
		stats.TotalCurrentValue += holding.CurrentValue
		typeValues[holding.AssetType] += holding.CurrentValue
		stats.ByCurrency[holding.Currency] += holding.CurrentValue
	}

	stats.TotalPnlValue = stats.TotalCurrentValue - stats.TotalInvestedValue
	if stats.TotalInvestedValue != 0 {
		stats.TotalPnlPct = stats.TotalPnlValue / stats.TotalInvestedValue * 100
	}

	for assetType, value := range typeValues {
		pct := 0.0
		if stats.TotalCurrentValue != 0 {
			pct = value / stats.TotalCurrentValue * 100
		}
		stats.ByAssetType[assetType] = models.AssetTypeStat{Value: value, ValuePct: pct}
	}

	if raw, err := s.storage.System().GetKV(ctx, models.KVLastSync); err == nil {
		if ts, err := time.Parse(time.RFC3339, raw); err == nil {
			stats.LastSync = ts
		}
	}

	return stats, nil
}
