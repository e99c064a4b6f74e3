package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
	"github.com/shopspring/decimal"

	"github.com/Adarsh-S-Nair/finance-next-sub000/internal/common"
	"github.com/Adarsh-S-Nair/finance-next-sub000/internal/interfaces"
	"github.com/Adarsh-S-Nair/finance-next-sub000/internal/models"
)

type seedFile struct {
	Portfolios []seedPortfolio `toml:"portfolios"`
}

type seedPortfolio struct {
	ID              string         `toml:"id"`
	UserID          string         `toml:"user_id"`
	Name            string         `toml:"name"`
	AssetClass      string         `toml:"asset_class"`
	Symbols         []string       `toml:"symbols"`
	Currency        string         `toml:"currency"`
	StartingCapital string         `toml:"starting_capital"`
	Cash            string         `toml:"cash"`
	CreatedAt       string         `toml:"created_at"` // RFC3339
	Holdings        []seedHolding  `toml:"holdings"`
	Snapshots       []seedSnapshot `toml:"snapshots"`
}

type seedHolding struct {
	Symbol   string `toml:"symbol"`
	Quantity string `toml:"quantity"`
	AvgCost  string `toml:"avg_cost"`
}

type seedSnapshot struct {
	Date       string `toml:"date"` // YYYY-MM-DD
	TotalValue string `toml:"total_value"`
}

// SeedFromFile reads a TOML portfolio fixture and loads it into storage.
// Portfolios that already exist (by id) are skipped along with their holdings
// and snapshots. Returns (imported count, skipped count, error).
func SeedFromFile(ctx context.Context, store interfaces.StorageManager, logger *common.Logger, filePath string) (int, int, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to read seed file %s: %w", filePath, err)
	}

	var file seedFile
	if err := toml.Unmarshal(data, &file); err != nil {
		return 0, 0, fmt.Errorf("failed to parse seed file %s: %w", filePath, err)
	}

	imported, skipped := 0, 0
	for _, sp := range file.Portfolios {
		if sp.ID == "" {
			skipped++
			continue
		}
		if _, err := store.PortfolioStore().GetPortfolio(ctx, sp.ID); err == nil {
			skipped++
			continue
		} else if !errors.Is(err, models.ErrPortfolioNotFound) {
			return imported, skipped, err
		}

		if err := seedPortfolioRecords(ctx, store, sp); err != nil {
			logger.Warn().Err(err).Str("portfolio", sp.ID).Msg("Failed to seed portfolio")
			skipped++
			continue
		}
		logger.Info().
			Str("portfolio", sp.ID).
			Int("holdings", len(sp.Holdings)).
			Int("snapshots", len(sp.Snapshots)).
			Msg("Portfolio seeded")
		imported++
	}
	return imported, skipped, nil
}

func seedPortfolioRecords(ctx context.Context, store interfaces.StorageManager, sp seedPortfolio) error {
	capital, err := parseSeedDecimal("starting_capital", sp.StartingCapital)
	if err != nil {
		return err
	}
	cash := capital
	if sp.Cash != "" {
		if cash, err = parseSeedDecimal("cash", sp.Cash); err != nil {
			return err
		}
	}
	created := time.Now().UTC()
	if sp.CreatedAt != "" {
		if created, err = time.Parse(time.RFC3339, sp.CreatedAt); err != nil {
			return fmt.Errorf("invalid created_at %q: %w", sp.CreatedAt, err)
		}
	}

	currency := strings.ToUpper(sp.Currency)
	if currency == "" {
		currency = "USD"
	}
	symbols := make([]string, len(sp.Symbols))
	for i, s := range sp.Symbols {
		symbols[i] = strings.ToUpper(s)
	}

	p := &models.Portfolio{
		ID:              sp.ID,
		UserID:          sp.UserID,
		Name:            sp.Name,
		AssetClass:      models.ParseAssetClass(sp.AssetClass),
		Symbols:         symbols,
		Currency:        currency,
		StartingCapital: capital,
		Cash:            cash,
		CreatedAt:       created.UTC(),
	}
	if err := store.PortfolioStore().SavePortfolio(ctx, p); err != nil {
		return err
	}

	for _, sh := range sp.Holdings {
		qty, err := parseSeedDecimal("quantity", sh.Quantity)
		if err != nil {
			return err
		}
		cost, err := parseSeedDecimal("avg_cost", sh.AvgCost)
		if err != nil {
			return err
		}
		h := &models.Holding{PortfolioID: sp.ID, Symbol: sh.Symbol, Quantity: qty, AvgCost: cost}
		if err := store.HoldingStore().SaveHolding(ctx, h); err != nil {
			return err
		}
	}

	for _, ss := range sp.Snapshots {
		date, err := time.Parse("2006-01-02", ss.Date)
		if err != nil {
			return fmt.Errorf("invalid snapshot date %q: %w", ss.Date, err)
		}
		value, err := parseSeedDecimal("total_value", ss.TotalValue)
		if err != nil {
			return err
		}
		snap := &models.Snapshot{PortfolioID: sp.ID, Date: date, TotalValue: value}
		if err := store.SnapshotStore().AppendSnapshot(ctx, snap); err != nil && !errors.Is(err, models.ErrSnapshotExists) {
			return err
		}
	}
	return nil
}

func parseSeedDecimal(field, s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid %s %q: %w", field, s, err)
	}
	return d, nil
}
