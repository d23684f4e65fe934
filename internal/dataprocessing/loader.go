package dataprocessing

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"golang.org/x/sync/errgroup"

	"demandprep/pkg/contracts/domain"
)

// Table names used in logs, metrics and reports
const (
	TableTransactions = "transactions"
	TableProducts     = "products"
	TableStores       = "stores"
)

// Dataset holds the three typed input tables of a run
type Dataset struct {
	Transactions []domain.TransactionRecord
	Products     []domain.Product
	Stores       []domain.Store
}

// SourceFiles locates the three input tables
type SourceFiles struct {
	Transactions string
	Products     string
	Stores       string
	// Sheet is read from .xlsx files; empty means the first sheet
	Sheet string
}

// Loader reads the input tables concurrently
type Loader struct {
	logger *slog.Logger
}

// NewLoader creates a loader
func NewLoader(logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{logger: logger.With(slog.String("component", "loader"))}
}

// Load reads and decodes the three tables. The first failure cancels the
// remaining reads and is returned.
func (l *Loader) Load(ctx context.Context, files SourceFiles) (*Dataset, error) {
	g, gctx := errgroup.WithContext(ctx)
	ds := &Dataset{}

	g.Go(func() error {
		raw, err := l.read(gctx, TableTransactions, files.Transactions, files.Sheet)
		if err != nil {
			return err
		}
		recs, err := ParseTransactions(raw)
		if err != nil {
			return fmt.Errorf("decode %s: %w", TableTransactions, err)
		}
		ds.Transactions = recs
		return nil
	})

	g.Go(func() error {
		raw, err := l.read(gctx, TableProducts, files.Products, files.Sheet)
		if err != nil {
			return err
		}
		prods, err := ParseProducts(raw)
		if err != nil {
			return fmt.Errorf("decode %s: %w", TableProducts, err)
		}
		ds.Products = prods
		return nil
	})

	g.Go(func() error {
		raw, err := l.read(gctx, TableStores, files.Stores, files.Sheet)
		if err != nil {
			return err
		}
		stores, err := ParseStores(raw)
		if err != nil {
			return fmt.Errorf("decode %s: %w", TableStores, err)
		}
		ds.Stores = stores
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	l.logger.InfoContext(ctx, "Input tables loaded",
		slog.Int("transactions", len(ds.Transactions)),
		slog.Int("products", len(ds.Products)),
		slog.Int("stores", len(ds.Stores)))

	return ds, nil
}

func (l *Loader) read(ctx context.Context, table, path, sheet string) (*RawTable, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	start := time.Now()
	raw, err := ReadTable(path, sheet)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", table, err)
	}

	l.logger.DebugContext(ctx, "Read input file",
		slog.String("table", table),
		slog.String("file", filepath.Base(path)),
		slog.Int("rows", raw.Len()),
		slog.Int("columns", len(raw.Header)),
		slog.Duration("duration", time.Since(start)))

	return raw, nil
}
