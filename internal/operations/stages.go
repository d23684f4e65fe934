package operations

import (
	"context"
	"fmt"
	"log/slog"

	"demandprep/internal/config"
	"demandprep/internal/dataprocessing"
	"demandprep/internal/exporter"
	"demandprep/internal/files"
	"demandprep/internal/infrastructure"
	"demandprep/internal/validation"
	"demandprep/pkg/contracts/domain"
)

// StageDeps are the collaborators shared by the pipeline steps
type StageDeps struct {
	Config  *config.Config
	Paths   *config.Paths
	Logger  *slog.Logger
	Metrics *infrastructure.PipelineMetrics
}

func (d StageDeps) logger(stepID string) *slog.Logger {
	logger := d.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return logger.With(slog.String("step", stepID))
}

func (d StageDeps) recordRows(ctx context.Context, written bool, table string, n int) {
	if d.Metrics == nil {
		return
	}
	counter := d.Metrics.RowsLoaded
	if written {
		counter = d.Metrics.RowsWritten
	}
	d.Metrics.RecordRows(ctx, counter, table, n)
}

// LoadStage reads the three input tables
type LoadStage struct {
	BaseStage
	deps      StageDeps
	inputs    *validation.FileValidator
	discovery *files.Discovery
	loader    *dataprocessing.Loader
	logger    *slog.Logger
}

// NewLoadStage creates the load step
func NewLoadStage(deps StageDeps) *LoadStage {
	logger := deps.logger(StepIDLoad)
	return &LoadStage{
		BaseStage: NewBaseStage(StepIDLoad, StepNameLoad, nil),
		deps:      deps,
		inputs:    validation.NewFileValidator(logger),
		discovery: files.NewDiscovery(deps.Paths.InputDir),
		loader:    dataprocessing.NewLoader(logger),
		logger:    logger,
	}
}

// Execute resolves and checks the input files, then loads them into the
// operation context
func (s *LoadStage) Execute(ctx context.Context, state *OperationState) error {
	p := s.deps.Paths
	if err := s.inputs.ValidateInputDirectory(p.InputDir); err != nil {
		return err
	}

	src := dataprocessing.SourceFiles{
		Transactions: s.discovery.ResolveTable(p.TransactionsInput),
		Products:     s.discovery.ResolveTable(p.ProductsInput),
		Stores:       s.discovery.ResolveTable(p.StoresInput),
		Sheet:        s.deps.Config.Input.Sheet,
	}
	if err := s.inputs.ValidateInputFiles(src.Transactions, src.Products, src.Stores); err != nil {
		return err
	}

	ds, err := s.loader.Load(ctx, src)
	if err != nil {
		return err
	}

	s.deps.recordRows(ctx, false, dataprocessing.TableTransactions, len(ds.Transactions))
	s.deps.recordRows(ctx, false, dataprocessing.TableProducts, len(ds.Products))
	s.deps.recordRows(ctx, false, dataprocessing.TableStores, len(ds.Stores))

	if st := state.GetStage(s.ID()); st != nil {
		st.SetMetadata("transactions", len(ds.Transactions))
		st.SetMetadata("products", len(ds.Products))
		st.SetMetadata("stores", len(ds.Stores))
	}

	state.SetContext(ContextKeyDataset, ds)
	s.logger.InfoContext(ctx, "Input tables loaded",
		slog.Int("transactions", len(ds.Transactions)),
		slog.Int("products", len(ds.Products)),
		slog.Int("stores", len(ds.Stores)))
	return nil
}

// ValidateStage checks records, keys and references of the loaded dataset
type ValidateStage struct {
	BaseStage
	validator *validation.RecordValidator
	logger    *slog.Logger
}

// NewValidateStage creates the record validation step
func NewValidateStage(deps StageDeps) *ValidateStage {
	logger := deps.logger(StepIDValidate)
	return &ValidateStage{
		BaseStage: NewBaseStage(StepIDValidate, StepNameValidate, []string{StepIDLoad}),
		validator: validation.NewRecordValidator(deps.Config.Pipeline.ReferencePolicy, logger),
		logger:    logger,
	}
}

// Validate requires a loaded dataset
func (s *ValidateStage) Validate(state *OperationState) error {
	_, err := ContextValue[*dataprocessing.Dataset](state, ContextKeyDataset)
	return err
}

// Execute runs the record validator
func (s *ValidateStage) Execute(ctx context.Context, state *OperationState) error {
	ds, err := ContextValue[*dataprocessing.Dataset](state, ContextKeyDataset)
	if err != nil {
		return err
	}

	report, err := s.validator.Validate(ds)
	if err != nil {
		return err
	}

	if st := state.GetStage(s.ID()); st != nil {
		st.SetMetadata("orphan_products", len(report.Orphans.ProductIDs))
		st.SetMetadata("orphan_stores", len(report.Orphans.StoreIDs))
	}
	state.SetContext(ContextKeyValidationReport, report)
	return nil
}

// ProfileStage builds the dataset profile and writes it as JSON
type ProfileStage struct {
	BaseStage
	deps     StageDeps
	profiler *dataprocessing.Profiler
	logger   *slog.Logger
}

// NewProfileStage creates the profiling step
func NewProfileStage(deps StageDeps) *ProfileStage {
	logger := deps.logger(StepIDProfile)
	return &ProfileStage{
		BaseStage: NewBaseStage(StepIDProfile, StepNameProfile, []string{StepIDLoad}),
		deps:      deps,
		profiler:  dataprocessing.NewProfiler(deps.Config.Pipeline.UnitsCeiling, logger),
		logger:    logger,
	}
}

// Validate requires a loaded dataset
func (s *ProfileStage) Validate(state *OperationState) error {
	_, err := ContextValue[*dataprocessing.Dataset](state, ContextKeyDataset)
	return err
}

// Execute profiles the dataset
func (s *ProfileStage) Execute(ctx context.Context, state *OperationState) error {
	ds, err := ContextValue[*dataprocessing.Dataset](state, ContextKeyDataset)
	if err != nil {
		return err
	}

	report := s.profiler.Profile(ds)
	state.SetContext(ContextKeyProfileReport, report)

	path := s.deps.Paths.ProfileOutput
	if path == "" {
		return nil
	}
	if err := exporter.WriteJSON(path, report); err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "Profile written",
		slog.String("path", path),
		slog.Int("missing_weeks", len(report.Transactions.MissingWeeks)),
		slog.Int("duplicate_keys", report.Transactions.DuplicateKeys))
	return nil
}

// CleanTransactionsStage drops degenerate rows and imputes base prices
type CleanTransactionsStage struct {
	BaseStage
	deps    StageDeps
	cleaner *dataprocessing.TransactionCleaner
}

// NewCleanTransactionsStage creates the transaction cleaning step
func NewCleanTransactionsStage(deps StageDeps) *CleanTransactionsStage {
	return &CleanTransactionsStage{
		BaseStage: NewBaseStage(StepIDCleanTransactions, StepNameCleanTransactions, []string{StepIDValidate}),
		deps:      deps,
		cleaner:   dataprocessing.NewTransactionCleaner(deps.Config.Pipeline.UnitsCeiling, deps.logger(StepIDCleanTransactions)),
	}
}

// Execute cleans the transactions and stores the resulting table
func (s *CleanTransactionsStage) Execute(ctx context.Context, state *OperationState) error {
	ds, err := ContextValue[*dataprocessing.Dataset](state, ContextKeyDataset)
	if err != nil {
		return err
	}

	cleaned, report, err := s.cleaner.Clean(ds.Transactions)
	if err != nil {
		return err
	}

	if m := s.deps.Metrics; m != nil {
		for reason, n := range report.Dropped {
			m.RecordDropped(ctx, reason, n)
		}
		m.RecordImputed(ctx, report.PricesImputed)
	}

	if st := state.GetStage(s.ID()); st != nil {
		st.SetMetadata("rows_in", report.RowsIn)
		st.SetMetadata("rows_out", report.RowsOut)
		st.SetMetadata("prices_imputed", report.PricesImputed)
	}

	state.SetContext(ContextKeyCleanReport, report)
	state.SetContext(ContextKeyTransactionsTable, dataprocessing.TransactionsTable(cleaned))
	return nil
}

// EncodeProductsStage encodes the product attribute table
type EncodeProductsStage struct {
	BaseStage
	encoder *dataprocessing.ProductEncoder
}

// NewEncodeProductsStage creates the product encoding step
func NewEncodeProductsStage(deps StageDeps) *EncodeProductsStage {
	return &EncodeProductsStage{
		BaseStage: NewBaseStage(StepIDEncodeProducts, StepNameEncodeProducts, []string{StepIDValidate}),
		encoder:   dataprocessing.NewProductEncoder(deps.logger(StepIDEncodeProducts)),
	}
}

// Execute encodes the products and stores the resulting table
func (s *EncodeProductsStage) Execute(ctx context.Context, state *OperationState) error {
	ds, err := ContextValue[*dataprocessing.Dataset](state, ContextKeyDataset)
	if err != nil {
		return err
	}

	table, err := s.encoder.Encode(ds.Products)
	if err != nil {
		return err
	}
	state.SetContext(ContextKeyProductsTable, table)
	return nil
}

// EncodeStoresStage encodes the store attribute table
type EncodeStoresStage struct {
	BaseStage
	encoder *dataprocessing.StoreEncoder
}

// NewEncodeStoresStage creates the store encoding step
func NewEncodeStoresStage(deps StageDeps) *EncodeStoresStage {
	return &EncodeStoresStage{
		BaseStage: NewBaseStage(StepIDEncodeStores, StepNameEncodeStores, []string{StepIDValidate}),
		encoder:   dataprocessing.NewStoreEncoder(deps.logger(StepIDEncodeStores)),
	}
}

// Execute encodes the stores and stores the resulting table
func (s *EncodeStoresStage) Execute(ctx context.Context, state *OperationState) error {
	ds, err := ContextValue[*dataprocessing.Dataset](state, ContextKeyDataset)
	if err != nil {
		return err
	}

	table, err := s.encoder.Encode(ds.Stores)
	if err != nil {
		return err
	}
	state.SetContext(ContextKeyStoresTable, table)
	return nil
}

// WriteStage writes the processed tables
type WriteStage struct {
	BaseStage
	deps   StageDeps
	files  *validation.FileValidator
	writer *exporter.DatasetWriter
}

// NewWriteStage creates the output step
func NewWriteStage(deps StageDeps) *WriteStage {
	logger := deps.logger(StepIDWrite)
	return &WriteStage{
		BaseStage: NewBaseStage(StepIDWrite, StepNameWrite,
			[]string{StepIDCleanTransactions, StepIDEncodeProducts, StepIDEncodeStores}),
		deps:   deps,
		files:  validation.NewFileValidator(logger),
		writer: exporter.NewDatasetWriter(logger),
	}
}

// Execute writes the three tables and the optional workbook
func (s *WriteStage) Execute(ctx context.Context, state *OperationState) error {
	out, err := s.outputs(state)
	if err != nil {
		return err
	}

	p := s.deps.Paths
	if err := s.files.ValidateOutputDirectory(p.OutputDir); err != nil {
		return err
	}

	targets := exporter.Targets{
		Transactions: p.TransactionsOutput,
		Products:     p.ProductsOutput,
		Stores:       p.StoresOutput,
		BOM:          s.deps.Config.Output.WriteBOM,
	}
	if s.deps.Config.Output.Workbook {
		targets.Workbook = p.WorkbookOutput
	}

	written, err := s.writer.Write(ctx, out, targets)
	state.SetContext(ContextKeyOutputFiles, written)
	if err != nil {
		return fmt.Errorf("write outputs: %w", err)
	}

	s.deps.recordRows(ctx, true, dataprocessing.TableTransactions, len(out.Transactions.Rows))
	s.deps.recordRows(ctx, true, dataprocessing.TableProducts, len(out.Products.Rows))
	s.deps.recordRows(ctx, true, dataprocessing.TableStores, len(out.Stores.Rows))

	if st := state.GetStage(s.ID()); st != nil {
		st.SetMetadata("files", len(written))
	}
	return nil
}

func (s *WriteStage) outputs(state *OperationState) (exporter.Outputs, error) {
	tx, err := ContextValue[*domain.Table](state, ContextKeyTransactionsTable)
	if err != nil {
		return exporter.Outputs{}, err
	}
	products, err := ContextValue[*domain.Table](state, ContextKeyProductsTable)
	if err != nil {
		return exporter.Outputs{}, err
	}
	stores, err := ContextValue[*domain.Table](state, ContextKeyStoresTable)
	if err != nil {
		return exporter.Outputs{}, err
	}
	return exporter.Outputs{Transactions: tx, Products: products, Stores: stores}, nil
}

// NewPreprocessRegistry registers the full preprocessing pipeline. The
// profile step is included when the configuration asks for it.
func NewPreprocessRegistry(deps StageDeps) (*Registry, error) {
	steps := []Step{NewLoadStage(deps), NewValidateStage(deps)}
	if deps.Config.Pipeline.Profile {
		steps = append(steps, NewProfileStage(deps))
	}
	steps = append(steps,
		NewCleanTransactionsStage(deps),
		NewEncodeProductsStage(deps),
		NewEncodeStoresStage(deps),
		NewWriteStage(deps),
	)
	return newRegistry(steps)
}

// NewProfileRegistry registers the load and profile steps only
func NewProfileRegistry(deps StageDeps) (*Registry, error) {
	return newRegistry([]Step{NewLoadStage(deps), NewProfileStage(deps)})
}

func newRegistry(steps []Step) (*Registry, error) {
	r := NewRegistry()
	for _, step := range steps {
		if err := r.Register(step); err != nil {
			return nil, err
		}
	}
	if err := r.ValidateDependencies(); err != nil {
		return nil, err
	}
	return r, nil
}
