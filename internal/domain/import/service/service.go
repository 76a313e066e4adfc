// Package service orchestrates the two-phase spreadsheet import: a
// read-only preview and a row-by-row commit with partial-failure
// reporting.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/paisa-app/paisa-api/internal/domain/import/normalizer"
	"github.com/paisa-app/paisa-api/internal/domain/import/parser"
	"github.com/paisa-app/paisa-api/internal/domain/import/repository"
	"github.com/paisa-app/paisa-api/internal/domain/import/resolver"
)

var (
	rowsImported = promauto.NewCounter(prometheus.CounterOpts{
		Name: "import_rows_imported_total",
		Help: "Rows successfully persisted by the bulk import pipeline.",
	})
	rowsFailed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "import_rows_failed_total",
		Help: "Rows rejected during validation or persistence.",
	})
	importDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "import_duration_seconds",
		Help:    "Wall-clock duration of a commit-phase import.",
		Buckets: prometheus.DefBuckets,
	})
)

// RowError records why one data row was rejected. Row is the 1-based
// spreadsheet row number, counting the header as row 1, so users can find
// the offending line in their original file.
type RowError struct {
	Row     int
	Message string
}

func (e RowError) String() string {
	return fmt.Sprintf("Row %d: %s", e.Row, e.Message)
}

// PreviewResult is the outcome of the read-only first phase: nothing is
// validated, resolved, or persisted.
type PreviewResult struct {
	TotalRows int
	Columns   []string
	Preview   []map[string]string
}

// ImportReport aggregates a commit-phase run. Successful rows are committed
// independently, so Imported can be non-zero even when Errors is long.
// Every row failure is kept, uncapped.
type ImportReport struct {
	Imported int
	Failed   int
	Errors   []RowError
}

// ErrorStrings renders the row failures in report order.
func (r *ImportReport) ErrorStrings() []string {
	out := make([]string, len(r.Errors))
	for i, e := range r.Errors {
		out[i] = e.String()
	}
	return out
}

// ImportService runs previews and commits against the stores. Both phases
// decode the uploaded bytes from scratch; nothing is staged server-side
// between a preview and the commit that follows it.
type ImportService struct {
	accounts     repository.AccountStore
	categories   repository.CategoryStore
	transactions repository.TransactionStore
	logger       *slog.Logger

	maxRows     int
	previewRows int
}

// NewImportService creates an import service bounded by maxRows data rows
// per upload, returning at most previewRows rows from Preview.
func NewImportService(
	accounts repository.AccountStore,
	categories repository.CategoryStore,
	transactions repository.TransactionStore,
	logger *slog.Logger,
	maxRows, previewRows int,
) *ImportService {
	return &ImportService{
		accounts:     accounts,
		categories:   categories,
		transactions: transactions,
		logger:       logger,
		maxRows:      maxRows,
		previewRows:  previewRows,
	}
}

// Preview decodes the upload and returns its shape: total data row count,
// the original header labels, and the first few raw rows keyed by header.
func (s *ImportService) Preview(_ context.Context, data []byte, filename string) (*PreviewResult, error) {
	wb, err := s.read(data, filename)
	if err != nil {
		return nil, err
	}

	n := len(wb.Rows)
	count := n
	if count > s.previewRows {
		count = s.previewRows
	}

	preview := make([]map[string]string, 0, count)
	for i := 0; i < count; i++ {
		preview = append(preview, wb.RowMap(i))
	}

	return &PreviewResult{
		TotalRows: n,
		Columns:   wb.Headers,
		Preview:   preview,
	}, nil
}

// Import runs the commit phase for one user: decode, map columns, then
// walk the data rows strictly in file order. Each row is validated,
// resolved, and inserted on its own; a bad row is recorded and the batch
// moves on. Only a file-level read failure aborts the whole import. Once
// the row loop starts it runs to completion: a client disconnect does not
// cancel it, since already-committed rows cannot be taken back and a
// partial report would misstate what was persisted.
func (s *ImportService) Import(ctx context.Context, userID uuid.UUID, data []byte, filename string) (*ImportReport, error) {
	start := time.Now()
	defer func() { importDuration.Observe(time.Since(start).Seconds()) }()

	wb, err := s.read(data, filename)
	if err != nil {
		return nil, err
	}

	// Detach from the request context so a client disconnect cannot fail
	// rows partway through the batch.
	ctx = context.WithoutCancel(ctx)

	columns := normalizer.MapColumns(wb.Headers)
	entities := resolver.New(s.accounts, s.categories, userID)
	report := &ImportReport{}

	for i, record := range wb.Rows {
		// Header is spreadsheet row 1, so data row i sits at i+2.
		rowNum := i + 2

		row, err := normalizer.ConvertRow(columns, record)
		if err != nil {
			report.fail(rowNum, err.Error())
			continue
		}

		if err := s.persistRow(ctx, entities, userID, row); err != nil {
			s.logger.Error("failed to persist import row",
				slog.String("user_id", userID.String()),
				slog.Int("row", rowNum),
				slog.Any("error", err))
			report.fail(rowNum, "Failed to save transaction.")
			continue
		}

		report.Imported++
		rowsImported.Inc()
	}

	s.logger.Info("import finished",
		slog.String("user_id", userID.String()),
		slog.String("filename", filename),
		slog.Int("imported", report.Imported),
		slog.Int("failed", report.Failed))

	return report, nil
}

func (s *ImportService) read(data []byte, filename string) (*parser.Workbook, error) {
	wb, err := parser.Read(data, filename)
	if err != nil {
		return nil, err
	}
	if len(wb.Rows) > s.maxRows {
		return nil, parser.NewFormatError(parser.FormatTooLarge,
			fmt.Sprintf("file has %d data rows; the limit is %d", len(wb.Rows), s.maxRows))
	}
	return wb, nil
}

func (s *ImportService) persistRow(ctx context.Context, entities *resolver.Resolver, userID uuid.UUID, row *normalizer.ValidatedRow) error {
	accountID, err := entities.Account(ctx, row.AccountName, string(row.Currency))
	if err != nil {
		return err
	}

	categoryID, err := entities.Category(ctx, row.CategoryName, string(row.Mode))
	if err != nil {
		return err
	}

	return s.transactions.Insert(ctx, &repository.Transaction{
		UserID:      userID,
		AccountID:   accountID,
		CategoryID:  categoryID,
		Mode:        string(row.Mode),
		Currency:    string(row.Currency),
		AmountMinor: row.AmountMinor,
		PostedOn:    row.Date,
		Description: row.Description,
	})
}

func (r *ImportReport) fail(rowNum int, message string) {
	r.Failed++
	r.Errors = append(r.Errors, RowError{Row: rowNum, Message: message})
	rowsFailed.Inc()
}
