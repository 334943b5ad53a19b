package receipt

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/snapledger/receipt-pipeline/internal/parse"
	"github.com/snapledger/receipt-pipeline/internal/scanning"
)

// IDGenerator generates unique IDs for transactions
type IDGenerator interface {
	Generate() string
}

// TimeSource provides the current time
type TimeSource interface {
	Now() time.Time
}

type defaultIDGenerator struct{}

func (g *defaultIDGenerator) Generate() string {
	return fmt.Sprintf("%d", time.Now().UnixNano())
}

type defaultTimeSource struct{}

func (t *defaultTimeSource) Now() time.Time {
	return time.Now()
}

// PendingScan is an extraction awaiting user confirmation. The original file
// is already stored; nothing is written to the ledger until confirmation.
type PendingScan struct {
	Receipt     *parse.ParsedReceipt `json:"receipt"`
	Filename    string               `json:"filename"`
	ContentType string               `json:"content_type"`
}

// ConfirmRequest carries the user-confirmed (possibly edited) extraction to
// persist as a transaction. Amount and item prices are dollars, matching the
// ParsedReceipt the user edited.
type ConfirmRequest struct {
	Merchant    string           `json:"merchant"`
	Date        string           `json:"date"` // YYYY-MM-DD
	Amount      float64          `json:"amount"`
	Items       []parse.LineItem `json:"items,omitempty"`
	Filename    string           `json:"filename"`
	ContentType string           `json:"content_type"`
	Confidence  float64          `json:"confidence"`
}

// Service handles receipt scanning and ledger operations
type Service struct {
	db          DB
	scanner     scanning.Scanner
	storage     Storage
	idGenerator IDGenerator
	timeSource  TimeSource
}

// NewService creates a new Service with default ID generator and time source
func NewService(db DB, scanner scanning.Scanner, storage Storage) *Service {
	return &Service{
		db:          db,
		scanner:     scanner,
		storage:     storage,
		idGenerator: &defaultIDGenerator{},
		timeSource:  &defaultTimeSource{},
	}
}

// NewServiceWithDeps creates a new Service with custom dependencies for testing
func NewServiceWithDeps(db DB, scanner scanning.Scanner, storage Storage, idGen IDGenerator, timeSrc TimeSource) *Service {
	return &Service{
		db:          db,
		scanner:     scanner,
		storage:     storage,
		idGenerator: idGen,
		timeSource:  timeSrc,
	}
}

var (
	filenameSpecials = regexp.MustCompile(`[^a-zA-Z0-9\s\-_]`)
	filenameSpaces   = regexp.MustCompile(`\s+`)
)

// sanitizeFilename cleans up phone-generated filenames: strip special
// characters, collapse whitespace, cap the length.
func sanitizeFilename(filename string) string {
	ext := filepath.Ext(filename)
	base := strings.TrimSuffix(filepath.Base(filename), ext)

	base = filenameSpecials.ReplaceAllString(base, "")
	base = strings.TrimSpace(filenameSpaces.ReplaceAllString(base, " "))
	if len(base) > 50 {
		base = base[:50]
	}
	if base == "" {
		base = "receipt"
	}
	return base + ext
}

// ScanReceipt stores the uploaded file and runs the extraction pipeline.
// The result is returned for user confirmation, not persisted.
func (s *Service) ScanReceipt(ctx context.Context, filename string, data []byte, contentType string) (*PendingScan, error) {
	id := s.idGenerator.Generate()
	storedName := fmt.Sprintf("%s_%s", id, sanitizeFilename(filename))

	savedPath, err := s.storage.Save(storedName, data)
	if err != nil {
		return nil, fmt.Errorf("saving file: %w", err)
	}

	parsed, err := s.scanner.ScanReceipt(ctx, data, contentType)
	if err != nil {
		slog.Error("Failed to scan receipt",
			"filename", filename,
			"content_type", contentType,
			"file_size", len(data),
			"error", err,
		)
		// The stored file is useless without an extraction.
		s.storage.Delete(savedPath)
		return nil, fmt.Errorf("scanning receipt: %w", err)
	}

	slog.Info("Scanned receipt",
		"merchant", parsed.Merchant,
		"amount", parsed.Amount,
		"items", len(parsed.Items),
		"confidence", parsed.Confidence,
	)

	return &PendingScan{
		Receipt:     parsed,
		Filename:    savedPath,
		ContentType: contentType,
	}, nil
}

// ConfirmTransaction persists a user-confirmed extraction to the ledger.
func (s *Service) ConfirmTransaction(req ConfirmRequest) (*Transaction, error) {
	if req.Filename == "" {
		return nil, fmt.Errorf("filename is required")
	}
	if req.Amount < 0 {
		return nil, fmt.Errorf("amount must not be negative")
	}

	now := s.timeSource.Now()

	merchant := strings.TrimSpace(req.Merchant)
	if merchant == "" {
		merchant = parse.UnknownMerchant
	}

	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		date = now
	}

	items := make([]TransactionItem, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, TransactionItem{
			Name:     item.Name,
			Price:    toCents(item.Price),
			Quantity: item.Quantity,
			IsTax:    item.IsTax,
		})
	}

	tx := &Transaction{
		ID:          s.idGenerator.Generate(),
		Merchant:    merchant,
		Date:        date,
		Amount:      toCents(req.Amount),
		Items:       items,
		Filename:    req.Filename,
		ContentType: req.ContentType,
		Confidence:  req.Confidence,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.db.SaveTransaction(tx); err != nil {
		return nil, fmt.Errorf("saving transaction: %w", err)
	}
	return tx, nil
}

func toCents(dollars float64) int {
	return int(math.Round(dollars * 100))
}

// GetTransaction retrieves a transaction by ID
func (s *Service) GetTransaction(id string) (*Transaction, error) {
	tx, err := s.db.GetTransaction(id)
	if err != nil {
		return nil, fmt.Errorf("getting transaction: %w", err)
	}
	return tx, nil
}

// ListTransactions returns all transactions
func (s *Service) ListTransactions() ([]*Transaction, error) {
	transactions, err := s.db.ListTransactions()
	if err != nil {
		return nil, fmt.Errorf("listing transactions: %w", err)
	}
	return transactions, nil
}

// DeleteTransaction removes a transaction and its stored receipt file
func (s *Service) DeleteTransaction(id string) error {
	tx, err := s.db.GetTransaction(id)
	if err != nil {
		return fmt.Errorf("getting transaction for deletion: %w", err)
	}

	if err := s.storage.Delete(tx.Filename); err != nil {
		// The ledger entry still goes away; orphaned files are harmless.
		slog.Warn("Failed to delete file", "filename", tx.Filename, "error", err)
	}

	if err := s.db.DeleteTransaction(id); err != nil {
		return fmt.Errorf("deleting transaction: %w", err)
	}
	return nil
}

// GetTransactionFile retrieves the original receipt file for a transaction
func (s *Service) GetTransactionFile(id string) ([]byte, string, error) {
	tx, err := s.db.GetTransaction(id)
	if err != nil {
		return nil, "", fmt.Errorf("getting transaction: %w", err)
	}

	data, err := s.storage.Get(tx.Filename)
	if err != nil {
		return nil, "", fmt.Errorf("getting receipt file: %w", err)
	}
	return data, tx.ContentType, nil
}

// MonthlySummary aggregates confirmed transactions per calendar month,
// newest month first.
func (s *Service) MonthlySummary() ([]MonthSummary, error) {
	transactions, err := s.db.ListTransactions()
	if err != nil {
		return nil, fmt.Errorf("listing transactions: %w", err)
	}

	byMonth := make(map[string]*MonthSummary)
	for _, tx := range transactions {
		month := tx.Date.Format("2006-01")
		summary, ok := byMonth[month]
		if !ok {
			summary = &MonthSummary{Month: month}
			byMonth[month] = summary
		}
		summary.Count++
		summary.Amount += tx.Amount
	}

	summaries := make([]MonthSummary, 0, len(byMonth))
	for _, summary := range byMonth {
		summaries = append(summaries, *summary)
	}
	sort.Slice(summaries, func(i, j int) bool { return summaries[i].Month > summaries[j].Month })
	return summaries, nil
}
