package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/joshkonopka69/fitness-sub000/internal/models"
	appErrors "github.com/joshkonopka69/fitness-sub000/pkg/errors"
	"github.com/joshkonopka69/fitness-sub000/pkg/export"
	"github.com/joshkonopka69/fitness-sub000/pkg/money"
	"github.com/joshkonopka69/fitness-sub000/pkg/storage"
)

const (
	colDate   = "Date"
	colAmount = "Amount"
	colStatus = "Status"
	colMethod = "Method"
	colNote   = "Note"
)

type statementPayments interface {
	ListByClient(ctx context.Context, coachID, clientID string, limit int) ([]models.Payment, error)
}

type fileStorage interface {
	Save(filename string, data []byte) (string, error)
	Open(filename string) (*os.File, error)
	Delete(filename string) error
	CleanupOlderThan(ttl time.Duration) ([]string, error)
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title, subtitle string) ([]byte, error)
}

// ExportConfig tunes export behaviour.
type ExportConfig struct {
	APIPrefix string
	ResultTTL time.Duration
	Location  *time.Location
}

// ExportService renders client statements and hands out signed download links.
type ExportService struct {
	clients  clientLookup
	payments statementPayments
	storage  fileStorage
	csv      csvRenderer
	pdf      pdfRenderer
	signer   *storage.SignedURLSigner
	logger   *zap.Logger
	cfg      ExportConfig
	now      func() time.Time
}

// NewExportService constructs an ExportService.
func NewExportService(clients clientLookup, payments statementPayments, store fileStorage, signer *storage.SignedURLSigner, cfg ExportConfig, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ResultTTL <= 0 {
		cfg.ResultTTL = time.Hour
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	return &ExportService{
		clients:  clients,
		payments: payments,
		storage:  store,
		csv:      export.NewCSVExporter(),
		pdf:      export.NewPDFExporter(),
		signer:   signer,
		logger:   logger,
		cfg:      cfg,
		now:      time.Now,
	}
}

// ClientStatement renders every payment of the client with a balance footer and
// returns a signed link to the stored file.
func (s *ExportService) ClientStatement(ctx context.Context, coachID, clientID string, format models.StatementFormat) (*models.StatementExport, error) {
	if format == "" {
		format = models.StatementFormatCSV
	}
	if !format.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf")
	}
	client, err := s.clients.FindByID(ctx, coachID, clientID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "client not found")
		}
		return nil, appErrors.Internal(err, "failed to load client")
	}
	payments, err := s.payments.ListByClient(ctx, coachID, clientID, 0)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to load payments")
	}

	dataset := s.statementDataset(client, payments)
	var payload []byte
	switch format {
	case models.StatementFormatPDF:
		subtitle := fmt.Sprintf("Generated %s", s.now().In(s.cfg.Location).Format("2006-01-02 15:04"))
		payload, err = s.pdf.Render(dataset, "Statement: "+client.Name, subtitle)
	default:
		payload, err = s.csv.Render(dataset)
	}
	if err != nil {
		return nil, appErrors.Internal(err, "failed to render statement")
	}

	relPath, err := s.storage.Save(s.buildFilename(coachID, client, format), payload)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to store statement")
	}
	token, expiresAt, err := s.signer.Generate(coachID, relPath)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to sign statement link")
	}
	prefix := strings.TrimRight(s.cfg.APIPrefix, "/")
	if prefix == "" {
		prefix = "/api/v1"
	}
	s.logger.Info("statement exported",
		zap.String("coach_id", coachID),
		zap.String("client_id", clientID),
		zap.String("format", string(format)),
		zap.Int("payments", len(payments)))
	return &models.StatementExport{
		ClientID:  clientID,
		Format:    format,
		URL:       fmt.Sprintf("%s/exports/%s", prefix, token),
		Token:     token,
		ExpiresAt: expiresAt,
	}, nil
}

func (s *ExportService) statementDataset(client *models.Client, payments []models.Payment) export.Dataset {
	dataset := export.Dataset{
		Headers: []string{colDate, colAmount, colStatus, colMethod, colNote},
		Rows:    make([]map[string]string, 0, len(payments)),
	}
	paid, pending := decimal.Zero, decimal.Zero
	for _, p := range payments {
		dataset.Rows = append(dataset.Rows, map[string]string{
			colDate:   p.PaymentDate.In(s.cfg.Location).Format("2006-01-02"),
			colAmount: money.Format(p.Amount),
			colStatus: string(p.Status),
			colMethod: deref(p.PaymentMethod),
			colNote:   deref(p.Note),
		})
		if p.Status == models.PaymentStatusCompleted {
			paid = paid.Add(p.Amount)
		} else {
			pending = pending.Add(p.Amount)
		}
	}
	dataset.Footer = [][2]string{
		{"Total paid", money.Format(paid)},
		{"Total pending", money.Format(pending)},
		{"Balance owed", money.Format(client.BalanceOwed)},
	}
	return dataset
}

// Resolve validates a download token and returns the stored path with a download name.
func (s *ExportService) Resolve(token string) (relPath, filename string, err error) {
	_, relPath, _, err = s.signer.Parse(token, false)
	if err != nil {
		if errors.Is(err, storage.ErrTokenExpired) {
			return "", "", appErrors.Clone(appErrors.ErrForbidden, "download link expired")
		}
		return "", "", appErrors.Clone(appErrors.ErrNotFound, "download link not found")
	}
	return relPath, path.Base(relPath), nil
}

// Open returns a handle to the stored file.
func (s *ExportService) Open(relPath string) (*os.File, error) {
	file, err := s.storage.Open(relPath)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "statement no longer available")
	}
	return file, nil
}

// Cleanup removes files older than ttl (the configured ResultTTL when ttl <= 0).
func (s *ExportService) Cleanup(ttl time.Duration) ([]string, error) {
	if ttl <= 0 {
		ttl = s.cfg.ResultTTL
	}
	return s.storage.CleanupOlderThan(ttl)
}

// RunCleanup sweeps expired files every interval until ctx is done.
func (s *ExportService) RunCleanup(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Hour
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			deleted, err := s.Cleanup(0)
			if err != nil {
				s.logger.Warn("statement cleanup failed", zap.Error(err))
				continue
			}
			if len(deleted) > 0 {
				s.logger.Info("statement cleanup", zap.Int("deleted", len(deleted)))
			}
		}
	}
}

func (s *ExportService) buildFilename(coachID string, client *models.Client, format models.StatementFormat) string {
	timestamp := s.now().UTC().Format("20060102_150405")
	return fmt.Sprintf("%s/statement_%s_%s.%s", sanitizeFilename(coachID), sanitizeFilename(client.Name), timestamp, format)
}

func sanitizeFilename(raw string) string {
	if raw == "" {
		return "na"
	}
	replacer := strings.NewReplacer(" ", "_", "/", "-", "\\", "-", ":", "-", "..", ".", "__", "_")
	result := replacer.Replace(raw)
	if len(result) > 100 {
		return result[:100]
	}
	return result
}

func deref(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}
