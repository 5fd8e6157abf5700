package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/diewo77/go-rentals/internal/models"
	"github.com/diewo77/go-rentals/internal/store"
	"github.com/diewo77/go-rentals/validation"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	ErrUnknownDocumentType = errors.New("unknown document type")
	ErrInvalidDateRange    = errors.New("end date before start date")
)

// DocumentTypes lists the accepted document types.
var DocumentTypes = []string{models.DocPurchaseOrder, models.DocQuote, models.DocInvoice}

// DocumentStatuses lists the accepted document statuses.
var DocumentStatuses = []string{models.DocDraft, models.DocSent, models.DocApproved, models.DocRejected, models.DocCompleted}

var numberPrefix = map[string]string{
	models.DocPurchaseOrder: "OC",
	models.DocQuote:         "COT",
	models.DocInvoice:       "FAC",
}

// FormatNumber renders PREFIX-YYYY-NNNN, e.g. COT-2025-0007.
func FormatNumber(docType string, year, seq int) (string, error) {
	p, ok := numberPrefix[docType]
	if !ok {
		return "", fmt.Errorf("%q: %w", docType, ErrUnknownDocumentType)
	}
	return fmt.Sprintf("%s-%d-%04d", p, year, seq), nil
}

// DocumentService runs the commercial document pipeline: draft creation,
// detail assembly, totals computation and persistence.
type DocumentService struct {
	db  *gorm.DB
	log *zap.Logger
	now func() time.Time

	Documents     *store.Table[models.Document]
	Details       *store.Table[models.DocumentDetail]
	Totals        *store.Table[models.DocumentTotals]
	Companies     *store.Table[models.Company]
	Maintenance   *store.Table[models.MaintenanceJob]
	Installations *store.Table[models.InstallationJob]
	Issuer        *IssuerService
}

func NewDocumentService(db *gorm.DB, log *zap.Logger) *DocumentService {
	if log == nil {
		log = zap.NewNop()
	}
	return &DocumentService{
		db:            db,
		log:           log,
		now:           time.Now,
		Documents:     store.NewTable[models.Document](db),
		Details:       store.NewTable[models.DocumentDetail](db),
		Totals:        store.NewTable[models.DocumentTotals](db),
		Companies:     store.NewTable[models.Company](db),
		Maintenance:   store.NewTable[models.MaintenanceJob](db),
		Installations: store.NewTable[models.InstallationJob](db),
		Issuer:        NewIssuerService(db),
	}
}

// NextNumber proposes the number following the highest one issued this year for docType.
func (s *DocumentService) NextNumber(ctx context.Context, docType string) (string, error) {
	year := s.now().Year()
	first, err := FormatNumber(docType, year, 0)
	if err != nil {
		return "", err
	}
	prefix := strings.TrimSuffix(first, "0000")
	var numbers []string
	err = s.db.WithContext(ctx).Model(&models.Document{}).
		Where("document_type = ? AND document_number LIKE ?", docType, prefix+"%").
		Pluck("document_number", &numbers).Error
	if err != nil {
		return "", fmt.Errorf("next number: %w", err)
	}
	seq := 0
	for _, n := range numbers {
		if v, err := strconv.Atoi(strings.TrimPrefix(n, prefix)); err == nil && v > seq {
			seq = v
		}
	}
	return FormatNumber(docType, year, seq+1)
}

// Create inserts a draft document. Missing number, status and issue date are defaulted.
func (s *DocumentService) Create(ctx context.Context, doc *models.Document) error {
	if _, ok := numberPrefix[doc.Type]; !ok {
		return fmt.Errorf("%q: %w", doc.Type, ErrUnknownDocumentType)
	}
	if doc.Status == "" {
		doc.Status = models.DocDraft
	}
	if doc.IssueDate.IsZero() {
		doc.IssueDate = s.now()
	}
	if strings.TrimSpace(doc.Number) == "" {
		n, err := s.NextNumber(ctx, doc.Type)
		if err != nil {
			return err
		}
		doc.Number = n
	}
	if err := s.Documents.Insert(ctx, doc); err != nil {
		return err
	}
	s.log.Info("document created", zap.String("id", doc.ID.String()), zap.String("number", doc.Number), zap.String("type", doc.Type))
	return nil
}

// Get loads a document with its company, detail and stored totals.
func (s *DocumentService) Get(ctx context.Context, id uuid.UUID) (*models.Document, error) {
	return s.Documents.Get(ctx, id, "Company", "Detail", "Totals")
}

// Delete removes the document together with its detail and totals.
func (s *DocumentService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		f := store.Filter{Where: map[string]any{"document_id": id}}
		if err := s.Details.WithTx(tx).DeleteWhere(ctx, f); err != nil {
			return err
		}
		if err := s.Totals.WithTx(tx).DeleteWhere(ctx, f); err != nil {
			return err
		}
		return s.Documents.WithTx(tx).Delete(ctx, id)
	})
}

// DetailInput is the submitted service window plus the selected lines.
type DetailInput struct {
	StartDate      *time.Time `json:"start_date"`
	EndDate        *time.Time `json:"end_date"`
	WorkLocation   string     `json:"work_location"`
	City           string     `json:"city"`
	Address        string     `json:"address"`
	TechnicalNotes string     `json:"technical_notes"`
	Selection
}

// DetailFor loads the stored detail of a document, or an empty one.
func (s *DocumentService) DetailFor(ctx context.Context, docID uuid.UUID) (*models.DocumentDetail, error) {
	d, err := s.Details.FindOne(ctx, store.Filter{Where: map[string]any{"document_id": docID}})
	if store.IsNotFound(err) {
		return &models.DocumentDetail{DocumentID: docID}, nil
	}
	return d, err
}

// SubmitDetail persists the detail of a document. The selection is validated
// before anything is written. Jobs authored inline are inserted first so every
// line carries a real id, then the detail is upserted.
//
// The steps are not transactional: if a later step fails, jobs inserted by
// earlier steps stay in place. They are logged so they can be cleaned up.
func (s *DocumentService) SubmitDetail(ctx context.Context, docID uuid.UUID, in DetailInput) (*models.DocumentDetail, error) {
	doc, err := s.Documents.Get(ctx, docID)
	if err != nil {
		return nil, err
	}
	if in.StartDate != nil && in.EndDate != nil && in.EndDate.Before(*in.StartDate) {
		return nil, ErrInvalidDateRange
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}

	var created []string
	abort := func(step string, err error) error {
		if len(created) > 0 {
			s.log.Warn("document detail submit aborted after partial writes",
				zap.String("document_id", docID.String()),
				zap.String("step", step),
				zap.Strings("orphaned_jobs", created),
				zap.Error(err))
		}
		return err
	}

	for i := range in.Maintenance {
		line := &in.Maintenance[i]
		if !line.IsNew {
			continue
		}
		job := models.MaintenanceJob{Job: line.ToJob(doc.CompanyID)}
		if err := s.Maintenance.Insert(ctx, &job); err != nil {
			return nil, abort("maintenance", fmt.Errorf("save maintenance %q: %w", line.Title, err))
		}
		line.MaintenanceID = job.ID
		line.IsNew = false
		created = append(created, "maintenance:"+job.ID.String())
	}
	for i := range in.Installations {
		line := &in.Installations[i]
		if !line.IsNew {
			continue
		}
		job := models.InstallationJob{Job: line.ToJob(doc.CompanyID), Status: models.JobPending}
		if err := s.Installations.Insert(ctx, &job); err != nil {
			return nil, abort("installation", fmt.Errorf("save installation %q: %w", line.Title, err))
		}
		line.InstallationID = job.ID
		line.IsNew = false
		created = append(created, "installation:"+job.ID.String())
	}

	in.Normalize()
	detail := models.DocumentDetail{
		DocumentID:     doc.ID,
		StartDate:      in.StartDate,
		EndDate:        in.EndDate,
		Days:           DayCountPtr(in.StartDate, in.EndDate),
		WorkLocation:   in.WorkLocation,
		City:           in.City,
		Address:        in.Address,
		TechnicalNotes: in.TechnicalNotes,
		Assets:         in.Assets,
		Maintenance:    in.Maintenance,
		Installations:  in.Installations,
	}
	if err := s.Details.Upsert(ctx, &detail, "document_id"); err != nil {
		return nil, abort("detail", fmt.Errorf("save detail: %w", err))
	}
	s.log.Info("document detail saved",
		zap.String("document_id", docID.String()),
		zap.Int("assets", len(detail.Assets)),
		zap.Int("maintenance", len(detail.Maintenance)),
		zap.Int("installations", len(detail.Installations)),
		zap.Int("new_jobs", len(created)))
	return &detail, nil
}

// TotalsView is everything the totals page and the PDF need.
type TotalsView struct {
	Document models.Document
	Company  models.Company
	Issuer   *models.IssuerProfile
	Detail   models.DocumentDetail
	Stored   *models.DocumentTotals
	Totals   Totals
	ByKind   map[models.LineKind]float64
}

// LoadTotals assembles the totals view. When adj is nil the stored
// adjustments are reused, falling back to the defaults.
func (s *DocumentService) LoadTotals(ctx context.Context, docID uuid.UUID, adj *Adjustments) (*TotalsView, error) {
	doc, err := s.Documents.Get(ctx, docID)
	if err != nil {
		return nil, err
	}
	company, err := s.Companies.Get(ctx, doc.CompanyID)
	if err != nil {
		return nil, err
	}
	issuer, err := s.Issuer.Get(ctx)
	if err != nil {
		return nil, err
	}
	detail, err := s.DetailFor(ctx, docID)
	if err != nil {
		return nil, err
	}
	stored, err := s.Totals.FindOne(ctx, store.Filter{Where: map[string]any{"document_id": docID}})
	if store.IsNotFound(err) {
		stored, err = nil, nil
	}
	if err != nil {
		return nil, err
	}
	a := AdjustmentsFrom(stored)
	if adj != nil {
		a = *adj
	}
	lines := detail.Lines()
	return &TotalsView{
		Document: *doc,
		Company:  *company,
		Issuer:   issuer,
		Detail:   *detail,
		Stored:   stored,
		Totals:   ComputeTotals(Subtotal(lines), a),
		ByKind:   SubtotalByKind(lines),
	}, nil
}

// SaveTotals recomputes the totals from the stored detail and upserts them by document id.
func (s *DocumentService) SaveTotals(ctx context.Context, docID uuid.UUID, adj Adjustments) (*models.DocumentTotals, error) {
	if !validation.IsPrice(adj.Discount) || !validation.IsPrice(adj.TaxRatePercent) || !validation.IsPrice(adj.OtherTaxes) {
		return nil, ErrInvalidPrice
	}
	view, err := s.LoadTotals(ctx, docID, &adj)
	if err != nil {
		return nil, err
	}
	rec := view.Totals.Record(view.Document)
	if err := s.Totals.Upsert(ctx, &rec, "document_id"); err != nil {
		return nil, err
	}
	s.log.Info("document totals saved", zap.String("document_id", docID.String()), zap.Float64("total", rec.Total))
	return &rec, nil
}
