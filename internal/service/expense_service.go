package service

import (
	"context"
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/straye-as/expense-gateway/internal/config"
	"github.com/straye-as/expense-gateway/internal/crm"
	"github.com/straye-as/expense-gateway/internal/domain"
	"github.com/straye-as/expense-gateway/internal/spool"
	"go.uber.org/zap"
)

// Attachment is one receipt image arriving with a multipart submission,
// keyed by the form field it arrived under.
type Attachment struct {
	Field    string
	Filename string
	Data     io.Reader
}

// ExpenseService relays one expense submission to the CRM: receipts are
// spooled locally, uploaded into the well-known folder, their public URLs
// written onto the record, and the primary object created.
type ExpenseService struct {
	crm    *crm.Client
	cfg    *config.CRMConfig
	spool  *spool.Spool
	logger *zap.Logger
}

// NewExpenseService creates a new ExpenseService instance
func NewExpenseService(crmClient *crm.Client, cfg *config.CRMConfig, sp *spool.Spool, logger *zap.Logger) *ExpenseService {
	return &ExpenseService{
		crm:    crmClient,
		cfg:    cfg,
		spool:  sp,
		logger: logger,
	}
}

// Submit performs the primary create for one submission. Spooled attachments
// are removed on every exit path, success or failure.
//
// The payload builder owns two derived fields: visa_total always mirrors
// amount, and submission_id gets a fresh identifier when the caller sent
// none. The submission id is advisory; the CRM does not deduplicate on it.
func (s *ExpenseService) Submit(ctx context.Context, req *domain.SubmitExpenseRequest, attachments []Attachment) (*domain.SubmitExpenseResponse, error) {
	props := req.Properties
	props.VisaTotal = props.Amount
	if props.SubmissionID == "" {
		props.SubmissionID = uuid.New().String()
	}

	staged, err := s.stageAll(attachments)
	defer removeAll(staged)
	if err != nil {
		return nil, err
	}

	var fileURLs []domain.UploadedFile
	if len(staged) > 0 {
		folderID, err := s.crm.FindOrCreateFolder(ctx, s.cfg.ReceiptFolderName)
		if err != nil {
			return nil, err
		}

		for _, f := range staged {
			url, err := s.crm.UploadFile(ctx, folderID, f.Path, f.Filename)
			if err != nil {
				return nil, fmt.Errorf("failed to upload %s: %w", f.Field, err)
			}

			fileURLs = append(fileURLs, domain.UploadedFile{FieldName: f.Field, URL: url})
			s.setReceiptURL(&props, f.Field, url)
		}
	}

	expenseID, err := s.crm.CreateObject(ctx, s.cfg.ExpenseObject, props)
	if err != nil {
		return nil, err
	}

	s.logger.Info("expense created",
		zap.String("expense_id", expenseID),
		zap.String("submission_id", props.SubmissionID),
		zap.Int("attachments", len(staged)),
	)

	return &domain.SubmitExpenseResponse{
		Message:  "Expense submitted successfully",
		Expense:  domain.CreatedObject{ID: expenseID},
		FileURLs: fileURLs,
	}, nil
}

// stageAll spools every attachment to disk. On a partial failure the files
// staged so far are returned so the deferred cleanup still covers them.
func (s *ExpenseService) stageAll(attachments []Attachment) ([]*spool.StagedFile, error) {
	var staged []*spool.StagedFile
	for _, a := range attachments {
		f, err := s.spool.Stage(a.Field, a.Filename, a.Data)
		if c, ok := a.Data.(io.Closer); ok {
			_ = c.Close()
		}
		if err != nil {
			return staged, fmt.Errorf("failed to stage %s: %w", a.Field, err)
		}
		staged = append(staged, f)
	}
	return staged, nil
}

func removeAll(staged []*spool.StagedFile) {
	for _, f := range staged {
		f.Remove()
	}
}

// setReceiptURL writes an uploaded URL into the property slot matching the
// attachment's form field.
func (s *ExpenseService) setReceiptURL(props *domain.ExpenseProperties, field, url string) {
	switch field {
	case "receipt_photo_1":
		props.ReceiptPhoto1 = url
	case "receipt_photo_2":
		props.ReceiptPhoto2 = url
	default:
		s.logger.Warn("uploaded attachment has no matching property slot",
			zap.String("field", field),
		)
	}
}
