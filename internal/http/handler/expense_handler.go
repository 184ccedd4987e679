package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/straye-as/expense-gateway/internal/config"
	"github.com/straye-as/expense-gateway/internal/domain"
	"github.com/straye-as/expense-gateway/internal/service"
	"go.uber.org/zap"
)

// attachmentFields are the multipart slots accepted on a submission, in the
// order their URLs are reported back.
var attachmentFields = []string{"receipt_photo_1", "receipt_photo_2"}

// ExpenseHandler handles HTTP requests for expense submission
type ExpenseHandler struct {
	expenseService *service.ExpenseService
	maxUploadBytes int64
	logger         *zap.Logger
}

// NewExpenseHandler creates a new ExpenseHandler
func NewExpenseHandler(expenseService *service.ExpenseService, uploadCfg *config.UploadConfig, logger *zap.Logger) *ExpenseHandler {
	maxBytes := uploadCfg.MaxUploadSizeMB * 1024 * 1024
	if maxBytes <= 0 {
		maxBytes = 5 * 1024 * 1024
	}

	return &ExpenseHandler{
		expenseService: expenseService,
		maxUploadBytes: maxBytes,
		logger:         logger,
	}
}

// SubmitExpense godoc
// @Summary Submit an expense report
// @Description Creates the expense record in the CRM, uploading receipt images first when present
// @Tags Expenses
// @Accept json
// @Accept multipart/form-data
// @Produce json
// @Param request body domain.SubmitExpenseRequest true "Expense properties (JSON mode; multipart mode sends the same JSON in the data field)"
// @Success 200 {object} domain.SubmitExpenseResponse
// @Failure 400 {object} domain.APIError
// @Failure 500 {object} domain.ProxyError
// @Router /submit-expense [post]
func (h *ExpenseHandler) SubmitExpense(w http.ResponseWriter, r *http.Request) {
	var (
		req         domain.SubmitExpenseRequest
		attachments []service.Attachment
		err         error
	)

	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		req, attachments, err = h.parseMultipart(w, r)
		// The multipart reader keeps the attachment streams open until the
		// service has spooled them.
		defer func() {
			if r.MultipartForm != nil {
				_ = r.MultipartForm.RemoveAll()
			}
		}()
	} else {
		err = json.NewDecoder(http.MaxBytesReader(w, r.Body, h.maxUploadBytes)).Decode(&req)
	}
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := validate.Struct(&req); err != nil {
		respondValidationError(w, err)
		return
	}

	resp, err := h.expenseService.Submit(r.Context(), &req, attachments)
	if err != nil {
		h.logger.Error("expense submission failed", zap.Error(err))
		respondProxyError(w, "Failed to create expense", err)
		return
	}

	respondJSON(w, http.StatusOK, resp)
}

// parseMultipart reads a multipart submission: a "data" field carrying the
// JSON body plus up to one file per attachment slot.
func (h *ExpenseHandler) parseMultipart(w http.ResponseWriter, r *http.Request) (domain.SubmitExpenseRequest, []service.Attachment, error) {
	var req domain.SubmitExpenseRequest

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes*int64(len(attachmentFields))+h.maxUploadBytes)
	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		return req, nil, fmt.Errorf("failed to parse multipart form: %w", err)
	}

	data := r.FormValue("data")
	if data == "" {
		return req, nil, fmt.Errorf("missing data field")
	}
	if err := json.Unmarshal([]byte(data), &req); err != nil {
		return req, nil, fmt.Errorf("invalid data field: %w", err)
	}

	var attachments []service.Attachment
	for _, field := range attachmentFields {
		headers := r.MultipartForm.File[field]
		if len(headers) == 0 {
			continue
		}

		fh := headers[0]
		if fh.Size > h.maxUploadBytes {
			return req, nil, fmt.Errorf("%s exceeds the %d byte upload limit", field, h.maxUploadBytes)
		}

		f, err := fh.Open()
		if err != nil {
			return req, nil, fmt.Errorf("failed to read %s: %w", field, err)
		}

		attachments = append(attachments, service.Attachment{
			Field:    field,
			Filename: fh.Filename,
			Data:     f,
		})
	}

	return req, attachments, nil
}
