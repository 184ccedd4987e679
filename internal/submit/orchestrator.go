// Package submit implements the multi-step submission sequence behind the
// expense form: one primary create followed by at most one association call
// per selected entity kind, tolerating partial failure.
package submit

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/straye-as/expense-gateway/internal/apiclient"
	"github.com/straye-as/expense-gateway/internal/domain"
	"github.com/straye-as/expense-gateway/internal/search"
	"go.uber.org/zap"
)

// Gateway is the slice of the gateway client the orchestrator needs.
// Satisfied by apiclient.Client.
type Gateway interface {
	SubmitExpense(ctx context.Context, req *domain.SubmitExpenseRequest) (*domain.SubmitExpenseResponse, error)
	SubmitExpenseMultipart(ctx context.Context, req *domain.SubmitExpenseRequest, receipts []apiclient.ReceiptUpload) (*domain.SubmitExpenseResponse, error)
	CreateAssociation(ctx context.Context, kind domain.EntityKind, expenseID, entityID string) (*domain.CreateAssociationResponse, error)
}

// Orchestrator runs one submission cycle at a time: steps are strictly
// sequential, never concurrent.
type Orchestrator struct {
	gateway  Gateway
	registry *search.Registry
	logger   *zap.Logger
}

// NewOrchestrator creates an orchestrator over the given gateway client and
// selection registry.
func NewOrchestrator(gateway Gateway, registry *search.Registry, logger *zap.Logger) *Orchestrator {
	return &Orchestrator{
		gateway:  gateway,
		registry: registry,
		logger:   logger,
	}
}

// Submit runs one full submission cycle.
//
// Step 1 creates the primary record. On failure the cycle aborts with that
// single error: no association is attempted and all Selections stay intact
// so the user can retry.
//
// Step 2 attempts one association per kind that has a Selection, in fixed
// contact, company, game order. Each failure is recorded independently and
// never blocks the remaining kinds.
//
// A successful primary create always ends with a full form reset: every
// Selection is cleared even when association attempts failed, because the
// expense record exists and resubmitting it would duplicate it.
func (o *Orchestrator) Submit(ctx context.Context, props domain.ExpenseProperties, receipts []apiclient.ReceiptUpload) (*domain.SubmissionResult, error) {
	req := o.buildRequest(props)

	resp, err := o.createPrimary(ctx, req, receipts)
	if err != nil {
		o.logger.Warn("primary create failed, selections kept for retry",
			zap.Error(err),
		)
		return &domain.SubmissionResult{}, fmt.Errorf("failed to create expense: %w", err)
	}

	result := &domain.SubmissionResult{ExpenseID: resp.Expense.ID}

	for _, kind := range domain.AssociationOrder {
		selected, ok := o.registry.Selection(kind)
		if !ok {
			continue
		}

		outcome := domain.AssociationOutcome{Kind: kind, EntityID: selected.ID}
		if _, err := o.gateway.CreateAssociation(ctx, kind, result.ExpenseID, selected.ID); err != nil {
			outcome.Error = err.Error()
			o.logger.Warn("association attempt failed",
				zap.String("kind", string(kind)),
				zap.String("expense_id", result.ExpenseID),
				zap.String("entity_id", selected.ID),
				zap.Error(err),
			)
		} else {
			outcome.Created = true
		}

		result.Associations = append(result.Associations, outcome)
	}

	o.registry.ClearAll()

	return result, nil
}

// buildRequest owns the derived payload fields: visa_total always mirrors
// amount, and every cycle gets a fresh submission id. The id is advisory;
// the external API has no conditional create, so a retried cycle after a
// lost response can still duplicate the record.
func (o *Orchestrator) buildRequest(props domain.ExpenseProperties) *domain.SubmitExpenseRequest {
	props.VisaTotal = props.Amount
	props.SubmissionID = uuid.New().String()
	return &domain.SubmitExpenseRequest{Properties: props}
}

func (o *Orchestrator) createPrimary(ctx context.Context, req *domain.SubmitExpenseRequest, receipts []apiclient.ReceiptUpload) (*domain.SubmitExpenseResponse, error) {
	if len(receipts) > 0 {
		return o.gateway.SubmitExpenseMultipart(ctx, req, receipts)
	}
	return o.gateway.SubmitExpense(ctx, req)
}
