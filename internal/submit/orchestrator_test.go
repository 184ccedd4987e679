package submit_test

import (
	"context"
	"errors"
	"testing"

	"github.com/straye-as/expense-gateway/internal/apiclient"
	"github.com/straye-as/expense-gateway/internal/domain"
	"github.com/straye-as/expense-gateway/internal/search"
	"github.com/straye-as/expense-gateway/internal/submit"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeGateway struct {
	submitErr     error
	submitted     []*domain.SubmitExpenseRequest
	assocCalls    []domain.EntityKind
	assocEntities map[domain.EntityKind]string
	assocErrs     map[domain.EntityKind]error
}

func (g *fakeGateway) SubmitExpense(_ context.Context, req *domain.SubmitExpenseRequest) (*domain.SubmitExpenseResponse, error) {
	g.submitted = append(g.submitted, req)
	if g.submitErr != nil {
		return nil, g.submitErr
	}
	return &domain.SubmitExpenseResponse{
		Message: "Expense submitted successfully",
		Expense: domain.CreatedObject{ID: "exp-1"},
	}, nil
}

func (g *fakeGateway) SubmitExpenseMultipart(ctx context.Context, req *domain.SubmitExpenseRequest, _ []apiclient.ReceiptUpload) (*domain.SubmitExpenseResponse, error) {
	return g.SubmitExpense(ctx, req)
}

func (g *fakeGateway) CreateAssociation(_ context.Context, kind domain.EntityKind, _, entityID string) (*domain.CreateAssociationResponse, error) {
	g.assocCalls = append(g.assocCalls, kind)
	if g.assocEntities == nil {
		g.assocEntities = make(map[domain.EntityKind]string)
	}
	g.assocEntities[kind] = entityID
	if err := g.assocErrs[kind]; err != nil {
		return nil, err
	}
	return &domain.CreateAssociationResponse{Success: true}, nil
}

type staticFetcher struct{}

func (staticFetcher) ListEntities(_ context.Context, kind domain.EntityKind) ([]domain.SelectableEntity, error) {
	switch kind {
	case domain.KindContact:
		return []domain.SelectableEntity{{ID: "c1", Label: "Lee"}}, nil
	case domain.KindCompany:
		return []domain.SelectableEntity{{ID: "co1", Label: "Acme AS"}}, nil
	case domain.KindGame:
		return []domain.SelectableEntity{{ID: "g1", Label: "Home opener"}}, nil
	}
	return nil, nil
}

func newOrchestrator(t *testing.T, gw *fakeGateway) (*submit.Orchestrator, *search.Registry) {
	t.Helper()

	registry := search.NewRegistry(staticFetcher{}, zap.NewNop())
	require.NoError(t, registry.LoadAll(context.Background()))

	return submit.NewOrchestrator(gw, registry, zap.NewNop()), registry
}

func TestOrchestrator_PrimaryFailureSkipsAssociationsAndKeepsSelections(t *testing.T) {
	gw := &fakeGateway{submitErr: errors.New("upstream rejected")}
	o, registry := newOrchestrator(t, gw)

	require.True(t, registry.Select(domain.KindContact, "c1"))
	require.True(t, registry.Select(domain.KindCompany, "co1"))

	result, err := o.Submit(context.Background(), domain.ExpenseProperties{Amount: "100"}, nil)

	require.Error(t, err)
	assert.False(t, result.Succeeded())
	assert.Empty(t, gw.assocCalls)

	// selections survive so the user can retry
	_, ok := registry.Selection(domain.KindContact)
	assert.True(t, ok)
	_, ok = registry.Selection(domain.KindCompany)
	assert.True(t, ok)
}

func TestOrchestrator_OneSelectionMakesExactlyOneAssociationCall(t *testing.T) {
	gw := &fakeGateway{}
	o, registry := newOrchestrator(t, gw)

	require.True(t, registry.Select(domain.KindCompany, "co1"))

	result, err := o.Submit(context.Background(), domain.ExpenseProperties{Amount: "50"}, nil)

	require.NoError(t, err)
	assert.True(t, result.Succeeded())
	assert.Equal(t, []domain.EntityKind{domain.KindCompany}, gw.assocCalls)
	assert.Equal(t, "co1", gw.assocEntities[domain.KindCompany])
}

func TestOrchestrator_AssociationFailureIsPartialSuccessAndStillResets(t *testing.T) {
	gw := &fakeGateway{
		assocErrs: map[domain.EntityKind]error{
			domain.KindContact: errors.New("association rejected"),
		},
	}
	o, registry := newOrchestrator(t, gw)

	require.True(t, registry.Select(domain.KindContact, "c1"))
	require.True(t, registry.Select(domain.KindGame, "g1"))

	result, err := o.Submit(context.Background(), domain.ExpenseProperties{Amount: "75"}, nil)

	require.NoError(t, err)
	assert.True(t, result.Succeeded())

	// contact failed, game still attempted and succeeded
	require.Len(t, result.Associations, 2)
	assert.Equal(t, domain.KindContact, result.Associations[0].Kind)
	assert.False(t, result.Associations[0].Created)
	assert.NotEmpty(t, result.Associations[0].Error)
	assert.Equal(t, domain.KindGame, result.Associations[1].Kind)
	assert.True(t, result.Associations[1].Created)

	failed := result.FailedAssociations()
	require.Len(t, failed, 1)
	assert.Equal(t, domain.KindContact, failed[0].Kind)

	// reset happens regardless of association outcomes
	for _, kind := range domain.AssociationOrder {
		_, ok := registry.Selection(kind)
		assert.False(t, ok)
	}
}

func TestOrchestrator_AttemptsRunInFixedOrder(t *testing.T) {
	gw := &fakeGateway{}
	o, registry := newOrchestrator(t, gw)

	require.True(t, registry.Select(domain.KindGame, "g1"))
	require.True(t, registry.Select(domain.KindContact, "c1"))
	require.True(t, registry.Select(domain.KindCompany, "co1"))

	_, err := o.Submit(context.Background(), domain.ExpenseProperties{Amount: "10"}, nil)

	require.NoError(t, err)
	assert.Equal(t, []domain.EntityKind{domain.KindContact, domain.KindCompany, domain.KindGame}, gw.assocCalls)
}

func TestOrchestrator_VisaTotalMirrorsAmount(t *testing.T) {
	gw := &fakeGateway{}
	o, _ := newOrchestrator(t, gw)

	result, err := o.Submit(context.Background(), domain.ExpenseProperties{
		Amount:      "42.50",
		VisaTotal:   "999.99", // caller value is always overwritten
		ExpenseName: "Team dinner",
	}, nil)

	require.NoError(t, err)
	assert.True(t, result.Succeeded())
	assert.Empty(t, gw.assocCalls)

	require.Len(t, gw.submitted, 1)
	sent := gw.submitted[0].Properties
	assert.Equal(t, "42.50", sent.Amount)
	assert.Equal(t, "42.50", sent.VisaTotal)
	assert.NotEmpty(t, sent.SubmissionID)
}

func TestOrchestrator_FreshSubmissionIDPerCycle(t *testing.T) {
	gw := &fakeGateway{}
	o, _ := newOrchestrator(t, gw)

	_, err := o.Submit(context.Background(), domain.ExpenseProperties{Amount: "1"}, nil)
	require.NoError(t, err)
	_, err = o.Submit(context.Background(), domain.ExpenseProperties{Amount: "2"}, nil)
	require.NoError(t, err)

	require.Len(t, gw.submitted, 2)
	assert.NotEqual(t, gw.submitted[0].Properties.SubmissionID, gw.submitted[1].Properties.SubmissionID)
}
