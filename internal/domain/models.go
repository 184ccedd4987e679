package domain

import "strings"

// EntityKind identifies one selectable collection in the expense form.
type EntityKind string

const (
	KindContact EntityKind = "contacts"
	KindCompany EntityKind = "companies"
	KindGame    EntityKind = "games"
)

// AssociationOrder is the fixed order in which association attempts run and
// in which their errors are surfaced.
var AssociationOrder = []EntityKind{KindContact, KindCompany, KindGame}

// Valid reports whether k names a known entity kind.
func (k EntityKind) Valid() bool {
	switch k {
	case KindContact, KindCompany, KindGame:
		return true
	}
	return false
}

// SelectableEntity is the projection of an external CRM record down to an
// identity and a display string. The full record is discarded after the
// label is computed.
type SelectableEntity struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

// PersonLabel builds a display label from name parts, tolerating missing
// sub-fields. Empty parts produce no stray whitespace.
func PersonLabel(firstName, lastName string) string {
	return strings.TrimSpace(strings.TrimSpace(firstName) + " " + strings.TrimSpace(lastName))
}

// ExpenseProperties is the flat primary record created in the CRM.
// VisaTotal mirrors Amount; the mirror is maintained by the payload builder,
// not by the caller.
type ExpenseProperties struct {
	Amount        string `json:"amount"`
	ExpenseDate   string `json:"expense_date"`
	ExpenseType   string `json:"expense_type"`
	OwnerID       string `json:"hubspot_owner_id,omitempty"`
	ExpenseName   string `json:"expense_name"`
	ExpenseNotes  string `json:"expense_notes,omitempty"`
	PaymentType   string `json:"payment_type"`
	VisaTotal     string `json:"visa_total"`
	ReceiptPhoto1 string `json:"receipt_photo_1,omitempty"`
	ReceiptPhoto2 string `json:"receipt_photo_2,omitempty"`
	SubmissionID  string `json:"submission_id,omitempty"`
}

// AssociationOutcome records the result of one association attempt.
type AssociationOutcome struct {
	Kind     EntityKind `json:"kind"`
	EntityID string     `json:"entityId"`
	Created  bool       `json:"created"`
	Error    string     `json:"error,omitempty"`
}

// SubmissionResult is the outcome of one orchestrated submission attempt.
// ExpenseID is empty when the primary create failed; Associations holds one
// outcome per kind that had a selection, in AssociationOrder.
type SubmissionResult struct {
	ExpenseID    string               `json:"expenseId,omitempty"`
	Associations []AssociationOutcome `json:"associations,omitempty"`
}

// Succeeded reports whether the primary record was created. Association
// failures do not make a submission unsuccessful.
func (r *SubmissionResult) Succeeded() bool {
	return r.ExpenseID != ""
}

// FailedAssociations returns the outcomes that did not create an edge.
func (r *SubmissionResult) FailedAssociations() []AssociationOutcome {
	var failed []AssociationOutcome
	for _, a := range r.Associations {
		if !a.Created {
			failed = append(failed, a)
		}
	}
	return failed
}
