package domain

// SubmitExpenseRequest is the JSON body of POST /api/submit-expense. For
// multipart submissions the same shape arrives as the "data" form field with
// attachments under receipt_photo_1 / receipt_photo_2.
type SubmitExpenseRequest struct {
	Properties ExpenseProperties `json:"properties" validate:"required"`
}

// SubmitExpenseResponse mirrors the historical proxy response: the created
// record plus any uploaded receipt URLs.
type SubmitExpenseResponse struct {
	Message  string         `json:"message"`
	Expense  CreatedObject  `json:"expense"`
	FileURLs []UploadedFile `json:"fileUrls,omitempty"`
}

// CreatedObject is the identity the CRM assigned to the primary record.
type CreatedObject struct {
	ID string `json:"id"`
}

// UploadedFile pairs an attachment slot with its public URL.
type UploadedFile struct {
	FieldName string `json:"fieldName"`
	URL       string `json:"url"`
}

// EntityListResponse is the flat list the entity endpoints return.
type EntityListResponse struct {
	Total   int                `json:"total"`
	Results []SelectableEntity `json:"results"`
}

// CreateAssociationRequest carries the primary record id and the selected
// entity id for one association-create call.
type CreateAssociationRequest struct {
	ExpenseID string `json:"expenseId" validate:"required"`
	EntityID  string `json:"entityId" validate:"required"`
}

// CreateAssociationResponse reports a created association edge.
type CreateAssociationResponse struct {
	Success bool   `json:"success"`
	TypeID  string `json:"typeId,omitempty"`
}
