package crm

import (
	"context"
	"fmt"
	"net/http"
)

// AssociationType is one entry of the CRM's association-type vocabulary
// between two object types.
type AssociationType struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// AssociationTypes returns the vocabulary of valid association-type ids
// between fromType and toType, in the order the CRM returns them.
func (c *Client) AssociationTypes(ctx context.Context, fromType, toType string) ([]AssociationType, error) {
	path := fmt.Sprintf("/crm/v3/associations/%s/%s/types", fromType, toType)

	var resp struct {
		Results []AssociationType `json:"results"`
	}
	if err := c.doJSON(ctx, http.MethodGet, path, nil, nil, &resp); err != nil {
		return nil, fmt.Errorf("failed to fetch association types %s -> %s: %w", fromType, toType, err)
	}

	return resp.Results, nil
}

// CreateAssociation creates one typed edge from fromID (of fromType) to
// toID (of toType) via the batch-create endpoint.
func (c *Client) CreateAssociation(ctx context.Context, fromType, toType, typeID, fromID, toID string) error {
	path := fmt.Sprintf("/crm/v3/associations/%s/%s/batch/create", fromType, toType)

	body := map[string]interface{}{
		"inputs": []map[string]interface{}{
			{
				"from": map[string]string{"id": fromID},
				"to":   map[string]string{"id": toID},
				"type": typeID,
			},
		},
	}

	if err := c.doJSON(ctx, http.MethodPost, path, nil, body, nil); err != nil {
		return fmt.Errorf("failed to create association %s -> %s: %w", fromType, toType, err)
	}

	return nil
}
