package crm

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
)

// Object is one record of a CRM collection, reduced to its id and the
// requested properties.
type Object struct {
	ID         string            `json:"id"`
	Properties map[string]string `json:"properties"`
}

type objectPage struct {
	Results []Object `json:"results"`
	Paging  *struct {
		Next *struct {
			After string `json:"after"`
		} `json:"next"`
	} `json:"paging"`
}

// CreateObject creates one record of the given object type and returns the
// id the CRM assigned to it.
func (c *Client) CreateObject(ctx context.Context, objectType string, properties interface{}) (string, error) {
	body := map[string]interface{}{"properties": properties}

	var created struct {
		ID string `json:"id"`
	}
	if err := c.doJSON(ctx, http.MethodPost, "/crm/v3/objects/"+objectType, nil, body, &created); err != nil {
		return "", fmt.Errorf("failed to create %s object: %w", objectType, err)
	}

	return created.ID, nil
}

// ListObjects reads one collection to exhaustion, following the next cursor
// until absent, and returns the flat result set.
func (c *Client) ListObjects(ctx context.Context, objectType string, properties []string, pageLimit int) ([]Object, error) {
	if pageLimit <= 0 {
		pageLimit = 100
	}

	var all []Object
	after := ""

	for {
		query := url.Values{}
		query.Set("limit", strconv.Itoa(pageLimit))
		query.Set("archived", "false")
		for _, p := range properties {
			query.Add("properties", p)
		}
		if after != "" {
			query.Set("after", after)
		}

		var page objectPage
		if err := c.doJSON(ctx, http.MethodGet, "/crm/v3/objects/"+objectType, query, nil, &page); err != nil {
			return nil, fmt.Errorf("failed to list %s objects: %w", objectType, err)
		}

		all = append(all, page.Results...)

		if page.Paging == nil || page.Paging.Next == nil || page.Paging.Next.After == "" {
			break
		}
		after = page.Paging.Next.After
	}

	return all, nil
}
