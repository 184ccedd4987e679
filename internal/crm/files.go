package crm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"

	"go.uber.org/zap"
)

// Folder is one file-manager folder.
type Folder struct {
	ID   json.Number `json:"id"`
	Name string      `json:"name"`
}

// uploadOptions is the fixed access policy for receipt uploads: the URL must
// be publicly reachable so it can be stored on the expense record.
var uploadOptions = map[string]interface{}{
	"access":                      "PUBLIC_INDEXABLE",
	"overwrite":                   true,
	"duplicateValidationStrategy": "NONE",
	"duplicateValidationScope":    "EXACT_FOLDER",
}

// FindOrCreateFolder returns the id of the well-known receipts folder,
// creating it at the root when absent. When creation races with another
// writer or is rejected, any pre-existing folder is used instead of failing
// the upload.
func (c *Client) FindOrCreateFolder(ctx context.Context, name string) (string, error) {
	var listing struct {
		Objects []Folder `json:"objects"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/filemanager/api/v3/folders", nil, nil, &listing); err != nil {
		return "", fmt.Errorf("failed to list folders: %w", err)
	}

	for _, f := range listing.Objects {
		if f.Name == name {
			return f.ID.String(), nil
		}
	}

	var created Folder
	err := c.doJSON(ctx, http.MethodPost, "/filemanager/api/v3/folders", nil, map[string]interface{}{
		"name":           name,
		"parentFolderId": 0,
	}, &created)
	if err != nil {
		// Creation can race with a concurrent request or be rejected by
		// folder permissions; fall back to whatever folder exists.
		if len(listing.Objects) > 0 {
			fallback := listing.Objects[0]
			c.logger.Warn("folder creation failed, using first available folder",
				zap.String("folder_name", name),
				zap.String("fallback_id", fallback.ID.String()),
				zap.Error(err),
			)
			return fallback.ID.String(), nil
		}
		return "", fmt.Errorf("failed to create folder %q: %w", name, err)
	}

	c.logger.Info("created receipts folder",
		zap.String("folder_name", name),
		zap.String("folder_id", created.ID.String()),
	)

	return created.ID.String(), nil
}

// UploadFile uploads one local file into the given folder and returns its
// public URL. The caller owns the file's lifecycle; UploadFile never removes it.
func (c *Client) UploadFile(ctx context.Context, folderID, path, filename string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open spooled file: %w", err)
	}
	defer file.Close()

	body, contentType, err := buildFileForm(file, filename, folderID)
	if err != nil {
		return "", err
	}

	req, err := c.newRequest(ctx, http.MethodPost, "/files/v3/files", nil, body)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", contentType)

	var uploaded struct {
		URL string `json:"url"`
	}
	if err := c.send(req, &uploaded); err != nil {
		return "", fmt.Errorf("failed to upload file %q: %w", filename, err)
	}
	if uploaded.URL == "" {
		return "", fmt.Errorf("file upload for %q returned no url", filename)
	}

	return uploaded.URL, nil
}

// buildFileForm assembles the multipart body the file-manager expects:
// the binary part, the destination folder, and the access options.
func buildFileForm(file io.Reader, filename, folderID string) (io.Reader, string, error) {
	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)

	part, err := w.CreateFormFile("file", filename)
	if err != nil {
		return nil, "", fmt.Errorf("failed to build multipart form: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return nil, "", fmt.Errorf("failed to copy file into form: %w", err)
	}

	if err := w.WriteField("folderId", folderID); err != nil {
		return nil, "", fmt.Errorf("failed to write folderId field: %w", err)
	}

	options, err := json.Marshal(uploadOptions)
	if err != nil {
		return nil, "", fmt.Errorf("failed to encode upload options: %w", err)
	}
	if err := w.WriteField("options", string(options)); err != nil {
		return nil, "", fmt.Errorf("failed to write options field: %w", err)
	}

	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("failed to finalize multipart form: %w", err)
	}

	return buf, w.FormDataContentType(), nil
}
