package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"

	"salonai/models"
)

func jsonBody(v any) (io.Reader, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode body: %w", err)
	}
	return bytes.NewReader(raw), nil
}

// UploadPhoto posts the image as multipart field "file".
func (c *DefaultClient) UploadPhoto(ctx context.Context, filename, contentType string, r io.Reader) (*models.UploadResult, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, filename))
	h.Set("Content-Type", contentType)
	part, err := mw.CreatePart(h)
	if err != nil {
		return nil, fmt.Errorf("build upload form: %w", err)
	}
	if _, err := io.Copy(part, r); err != nil {
		return nil, fmt.Errorf("read photo: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("build upload form: %w", err)
	}

	var out models.UploadResult
	err = c.do(ctx, request{
		method:      http.MethodPost,
		path:        "/upload-photo",
		body:        &buf,
		contentType: mw.FormDataContentType(),
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *DefaultClient) AnalyzePhoto(ctx context.Context) (*models.AISuggestions, error) {
	var out models.AISuggestions
	if err := c.sendJSON(ctx, http.MethodPost, "/ai/analyze", nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *DefaultClient) StylePreview(ctx context.Context, style string) (*models.StylePreview, error) {
	q := url.Values{}
	q.Set("style", style)
	var out models.StylePreview
	if err := c.do(ctx, request{method: http.MethodPost, path: "/ai/suggestions", query: q}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
