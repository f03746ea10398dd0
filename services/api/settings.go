package api

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"

	"salonai/models"
)

func (c *DefaultClient) Settings(ctx context.Context) (*models.Settings, error) {
	var out models.Settings
	if err := c.getJSON(ctx, "/settings/", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SaveSettings posts the branding form as multipart so a logo can ride along.
func (c *DefaultClient) SaveSettings(ctx context.Context, form SettingsForm) error {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if err := mw.WriteField("primary_color", form.PrimaryColor); err != nil {
		return fmt.Errorf("build settings form: %w", err)
	}
	if err := mw.WriteField("secondary_color", form.SecondaryColor); err != nil {
		return fmt.Errorf("build settings form: %w", err)
	}
	if form.Logo != nil {
		name := form.LogoName
		if name == "" {
			name = "logo.png"
		}
		part, err := mw.CreateFormFile("logo_file", name)
		if err != nil {
			return fmt.Errorf("build settings form: %w", err)
		}
		if _, err := io.Copy(part, form.Logo); err != nil {
			return fmt.Errorf("read logo: %w", err)
		}
	}
	if err := mw.Close(); err != nil {
		return fmt.Errorf("build settings form: %w", err)
	}
	return c.do(ctx, request{
		method:      http.MethodPost,
		path:        "/settings/complete",
		body:        &buf,
		contentType: mw.FormDataContentType(),
	}, nil)
}

func (c *DefaultClient) Translations(ctx context.Context, language string) (map[string]string, error) {
	q := url.Values{}
	q.Set("language", language)
	var out models.TranslationsResponse
	if err := c.getJSON(ctx, "/appointments/translations", q, &out); err != nil {
		return nil, err
	}
	if out.Translations == nil {
		out.Translations = map[string]string{}
	}
	return out.Translations, nil
}
