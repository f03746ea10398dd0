package models

// AISuggestions is the analysis of the client's uploaded photo.
type AISuggestions struct {
	Cuts       []string `json:"cortes_sugeridos"`
	Colors     []string `json:"cores_sugeridas"`
	Styles     []string `json:"estilos_recomendados"`
	NailColors []string `json:"cores_esmalte"`
}

// Empty reports whether the analysis produced nothing to show.
func (s AISuggestions) Empty() bool {
	return len(s.Cuts)+len(s.Colors)+len(s.Styles)+len(s.NailColors) == 0
}

// StylePreview is the generated image for a chosen suggestion.
type StylePreview struct {
	PhotoURL string `json:"photo_ia_url"`
}

// UploadResult is returned by POST /upload-photo.
type UploadResult struct {
	Message  string `json:"message,omitempty"`
	PhotoURL string `json:"photo_url,omitempty"`
}

// TranslationsResponse is returned by GET /appointments/translations.
type TranslationsResponse struct {
	Language     string            `json:"language,omitempty"`
	Translations map[string]string `json:"translations"`
}
