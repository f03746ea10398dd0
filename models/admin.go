package models

// ColorPalette is the salon's brand palette.
type ColorPalette struct {
	Primary    string `json:"primary"`
	Secondary  string `json:"secondary"`
	Accent     string `json:"accent"`
	Background string `json:"background"`
	Text       string `json:"text"`
}

// Settings is the admin-managed branding returned by GET /settings/.
type Settings struct {
	SalonName string       `json:"salon_name"`
	LogoURL   string       `json:"logo_url"`
	Colors    ColorPalette `json:"colors"`
	UpdatedAt string       `json:"updated_at,omitempty"`
	UpdatedBy string       `json:"updated_by,omitempty"`
}

// DefaultSettings is used whenever the backend cannot be reached.
func DefaultSettings() Settings {
	return Settings{
		SalonName: "Salão IA",
		LogoURL:   "/static/images/default_logo.png",
		Colors: ColorPalette{
			Primary:    "#6366f1",
			Secondary:  "#8b5cf6",
			Accent:     "#ec4899",
			Background: "#ffffff",
			Text:       "#1f2937",
		},
	}
}

// WithDefaults fills empty fields from DefaultSettings.
func (s Settings) WithDefaults() Settings {
	d := DefaultSettings()
	if s.SalonName == "" {
		s.SalonName = d.SalonName
	}
	if s.LogoURL == "" {
		s.LogoURL = d.LogoURL
	}
	fill := func(v *string, def string) {
		if *v == "" {
			*v = def
		}
	}
	fill(&s.Colors.Primary, d.Colors.Primary)
	fill(&s.Colors.Secondary, d.Colors.Secondary)
	fill(&s.Colors.Accent, d.Colors.Accent)
	fill(&s.Colors.Background, d.Colors.Background)
	fill(&s.Colors.Text, d.Colors.Text)
	return s
}
