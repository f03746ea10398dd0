// Package photo uploads the client's photo and fetches AI styling
// suggestions for it.
package photo

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"salonai/models"
	"salonai/services/api"
	"salonai/services/navigator"
	"salonai/services/notify"
	"salonai/utils"

	"go.uber.org/zap"
)

// MaxSize is the largest accepted upload.
const MaxSize = 5 << 20

var allowedTypes = map[string]bool{
	"image/png":  true,
	"image/jpeg": true,
	"image/jpg":  true,
}

var (
	ErrTooLarge    = fmt.Errorf("%w: file too large, the maximum is 5MB", utils.ErrValidation)
	ErrBadFormat   = fmt.Errorf("%w: invalid format, use PNG, JPG or JPEG", utils.ErrValidation)
	ErrNotLoggedIn = errors.New("you need to be logged in")
)

// Users yields the logged-in user.
type Users interface {
	User() (models.User, bool)
}

// Screens is the part of the navigator the service switches.
type Screens interface {
	Show(screen navigator.Screen)
}

// Service handles upload and analysis.
type Service struct {
	client   api.Client
	users    Users
	screens  Screens
	notifier notify.Notifier
	logger   *zap.Logger

	mu          sync.Mutex
	uploaded    *models.UploadResult
	suggestions *models.AISuggestions
}

func NewService(client api.Client, users Users, screens Screens, notifier notify.Notifier, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if notifier == nil {
		notifier = &notify.Recorder{}
	}
	return &Service{client: client, users: users, screens: screens, notifier: notifier, logger: logger}
}

func (s *Service) show(screen navigator.Screen) {
	if s.screens != nil {
		s.screens.Show(screen)
	}
}

func (s *Service) requireUser() error {
	if _, ok := s.users.User(); !ok {
		s.notifier.Show(notify.Error, "You need to be logged in!")
		s.show(navigator.Auth)
		return ErrNotLoggedIn
	}
	return nil
}

// Upload checks size and type, then posts the photo.
func (s *Service) Upload(ctx context.Context, name, contentType string, r io.Reader, size int64) (*models.UploadResult, error) {
	if err := s.requireUser(); err != nil {
		return nil, err
	}
	if size > MaxSize {
		s.notifier.Show(notify.Error, utils.Reason(ErrTooLarge))
		return nil, ErrTooLarge
	}
	contentType = strings.ToLower(strings.TrimSpace(strings.SplitN(contentType, ";", 2)[0]))
	if !allowedTypes[contentType] {
		s.notifier.Show(notify.Error, utils.Reason(ErrBadFormat))
		return nil, ErrBadFormat
	}

	s.notifier.Show(notify.Info, "Uploading photo...")
	res, err := s.client.UploadPhoto(ctx, name, contentType, &sizeLimitedReader{r: r})
	if errors.Is(err, ErrTooLarge) {
		s.logger.Warn("Photo exceeds the size limit", zap.String("name", name), zap.Int64("declared", size))
		s.notifier.Show(notify.Error, utils.Reason(ErrTooLarge))
		return nil, ErrTooLarge
	}
	if err != nil {
		s.logger.Warn("Failed to upload photo", zap.String("name", name), zap.Error(err))
		s.notifier.Show(notify.Error, api.Message(err, "Could not upload the photo. Check the connection."))
		return nil, err
	}
	s.mu.Lock()
	s.uploaded = res
	s.mu.Unlock()
	s.notifier.Show(notify.Success, "Photo uploaded!")
	return res, nil
}

// sizeLimitedReader fails with ErrTooLarge once more than MaxSize bytes
// have been read, whatever size the caller declared.
type sizeLimitedReader struct {
	r io.Reader
	n int64
}

func (l *sizeLimitedReader) Read(p []byte) (int, error) {
	n, err := l.r.Read(p)
	l.n += int64(n)
	if l.n > MaxSize {
		return n, ErrTooLarge
	}
	return n, err
}

// Uploaded returns the last upload result.
func (s *Service) Uploaded() *models.UploadResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.uploaded
}

// Analyze asks for suggestions for the uploaded photo. The suggestions
// screen is shown while it runs; on failure the user goes back to upload.
func (s *Service) Analyze(ctx context.Context) (*models.AISuggestions, error) {
	if err := s.requireUser(); err != nil {
		return nil, err
	}
	s.show(navigator.Suggestions)
	s.notifier.Show(notify.Info, "Analysing your photo...")

	sug, err := s.client.AnalyzePhoto(ctx)
	if err != nil {
		s.logger.Warn("Photo analysis failed", zap.Error(err))
		s.notifier.Show(notify.Error, api.Message(err, "Could not analyse the photo. Upload a photo first."))
		s.show(navigator.Upload)
		return nil, err
	}
	s.mu.Lock()
	s.suggestions = sug
	s.mu.Unlock()
	s.notifier.Show(notify.Success, "Analysis complete!")
	return sug, nil
}

// Suggestions returns the last analysis.
func (s *Service) Suggestions() *models.AISuggestions {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.suggestions
}

// Preview requests a generated image of the chosen style.
func (s *Service) Preview(ctx context.Context, style string) (*models.StylePreview, error) {
	if err := s.requireUser(); err != nil {
		return nil, err
	}
	if err := utils.ValidateVar("style", strings.TrimSpace(style), "required"); err != nil {
		s.notifier.Show(notify.Error, utils.Reason(err))
		return nil, err
	}
	prev, err := s.client.StylePreview(ctx, strings.TrimSpace(style))
	if err != nil {
		s.notifier.Show(notify.Error, api.Message(err, "Could not generate the preview."))
		return nil, err
	}
	return prev, nil
}
