package services

import (
	"context"
	"sync"

	"github.com/adpilot/dashboard/internal/events"
	"github.com/adpilot/dashboard/internal/models"
)

type fakePublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *fakePublisher) Publish(ctx context.Context, stream string, event events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

type fakeAudit struct {
	mu      sync.Mutex
	entries []models.AuditLog
}

func (a *fakeAudit) Log(ctx context.Context, entry models.AuditLog) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.entries = append(a.entries, entry)
	return nil
}

type fakeWizardBackend struct {
	pages     []models.Page
	templates []models.Template
	options   []models.GeneratedOption
	publish   *models.PublishResponse
}

func (b *fakeWizardBackend) ListPages(ctx context.Context) ([]models.Page, error) {
	return b.pages, nil
}

func (b *fakeWizardBackend) ListTemplates(ctx context.Context) ([]models.Template, error) {
	return b.templates, nil
}

func (b *fakeWizardBackend) GenerateOptions(ctx context.Context, req models.GenerateRequest) (*models.GenerateResponse, error) {
	return &models.GenerateResponse{Success: true, AdOptions: b.options}, nil
}

func (b *fakeWizardBackend) Publish(ctx context.Context, req models.PublishRequest) (*models.PublishResponse, error) {
	return b.publish, nil
}

type fakeAdStore struct {
	configs map[string]map[string]any
	saved   map[string]models.AdConfig
}

func (s *fakeAdStore) GetAdConfig(ctx context.Context, adID string) (map[string]any, error) {
	c, ok := s.configs[adID]
	if !ok {
		return nil, &BackendError{Status: 404, Message: "ad not found"}
	}
	return c, nil
}

func (s *fakeAdStore) UpdateAdConfig(ctx context.Context, adID string, config models.AdConfig) error {
	if s.saved == nil {
		s.saved = map[string]models.AdConfig{}
	}
	s.saved[adID] = config
	return nil
}
