package services

import (
	"context"
	"time"

	"github.com/adpilot/dashboard/internal/events"
	"github.com/adpilot/dashboard/internal/models"
	"github.com/adpilot/dashboard/internal/wizard"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// WizardBackend is the part of the ad backend the creation wizard needs.
type WizardBackend interface {
	wizard.Catalog
	wizard.Generator
}

// AuditLogger records user-visible outcomes.
type AuditLogger interface {
	Log(ctx context.Context, entry models.AuditLog) error
}

type WizardSession struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	CreatedAt time.Time
	*wizard.Controller
}

type WizardService struct {
	backend   WizardBackend
	publisher events.Publisher
	audit     AuditLogger
	idleTTL   time.Duration
	log       *zap.Logger
	sessions  *sessionRegistry[*WizardSession]
}

func NewWizardService(
	backend WizardBackend,
	publisher events.Publisher,
	audit AuditLogger,
	idleTTL time.Duration,
	log *zap.Logger,
) *WizardService {
	return &WizardService{
		backend:   backend,
		publisher: publisher,
		audit:     audit,
		idleTTL:   idleTTL,
		log:       log,
		sessions:  newSessionRegistry[*WizardSession](nil),
	}
}

// Start mounts a new wizard for the user and loads its catalog.
func (s *WizardService) Start(ctx context.Context, userID uuid.UUID) *WizardSession {
	id := uuid.New()
	log := s.log.With(zap.String("wizard_id", id.String()), zap.String("user_id", userID.String()))

	hooks := wizard.Hooks{
		OnAdCreated: func(result *models.PublishResponse) {
			s.adCreated(userID, id, result)
		},
		OnClose: func() {
			s.sessions.remove(id)
			log.Info("wizard closed")
		},
	}

	session := &WizardSession{
		ID:         id,
		UserID:     userID,
		CreatedAt:  time.Now(),
		Controller: wizard.New(s.backend, hooks, log),
	}
	s.sessions.put(id, userID, session)
	session.Mount(ctx, s.backend)

	log.Info("wizard started")
	return session
}

func (s *WizardService) Get(userID, id uuid.UUID) (*WizardSession, error) {
	return s.sessions.get(id, userID)
}

// Cancel closes the wizard; its state is discarded.
func (s *WizardService) Cancel(userID, id uuid.UUID) error {
	session, err := s.sessions.get(id, userID)
	if err != nil {
		return err
	}
	session.Cancel()
	return nil
}

func (s *WizardService) adCreated(userID, wizardID uuid.UUID, result *models.PublishResponse) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	meta := map[string]any{
		"wizard_id":   wizardID.String(),
		"campaign_id": result.CampaignID,
		"adset_id":    result.AdSetID,
		"ad_id":       result.AdID,
	}

	if err := s.audit.Log(ctx, models.AuditLog{
		ActorUserID: &userID,
		ActorType:   "user",
		Action:      models.AuditAdPublished,
		EntityType:  "ad",
		EntityID:    result.AdID,
		Meta:        meta,
	}); err != nil {
		s.log.Error("failed to write audit log", zap.Error(err))
	}

	if err := s.publisher.Publish(ctx, events.StreamAds, events.Event{
		Type:    events.EventAdCreated,
		UserID:  userID.String(),
		Payload: meta,
	}); err != nil {
		s.log.Error("failed to publish ad_created event", zap.Error(err))
	}
}

// Sweep discards wizards idle for longer than the configured TTL.
func (s *WizardService) Sweep() int {
	expired := s.sessions.expire(s.idleTTL)
	for _, session := range expired {
		session.Cancel()
		s.wizardExpired(session)
	}
	if len(expired) > 0 {
		s.log.Info("expired idle wizards", zap.Int("count", len(expired)))
	}
	return len(expired)
}

func (s *WizardService) wizardExpired(session *WizardSession) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.audit.Log(ctx, models.AuditLog{
		ActorUserID: &session.UserID,
		ActorType:   "system",
		Action:      models.AuditWizardExpired,
		EntityType:  "wizard",
		EntityID:    session.ID.String(),
		Meta:        map[string]any{"step": session.Snapshot().StepName},
	}); err != nil {
		s.log.Error("failed to write audit log", zap.Error(err))
	}
}
