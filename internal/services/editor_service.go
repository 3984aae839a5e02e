package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/adpilot/dashboard/internal/events"
	"github.com/adpilot/dashboard/internal/formstate"
	"github.com/adpilot/dashboard/internal/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Path of the stored daily budget inside an ad configuration tree.
const DailyBudgetPath = "adSet.dailyBudgetMinorUnits"

var ErrInvalidConfig = errors.New("invalid ad configuration")

// AdStore loads and saves ad configurations on the ad backend.
type AdStore interface {
	GetAdConfig(ctx context.Context, adID string) (map[string]any, error)
	UpdateAdConfig(ctx context.Context, adID string, config models.AdConfig) error
}

// EditSession edits one existing ad through path-addressed writes.
type EditSession struct {
	ID     uuid.UUID
	UserID uuid.UUID
	AdID   string

	mu   sync.Mutex
	tree *formstate.Tree
}

// Tree returns the current snapshot.
func (e *EditSession) Tree() *formstate.Tree {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.tree
}

func (e *EditSession) set(path string, value any) *formstate.Tree {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.tree = e.tree.Set(path, value)
	return e.tree
}

// EditView is what the dashboard renders for an edit session.
type EditView struct {
	ID                 uuid.UUID      `json:"id"`
	AdID               string         `json:"ad_id"`
	Config             map[string]any `json:"config"`
	DailyBudgetDisplay string         `json:"daily_budget_display"`
}

type EditorService struct {
	store     AdStore
	publisher events.Publisher
	audit     AuditLogger
	idleTTL   time.Duration
	log       *zap.Logger
	sessions  *sessionRegistry[*EditSession]
}

func NewEditorService(
	store AdStore,
	publisher events.Publisher,
	audit AuditLogger,
	idleTTL time.Duration,
	log *zap.Logger,
) *EditorService {
	return &EditorService{
		store:     store,
		publisher: publisher,
		audit:     audit,
		idleTTL:   idleTTL,
		log:       log,
		sessions:  newSessionRegistry[*EditSession](nil),
	}
}

// Open seeds a new edit session with the ad's stored configuration.
func (s *EditorService) Open(ctx context.Context, userID uuid.UUID, adID string) (*EditSession, error) {
	config, err := s.store.GetAdConfig(ctx, adID)
	if err != nil {
		return nil, err
	}

	session := &EditSession{
		ID:     uuid.New(),
		UserID: userID,
		AdID:   adID,
		tree:   formstate.New().Replace(config),
	}
	s.sessions.put(session.ID, userID, session)

	s.log.Info("ad edit opened", zap.String("edit_id", session.ID.String()), zap.String("ad_id", adID))
	return session, nil
}

func (s *EditorService) Get(userID, id uuid.UUID) (*EditSession, error) {
	return s.sessions.get(id, userID)
}

func (s *EditorService) View(userID, id uuid.UUID) (*EditView, error) {
	session, err := s.sessions.get(id, userID)
	if err != nil {
		return nil, err
	}
	return newEditView(session, session.Tree()), nil
}

// Field reads a single value; ok is false when the path was never written.
func (s *EditorService) Field(userID, id uuid.UUID, path string) (any, bool, error) {
	session, err := s.sessions.get(id, userID)
	if err != nil {
		return nil, false, err
	}
	v, ok := session.Tree().Lookup(path)
	return v, ok, nil
}

func (s *EditorService) SetField(userID, id uuid.UUID, path string, value any) (*EditView, error) {
	session, err := s.sessions.get(id, userID)
	if err != nil {
		return nil, err
	}
	return newEditView(session, session.set(path, value)), nil
}

// SetDailyBudget stores a display amount such as "12.34" as minor units.
func (s *EditorService) SetDailyBudget(userID, id uuid.UUID, display string) (*EditView, error) {
	session, err := s.sessions.get(id, userID)
	if err != nil {
		return nil, err
	}
	minor, err := formstate.MajorToMinor(display)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return newEditView(session, session.set(DailyBudgetPath, minor)), nil
}

// Save validates the edited tree and writes it to the ad backend. The session
// stays open so the user can keep editing.
func (s *EditorService) Save(ctx context.Context, userID, id uuid.UUID) (*models.AdConfig, error) {
	session, err := s.sessions.get(id, userID)
	if err != nil {
		return nil, err
	}

	var config models.AdConfig
	if err := session.Tree().Decode(&config); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	if err := s.store.UpdateAdConfig(ctx, session.AdID, config); err != nil {
		return nil, err
	}

	meta := map[string]any{"edit_id": id.String(), "ad_id": session.AdID}
	if err := s.audit.Log(ctx, models.AuditLog{
		ActorUserID: &userID,
		ActorType:   "user",
		Action:      models.AuditAdUpdated,
		EntityType:  "ad",
		EntityID:    session.AdID,
		Meta:        meta,
	}); err != nil {
		s.log.Error("failed to write audit log", zap.Error(err))
	}
	if err := s.publisher.Publish(ctx, events.StreamAds, events.Event{
		Type:    events.EventAdUpdated,
		UserID:  userID.String(),
		Payload: meta,
	}); err != nil {
		s.log.Error("failed to publish ad_updated event", zap.Error(err))
	}

	s.log.Info("ad config saved", zap.String("ad_id", session.AdID))
	return &config, nil
}

func (s *EditorService) Close(userID, id uuid.UUID) error {
	if _, err := s.sessions.get(id, userID); err != nil {
		return err
	}
	s.sessions.remove(id)
	return nil
}

// Sweep discards edit sessions idle for longer than the configured TTL.
func (s *EditorService) Sweep() int {
	expired := s.sessions.expire(s.idleTTL)
	if len(expired) > 0 {
		s.log.Info("expired idle ad edits", zap.Int("count", len(expired)))
	}
	return len(expired)
}

func newEditView(session *EditSession, tree *formstate.Tree) *EditView {
	view := &EditView{
		ID:     session.ID,
		AdID:   session.AdID,
		Config: tree.Root(),
	}
	if minor, ok := formstate.Int(tree.Get(DailyBudgetPath)); ok {
		view.DailyBudgetDisplay = formstate.MinorToMajor(minor)
	}
	return view
}
