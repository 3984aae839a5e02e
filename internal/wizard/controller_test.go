package wizard

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/adpilot/dashboard/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
)

type fakeBackend struct {
	mu sync.Mutex

	pages        []models.Page
	templates    []models.Template
	catalogErr   error
	generateResp *models.GenerateResponse
	generateErr  error
	publishResp  *models.PublishResponse
	publishErr   error

	// when set, calls block until the channel is closed
	gate chan struct{}

	generateCalls []models.GenerateRequest
	publishCalls  []models.PublishRequest
}

func (f *fakeBackend) ListPages(ctx context.Context) ([]models.Page, error) {
	return f.pages, f.catalogErr
}

func (f *fakeBackend) ListTemplates(ctx context.Context) ([]models.Template, error) {
	return f.templates, f.catalogErr
}

func (f *fakeBackend) GenerateOptions(ctx context.Context, req models.GenerateRequest) (*models.GenerateResponse, error) {
	f.mu.Lock()
	f.generateCalls = append(f.generateCalls, req)
	gate := f.gate
	f.mu.Unlock()
	if gate != nil {
		<-gate
	}
	return f.generateResp, f.generateErr
}

func (f *fakeBackend) Publish(ctx context.Context, req models.PublishRequest) (*models.PublishResponse, error) {
	f.mu.Lock()
	f.publishCalls = append(f.publishCalls, req)
	gate := f.gate
	f.mu.Unlock()
	if gate != nil {
		<-gate
	}
	return f.publishResp, f.publishErr
}

func (f *fakeBackend) generateCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.generateCalls)
}

func threeOptions() []models.GeneratedOption {
	return []models.GeneratedOption{
		{OptionID: "opt-a", Name: "Conservative", RiskLevel: models.RiskLow, Structure: json.RawMessage(`{"campaign":{"objective":"OUTCOME_TRAFFIC"}}`)},
		{OptionID: "opt-b", Name: "Balanced", RiskLevel: models.RiskMedium, Structure: json.RawMessage(`{"campaign":{"objective":"OUTCOME_ENGAGEMENT"},"adset":{"daily_budget":2500}}`)},
		{OptionID: "opt-c", Name: "Aggressive", RiskLevel: models.RiskHigh, Structure: json.RawMessage(`{"campaign":{"objective":"OUTCOME_SALES"}}`)},
	}
}

type hookRecorder struct {
	mu      sync.Mutex
	created []*models.PublishResponse
	order   []string
}

func (h *hookRecorder) hooks() Hooks {
	return Hooks{
		OnAdCreated: func(r *models.PublishResponse) {
			h.mu.Lock()
			defer h.mu.Unlock()
			h.created = append(h.created, r)
			h.order = append(h.order, "created")
		},
		OnClose: func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			h.order = append(h.order, "close")
		},
	}
}

func newController(t *testing.T, backend *fakeBackend, rec *hookRecorder) *Controller {
	t.Helper()
	if rec == nil {
		rec = &hookRecorder{}
	}
	return New(backend, rec.hooks(), zap.NewNop())
}

func describeStep(t *testing.T, c *Controller) {
	t.Helper()
	require.NoError(t, c.ChooseNew())
	require.NoError(t, c.SetInput(models.InputProductDescription, "Bakery with artisan bread"))
	require.NoError(t, c.SetInput(models.InputPageID, "123"))
}

func TestInitialState(t *testing.T) {
	c := newController(t, &fakeBackend{}, nil)
	s := c.Snapshot()

	assert.Equal(t, models.StepChoosePath, s.CurrentStep)
	assert.Equal(t, 3, s.TotalSteps)
	assert.False(t, s.CanAdvance)
	assert.False(t, s.CanPublish)
	assert.False(t, s.IsSubmitting)
	assert.Nil(t, s.SelectedOption)
}

func TestChooseExistingDoesNotAdvance(t *testing.T) {
	c := newController(t, &fakeBackend{}, nil)

	err := c.ChooseExisting()
	require.ErrorIs(t, err, ErrExistingNotSupported)

	s := c.Snapshot()
	assert.Equal(t, models.StepChoosePath, s.CurrentStep)
	assert.NotEmpty(t, s.Notice)

	require.NoError(t, c.ChooseNew())
	assert.Equal(t, models.StepDescribe, c.Snapshot().CurrentStep)
	assert.Empty(t, c.Snapshot().Notice)
}

func TestChooseOnlyFromFirstStep(t *testing.T) {
	c := newController(t, &fakeBackend{}, nil)
	require.NoError(t, c.ChooseNew())

	assert.ErrorIs(t, c.ChooseNew(), ErrInvalidTransition)
	assert.ErrorIs(t, c.ChooseExisting(), ErrInvalidTransition)
}

func TestBackNavigation(t *testing.T) {
	backend := &fakeBackend{generateResp: &models.GenerateResponse{Success: true, AdOptions: threeOptions()}}
	c := newController(t, backend, nil)

	assert.ErrorIs(t, c.Back(), ErrInvalidTransition)

	describeStep(t, c)
	_, err := c.Generate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, models.StepReview, c.Snapshot().CurrentStep)

	require.NoError(t, c.Back())
	assert.Equal(t, models.StepDescribe, c.Snapshot().CurrentStep)
	require.NoError(t, c.Back())
	assert.Equal(t, models.StepChoosePath, c.Snapshot().CurrentStep)
	assert.Equal(t, "Bakery with artisan bread", c.Snapshot().Input[models.InputProductDescription])
}

func TestGenerateRequiresDescriptionAndPage(t *testing.T) {
	backend := &fakeBackend{generateResp: &models.GenerateResponse{Success: true, AdOptions: threeOptions()}}
	c := newController(t, backend, nil)
	require.NoError(t, c.ChooseNew())

	_, err := c.Generate(context.Background())
	require.ErrorIs(t, err, ErrStepNotReady)
	assert.Equal(t, models.StepDescribe, c.Snapshot().CurrentStep)
	assert.False(t, c.CanAdvance())

	require.NoError(t, c.SetInput(models.InputProductDescription, "Bakery with artisan bread"))
	assert.False(t, c.CanAdvance(), "page id still missing")

	require.NoError(t, c.SetInput(models.InputPageID, "123"))
	assert.True(t, c.CanAdvance())

	_, err = c.Generate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, backend.generateCount())
}

func TestGenerateOnlyFromDescribeStep(t *testing.T) {
	backend := &fakeBackend{generateResp: &models.GenerateResponse{Success: true}}
	c := newController(t, backend, nil)

	_, err := c.Generate(context.Background())
	require.ErrorIs(t, err, ErrInvalidTransition)
	assert.Equal(t, 0, backend.generateCount())
}

func TestGenerateFailureStaysOnDescribe(t *testing.T) {
	tests := []struct {
		name    string
		resp    *models.GenerateResponse
		err     error
		wantMsg string
	}{
		{"backend message", &models.GenerateResponse{Success: false, Error: "page not authorized"}, nil, "page not authorized"},
		{"no message", &models.GenerateResponse{Success: false}, nil, "failed to generate ad options"},
		{"transport", nil, errors.New(`ad backend unavailable: Post "http://backend:8000/api/ai/generate-ads": connection refused`), "failed to generate ad options"},
		{"backend rejection", nil, safeError{msg: "daily quota reached"}, "daily quota reached"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backend := &fakeBackend{generateResp: tt.resp, generateErr: tt.err}
			c := newController(t, backend, nil)
			describeStep(t, c)

			_, err := c.Generate(context.Background())

			var callErr *CallError
			require.ErrorAs(t, err, &callErr)
			assert.Equal(t, OpGenerate, callErr.Op)
			assert.Equal(t, tt.wantMsg, callErr.Message)

			s := c.Snapshot()
			assert.Equal(t, models.StepDescribe, s.CurrentStep)
			assert.False(t, s.IsSubmitting)
			assert.True(t, s.CanAdvance, "user may retry manually")
		})
	}
}

type safeError struct{ msg string }

func (e safeError) Error() string       { return "backend status 429: " + e.msg }
func (e safeError) UserMessage() string { return e.msg }

func TestPublishTransportFailureHidesDetails(t *testing.T) {
	backend := &fakeBackend{
		generateResp: &models.GenerateResponse{Success: true, AdOptions: threeOptions()},
		publishErr:   errors.New(`ad backend unavailable: Post "http://backend:8000/api/ai/publish-ad": i/o timeout`),
	}
	c := newController(t, backend, nil)
	describeStep(t, c)
	_, err := c.Generate(context.Background())
	require.NoError(t, err)
	require.NoError(t, c.Select("opt-a"))

	_, err = c.Publish(context.Background())

	var callErr *CallError
	require.ErrorAs(t, err, &callErr)
	assert.Equal(t, "failed to publish ad", callErr.Message)
	assert.NotContains(t, err.Error(), "backend:8000")
	assert.ErrorIs(t, err, backend.publishErr)
}

func TestSecondGenerateWhileInFlightIsRejected(t *testing.T) {
	defer goleak.VerifyNone(t)

	gate := make(chan struct{})
	backend := &fakeBackend{
		gate:         gate,
		generateResp: &models.GenerateResponse{Success: true, AdOptions: threeOptions()},
	}
	c := newController(t, backend, nil)
	describeStep(t, c)

	done := make(chan error, 1)
	go func() {
		_, err := c.Generate(context.Background())
		done <- err
	}()

	require.Eventually(t, func() bool { return c.Snapshot().IsSubmitting }, time.Second, 5*time.Millisecond)
	assert.False(t, c.CanAdvance())

	_, err := c.Generate(context.Background())
	assert.ErrorIs(t, err, ErrBusy)
	assert.ErrorIs(t, c.Back(), ErrBusy)

	close(gate)
	require.NoError(t, <-done)
	assert.Equal(t, 1, backend.generateCount())
	assert.Equal(t, models.StepReview, c.Snapshot().CurrentStep)
}

func TestSelectReplacesSelectionWithoutChangingStep(t *testing.T) {
	backend := &fakeBackend{generateResp: &models.GenerateResponse{Success: true, AdOptions: threeOptions()}}
	c := newController(t, backend, nil)
	describeStep(t, c)
	_, err := c.Generate(context.Background())
	require.NoError(t, err)

	assert.False(t, c.CanPublish())

	require.NoError(t, c.Select("opt-a"))
	assert.Equal(t, "opt-a", c.Snapshot().SelectedOption.OptionID)

	require.NoError(t, c.Select("opt-b"))
	s := c.Snapshot()
	assert.Equal(t, "opt-b", s.SelectedOption.OptionID)
	assert.Equal(t, models.StepReview, s.CurrentStep)
	assert.True(t, s.CanPublish)

	assert.ErrorIs(t, c.Select("missing"), ErrOptionNotFound)
	assert.Equal(t, "opt-b", c.Snapshot().SelectedOption.OptionID)
}

func TestSelectOutsideReview(t *testing.T) {
	c := newController(t, &fakeBackend{}, nil)
	assert.ErrorIs(t, c.Select("opt-a"), ErrInvalidTransition)
}

func TestPublishRequiresSelection(t *testing.T) {
	backend := &fakeBackend{
		generateResp: &models.GenerateResponse{Success: true, AdOptions: threeOptions()},
		publishResp:  &models.PublishResponse{Success: true},
	}
	c := newController(t, backend, nil)
	describeStep(t, c)
	_, err := c.Generate(context.Background())
	require.NoError(t, err)

	_, err = c.Publish(context.Background())
	require.ErrorIs(t, err, ErrStepNotReady)
	assert.Empty(t, backend.publishCalls)
}

func TestPublishFailureStaysOnReview(t *testing.T) {
	backend := &fakeBackend{
		generateResp: &models.GenerateResponse{Success: true, AdOptions: threeOptions()},
		publishResp:  &models.PublishResponse{Success: false, Error: "insufficient permissions on page"},
	}
	rec := &hookRecorder{}
	c := newController(t, backend, rec)
	describeStep(t, c)
	_, err := c.Generate(context.Background())
	require.NoError(t, err)
	require.NoError(t, c.Select("opt-c"))

	_, err = c.Publish(context.Background())

	var callErr *CallError
	require.ErrorAs(t, err, &callErr)
	assert.Equal(t, OpPublish, callErr.Op)
	assert.Equal(t, "insufficient permissions on page", callErr.Message)

	s := c.Snapshot()
	assert.Equal(t, models.StepReview, s.CurrentStep)
	assert.False(t, s.Closed)
	assert.True(t, s.CanPublish)
	assert.Empty(t, rec.order)
}

func TestEndToEndCreateAd(t *testing.T) {
	options := threeOptions()
	backend := &fakeBackend{
		pages:        []models.Page{{ID: "123", Name: "Bakery"}, {ID: "456", Name: "Other"}},
		templates:    []models.Template{{ID: "local", Name: "Local business", ExampleDescription: "Neighbourhood store"}},
		generateResp: &models.GenerateResponse{Success: true, AdOptions: options},
		publishResp:  &models.PublishResponse{Success: true, AdID: "ad-1", CampaignID: "cmp-1"},
	}
	rec := &hookRecorder{}
	c := newController(t, backend, rec)
	c.Mount(context.Background(), backend)

	require.NoError(t, c.ChooseNew())
	require.NoError(t, c.SetInput(models.InputProductDescription, "Bakery with artisan bread"))
	require.NoError(t, c.SetInput(models.InputPageID, "123"))
	require.NoError(t, c.SetInput(models.InputBudgetRange, "medium"))
	require.NoError(t, c.SetInput(models.InputTargetLocation, "Brasil"))
	require.NoError(t, c.SetInput(models.InputBusinessType, "local"))

	generated, err := c.Generate(context.Background())
	require.NoError(t, err)
	require.Len(t, generated, 3)

	require.Len(t, backend.generateCalls, 1)
	assert.Equal(t, models.GenerateRequest{
		ProductDescription: "Bakery with artisan bread",
		PageID:             "123",
		BudgetRange:        "medium",
		TargetLocation:     "Brasil",
		BusinessType:       "local",
	}, backend.generateCalls[0])

	s := c.Snapshot()
	assert.Equal(t, models.StepReview, s.CurrentStep)
	assert.Len(t, s.GeneratedOptions, 3)

	require.NoError(t, c.Select(s.GeneratedOptions[1].OptionID))
	result, err := c.Publish(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "ad-1", result.AdID)

	require.Len(t, backend.publishCalls, 1)
	assert.Equal(t, options[1], backend.publishCalls[0].SelectedOption)
	assert.JSONEq(t, string(options[1].Structure), string(backend.publishCalls[0].SelectedOption.Structure))
	assert.Equal(t, "123", backend.publishCalls[0].PageID)

	assert.Equal(t, []string{"created", "close"}, rec.order)
	assert.Same(t, result, rec.created[0])
	assert.True(t, c.Snapshot().Closed)

	_, err = c.Publish(context.Background())
	assert.ErrorIs(t, err, ErrClosed)
	assert.Len(t, backend.publishCalls, 1)
}

func TestMountDefaultsFirstPage(t *testing.T) {
	backend := &fakeBackend{pages: []models.Page{{ID: "p1", Name: "First"}, {ID: "p2", Name: "Second"}}}
	c := newController(t, backend, nil)

	c.Mount(context.Background(), backend)

	s := c.Snapshot()
	assert.Equal(t, "p1", s.Input[models.InputPageID])
	assert.Len(t, s.Pages, 2)
}

func TestMountToleratesCatalogFailure(t *testing.T) {
	backend := &fakeBackend{catalogErr: errors.New("boom")}
	c := newController(t, backend, nil)

	c.Mount(context.Background(), backend)

	s := c.Snapshot()
	assert.Empty(t, s.Pages)
	assert.Empty(t, s.Templates)
	assert.Equal(t, models.StepChoosePath, s.CurrentStep)
}

func TestApplyTemplateOverwritesFields(t *testing.T) {
	c := newController(t, &fakeBackend{}, nil)
	c.LoadCatalog(nil, []models.Template{{ID: "restaurant", Name: "Restaurant", ExampleDescription: "Italian restaurant downtown"}})
	require.NoError(t, c.ChooseNew())
	require.NoError(t, c.SetInput(models.InputProductDescription, "old text"))

	require.NoError(t, c.ApplyTemplate("restaurant"))

	s := c.Snapshot()
	assert.Equal(t, "Italian restaurant downtown", s.Input[models.InputProductDescription])
	assert.Equal(t, "restaurant", s.Input[models.InputBusinessType])
	assert.ErrorIs(t, c.ApplyTemplate("nope"), ErrTemplateNotFound)
}

func TestSetInputRejectsUnknownField(t *testing.T) {
	c := newController(t, &fakeBackend{}, nil)
	assert.ErrorIs(t, c.SetInput("campaign.name", "x"), ErrUnknownField)
}

func TestSetInputsIsAllOrNothing(t *testing.T) {
	c := newController(t, &fakeBackend{}, nil)

	err := c.SetInputs(map[string]string{
		models.InputBudgetRange:        "10-20",
		models.InputProductDescription: "Sourdough",
		"zzz":                          "unknown",
	})
	require.ErrorIs(t, err, ErrUnknownField)
	assert.Empty(t, c.Snapshot().Input)

	require.NoError(t, c.SetInputs(map[string]string{
		models.InputBudgetRange:        "10-20",
		models.InputProductDescription: "Sourdough",
	}))
	s := c.Snapshot()
	assert.Equal(t, "10-20", s.Input[models.InputBudgetRange])
	assert.Equal(t, "Sourdough", s.Input[models.InputProductDescription])
}

func TestCustomizationsSentOnPublish(t *testing.T) {
	backend := &fakeBackend{
		generateResp: &models.GenerateResponse{Success: true, AdOptions: threeOptions()},
		publishResp:  &models.PublishResponse{Success: true},
	}
	c := newController(t, backend, nil)
	describeStep(t, c)

	assert.ErrorIs(t, c.SetCustomization("creative.headline", "x"), ErrInvalidTransition)

	_, err := c.Generate(context.Background())
	require.NoError(t, err)
	require.NoError(t, c.SetCustomization("creative.headline", "Fresh every day"))
	require.NoError(t, c.Select("opt-a"))

	_, err = c.Publish(context.Background())
	require.NoError(t, err)

	creative := backend.publishCalls[0].Customizations["creative"].(map[string]any)
	assert.Equal(t, "Fresh every day", creative["headline"])
}

func TestCancelDiscardsLateResponse(t *testing.T) {
	defer goleak.VerifyNone(t)

	gate := make(chan struct{})
	backend := &fakeBackend{
		gate:         gate,
		generateResp: &models.GenerateResponse{Success: true, AdOptions: threeOptions()},
	}
	rec := &hookRecorder{}
	c := newController(t, backend, rec)
	describeStep(t, c)

	done := make(chan error, 1)
	go func() {
		_, err := c.Generate(context.Background())
		done <- err
	}()
	require.Eventually(t, func() bool { return c.Snapshot().IsSubmitting }, time.Second, 5*time.Millisecond)

	c.Cancel()
	c.Cancel()
	close(gate)

	assert.ErrorIs(t, <-done, ErrClosed)
	s := c.Snapshot()
	assert.Equal(t, models.StepDescribe, s.CurrentStep)
	assert.Empty(t, s.GeneratedOptions)
	assert.Equal(t, []string{"close"}, rec.order)
}

func TestIndependentWizardsAreIsolated(t *testing.T) {
	backend := &fakeBackend{}
	a := newController(t, backend, nil)
	b := newController(t, backend, nil)

	require.NoError(t, a.ChooseNew())
	require.NoError(t, a.SetInput(models.InputProductDescription, "only in a"))

	assert.Equal(t, models.StepChoosePath, b.Snapshot().CurrentStep)
	assert.Nil(t, b.Snapshot().Input[models.InputProductDescription])
}
