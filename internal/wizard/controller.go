// Package wizard drives the guided ad creation flow: choose a path, describe
// the product, then review generated options and publish one of them.
package wizard

import (
	"context"
	"fmt"
	"sync"

	"github.com/adpilot/dashboard/internal/formstate"
	"github.com/adpilot/dashboard/internal/models"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Catalog lists the pages and quick-fill templates offered on the describe step.
type Catalog interface {
	ListPages(ctx context.Context) ([]models.Page, error)
	ListTemplates(ctx context.Context) ([]models.Template, error)
}

// Generator produces ad options and publishes the chosen one.
type Generator interface {
	GenerateOptions(ctx context.Context, req models.GenerateRequest) (*models.GenerateResponse, error)
	Publish(ctx context.Context, req models.PublishRequest) (*models.PublishResponse, error)
}

// Hooks are supplied by the embedding application. Both run outside the
// controller lock, OnAdCreated first.
type Hooks struct {
	OnAdCreated func(result *models.PublishResponse)
	OnClose     func()
}

// State is a read-only view of the wizard.
type State struct {
	CurrentStep      models.WizardStep        `json:"current_step"`
	StepName         string                   `json:"step_name"`
	TotalSteps       int                      `json:"total_steps"`
	Input            map[string]any           `json:"input"`
	Customizations   map[string]any           `json:"customizations"`
	Pages            []models.Page            `json:"pages"`
	Templates        []models.Template        `json:"templates"`
	GeneratedOptions []models.GeneratedOption `json:"generated_options"`
	SelectedOption   *models.GeneratedOption  `json:"selected_option,omitempty"`
	IsSubmitting     bool                     `json:"is_submitting"`
	CanAdvance       bool                     `json:"can_advance"`
	CanPublish       bool                     `json:"can_publish"`
	Notice           string                   `json:"notice,omitempty"`
	Closed           bool                     `json:"closed"`
}

// Controller owns one wizard instance. Instances share nothing.
type Controller struct {
	gen   Generator
	hooks Hooks
	log   *zap.Logger

	mu             sync.Mutex
	step           models.WizardStep
	input          *formstate.Tree
	customizations *formstate.Tree
	pages          []models.Page
	templates      []models.Template
	options        []models.GeneratedOption
	selected       *models.GeneratedOption
	submitting     bool
	closed         bool
	notice         string
}

func New(gen Generator, hooks Hooks, log *zap.Logger) *Controller {
	return &Controller{
		gen:            gen,
		hooks:          hooks,
		log:            log,
		step:           models.StepChoosePath,
		input:          formstate.New(),
		customizations: formstate.New(),
	}
}

// Mount loads pages and templates concurrently. Failures leave the lists
// empty and are only logged.
func (c *Controller) Mount(ctx context.Context, catalog Catalog) {
	var (
		g         errgroup.Group
		pages     []models.Page
		templates []models.Template
	)

	g.Go(func() error {
		p, err := catalog.ListPages(ctx)
		if err != nil {
			c.log.Warn("failed to load pages", zap.Error(err))
			return nil
		}
		pages = p
		return nil
	})
	g.Go(func() error {
		t, err := catalog.ListTemplates(ctx)
		if err != nil {
			c.log.Warn("failed to load templates", zap.Error(err))
			return nil
		}
		templates = t
		return nil
	})
	_ = g.Wait()

	c.LoadCatalog(pages, templates)
}

// LoadCatalog stores the catalog; the first page becomes the default page.
func (c *Controller) LoadCatalog(pages []models.Page, templates []models.Template) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.pages = pages
	c.templates = templates
	if c.input.GetString(models.InputPageID) == "" && len(pages) > 0 {
		c.input = c.input.Set(models.InputPageID, pages[0].ID)
	}
}

// ChooseNew starts a new ad: choose path -> describe.
func (c *Controller) ChooseNew() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrClosed
	}
	if c.step != models.StepChoosePath {
		return ErrInvalidTransition
	}
	c.notice = ""
	return c.moveTo(models.StepDescribe)
}

// ChooseExisting never advances.
func (c *Controller) ChooseExisting() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrClosed
	}
	if c.step != models.StepChoosePath {
		return ErrInvalidTransition
	}
	c.notice = ErrExistingNotSupported.Error()
	return ErrExistingNotSupported
}

// Back returns to the previous step. Not allowed while a call is in flight.
func (c *Controller) Back() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrClosed
	}
	if c.submitting {
		return ErrBusy
	}
	return c.moveTo(c.step.Prev())
}

// SetInput writes one of the describe-step fields.
func (c *Controller) SetInput(field, value string) error {
	if !isWizardInput(field) {
		return ErrUnknownField
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrClosed
	}
	c.input = c.input.Set(field, value)
	return nil
}

// SetInputs writes several describe-step fields at once. Nothing is written
// when any field is unknown.
func (c *Controller) SetInputs(values map[string]string) error {
	for field := range values {
		if !isWizardInput(field) {
			return fmt.Errorf("%w: %s", ErrUnknownField, field)
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrClosed
	}
	input := c.input
	for field, value := range values {
		input = input.Set(field, value)
	}
	c.input = input
	return nil
}

// ApplyTemplate overwrites businessType and productDescription from a template.
func (c *Controller) ApplyTemplate(templateID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrClosed
	}
	for _, t := range c.templates {
		if t.ID == templateID {
			c.input = c.input.
				Set(models.InputBusinessType, t.ID).
				Set(models.InputProductDescription, t.ExampleDescription)
			return nil
		}
	}
	return ErrTemplateNotFound
}

// CanAdvance reports whether the describe step may submit.
func (c *Controller) CanAdvance() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.canAdvance()
}

func (c *Controller) canAdvance() bool {
	return !c.closed &&
		c.step == models.StepDescribe &&
		!c.submitting &&
		c.input.GetString(models.InputProductDescription) != "" &&
		c.input.GetString(models.InputPageID) != ""
}

// Generate requests ad options for the current input and moves to review on
// success. On failure the wizard stays on the describe step.
func (c *Controller) Generate(ctx context.Context) ([]models.GeneratedOption, error) {
	c.mu.Lock()
	if err := c.guardGenerate(); err != nil {
		c.mu.Unlock()
		return nil, err
	}
	req := models.GenerateRequest{
		ProductDescription: c.input.GetString(models.InputProductDescription),
		PageID:             c.input.GetString(models.InputPageID),
		BudgetRange:        c.input.GetString(models.InputBudgetRange),
		TargetLocation:     c.input.GetString(models.InputTargetLocation),
		BusinessType:       c.input.GetString(models.InputBusinessType),
	}
	c.submitting = true
	c.mu.Unlock()

	resp, err := c.gen.GenerateOptions(ctx, req)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.submitting = false

	if c.closed {
		return nil, ErrClosed
	}
	if err != nil {
		c.log.Warn("generate ad options failed", zap.Error(err))
		return nil, newCallError(OpGenerate, userMessage(err), err)
	}
	if resp == nil || !resp.Success {
		msg := ""
		if resp != nil {
			msg = resp.Error
		}
		c.log.Warn("generate ad options rejected", zap.String("error", msg))
		return nil, newCallError(OpGenerate, msg, nil)
	}

	c.options = resp.AdOptions
	c.selected = nil
	c.customizations = formstate.New()
	if err := c.moveTo(models.StepReview); err != nil {
		return nil, err
	}

	c.log.Info("ad options generated", zap.Int("count", len(c.options)))
	return append([]models.GeneratedOption(nil), c.options...), nil
}

func (c *Controller) guardGenerate() error {
	if c.closed {
		return ErrClosed
	}
	if c.step != models.StepDescribe {
		return ErrInvalidTransition
	}
	if c.submitting {
		return ErrBusy
	}
	if !c.canAdvance() {
		return ErrStepNotReady
	}
	return nil
}

// Select marks one generated option. The step does not change.
func (c *Controller) Select(optionID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrClosed
	}
	if c.step != models.StepReview {
		return ErrInvalidTransition
	}
	if c.submitting {
		return ErrBusy
	}
	for i := range c.options {
		if c.options[i].OptionID == optionID {
			opt := c.options[i]
			c.selected = &opt
			return nil
		}
	}
	return ErrOptionNotFound
}

// SetCustomization records a publish-time override at a dot path.
func (c *Controller) SetCustomization(path string, value any) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrClosed
	}
	if c.step != models.StepReview {
		return ErrInvalidTransition
	}
	c.customizations = c.customizations.Set(path, value)
	return nil
}

// CanPublish reports whether an option is selected and nothing is in flight.
func (c *Controller) CanPublish() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.canPublish()
}

func (c *Controller) canPublish() bool {
	return !c.closed && c.step == models.StepReview && c.selected != nil && !c.submitting
}

// Publish sends the selected option back to the backend. On success the
// wizard closes and the OnAdCreated and OnClose hooks run.
func (c *Controller) Publish(ctx context.Context) (*models.PublishResponse, error) {
	c.mu.Lock()
	if err := c.guardPublish(); err != nil {
		c.mu.Unlock()
		return nil, err
	}
	req := models.PublishRequest{
		SelectedOption: *c.selected,
		PageID:         c.input.GetString(models.InputPageID),
		Customizations: c.customizations.Root(),
	}
	c.submitting = true
	c.mu.Unlock()

	resp, err := c.gen.Publish(ctx, req)

	c.mu.Lock()
	c.submitting = false

	if c.closed {
		c.mu.Unlock()
		return nil, ErrClosed
	}
	if err != nil {
		c.mu.Unlock()
		c.log.Warn("publish ad failed", zap.Error(err))
		return nil, newCallError(OpPublish, userMessage(err), err)
	}
	if resp == nil || !resp.Success {
		msg := ""
		if resp != nil {
			msg = resp.Error
		}
		c.mu.Unlock()
		c.log.Warn("publish ad rejected", zap.String("error", msg))
		return nil, newCallError(OpPublish, msg, nil)
	}

	c.closed = true
	hooks := c.hooks
	c.mu.Unlock()

	c.log.Info("ad published", zap.String("option_id", req.SelectedOption.OptionID), zap.String("ad_id", resp.AdID))
	if hooks.OnAdCreated != nil {
		hooks.OnAdCreated(resp)
	}
	if hooks.OnClose != nil {
		hooks.OnClose()
	}
	return resp, nil
}

func (c *Controller) guardPublish() error {
	if c.closed {
		return ErrClosed
	}
	if c.step != models.StepReview {
		return ErrInvalidTransition
	}
	if c.submitting {
		return ErrBusy
	}
	if c.selected == nil {
		return ErrStepNotReady
	}
	return nil
}

// Cancel closes the wizard from any step. A response still in flight is
// discarded when it arrives.
func (c *Controller) Cancel() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	onClose := c.hooks.OnClose
	c.mu.Unlock()

	if onClose != nil {
		onClose()
	}
}

// Snapshot returns the current state.
func (c *Controller) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := State{
		CurrentStep:      c.step,
		StepName:         c.step.String(),
		TotalSteps:       models.TotalWizardSteps,
		Input:            c.input.Root(),
		Customizations:   c.customizations.Root(),
		Pages:            append([]models.Page(nil), c.pages...),
		Templates:        append([]models.Template(nil), c.templates...),
		GeneratedOptions: append([]models.GeneratedOption(nil), c.options...),
		IsSubmitting:     c.submitting,
		CanAdvance:       c.canAdvance(),
		CanPublish:       c.canPublish(),
		Notice:           c.notice,
		Closed:           c.closed,
	}
	if c.selected != nil {
		opt := *c.selected
		s.SelectedOption = &opt
	}
	return s
}

func (c *Controller) moveTo(next models.WizardStep) error {
	if !models.IsValidWizardTransition(c.step, next) {
		return ErrInvalidTransition
	}
	c.step = next
	return nil
}

func isWizardInput(field string) bool {
	for _, f := range models.WizardInputs {
		if f == field {
			return true
		}
	}
	return false
}
