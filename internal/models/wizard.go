package models

import "encoding/json"

// WizardStep is a position in the ad creation wizard.
type WizardStep int

// Wizard steps
const (
	StepChoosePath WizardStep = iota + 1 // new ad vs existing publication
	StepDescribe                         // product description, page, budget, location
	StepReview                           // pick one of the generated options and publish
)

// TotalWizardSteps is the length of the step sequence.
const TotalWizardSteps = int(StepReview)

func (s WizardStep) String() string {
	switch s {
	case StepChoosePath:
		return "choose_path"
	case StepDescribe:
		return "describe"
	case StepReview:
		return "review"
	}
	return "unknown"
}

// Next returns the following step, clamped to the last one.
func (s WizardStep) Next() WizardStep {
	if int(s) >= TotalWizardSteps {
		return WizardStep(TotalWizardSteps)
	}
	if s < StepChoosePath {
		return StepChoosePath
	}
	return s + 1
}

// Prev returns the preceding step, clamped to the first one.
func (s WizardStep) Prev() WizardStep {
	if s <= StepChoosePath {
		return StepChoosePath
	}
	if int(s) > TotalWizardSteps {
		return WizardStep(TotalWizardSteps)
	}
	return s - 1
}

// Valid wizard transitions: from -> []to
var ValidWizardTransitions = map[WizardStep][]WizardStep{
	StepChoosePath: {StepDescribe},
	StepDescribe:   {StepChoosePath, StepReview},
	StepReview:     {StepDescribe},
}

func IsValidWizardTransition(from, to WizardStep) bool {
	allowed, ok := ValidWizardTransitions[from]
	if !ok {
		return false
	}
	for _, s := range allowed {
		if s == to {
			return true
		}
	}
	return false
}

// Wizard input fields addressed in the wizard's form tree
const (
	InputProductDescription = "productDescription"
	InputPageID             = "pageId"
	InputBudgetRange        = "budgetRange"
	InputTargetLocation     = "targetLocation"
	InputBusinessType       = "businessType"
)

var WizardInputs = []string{InputProductDescription, InputPageID, InputBudgetRange, InputTargetLocation, InputBusinessType}

// Risk levels reported for generated options
const (
	RiskLow    = "Low"
	RiskMedium = "Medium"
	RiskHigh   = "High"
)

// Page is a publishing page available to the advertiser.
type Page struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Template is a quick-fill preset for the describe step.
type Template struct {
	ID                 string `json:"id"`
	Icon               string `json:"icon"`
	Name               string `json:"name"`
	ExampleDescription string `json:"example_description"`
}

// GeneratedOption is produced by the ad backend. Structure is opaque and is
// sent back byte-for-byte on publish.
type GeneratedOption struct {
	OptionID  string          `json:"option_id"`
	Name      string          `json:"name"`
	Preview   OptionPreview   `json:"preview"`
	RiskLevel string          `json:"risk_level"`
	Structure json.RawMessage `json:"structure,omitempty"`
}

type OptionPreview struct {
	Headline      string `json:"headline"`
	Description   string `json:"description"`
	DailyBudget   string `json:"daily_budget"`
	TargetSummary string `json:"target_summary"`
}

type GenerateRequest struct {
	ProductDescription string `json:"product_description"`
	PageID             string `json:"page_id"`
	BudgetRange        string `json:"budget_range"`
	TargetLocation     string `json:"target_location"`
	BusinessType       string `json:"business_type"`
}

type GenerateResponse struct {
	Success   bool              `json:"success"`
	AdOptions []GeneratedOption `json:"ad_options"`
	Error     string            `json:"error,omitempty"`
}

type PublishRequest struct {
	SelectedOption GeneratedOption `json:"selected_option"`
	PageID         string          `json:"page_id"`
	Customizations map[string]any  `json:"customizations"`
}

type PublishResponse struct {
	Success    bool   `json:"success"`
	Error      string `json:"error,omitempty"`
	CampaignID string `json:"campaign_id,omitempty"`
	AdSetID    string `json:"adset_id,omitempty"`
	AdID       string `json:"ad_id,omitempty"`
}

// CampaignSummary is a row of the dashboard campaign list.
type CampaignSummary struct {
	ID               string `json:"id"`
	Name             string `json:"name"`
	Status           string `json:"status"`
	Objective        string `json:"objective"`
	DailyBudgetMinor int64  `json:"daily_budget"`
}
