package dto

type ChoosePathRequest struct {
	Path string `json:"path"` // new / existing
}

// WizardInputRequest carries describe-step fields keyed by their form path,
// e.g. {"productDescription": "...", "pageId": "123"}.
type WizardInputRequest map[string]string

type ApplyTemplateRequest struct {
	TemplateID string `json:"template_id"`
}

type SelectOptionRequest struct {
	OptionID string `json:"option_id"`
}

// SetFieldRequest writes one value at a dot path of a form tree.
type SetFieldRequest struct {
	Path  string `json:"path"`
	Value any    `json:"value"`
}

type SetBudgetRequest struct {
	DailyBudget string `json:"daily_budget"` // display amount, e.g. "12.34"
}
