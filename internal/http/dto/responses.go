package dto

import (
	"github.com/adpilot/dashboard/internal/models"
	"github.com/adpilot/dashboard/internal/wizard"
	"github.com/google/uuid"
)

type ErrorResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}

type SuccessResponse struct {
	OK   bool `json:"ok"`
	Data any  `json:"data,omitempty"`
}

type WizardResponse struct {
	ID uuid.UUID `json:"id"`
	wizard.State
}

type PublishResultResponse struct {
	Result *models.PublishResponse `json:"result"`
	Wizard WizardResponse          `json:"wizard"`
}

type FieldResponse struct {
	Path   string `json:"path"`
	Value  any    `json:"value"`
	Exists bool   `json:"exists"`
}

type EnumsResponse struct {
	Objectives        []string `json:"objectives"`
	Statuses          []string `json:"statuses"`
	OptimizationGoals []string `json:"optimization_goals"`
	BillingEvents     []string `json:"billing_events"`
	BidStrategies     []string `json:"bid_strategies"`
	Genders           []string `json:"genders"`
	CallsToAction     []string `json:"calls_to_action"`
	MinAge            int      `json:"min_age"`
	MaxAge            int      `json:"max_age"`
	MaxMessage        int      `json:"max_message_length"`
	MaxHeadline       int      `json:"max_headline_length"`
	MaxDescription    int      `json:"max_description_length"`
}
