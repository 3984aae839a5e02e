package handlers

import (
	"context"
	"errors"

	"github.com/adpilot/dashboard/internal/http/dto"
	"github.com/adpilot/dashboard/internal/linkpreview"
	"github.com/adpilot/dashboard/internal/models"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// CatalogSource is the read side of the ad backend shown on the dashboard.
type CatalogSource interface {
	ListPages(ctx context.Context) ([]models.Page, error)
	ListTemplates(ctx context.Context) ([]models.Template, error)
	ListCampaigns(ctx context.Context) ([]models.CampaignSummary, error)
}

type PreviewFetcher interface {
	Fetch(ctx context.Context, rawURL string) (*linkpreview.Preview, error)
}

type MetaHandler struct {
	catalog CatalogSource
	preview PreviewFetcher
	log     *zap.Logger
}

func NewMetaHandler(catalog CatalogSource, preview PreviewFetcher, log *zap.Logger) *MetaHandler {
	return &MetaHandler{catalog: catalog, preview: preview, log: log}
}

var adEnums = dto.EnumsResponse{
	Objectives:        models.Objectives,
	Statuses:          models.Statuses,
	OptimizationGoals: models.OptimizationGoals,
	BillingEvents:     models.BillingEvents,
	BidStrategies:     models.BidStrategies,
	Genders:           models.Genders,
	CallsToAction:     models.CallsToAction,
	MinAge:            models.MinTargetAge,
	MaxAge:            models.MaxTargetAge,
	MaxMessage:        models.MaxMessageLength,
	MaxHeadline:       models.MaxHeadlineLength,
	MaxDescription:    models.MaxDescriptionLength,
}

func (h *MetaHandler) GetEnums(c *fiber.Ctx) error {
	return c.JSON(dto.SuccessResponse{OK: true, Data: adEnums})
}

func (h *MetaHandler) GetPages(c *fiber.Ctx) error {
	pages, err := h.catalog.ListPages(c.Context())
	if err != nil {
		return writeError(c, err)
	}
	if pages == nil {
		pages = []models.Page{}
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: pages})
}

func (h *MetaHandler) GetTemplates(c *fiber.Ctx) error {
	templates, err := h.catalog.ListTemplates(c.Context())
	if err != nil {
		return writeError(c, err)
	}
	if templates == nil {
		templates = []models.Template{}
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: templates})
}

func (h *MetaHandler) ListCampaigns(c *fiber.Ctx) error {
	campaigns, err := h.catalog.ListCampaigns(c.Context())
	if err != nil {
		return writeError(c, err)
	}
	if campaigns == nil {
		campaigns = []models.CampaignSummary{}
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: campaigns})
}

func (h *MetaHandler) LinkPreview(c *fiber.Ctx) error {
	link := c.Query("url")
	if link == "" {
		return badRequest(c, "url is required")
	}

	preview, err := h.preview.Fetch(c.Context(), link)
	if err != nil {
		if errors.Is(err, linkpreview.ErrInvalidLink) || errors.Is(err, linkpreview.ErrBlockedHost) {
			return badRequest(c, err.Error())
		}
		h.log.Info("link preview failed", zap.String("url", link), zap.Error(err))
		return errorJSON(c, fiber.StatusBadGateway, "link could not be fetched")
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: preview})
}
