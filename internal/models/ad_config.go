package models

import (
	"errors"
	"fmt"
	"time"
	"unicode/utf8"
)

// Campaign objectives
const (
	ObjectiveAwareness    = "OUTCOME_AWARENESS"
	ObjectiveTraffic      = "OUTCOME_TRAFFIC"
	ObjectiveEngagement   = "OUTCOME_ENGAGEMENT"
	ObjectiveLeads        = "OUTCOME_LEADS"
	ObjectiveAppPromotion = "OUTCOME_APP_PROMOTION"
	ObjectiveSales        = "OUTCOME_SALES"
)

// Delivery statuses shared by campaigns and ad sets
const (
	StatusActive = "ACTIVE"
	StatusPaused = "PAUSED"
)

// Ad set optimization goals
const (
	OptimizationReach           = "REACH"
	OptimizationImpressions     = "IMPRESSIONS"
	OptimizationLinkClicks      = "LINK_CLICKS"
	OptimizationLandingPageView = "LANDING_PAGE_VIEWS"
	OptimizationLeadGeneration  = "LEAD_GENERATION"
	OptimizationConversions     = "OFFSITE_CONVERSIONS"
)

// Billing events
const (
	BillingImpressions = "IMPRESSIONS"
	BillingLinkClicks  = "LINK_CLICKS"
)

// Bid strategies
const (
	BidLowestCost       = "LOWEST_COST_WITHOUT_CAP"
	BidLowestCostCap    = "LOWEST_COST_WITH_BID_CAP"
	BidCostCap          = "COST_CAP"
	BidLowestCostMinROA = "LOWEST_COST_WITH_MIN_ROAS"
)

// Targeting genders
const (
	GenderAll    = "ALL"
	GenderMale   = "MALE"
	GenderFemale = "FEMALE"
)

// Creative calls to action
const (
	CTALearnMore   = "LEARN_MORE"
	CTAShopNow     = "SHOP_NOW"
	CTASignUp      = "SIGN_UP"
	CTAContactUs   = "CONTACT_US"
	CTASendMessage = "MESSAGE_PAGE"
	CTAWhatsApp    = "WHATSAPP_MESSAGE"
	CTABookNow     = "BOOK_NOW"
	CTAGetQuote    = "GET_QUOTE"
)

// Platform limits
const (
	MinTargetAge         = 13
	MaxTargetAge         = 65
	MaxMessageLength     = 125
	MaxHeadlineLength    = 40
	MaxDescriptionLength = 30
)

var (
	Objectives        = []string{ObjectiveAwareness, ObjectiveTraffic, ObjectiveEngagement, ObjectiveLeads, ObjectiveAppPromotion, ObjectiveSales}
	Statuses          = []string{StatusActive, StatusPaused}
	OptimizationGoals = []string{OptimizationReach, OptimizationImpressions, OptimizationLinkClicks, OptimizationLandingPageView, OptimizationLeadGeneration, OptimizationConversions}
	BillingEvents     = []string{BillingImpressions, BillingLinkClicks}
	BidStrategies     = []string{BidLowestCost, BidLowestCostCap, BidCostCap, BidLowestCostMinROA}
	Genders           = []string{GenderAll, GenderMale, GenderFemale}
	CallsToAction     = []string{CTALearnMore, CTAShopNow, CTASignUp, CTAContactUs, CTASendMessage, CTAWhatsApp, CTABookNow, CTAGetQuote}
)

// AdConfig is the typed view of the campaign -> ad set -> creative tree
// edited through formstate paths such as "adSet.targeting.ageMin".
type AdConfig struct {
	Campaign CampaignConfig `json:"campaign"`
	AdSet    AdSetConfig    `json:"adSet"`
	Creative CreativeConfig `json:"creative"`
}

type CampaignConfig struct {
	Name              string   `json:"name"`
	Objective         string   `json:"objective"`
	Status            string   `json:"status"`
	SpecialCategories []string `json:"specialCategories,omitempty"`
}

type AdSetConfig struct {
	Name                  string     `json:"name"`
	OptimizationGoal      string     `json:"optimizationGoal"`
	BillingEvent          string     `json:"billingEvent"`
	BidStrategy           string     `json:"bidStrategy"`
	DailyBudgetMinorUnits int64      `json:"dailyBudgetMinorUnits"`
	Targeting             Targeting  `json:"targeting"`
	Status                string     `json:"status"`
	StartTime             *time.Time `json:"startTime,omitempty"`
	EndTime               *time.Time `json:"endTime,omitempty"`
}

type Targeting struct {
	Countries []string      `json:"countries,omitempty"`
	Cities    []string      `json:"cities,omitempty"`
	AgeMin    int           `json:"ageMin"`
	AgeMax    int           `json:"ageMax"`
	Genders   []string      `json:"genders,omitempty"`
	Interests []NamedTarget `json:"interests,omitempty"`
	Behaviors []NamedTarget `json:"behaviors,omitempty"`
}

type NamedTarget struct {
	Name string `json:"name"`
}

type CreativeConfig struct {
	Name         string `json:"name"`
	PageID       string `json:"pageId"`
	Link         string `json:"link"`
	Message      string `json:"message"`
	Headline     string `json:"headline"`
	Description  string `json:"description"`
	CallToAction string `json:"callToAction"`
}

// Validate checks the platform invariants. Empty enum fields are accepted so a
// partially filled edit can still be saved; the backend applies its defaults.
func (c *AdConfig) Validate() error {
	var errs []error

	if c.Campaign.Status != "" && !oneOf(c.Campaign.Status, Statuses) {
		errs = append(errs, fmt.Errorf("campaign.status: unknown value %q", c.Campaign.Status))
	}
	if c.Campaign.Objective != "" && !oneOf(c.Campaign.Objective, Objectives) {
		errs = append(errs, fmt.Errorf("campaign.objective: unknown value %q", c.Campaign.Objective))
	}

	as := c.AdSet
	if as.Status != "" && !oneOf(as.Status, Statuses) {
		errs = append(errs, fmt.Errorf("adSet.status: unknown value %q", as.Status))
	}
	if as.OptimizationGoal != "" && !oneOf(as.OptimizationGoal, OptimizationGoals) {
		errs = append(errs, fmt.Errorf("adSet.optimizationGoal: unknown value %q", as.OptimizationGoal))
	}
	if as.BillingEvent != "" && !oneOf(as.BillingEvent, BillingEvents) {
		errs = append(errs, fmt.Errorf("adSet.billingEvent: unknown value %q", as.BillingEvent))
	}
	if as.BidStrategy != "" && !oneOf(as.BidStrategy, BidStrategies) {
		errs = append(errs, fmt.Errorf("adSet.bidStrategy: unknown value %q", as.BidStrategy))
	}
	if as.DailyBudgetMinorUnits < 0 {
		errs = append(errs, errors.New("adSet.dailyBudgetMinorUnits: must not be negative"))
	}

	t := as.Targeting
	if t.AgeMin < MinTargetAge || t.AgeMin > MaxTargetAge {
		errs = append(errs, fmt.Errorf("adSet.targeting.ageMin: must be within %d-%d", MinTargetAge, MaxTargetAge))
	}
	if t.AgeMax < MinTargetAge || t.AgeMax > MaxTargetAge {
		errs = append(errs, fmt.Errorf("adSet.targeting.ageMax: must be within %d-%d", MinTargetAge, MaxTargetAge))
	}
	if t.AgeMin > t.AgeMax {
		errs = append(errs, errors.New("adSet.targeting: ageMin must not exceed ageMax"))
	}
	for _, g := range t.Genders {
		if !oneOf(g, Genders) {
			errs = append(errs, fmt.Errorf("adSet.targeting.genders: unknown value %q", g))
		}
	}
	if as.StartTime != nil && as.EndTime != nil && !as.EndTime.After(*as.StartTime) {
		errs = append(errs, errors.New("adSet.endTime: must be after startTime"))
	}

	cr := c.Creative
	if utf8.RuneCountInString(cr.Message) > MaxMessageLength {
		errs = append(errs, fmt.Errorf("creative.message: at most %d characters", MaxMessageLength))
	}
	if utf8.RuneCountInString(cr.Headline) > MaxHeadlineLength {
		errs = append(errs, fmt.Errorf("creative.headline: at most %d characters", MaxHeadlineLength))
	}
	if utf8.RuneCountInString(cr.Description) > MaxDescriptionLength {
		errs = append(errs, fmt.Errorf("creative.description: at most %d characters", MaxDescriptionLength))
	}
	if cr.CallToAction != "" && !oneOf(cr.CallToAction, CallsToAction) {
		errs = append(errs, fmt.Errorf("creative.callToAction: unknown value %q", cr.CallToAction))
	}

	return errors.Join(errs...)
}

func oneOf(v string, allowed []string) bool {
	for _, a := range allowed {
		if a == v {
			return true
		}
	}
	return false
}
