package handlers

import (
	"NeighborGuard/internal/lifecycle"
	"NeighborGuard/internal/models"
	"NeighborGuard/pkg/middleware"
	"NeighborGuard/pkg/response"

	"github.com/gin-gonic/gin"
)

type eventTypeView struct {
	Value        string          `json:"value"`
	Label        string          `json:"label"`
	Icon         string          `json:"icon"`
	Severity     models.Severity `json:"severity"`
	AllowedZones []string        `json:"allowedZones"`
}

func (h *Handlers) handleEventTypes(c *gin.Context) {
	lang := middleware.CurrentLang(c)
	types := lifecycle.EventTypes()
	out := make([]eventTypeView, 0, len(types))
	for _, t := range types {
		label := t.Label
		if lang == "en" {
			label = t.LabelEn
		}
		zones := t.AllowedZones
		if zones == nil {
			zones = []string{}
		}
		out = append(out, eventTypeView{Value: t.Value, Label: label, Icon: t.Icon, Severity: t.Severity, AllowedZones: zones})
	}
	response.Success(c, "success", gin.H{"eventTypes": out})
}

// handleReactions returns the options for one event type, or every category
// when eventType is omitted.
func (h *Handlers) handleReactions(c *gin.Context) {
	cat := h.events.Catalog()
	if et := c.Query("eventType"); et != "" {
		category := lifecycle.CategoryFor(et)
		response.Success(c, "success", gin.H{"category": category, "options": cat.Options(category)})
		return
	}
	all := gin.H{}
	for _, category := range []lifecycle.Category{lifecycle.CategorySuspicious, lifecycle.CategoryBreakin, lifecycle.CategoryPackage, lifecycle.CategoryCustom} {
		all[string(category)] = cat.Options(category)
	}
	response.Success(c, "success", gin.H{"categories": all})
}

func (h *Handlers) handleStatuses(c *gin.Context) {
	cat := h.events.Catalog()
	out := make([]gin.H, 0, len(models.AllStatuses))
	for _, s := range models.AllStatuses {
		out = append(out, gin.H{"value": s, "rank": cat.Rank(s), "active": s.IsActive()})
	}
	response.Success(c, "success", gin.H{"statuses": out})
}

func (h *Handlers) handleSeverities(c *gin.Context) {
	response.Success(c, "success", gin.H{"severities": []models.Severity{models.SeverityHigh, models.SeverityMedium, models.SeverityLow}})
}
