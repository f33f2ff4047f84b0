package handlers

import (
	"errors"
	"strings"
	"time"

	"NeighborGuard/internal/lifecycle"
	"NeighborGuard/internal/models"
	apperrors "NeighborGuard/pkg/errors"
	"NeighborGuard/pkg/middleware"
	"NeighborGuard/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cast"
)

var (
	errNotCircleMember = apperrors.Sentinel(apperrors.CodeForbidden, "not a member of this circle")
	errRoleNotAllowed  = apperrors.Sentinel(apperrors.CodeForbidden, "your role cannot perform this action")
)

type createEventRequest struct {
	EventType   string     `json:"eventType" binding:"required"`
	ZoneID      string     `json:"zoneId" binding:"required"`
	Title       string     `json:"title" binding:"required"`
	Description string     `json:"description"`
	Severity    string     `json:"severity"`
	OccurredAt  *time.Time `json:"occurredAt"`
}

// updateEventRequest 只更新出现的字段
type updateEventRequest struct {
	Title       *string    `json:"title"`
	Description *string    `json:"description"`
	Severity    *string    `json:"severity"`
	OccurredAt  *time.Time `json:"occurredAt"`
}

type addNoteRequest struct {
	NoteType     string `json:"noteType"`
	ReactionCode string `json:"reactionCode"`
	Body         string `json:"body"`
}

type updateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

type updatePoliceRequest struct {
	PoliceReported     *bool   `json:"policeReported" binding:"required"`
	PoliceReportNumber *string `json:"policeReportNumber"`
}

// member resolves the caller's active membership in :circleId. allowed, when
// set, gates on the member's role.
func (h *Handlers) member(c *gin.Context, allowed func(models.MemberRole) bool) (*models.CircleMember, bool) {
	m, err := h.store.FindMemberByUser(c.Request.Context(), c.Param("circleId"), middleware.CurrentUserID(c))
	if errors.Is(err, models.ErrNotFound) {
		response.AbortWithError(c, errNotCircleMember)
		return nil, false
	}
	if err != nil {
		response.AbortWithError(c, err)
		return nil, false
	}
	if allowed != nil && !allowed(m.Role) {
		response.AbortWithError(c, errRoleNotAllowed)
		return nil, false
	}
	return m, true
}

// circleEvent loads :eventId and hides events of other circles.
func (h *Handlers) circleEvent(c *gin.Context) (*models.Event, bool) {
	ev, err := h.events.GetEvent(c.Request.Context(), c.Param("eventId"))
	if err == nil && ev.CircleID != c.Param("circleId") {
		err = lifecycle.ErrEventNotFound
	}
	if err != nil {
		response.AbortWithError(c, err)
		return nil, false
	}
	return ev, true
}

// queryInt reads a non-negative integer query parameter; absent means 0.
func queryInt(c *gin.Context, key string) (int, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return 0, nil
	}
	n, err := cast.ToIntE(raw)
	if err != nil || n < 0 {
		return 0, apperrors.WithCodef(apperrors.CodeInvalidInput, "%s must be a non-negative integer", key)
	}
	return n, nil
}

// handleListEvents pages the circle's events, newest first. status accepts
// "active", "resolved" or a single status; createdBy accepts "me".
func (h *Handlers) handleListEvents(c *gin.Context) {
	m, ok := h.member(c, nil)
	if !ok {
		return
	}
	filter := models.EventFilter{
		Severity:  models.Severity(strings.ToUpper(strings.TrimSpace(c.Query("severity")))),
		ZoneID:    c.Query("zoneId"),
		EventType: c.Query("eventType"),
		CreatorID: c.Query("createdBy"),
	}
	if filter.CreatorID == "me" {
		filter.CreatorID = m.ID
	}
	if status := c.Query("status"); status != "" {
		statuses, ok := models.StatusGroup(status)
		if !ok {
			response.AbortWithError(c, lifecycle.ErrInvalidStatus)
			return
		}
		filter.Statuses = statuses
	}
	var err error
	if filter.Limit, err = queryInt(c, "limit"); err != nil {
		response.AbortWithError(c, err)
		return
	}
	if filter.Offset, err = queryInt(c, "offset"); err != nil {
		response.AbortWithError(c, err)
		return
	}

	page, err := h.events.ListEvents(c.Request.Context(), c.Param("circleId"), m.ID, filter)
	if err != nil {
		response.AbortWithError(c, err)
		return
	}
	events := page.Events
	if events == nil {
		events = []models.Event{}
	}
	response.Success(c, "success", gin.H{
		"events": events,
		"pagination": gin.H{
			"total":   page.Total,
			"limit":   page.Limit,
			"offset":  page.Offset,
			"hasMore": page.HasMore,
		},
	})
}

func (h *Handlers) handleCreateEvent(c *gin.Context) {
	var req createEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, err.Error(), nil)
		return
	}
	m, ok := h.member(c, models.MemberRole.CanReact)
	if !ok {
		return
	}
	in := lifecycle.CreateEventInput{
		CircleID:      c.Param("circleId"),
		ZoneID:        req.ZoneID,
		ActorMemberID: m.ID,
		EventType:     req.EventType,
		Title:         req.Title,
		Description:   req.Description,
		Severity:      models.Severity(strings.ToUpper(req.Severity)),
	}
	if req.OccurredAt != nil {
		in.OccurredAt = req.OccurredAt.UTC()
	}
	out, err := h.events.CreateEvent(c.Request.Context(), in)
	if err != nil {
		response.AbortWithError(c, err)
		return
	}
	response.Created(c, "event created", gin.H{"event": out.Event})
}

func (h *Handlers) handleGetEvent(c *gin.Context) {
	if _, ok := h.member(c, nil); !ok {
		return
	}
	ev, ok := h.circleEvent(c)
	if !ok {
		return
	}
	notes, err := h.events.ListNotes(c.Request.Context(), ev.ID)
	if err != nil {
		response.AbortWithError(c, err)
		return
	}
	response.Success(c, "success", gin.H{"event": ev, "notes": notes})
}

func (h *Handlers) handleUpdateEvent(c *gin.Context) {
	var req updateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, err.Error(), nil)
		return
	}
	m, ok := h.member(c, nil)
	if !ok {
		return
	}
	ev, ok := h.circleEvent(c)
	if !ok {
		return
	}
	in := lifecycle.UpdateEventInput{Title: req.Title, Description: req.Description}
	if req.Severity != nil {
		sev := models.Severity(strings.ToUpper(strings.TrimSpace(*req.Severity)))
		in.Severity = &sev
	}
	if req.OccurredAt != nil {
		at := req.OccurredAt.UTC()
		in.OccurredAt = &at
	}
	out, err := h.events.UpdateEvent(c.Request.Context(), ev.ID, m.ID, in)
	if err != nil {
		response.AbortWithError(c, err)
		return
	}
	response.Success(c, "event updated", gin.H{"event": out.Event})
}

func (h *Handlers) handleDeleteEvent(c *gin.Context) {
	m, ok := h.member(c, nil)
	if !ok {
		return
	}
	ev, ok := h.circleEvent(c)
	if !ok {
		return
	}
	if err := h.events.DeleteEvent(c.Request.Context(), ev.ID, m.ID); err != nil {
		response.AbortWithError(c, err)
		return
	}
	response.Success(c, "event deleted", nil)
}

func (h *Handlers) handleListNotes(c *gin.Context) {
	if _, ok := h.member(c, nil); !ok {
		return
	}
	ev, ok := h.circleEvent(c)
	if !ok {
		return
	}
	notes, err := h.events.ListNotes(c.Request.Context(), ev.ID)
	if err != nil {
		response.AbortWithError(c, err)
		return
	}
	response.Success(c, "success", gin.H{"notes": notes})
}

// handleAddNote records a reaction when reactionCode is present and a
// comment otherwise.
func (h *Handlers) handleAddNote(c *gin.Context) {
	var req addNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, err.Error(), nil)
		return
	}
	noteType := models.NoteType(strings.ToUpper(strings.TrimSpace(req.NoteType)))
	if noteType == "" {
		noteType = models.NoteComment
		if req.ReactionCode != "" {
			noteType = models.NoteReaction
		}
	}
	if noteType != models.NoteComment && noteType != models.NoteReaction {
		response.Fail(c, "noteType must be COMMENT or REACTION", nil)
		return
	}

	m, ok := h.member(c, models.MemberRole.CanReact)
	if !ok {
		return
	}
	ev, ok := h.circleEvent(c)
	if !ok {
		return
	}

	var (
		out *lifecycle.Outcome
		err error
	)
	if noteType == models.NoteReaction {
		out, err = h.events.ApplyReaction(c.Request.Context(), ev.ID, m.ID, req.ReactionCode, req.Body)
	} else {
		out, err = h.events.AddComment(c.Request.Context(), ev.ID, m.ID, req.Body)
	}
	if err != nil {
		response.AbortWithError(c, err)
		return
	}
	response.Created(c, "note added", gin.H{
		"note":          out.Note,
		"status":        out.Event.Status,
		"statusUpdated": out.Changed,
		"conflict":      out.Conflict,
	})
}

func (h *Handlers) handleUpdateStatus(c *gin.Context) {
	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, err.Error(), nil)
		return
	}
	m, ok := h.member(c, models.MemberRole.CanReact)
	if !ok {
		return
	}
	ev, ok := h.circleEvent(c)
	if !ok {
		return
	}
	status := models.EventStatus(strings.ToUpper(strings.TrimSpace(req.Status)))
	out, err := h.events.SetStatus(c.Request.Context(), ev.ID, m.ID, status)
	if err != nil {
		response.AbortWithError(c, err)
		return
	}
	response.Success(c, "status updated", gin.H{
		"event":          out.Event,
		"previousStatus": out.PreviousStatus,
		"statusUpdated":  out.Changed,
	})
}

func (h *Handlers) handleUpdatePolice(c *gin.Context) {
	var req updatePoliceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, err.Error(), nil)
		return
	}
	m, ok := h.member(c, models.MemberRole.CanReportPolice)
	if !ok {
		return
	}
	ev, ok := h.circleEvent(c)
	if !ok {
		return
	}
	out, err := h.events.SetPoliceReported(c.Request.Context(), ev.ID, m.ID, *req.PoliceReported, req.PoliceReportNumber)
	if err != nil {
		response.AbortWithError(c, err)
		return
	}
	response.Success(c, "police report updated", gin.H{"event": out.Event, "statusUpdated": out.Changed})
}
