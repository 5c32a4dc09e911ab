package http

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"parent-care-assistant/internal/extraction"
	"parent-care-assistant/internal/middleware"
	"parent-care-assistant/pkg/response"
)

// Extract godoc
// @Summary     Extract schedules from a conversation
// @Description Summarizes a call with a parent and proposes dated follow-ups. Uses the language model when
// @Description configured and falls back to the keyword rules otherwise. Give conversation_id to analyze a
// @Description stored conversation, conversation_text for raw text, or audio_url to transcribe first.
// @Tags        Extraction
// @Accept      json
// @Produce     json
// @Param       X-User-ID header string     false "Caller user id"
// @Param       body      body   extractReq true  "Conversation source"
// @Success     200 {object} extractResp
// @Failure     400 {object} response.Resp "Bad Request"
// @Failure     404 {object} response.Resp "Conversation not found"
// @Failure     429 {object} response.Resp "Too Many Requests"
// @Failure     500 {object} response.Resp "Internal Server Error"
// @Router      /api/v1/extractions [POST]
func (h *handler) Extract(c *gin.Context) {
	ctx := c.Request.Context()

	req, err := h.processExtractReq(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	output, err := h.uc.Extract(ctx, middleware.GetScope(c), req.toInput())
	if err != nil {
		h.l.Errorf(ctx, "uc.Extract: %v", err)
		response.Error(c, h.mapError(err))
		return
	}

	response.OK(c, h.newExtractResp(output))
}

// Confirm godoc
// @Summary     Confirm selected schedules
// @Description Stores every schedule with selected=true as an action of the conversation's parent.
// @Description Confirming the same schedules twice creates duplicate actions.
// @Tags        Actions
// @Accept      json
// @Produce     json
// @Param       id   path string     true "Conversation ID"
// @Param       body body confirmReq true "Schedules with selection flags"
// @Success     200 {object} actionsResp
// @Failure     400 {object} response.Resp "Bad Request"
// @Failure     404 {object} response.Resp "Not Found"
// @Failure     500 {object} response.Resp "Internal Server Error"
// @Router      /api/v1/conversations/{id}/actions [POST]
func (h *handler) Confirm(c *gin.Context) {
	ctx := c.Request.Context()

	req, err := h.processConfirmReq(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	output, err := h.uc.Confirm(ctx, middleware.GetScope(c), req.toInput())
	if err != nil {
		h.l.Errorf(ctx, "uc.Confirm: %v", err)
		response.Error(c, h.mapError(err))
		return
	}

	response.OK(c, h.newActionsResp(output.Actions))
}

// ListActions godoc
// @Summary     List a parent's actions
// @Description Returns open actions ordered by due date. include_completed=true adds finished ones.
// @Tags        Actions
// @Produce     json
// @Param       id                path  string true  "Parent ID"
// @Param       include_completed query bool   false "Include completed actions"
// @Success     200 {object} actionsResp
// @Failure     404 {object} response.Resp "Parent not found"
// @Failure     500 {object} response.Resp "Internal Server Error"
// @Router      /api/v1/parents/{id}/actions [GET]
func (h *handler) ListActions(c *gin.Context) {
	ctx := c.Request.Context()

	req, err := h.processListActionsReq(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	output, err := h.uc.ListActions(ctx, middleware.GetScope(c), req.toInput())
	if err != nil {
		h.l.Errorf(ctx, "uc.ListActions: %v", err)
		response.Error(c, h.mapError(err))
		return
	}

	response.OK(c, h.newActionsResp(output.Actions))
}

// ExportICS godoc
// @Summary     Export actions as iCalendar
// @Description Downloads a parent's open actions as all-day events.
// @Tags        Actions
// @Produce     text/calendar
// @Param       id path string true "Parent ID"
// @Success     200 {file} file
// @Failure     404 {object} response.Resp "Parent not found"
// @Failure     500 {object} response.Resp "Internal Server Error"
// @Router      /api/v1/parents/{id}/actions.ics [GET]
func (h *handler) ExportICS(c *gin.Context) {
	ctx := c.Request.Context()

	output, err := h.uc.ExportICS(ctx, middleware.GetScope(c), c.Param("id"))
	if err != nil {
		h.l.Errorf(ctx, "uc.ExportICS: %v", err)
		response.Error(c, h.mapError(err))
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, output.FileName))
	c.Data(http.StatusOK, "text/calendar; charset=utf-8", output.Data)
}

// SyncCalendar godoc
// @Summary     Push actions to Google Calendar
// @Description Creates an all-day Google Calendar event for each open action that does not have one yet.
// @Tags        Actions
// @Produce     json
// @Param       id path string true "Parent ID"
// @Success     200 {object} calendarSyncResp
// @Failure     404 {object} response.Resp "Parent not found"
// @Failure     503 {object} response.Resp "Calendar not configured"
// @Router      /api/v1/parents/{id}/actions/calendar [POST]
func (h *handler) SyncCalendar(c *gin.Context) {
	ctx := c.Request.Context()
	sc := middleware.GetScope(c)

	list, err := h.uc.ListActions(ctx, sc, extraction.ListActionsInput{ParentID: c.Param("id")})
	if err != nil {
		h.l.Errorf(ctx, "uc.ListActions: %v", err)
		response.Error(c, h.mapError(err))
		return
	}

	output, err := h.uc.PushToGoogleCalendar(ctx, list.Actions)
	if err != nil {
		h.l.Errorf(ctx, "uc.PushToGoogleCalendar: %v", err)
		response.Error(c, h.mapError(err))
		return
	}

	response.OK(c, calendarSyncResp{Created: output.Created, Skipped: output.Skipped, Failed: output.Failed})
}

// CompleteAction godoc
// @Summary     Complete an action
// @Description Marks an action as done and records when.
// @Tags        Actions
// @Produce     json
// @Param       id path string true "Action ID"
// @Success     200 {object} actionDetailResp
// @Failure     404 {object} response.Resp "Action not found"
// @Failure     500 {object} response.Resp "Internal Server Error"
// @Router      /api/v1/actions/{id}/complete [POST]
func (h *handler) CompleteAction(c *gin.Context) {
	ctx := c.Request.Context()

	action, err := h.uc.CompleteAction(ctx, middleware.GetScope(c), c.Param("id"))
	if err != nil {
		h.l.Errorf(ctx, "uc.CompleteAction: %v", err)
		response.Error(c, h.mapError(err))
		return
	}

	response.OK(c, actionDetailResp{Action: newActionResp(action)})
}
