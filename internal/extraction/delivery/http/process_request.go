package http

import (
	"github.com/gin-gonic/gin"
)

// processExtractReq binds and validates the extraction request body.
func (h *handler) processExtractReq(c *gin.Context) (extractReq, error) {
	var req extractReq
	if err := c.ShouldBindJSON(&req); err != nil {
		return req, err
	}
	return req, req.validate()
}

// processConfirmReq binds the selected schedules and the conversation id URI param.
func (h *handler) processConfirmReq(c *gin.Context) (confirmReq, error) {
	var req confirmReq
	if err := c.ShouldBindJSON(&req); err != nil {
		return req, err
	}
	req.ConversationID = c.Param("id")
	return req, req.validate()
}

// processListActionsReq binds the parent id URI param and query filters.
func (h *handler) processListActionsReq(c *gin.Context) (listActionsReq, error) {
	var req listActionsReq
	if err := c.ShouldBindQuery(&req); err != nil {
		return req, err
	}
	req.ParentID = c.Param("id")
	return req, req.validate()
}
