package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	timeentrydomain "github.com/tallyworks/tally/internal/timeentry/domain"
)

func (s *Server) CreateTimeEntry(c *gin.Context) {
	var req timeentrydomain.CreateTimeEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	req.ClientID = strings.TrimSpace(req.ClientID)

	resp, err := s.timeEntrySvc.Create(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetTimeEntryByID(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	resp, err := s.timeEntrySvc.Get(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListOpenTimeEntries(c *gin.Context) {
	clientID := strings.TrimSpace(c.Param("id"))

	resp, err := s.timeEntrySvc.ListOpen(c.Request.Context(), clientID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListInvoiceTimeEntries(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	resp, err := s.timeEntrySvc.ListByInvoice(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) UpdateTimeEntry(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req timeentrydomain.UpdateTimeEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.timeEntrySvc.Update(c.Request.Context(), id, req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) DeleteTimeEntry(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	if err := s.timeEntrySvc.Delete(c.Request.Context(), id); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"deleted": true}})
}

func isTimeEntryValidationError(err error) bool {
	switch err {
	case timeentrydomain.ErrInvalidHours:
		return true
	default:
		return false
	}
}
