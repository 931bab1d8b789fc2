package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	payabledomain "github.com/tallyworks/tally/internal/payable/domain"
)

func (s *Server) CreatePayable(c *gin.Context) {
	var req payabledomain.CreatePayableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	req.ClientID = strings.TrimSpace(req.ClientID)
	req.Description = strings.TrimSpace(req.Description)

	resp, err := s.payableSvc.Create(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetPayableByID(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	resp, err := s.payableSvc.Get(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListOpenPayables(c *gin.Context) {
	clientID := strings.TrimSpace(c.Param("id"))

	resp, err := s.payableSvc.ListOpen(c.Request.Context(), clientID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListInvoicePayables(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	resp, err := s.payableSvc.ListByInvoice(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) UpdatePayable(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req payabledomain.UpdatePayableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.payableSvc.Update(c.Request.Context(), id, req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) DeletePayable(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	if err := s.payableSvc.Delete(c.Request.Context(), id); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"deleted": true}})
}

func isPayableValidationError(err error) bool {
	switch err {
	case payabledomain.ErrInvalidAmount,
		payabledomain.ErrInvalidDescription,
		payabledomain.ErrPaidDateRequired,
		payabledomain.ErrPaidDateWithoutPaid,
		payabledomain.ErrNoProceedsClient:
		return true
	default:
		return false
	}
}
