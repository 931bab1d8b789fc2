package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	invoicedomain "github.com/tallyworks/tally/internal/invoice/domain"
)

func (s *Server) ListInvoices(c *gin.Context) {
	var query struct {
		ClientID string `form:"client_id"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.invoiceSvc.List(c.Request.Context(), invoicedomain.ListInvoicesRequest{
		ClientID: strings.TrimSpace(query.ClientID),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetInvoiceByID(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	resp, err := s.invoiceSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

type setInvoicePaidRequest struct {
	Paid     bool       `json:"paid"`
	PaidDate *time.Time `json:"paidDate"`
}

func (s *Server) SetInvoicePaid(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req setInvoicePaidRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.invoiceSvc.SetPaid(c.Request.Context(), id, invoicedomain.SetPaidRequest{
		Paid:     req.Paid,
		PaidDate: req.PaidDate,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func isInvoiceValidationError(err error) bool {
	switch err {
	case invoicedomain.ErrPaidDateRequired:
		return true
	default:
		return false
	}
}
