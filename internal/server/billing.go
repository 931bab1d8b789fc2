package server

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	billingdomain "github.com/tallyworks/tally/internal/billing/domain"
)

type archiveRequest struct {
	HourlyRate               *decimal.Decimal `json:"hourlyRate"`
	FlatRate                 *decimal.Decimal `json:"flatRate"`
	RateTBD                  bool             `json:"rateTbd"`
	CopySubscriptionsForward bool             `json:"copySubscriptionsForward"`
	Notes                    string           `json:"notes"`
}

// ArchiveClientPeriod closes the client's open period into a new invoice.
// Rate override keys follow explicit-null semantics: "hourlyRate": null
// suppresses the stored rate, an omitted key keeps it.
func (s *Server) ArchiveClientPeriod(c *gin.Context) {
	clientID := strings.TrimSpace(c.Param("id"))

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	req := archiveRequest{}
	if len(body) > 0 {
		if err := json.Unmarshal(body, &req); err != nil {
			AbortWithError(c, invalidRequestError())
			return
		}
	}
	var keys map[string]json.RawMessage
	if len(body) > 0 {
		if err := json.Unmarshal(body, &keys); err != nil {
			AbortWithError(c, invalidRequestError())
			return
		}
	}

	_, hourlySet := keys["hourlyRate"]
	_, flatSet := keys["flatRate"]

	resp, err := s.billingSvc.Archive(c.Request.Context(), billingdomain.ArchiveRequest{
		ClientID: clientID,
		Overrides: billingdomain.RateOverrides{
			HourlySet: hourlySet,
			Hourly:    req.HourlyRate,
			FlatSet:   flatSet,
			Flat:      req.FlatRate,
			TBD:       req.RateTBD,
		},
		CopySubscriptionsForward: req.CopySubscriptionsForward,
		Notes:                    strings.TrimSpace(req.Notes),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

type correctRateRequest struct {
	HourlyRate *decimal.Decimal `json:"hourlyRate"`
	FlatRate   *decimal.Decimal `json:"flatRate"`
	TotalHours decimal.Decimal  `json:"totalHours"`
}

func (s *Server) CorrectInvoiceRate(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req correctRateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.billingSvc.CorrectRate(c.Request.Context(), billingdomain.CorrectRateRequest{
		InvoiceID:  id,
		HourlyRate: req.HourlyRate,
		FlatRate:   req.FlatRate,
		TotalHours: req.TotalHours,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func isBillingValidationError(err error) bool {
	switch err {
	case billingdomain.ErrRateConflict,
		billingdomain.ErrRateRequired:
		return true
	default:
		return false
	}
}
