package server

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	clientdomain "github.com/tallyworks/tally/internal/client/domain"
)

type createClientRequest struct {
	Name       string           `json:"name"`
	HourlyRate *decimal.Decimal `json:"hourlyRate"`
	FlatRate   *decimal.Decimal `json:"flatRate"`
	Notes      string           `json:"notes"`
}

func (s *Server) CreateClient(c *gin.Context) {
	var req createClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.clientSvc.Create(c.Request.Context(), clientdomain.CreateClientRequest{
		Name:       strings.TrimSpace(req.Name),
		HourlyRate: req.HourlyRate,
		FlatRate:   req.FlatRate,
		Notes:      strings.TrimSpace(req.Notes),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListClients(c *gin.Context) {
	resp, err := s.clientSvc.List(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetClientByID(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	resp, err := s.clientSvc.Get(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

type updateClientRequest struct {
	Name       *string          `json:"name"`
	Notes      *string          `json:"notes"`
	HourlyRate *decimal.Decimal `json:"hourlyRate"`
	FlatRate   *decimal.Decimal `json:"flatRate"`
}

// UpdateClient patches a client. Rate keys follow explicit-null semantics:
// sending "hourlyRate": null clears the stored rate, while omitting the key
// leaves it untouched. Key presence is read from the raw body.
func (s *Server) UpdateClient(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	var req updateClientRequest
	if err := json.Unmarshal(body, &req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	var keys map[string]json.RawMessage
	if err := json.Unmarshal(body, &keys); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	_, hourlySet := keys["hourlyRate"]
	_, flatSet := keys["flatRate"]

	resp, err := s.clientSvc.Update(c.Request.Context(), id, clientdomain.UpdateClientRequest{
		Name:          req.Name,
		Notes:         req.Notes,
		HourlyRateSet: hourlySet,
		HourlyRate:    req.HourlyRate,
		FlatRateSet:   flatSet,
		FlatRate:      req.FlatRate,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

type openPeriodRequest struct {
	PeriodStart *time.Time `json:"periodStart"`
	PeriodEnd   *time.Time `json:"periodEnd"`
}

func (s *Server) OpenClientPeriod(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))

	var req openPeriodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.clientSvc.OpenPeriod(c.Request.Context(), id, clientdomain.OpenPeriodRequest{
		PeriodStart: req.PeriodStart,
		PeriodEnd:   req.PeriodEnd,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func isClientValidationError(err error) bool {
	switch err {
	case clientdomain.ErrInvalidName,
		clientdomain.ErrRateConflict,
		clientdomain.ErrNegativeRate,
		clientdomain.ErrInvalidPeriod:
		return true
	default:
		return false
	}
}
