package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/dinepos/internal/config"
)

type pricingResponse struct {
	TaxPolicy string   `json:"tax_policy"`
	TaxRate   *float64 `json:"tax_rate,omitempty"`
	Currency  string   `json:"currency"`
}

// GetPricing exposes the live tax settings so a terminal can label its
// totals. The rate is omitted under the per-item policy.
func (s *Server) GetPricing(c *gin.Context) {
	cfg := s.pricing.Get()

	resp := pricingResponse{
		TaxPolicy: cfg.TaxPolicy,
		Currency:  cfg.Currency,
	}
	if cfg.TaxPolicy != config.TaxPolicyPerItem {
		rate := cfg.TaxRate
		resp.TaxRate = &rate
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
