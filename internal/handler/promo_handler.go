package handler

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/Wanderway-Travel/service-promo/internal/application"
	"github.com/Wanderway-Travel/service-promo/internal/domain/promo"
	"github.com/Wanderway-Travel/service-promo/pkg/auth"
	"github.com/Wanderway-Travel/service-promo/pkg/middleware"
	"github.com/Wanderway-Travel/service-promo/pkg/response"
)

// PromoHandler handles customer-facing promo code requests.
type PromoHandler struct {
	service *application.PromoService
}

// NewPromoHandler creates a new PromoHandler.
func NewPromoHandler(service *application.PromoService) *PromoHandler {
	return &PromoHandler{service: service}
}

// RegisterRoutes registers the customer promo routes on the given router group.
func (h *PromoHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	promos := r.Group("/promos")
	promos.Use(middleware.AuthMiddleware(jwtManager))
	{
		promos.POST("/validate", h.ValidatePromo)
		promos.GET("/check/:code", h.CheckCode)
		promos.GET("/active", h.GetActivePromos)
	}
}

// ValidatePromo handles POST /api/v1/promos/validate
func (h *PromoHandler) ValidatePromo(c *gin.Context) {
	var req application.ValidatePromoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	dto, err := h.service.ValidatePromo(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, application.ErrInvalidInput) {
			response.BadRequest(c, err.Error())
			return
		}
		response.Error(c, err)
		return
	}

	response.Success(c, dto)
}

// CheckCode handles GET /api/v1/promos/check/:code?amount=
func (h *PromoHandler) CheckCode(c *gin.Context) {
	codeString := c.Param("code")

	amountStr := c.Query("amount")
	if amountStr == "" {
		response.BadRequest(c, "amount query parameter is required")
		return
	}
	amount, err := decimal.NewFromString(amountStr)
	if err != nil {
		response.BadRequest(c, "invalid amount")
		return
	}

	dto, err := h.service.CheckCode(c.Request.Context(), codeString, amount)
	if err != nil {
		if errors.Is(err, application.ErrInvalidInput) {
			response.BadRequest(c, err.Error())
			return
		}
		response.Error(c, err)
		return
	}

	response.Success(c, dto)
}

// GetActivePromos handles GET /api/v1/promos/active
func (h *PromoHandler) GetActivePromos(c *gin.Context) {
	dtos, err := h.service.GetEligiblePromos(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dtos)
}

// notFoundOrError maps domain lookup failures to HTTP responses.
func notFoundOrError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, promo.ErrNotFound):
		response.NotFound(c, "promo code not found")
	case errors.Is(err, application.ErrInvalidInput):
		response.BadRequest(c, err.Error())
	default:
		response.Error(c, err)
	}
}
