package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/Wanderway-Travel/service-promo/internal/application"
	"github.com/Wanderway-Travel/service-promo/pkg/auth"
	"github.com/Wanderway-Travel/service-promo/pkg/middleware"
	"github.com/Wanderway-Travel/service-promo/pkg/response"
)

// AdminHandler handles back-office promo code management.
type AdminHandler struct {
	service *application.PromoService
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(service *application.PromoService) *AdminHandler {
	return &AdminHandler{service: service}
}

// RegisterRoutes registers all admin routes on the given router group.
func (h *AdminHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	admin := r.Group("/admin")
	admin.Use(middleware.AuthMiddleware(jwtManager), middleware.RequireRole(auth.RoleAdmin))
	{
		admin.POST("/promo-codes", h.CreatePromo)
		admin.GET("/promo-codes", h.ListPromos)
		admin.GET("/promo-codes/:id", h.GetPromo)
		admin.PUT("/promo-codes/:id", h.UpdatePromo)
		admin.DELETE("/promo-codes/:id", h.DeletePromo)
		admin.GET("/stats/promos", h.PromoStats)
	}
}

// CreatePromo handles POST /api/v1/admin/promo-codes
func (h *AdminHandler) CreatePromo(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req application.CreatePromoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	dto, err := h.service.CreatePromo(c.Request.Context(), userID, req)
	if err != nil {
		notFoundOrError(c, err)
		return
	}

	response.Created(c, dto)
}

// ListPromos handles GET /api/v1/admin/promo-codes
func (h *AdminHandler) ListPromos(c *gin.Context) {
	q := application.ListPromosQuery{
		Search:       c.Query("search"),
		DiscountKind: c.Query("discount_kind"),
	}
	q.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	q.Limit, _ = strconv.Atoi(c.DefaultQuery("limit", "20"))
	if raw := c.Query("is_active"); raw != "" {
		active, err := strconv.ParseBool(raw)
		if err != nil {
			response.BadRequest(c, "invalid is_active filter")
			return
		}
		q.IsActive = &active
	}

	dtos, total, err := h.service.ListPromos(c.Request.Context(), q)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Paginated(c, dtos, total, q.Page, q.Limit)
}

// GetPromo handles GET /api/v1/admin/promo-codes/:id
func (h *AdminHandler) GetPromo(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid promo code ID")
		return
	}

	dto, err := h.service.GetPromo(c.Request.Context(), id)
	if err != nil {
		notFoundOrError(c, err)
		return
	}

	response.Success(c, dto)
}

// UpdatePromo handles PUT /api/v1/admin/promo-codes/:id
func (h *AdminHandler) UpdatePromo(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid promo code ID")
		return
	}

	var req application.UpdatePromoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	dto, err := h.service.UpdatePromo(c.Request.Context(), id, req)
	if err != nil {
		notFoundOrError(c, err)
		return
	}

	response.Success(c, dto)
}

// DeletePromo handles DELETE /api/v1/admin/promo-codes/:id
func (h *AdminHandler) DeletePromo(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid promo code ID")
		return
	}

	if err := h.service.DeletePromo(c.Request.Context(), id); err != nil {
		notFoundOrError(c, err)
		return
	}

	response.Success(c, gin.H{"deleted": true})
}

// PromoStats handles GET /api/v1/admin/stats/promos
func (h *AdminHandler) PromoStats(c *gin.Context) {
	stats, err := h.service.Stats(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, stats)
}
