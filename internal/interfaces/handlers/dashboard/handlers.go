package dashboard

import (
	dashsvc "mazal-backend/internal/application/dashboard"
	"mazal-backend/internal/middleware"
	"mazal-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Handlers holds dependencies for dashboard endpoints.
type Handlers struct {
	Service *dashsvc.Service
}

// Stats GET /api/v1/dashboard/stats
func (h *Handlers) Stats(c *fiber.Ctx) error {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	stats := h.Service.GetStats(c.Context(), userID)
	return response.Success(c, "Dashboard stats fetched successfully", stats, nil)
}

// InventoryByShape GET /api/v1/dashboard/inventory-by-shape
func (h *Handlers) InventoryByShape(c *fiber.Ctx) error {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	data := h.Service.InventoryByShape(c.Context(), userID)
	return response.Success(c, "Inventory by shape fetched successfully", data, nil)
}

// SalesByCategory GET /api/v1/dashboard/sales-by-category
func (h *Handlers) SalesByCategory(c *fiber.Ctx) error {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	data := h.Service.SalesByCategory(c.Context(), userID)
	return response.Success(c, "Sales by category fetched successfully", data, nil)
}

// PriceTrend GET /api/v1/dashboard/price-trend
func (h *Handlers) PriceTrend(c *fiber.Ctx) error {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	data, err := h.Service.PriceTrend(c.Context(), userID)
	if err != nil {
		return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
	}
	return response.Success(c, "Price trend fetched successfully", data, nil)
}

// Notifications GET /api/v1/dashboard/notifications
func (h *Handlers) Notifications(c *fiber.Ctx) error {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	data, err := h.Service.Notifications(c.Context(), userID, c.QueryInt("limit", 20))
	if err != nil {
		return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
	}
	return response.Success(c, "Notifications fetched successfully", data, nil)
}

// MarkNotificationRead POST /api/v1/dashboard/notifications/:id/read
func (h *Handlers) MarkNotificationRead(c *fiber.Ctx) error {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.BadRequest(c, "Invalid notification id", nil)
	}
	if err := h.Service.MarkNotificationRead(c.Context(), userID, id); err != nil {
		if err == gorm.ErrRecordNotFound {
			return response.NotFound(c, "Notification not found")
		}
		return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
	}
	return response.Success(c, "Notification marked as read", nil, nil)
}
