package inventory

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	importsvc "mazal-backend/internal/application/imports"
	invsvc "mazal-backend/internal/application/inventory"
	"mazal-backend/internal/application/reconcile"
	"mazal-backend/internal/middleware"
	"mazal-backend/internal/pkg/response"
	"mazal-backend/internal/pkg/validation"

	"github.com/gofiber/fiber/v2"
)

// Handlers holds dependencies for inventory endpoints.
type Handlers struct {
	Service    *invsvc.Service
	Imports    *importsvc.Service
	Reconciler *reconcile.Queue
}

// List GET /api/v1/inventory — the user's diamonds with search, filters and
// pagination. Fetch failures degrade inside the service (empty or demo list),
// so this always answers 200 for an authenticated user.
func (h *Handlers) List(c *fiber.Ctx) error {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	diamonds := h.Service.List(c.Context(), userID)
	filtered := invsvc.Filter(diamonds, invsvc.ListFilter{
		Query:   c.Query("q"),
		Shape:   c.Query("shape"),
		Color:   c.Query("color"),
		Clarity: c.Query("clarity"),
		Status:  c.Query("status"),
	})
	page := c.QueryInt("page", 1)
	pageSize := c.QueryInt("page_size", invsvc.DefaultPageSize)
	paged, total := invsvc.Paginate(filtered, page, pageSize)

	return response.Success(c, fmt.Sprintf("%d diamonds", total), paged, fiber.Map{
		"total":     total,
		"page":      page,
		"page_size": pageSize,
	})
}

// Add POST /api/v1/inventory — validate, then insert. Validation failures
// return 400 with per-field details and cause no backend call.
func (h *Handlers) Add(c *fiber.Ctx) error {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	var in invsvc.FormInput
	if err := c.BodyParser(&in); err != nil {
		return response.BadRequest(c, "Invalid request body", nil)
	}
	if errs := validateForm(in); len(errs) > 0 {
		return response.BadRequest(c, "Validation failed", errs)
	}

	stock, err := h.Service.Add(c.Context(), userID, in)
	if err != nil {
		if err == invsvc.ErrDuplicateStock {
			return response.Error(c, err.Error(), fiber.StatusConflict, nil)
		}
		return response.Error(c, "Failed to add diamond. Please try again.", fiber.StatusInternalServerError, nil)
	}
	return response.SuccessCreated(c, "Diamond added successfully", fiber.Map{
		"stockNumber": stock,
	}, nil)
}

// Update PUT /api/v1/inventory/:stock_number — full-record replace.
func (h *Handlers) Update(c *fiber.Ctx) error {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	stock := c.Params("stock_number")
	if !validation.IsValidStockNumber(stock) {
		return response.BadRequest(c, invsvc.ErrInvalidStockNumber.Error(), nil)
	}

	var in invsvc.FormInput
	if err := c.BodyParser(&in); err != nil {
		return response.BadRequest(c, "Invalid request body", nil)
	}
	if errs := validateForm(in); len(errs) > 0 {
		return response.BadRequest(c, "Validation failed", errs)
	}

	if err := h.Service.Update(c.Context(), userID, stock, in); err != nil {
		switch err {
		case invsvc.ErrNotFound:
			return response.NotFound(c, err.Error())
		case invsvc.ErrDuplicateStock:
			return response.Error(c, err.Error(), fiber.StatusConflict, nil)
		case invsvc.ErrInvalidStockNumber:
			return response.BadRequest(c, err.Error(), nil)
		default:
			return response.Error(c, "Failed to update diamond. Please try again.", fiber.StatusInternalServerError, nil)
		}
	}
	return response.Success(c, "Diamond updated successfully", nil, nil)
}

// Delete DELETE /api/v1/inventory/:stock_number — dual-backend delete;
// success reflects the inventory store only.
func (h *Handlers) Delete(c *fiber.Ctx) error {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	stock := c.Params("stock_number")
	if !validation.IsValidStockNumber(stock) {
		return response.BadRequest(c, invsvc.ErrInvalidStockNumber.Error(), nil)
	}

	if err := h.Service.Delete(c.Context(), userID, stock); err != nil {
		switch err {
		case invsvc.ErrNotFound:
			return response.NotFound(c, err.Error())
		case invsvc.ErrInvalidStockNumber:
			return response.BadRequest(c, err.Error(), nil)
		default:
			return response.Error(c, "Failed to delete diamond. Please try again.", fiber.StatusInternalServerError, nil)
		}
	}
	return response.Success(c, fmt.Sprintf("Diamond %s deleted successfully", strings.TrimSpace(stock)), nil, nil)
}

// Import POST /api/v1/inventory/import — multipart "file" field, CSV or XLSX
// by extension. All-or-nothing insert.
func (h *Handlers) Import(c *fiber.Ctx) error {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return response.BadRequest(c, "A CSV or XLSX file is required", nil)
	}
	f, err := fileHeader.Open()
	if err != nil {
		return response.BadRequest(c, "Failed to read uploaded file", nil)
	}
	defer f.Close()

	var count int
	name := strings.ToLower(fileHeader.Filename)
	switch {
	case strings.HasSuffix(name, ".xlsx"):
		count, err = h.Imports.ImportXLSX(c.Context(), userID, f)
	case strings.HasSuffix(name, ".csv"):
		count, err = h.Imports.ImportCSV(c.Context(), userID, f)
	default:
		// Sniff: XLSX files are zip archives ("PK").
		head := make([]byte, 2)
		n, _ := f.Read(head)
		full := io.MultiReader(bytes.NewReader(head[:n]), f)
		if bytes.Equal(head[:n], []byte("PK")) {
			count, err = h.Imports.ImportXLSX(c.Context(), userID, full)
		} else {
			count, err = h.Imports.ImportCSV(c.Context(), userID, full)
		}
	}
	if err != nil {
		switch err {
		case importsvc.ErrEmptyFile, importsvc.ErrMissingColumns:
			return response.BadRequest(c, err.Error(), nil)
		default:
			return response.Error(c, err.Error(), fiber.StatusInternalServerError, nil)
		}
	}

	return response.Success(c, "Upload successful", fiber.Map{
		"totalItems": count,
	}, nil)
}

// Reconciliation GET /api/v1/inventory/reconciliation — pending backend
// divergences (store succeeded, API failed). Inspection only; nothing
// consumes this queue automatically.
func (h *Handlers) Reconciliation(c *fiber.Ctx) error {
	if h.Reconciler == nil {
		return response.Success(c, "No reconciliation queue configured", []interface{}{}, nil)
	}
	entries, err := h.Reconciler.Pending(c.Context(), int64(c.QueryInt("limit", 50)))
	if err != nil {
		return response.Error(c, "Failed to read reconciliation queue", fiber.StatusInternalServerError, nil)
	}
	return response.Success(c, "Pending reconciliation entries", entries, fiber.Map{"count": len(entries)})
}

func validateForm(in invsvc.FormInput) map[string]string {
	return validation.ValidateDiamond(validation.DiamondFields{
		StockNumber: in.StockNumber,
		Shape:       in.Shape,
		Color:       in.Color,
		Clarity:     in.Clarity,
		Status:      in.Status,
		Carat:       in.Carat,
		Price:       in.Price,
	})
}
