package imports

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"mazal-backend/internal/application/inventory"
	"mazal-backend/internal/domain"

	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

// Service bulk-imports inventory rows from an uploaded CSV or XLSX file. The
// whole file inserts in one transaction: a bad row fails the import without
// itemizing per-row errors.
type Service struct {
	DB *gorm.DB
}

var ErrEmptyFile = errors.New("File contains no data rows")
var ErrMissingColumns = errors.New("File must contain Stock #, Shape, Carat, Color, Clarity and Price columns")

// header aliases, lowercased
var columnAliases = map[string]string{
	"stock #":      "stock",
	"stock number": "stock",
	"stock":        "stock",
	"shape":        "shape",
	"carat":        "carat",
	"weight":       "carat",
	"color":        "color",
	"clarity":      "clarity",
	"price":        "price",
	"cut":          "cut",
	"polish":       "polish",
	"symmetry":     "symmetry",
	"status":       "status",
}

// ImportCSV parses r as CSV and inserts one record per row for userID.
// Returns the inserted row count.
func (s *Service) ImportCSV(ctx context.Context, userID int64, r io.Reader) (int, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return 0, fmt.Errorf("Failed to parse CSV: %v", err)
	}
	return s.importRows(ctx, userID, rows)
}

// ImportXLSX parses r as an Excel workbook (first sheet) and imports it.
func (s *Service) ImportXLSX(ctx context.Context, userID int64, r io.Reader) (int, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return 0, fmt.Errorf("Failed to parse XLSX: %v", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return 0, ErrEmptyFile
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return 0, fmt.Errorf("Failed to read XLSX rows: %v", err)
	}
	return s.importRows(ctx, userID, rows)
}

func (s *Service) importRows(ctx context.Context, userID int64, rows [][]string) (int, error) {
	if len(rows) < 2 {
		return 0, ErrEmptyFile
	}

	cols := mapHeader(rows[0])
	for _, required := range []string{"shape", "carat", "color", "clarity", "price"} {
		if _, ok := cols[required]; !ok {
			return 0, ErrMissingColumns
		}
	}

	records := make([]domain.InventoryRecord, 0, len(rows)-1)
	for i, row := range rows[1:] {
		if isBlankRow(row) {
			continue
		}
		rec, err := recordFromRow(userID, cols, row)
		if err != nil {
			return 0, fmt.Errorf("Row %d: %v", i+2, err)
		}
		records = append(records, rec)
	}
	if len(records) == 0 {
		return 0, ErrEmptyFile
	}

	// All-or-nothing insert.
	if err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.CreateInBatches(records, 100).Error
	}); err != nil {
		return 0, fmt.Errorf("Failed to import inventory: %v", err)
	}
	return len(records), nil
}

func mapHeader(header []string) map[string]int {
	cols := make(map[string]int)
	for i, h := range header {
		key := strings.ToLower(strings.TrimSpace(h))
		if name, ok := columnAliases[key]; ok {
			if _, exists := cols[name]; !exists {
				cols[name] = i
			}
		}
	}
	return cols
}

func isBlankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

func recordFromRow(userID int64, cols map[string]int, row []string) (domain.InventoryRecord, error) {
	cell := func(name string) string {
		i, ok := cols[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	carat, err := strconv.ParseFloat(cell("carat"), 64)
	if err != nil || carat <= 0 {
		return domain.InventoryRecord{}, errors.New("carat must be a positive number")
	}
	price, err := strconv.ParseFloat(strings.ReplaceAll(cell("price"), ",", ""), 64)
	if err != nil || price <= 0 {
		return domain.InventoryRecord{}, errors.New("price must be a positive number")
	}

	shape := cell("shape")
	if shape == "" {
		shape = domain.ShapeRound
	}

	stock := cell("stock")
	if stock == "" {
		stock = inventory.GenerateStockNumber()
	}

	ppc := int64(math.Round(price / carat))
	rec := domain.InventoryRecord{
		UserID:        userID,
		StockNumber:   stock,
		Shape:         shape,
		Weight:        carat,
		Color:         cell("color"),
		Clarity:       cell("clarity"),
		Polish:        defaultStr(cell("polish"), "Excellent"),
		Symmetry:      defaultStr(cell("symmetry"), "Excellent"),
		PricePerCarat: &ppc,
		Status:        defaultStr(cell("status"), domain.StatusAvailable),
	}
	if shape == domain.ShapeRound {
		if cut := cell("cut"); cut != "" {
			rec.Cut = &cut
		}
	}
	return rec, nil
}

func defaultStr(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
