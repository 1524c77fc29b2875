package inventory

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"mazal-backend/internal/application/reconcile"
	"mazal-backend/internal/domain"
	"mazal-backend/internal/infrastructure/inventoryapi"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// Service orchestrates inventory reads and writes across the two backends:
// reads come from the external inventory API (with fallback), writes go to the
// inventory store (stored procedure first, direct table fallback), and deletes
// additionally issue a best-effort API delete.
type Service struct {
	DB         *gorm.DB
	API        inventoryapi.Client
	Reconciler *reconcile.Queue
	DemoMode   bool
}

// FormInput is the validated add/edit form payload (camelCase JSON from the
// web client). Validation happens at the handler boundary before these calls.
type FormInput struct {
	StockNumber    string  `json:"stockNumber"`
	Shape          string  `json:"shape"`
	Carat          float64 `json:"carat"`
	Color          string  `json:"color"`
	Clarity        string  `json:"clarity"`
	Cut            string  `json:"cut"`
	Polish         string  `json:"polish"`
	Symmetry       string  `json:"symmetry"`
	Price          int64   `json:"price"`
	Status         string  `json:"status"`
	ImageURL       string  `json:"imageUrl"`
	CertificateURL string  `json:"certificateUrl"`
}

// List returns the user's diamonds from the external API, normalized for
// display. Any failure degrades to an empty list — or a deterministic demo
// dataset when demo mode is on — rather than surfacing an error; no retries.
func (s *Service) List(ctx context.Context, userID int64) []domain.Diamond {
	if s.API == nil {
		return s.fallback(userID)
	}
	stones, err := s.API.GetAllStones(ctx, userID)
	if err != nil {
		log.Warn().Err(err).Int64("user_id", userID).Msg("Inventory fetch failed, using fallback")
		return s.fallback(userID)
	}
	return NormalizeForDisplay(stones, userID)
}

func (s *Service) fallback(userID int64) []domain.Diamond {
	if s.DemoMode {
		return DemoDiamonds(userID)
	}
	return []domain.Diamond{}
}

// Add inserts a diamond for the user, generating a stock number when blank.
// Returns the stock number under which the record was stored.
func (s *Service) Add(ctx context.Context, userID int64, in FormInput) (string, error) {
	stock := strings.TrimSpace(in.StockNumber)
	if stock == "" {
		stock = GenerateStockNumber()
	}

	var count int64
	if err := s.DB.WithContext(ctx).Model(&domain.InventoryRecord{}).
		Where("user_id = ? AND stock_number = ?", userID, stock).Count(&count).Error; err != nil {
		return "", fmt.Errorf("Failed to add diamond: %v", err)
	}
	if count > 0 {
		return "", ErrDuplicateStock
	}

	rec := recordFromForm(userID, stock, in)

	// Stored procedure first; direct insert when the function is absent.
	err := s.DB.WithContext(ctx).Exec(
		"SELECT add_diamond_for_user(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
		rec.UserID, rec.StockNumber, rec.Shape, rec.Weight, rec.Color, rec.Clarity,
		rec.Cut, rec.Polish, rec.Symmetry, rec.PricePerCarat, rec.Status, rec.Picture,
		rec.CertificateURL,
	).Error
	if err != nil {
		if !isMissingProcedure(err) {
			return "", fmt.Errorf("Failed to add diamond: %v", err)
		}
		log.Debug().Msg("add_diamond_for_user not available, falling back to direct insert")
		if err := s.DB.WithContext(ctx).Create(&rec).Error; err != nil {
			if isDuplicateKey(err) {
				return "", ErrDuplicateStock
			}
			return "", fmt.Errorf("Failed to add diamond: %v", err)
		}
	}
	return stock, nil
}

// Update replaces the record identified by stockNumber for the user. Exactly
// one row must be affected or the record is treated as not found.
func (s *Service) Update(ctx context.Context, userID int64, stockNumber string, in FormInput) error {
	stockNumber = strings.TrimSpace(stockNumber)
	if stockNumber == "" {
		return ErrInvalidStockNumber
	}

	rec := recordFromForm(userID, stockNumber, in)
	if newStock := strings.TrimSpace(in.StockNumber); newStock != "" {
		rec.StockNumber = newStock
	}

	var found bool
	err := s.DB.WithContext(ctx).Raw(
		"SELECT update_diamond_for_user(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
		userID, stockNumber, rec.StockNumber, rec.Shape, rec.Weight, rec.Color, rec.Clarity,
		rec.Cut, rec.Polish, rec.Symmetry, rec.PricePerCarat, rec.Status, rec.Picture,
		rec.CertificateURL,
	).Scan(&found).Error
	if err == nil {
		if !found {
			return ErrNotFound
		}
		return nil
	}
	if !isMissingProcedure(err) {
		return fmt.Errorf("Update failed: %v", err)
	}

	updates := map[string]interface{}{
		"stock_number":    rec.StockNumber,
		"shape":           rec.Shape,
		"weight":          rec.Weight,
		"color":           rec.Color,
		"clarity":         rec.Clarity,
		"cut":             rec.Cut,
		"polish":          rec.Polish,
		"symmetry":        rec.Symmetry,
		"price_per_carat": rec.PricePerCarat,
		"status":          rec.Status,
		"picture":         rec.Picture,
		"certificate_url": rec.CertificateURL,
		"updated_at":      time.Now(),
	}
	res := s.DB.WithContext(ctx).Model(&domain.InventoryRecord{}).
		Where("stock_number = ? AND user_id = ?", stockNumber, userID).
		Updates(updates)
	if res.Error != nil {
		if isDuplicateKey(res.Error) {
			return ErrDuplicateStock
		}
		return fmt.Errorf("Update failed: %v", res.Error)
	}
	if res.RowsAffected != 1 {
		return ErrNotFound
	}
	return nil
}

// Delete removes the record from both backends. The external API delete is
// best-effort: its failure is logged and queued for reconciliation but does
// not fail the operation — success reflects the inventory store only, so the
// backends can diverge after a "successful" delete.
func (s *Service) Delete(ctx context.Context, userID int64, stockNumber string) error {
	stockNumber = strings.TrimSpace(stockNumber)
	if stockNumber == "" {
		return ErrInvalidStockNumber
	}

	if s.API != nil {
		if err := s.API.DeleteStone(ctx, stockNumber, userID); err != nil {
			log.Warn().Err(err).Str("stock_number", stockNumber).Int64("user_id", userID).
				Msg("External inventory API delete failed; backends may diverge")
			if s.Reconciler != nil {
				if qerr := s.Reconciler.Enqueue(ctx, reconcile.Entry{
					StockNumber: stockNumber,
					UserID:      userID,
					Backend:     "inventory_api",
					Operation:   "delete",
					Reason:      err.Error(),
				}); qerr != nil {
					log.Error().Err(qerr).Msg("Failed to enqueue reconciliation entry")
				}
			}
		}
	}

	var found bool
	err := s.DB.WithContext(ctx).Raw(
		"SELECT delete_diamond(?, ?)", stockNumber, userID,
	).Scan(&found).Error
	if err == nil {
		if !found {
			return ErrNotFound
		}
		return nil
	}
	if !isMissingProcedure(err) {
		return fmt.Errorf("Delete failed: %v", err)
	}

	res := s.DB.WithContext(ctx).
		Where("stock_number = ? AND user_id = ?", stockNumber, userID).
		Delete(&domain.InventoryRecord{})
	if res.Error != nil {
		return fmt.Errorf("Delete failed: %v", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// GenerateStockNumber produces a D<digits> business identifier from the
// current time (last six digits of unix millis).
func GenerateStockNumber() string {
	return fmt.Sprintf("D%06d", time.Now().UnixMilli()%1000000)
}

// recordFromForm translates the form payload into the store's record shape:
// price_per_carat is derived from total price. A cut grade is carried only for
// Round stones (non-Round records keep polish/symmetry instead), and a Round
// stone without one gets Excellent so the record never loses its cut.
func recordFromForm(userID int64, stock string, in FormInput) domain.InventoryRecord {
	rec := domain.InventoryRecord{
		UserID:      userID,
		StockNumber: stock,
		Shape:       orDefault(in.Shape, domain.ShapeRound),
		Weight:      in.Carat,
		Color:       in.Color,
		Clarity:     in.Clarity,
		Polish:      orDefault(in.Polish, "Excellent"),
		Symmetry:    orDefault(in.Symmetry, "Excellent"),
		Status:      orDefault(in.Status, domain.StatusAvailable),
	}
	if rec.Shape == domain.ShapeRound {
		cut := orDefault(in.Cut, "Excellent")
		rec.Cut = &cut
	}
	if in.Price > 0 && in.Carat > 0 {
		ppc := int64(math.Round(float64(in.Price) / in.Carat))
		rec.PricePerCarat = &ppc
	}
	if in.ImageURL != "" {
		img := in.ImageURL
		rec.Picture = &img
	}
	if in.CertificateURL != "" {
		cert := in.CertificateURL
		rec.CertificateURL = &cert
	}
	return rec
}

// isMissingProcedure matches the errors Postgres (42883, "does not exist") and
// SQLite ("no such function") raise when a stored procedure is absent, which
// selects the direct-table fallback path.
func isMissingProcedure(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "does not exist") ||
		strings.Contains(msg, "no such function")
}

func isDuplicateKey(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "unique constraint")
}
