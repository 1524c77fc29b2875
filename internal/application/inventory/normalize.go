package inventory

import (
	"fmt"
	"math"
	"math/rand"

	"mazal-backend/internal/domain"
	"mazal-backend/internal/infrastructure/inventoryapi"
)

// visibleTo applies the per-user visibility policy: a stone is kept when its
// owners list contains userID, its direct owner field equals userID, or it
// carries no ownership information at all. The last clause means unowned
// stones pass through to every user; the upstream system behaves this way and
// the dashboard reproduces it (see the known-gap test in normalize_test.go).
// An absent owners field (nil after decode) counts as no ownership info; a
// present-but-empty list is an ownership claim that matches nobody.
func visibleTo(s inventoryapi.Stone, userID int64) bool {
	for _, o := range s.Owners {
		if o == userID {
			return true
		}
	}
	if s.OwnerID != nil && *s.OwnerID == userID {
		return true
	}
	return s.Owners == nil && s.OwnerID == nil
}

// ownedBy is the strict variant used for dashboard aggregation: owners list or
// direct owner only, unowned stones excluded.
func ownedBy(s inventoryapi.Stone, userID int64) bool {
	for _, o := range s.Owners {
		if o == userID {
			return true
		}
	}
	return s.OwnerID != nil && *s.OwnerID == userID
}

// NormalizeForDisplay converts raw API stones into the dashboard's Diamond
// shape, filtering by user visibility. Order is preserved; malformed or
// missing fields degrade to defaults rather than failing. A userID of 0
// disables filtering.
func NormalizeForDisplay(stones []inventoryapi.Stone, userID int64) []domain.Diamond {
	out := make([]domain.Diamond, 0, len(stones))
	for _, s := range stones {
		if userID != 0 && !visibleTo(s, userID) {
			continue
		}
		out = append(out, normalizeStone(s))
	}
	return out
}

// FilterOwned returns only stones strictly owned by userID (dashboard stats path).
func FilterOwned(stones []inventoryapi.Stone, userID int64) []inventoryapi.Stone {
	if userID == 0 {
		return stones
	}
	out := make([]inventoryapi.Stone, 0, len(stones))
	for _, s := range stones {
		if ownedBy(s, userID) {
			out = append(out, s)
		}
	}
	return out
}

func normalizeStone(s inventoryapi.Stone) domain.Diamond {
	carat := 0.0
	if s.Weight != nil {
		carat = *s.Weight
	} else if s.Carat != nil {
		carat = *s.Carat
	}

	var price int64
	if s.Price != nil {
		price = *s.Price
	} else if s.PricePerCarat != nil {
		price = int64(math.Round(*s.PricePerCarat * carat))
	}

	stock := s.StockNumber
	if stock == "" {
		stock = s.Stock
	}
	if stock == "" {
		if s.ID != nil {
			stock = fmt.Sprintf("D%d", *s.ID)
		} else {
			stock = fmt.Sprintf("D%d", rand.Intn(10000))
		}
	}

	id := ""
	if s.ID != nil {
		id = fmt.Sprintf("%d", *s.ID)
	}

	return domain.Diamond{
		ID:             id,
		StockNumber:    stock,
		Shape:          orDefault(s.Shape, "Unknown"),
		Carat:          carat,
		Color:          orDefault(s.Color, "Unknown"),
		Clarity:        orDefault(s.Clarity, "Unknown"),
		Cut:            orDefault(s.Cut, "Excellent"),
		Polish:         orDefault(s.Polish, "Excellent"),
		Symmetry:       orDefault(s.Symmetry, "Excellent"),
		Price:          price,
		Status:         orDefault(s.Status, domain.StatusAvailable),
		ImageURL:       s.Picture,
		CertificateURL: s.CertificateURL,
	}
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
