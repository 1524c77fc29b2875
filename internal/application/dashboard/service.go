package dashboard

import (
	"context"
	"fmt"
	"sort"
	"time"

	"mazal-backend/internal/application/inventory"
	"mazal-backend/internal/domain"
	"mazal-backend/internal/infrastructure/inventoryapi"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// Service aggregates the user's inventory into the dashboard's stat cards and
// charts. Chart data comes from the external API stones (strict ownership
// filter, unlike the inventory list); the price trend comes from store rows.
type Service struct {
	DB  *gorm.DB
	API inventoryapi.Client
}

// Stats backs the four stat cards.
type Stats struct {
	TotalDiamonds       int `json:"totalDiamonds"`
	MatchedPairs        int `json:"matchedPairs"`
	TotalLeads          int `json:"totalLeads"`
	ActiveSubscriptions int `json:"activeSubscriptions"`
}

// ChartPoint is one bar/slice of a distribution chart.
type ChartPoint struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
}

// TrendPoint is one month of the price trend line.
type TrendPoint struct {
	Month            string  `json:"month"`
	AvgPricePerCarat float64 `json:"avgPricePerCarat"`
	Count            int     `json:"count"`
}

func (s *Service) userStones(ctx context.Context, userID int64) []inventoryapi.Stone {
	if s.API == nil {
		return nil
	}
	stones, err := s.API.GetAllStones(ctx, userID)
	if err != nil {
		log.Warn().Err(err).Int64("user_id", userID).Msg("Dashboard stone fetch failed")
		return nil
	}
	return inventory.FilterOwned(stones, userID)
}

// GetStats computes the stat cards: total count, matched pairs (two stones of
// the same shape-color-clarity make a pair), market diversity (unique shapes)
// and the high-value tier (price over 10000).
func (s *Service) GetStats(ctx context.Context, userID int64) Stats {
	stones := s.userStones(ctx, userID)

	pairKey := func(st inventoryapi.Stone) (string, bool) {
		if st.Shape == "" || st.Color == "" || st.Clarity == "" {
			return "", false
		}
		return st.Shape + "-" + st.Color + "-" + st.Clarity, true
	}

	pairs := make(map[string]int)
	shapes := make(map[string]bool)
	highValue := 0
	for _, st := range stones {
		if k, ok := pairKey(st); ok {
			pairs[k]++
		}
		if st.Shape != "" {
			shapes[st.Shape] = true
		}
		weight := 0.0
		if st.Weight != nil {
			weight = *st.Weight
		} else if st.Carat != nil {
			weight = *st.Carat
		}
		ppc := 0.0
		if st.PricePerCarat != nil {
			ppc = *st.PricePerCarat
		}
		if ppc*weight > 10000 {
			highValue++
		}
	}

	matched := 0
	for _, n := range pairs {
		matched += n / 2
	}

	return Stats{
		TotalDiamonds:       len(stones),
		MatchedPairs:        matched,
		TotalLeads:          len(shapes),
		ActiveSubscriptions: highValue,
	}
}

// InventoryByShape groups the user's stones by shape, descending by count.
func (s *Service) InventoryByShape(ctx context.Context, userID int64) []ChartPoint {
	stones := s.userStones(ctx, userID)
	counts := make(map[string]int)
	for _, st := range stones {
		if st.Shape != "" {
			counts[st.Shape]++
		}
	}
	return sortedPoints(counts, 0)
}

// SalesByCategory groups by color, top 8.
func (s *Service) SalesByCategory(ctx context.Context, userID int64) []ChartPoint {
	stones := s.userStones(ctx, userID)
	counts := make(map[string]int)
	for _, st := range stones {
		if st.Color != "" {
			counts[st.Color]++
		}
	}
	return sortedPoints(counts, 8)
}

func sortedPoints(counts map[string]int, limit int) []ChartPoint {
	out := make([]ChartPoint, 0, len(counts))
	for name, value := range counts {
		out = append(out, ChartPoint{Name: name, Value: value})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Value != out[j].Value {
			return out[i].Value > out[j].Value
		}
		return out[i].Name < out[j].Name
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// PriceTrend returns a 12-month average price-per-carat series from the
// user's store rows, oldest month first. Months with no records are omitted.
func (s *Service) PriceTrend(ctx context.Context, userID int64) ([]TrendPoint, error) {
	since := time.Now().AddDate(-1, 0, 0)
	var rows []domain.InventoryRecord
	if err := s.DB.WithContext(ctx).
		Where("user_id = ? AND created_at >= ? AND price_per_carat IS NOT NULL", userID, since).
		Order("created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("Failed to fetch price trend: %v", err)
	}

	type bucket struct {
		sum   float64
		count int
	}
	buckets := make(map[string]*bucket)
	order := make([]string, 0, 12)
	for _, r := range rows {
		m := r.CreatedAt.Format("2006-01")
		b, ok := buckets[m]
		if !ok {
			b = &bucket{}
			buckets[m] = b
			order = append(order, m)
		}
		b.sum += float64(*r.PricePerCarat)
		b.count++
	}

	out := make([]TrendPoint, 0, len(order))
	for _, m := range order {
		b := buckets[m]
		out = append(out, TrendPoint{
			Month:            m,
			AvgPricePerCarat: b.sum / float64(b.count),
			Count:            b.count,
		})
	}
	return out, nil
}

// Notifications returns the user's recent notifications, unread first then newest.
func (s *Service) Notifications(ctx context.Context, userID int64, limit int) ([]domain.Notification, error) {
	if limit <= 0 {
		limit = 20
	}
	var out []domain.Notification
	if err := s.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("read ASC, created_at DESC").
		Limit(limit).
		Find(&out).Error; err != nil {
		return nil, fmt.Errorf("Failed to fetch notifications: %v", err)
	}
	return out, nil
}

// MarkNotificationRead marks one of the user's notifications as read.
func (s *Service) MarkNotificationRead(ctx context.Context, userID int64, id uuid.UUID) error {
	res := s.DB.WithContext(ctx).Model(&domain.Notification{}).
		Where("id = ? AND user_id = ?", id, userID).
		Update("read", true)
	if res.Error != nil {
		return fmt.Errorf("Failed to update notification: %v", res.Error)
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
