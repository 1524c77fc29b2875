package inventory

import (
	"fmt"
	"math/rand"

	"mazal-backend/internal/domain"
)

// Demo mode serves a deterministic synthetic inventory when the API fetch
// fails, so demos never show an empty dashboard. Gated by config (DEMO_MODE);
// production keeps the honest empty-list failure path.

const demoSize = 12

var demoShapes = []string{"Round", "Princess", "Oval", "Emerald", "Cushion", "Pear"}
var demoColors = []string{"D", "E", "F", "G", "H", "I"}
var demoClarities = []string{"IF", "VVS1", "VVS2", "VS1", "VS2", "SI1"}

// DemoDiamonds returns a fixed-size synthetic dataset seeded by userID, so the
// same user always sees the same stones.
func DemoDiamonds(userID int64) []domain.Diamond {
	rng := rand.New(rand.NewSource(userID))
	out := make([]domain.Diamond, demoSize)
	for i := range out {
		carat := 0.5 + float64(rng.Intn(250))/100.0
		pricePerCarat := int64(2500 + rng.Intn(9500))
		shape := demoShapes[rng.Intn(len(demoShapes))]
		cut := ""
		if shape == domain.ShapeRound {
			cut = "Excellent"
		}
		out[i] = domain.Diamond{
			ID:          fmt.Sprintf("demo-%d", i+1),
			StockNumber: fmt.Sprintf("D%06d", 100000+rng.Intn(900000)),
			Shape:       shape,
			Carat:       carat,
			Color:       demoColors[rng.Intn(len(demoColors))],
			Clarity:     demoClarities[rng.Intn(len(demoClarities))],
			Cut:         cut,
			Polish:      "Excellent",
			Symmetry:    "Excellent",
			Price:       int64(float64(pricePerCarat) * carat),
			Status:      domain.StatusAvailable,
		}
	}
	return out
}
