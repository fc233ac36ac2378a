package users

import "github.com/shopspring/decimal"

// Badge tier names, highest first. A user carries at most one tier badge;
// hitting a tier requires both the sales floor and the rating floor.
const (
	BadgeLegend   = "legend"
	BadgeElite    = "elite"
	BadgeChampion = "champion"
	BadgeStar     = "star"
	BadgeVerified = "verified"
)

type badgeTier struct {
	name      string
	minSales  int
	minRating decimal.Decimal
}

var badgeTiers = []badgeTier{
	{name: BadgeLegend, minSales: 200, minRating: decimal.NewFromFloat(4.5)},
	{name: BadgeElite, minSales: 100, minRating: decimal.NewFromFloat(4.8)},
	{name: BadgeChampion, minSales: 50, minRating: decimal.NewFromFloat(4.5)},
	{name: BadgeStar, minSales: 25, minRating: decimal.NewFromFloat(4.7)},
	{name: BadgeVerified, minSales: 10, minRating: decimal.NewFromFloat(4.0)},
}

// BadgeFor returns the highest tier badge earned, or "" when none applies.
func BadgeFor(totalSales int, avgRating decimal.Decimal) string {
	for _, tier := range badgeTiers {
		if totalSales >= tier.minSales && avgRating.GreaterThanOrEqual(tier.minRating) {
			return tier.name
		}
	}
	return ""
}
