package listings

import (
	"github.com/shopspring/decimal"

	"github.com/Zymart/shopbot-backend/pkg/db/models"
	"github.com/Zymart/shopbot-backend/pkg/enums"
	"github.com/Zymart/shopbot-backend/pkg/pagination"
)

// ListingFilters narrows the active-listing browse query.
type ListingFilters struct {
	Category *enums.ListingCategory
	SellerID *string
	PriceMin *decimal.Decimal
	PriceMax *decimal.Decimal
	Query    string
}

// ListActiveInput carries pagination plus filters for the browse endpoint.
type ListActiveInput struct {
	Pagination pagination.Params
	Filters    ListingFilters
}

// ListingListResult is one page of listings plus the cursor for the next.
type ListingListResult struct {
	Listings   []models.Listing
	NextCursor string
}
