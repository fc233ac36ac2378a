package enums

import "fmt"

// ListingCategory buckets listings for browsing and trend rollups.
type ListingCategory string

const (
	ListingCategoryRoblox   ListingCategory = "roblox"
	ListingCategorySkins    ListingCategory = "skins"
	ListingCategoryCurrency ListingCategory = "currency"
	ListingCategoryRare     ListingCategory = "rare"
	ListingCategoryAnime    ListingCategory = "anime"
	ListingCategoryVanguard ListingCategory = "vanguard"
	ListingCategoryOther    ListingCategory = "other"
)

var validListingCategories = []ListingCategory{
	ListingCategoryRoblox,
	ListingCategorySkins,
	ListingCategoryCurrency,
	ListingCategoryRare,
	ListingCategoryAnime,
	ListingCategoryVanguard,
	ListingCategoryOther,
}

// String implements fmt.Stringer.
func (c ListingCategory) String() string {
	return string(c)
}

// IsValid reports whether the value is a known ListingCategory.
func (c ListingCategory) IsValid() bool {
	for _, candidate := range validListingCategories {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseListingCategory converts raw input into a ListingCategory.
func ParseListingCategory(value string) (ListingCategory, error) {
	for _, candidate := range validListingCategories {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid listing category %q", value)
}
