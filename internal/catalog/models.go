package catalog

import "time"

type PremadeListing struct {
	ID          int       `json:"id"`
	Title       string    `json:"title"`
	Description *string   `json:"description"`
	ImageLink   *string   `json:"image_link"`
	Price       float64   `json:"price"`
	DateListed  time.Time `json:"date_listed"`
}

type CustomListing struct {
	ID            int     `json:"id"`
	Title         string  `json:"title"`
	Description   *string `json:"description"`
	ImageLink     *string `json:"image_link"`
	StartingPrice float64 `json:"starting_price"`
}

// ListingInput is the validated write model for both listing kinds. Price
// is the fixed price for pre-made listings and the starting price for
// custom ones.
type ListingInput struct {
	Title       string
	Description *string
	ImageLink   *string
	Price       float64
}

type Sort string

const (
	SortNewest Sort = "newest"
	SortPrice  Sort = "price"
)

// ParseSort maps a query value to a Sort. Anything unknown sorts newest first.
func ParseSort(s string) Sort {
	if Sort(s) == SortPrice {
		return SortPrice
	}
	return SortNewest
}

func (s Sort) orderBy() string {
	if s == SortPrice {
		return "price ASC, id ASC"
	}
	return "date_listed DESC, id DESC"
}
