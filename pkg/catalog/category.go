package catalog

// Category keys used across the storefront.
const (
	CategoryJewelries = "jewelries"
	CategoryClothings = "clothings"
	CategoryDrinks    = "drinks"
)

// CategoryInfo describes a landing-page category tile.
type CategoryInfo struct {
	Key      string `json:"key"`
	Label    string `json:"label"`
	Subtitle string `json:"subtitle"`
}

// Categories returns the storefront categories in display order.
func Categories() []CategoryInfo {
	return []CategoryInfo{
		{Key: CategoryJewelries, Label: "Jewelries", Subtitle: "Delicate & timeless pieces"},
		{Key: CategoryClothings, Label: "Clothings", Subtitle: "Comfortable, stylish wear"},
		{Key: CategoryDrinks, Label: "Drinks", Subtitle: "Refreshing & curated beverages"},
	}
}

// ImagesPath is the site path images are served from.
const ImagesPath = "/data/images/"

// DefaultThumbnail is shown for a category with no product images.
const DefaultThumbnail = ImagesPath + "C1.jpg"

// PlaceholderImage is the inline SVG used to pad product galleries.
const PlaceholderImage = "data:image/svg+xml;base64,PHN2ZyB3aWR0aD0iNjgiIGhlaWdodD0iNjgiIHZpZXdCb3g9IjAgMCA2OCA2OCIgeG1sbnM9Imh0dHA6Ly93d3cudzMub3JnLzIwMDAvc3ZnIj48cmVjdCB3aWR0aD0iMTAwJSIgaGVpZ2h0PSIxMDAlIiBmaWxsPSIjZGRkIi8+PHRleHQgeD0iNTAlIiB5PSI1MCUiIGZvbnQtc2l6ZT0iMTAiIGZpbGw9IiM5OTkiIHRleHQtYW5jaG9yPSJtaWRkbGUiIGR5PSIuM2VtIj5ObyBJbWFnZTwvdGV4dD48L3N2Zz4="
