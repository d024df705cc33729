package models

// Options carries the buyer's selections for one cart line. Which
// fields are meaningful depends on the product: tees use style+size,
// caps use style+color, single-SKU items use none.
type Options struct {
	Material string `json:"material,omitempty"`
	Color    string `json:"color,omitempty"`
	Size     string `json:"size,omitempty"`
	Fit      string `json:"fit,omitempty"`
	Style    string `json:"style,omitempty"`
	Variant  string `json:"variant,omitempty"`
}

// Variant describes one style of a product: the colors it comes in,
// an optional price override, and the SKU maps that turn a selection
// into an inventory key.
type Variant struct {
	Colors       []string
	PriceCents   int64 // 0 means inherit the product base price
	SKUBySize    map[string]string
	SKUByColor   map[string]string
	ImageByColor map[string]string
}

// Product is one sellable item in the static merch catalog.
// The catalog is compiled in; only inventory quantities and orders
// are persisted.
type Product struct {
	ID         string
	Slug       string
	Name       string
	PriceCents int64
	Styles     []string
	Sizes      []string
	Colors     []string
	Variants   map[string]Variant
	// SingleSKU marks products with no variant dimensions whose
	// product id doubles as the inventory key.
	SingleSKU bool
}

// Catalog is an immutable snapshot of the product list with an id index.
type Catalog struct {
	products []Product
	byID     map[string]*Product
}

func NewCatalog(products []Product) *Catalog {
	c := &Catalog{products: products, byID: make(map[string]*Product, len(products))}
	for i := range c.products {
		c.byID[c.products[i].ID] = &c.products[i]
	}
	return c
}

func (c *Catalog) Products() []Product { return c.products }

func (c *Catalog) ByID(id string) (*Product, bool) {
	p, ok := c.byID[id]
	return p, ok
}

// DefaultCatalog returns the storefront merch catalog.
func DefaultCatalog() *Catalog {
	return NewCatalog([]Product{
		{
			ID:         "classic-logo-tee",
			Slug:       "classic-logo-tee",
			Name:       "Classic Logo Tee",
			PriceCents: 2800,
			Styles:     []string{"Heather Grey", "Navy"},
			Sizes:      []string{"S", "M", "L", "XL", "2XL"},
			Variants: map[string]Variant{
				"Heather Grey": {
					SKUBySize: map[string]string{
						"S": "TEE-GRY-S", "M": "TEE-GRY-M", "L": "TEE-GRY-L",
						"XL": "TEE-GRY-XL", "2XL": "TEE-GRY-2XL",
					},
				},
				"Navy": {
					PriceCents: 3000,
					SKUBySize: map[string]string{
						"S": "TEE-NVY-S", "M": "TEE-NVY-M", "L": "TEE-NVY-L",
						"XL": "TEE-NVY-XL", "2XL": "TEE-NVY-2XL",
					},
				},
			},
		},
		{
			ID:         "forecast-hoodie",
			Slug:       "forecast-hoodie",
			Name:       "Forecast Hoodie",
			PriceCents: 5500,
			Styles:     []string{"Black"},
			Sizes:      []string{"S", "M", "L", "XL", "2XL"},
			Variants: map[string]Variant{
				"Black": {
					SKUBySize: map[string]string{
						"S": "HOOD-BLK-S", "M": "HOOD-BLK-M", "L": "HOOD-BLK-L",
						"XL": "HOOD-BLK-XL", "2XL": "HOOD-BLK-2XL",
					},
				},
			},
		},
		{
			ID:         "trucker-cap",
			Slug:       "trucker-cap",
			Name:       "Trucker Cap",
			PriceCents: 2400,
			Styles:     []string{"Classic"},
			Colors:     []string{"Orange", "Black", "Forest"},
			Variants: map[string]Variant{
				"Classic": {
					Colors: []string{"Orange", "Black", "Forest"},
					SKUByColor: map[string]string{
						"Orange": "CAP-ORG", "Black": "CAP-BLK", "Forest": "CAP-FOR",
					},
					ImageByColor: map[string]string{
						"Orange": "/img/cap-orange.jpg",
						"Black":  "/img/cap-black.jpg",
						"Forest": "/img/cap-forest.jpg",
					},
				},
			},
		},
		{
			ID:         "sticker-pack",
			Slug:       "sticker-pack",
			Name:       "Sticker Pack",
			PriceCents: 600,
			SingleSKU:  true,
		},
		{
			ID:         "enamel-pin",
			Slug:       "enamel-pin",
			Name:       "Enamel Pin",
			PriceCents: 900,
			SingleSKU:  true,
		},
	})
}
