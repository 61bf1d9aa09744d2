package domain

type Category struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

type Tag struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Product is read-only from the client's point of view; the catalog is
// owned by the backend and priced independently in both currencies.
type Product struct {
	ID             int64     `json:"id"`
	Name           string    `json:"name"`
	Description    string    `json:"description,omitempty"`
	ImageURL       string    `json:"image_url,omitempty"`
	PriceShmeckles float64   `json:"price_shmeckles"`
	PriceFlurbos   float64   `json:"price_flurbos"`
	Category       *Category `json:"category,omitempty"`
	Tags           []Tag     `json:"tags"`
}
