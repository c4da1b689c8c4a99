package models

type Item struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`
	Price       float64 `json:"price"`
	StoreID     int64   `json:"store_id"`
}

type ItemDetail struct {
	Item
	Tags []*Tag `json:"tags"`
}
