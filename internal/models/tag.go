package models

type Tag struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	StoreID int64  `json:"store_id"`
}

type TagDetail struct {
	Tag
	Items []*Item `json:"items"`
}
