package models

// Store owns items and tags. Deleting a store removes both.
type Store struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// StoreDetail is a store together with everything it owns.
type StoreDetail struct {
	Store
	Items []*Item `json:"items"`
	Tags  []*Tag  `json:"tags"`
}
