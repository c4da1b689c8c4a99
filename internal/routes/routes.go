package routes

const (
	// Health
	Health  = "/health"
	Metrics = "/metrics"

	// Auth
	Register = "/api/v1/register"
	Login    = "/api/v1/login"
	Refresh  = "/api/v1/refresh"
	Logout   = "/api/v1/logout"
	User     = "/api/v1/user/{user_id}"

	// Stores
	Stores = "/api/v1/store"
	Store  = "/api/v1/store/{store_id}"

	// Items
	Items = "/api/v1/item"
	Item  = "/api/v1/item/{item_id}"

	// Tags
	StoreTags = "/api/v1/store/{store_id}/tag"
	Tag       = "/api/v1/tag/{tag_id}"
	ItemTag   = "/api/v1/item/{item_id}/tag/{tag_id}"
)
