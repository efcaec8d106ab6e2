package domain

type Customer struct {
	ID        string `db:"id" json:"id"`
	Name      string `db:"name" json:"name"`
	Phone     string `db:"phone" json:"phone"`
	Role      string `db:"role" json:"role"` // customer | admin
	CreatedAt string `db:"created_at" json:"createdAt"`
	UpdatedAt string `db:"updated_at" json:"updatedAt"`
}

type Store struct {
	ID        string `db:"id" json:"id"`
	Name      string `db:"name" json:"name"`
	Location  string `db:"location" json:"location"`
	Address   string `db:"address" json:"address"`
	Active    bool   `db:"active" json:"active"`
	CreatedAt string `db:"created_at" json:"createdAt"`
	UpdatedAt string `db:"updated_at" json:"updatedAt"`
}

type Product struct {
	ID          string  `db:"id" json:"id"`
	StoreID     string  `db:"store_id" json:"storeId"`
	Name        string  `db:"name" json:"name"`
	Price       float64 `db:"price" json:"price"`
	IsAvailable bool    `db:"is_available" json:"isAvailable"`
	Image       string  `db:"image" json:"image,omitempty"`
	Description string  `db:"description" json:"description,omitempty"`
	CreatedAt   string  `db:"created_at" json:"createdAt"`
	UpdatedAt   string  `db:"updated_at" json:"updatedAt"`
}

// Service is a catalog entry. Bookings copy its name and price at booking
// time, so edits here never touch existing bookings.
type Service struct {
	ID          string  `db:"id" json:"id"`
	Name        string  `db:"name" json:"name"`
	Price       float64 `db:"price" json:"price"`
	Description string  `db:"description" json:"description"`
	IsActive    bool    `db:"is_active" json:"isActive"`
	Icon        string  `db:"icon" json:"icon"`
	CreatedAt   string  `db:"created_at" json:"createdAt"`
	UpdatedAt   string  `db:"updated_at" json:"updatedAt"`
}

type Lodge struct {
	ID        string `db:"id" json:"id"`
	Name      string `db:"name" json:"name"`
	Location  string `db:"location" json:"location"`
	Status    string `db:"status" json:"status"` // pending | approved
	CreatedAt string `db:"created_at" json:"createdAt"`
	UpdatedAt string `db:"updated_at" json:"updatedAt"`
}

// Reaction counters. StoreStats also tracks completed orders.
type ProductStats struct {
	ProductID string `db:"product_id" json:"product"`
	Likes     int    `db:"likes" json:"likes"`
	Dislikes  int    `db:"dislikes" json:"dislikes"`
	UpdatedAt string `db:"updated_at" json:"updatedAt"`
}

type StoreStats struct {
	StoreID         string `db:"store_id" json:"store"`
	Likes           int    `db:"likes" json:"likes"`
	Dislikes        int    `db:"dislikes" json:"dislikes"`
	CompletedOrders int    `db:"completed_orders" json:"completedOrders"`
	UpdatedAt       string `db:"updated_at" json:"updatedAt"`
}
