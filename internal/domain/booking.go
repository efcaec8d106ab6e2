package domain

type Status string

const (
	StatusPending    Status = "pending"
	StatusAssigned   Status = "assigned"
	StatusInProgress Status = "in-progress"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
)

// Terminal reports whether no further work is expected for s.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

const (
	ServiceLodgeClean = "Lodge Clean"
	ServiceBuyPack    = "Help Me Buy Pack"
	ServiceHome       = "Home & Apartment"
)

// BookableServices is the set of service names a booking may carry.
var BookableServices = []string{ServiceLodgeClean, ServiceBuyPack, ServiceHome}

func IsBookableService(name string) bool {
	for _, s := range BookableServices {
		if s == name {
			return true
		}
	}
	return false
}

type LineItem struct {
	ProductID string  `json:"productId,omitempty"`
	Name      string  `json:"name"`
	Qty       int     `json:"qty"`
	UnitPrice float64 `json:"unitPrice"`
	Subtotal  float64 `json:"subtotal"`
}

type OrderSummary struct {
	Items    []LineItem `json:"items"`
	Subtotal float64    `json:"subtotal"`
	Tax      float64    `json:"tax"`
	Shipping float64    `json:"shipping"`
	Total    float64    `json:"total"`
}

type Booking struct {
	ID              string        `json:"id"`
	CustomerID      string        `json:"-"`
	Customer        *Customer     `json:"customer,omitempty"`
	Service         string        `json:"service"`
	Price           float64       `json:"price"`
	Date            string        `json:"date,omitempty"`
	Items           []LineItem    `json:"items"`
	OrderSummary    *OrderSummary `json:"orderSummary,omitempty"`
	Status          Status        `json:"status"`
	AssignedTo      string        `json:"assignedTo,omitempty"`
	Store           string        `json:"store,omitempty"`
	ProductID       string        `json:"product,omitempty"`
	Notes           string        `json:"notes"`
	AdditionalNotes string        `json:"additionalNotes"`
	CreatedAt       string        `json:"createdAt"`
	UpdatedAt       string        `json:"updatedAt"`
}

// BookingEvent is what subscribers of a booking's channel receive.
type BookingEvent struct {
	Type       string `json:"type"`
	BookingID  string `json:"bookingId"`
	Status     Status `json:"status"`
	Timestamp  string `json:"timestamp"`
	AssignedTo string `json:"assignedTo,omitempty"`
}

const (
	EventCreated  = "booking.created"
	EventAssigned = "booking.assigned"
	EventStatus   = "booking.status"
)
