package services

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"quickclean/internal/domain"
	"quickclean/internal/validate"
)

// ItemInput is a cart line as a caller sent it. Nil fields take defaults.
type ItemInput struct {
	ProductID string
	Name      string
	Qty       *int
	UnitPrice *float64
	Subtotal  *float64
}

type SummaryInput struct {
	Items    []ItemInput // nil means "use the booking's items"
	Subtotal *float64
	Tax      *float64
	Shipping *float64
	Total    *float64
}

// ServiceLine describes one booking to create.
type ServiceLine struct {
	Service         string
	Price           *float64
	Date            string
	Notes           string
	AdditionalNotes string
	Store           string
	ProductID       string
	Items           []ItemInput
	OrderSummary    *SummaryInput
}

// BookingRequest is either a flat single-service request or a Services array
// sharing one customer.
type BookingRequest struct {
	Name  string
	Phone string
	ServiceLine
	Services []ServiceLine
}

// Lines expands the request into one line per booking. Array entries keep
// their own values and fall back to the top-level ones.
func (r BookingRequest) Lines() []ServiceLine {
	if len(r.Services) == 0 {
		return []ServiceLine{r.ServiceLine}
	}
	top := r.ServiceLine
	out := make([]ServiceLine, 0, len(r.Services))
	for _, l := range r.Services {
		if strings.TrimSpace(l.Service) == "" {
			l.Service = top.Service
		}
		if l.Price == nil {
			l.Price = top.Price
		}
		if l.Date == "" {
			l.Date = top.Date
		}
		if l.Notes == "" {
			l.Notes = top.Notes
		}
		if l.AdditionalNotes == "" {
			l.AdditionalNotes = top.AdditionalNotes
		}
		if l.Store == "" {
			l.Store = top.Store
		}
		if l.ProductID == "" {
			l.ProductID = top.ProductID
		}
		if l.Items == nil {
			l.Items = top.Items
		}
		if l.OrderSummary == nil {
			l.OrderSummary = top.OrderSummary
		}
		out = append(out, l)
	}
	return out
}

// Composer turns a validated request line into a booking ready to persist.
type Composer struct {
	Catalog *CatalogService
}

func NewComposer(catalog *CatalogService) *Composer { return &Composer{Catalog: catalog} }

// Compose checks one line against the booking rules and builds its items and
// order summary. Nothing is written.
func (c *Composer) Compose(line ServiceLine) (domain.Booking, error) {
	svc := strings.TrimSpace(line.Service)
	if svc == "" || line.Price == nil {
		return domain.Booking{}, missingFields(line)
	}
	if !domain.IsBookableService(svc) {
		return domain.Booking{}, domain.Invalid("service", "invalid service")
	}
	if !(*line.Price > 0) || math.IsInf(*line.Price, 0) {
		return domain.Booking{}, domain.Invalid("price", "price must be a number > 0")
	}
	date := ""
	if strings.TrimSpace(line.Date) != "" {
		d, ok := validate.Date(line.Date)
		if !ok {
			return domain.Booking{}, domain.Invalid("date", "invalid date")
		}
		date = d
	}

	b := domain.Booking{
		Service:         svc,
		Price:           *line.Price,
		Date:            date,
		Items:           []domain.LineItem{},
		Status:          domain.StatusPending,
		Notes:           strings.TrimSpace(line.Notes),
		AdditionalNotes: strings.TrimSpace(line.AdditionalNotes),
	}

	store := strings.TrimSpace(line.Store)
	productID := strings.TrimSpace(line.ProductID)
	if svc != domain.ServiceBuyPack {
		if store != "" {
			return domain.Booking{}, domain.Invalid("store", "Store is only valid for "+domain.ServiceBuyPack)
		}
		if productID != "" {
			return domain.Booking{}, domain.Invalid("productId", "Product is only valid for "+domain.ServiceBuyPack)
		}
	} else {
		prod, err := c.Catalog.CheckBuyPack(store, productID)
		if err != nil {
			return domain.Booking{}, err
		}
		b.Store = store
		if prod != nil {
			it := ProductLine(prod)
			s := summaryOf([]domain.LineItem{it})
			b.ProductID = prod.ID
			b.Items = []domain.LineItem{it}
			b.OrderSummary = &s
		}
	}

	if len(line.Items) > 0 {
		items, err := normalizeItems(line.Items, "items")
		if err != nil {
			return domain.Booking{}, err
		}
		b.Items = items
		if line.OrderSummary == nil {
			s := summaryOf(items)
			b.OrderSummary = &s
		}
	}
	if line.OrderSummary != nil {
		s, err := normalizeSummary(*line.OrderSummary, b.Items)
		if err != nil {
			return domain.Booking{}, err
		}
		b.OrderSummary = &s
	}
	return b, nil
}

func missingFields(line ServiceLine) error {
	ve := &domain.ValidationError{Message: "Missing fields"}
	if strings.TrimSpace(line.Service) == "" {
		ve.Fields = append(ve.Fields, domain.FieldError{Field: "service", Message: "service is required"})
	}
	if line.Price == nil {
		ve.Fields = append(ve.Fields, domain.FieldError{Field: "price", Message: "price is required"})
	}
	return ve
}

// ProductLine is the single line a Buy Pack booking gets from its product.
func ProductLine(p *domain.Product) domain.LineItem {
	name := p.Name
	if name == "" {
		name = "Product"
	}
	return domain.LineItem{ProductID: p.ID, Name: name, Qty: 1, UnitPrice: p.Price, Subtotal: p.Price}
}

func summaryOf(items []domain.LineItem) domain.OrderSummary {
	s := domain.OrderSummary{Items: append([]domain.LineItem{}, items...)}
	for _, it := range items {
		s.Subtotal += it.Subtotal
	}
	s.Total = s.Subtotal
	return s
}

func normalizeItems(in []ItemInput, path string) ([]domain.LineItem, error) {
	out := make([]domain.LineItem, 0, len(in))
	for i, it := range in {
		qty := 1
		if it.Qty != nil && *it.Qty != 0 {
			qty = *it.Qty
		}
		if qty < 1 {
			return nil, domain.Invalid(fmt.Sprintf("%s[%d].qty", path, i), "qty must be at least 1")
		}
		unit := 0.0
		if it.UnitPrice != nil {
			unit = *it.UnitPrice
		}
		if !(unit >= 0) || math.IsInf(unit, 0) {
			return nil, domain.Invalid(fmt.Sprintf("%s[%d].unitPrice", path, i), "unitPrice must not be negative")
		}
		sub := float64(qty) * unit
		if it.Subtotal != nil {
			if !finite(*it.Subtotal) {
				return nil, domain.Invalid(fmt.Sprintf("%s[%d].subtotal", path, i), "subtotal must be a number")
			}
			sub = *it.Subtotal
		}
		out = append(out, domain.LineItem{
			ProductID: strings.TrimSpace(it.ProductID),
			Name:      strings.TrimSpace(it.Name),
			Qty:       qty,
			UnitPrice: unit,
			Subtotal:  sub,
		})
	}
	return out, nil
}

func normalizeSummary(in SummaryInput, fallback []domain.LineItem) (domain.OrderSummary, error) {
	items := fallback
	if in.Items != nil {
		var err error
		if items, err = normalizeItems(in.Items, "orderSummary.items"); err != nil {
			return domain.OrderSummary{}, err
		}
	}
	for _, f := range []struct {
		name string
		v    *float64
	}{{"subtotal", in.Subtotal}, {"tax", in.Tax}, {"shipping", in.Shipping}, {"total", in.Total}} {
		if f.v != nil && !finite(*f.v) {
			return domain.OrderSummary{}, domain.Invalid("orderSummary."+f.name, f.name+" must be a number")
		}
	}
	s := summaryOf(items)
	if in.Subtotal != nil {
		s.Subtotal = *in.Subtotal
	}
	if in.Tax != nil {
		s.Tax = *in.Tax
	}
	if in.Shipping != nil {
		s.Shipping = *in.Shipping
	}
	s.Total = s.Subtotal + s.Tax + s.Shipping
	if in.Total != nil {
		s.Total = *in.Total
	}
	return s, nil
}

func finite(f float64) bool { return !math.IsNaN(f) && !math.IsInf(f, 0) }

// Backfill repairs bookings stored without a usable order summary by deriving
// one from their product. It returns a modified copy and never touches the
// stored row, so repeated reads produce the same summary.
func Backfill(b domain.Booking, p *domain.Product) domain.Booking {
	if p == nil || b.ProductID == "" {
		return b
	}
	if b.OrderSummary != nil && b.OrderSummary.Total != 0 {
		return b
	}
	it := ProductLine(p)
	if len(b.Items) == 0 {
		b.Items = []domain.LineItem{it}
	}
	if b.OrderSummary == nil || len(b.OrderSummary.Items) == 0 {
		s := summaryOf([]domain.LineItem{it})
		b.OrderSummary = &s
	}
	return b
}

// prefixFields rewrites the field paths of a validation error so that errors
// from entry i of a services array point at services[i].
func prefixFields(err error, prefix string) error {
	var ve *domain.ValidationError
	if prefix == "" || !errors.As(err, &ve) {
		return err
	}
	out := &domain.ValidationError{Message: ve.Message, Fields: make([]domain.FieldError, len(ve.Fields))}
	for i, f := range ve.Fields {
		out.Fields[i] = domain.FieldError{Field: prefix + f.Field, Message: f.Message}
	}
	return out
}
