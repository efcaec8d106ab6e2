package handlers

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"quickclean/internal/services"
)

// number accepts a JSON number or a numeric string. Anything else decodes
// to NaN so validation can reject it with a field error.
type number float64

func (n *number) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		b = []byte(strings.TrimSpace(s))
	}
	f, err := strconv.ParseFloat(string(b), 64)
	if err != nil {
		f = nanValue()
	}
	*n = number(f)
	return nil
}

// positive reports whether p holds a finite number above zero.
func positive(p *float64) bool {
	return p != nil && *p > 0 && !math.IsInf(*p, 1)
}

func nanValue() float64 { return math.NaN() }

func (n *number) ptr() *float64 {
	if n == nil {
		return nil
	}
	f := float64(*n)
	return &f
}

// itemBody also takes the field names storefront carts send: _id, title or
// productName, quantity and price.
type itemBody struct {
	ProductID string  `json:"productId"`
	Name      string  `json:"name"`
	Qty       *int    `json:"qty"`
	UnitPrice *number `json:"unitPrice"`
	Subtotal  *number `json:"subtotal"`

	ID          string  `json:"_id"`
	Title       string  `json:"title"`
	ProductName string  `json:"productName"`
	Quantity    *int    `json:"quantity"`
	Price       *number `json:"price"`
}

func firstString(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

type summaryBody struct {
	Items    []itemBody `json:"items"`
	Subtotal *number    `json:"subtotal"`
	Tax      *number    `json:"tax"`
	Shipping *number    `json:"shipping"`
	Total    *number    `json:"total"`
}

type lineBody struct {
	Service         string       `json:"service"`
	Price           *number      `json:"price"`
	Date            string       `json:"date"`
	Notes           string       `json:"notes"`
	AdditionalNotes string       `json:"additionalNotes"`
	Store           string       `json:"store"`
	ProductID       string       `json:"productId"`
	Product         string       `json:"product"`
	Items           []itemBody   `json:"items"`
	OrderSummary    *summaryBody `json:"orderSummary"`
}

type bookingBody struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
	lineBody
	Services []lineBody `json:"services"`
}

func items(in []itemBody) []services.ItemInput {
	if in == nil {
		return nil
	}
	out := make([]services.ItemInput, 0, len(in))
	for _, it := range in {
		qty := it.Qty
		if qty == nil || *qty == 0 {
			if it.Quantity != nil {
				qty = it.Quantity
			}
		}
		unit := it.UnitPrice
		if unit == nil {
			unit = it.Price
		}
		out = append(out, services.ItemInput{
			ProductID: firstString(it.ProductID, it.ID),
			Name:      firstString(it.Name, it.Title, it.ProductName),
			Qty:       qty,
			UnitPrice: unit.ptr(),
			Subtotal:  it.Subtotal.ptr(),
		})
	}
	return out
}

func (l lineBody) line() services.ServiceLine {
	pid := l.ProductID
	if pid == "" {
		pid = l.Product
	}
	out := services.ServiceLine{
		Service:         l.Service,
		Price:           l.Price.ptr(),
		Date:            l.Date,
		Notes:           l.Notes,
		AdditionalNotes: l.AdditionalNotes,
		Store:           l.Store,
		ProductID:       pid,
		Items:           items(l.Items),
	}
	if s := l.OrderSummary; s != nil {
		out.OrderSummary = &services.SummaryInput{
			Items:    items(s.Items),
			Subtotal: s.Subtotal.ptr(),
			Tax:      s.Tax.ptr(),
			Shipping: s.Shipping.ptr(),
			Total:    s.Total.ptr(),
		}
	}
	return out
}

func (b bookingBody) request() services.BookingRequest {
	req := services.BookingRequest{Name: b.Name, Phone: b.Phone, ServiceLine: b.lineBody.line()}
	for _, l := range b.Services {
		req.Services = append(req.Services, l.line())
	}
	return req
}
