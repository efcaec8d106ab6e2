package services

import (
	"fmt"
	"strings"
	"time"

	"quickclean/internal/domain"
	applog "quickclean/internal/log"
	"quickclean/internal/phone"
	"quickclean/internal/repos"
)

// Notifier hands lifecycle events to a real-time transport. Implementations
// must not block and must swallow their own delivery errors.
type Notifier interface {
	Publish(ev domain.BookingEvent)
}

// Notifiers fans one event out to several transports.
type Notifiers []Notifier

func (ns Notifiers) Publish(ev domain.BookingEvent) {
	for _, n := range ns {
		if n != nil {
			n.Publish(ev)
		}
	}
}

// Scope narrows the lifecycle operations to what a caller may do.
type Scope struct {
	Name         string
	Statuses     []domain.Status
	AssignStatus domain.Status
	DefaultLimit int
	MaxLimit     int
}

var (
	PublicScope = Scope{
		Name:         "public",
		Statuses:     []domain.Status{domain.StatusPending, domain.StatusInProgress, domain.StatusCompleted},
		AssignStatus: domain.StatusInProgress,
		DefaultLimit: 20,
		MaxLimit:     100,
	}
	AdminScope = Scope{
		Name:         "admin",
		Statuses:     []domain.Status{domain.StatusPending, domain.StatusAssigned, domain.StatusCompleted, domain.StatusCancelled},
		AssignStatus: domain.StatusAssigned,
		DefaultLimit: 50,
		MaxLimit:     200,
	}
)

func (s Scope) Allows(st domain.Status) bool {
	for _, x := range s.Statuses {
		if x == st {
			return true
		}
	}
	return false
}

type BookingService struct {
	Bookings  *repos.BookingRepo
	Customers *repos.CustomerRepo
	Prods     *repos.ProductRepo
	Composer  *Composer
	Notify    Notifier
	Stats     *StatsService // optional
}

func NewBookingService(bookings *repos.BookingRepo, customers *repos.CustomerRepo, prods *repos.ProductRepo, composer *Composer, notify Notifier) *BookingService {
	return &BookingService{Bookings: bookings, Customers: customers, Prods: prods, Composer: composer, Notify: notify}
}

// Create validates every line of req before writing anything, then stores
// one booking per line for a single customer. Lines are written one by one
// without a transaction: if a write fails, the bookings already stored are
// returned together with the error.
func (s *BookingService) Create(req BookingRequest) ([]domain.Booking, error) {
	name := strings.TrimSpace(req.Name)
	rawPhone := strings.TrimSpace(req.Phone)
	lines := req.Lines()
	multi := len(req.Services) > 0

	if err := checkRequired(name, rawPhone, lines, multi); err != nil {
		return nil, err
	}
	if !phone.IsValid(rawPhone) {
		return nil, domain.Invalid("phone", "Invalid phone number")
	}

	payloads := make([]domain.Booking, 0, len(lines))
	for i, l := range lines {
		b, err := s.Composer.Compose(l)
		if err != nil {
			return nil, prefixFields(err, linePrefix(i, multi))
		}
		payloads = append(payloads, b)
	}

	cust, err := s.Customers.GetOrCreate(name, phone.Normalize(rawPhone))
	if err != nil {
		return nil, err
	}

	created := make([]domain.Booking, 0, len(payloads))
	for _, b := range payloads {
		b.CustomerID = cust.ID
		if err := s.Bookings.Create(&b); err != nil {
			return created, fmt.Errorf("create booking %d of %d: %w", len(created)+1, len(payloads), err)
		}
		b.Customer = cust
		created = append(created, b)
		s.publish(domain.EventCreated, b)
	}
	return created, nil
}

func checkRequired(name, rawPhone string, lines []ServiceLine, multi bool) error {
	ve := &domain.ValidationError{Message: "Missing fields"}
	if name == "" {
		ve.Fields = append(ve.Fields, domain.FieldError{Field: "name", Message: "name is required"})
	}
	if rawPhone == "" {
		ve.Fields = append(ve.Fields, domain.FieldError{Field: "phone", Message: "phone is required"})
	}
	for i, l := range lines {
		p := linePrefix(i, multi)
		if strings.TrimSpace(l.Service) == "" {
			ve.Fields = append(ve.Fields, domain.FieldError{Field: p + "service", Message: "service is required"})
		}
		if l.Price == nil {
			ve.Fields = append(ve.Fields, domain.FieldError{Field: p + "price", Message: "price is required"})
		}
	}
	if len(ve.Fields) > 0 {
		return ve
	}
	return nil
}

func linePrefix(i int, multi bool) string {
	if !multi {
		return ""
	}
	return fmt.Sprintf("services[%d].", i)
}

// Get returns one booking with its customer and any read-time repair applied.
func (s *BookingService) Get(id string) (*domain.Booking, error) {
	b, err := s.Bookings.Get(id)
	if err != nil {
		return nil, err
	}
	out, err := s.hydrate([]domain.Booking{*b})
	if err != nil {
		return nil, err
	}
	return &out[0], nil
}

// Assign overwrites the assignee and forces the scope's assign status,
// whatever the current status is.
func (s *BookingService) Assign(scope Scope, id, assignee string) (*domain.Booking, error) {
	assignee = strings.TrimSpace(assignee)
	if assignee == "" {
		return nil, domain.Invalid("assignedTo", "assignedTo required")
	}
	b, err := s.Bookings.Assign(id, assignee, scope.AssignStatus)
	if err != nil {
		return nil, err
	}
	s.attachCustomer(b)
	s.publish(domain.EventAssigned, *b)
	return b, nil
}

// SetStatus moves a booking to status if the scope permits it. There is no
// ordering guard between statuses.
func (s *BookingService) SetStatus(scope Scope, id, status string) (*domain.Booking, error) {
	status = strings.TrimSpace(status)
	if status == "" {
		return nil, domain.Invalid("status", "status required")
	}
	st := domain.Status(status)
	if !scope.Allows(st) {
		return nil, domain.Invalid("status", "invalid status")
	}
	b, err := s.Bookings.SetStatus(id, st)
	if err != nil {
		return nil, err
	}
	if st == domain.StatusCompleted && s.Stats != nil {
		if err := s.Stats.BookingCompleted(*b); err != nil {
			applog.Error(nil, "booking.stats", err, map[string]any{"booking_id": b.ID})
		}
	}
	s.attachCustomer(b)
	s.publish(domain.EventStatus, *b)
	return b, nil
}

func (s *BookingService) Delete(id string) (*domain.Booking, error) {
	b, err := s.Bookings.Delete(id)
	if err != nil {
		return nil, err
	}
	s.attachCustomer(b)
	return b, nil
}

type ListQuery struct {
	Status     string
	Service    string
	Store      string
	AssignedTo string
	Phone      string
	Page       int
	Limit      int
}

type Meta struct {
	Total int `json:"total"`
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Pages int `json:"pages"`
}

type ListResult struct {
	Meta     Meta             `json:"meta"`
	Bookings []domain.Booking `json:"bookings"`
}

// List returns one page of bookings, newest first. A phone filter that
// matches no customer yields an empty page.
func (s *BookingService) List(scope Scope, q ListQuery) (ListResult, error) {
	page := q.Page
	if page < 1 {
		page = 1
	}
	limit := q.Limit
	if limit < 1 {
		limit = scope.DefaultLimit
	}
	if limit > scope.MaxLimit {
		limit = scope.MaxLimit
	}
	res := ListResult{Meta: Meta{Page: page, Limit: limit}, Bookings: []domain.Booking{}}

	f := repos.BookingFilter{
		Status:     strings.TrimSpace(q.Status),
		Service:    strings.TrimSpace(q.Service),
		Store:      strings.TrimSpace(q.Store),
		AssignedTo: strings.TrimSpace(q.AssignedTo),
	}
	if raw := strings.TrimSpace(q.Phone); raw != "" {
		c, err := s.Customers.ByPhone(phone.Normalize(raw))
		if domain.IsNotFound(err) {
			return res, nil
		}
		if err != nil {
			return res, err
		}
		f.CustomerID = c.ID
	}

	total, err := s.Bookings.Count(f)
	if err != nil {
		return res, err
	}
	rows, err := s.Bookings.List(f, (page-1)*limit, limit)
	if err != nil {
		return res, err
	}
	rows, err = s.hydrate(rows)
	if err != nil {
		return res, err
	}
	res.Bookings = rows
	res.Meta.Total = total
	res.Meta.Pages = (total + limit - 1) / limit
	return res, nil
}

// hydrate attaches customers and applies Backfill using each booking's
// product.
func (s *BookingService) hydrate(rows []domain.Booking) ([]domain.Booking, error) {
	custIDs := make([]string, 0, len(rows))
	prodIDs := make([]string, 0, len(rows))
	for _, b := range rows {
		custIDs = append(custIDs, b.CustomerID)
		if b.ProductID != "" {
			prodIDs = append(prodIDs, b.ProductID)
		}
	}
	custs, err := s.Customers.ByIDs(dedupe(custIDs))
	if err != nil {
		return nil, err
	}
	prods, err := s.Prods.ByIDs(dedupe(prodIDs))
	if err != nil {
		return nil, err
	}
	out := make([]domain.Booking, 0, len(rows))
	for _, b := range rows {
		b.Customer = custs[b.CustomerID]
		out = append(out, Backfill(b, prods[b.ProductID]))
	}
	return out, nil
}

func (s *BookingService) attachCustomer(b *domain.Booking) {
	custs, err := s.Customers.ByIDs([]string{b.CustomerID})
	if err != nil {
		applog.Error(nil, "booking.customer.load", err, map[string]any{"booking_id": b.ID})
		return
	}
	b.Customer = custs[b.CustomerID]
}

func (s *BookingService) publish(kind string, b domain.Booking) {
	if s.Notify == nil {
		return
	}
	ev := domain.BookingEvent{
		Type:      kind,
		BookingID: b.ID,
		Status:    b.Status,
		Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
	}
	if kind == domain.EventAssigned {
		ev.AssignedTo = b.AssignedTo
	}
	defer func() {
		if r := recover(); r != nil {
			applog.Error(nil, "booking.notify.panic", fmt.Errorf("%v", r), map[string]any{"booking_id": b.ID})
		}
	}()
	s.Notify.Publish(ev)
}

func dedupe(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := ids[:0]
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}
