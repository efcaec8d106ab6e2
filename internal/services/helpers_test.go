package services_test

import (
	"sync"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"quickclean/internal/domain"
	"quickclean/internal/repos"
	"quickclean/internal/services"
)

const partner = "Chijohnz's Supermarket"

type recorder struct {
	mu     sync.Mutex
	events []domain.BookingEvent
}

func (r *recorder) Publish(ev domain.BookingEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func (r *recorder) For(bookingID string) []domain.BookingEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.BookingEvent
	for _, ev := range r.events {
		if ev.BookingID == bookingID {
			out = append(out, ev)
		}
	}
	return out
}

type env struct {
	db       *sqlx.DB
	bookings *services.BookingService
	catalog  *services.CatalogService
	events   *recorder

	partnerProduct domain.Product
	otherProduct   domain.Product
}

func newEnv(t *testing.T) *env {
	t.Helper()
	db, err := repos.OpenDB("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, repos.SeedPartnerStore(db, partner, "Yahoo junction"))

	stores := repos.NewStoreRepo(db)
	prods := repos.NewProductRepo(db)
	catalog := services.NewCatalogService(stores, prods, repos.NewServiceRepo(db), partner, []string{partner, "Shoprite Ifite"})
	rec := &recorder{}
	bookings := services.NewBookingService(repos.NewBookingRepo(db), repos.NewCustomerRepo(db), prods, services.NewComposer(catalog), rec)
	bookings.Stats = services.NewStatsService(repos.NewStatsRepo(db), stores, prods)

	e := &env{db: db, bookings: bookings, catalog: catalog, events: rec}

	home, err := stores.ByName(partner)
	require.NoError(t, err)
	shelf, err := prods.ListByStore(home.ID)
	require.NoError(t, err)
	require.NotEmpty(t, shelf)
	e.partnerProduct = shelf[0]

	other := &domain.Store{Name: "Roban Stores", Location: "Awka", Active: true}
	require.NoError(t, stores.Create(other))
	op := &domain.Product{StoreID: other.ID, Name: "Indomie Carton", Price: 8500, IsAvailable: true}
	require.NoError(t, prods.Create(op))
	e.otherProduct = *op
	return e
}

func (e *env) count(t *testing.T, table string) int {
	t.Helper()
	var n int
	require.NoError(t, e.db.Get(&n, `SELECT COUNT(*) FROM `+table))
	return n
}

func price(f float64) *float64 { return &f }
