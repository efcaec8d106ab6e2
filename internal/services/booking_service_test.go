package services_test

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quickclean/internal/domain"
	"quickclean/internal/services"
)

func multiRequest(name string) services.BookingRequest {
	return services.BookingRequest{
		Name:  name,
		Phone: "08033005971",
		Services: []services.ServiceLine{
			{Service: domain.ServiceLodgeClean, Price: price(5000)},
			{Service: domain.ServiceBuyPack, Price: price(1500), Store: "Shoprite Ifite"},
		},
	}
}

func TestCreateMultiServiceSharesCustomer(t *testing.T) {
	e := newEnv(t)

	created, err := e.bookings.Create(multiRequest("Ada Obi"))
	require.NoError(t, err)
	require.Len(t, created, 2)

	assert.Equal(t, 2, e.count(t, "bookings"))
	assert.Equal(t, 1, e.count(t, "customers"))
	for _, b := range created {
		require.NotNil(t, b.Customer)
		assert.Equal(t, "Ada Obi", b.Customer.Name)
		assert.Equal(t, "08033005971", b.Customer.Phone)
		assert.Equal(t, created[0].CustomerID, b.CustomerID)
		assert.Equal(t, domain.StatusPending, b.Status)
	}
	assert.Equal(t, "Shoprite Ifite", created[1].Store)
	assert.Empty(t, created[1].ProductID)
}

func TestCreateExistingPhoneReusesCustomer(t *testing.T) {
	e := newEnv(t)

	_, err := e.bookings.Create(multiRequest("Ada Obi"))
	require.NoError(t, err)
	// same number, different punctuation and name
	req := multiRequest("Someone Else")
	req.Phone = "0803-300-5971"
	created, err := e.bookings.Create(req)
	require.NoError(t, err)

	assert.Equal(t, 1, e.count(t, "customers"))
	assert.Equal(t, 4, e.count(t, "bookings"))
	assert.Equal(t, "Ada Obi", created[0].Customer.Name)
}

func TestCreateBuyPackWithoutStorePersistsNothing(t *testing.T) {
	e := newEnv(t)

	_, err := e.bookings.Create(services.BookingRequest{
		Name:        "Ada Obi",
		Phone:       "08033005971",
		ServiceLine: services.ServiceLine{Service: domain.ServiceBuyPack, Price: price(1500)},
	})
	var ve *domain.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "store", ve.Fields[0].Field)
	assert.Equal(t, 0, e.count(t, "bookings"))
	assert.Equal(t, 0, e.count(t, "customers"))
}

func TestCreateRejectsProductFromAnotherStore(t *testing.T) {
	e := newEnv(t)

	_, err := e.bookings.Create(services.BookingRequest{
		Name:  "Ada Obi",
		Phone: "08033005971",
		ServiceLine: services.ServiceLine{
			Service:   domain.ServiceBuyPack,
			Price:     price(1500),
			Store:     partner,
			ProductID: e.otherProduct.ID,
		},
	})
	var ve *domain.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "Product does not belong to the partnered store", ve.Message)
	assert.Equal(t, 0, e.count(t, "bookings"))
}

func TestCreateValidatesEveryLineBeforeWriting(t *testing.T) {
	e := newEnv(t)

	req := multiRequest("Ada Obi")
	req.Services = append(req.Services, services.ServiceLine{Service: "Car Wash", Price: price(100)})
	_, err := e.bookings.Create(req)

	var ve *domain.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "services[2].service", ve.Fields[0].Field)
	assert.Equal(t, 0, e.count(t, "bookings"))
	assert.Equal(t, 0, e.count(t, "customers"))
}

func TestCreateMissingFields(t *testing.T) {
	e := newEnv(t)

	_, err := e.bookings.Create(services.BookingRequest{
		Services: []services.ServiceLine{{Service: domain.ServiceHome}},
	})
	var ve *domain.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "Missing fields", ve.Message)

	var fields []string
	for _, f := range ve.Fields {
		fields = append(fields, f.Field)
	}
	assert.Equal(t, []string{"name", "phone", "services[0].price"}, fields)
}

func TestCreateInvalidPhone(t *testing.T) {
	e := newEnv(t)

	_, err := e.bookings.Create(services.BookingRequest{
		Name:        "Ada",
		Phone:       "12345",
		ServiceLine: services.ServiceLine{Service: domain.ServiceHome, Price: price(15000)},
	})
	var ve *domain.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "Invalid phone number", ve.Message)
}

func TestCreatePartnerProductBuildsSummary(t *testing.T) {
	e := newEnv(t)

	created, err := e.bookings.Create(services.BookingRequest{
		Name:  "Ada",
		Phone: "+234 803 300 5971",
		ServiceLine: services.ServiceLine{
			Service:   domain.ServiceBuyPack,
			Price:     price(1500),
			Store:     partner,
			ProductID: e.partnerProduct.ID,
		},
	})
	require.NoError(t, err)
	b := created[0]
	require.Len(t, b.Items, 1)
	assert.Equal(t, e.partnerProduct.Name, b.Items[0].Name)
	assert.Equal(t, 1, b.Items[0].Qty)
	require.NotNil(t, b.OrderSummary)
	assert.Equal(t, e.partnerProduct.Price, b.OrderSummary.Total)
	assert.Equal(t, "+2348033005971", b.Customer.Phone)
}

func TestAssignForcesScopeStatusAndNotifiesOnce(t *testing.T) {
	e := newEnv(t)
	created, err := e.bookings.Create(multiRequest("Ada"))
	require.NoError(t, err)
	id := created[0].ID
	before := len(e.events.For(id))

	b, err := e.bookings.Assign(services.AdminScope, id, "Admin1")
	require.NoError(t, err)
	assert.Equal(t, "Admin1", b.AssignedTo)
	assert.Equal(t, domain.StatusAssigned, b.Status)

	evs := e.events.For(id)
	require.Len(t, evs, before+1)
	last := evs[len(evs)-1]
	assert.Equal(t, domain.EventAssigned, last.Type)
	assert.Equal(t, "Admin1", last.AssignedTo)
	assert.Equal(t, domain.StatusAssigned, last.Status)

	// other bookings are untouched
	assert.Len(t, e.events.For(created[1].ID), 1)

	b, err = e.bookings.Assign(services.PublicScope, id, "Rider 7")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusInProgress, b.Status)
	assert.Equal(t, "Rider 7", b.AssignedTo)
}

func TestAssignErrors(t *testing.T) {
	e := newEnv(t)

	_, err := e.bookings.Assign(services.AdminScope, "missing", "Admin1")
	assert.True(t, domain.IsNotFound(err))

	_, err = e.bookings.Assign(services.AdminScope, "missing", "  ")
	var ve *domain.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "assignedTo required", ve.Message)
}

func TestSetStatusRespectsScope(t *testing.T) {
	e := newEnv(t)
	created, err := e.bookings.Create(multiRequest("Ada"))
	require.NoError(t, err)
	id := created[0].ID

	_, err = e.bookings.SetStatus(services.PublicScope, id, "cancelled")
	var ve *domain.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "invalid status", ve.Message)

	_, err = e.bookings.SetStatus(services.AdminScope, id, "in-progress")
	require.ErrorAs(t, err, &ve)

	b, err := e.bookings.SetStatus(services.AdminScope, id, "completed")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCompleted, b.Status)

	// no forward-only guard
	b, err = e.bookings.SetStatus(services.AdminScope, id, "pending")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, b.Status)

	_, err = e.bookings.SetStatus(services.AdminScope, "missing", "pending")
	assert.True(t, domain.IsNotFound(err))
}

func TestCompletedBuyPackCreditsStore(t *testing.T) {
	e := newEnv(t)
	created, err := e.bookings.Create(services.BookingRequest{
		Name:  "Ada",
		Phone: "08033005971",
		ServiceLine: services.ServiceLine{
			Service: domain.ServiceBuyPack, Price: price(1500), Store: partner, ProductID: e.partnerProduct.ID,
		},
	})
	require.NoError(t, err)

	_, err = e.bookings.SetStatus(services.AdminScope, created[0].ID, "completed")
	require.NoError(t, err)

	st, err := e.bookings.Stats.StoreStats(e.partnerProduct.StoreID)
	require.NoError(t, err)
	assert.Equal(t, 1, st.CompletedOrders)
}

func TestRecompletingBookingCreditsStoreOnce(t *testing.T) {
	e := newEnv(t)
	req := services.BookingRequest{
		Name:  "Ada",
		Phone: "08033005971",
		ServiceLine: services.ServiceLine{
			Service: domain.ServiceBuyPack, Price: price(1500), Store: partner, ProductID: e.partnerProduct.ID,
		},
	}
	first, err := e.bookings.Create(req)
	require.NoError(t, err)
	second, err := e.bookings.Create(req)
	require.NoError(t, err)

	id := first[0].ID
	for _, status := range []string{"completed", "completed", "pending", "completed", "cancelled", "completed"} {
		_, err = e.bookings.SetStatus(services.AdminScope, id, status)
		require.NoError(t, err)
	}
	st, err := e.bookings.Stats.StoreStats(e.partnerProduct.StoreID)
	require.NoError(t, err)
	assert.Equal(t, 1, st.CompletedOrders)

	_, err = e.bookings.SetStatus(services.AdminScope, second[0].ID, "completed")
	require.NoError(t, err)
	st, err = e.bookings.Stats.StoreStats(e.partnerProduct.StoreID)
	require.NoError(t, err)
	assert.Equal(t, 2, st.CompletedOrders)
}

func TestListFiltersAndPages(t *testing.T) {
	e := newEnv(t)
	for i := 0; i < 3; i++ {
		_, err := e.bookings.Create(multiRequest("Ada"))
		require.NoError(t, err)
	}
	_, err := e.bookings.Create(services.BookingRequest{
		Name:        "Chidi",
		Phone:       "08120000000",
		ServiceLine: services.ServiceLine{Service: domain.ServiceHome, Price: price(15000)},
	})
	require.NoError(t, err)

	res, err := e.bookings.List(services.AdminScope, services.ListQuery{Page: 2, Limit: 3})
	require.NoError(t, err)
	assert.Equal(t, services.Meta{Total: 7, Page: 2, Limit: 3, Pages: 3}, res.Meta)
	assert.Len(t, res.Bookings, 3)

	res, err = e.bookings.List(services.PublicScope, services.ListQuery{Phone: "0812 000 0000"})
	require.NoError(t, err)
	require.Len(t, res.Bookings, 1)
	assert.Equal(t, "Chidi", res.Bookings[0].Customer.Name)

	res, err = e.bookings.List(services.PublicScope, services.ListQuery{Service: domain.ServiceBuyPack})
	require.NoError(t, err)
	assert.Equal(t, 3, res.Meta.Total)

	// newest first
	all, err := e.bookings.List(services.AdminScope, services.ListQuery{})
	require.NoError(t, err)
	assert.Equal(t, domain.ServiceHome, all.Bookings[0].Service)
	for i := 1; i < len(all.Bookings); i++ {
		assert.GreaterOrEqual(t, all.Bookings[i-1].CreatedAt, all.Bookings[i].CreatedAt)
	}
}

func TestListLimitClamping(t *testing.T) {
	e := newEnv(t)

	res, err := e.bookings.List(services.PublicScope, services.ListQuery{Page: -4, Limit: 0})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Meta.Page)
	assert.Equal(t, 20, res.Meta.Limit)

	res, err = e.bookings.List(services.PublicScope, services.ListQuery{Limit: 1000})
	require.NoError(t, err)
	assert.Equal(t, 100, res.Meta.Limit)

	res, err = e.bookings.List(services.AdminScope, services.ListQuery{Limit: 1000})
	require.NoError(t, err)
	assert.Equal(t, 200, res.Meta.Limit)

	res, err = e.bookings.List(services.AdminScope, services.ListQuery{})
	require.NoError(t, err)
	assert.Equal(t, 50, res.Meta.Limit)
}

func TestListUnknownPhoneIsEmpty(t *testing.T) {
	e := newEnv(t)
	_, err := e.bookings.Create(multiRequest("Ada"))
	require.NoError(t, err)

	res, err := e.bookings.List(services.AdminScope, services.ListQuery{Phone: "09099999999"})
	require.NoError(t, err)
	assert.Empty(t, res.Bookings)
	assert.NotNil(t, res.Bookings)
	assert.Equal(t, 0, res.Meta.Total)
}

func TestReadBackfillIsStable(t *testing.T) {
	e := newEnv(t)
	created, err := e.bookings.Create(services.BookingRequest{
		Name:  "Ada",
		Phone: "08033005971",
		ServiceLine: services.ServiceLine{
			Service: domain.ServiceBuyPack, Price: price(1500), Store: partner, ProductID: e.partnerProduct.ID,
		},
	})
	require.NoError(t, err)
	id := created[0].ID

	// simulate a legacy row stored before summaries existed
	_, err = e.db.Exec(`UPDATE bookings SET items_json = '[]', order_summary_json = '' WHERE id = ?`, id)
	require.NoError(t, err)

	first, err := e.bookings.Get(id)
	require.NoError(t, err)
	second, err := e.bookings.Get(id)
	require.NoError(t, err)

	require.NotNil(t, first.OrderSummary)
	assert.Equal(t, e.partnerProduct.Price, first.OrderSummary.Total)
	a, _ := json.Marshal(first.OrderSummary)
	b, _ := json.Marshal(second.OrderSummary)
	assert.Equal(t, string(a), string(b))

	var stored string
	require.NoError(t, e.db.Get(&stored, `SELECT order_summary_json FROM bookings WHERE id = ?`, id))
	assert.Empty(t, stored)
}

func TestDelete(t *testing.T) {
	e := newEnv(t)
	created, err := e.bookings.Create(multiRequest("Ada"))
	require.NoError(t, err)

	b, err := e.bookings.Delete(created[0].ID)
	require.NoError(t, err)
	assert.Equal(t, created[0].ID, b.ID)
	assert.Equal(t, 1, e.count(t, "bookings"))

	_, err = e.bookings.Delete(created[0].ID)
	assert.True(t, domain.IsNotFound(err))
}

type panicky struct{}

func (panicky) Publish(domain.BookingEvent) { panic(errors.New("transport down")) }

func TestNotifierFailureIsSwallowed(t *testing.T) {
	e := newEnv(t)
	e.bookings.Notify = services.Notifiers{panicky{}}

	created, err := e.bookings.Create(multiRequest("Ada"))
	require.NoError(t, err)
	assert.Len(t, created, 2)
}
