package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/msoylu/seatplanner/internal/model"
	"github.com/msoylu/seatplanner/internal/repository"
)

// ----- in-memory stores -----

type fakeSeats struct {
	seats map[string]*model.Seat // keyed by label
}

func (f *fakeSeats) Resolve(_ context.Context, row string, number uint32) (*model.Seat, error) {
	s, ok := f.seats[model.Seat{RowLabel: row, SeatNumber: number}.Label()]
	if !ok {
		return nil, repository.ErrSeatNotFound
	}
	return s, nil
}

type fakeCustomers struct {
	nextID    uint64
	customers map[uint64]*model.Customer
}

func (f *fakeCustomers) Create(_ context.Context, c *model.Customer) error {
	f.nextID++
	c.ID = f.nextID
	cp := *c
	f.customers[c.ID] = &cp
	return nil
}

func (f *fakeCustomers) GetByID(_ context.Context, id uint64) (*model.Customer, error) {
	c, ok := f.customers[id]
	if !ok {
		return nil, repository.ErrCustomerNotFound
	}
	return c, nil
}

type slotKey struct {
	seatID uint64
	date   string
}

type fakeAssignments struct {
	nextID    uint64
	slots     map[slotKey]*model.Assignment
	seats     *fakeSeats
	customers *fakeCustomers
}

func (f *fakeAssignments) key(seatID uint64, date time.Time) slotKey {
	return slotKey{seatID: seatID, date: date.Format(model.DateLayout)}
}

func (f *fakeAssignments) Replace(_ context.Context, a *model.Assignment) error {
	f.nextID++
	a.ID = f.nextID
	a.CreatedAt = time.Now().UTC()
	cp := *a
	f.slots[f.key(a.SeatID, a.Date)] = &cp
	return nil
}

func (f *fakeAssignments) DeleteBySeatAndDate(_ context.Context, seatID uint64, date time.Time) error {
	k := f.key(seatID, date)
	if _, ok := f.slots[k]; !ok {
		return repository.ErrAssignmentNotFound
	}
	delete(f.slots, k)
	return nil
}

func (f *fakeAssignments) GetBySeatAndDate(_ context.Context, seatID uint64, date time.Time) (*model.Assignment, error) {
	a, ok := f.slots[f.key(seatID, date)]
	if !ok {
		return nil, repository.ErrAssignmentNotFound
	}
	out := *a
	for _, s := range f.seats.seats {
		if s.ID == a.SeatID {
			out.Seat = *s
		}
	}
	if c, ok := f.customers.customers[a.CustomerID]; ok {
		out.Customer = *c
	}
	return &out, nil
}

func (f *fakeAssignments) ListByDate(ctx context.Context, date time.Time) ([]model.Assignment, error) {
	out := make([]model.Assignment, 0)
	for k, a := range f.slots {
		if k.date == date.Format(model.DateLayout) {
			full, _ := f.GetBySeatAndDate(ctx, a.SeatID, a.Date)
			out = append(out, *full)
		}
	}
	return out, nil
}

func (f *fakeAssignments) SearchByDate(ctx context.Context, date time.Time, term string) ([]model.Assignment, error) {
	all, err := f.ListByDate(ctx, date)
	if err != nil {
		return nil, err
	}
	out := make([]model.Assignment, 0)
	for _, a := range all {
		if a.Customer.Name == term {
			out = append(out, a)
		}
	}
	return out, nil
}

// ----- fixtures -----

// The clock is pinned so "today" is deterministic.
var testNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func newTestEngine() (*Engine, *fakeCustomers, *fakeAssignments) {
	seats := &fakeSeats{seats: map[string]*model.Seat{
		"A5": {ID: 1, RowLabel: "A", SeatNumber: 5, SeatType: "STANDARD"},
		"B2": {ID: 2, RowLabel: "B", SeatNumber: 2, SeatType: "STANDARD"},
		"P3": {ID: 3, RowLabel: "P", SeatNumber: 3, SeatType: "VIP"},
	}}
	customers := &fakeCustomers{customers: map[uint64]*model.Customer{}}
	assignments := &fakeAssignments{slots: map[slotKey]*model.Assignment{}, seats: seats, customers: customers}

	e := NewEngine(seats, customers, assignments)
	e.Now = func() time.Time { return testNow }
	return e, customers, assignments
}

func seedCustomer(c *fakeCustomers, name string) *model.Customer {
	cust := &model.Customer{Name: name}
	_ = c.Create(context.Background(), cust)
	return c.customers[cust.ID]
}

// ----- tests -----

func TestAssignNewCustomer(t *testing.T) {
	e, customers, _ := newTestEngine()

	a, err := e.Assign(context.Background(), AssignRequest{
		SeatLabel:   "A5",
		Date:        "2025-06-01",
		NewCustomer: &NewCustomer{Name: "Ayse Yilmaz", Phone: "05xx"},
		AssignedBy:  7,
	})
	require.NoError(t, err)

	assert.Equal(t, "A5", a.Seat.Label())
	assert.Equal(t, "2025-06-01", a.DateString())
	assert.Equal(t, "Ayse Yilmaz", a.Customer.Name)
	assert.Equal(t, uint64(7), a.AssignedBy)

	// The walk-in customer landed in the registry.
	stored, err := customers.GetByID(context.Background(), a.CustomerID)
	require.NoError(t, err)
	assert.Equal(t, "Ayse Yilmaz", stored.Name)
	require.NotNil(t, stored.Phone)
	assert.Equal(t, "05xx", *stored.Phone)
}

func TestAssignExistingCustomer(t *testing.T) {
	e, customers, _ := newTestEngine()
	cust := seedCustomer(customers, "Mehmet Kaya")

	a, err := e.Assign(context.Background(), AssignRequest{
		SeatLabel:  "B2",
		Date:       "2025-06-15",
		CustomerID: cust.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, cust.ID, a.CustomerID)
}

func TestAssignReplacesOccupant(t *testing.T) {
	e, customers, assignments := newTestEngine()
	first := seedCustomer(customers, "First")
	second := seedCustomer(customers, "Second")

	_, err := e.Assign(context.Background(), AssignRequest{SeatLabel: "A5", Date: "2025-06-02", CustomerID: first.ID})
	require.NoError(t, err)
	a, err := e.Assign(context.Background(), AssignRequest{SeatLabel: "A5", Date: "2025-06-02", CustomerID: second.ID})
	require.NoError(t, err)

	assert.Equal(t, second.ID, a.CustomerID)
	// At most one assignment occupies the slot.
	list, err := assignments.ListByDate(context.Background(), a.Date)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, second.ID, list[0].CustomerID)
}

func TestAssignSameSeatDifferentDates(t *testing.T) {
	e, customers, _ := newTestEngine()
	cust := seedCustomer(customers, "Regular")

	for _, date := range []string{"2025-06-01", "2025-06-02", "2025-06-03"} {
		_, err := e.Assign(context.Background(), AssignRequest{SeatLabel: "A5", Date: date, CustomerID: cust.ID})
		require.NoError(t, err, date)
	}
}

func TestAssignPastDate(t *testing.T) {
	e, customers, assignments := newTestEngine()
	cust := seedCustomer(customers, "Late")

	_, err := e.Assign(context.Background(), AssignRequest{SeatLabel: "P3", Date: "2025-05-31", CustomerID: cust.ID})
	assert.ErrorIs(t, err, ErrPastDate)
	assert.Empty(t, assignments.slots)
}

func TestAssignTodayAllowed(t *testing.T) {
	e, customers, _ := newTestEngine()
	cust := seedCustomer(customers, "Today")

	// The write-lock cuts off strictly before today.
	_, err := e.Assign(context.Background(), AssignRequest{SeatLabel: "A5", Date: "2025-06-01", CustomerID: cust.ID})
	assert.NoError(t, err)
}

func TestAssignDeletedCustomer(t *testing.T) {
	e, customers, _ := newTestEngine()
	cust := seedCustomer(customers, "Gone")
	deleted := testNow
	cust.DeletedAt = &deleted

	_, err := e.Assign(context.Background(), AssignRequest{SeatLabel: "A5", Date: "2025-06-02", CustomerID: cust.ID})
	assert.ErrorIs(t, err, ErrCustomerDeleted)
}

func TestAssignValidation(t *testing.T) {
	e, customers, _ := newTestEngine()
	cust := seedCustomer(customers, "Someone")

	cases := []struct {
		name string
		req  AssignRequest
		want error
	}{
		{"no customer", AssignRequest{SeatLabel: "A5", Date: "2025-06-01"}, ErrValidation},
		{"bad label", AssignRequest{SeatLabel: "5A", Date: "2025-06-01", CustomerID: cust.ID}, ErrValidation},
		{"bad date", AssignRequest{SeatLabel: "A5", Date: "01.06.2025", CustomerID: cust.ID}, ErrValidation},
		{"empty new customer name", AssignRequest{SeatLabel: "A5", Date: "2025-06-01", NewCustomer: &NewCustomer{Name: "  "}}, ErrValidation},
		{"unknown seat", AssignRequest{SeatLabel: "Z9", Date: "2025-06-01", CustomerID: cust.ID}, repository.ErrSeatNotFound},
		{"unknown customer", AssignRequest{SeatLabel: "A5", Date: "2025-06-01", CustomerID: 999}, repository.ErrCustomerNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := e.Assign(context.Background(), tc.req)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestEmpty(t *testing.T) {
	e, customers, assignments := newTestEngine()
	cust := seedCustomer(customers, "Leaving")

	_, err := e.Assign(context.Background(), AssignRequest{SeatLabel: "B2", Date: "2025-06-10", CustomerID: cust.ID})
	require.NoError(t, err)

	removed, err := e.Empty(context.Background(), "B2", "2025-06-10")
	require.NoError(t, err)
	assert.Equal(t, cust.ID, removed.CustomerID)
	assert.Empty(t, assignments.slots)

	// Emptying the now-empty slot reports not found.
	_, err = e.Empty(context.Background(), "B2", "2025-06-10")
	assert.ErrorIs(t, err, repository.ErrAssignmentNotFound)
}

func TestEmptyPastDate(t *testing.T) {
	e, _, _ := newTestEngine()

	_, err := e.Empty(context.Background(), "P3", "2024-12-31")
	assert.ErrorIs(t, err, ErrPastDate)
}

func TestLookupShowsDeletedCustomer(t *testing.T) {
	e, customers, _ := newTestEngine()
	cust := seedCustomer(customers, "History")

	_, err := e.Assign(context.Background(), AssignRequest{SeatLabel: "A5", Date: "2025-06-05", CustomerID: cust.ID})
	require.NoError(t, err)

	// Soft-delete after the fact; the assignment stays readable.
	deleted := testNow
	cust.DeletedAt = &deleted

	a, err := e.Lookup(context.Background(), "A5", "2025-06-05")
	require.NoError(t, err)
	assert.Equal(t, "History", a.Customer.Name)
	assert.True(t, a.Customer.Deleted())
}

func TestLookupAllowsPastDates(t *testing.T) {
	e, _, _ := newTestEngine()

	// Reads are not write-locked; an empty historical slot is just not found.
	_, err := e.Lookup(context.Background(), "A5", "2020-01-01")
	assert.ErrorIs(t, err, repository.ErrAssignmentNotFound)
}

func TestListByDate(t *testing.T) {
	e, customers, _ := newTestEngine()
	anna := seedCustomer(customers, "Anna")
	bora := seedCustomer(customers, "Bora")

	_, err := e.Assign(context.Background(), AssignRequest{SeatLabel: "A5", Date: "2025-06-20", CustomerID: anna.ID})
	require.NoError(t, err)
	_, err = e.Assign(context.Background(), AssignRequest{SeatLabel: "B2", Date: "2025-06-20", CustomerID: bora.ID})
	require.NoError(t, err)

	all, err := e.ListByDate(context.Background(), "2025-06-20", "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	filtered, err := e.ListByDate(context.Background(), "2025-06-20", "Anna")
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	assert.Equal(t, anna.ID, filtered[0].CustomerID)

	_, err = e.ListByDate(context.Background(), "not-a-date", "")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate(" 2025-06-01 ")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC), d)

	_, err = ParseDate("2025/06/01")
	assert.ErrorIs(t, err, ErrValidation)
}
