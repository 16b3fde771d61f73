package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/msoylu/seatplanner/internal/model"
	"github.com/msoylu/seatplanner/internal/queue"
	"github.com/msoylu/seatplanner/internal/repository"
	"github.com/msoylu/seatplanner/internal/service"
)

// stubEngine records the last call and returns canned results.
type stubEngine struct {
	lastAssign service.AssignRequest
	assignment *model.Assignment
	list       []model.Assignment
	err        error
}

func (s *stubEngine) Assign(_ context.Context, req service.AssignRequest) (*model.Assignment, error) {
	s.lastAssign = req
	return s.assignment, s.err
}

func (s *stubEngine) Empty(context.Context, string, string) (*model.Assignment, error) {
	return s.assignment, s.err
}

func (s *stubEngine) Lookup(context.Context, string, string) (*model.Assignment, error) {
	return s.assignment, s.err
}

func (s *stubEngine) ListByDate(context.Context, string, string) ([]model.Assignment, error) {
	return s.list, s.err
}

func sampleAssignment() *model.Assignment {
	date, _ := time.Parse(model.DateLayout, "2025-06-01")
	return &model.Assignment{
		ID:         11,
		SeatID:     1,
		CustomerID: 3,
		Date:       date,
		AssignedBy: 7,
		CreatedAt:  time.Now().UTC(),
		Seat:       model.Seat{ID: 1, RowLabel: "A", SeatNumber: 5, SeatType: "STANDARD"},
		Customer:   model.Customer{ID: 3, Name: "Ayse Yilmaz"},
	}
}

func newTestContext(t *testing.T, method, path, body string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	e.Validator = NewValidator()
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func newAssignmentHandler(eng Engine) *AssignmentHandler {
	h := NewAssignmentHandler(eng)
	h.Publish = func(context.Context, queue.AssignmentEvent) error { return nil }
	return h
}

func TestAssignHandler(t *testing.T) {
	eng := &stubEngine{assignment: sampleAssignment()}
	h := newAssignmentHandler(eng)

	c, rec := newTestContext(t, http.MethodPut, "/", `{"customer":{"name":"Ayse Yilmaz","phone":"05xx"}}`)
	c.SetPath("/v1/seats/:label/assignments/:date")
	c.SetParamNames("label", "date")
	c.SetParamValues("A5", "2025-06-01")

	require.NoError(t, h.Assign(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, "A5", eng.lastAssign.SeatLabel)
	assert.Equal(t, "2025-06-01", eng.lastAssign.Date)
	require.NotNil(t, eng.lastAssign.NewCustomer)
	assert.Equal(t, "Ayse Yilmaz", eng.lastAssign.NewCustomer.Name)

	var resp assignmentResp
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "A5", resp.Seat)
	assert.Equal(t, "2025-06-01", resp.Date)
	assert.Equal(t, "Ayse Yilmaz", resp.Customer.Name)
	assert.False(t, resp.Deleted)
}

func TestAssignHandlerCustomerNameRequired(t *testing.T) {
	h := newAssignmentHandler(&stubEngine{})

	c, _ := newTestContext(t, http.MethodPut, "/", `{"customer":{"phone":"05xx"}}`)
	c.SetParamNames("label", "date")
	c.SetParamValues("A5", "2025-06-01")

	err := h.Assign(c)
	require.Error(t, err)
	he, ok := err.(*echo.HTTPError)
	require.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, he.Code)
}

func TestAssignHandlerErrorMapping(t *testing.T) {
	cases := []struct {
		err  error
		code int
	}{
		{service.ErrValidation, http.StatusBadRequest},
		{repository.ErrSeatNotFound, http.StatusNotFound},
		{repository.ErrCustomerNotFound, http.StatusNotFound},
		{service.ErrPastDate, http.StatusConflict},
		{service.ErrCustomerDeleted, http.StatusConflict},
		{context.DeadlineExceeded, http.StatusInternalServerError},
	}
	for _, tc := range cases {
		h := newAssignmentHandler(&stubEngine{err: tc.err})

		c, rec := newTestContext(t, http.MethodPut, "/", `{"customer_id":3}`)
		c.SetParamNames("label", "date")
		c.SetParamValues("A5", "2025-06-01")

		require.NoError(t, h.Assign(c))
		assert.Equal(t, tc.code, rec.Code, tc.err)
	}
}

func TestEmptyHandler(t *testing.T) {
	h := newAssignmentHandler(&stubEngine{assignment: sampleAssignment()})

	c, rec := newTestContext(t, http.MethodDelete, "/", "")
	c.SetParamNames("label", "date")
	c.SetParamValues("A5", "2025-06-01")

	require.NoError(t, h.Empty(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp assignmentResp
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, uint64(11), resp.ID)
}

func TestEmptyHandlerNotFound(t *testing.T) {
	h := newAssignmentHandler(&stubEngine{err: repository.ErrAssignmentNotFound})

	c, rec := newTestContext(t, http.MethodDelete, "/", "")
	c.SetParamNames("label", "date")
	c.SetParamValues("A5", "2025-06-01")

	require.NoError(t, h.Empty(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestLookupHandlerMarksDeletedCustomer(t *testing.T) {
	a := sampleAssignment()
	deleted := time.Now().UTC()
	a.Customer.DeletedAt = &deleted
	h := newAssignmentHandler(&stubEngine{assignment: a})

	c, rec := newTestContext(t, http.MethodGet, "/", "")
	c.SetParamNames("label", "date")
	c.SetParamValues("A5", "2025-06-01")

	require.NoError(t, h.Lookup(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp assignmentResp
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Deleted)
}

func TestListByDateHandlerRequiresDate(t *testing.T) {
	h := newAssignmentHandler(&stubEngine{})

	c, rec := newTestContext(t, http.MethodGet, "/v1/assignments", "")

	require.NoError(t, h.ListByDate(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListByDateHandler(t *testing.T) {
	h := newAssignmentHandler(&stubEngine{list: []model.Assignment{*sampleAssignment()}})

	c, rec := newTestContext(t, http.MethodGet, "/v1/assignments?date=2025-06-01", "")

	require.NoError(t, h.ListByDate(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Date        string           `json:"date"`
		Assignments []assignmentResp `json:"assignments"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "2025-06-01", resp.Date)
	require.Len(t, resp.Assignments, 1)
	assert.Equal(t, "A5", resp.Assignments[0].Seat)
}
