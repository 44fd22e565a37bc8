package web

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"tripkit/docstore/docstore"
	"tripkit/expense"
	"tripkit/trip"
)

// headerUserID carries the caller's identity. Requests without it get
// local-only state that never reaches the document store.
const headerUserID = "X-User-ID"

type handler struct {
	sessions *sessions
	remote   docstore.Store
}

func newHandler(s *sessions, remote docstore.Store) *handler {
	return &handler{sessions: s, remote: remote}
}

func userID(c *gin.Context) string {
	return c.GetHeader(headerUserID)
}

// writeError maps domain errors onto HTTP statuses.
func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, trip.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, trip.ErrValidation):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case errors.Is(err, trip.ErrLastMember), errors.Is(err, trip.ErrDuplicateTrip):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		log.Printf("web: internal error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

// --- trips ---

func (h *handler) listTrips(c *gin.Context) {
	r, err := h.sessions.registry(userID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"trips":         r.Trips(),
		"currentTripId": r.CurrentTripID(),
		"palette":       trip.ChicPalette,
	})
}

func (h *handler) addTrip(c *gin.Context) {
	var t trip.Trip
	if err := c.ShouldBindJSON(&t); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	r, err := h.sessions.registry(userID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	created, err := r.Add(t)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (h *handler) currentTrip(c *gin.Context) {
	r, err := h.sessions.registry(userID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	t, ok := r.Current()
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "no trip selected"})
		return
	}
	c.JSON(http.StatusOK, t)
}

func (h *handler) getTrip(c *gin.Context) {
	r, err := h.sessions.registry(userID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	t, err := r.Get(c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, t)
}

func (h *handler) updateTrip(c *gin.Context) {
	var u trip.TripUpdate
	if err := c.ShouldBindJSON(&u); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	r, err := h.sessions.registry(userID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	t, err := r.Update(c.Param("id"), u)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, t)
}

func (h *handler) deleteTrip(c *gin.Context) {
	r, err := h.sessions.registry(userID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	if err := r.Delete(c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *handler) selectTrip(c *gin.Context) {
	r, err := h.sessions.registry(userID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	if err := r.Select(c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// --- schedule ---

func (h *handler) getSchedule(c *gin.Context) {
	ts, err := h.sessions.trip(userID(c), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"days": ts.schedule.Value()})
}

func (h *handler) putSchedule(c *gin.Context) {
	var body struct {
		Days []trip.ScheduleDay `json:"days"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	ts, err := h.sessions.trip(userID(c), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	if err := ts.schedule.Set(body.Days); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"days": ts.schedule.Value()})
}

// --- members ---

func (h *handler) listMembers(c *gin.Context) {
	ts, err := h.sessions.trip(userID(c), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"members": ts.book.Members()})
}

func (h *handler) addMember(c *gin.Context) {
	var body struct {
		Name string `json:"name"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	ts, err := h.sessions.trip(userID(c), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	m, err := ts.book.AddMember(body.Name)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, m)
}

func (h *handler) removeMember(c *gin.Context) {
	id, err := uuid.Parse(c.Param("memberId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid member id"})
		return
	}
	ts, err := h.sessions.trip(userID(c), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	if err := ts.book.RemoveMember(id); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// --- expenses ---

func (h *handler) listExpenses(c *gin.Context) {
	ts, err := h.sessions.trip(userID(c), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"expenses": ts.book.Expenses(), "categories": trip.DefaultCategories})
}

func (h *handler) addExpense(c *gin.Context) {
	var in expense.ExpenseInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	ts, err := h.sessions.trip(userID(c), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	e, err := ts.book.AddExpense(in)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, e)
}

func (h *handler) updateExpense(c *gin.Context) {
	id, err := uuid.Parse(c.Param("expenseId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid expense id"})
		return
	}
	var in expense.ExpenseInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	ts, err := h.sessions.trip(userID(c), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	e, err := ts.book.UpdateExpense(id, in)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, e)
}

func (h *handler) removeExpense(c *gin.Context) {
	id, err := uuid.Parse(c.Param("expenseId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid expense id"})
		return
	}
	ts, err := h.sessions.trip(userID(c), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	if err := ts.book.RemoveExpense(id); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *handler) balances(c *gin.Context) {
	cur := trip.Currency(c.DefaultQuery("currency", string(trip.JPY)))
	if !cur.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unsupported currency"})
		return
	}
	ts, err := h.sessions.trip(userID(c), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"currency":   cur,
		"summaries":  ts.book.Balances(cur),
		"currencies": ts.book.Currencies(),
	})
}

func (h *handler) transfers(c *gin.Context) {
	cur := trip.Currency(c.DefaultQuery("currency", string(trip.JPY)))
	if !cur.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unsupported currency"})
		return
	}
	ts, err := h.sessions.trip(userID(c), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"currency": cur, "transfers": ts.book.Transfers(cur)})
}

// --- packing ---

func (h *handler) listPacking(c *gin.Context) {
	ts, err := h.sessions.trip(userID(c), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"groups": ts.packing.Groups()})
}

func (h *handler) addPackingGroup(c *gin.Context) {
	var body struct {
		Category string `json:"category"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	ts, err := h.sessions.trip(userID(c), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	g, err := ts.packing.AddGroup(body.Category)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, g)
}

func (h *handler) removePackingGroup(c *gin.Context) {
	ts, err := h.sessions.trip(userID(c), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	if err := ts.packing.RemoveGroup(c.Param("category")); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *handler) addPackingItem(c *gin.Context) {
	var body struct {
		Category string `json:"category"`
		Name     string `json:"name"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	ts, err := h.sessions.trip(userID(c), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	item, err := ts.packing.AddItem(body.Category, body.Name)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, item)
}

func (h *handler) togglePackingItem(c *gin.Context) {
	id, err := uuid.Parse(c.Param("itemId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid item id"})
		return
	}
	ts, err := h.sessions.trip(userID(c), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	item, err := ts.packing.ToggleItem(id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

func (h *handler) removePackingItem(c *gin.Context) {
	id, err := uuid.Parse(c.Param("itemId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid item id"})
		return
	}
	ts, err := h.sessions.trip(userID(c), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	if err := ts.packing.RemoveItem(id); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
