package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/pitch-booking/internal/service"
)

// BookingHandler exposes the scheduler over HTTP.  It only decodes
// requests and maps errors; every rule lives in service.Scheduler.
type BookingHandler struct {
	Scheduler *service.Scheduler
}

// NewBookingHandler panics when scheduler is nil.
func NewBookingHandler(scheduler *service.Scheduler) *BookingHandler {
	if scheduler == nil {
		panic("nil scheduler passed to NewBookingHandler")
	}
	return &BookingHandler{Scheduler: scheduler}
}

// slotBody carries the slot fields shared by availability and create
// requests.  The short names (resourceId, start, end) are accepted as
// aliases of the form field names.
type slotBody struct {
	PitchID    flexID `json:"pitchId"`
	ResourceID flexID `json:"resourceId"`
	Date       string `json:"date"`
	StartTime  string `json:"startTime"`
	Start      string `json:"start"`
	EndTime    string `json:"endTime"`
	End        string `json:"end"`
}

func (b slotBody) pitchID() int64 {
	if b.PitchID != 0 {
		return int64(b.PitchID)
	}
	return int64(b.ResourceID)
}

func (b slotBody) start() string { return firstNonEmpty(b.StartTime, b.Start) }

func (b slotBody) end() string { return firstNonEmpty(b.EndTime, b.End) }

type createBody struct {
	slotBody
	CustomerName  string `json:"customerName"`
	CustomerEmail string `json:"customerEmail"`
	CustomerPhone string `json:"customerPhone"`
	BookingDate   string `json:"bookingDate"`
}

// ListBookings handles GET /v1/bookings.  Without query parameters it
// returns every booking, newest first.  With ?pitch=<id>&date=<YYYY-MM-DD>
// (resource is accepted for pitch) it returns that day's bookings for the
// pitch ordered by start time.
func (h *BookingHandler) ListBookings(c echo.Context) error {
	rawPitch := firstNonEmpty(c.QueryParam("pitch"), c.QueryParam("resource"))
	date := c.QueryParam("date")
	if rawPitch == "" && date == "" {
		bookings, err := h.Scheduler.ListBookings(c.Request().Context())
		if err != nil {
			return writeError(c, err)
		}
		return c.JSON(http.StatusOK, bookings)
	}
	if rawPitch == "" || date == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "pitch and date must be given together"})
	}
	pitchID, ok := parseID(rawPitch)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid pitch id"})
	}
	return h.listFor(c, pitchID, date)
}

// ListPitchBookings handles GET /v1/pitches/:id/bookings?date=YYYY-MM-DD and
// the legacy GET /api/bookings/pitch/:id/date/:date.
func (h *BookingHandler) ListPitchBookings(c echo.Context) error {
	pitchID, ok := parseID(c.Param("id"))
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid pitch id"})
	}
	date := firstNonEmpty(c.Param("date"), c.QueryParam("date"))
	if date == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "date is required"})
	}
	return h.listFor(c, pitchID, date)
}

func (h *BookingHandler) listFor(c echo.Context, pitchID int64, date string) error {
	bookings, err := h.Scheduler.ListBookingsFor(c.Request().Context(), pitchID, date)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, bookings)
}

// CheckAvailability handles POST /v1/bookings/check-availability.  The
// answer is advisory: nothing is reserved until CreateBooking succeeds.
func (h *BookingHandler) CheckAvailability(c echo.Context) error {
	var body slotBody
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	av, err := h.Scheduler.CheckAvailability(c.Request().Context(), body.pitchID(), body.Date, body.start(), body.end())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"available":           av.Available,
		"conflictingBookings": av.Conflicts,
	})
}

// CreateBooking handles POST /v1/bookings.  It returns 201 with the stored
// booking, 400 for missing or malformed fields, 409 when the slot overlaps
// an existing booking and 404 for an unknown pitch.
func (h *BookingHandler) CreateBooking(c echo.Context) error {
	var body createBody
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	detail, err := h.Scheduler.CreateBooking(c.Request().Context(), service.BookingRequest{
		PitchID:       body.pitchID(),
		CustomerName:  body.CustomerName,
		CustomerEmail: body.CustomerEmail,
		CustomerPhone: body.CustomerPhone,
		Date:          firstNonEmpty(body.BookingDate, body.Date),
		StartTime:     body.start(),
		EndTime:       body.end(),
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, detail)
}

// CancelBooking handles DELETE /v1/bookings/:id.
func (h *BookingHandler) CancelBooking(c echo.Context) error {
	id, ok := parseID(c.Param("id"))
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
	}
	found, err := h.Scheduler.CancelBooking(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	if !found {
		return writeError(c, service.ErrBookingNotFound)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Booking deleted successfully"})
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
