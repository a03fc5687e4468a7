package service

import (
	"regexp"
	"strconv"
	"time"

	"github.com/iliyamo/pitch-booking/internal/model"
)

var (
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	timePattern  = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)
)

const dateLayout = "2006-01-02"

// overlaps reports whether the half-open intervals [s1,e1) and [s2,e2)
// intersect.  Zero padded HH:MM strings compare chronologically, and an end
// equal to the other start is not an overlap.
func overlaps(s1, e1, s2, e2 string) bool {
	return s1 < e2 && s2 < e1
}

// conflicting returns the bookings on pitchID and date whose slot intersects
// [start,end).  The result is nil when the slot is free.
func conflicting(bookings []model.Booking, pitchID int64, date, start, end string) []model.Booking {
	var out []model.Booking
	for _, b := range bookings {
		if b.PitchID != pitchID || b.BookingDate != date {
			continue
		}
		if overlaps(start, end, b.StartTime, b.EndTime) {
			out = append(out, b)
		}
	}
	return out
}

// minuteOfDay converts a validated HH:MM string to minutes after midnight.
func minuteOfDay(hhmm string) int {
	h, _ := strconv.Atoi(hhmm[:2])
	m, _ := strconv.Atoi(hhmm[3:])
	return h*60 + m
}

// durationHours returns end-start as fractional hours, e.g. 09:30-11:00 is 1.5.
func durationHours(start, end string) float64 {
	return float64(minuteOfDay(end)-minuteOfDay(start)) / 60
}

// totalPrice is the price charged for [start,end) at pricePerHour.
func totalPrice(pricePerHour float64, start, end string) float64 {
	return durationHours(start, end) * pricePerHour
}

func validDate(s string) bool {
	_, err := time.Parse(dateLayout, s)
	return err == nil
}

func validTime(s string) bool { return timePattern.MatchString(s) }

func validEmail(s string) bool { return emailPattern.MatchString(s) }
