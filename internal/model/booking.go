package model

import "time"

// Booking is a confirmed claim on one pitch for one calendar date.
// Date is stored as YYYY-MM-DD and the times as zero padded HH:MM so
// that string comparison matches chronological order.
//
// Fields:
//  ID            – monotonically assigned identifier.
//  PitchID       – pitch being booked.
//  CustomerName  – name given by the customer.
//  CustomerEmail – contact email (local@domain shape).
//  CustomerPhone – contact phone, format not enforced.
//  BookingDate   – calendar date of the booking.
//  StartTime     – inclusive start of the slot.
//  EndTime       – exclusive end of the slot.
//  TotalPrice    – price computed once at commit.
//  CreatedAt     – commit timestamp (UTC).
type Booking struct {
	ID            int64     `json:"id"`
	PitchID       int64     `json:"pitch_id"`
	CustomerName  string    `json:"customer_name"`
	CustomerEmail string    `json:"customer_email"`
	CustomerPhone string    `json:"customer_phone"`
	BookingDate   string    `json:"booking_date"`
	StartTime     string    `json:"start_time"`
	EndTime       string    `json:"end_time"`
	TotalPrice    float64   `json:"total_price"`
	CreatedAt     time.Time `json:"created_at"`
}

// BookingDetail is a booking enriched with the display name and location
// of its pitch.  The pitch ID remains the source of truth.
type BookingDetail struct {
	Booking
	PitchName     string `json:"pitch_name"`
	PitchLocation string `json:"pitch_location"`
}
