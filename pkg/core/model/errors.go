package model

import "errors"

// Booking rejections. All of these are user-facing and carry a readable message.
var (
	ErrInvalidDate          = errors.New("invalid date, expected YYYY-MM-DD")
	ErrInvalidMonth         = errors.New("invalid month, expected YYYY-MM")
	ErrInvalidDateKind      = errors.New("date is not a weekend day")
	ErrPastDateBooking      = errors.New("cannot book a past date")
	ErrBookingLimitExceeded = errors.New("user already has 2 bookings this month")
	ErrDuplicateBooking     = errors.New("user already booked this day")
	ErrBookingNotFound      = errors.New("booking not found")
)

// Identity and ownership
var (
	ErrUnknownMember    = errors.New("unknown team member")
	ErrInvalidAccessKey = errors.New("invalid access key")
	ErrForbidden        = errors.New("members may only change their own bookings")
)

// Ticket log
var (
	ErrTicketNotFound  = errors.New("ticket not found")
	ErrDateNotAssigned = errors.New("date has no assigned member")
	ErrInvalidTicket   = errors.New("invalid ticket")
)
