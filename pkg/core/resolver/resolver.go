package resolver

import (
	"math"
	"sort"

	"github.com/google/uuid"

	"github.com/jakechorley/weekend-duty/pkg/core/model"
)

// unknownPriority ranks bookings whose owner is no longer in the directory after everyone else
const unknownPriority = math.MaxInt

// entryNamespace seeds the name-based IDs of final schedule entries, so that
// resolving an unchanged month always yields identical rows
var entryNamespace = uuid.MustParse("5b0c8d4e-2f8a-4c11-9a57-3c2d8e6f7a10")

// Resolution is the complete outcome of resolving one month
type Resolution struct {
	Month string

	// Bookings holds every booking of the month with its resolved flags,
	// ordered by date and then by rank within the date
	Bookings []model.Booking

	// Entries is the full final schedule for the month, one per booked date, ordered by date
	Entries []model.FinalScheduleEntry

	// Conflicts has one record per date with two or more bookings, ordered by date
	Conflicts []model.ConflictResolution
}

// Resolve decides the assignee of every booked date in the month.
//
// Bookings are grouped by date. A date with a single booking is confirmed
// for its owner. For a contested date the bookings are ranked by their
// owner's priority (lower wins); equal priorities fall back to insertion
// order. The first ranked booking wins and the rest are marked conflicted.
// Bookings outside the month are ignored.
//
// Resolve has no side effects and always returns the same result for the
// same input.
func Resolve(month string, bookings []model.Booking, priorities map[string]int) Resolution {
	inMonth := make([]model.Booking, 0, len(bookings))
	for _, b := range bookings {
		if b.Month == month {
			inMonth = append(inMonth, b)
		}
	}

	// Establish insertion order first so the priority sort below can be stable over it
	sort.SliceStable(inMonth, func(i, j int) bool {
		return inMonth[i].Seq < inMonth[j].Seq
	})

	byDate := make(map[string][]model.Booking)
	dates := make([]string, 0)
	for _, b := range inMonth {
		if _, exists := byDate[b.Date]; !exists {
			dates = append(dates, b.Date)
		}
		byDate[b.Date] = append(byDate[b.Date], b)
	}
	sort.Strings(dates)

	result := Resolution{
		Month:     month,
		Bookings:  make([]model.Booking, 0, len(inMonth)),
		Entries:   make([]model.FinalScheduleEntry, 0, len(dates)),
		Conflicts: make([]model.ConflictResolution, 0),
	}

	for _, date := range dates {
		competing := byDate[date]
		rankBookings(competing, priorities)

		winner := competing[0]
		winner.IsConfirmed = true
		winner.IsConflicted = false
		result.Bookings = append(result.Bookings, winner)

		result.Entries = append(result.Entries, model.FinalScheduleEntry{
			ID:         entryID(date, winner.UserID),
			Date:       date,
			AssignedTo: winner.UserID,
			Month:      month,
		})

		if len(competing) == 1 {
			continue
		}

		losers := make([]string, 0, len(competing)-1)
		for _, loser := range competing[1:] {
			loser.IsConfirmed = false
			loser.IsConflicted = true
			result.Bookings = append(result.Bookings, loser)
			losers = append(losers, loser.UserID)
		}

		result.Conflicts = append(result.Conflicts, model.ConflictResolution{
			Date:   date,
			Winner: winner.UserID,
			Losers: losers,
		})
	}

	return result
}

// rankBookings orders bookings for one date by owner priority, keeping the existing order on ties
func rankBookings(bookings []model.Booking, priorities map[string]int) {
	sort.SliceStable(bookings, func(i, j int) bool {
		return priorityOf(priorities, bookings[i].UserID) < priorityOf(priorities, bookings[j].UserID)
	})
}

func entryID(date, assignee string) string {
	return uuid.NewSHA1(entryNamespace, []byte(date+"/"+assignee)).String()
}

func priorityOf(priorities map[string]int, userID string) int {
	if p, ok := priorities[userID]; ok {
		return p
	}
	return unknownPriority
}

// Assignments returns the date to assignee mapping of the resolution
func (r Resolution) Assignments() map[string]string {
	out := make(map[string]string, len(r.Entries))
	for _, e := range r.Entries {
		out[e.Date] = e.AssignedTo
	}
	return out
}

// ChangedBookings returns the resolved bookings whose flags differ from the given current state
func (r Resolution) ChangedBookings(current []model.Booking) []model.Booking {
	previous := make(map[string]model.Booking, len(current))
	for _, b := range current {
		previous[b.ID] = b
	}

	changed := make([]model.Booking, 0)
	for _, b := range r.Bookings {
		old, ok := previous[b.ID]
		if !ok || old.IsConfirmed != b.IsConfirmed || old.IsConflicted != b.IsConflicted {
			changed = append(changed, b)
		}
	}
	return changed
}
