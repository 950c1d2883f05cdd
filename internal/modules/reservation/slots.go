package reservation

import (
	"errors"
	"time"

	"queueless/internal/domain"
)

type Slot struct {
	Start     time.Time `json:"start"`
	End       time.Time `json:"end"`
	Available bool      `json:"available"`
}

type Availability struct {
	Date        string `json:"date"`
	WorkerID    *int64 `json:"worker_id,omitempty"`
	SlotMinutes int    `json:"slot_minutes"`
	Slots       []Slot `json:"slots"`
}

var errBadSlotMinutes = errors.New("slot minutes must be positive")

// GenerateSlots lists the free slotMinutes-long windows of one day. It steps
// from opening time while a whole slot still fits before closing, and drops
// windows that overlap a reservation or a break (half-open intervals). The
// result is chronological and never nil. A nil hours row means closed.
func GenerateSlots(date time.Time, settings *domain.CompanySettings, hours *domain.WorkingHours, breaks []domain.WorkBreak, reservations []domain.Reservation) ([]Slot, error) {
	slots := []Slot{}
	if hours == nil {
		return slots, nil
	}

	slotMinutes := domain.DefaultSlotMinutes
	if settings != nil {
		slotMinutes = settings.SlotMinutes
	}
	if slotMinutes <= 0 {
		return nil, errBadSlotMinutes
	}
	step := time.Duration(slotMinutes) * time.Minute

	open, err := domain.AtClock(date, hours.OpenTime)
	if err != nil {
		return nil, err
	}
	closing, err := domain.AtClock(date, hours.CloseTime)
	if err != nil {
		return nil, err
	}

	weekday := domain.WeekdayIndex(date)
	type interval struct{ start, end time.Time }
	busy := make([]interval, 0, len(breaks)+len(reservations))
	for _, b := range breaks {
		if b.Weekday != weekday {
			continue
		}
		start, err := domain.AtClock(date, b.StartTime)
		if err != nil {
			return nil, err
		}
		end, err := domain.AtClock(date, b.EndTime)
		if err != nil {
			return nil, err
		}
		busy = append(busy, interval{start, end})
	}
	for _, r := range reservations {
		if !r.Status.IsActive() {
			continue
		}
		busy = append(busy, interval{r.SlotStart, r.SlotEnd})
	}

	for cursor := open; !cursor.Add(step).After(closing); cursor = cursor.Add(step) {
		end := cursor.Add(step)
		free := true
		for _, b := range busy {
			if domain.Overlaps(cursor, end, b.start, b.end) {
				free = false
				break
			}
		}
		if free {
			slots = append(slots, Slot{Start: cursor, End: end, Available: true})
		}
	}
	return slots, nil
}
