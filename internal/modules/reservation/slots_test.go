package reservation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"queueless/internal/domain"

	_ "time/tzdata"
)

// 2030-03-04 is a Monday.
var monday = time.Date(2030, 3, 4, 0, 0, 0, 0, time.UTC)

func clock(hhmm string) time.Time {
	t, err := domain.AtClock(monday, hhmm)
	if err != nil {
		panic(err)
	}
	return t
}

func settings(minutes int) *domain.CompanySettings {
	return &domain.CompanySettings{SlotMinutes: minutes}
}

func hours(open, close string) *domain.WorkingHours {
	return &domain.WorkingHours{Weekday: 1, OpenTime: open, CloseTime: close}
}

func active(from, to string) domain.Reservation {
	return domain.Reservation{SlotStart: clock(from), SlotEnd: clock(to), Status: domain.ReservationConfirmed}
}

func starts(slots []Slot) []string {
	out := make([]string, 0, len(slots))
	for _, s := range slots {
		out = append(out, s.Start.Format("15:04"))
	}
	return out
}

func TestGenerateSlots(t *testing.T) {
	tests := []struct {
		name         string
		settings     *domain.CompanySettings
		hours        *domain.WorkingHours
		breaks       []domain.WorkBreak
		reservations []domain.Reservation
		want         []string
	}{
		{
			name:     "full day",
			settings: settings(60),
			hours:    hours("09:00", "12:00"),
			want:     []string{"09:00", "10:00", "11:00"},
		},
		{
			name:  "no working hours means closed",
			hours: nil,
			want:  []string{},
		},
		{
			name:         "reservation ending at slot start does not block it",
			settings:     settings(30),
			hours:        hours("09:00", "12:00"),
			reservations: []domain.Reservation{active("09:00", "09:30")},
			want:         []string{"09:30", "10:00", "10:30", "11:00", "11:30"},
		},
		{
			name:     "partial trailing slot is dropped",
			settings: settings(30),
			hours:    hours("09:00", "09:50"),
			want:     []string{"09:00"},
		},
		{
			name:     "breaks are excluded",
			settings: settings(30),
			hours:    hours("09:00", "12:00"),
			breaks: []domain.WorkBreak{
				{Weekday: 1, StartTime: "10:00", EndTime: "10:45"},
				{Weekday: 2, StartTime: "09:00", EndTime: "12:00"},
			},
			want: []string{"09:00", "09:30", "11:00", "11:30"},
		},
		{
			name:     "overlapping reservation blocks every touched slot",
			settings: settings(30),
			hours:    hours("09:00", "11:00"),
			reservations: []domain.Reservation{
				active("09:15", "09:45"),
				{SlotStart: clock("10:00"), SlotEnd: clock("10:30"), Status: domain.ReservationCancelled},
			},
			want: []string{"10:00", "10:30"},
		},
		{
			name:     "close before open yields nothing",
			settings: settings(30),
			hours:    hours("18:00", "09:00"),
			want:     []string{},
		},
		{
			name:     "nil settings falls back to default slot size",
			settings: nil,
			hours:    hours("09:00", "10:00"),
			want:     []string{"09:00", "09:30"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			slots, err := GenerateSlots(monday, tt.settings, tt.hours, tt.breaks, tt.reservations)
			require.NoError(t, err)
			require.NotNil(t, slots)
			assert.Equal(t, tt.want, starts(slots))
			for _, s := range slots {
				assert.True(t, s.Available)
			}
		})
	}
}

func TestGenerateSlots_Invariants(t *testing.T) {
	breaks := []domain.WorkBreak{{Weekday: 1, StartTime: "12:00", EndTime: "13:00"}}
	reservations := []domain.Reservation{active("09:20", "09:40"), active("15:00", "16:10")}

	for _, minutes := range []int{5, 10, 15, 20, 25, 30, 45, 60, 90} {
		slots, err := GenerateSlots(monday, settings(minutes), hours("08:00", "18:00"), breaks, reservations)
		require.NoError(t, err)

		for i, s := range slots {
			assert.Equal(t, time.Duration(minutes)*time.Minute, s.End.Sub(s.Start))
			if i > 0 {
				prev := slots[i-1]
				assert.False(t, s.Start.Before(prev.Start), "chronological order")
				assert.False(t, domain.Overlaps(prev.Start, prev.End, s.Start, s.End), "slots do not overlap")
			}
			for _, r := range reservations {
				assert.False(t, domain.Overlaps(s.Start, s.End, r.SlotStart, r.SlotEnd), "slot %s overlaps reservation", s.Start)
			}
			assert.False(t, domain.Overlaps(s.Start, s.End, clock("12:00"), clock("13:00")), "slot %s overlaps break", s.Start)
			assert.False(t, s.End.After(clock("18:00")))
		}
	}
}

func TestGenerateSlots_SundayIsWeekdayZero(t *testing.T) {
	sunday := time.Date(2030, 3, 3, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, 0, domain.WeekdayIndex(sunday))

	slots, err := GenerateSlots(sunday, settings(60), &domain.WorkingHours{Weekday: 0, OpenTime: "10:00", CloseTime: "12:00"},
		[]domain.WorkBreak{{Weekday: 0, StartTime: "11:00", EndTime: "12:00"}}, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"10:00"}, starts(slots))
}

func TestGenerateSlots_DaylightSavingDay(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	// clocks jump from 02:00 to 03:00 on this Sunday
	day := time.Date(2030, 3, 10, 0, 0, 0, 0, ny)
	slots, err := GenerateSlots(day, settings(60), &domain.WorkingHours{Weekday: 0, OpenTime: "09:00", CloseTime: "11:00"},
		[]domain.WorkBreak{{Weekday: 0, StartTime: "10:00", EndTime: "10:30"}}, nil)
	require.NoError(t, err)
	require.Len(t, slots, 1)
	assert.Equal(t, "09:00", slots[0].Start.Format("15:04"))
	assert.Equal(t, "10:00", slots[0].End.Format("15:04"))
	assert.Equal(t, ny, slots[0].Start.Location())
}

func TestGenerateSlots_Pure(t *testing.T) {
	args := func() ([]Slot, error) {
		return GenerateSlots(monday, settings(30), hours("09:00", "12:00"), nil, []domain.Reservation{active("10:00", "10:30")})
	}
	a, err := args()
	require.NoError(t, err)
	b, err := args()
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestGenerateSlots_BadInput(t *testing.T) {
	_, err := GenerateSlots(monday, settings(0), hours("09:00", "10:00"), nil, nil)
	assert.Error(t, err)

	_, err = GenerateSlots(monday, settings(30), hours("9am", "10:00"), nil, nil)
	assert.Error(t, err)
}
