package admin

import "time"

type Statistics struct {
	Users                int64     `json:"users"`
	Companies            int64     `json:"companies"`
	ActiveCompanies      int64     `json:"active_companies"`
	PendingRegistrations int64     `json:"pending_registrations"`
	ReservationsToday    int64     `json:"reservations_today"`
	QueueWaiting         int64     `json:"queue_waiting"`
	GeneratedAt          time.Time `json:"generated_at"`
}
