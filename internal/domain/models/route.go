package models

import (
	"sort"
	"time"
)

// Route is one scheduled bus service between two cities. DepartureLabel is a
// free-text schedule slot ("8:30 AM"), not a timestamp.
type Route struct {
	ID             string    `json:"id"`
	Origin         string    `json:"origin"`
	Destination    string    `json:"destination"`
	DepartureLabel string    `json:"departure_label"`
	PriceCents     int64     `json:"price_cents"`
	TotalSeats     int       `json:"total_seats"`
	OccupiedSeats  []int     `json:"occupied_seats"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// SeatValid reports whether seat is a real seat number on this route.
func (r Route) SeatValid(seat int) bool {
	return seat >= 1 && seat <= r.TotalSeats
}

// SeatOccupied reports whether seat is already taken.
func (r Route) SeatOccupied(seat int) bool {
	for _, s := range r.OccupiedSeats {
		if s == seat {
			return true
		}
	}
	return false
}

// AvailableSeats returns the complement of OccupiedSeats within
// [1, TotalSeats], ascending.
func (r Route) AvailableSeats() []int {
	occupied := make(map[int]bool, len(r.OccupiedSeats))
	for _, s := range r.OccupiedSeats {
		occupied[s] = true
	}
	out := make([]int, 0, r.TotalSeats-len(occupied))
	for s := 1; s <= r.TotalSeats; s++ {
		if !occupied[s] {
			out = append(out, s)
		}
	}
	return out
}

// NormalizeOccupied sorts occupied seats and drops duplicates and values
// outside [1, TotalSeats].
func (r *Route) NormalizeOccupied() {
	seen := make(map[int]bool, len(r.OccupiedSeats))
	clean := make([]int, 0, len(r.OccupiedSeats))
	for _, s := range r.OccupiedSeats {
		if s < 1 || s > r.TotalSeats || seen[s] {
			continue
		}
		seen[s] = true
		clean = append(clean, s)
	}
	sort.Ints(clean)
	r.OccupiedSeats = clean
}
