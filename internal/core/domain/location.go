package domain

type DayStatus string

const (
	DayStatusOpen   DayStatus = "open"
	DayStatusClosed DayStatus = "closed"
)

// DiningLocation is one venue's weekly schedule as reported by the upstream.
// ID is the stable external key and the natural key for persistence.
type DiningLocation struct {
	ID                 string  `json:"id"`
	Name               string  `json:"name"`
	IsBuilding         bool    `json:"is_building"`
	PayWithMealSwipe   bool    `json:"pay_with_meal_swipe"`
	PayWithRetailSwipe bool    `json:"pay_with_retail_swipe"`
	BuildingID         *string `json:"building_id,omitempty"`
	BuildingName       *string `json:"building_name,omitempty"`
	Week               []Day   `json:"week"`
}

// Day is one calendar date of a location's week. An open day carries at least
// one Hours interval; a closed day carries none.
type Day struct {
	Date   string    `json:"date"`
	Status DayStatus `json:"status"`
	Hours  []Hours   `json:"hours"`
}

// Hours is a single open interval within a day (split service produces several).
type Hours struct {
	StartHour    int `json:"start_hour"`
	StartMinutes int `json:"start_minutes"`
	EndHour      int `json:"end_hour"`
	EndMinutes   int `json:"end_minutes"`
}

// FailedLocation preserves whatever identity could be salvaged from a raw
// record that failed schema validation. It carries no schedule data and is
// never persisted.
type FailedLocation struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name,omitempty"`
}

// TimeSlot is the normalized storage representation of one open interval (or
// the single closed-day marker) for a (location, service date) pair.
type TimeSlot struct {
	LocationID  string
	ServiceDate string
	Slot        int
	IsClosed    bool
	OpensAt     *string // "HH:MM:SS" wall clock, nil when closed
	ClosesAt    *string
}
