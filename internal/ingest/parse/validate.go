package parse

import (
	"encoding/json"
	"fmt"

	"github.com/campusdining/dininghours/internal/core/domain"
)

// Raw shapes decode with pointer fields so a missing key is distinguishable
// from a zero value. A type mismatch fails json.Unmarshal, which counts as a
// validation failure for that record.

type rawHours struct {
	StartHour    *int `json:"start_hour"`
	StartMinutes *int `json:"start_minutes"`
	EndHour      *int `json:"end_hour"`
	EndMinutes   *int `json:"end_minutes"`
}

type rawDay struct {
	Date   *string     `json:"date"`
	Status *string     `json:"status"`
	Hours  *[]rawHours `json:"hours"`
}

type rawLocation struct {
	ID                 *string   `json:"id"`
	Name               *string   `json:"name"`
	IsBuilding         *bool     `json:"is_building"`
	PayWithMealSwipe   *bool     `json:"pay_with_meal_swipe"`
	PayWithRetailSwipe *bool     `json:"pay_with_retail_swipe"`
	BuildingID         *string   `json:"building_id"`
	BuildingName       *string   `json:"building_name"`
	Week               *[]rawDay `json:"week"`
}

// ValidateLocation checks one raw record against the dining-location schema.
// Malformed input yields an error describing the first violation; it is a
// classified outcome, not an exception, since bad upstream records are
// expected.
func ValidateLocation(raw json.RawMessage) (*domain.DiningLocation, error) {
	var rl rawLocation
	if err := json.Unmarshal(raw, &rl); err != nil {
		return nil, fmt.Errorf("record is not a valid object: %w", err)
	}

	switch {
	case rl.ID == nil:
		return nil, fmt.Errorf("missing id")
	case rl.Name == nil:
		return nil, fmt.Errorf("missing name")
	case rl.IsBuilding == nil:
		return nil, fmt.Errorf("missing is_building")
	case rl.PayWithMealSwipe == nil:
		return nil, fmt.Errorf("missing pay_with_meal_swipe")
	case rl.PayWithRetailSwipe == nil:
		return nil, fmt.Errorf("missing pay_with_retail_swipe")
	case rl.Week == nil:
		return nil, fmt.Errorf("missing week")
	case len(*rl.Week) == 0:
		return nil, fmt.Errorf("week must be nonempty")
	}

	loc := &domain.DiningLocation{
		ID:                 *rl.ID,
		Name:               *rl.Name,
		IsBuilding:         *rl.IsBuilding,
		PayWithMealSwipe:   *rl.PayWithMealSwipe,
		PayWithRetailSwipe: *rl.PayWithRetailSwipe,
		BuildingID:         rl.BuildingID,
		BuildingName:       rl.BuildingName,
		Week:               make([]domain.Day, 0, len(*rl.Week)),
	}

	for i, rd := range *rl.Week {
		day, err := validateDay(rd)
		if err != nil {
			return nil, fmt.Errorf("week[%d]: %w", i, err)
		}
		loc.Week = append(loc.Week, day)
	}

	return loc, nil
}

func validateDay(rd rawDay) (domain.Day, error) {
	var day domain.Day

	switch {
	case rd.Date == nil:
		return day, fmt.Errorf("missing date")
	case !domain.IsCalendarDate(*rd.Date):
		return day, fmt.Errorf("invalid date format, expected YYYY-MM-DD")
	case rd.Status == nil:
		return day, fmt.Errorf("missing status")
	case rd.Hours == nil:
		return day, fmt.Errorf("missing hours")
	}

	status := domain.DayStatus(*rd.Status)
	if status != domain.DayStatusOpen && status != domain.DayStatusClosed {
		return day, fmt.Errorf("invalid status %q", *rd.Status)
	}

	// An open day with no service intervals is contradictory and rejected.
	if status == domain.DayStatusOpen && len(*rd.Hours) == 0 {
		return day, fmt.Errorf("hours must be nonempty when status is 'open'")
	}

	day = domain.Day{
		Date:   *rd.Date,
		Status: status,
		Hours:  make([]domain.Hours, 0, len(*rd.Hours)),
	}

	for i, rh := range *rd.Hours {
		hours, err := validateHours(rh)
		if err != nil {
			return domain.Day{}, fmt.Errorf("hours[%d]: %w", i, err)
		}
		day.Hours = append(day.Hours, hours)
	}

	return day, nil
}

func validateHours(rh rawHours) (domain.Hours, error) {
	fields := map[string]*int{
		"start_hour":    rh.StartHour,
		"start_minutes": rh.StartMinutes,
		"end_hour":      rh.EndHour,
		"end_minutes":   rh.EndMinutes,
	}
	for _, name := range []string{"start_hour", "start_minutes", "end_hour", "end_minutes"} {
		v := fields[name]
		if v == nil {
			return domain.Hours{}, fmt.Errorf("missing %s", name)
		}
		if *v < 0 {
			return domain.Hours{}, fmt.Errorf("%s must be non-negative", name)
		}
	}

	return domain.Hours{
		StartHour:    *rh.StartHour,
		StartMinutes: *rh.StartMinutes,
		EndHour:      *rh.EndHour,
		EndMinutes:   *rh.EndMinutes,
	}, nil
}
