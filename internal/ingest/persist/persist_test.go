package persist

import (
	"context"
	"reflect"
	"testing"

	"github.com/campusdining/dininghours/internal/core/domain"
	"github.com/campusdining/dininghours/internal/infra/storage/memory"
)

func strptr(s string) *string { return &s }

func openDay(date string, hours ...domain.Hours) domain.Day {
	return domain.Day{Date: date, Status: domain.DayStatusOpen, Hours: hours}
}

func mainHall(week ...domain.Day) *domain.DiningLocation {
	return &domain.DiningLocation{
		ID:               "1",
		Name:             "Main Hall",
		PayWithMealSwipe: true,
		Week:             week,
	}
}

func newWriter() (*Writer, *memory.LocationRepo, *memory.HoursRepo) {
	store := memory.NewMemoryStorage()
	locations := memory.NewLocationRepo(store)
	hours := memory.NewHoursRepo(store)
	return NewWriter(locations, hours, nil), locations, hours
}

func TestBuildDaySlots(t *testing.T) {
	tests := []struct {
		name string
		day  domain.Day
		want []domain.TimeSlot
	}{
		{
			name: "open day single interval",
			day:  openDay("2023-10-27", domain.Hours{StartHour: 8, EndHour: 20}),
			want: []domain.TimeSlot{{
				LocationID: "1", ServiceDate: "2023-10-27", Slot: 0,
				OpensAt: strptr("08:00:00"), ClosesAt: strptr("20:00:00"),
			}},
		},
		{
			name: "split service keeps input order",
			day: openDay("2023-10-27",
				domain.Hours{StartHour: 7, StartMinutes: 30, EndHour: 10, EndMinutes: 0},
				domain.Hours{StartHour: 11, StartMinutes: 0, EndHour: 14, EndMinutes: 30},
				domain.Hours{StartHour: 17, StartMinutes: 0, EndHour: 21, EndMinutes: 0},
			),
			want: []domain.TimeSlot{
				{LocationID: "1", ServiceDate: "2023-10-27", Slot: 0, OpensAt: strptr("07:30:00"), ClosesAt: strptr("10:00:00")},
				{LocationID: "1", ServiceDate: "2023-10-27", Slot: 1, OpensAt: strptr("11:00:00"), ClosesAt: strptr("14:30:00")},
				{LocationID: "1", ServiceDate: "2023-10-27", Slot: 2, OpensAt: strptr("17:00:00"), ClosesAt: strptr("21:00:00")},
			},
		},
		{
			name: "closed day is one marker row",
			day:  domain.Day{Date: "2023-10-28", Status: domain.DayStatusClosed},
			want: []domain.TimeSlot{{
				LocationID: "1", ServiceDate: "2023-10-28", Slot: 0, IsClosed: true,
			}},
		},
		{
			name: "closed day ignores malformed non-empty hours",
			day: domain.Day{
				Date:   "2023-10-28",
				Status: domain.DayStatusClosed,
				Hours:  []domain.Hours{{StartHour: 9, EndHour: 17}},
			},
			want: []domain.TimeSlot{{
				LocationID: "1", ServiceDate: "2023-10-28", Slot: 0, IsClosed: true,
			}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := BuildDaySlots("1", tt.day)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("BuildDaySlots = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestPersist_IdempotentReingestion(t *testing.T) {
	ctx := context.Background()
	writer, _, hours := newWriter()

	loc := mainHall(openDay("2023-10-27", domain.Hours{StartHour: 8, EndHour: 20}))
	records := []domain.Record{domain.ValidRecord(loc)}

	writer.Persist(ctx, "run-1", records)
	first, err := hours.GetDay(ctx, "1", "2023-10-27")
	if err != nil {
		t.Fatalf("GetDay failed: %v", err)
	}

	writer.Persist(ctx, "run-2", records)
	second, err := hours.GetDay(ctx, "1", "2023-10-27")
	if err != nil {
		t.Fatalf("GetDay failed: %v", err)
	}

	if !reflect.DeepEqual(first, second) {
		t.Errorf("re-ingestion changed the row set:\nfirst:  %+v\nsecond: %+v", first, second)
	}
	if len(second) != 1 {
		t.Errorf("expected 1 slot, got %d", len(second))
	}
}

func TestPersist_SlotReplacementShrinks(t *testing.T) {
	ctx := context.Background()
	writer, _, hours := newWriter()

	three := mainHall(openDay("2023-10-27",
		domain.Hours{StartHour: 7, EndHour: 10},
		domain.Hours{StartHour: 11, EndHour: 14},
		domain.Hours{StartHour: 17, EndHour: 21},
	))
	writer.Persist(ctx, "run-1", []domain.Record{domain.ValidRecord(three)})

	got, _ := hours.GetDay(ctx, "1", "2023-10-27")
	if len(got) != 3 {
		t.Fatalf("expected 3 slots after first ingestion, got %d", len(got))
	}

	one := mainHall(openDay("2023-10-27", domain.Hours{StartHour: 9, EndHour: 15}))
	writer.Persist(ctx, "run-2", []domain.Record{domain.ValidRecord(one)})

	got, _ = hours.GetDay(ctx, "1", "2023-10-27")
	if len(got) != 1 {
		t.Fatalf("expected 1 slot after re-ingestion, got %d", len(got))
	}
	if got[0].Slot != 0 || *got[0].OpensAt != "09:00:00" || *got[0].ClosesAt != "15:00:00" {
		t.Errorf("unexpected surviving slot: %+v", got[0])
	}
}

func TestPersist_IdentityUpsertKeepsFirstRow(t *testing.T) {
	ctx := context.Background()
	writer, locations, _ := newWriter()

	writer.Persist(ctx, "run-1", []domain.Record{domain.ValidRecord(
		mainHall(openDay("2023-10-27", domain.Hours{StartHour: 8, EndHour: 20})),
	)})

	renamed := mainHall(openDay("2023-10-27", domain.Hours{StartHour: 8, EndHour: 20}))
	renamed.Name = "Renamed Hall"
	writer.Persist(ctx, "run-2", []domain.Record{domain.ValidRecord(renamed)})

	got, err := locations.GetByID(ctx, "1")
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.Name != "Main Hall" {
		t.Errorf("identity row was mutated on conflict: %q", got.Name)
	}
}

func TestPersist_SkipsMalformedDates(t *testing.T) {
	ctx := context.Background()
	writer, _, hours := newWriter()

	loc := mainHall(
		domain.Day{Date: "not-a-date", Status: domain.DayStatusOpen,
			Hours: []domain.Hours{{StartHour: 8, EndHour: 20}}},
		openDay("2023-10-27", domain.Hours{StartHour: 8, EndHour: 20}),
	)
	writer.Persist(ctx, "run-1", []domain.Record{domain.ValidRecord(loc)})

	if got, _ := hours.GetDay(ctx, "1", "not-a-date"); got != nil {
		t.Errorf("malformed date was persisted: %+v", got)
	}
	if got, _ := hours.GetDay(ctx, "1", "2023-10-27"); len(got) != 1 {
		t.Errorf("valid sibling day was not persisted")
	}
}

type recordingReporter struct {
	stubs []domain.FailedLocation
	runs  []string
}

func (r *recordingReporter) ReportFailedLocation(
	ctx context.Context,
	runID string,
	stub *domain.FailedLocation,
) error {
	r.stubs = append(r.stubs, *stub)
	r.runs = append(r.runs, runID)
	return nil
}

func TestPersist_FailedLocationsSideChannel(t *testing.T) {
	ctx := context.Background()
	store := memory.NewMemoryStorage()
	reporter := &recordingReporter{}
	writer := NewWriter(memory.NewLocationRepo(store), memory.NewHoursRepo(store), reporter)

	writer.Persist(ctx, "run-x", []domain.Record{
		domain.FailedRecord(&domain.FailedLocation{ID: "9", Name: "Broken Cafe"}),
		domain.ValidRecord(mainHall(openDay("2023-10-27", domain.Hours{StartHour: 8, EndHour: 20}))),
	})

	if len(reporter.stubs) != 1 {
		t.Fatalf("expected 1 reported stub, got %d", len(reporter.stubs))
	}
	if reporter.stubs[0].ID != "9" || reporter.runs[0] != "run-x" {
		t.Errorf("unexpected report: %+v run %s", reporter.stubs[0], reporter.runs[0])
	}
	if _, err := memory.NewLocationRepo(store).GetByID(ctx, "9"); err == nil {
		t.Error("failed location must not be persisted")
	}
}
