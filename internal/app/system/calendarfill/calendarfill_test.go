package calendarfill

import (
	"testing"
	"time"
)

// fixedNow pins the clock for the duration of a test.
func fixedNow(t *testing.T, at time.Time) {
	t.Helper()
	orig := nowFunc
	nowFunc = func() time.Time { return at }
	t.Cleanup(func() { nowFunc = orig })
}

func TestSeries_EmptyInputFillsWindow(t *testing.T) {
	fixedNow(t, time.Date(2025, 3, 10, 15, 30, 0, 0, time.UTC))

	got := Series(nil, 7, time.UTC)

	if len(got) != 7 {
		t.Fatalf("len = %d, want 7", len(got))
	}
	wantDates := []string{
		"2025-03-04", "2025-03-05", "2025-03-06", "2025-03-07",
		"2025-03-08", "2025-03-09", "2025-03-10",
	}
	for i, p := range got {
		if p.Date != wantDates[i] {
			t.Errorf("entry %d date = %s, want %s", i, p.Date, wantDates[i])
		}
		if p.Value != 0 {
			t.Errorf("entry %d value = %d, want 0", i, p.Value)
		}
	}
}

func TestSeries_TodayValuePreserved(t *testing.T) {
	fixedNow(t, time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC))

	got := Series([]Point{{Date: "2025-03-10", Value: 42}}, 7, time.UTC)

	last := got[len(got)-1]
	if last.Date != "2025-03-10" || last.Value != 42 {
		t.Fatalf("last entry = %+v, want {2025-03-10 42}", last)
	}
}

func TestSeries_DuplicateDateLastWins(t *testing.T) {
	fixedNow(t, time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC))

	got := Series([]Point{
		{Date: "2025-03-09", Value: 1},
		{Date: "2025-03-09", Value: 9},
	}, 7, time.UTC)

	if v := got[len(got)-2].Value; v != 9 {
		t.Fatalf("duplicate date value = %d, want 9 (last record wins)", v)
	}
}

func TestSeries_TimestampKeysNormalized(t *testing.T) {
	fixedNow(t, time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC))

	got := Series([]Point{{Date: "2025-03-10T06:15:00Z", Value: 5}}, 7, time.UTC)

	if v := got[len(got)-1].Value; v != 5 {
		t.Fatalf("today value = %d, want 5 (timestamp key should normalize)", v)
	}
}

func TestSeries_WindowEndsOnLocationDay(t *testing.T) {
	// 20:00 UTC on March 10 is already March 11 in Tokyo; the window
	// must end on the location's calendar day, not the server's.
	fixedNow(t, time.Date(2025, 3, 10, 20, 0, 0, 0, time.UTC))
	tokyo, err := time.LoadLocation("Asia/Tokyo")
	if err != nil {
		t.Fatalf("LoadLocation: %v", err)
	}

	got := Series([]Point{{Date: "2025-03-11", Value: 6}}, 7, tokyo)

	last := got[len(got)-1]
	if last.Date != "2025-03-11" {
		t.Fatalf("last date = %s, want 2025-03-11", last.Date)
	}
	if last.Value != 6 {
		t.Fatalf("last value = %d, want 6", last.Value)
	}
	if got[0].Date != "2025-03-05" {
		t.Fatalf("first date = %s, want 2025-03-05", got[0].Date)
	}
}

func TestSeries_NilLocationMeansUTC(t *testing.T) {
	fixedNow(t, time.Date(2025, 3, 10, 20, 0, 0, 0, time.UTC))

	got := Series(nil, 7, nil)

	if last := got[len(got)-1]; last.Date != "2025-03-10" {
		t.Fatalf("last date = %s, want 2025-03-10", last.Date)
	}
}

func TestSeries_ZeroWindowUsesDefault(t *testing.T) {
	fixedNow(t, time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC))

	if got := Series(nil, 0, time.UTC); len(got) != DefaultSeriesWindow {
		t.Fatalf("len = %d, want default %d", len(got), DefaultSeriesWindow)
	}
}

func TestTable_MissingDaysGetDeclaredZeroFields(t *testing.T) {
	fixedNow(t, time.Date(2025, 3, 31, 12, 0, 0, 0, time.UTC))
	fields := []string{"active_users", "total_activities"}

	got := Table([]Row{
		{Date: "2025-03-30", Fields: map[string]int64{"active_users": 3, "total_activities": 17}},
	}, 31, fields, time.UTC)

	if len(got) != 31 {
		t.Fatalf("len = %d, want 31", len(got))
	}
	if got[0].Date != "2025-03-01" || got[30].Date != "2025-03-31" {
		t.Fatalf("window = [%s .. %s], want [2025-03-01 .. 2025-03-31]", got[0].Date, got[30].Date)
	}
	for _, f := range fields {
		if v, ok := got[0].Fields[f]; !ok || v != 0 {
			t.Errorf("filled day field %q = %d (present=%v), want 0", f, v, ok)
		}
	}
	if got[29].Fields["total_activities"] != 17 {
		t.Errorf("recorded day value = %d, want 17", got[29].Fields["total_activities"])
	}
}

func TestTable_UndeclaredFieldsDropped(t *testing.T) {
	fixedNow(t, time.Date(2025, 3, 31, 12, 0, 0, 0, time.UTC))

	got := Table([]Row{
		{Date: "2025-03-31", Fields: map[string]int64{"active_users": 2, "stray": 99}},
	}, 7, []string{"active_users"}, time.UTC)

	last := got[len(got)-1]
	if _, ok := last.Fields["stray"]; ok {
		t.Fatal("undeclared field survived filling")
	}
	if last.Fields["active_users"] != 2 {
		t.Fatalf("declared field = %d, want 2", last.Fields["active_users"])
	}
}

func TestSortedFieldNames(t *testing.T) {
	r := Row{Fields: map[string]int64{"b": 1, "a": 2, "c": 3}}
	names := SortedFieldNames(r)
	want := []string{"a", "b", "c"}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("names = %v, want %v", names, want)
		}
	}
}
