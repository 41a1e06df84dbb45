// internal/app/system/holidayfetch/holidayfetch_test.go
package holidayfetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"

	"github.com/dalemusser/learnscope/internal/app/store/holidays"
)

type fakeSink struct {
	seen map[string]holidays.Holiday
}

func (f *fakeSink) Upsert(ctx context.Context, h holidays.Holiday) (bool, error) {
	if f.seen == nil {
		f.seen = make(map[string]holidays.Holiday)
	}
	_, existed := f.seen[h.Date]
	f.seen[h.Date] = h
	return !existed, nil
}

func TestFetchYear(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/2026/date.json" {
			t.Errorf("unexpected path %s", r.URL.Path)
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"2026-01-01":"元日","2026-05-05":"こどもの日","2026-05-06":"休日 こどもの日"}`))
	}))
	defer srv.Close()

	f := New(srv.URL, zap.NewNop())
	got, err := f.FetchYear(context.Background(), 2026)
	if err != nil {
		t.Fatalf("FetchYear: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("len = %d, want 3", len(got))
	}
	// Sorted by date.
	if got[0].Date != "2026-01-01" || got[2].Date != "2026-05-06" {
		t.Fatalf("order wrong: %v", got)
	}
	if got[0].NameEN != "New Year's Day" {
		t.Fatalf("NameEN = %q", got[0].NameEN)
	}
	if got[2].NameEN != "Public Holiday Children's Day" {
		t.Fatalf("compound NameEN = %q", got[2].NameEN)
	}
	if got[0].Year != 2026 {
		t.Fatalf("Year = %d", got[0].Year)
	}
}

func TestFetchYearBadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusInternalServerError)
	}))
	defer srv.Close()

	f := New(srv.URL, zap.NewNop())
	if _, err := f.FetchYear(context.Background(), 2026); err == nil {
		t.Fatal("want error on non-200 response")
	}
}

func TestLoadYears(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"2026-01-01":"元日","2026-02-11":"建国記念の日"}`))
	}))
	defer srv.Close()

	f := New(srv.URL, zap.NewNop())
	sink := &fakeSink{}

	stats, err := f.LoadYears(context.Background(), sink, []int{2026})
	if err != nil {
		t.Fatalf("LoadYears: %v", err)
	}
	if stats.Fetched != 2 || stats.Created != 2 || stats.Updated != 0 {
		t.Fatalf("stats = %+v", stats)
	}

	// Second load updates rather than creates.
	stats, err = f.LoadYears(context.Background(), sink, []int{2026})
	if err != nil {
		t.Fatalf("second LoadYears: %v", err)
	}
	if stats.Created != 0 || stats.Updated != 2 {
		t.Fatalf("second stats = %+v", stats)
	}
}

func TestTranslateNameFallback(t *testing.T) {
	if got := TranslateName("謎の祝日"); got != "謎の祝日" {
		t.Fatalf("unknown name changed: %q", got)
	}
}
