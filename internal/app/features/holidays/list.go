// internal/app/features/holidays/list.go
package holidays

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/dalemusser/waffle/pantry/query"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"

	uierrors "github.com/dalemusser/learnscope/internal/app/features/errors"
	holidaystore "github.com/dalemusser/learnscope/internal/app/store/holidays"
	"github.com/dalemusser/learnscope/internal/app/system/timeouts"
	"github.com/dalemusser/learnscope/internal/app/system/viewdata"
)

// HolidayVM is one holiday row in list responses.
type HolidayVM struct {
	Date   string `json:"date"`
	Name   string `json:"name"`
	NameEN string `json:"name_en"`
}

// YearResponse is the payload for GET /holidays/api/{year}.
type YearResponse struct {
	Year     int         `json:"year"`
	Holidays []HolidayVM `json:"holidays"`
}

type listPageData struct {
	viewdata.BaseVM
	Year     int
	Holidays []HolidayVM
}

func toVMs(hs []holidaystore.Holiday) []HolidayVM {
	out := make([]HolidayVM, 0, len(hs))
	for _, h := range hs {
		out = append(out, HolidayVM{Date: h.Date, Name: h.Name, NameEN: h.NameEN})
	}
	return out
}

// ServeList renders the holiday calendar for one year. The year query
// parameter defaults to the current year.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	year := time.Now().Year()
	if s := query.Get(r, "year"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n >= 1970 && n <= 2100 {
			year = n
		}
	}

	rows, err := h.Holidays.ListYear(ctx, year)
	if err != nil {
		h.ErrLog.LogServerError(w, r,
			"failed to list holidays", err,
			"Unable to load the holiday calendar. Please try again.", "/")
		return
	}

	data := listPageData{
		BaseVM:   viewdata.NewBaseVM(r, "Holidays", "/"),
		Year:     year,
		Holidays: toVMs(rows),
	}
	templates.Render(w, r, "holidays_list", data)
}

// ServeYearJSON handles GET /holidays/api/{year}.
func (h *Handler) ServeYearJSON(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	year, err := strconv.Atoi(chi.URLParam(r, "year"))
	if err != nil || year < 1970 || year > 2100 {
		uierrors.WriteJSONError(w, http.StatusBadRequest, "invalid year")
		return
	}

	rows, err := h.Holidays.ListYear(ctx, year)
	if err != nil {
		h.ErrLog.LogJSONError(w, r, http.StatusInternalServerError,
			"failed to list holidays", err,
			"Unable to load the holiday calendar.")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(YearResponse{Year: year, Holidays: toVMs(rows)})
}
