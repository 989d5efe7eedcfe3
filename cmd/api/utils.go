package main

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/farxc/prestacao-contas/internal/store"
)

func parseDateOrDefault(dateStr, defaultStr string) string {
	if dateStr == "" {
		return defaultStr
	}
	return dateStr
}

func parseTime(dateStr string) (time.Time, error) {
	return time.Parse("2006-01-02", dateStr)
}

func parseLimit(r *http.Request, def int) (int, error) {
	limitParam := r.URL.Query().Get("limit")
	if limitParam == "" {
		return def, nil
	}
	limit, err := strconv.Atoi(limitParam)
	if err != nil || limit < 0 {
		return 0, fmt.Errorf("invalid limit %q", limitParam)
	}
	return limit, nil
}

// parseReportFilter reads start_date, end_date, uf, sphere, min_amount and
// limit from the query string.
func parseReportFilter(r *http.Request, defaultLimit int) (store.ReportFilter, error) {
	q := r.URL.Query()
	var filter store.ReportFilter
	var err error

	filter.StartDate, err = parseTime(parseDateOrDefault(q.Get("start_date"), "2000-01-01"))
	if err != nil {
		return filter, fmt.Errorf("invalid start_date (YYYY-MM-DD expected)")
	}
	filter.EndDate, err = parseTime(parseDateOrDefault(q.Get("end_date"), "2100-12-31"))
	if err != nil {
		return filter, fmt.Errorf("invalid end_date (YYYY-MM-DD expected)")
	}
	if filter.EndDate.Before(filter.StartDate) {
		return filter, fmt.Errorf("end_date is before start_date")
	}

	filter.UF = strings.ToUpper(strings.TrimSpace(q.Get("uf")))
	filter.Sphere = q.Get("sphere")
	if filter.Sphere == "" {
		filter.Sphere = "Nacional"
	}

	filter.MinAmount = store.DefaultMinAmount
	if v := q.Get("min_amount"); v != "" {
		filter.MinAmount, err = strconv.ParseFloat(v, 64)
		if err != nil {
			return filter, fmt.Errorf("invalid min_amount %q", v)
		}
	}

	filter.Limit, err = parseLimit(r, defaultLimit)
	return filter, err
}
