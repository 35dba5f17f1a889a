package ui

import (
	"fmt"
	"time"
)

func humanizeDuration(d time.Duration) string {
	switch {
	case d < time.Second:
		return "now"
	case d < time.Minute:
		return fmt.Sprintf("%ds", int(d.Seconds()))
	case d < time.Hour:
		return fmt.Sprintf("%dm", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh", int(d.Hours()))
	default:
		return fmt.Sprintf("%dd", int(d.Hours()/24))
	}
}

func formatTimestamp(t time.Time) string {
	if t.IsZero() {
		return "----------"
	}
	return t.Local().Format("2006-01-02 15:04")
}

// clampIndex keeps i inside [0, n). Zero n yields zero.
func clampIndex(i, n int) int {
	if n <= 0 || i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}

// paginate returns page (1-based) of items and the page count. Out of range
// pages clamp to the nearest valid one.
func paginate[T any](items []T, page, size int) ([]T, int) {
	if size <= 0 {
		size = len(items)
		if size == 0 {
			size = 1
		}
	}
	pages := (len(items) + size - 1) / size
	if pages == 0 {
		pages = 1
	}
	if page < 1 {
		page = 1
	}
	if page > pages {
		page = pages
	}
	start := (page - 1) * size
	end := min(start+size, len(items))
	if start >= len(items) {
		return nil, pages
	}
	return items[start:end], pages
}
