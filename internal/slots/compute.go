// Package slots computes which duration-sized windows of a day are already
// occupied by calendar events.
package slots

import (
	"sort"
	"time"

	"bookdesk/internal/models"
)

// Booked walks every event from start to end in steps of duration and records
// the wall-clock (hour, minute) of each step rendered in loc. Duplicate pairs
// across events collapse into one; the result is sorted by hour then minute.
//
// An event shorter than duration still occupies its start slot: the walk runs
// while the cursor is strictly before the event end.
func Booked(events []models.Event, duration time.Duration, loc *time.Location) []models.Slot {
	if duration <= 0 {
		duration = time.Duration(models.DefaultDurationMinutes) * time.Minute
	}

	seen := make(map[models.Slot]struct{})
	booked := make([]models.Slot, 0)

	for _, ev := range events {
		for cursor := ev.Start; cursor.Before(ev.End); cursor = cursor.Add(duration) {
			local := cursor.In(loc)
			slot := models.Slot{Hour: local.Hour(), Minute: local.Minute()}
			if _, ok := seen[slot]; ok {
				continue
			}
			seen[slot] = struct{}{}
			booked = append(booked, slot)
		}
	}

	sort.Slice(booked, func(i, j int) bool { return booked[i].Before(booked[j]) })
	return booked
}
