package schedule

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"strconv"
	"strings"
	"time"

	"focusdesk/app/core/googleapi"
	"focusdesk/app/core/notify"
)

const recurrenceWeekly = "weekly"

// SyncToCalendar mirrors a schedule into Google Calendar for one date range.
// Per activity: any previously created event is deleted, the first weekly
// occurrence on or after startDate is computed, occurrences past the range
// end are skipped, and the rest are batch-created as weekly recurring
// events. Created event ids are matched back by summary and the schedule is
// re-persisted with them. The local schedule is never reverted.
func (s *Service) SyncToCalendar(ctx context.Context, sched Schedule, startDate, endDate string) error {
	until, err := time.ParseInLocation("2006-01-02", endDate, time.Local)
	if err != nil {
		return fmt.Errorf("parse end date %q: %w", endDate, err)
	}
	until = time.Date(until.Year(), until.Month(), until.Day(), 23, 59, 59, 0, time.Local)
	untilStr := until.UTC().Format("20060102T150405Z")

	rangeStart, err := time.ParseInLocation("2006-01-02", startDate, time.Local)
	if err != nil {
		return fmt.Errorf("parse start date %q: %w", startDate, err)
	}

	var events []googleapi.Event
	eventful := map[string]bool{} // activity id -> event submitted

	for _, activity := range sched.Activities {
		if activity.GoogleEventID != "" {
			if err := s.calendar.DeleteEvent(ctx, activity.GoogleEventID); err != nil {
				log.Printf("[Schedule] stale event %s not deleted: %v", activity.GoogleEventID, err)
			}
		}

		daysToAdd := (activity.DayOfWeek - int(rangeStart.Weekday()) + 7) % 7
		occurrence := rangeStart.AddDate(0, 0, daysToAdd)
		if occurrence.After(until) {
			continue
		}

		start, end := s.activityTimes(activity, occurrence)
		events = append(events, googleapi.Event{
			Summary:     activity.Title,
			Description: activity.Description,
			StartTime:   start.Format("2006-01-02T15:04:05"),
			EndTime:     end.Format("2006-01-02T15:04:05"),
			Recurrence:  []string{"RRULE:FREQ=WEEKLY;UNTIL=" + untilStr},
		})
		eventful[activity.ID] = true
	}

	var created []googleapi.CreatedEvent
	if len(events) > 0 {
		created, err = s.calendar.CreateEventsBatch(ctx, events)
		if errors.Is(err, googleapi.ErrNoAccessToken) {
			return fmt.Errorf("sync schedule %q: %w", sched.Title, err)
		}
		if err != nil {
			return fmt.Errorf("sync schedule %q: %w", sched.Title, err)
		}
	}

	updated := make([]Activity, 0, len(sched.Activities))
	for _, activity := range sched.Activities {
		activity.GoogleEventID = ""
		activity.Recurrence = ""
		if eventful[activity.ID] {
			// Summary match tolerates duplicate titles: the first created
			// event with that summary wins for every duplicate.
			for _, ev := range created {
				if ev.Summary == activity.Title {
					activity.GoogleEventID = ev.EventID
					activity.Recurrence = recurrenceWeekly
					break
				}
			}
		}
		updated = append(updated, activity)
	}
	sort.SliceStable(updated, func(i, j int) bool {
		return updated[i].DayOfWeek < updated[j].DayOfWeek
	})
	sched.Activities = updated

	if err := s.persist(ctx, sched); err != nil {
		return fmt.Errorf("re-persist schedule %q: %w", sched.Title, err)
	}
	s.bus.Changed(notify.TopicSchedules)
	return nil
}

// activityTimes resolves the concrete start/end timestamps of an occurrence.
// An activity without a start time gets the configured defaults; one with a
// start but no end runs for an hour.
func (s *Service) activityTimes(activity Activity, day time.Time) (time.Time, time.Time) {
	startClock := activity.StartTime
	if startClock == "" {
		startClock = s.opts.DefaultStartTime
	}
	startHour, startMin := parseClock(startClock, 9, 0)
	start := time.Date(day.Year(), day.Month(), day.Day(), startHour, startMin, 0, 0, day.Location())

	if activity.StartTime != "" && activity.EndTime == "" {
		return start, start.Add(time.Hour)
	}
	endClock := activity.EndTime
	if endClock == "" {
		endClock = s.opts.DefaultEndTime
	}
	endHour, endMin := parseClock(endClock, 10, 0)
	end := time.Date(day.Year(), day.Month(), day.Day(), endHour, endMin, 0, 0, day.Location())
	return start, end
}

func parseClock(clock string, fallbackHour, fallbackMin int) (int, int) {
	parts := strings.SplitN(clock, ":", 2)
	if len(parts) != 2 {
		return fallbackHour, fallbackMin
	}
	hour, err1 := strconv.Atoi(parts[0])
	min, err2 := strconv.Atoi(parts[1])
	if err1 != nil || err2 != nil || hour < 0 || hour > 23 || min < 0 || min > 59 {
		return fallbackHour, fallbackMin
	}
	return hour, min
}
