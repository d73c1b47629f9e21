// Package export renders reminder templates as an iCalendar document, with
// recurrence as RRULE and exclusions as EXDATE entries.
package export

import (
	"fmt"
	"io"
	"time"

	"github.com/emersion/go-ical"
	"github.com/teambition/rrule-go"

	"remindd/internal/model"
)

const productID = "-//remindd//EN"

// Calendar builds a VCALENDAR with one VEVENT per template.
func Calendar(rems []model.Reminder) (*ical.Calendar, error) {
	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropVersion, "2.0")
	cal.Props.SetText(ical.PropProductID, productID)

	for _, rem := range rems {
		event, err := toEvent(rem.Normalized())
		if err != nil {
			return nil, fmt.Errorf("export reminder %s: %w", rem.ID, err)
		}
		cal.Children = append(cal.Children, event)
	}
	return cal, nil
}

// Write encodes the calendar for rems to w.
func Write(w io.Writer, rems []model.Reminder) error {
	cal, err := Calendar(rems)
	if err != nil {
		return err
	}
	if err := ical.NewEncoder(w).Encode(cal); err != nil {
		return fmt.Errorf("encode calendar: %w", err)
	}
	return nil
}

func toEvent(rem model.Reminder) (*ical.Component, error) {
	ve := ical.NewComponent(ical.CompEvent)
	ve.Props.SetText(ical.PropUID, rem.ID)
	ve.Props.SetText(ical.PropSummary, rem.Title)
	ve.Props.SetDateTime(ical.PropDateTimeStamp, time.Now().UTC())
	ve.Props.SetDateTime(ical.PropDateTimeStart, rem.DueAt)
	if rem.Notes != "" {
		ve.Props.SetText(ical.PropDescription, rem.Notes)
	}

	if rem.IsRecurring() {
		freq, err := rruleFrequency(rem.Frequency)
		if err != nil {
			return nil, err
		}
		opt := rrule.ROption{Freq: freq}
		// Raw prop: RRULE values are already in RECUR syntax and must not
		// go through text escaping.
		rule := ical.NewProp(ical.PropRecurrenceRule)
		rule.Value = opt.String()
		ve.Props.Add(rule)

		for _, day := range rem.ExcludedDays {
			exdate := ical.NewProp(ical.PropExceptionDates)
			exdate.SetDateTime(day.UTC())
			ve.Props.Add(exdate)
		}
	}
	return ve, nil
}

func rruleFrequency(freq model.Frequency) (rrule.Frequency, error) {
	switch freq {
	case model.FrequencyDaily:
		return rrule.DAILY, nil
	case model.FrequencyWeekly:
		return rrule.WEEKLY, nil
	case model.FrequencyMonthly:
		return rrule.MONTHLY, nil
	case model.FrequencyYearly:
		return rrule.YEARLY, nil
	default:
		return 0, fmt.Errorf("no RRULE mapping for frequency %q", freq)
	}
}
