package pipeline

import (
	"errors"
	"fmt"
	"time"

	"mileage-manager/internal/models"
	"mileage-manager/internal/store"
)

// DuplicateOdometerCheck rejects an entry whose odometer value already
// exists in any stored reading.
func DuplicateOdometerCheck(st store.Store) Step {
	return Step{Name: "repetitive_entry_check", Run: func(c *Context) error {
		n, err := st.Count(c.Ctx, store.Readings, store.Filter{"km_readings": c.Entry.KmReadings})
		if err != nil {
			return err
		}
		if n > 0 {
			return Fail(CodeRejected, fmt.Sprintf("Odometer readings %d already entered.", c.Entry.KmReadings))
		}
		return nil
	}}
}

// FetchLatestReading loads the most recent entry into the Latest slot.
// A missing record is fine: the first entry has nothing to compare with.
func FetchLatestReading(st store.Store) Step {
	return Step{Name: "previous_entry_fetch", Run: func(c *Context) error {
		var r models.Reading
		err := st.FindOne(c.Ctx, store.Readings, nil, &store.Sort{Field: "created_at", Desc: true}, &r)
		if errors.Is(err, store.ErrNotFound) {
			c.Latest = nil
			return nil
		}
		if err != nil {
			return err
		}
		c.Latest = &r
		return nil
	}}
}

// PreviousEntryChecks compares the submission with the latest stored
// entry: the odometer must not go backwards, the fuel gauge cannot exceed
// the previous level plus what was added, and dates must stay ordered.
func PreviousEntryChecks() Step {
	return Step{Name: "previous_entry_check", Run: func(c *Context) error {
		prev := c.Latest
		c.Latest = nil
		if prev == nil {
			return nil
		}

		var msgs []string
		if prev.KmReadings > c.Entry.KmReadings {
			msgs = append(msgs, "Odometer readings less than previous entry.")
		}
		if c.Entry.FuelReadings > c.Entry.FuelAdded+prev.FuelReadings {
			msgs = append(msgs, "Fuel readings higher than sum of added fuel and previous fuel readings.")
		}
		if prev.Date.After(c.Entry.Date) {
			msgs = append(msgs, "Date can not be earlier than last entry.")
		}

		if len(msgs) > 0 {
			return Fail(CodeRejected, msgs...)
		}
		return nil
	}}
}

// SaveReading persists the validated entry.
func SaveReading(st store.Store) Step {
	return Step{Name: "save_travel_info", Run: func(c *Context) error {
		now := time.Now().UTC()
		c.Entry.CreatedAt = now
		c.Entry.UpdatedAt = now

		id, err := st.Create(c.Ctx, store.Readings, &c.Entry)
		if err != nil {
			return err
		}
		c.Entry.ID = id
		return nil
	}}
}

// DistinctDestinations fills the destination list shown on the dashboard.
func DistinctDestinations(st store.Store) Step {
	return Step{Name: "destination_list_fetch", Run: func(c *Context) error {
		list, err := st.Distinct(c.Ctx, store.Readings, "destination", nil)
		if err != nil {
			return err
		}
		c.Destinations = list
		return nil
	}}
}

// FetchReadings loads every reading in entry order for the dashboard list.
func FetchReadings(st store.Store) Step {
	return Step{Name: "readings_data_fetch", Run: func(c *Context) error {
		var list []models.Reading
		err := st.Find(c.Ctx, store.Readings, nil, &store.Sort{Field: "created_at"}, &list)
		if err != nil {
			return err
		}
		c.Readings = list
		return nil
	}}
}
