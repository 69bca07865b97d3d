package pipeline

import (
	"errors"
	"time"

	"mileage-manager/internal/models"
	"mileage-manager/internal/store"
)

// FetchSettings loads the singleton settings record, leaving the slot nil
// when none has been saved yet.
func FetchSettings(st store.Store) Step {
	return Step{Name: "settings_info_fetch", Run: func(c *Context) error {
		var s models.Settings
		err := st.FindOne(c.Ctx, store.Settings, nil, nil, &s)
		if errors.Is(err, store.ErrNotFound) {
			c.Settings = nil
			return nil
		}
		if err != nil {
			return err
		}
		c.Settings = &s
		return nil
	}}
}

// UpsertSettings overwrites the singleton settings record, creating it on
// the first save.
func UpsertSettings(st store.Store) Step {
	return Step{Name: "update_settings", Run: func(c *Context) error {
		now := time.Now().UTC()
		s := &models.Settings{
			KmMile:          c.KmMile,
			MaxFuelCapacity: c.MaxFuelCapacity,
			UpdatedAt:       now,
		}

		n, err := st.UpdateByFilter(c.Ctx, store.Settings, nil, map[string]any{
			"km_mile":           s.KmMile,
			"max_fuel_capacity": s.MaxFuelCapacity,
			"updated_at":        now,
		})
		if err != nil {
			return err
		}
		if n == 0 {
			id, err := st.Create(c.Ctx, store.Settings, s)
			if err != nil {
				return err
			}
			s.ID = id
		}
		c.Settings = s
		return nil
	}}
}
