package handlers

import (
	"log"
	"net/http"
	"strings"

	"mileage-manager/internal/pipeline"
	"mileage-manager/internal/render"
)

func renderSettings(d Deps, w http.ResponseWriter, r *http.Request, page render.SettingsPage) {
	if id, ok := IdentityFrom(r); ok {
		page.UserName = id.Username
	}

	c := &pipeline.Context{Ctx: r.Context()}
	if err := pipeline.Run(c, pipeline.FetchSettings(d.Store)); err != nil {
		log.Printf("settings: %v", err)
		page.Errors = append(page.Errors, genericErrorMessage)
	}
	if c.Settings != nil {
		page.KmMile = c.Settings.KmMile
		page.MaxFuelCapacity = c.Settings.MaxFuelCapacity
	}

	render.Page(w, http.StatusOK, "settings", page)
}

// ShowSettings renders the current unit system and fuel capacity.
func ShowSettings(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		renderSettings(d, w, r, render.SettingsPage{})
	}
}

// UpdateSettings validates and upserts the singleton settings record.
func UpdateSettings(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		kmMile := strings.TrimSpace(r.PostFormValue("km_mile"))
		capacity := strings.TrimSpace(r.PostFormValue("max_fuel_capacity"))

		value, errs := validateSettings(kmMile, capacity)
		if len(errs) > 0 {
			renderSettings(d, w, r, render.SettingsPage{Errors: errs})
			return
		}

		c := &pipeline.Context{Ctx: r.Context(), KmMile: kmMile, MaxFuelCapacity: value}
		if err := pipeline.Run(c, pipeline.UpsertSettings(d.Store)); err != nil {
			log.Printf("update settings: %v", err)
			renderSettings(d, w, r, render.SettingsPage{Errors: []string{genericErrorMessage}})
			return
		}

		renderSettings(d, w, r, render.SettingsPage{Success: true})
	}
}
