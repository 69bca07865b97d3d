package handlers

import (
	"log"
	"net/http"
	"strings"

	"mileage-manager/internal/pipeline"
	"mileage-manager/internal/render"
)

// The fuel capacity bound used until settings have been saved.
const defaultFuelCapacity = 20

func fuelCapacity(d Deps, r *http.Request) float64 {
	c := &pipeline.Context{Ctx: r.Context()}
	if err := pipeline.Run(c, pipeline.FetchSettings(d.Store)); err != nil {
		log.Printf("fuel capacity: %v", err)
		return defaultFuelCapacity
	}
	if c.Settings == nil || c.Settings.MaxFuelCapacity < 1 {
		return defaultFuelCapacity
	}
	return float64(c.Settings.MaxFuelCapacity)
}

// renderDashboard loads the destination list and readings history, then
// renders the dashboard around whatever errors or form echo the caller
// has put on the page.
func renderDashboard(d Deps, w http.ResponseWriter, r *http.Request, page render.DashboardPage) {
	if id, ok := IdentityFrom(r); ok {
		page.UserName = id.Username
	}

	c := &pipeline.Context{Ctx: r.Context()}
	err := pipeline.Run(c,
		pipeline.DistinctDestinations(d.Store),
		pipeline.FetchReadings(d.Store),
	)
	if err != nil {
		log.Printf("dashboard: %v", err)
		page.Errors = append(page.Errors, genericErrorMessage)
	}
	page.Destinations = c.Destinations
	page.Readings = c.Readings

	render.Page(w, http.StatusOK, "dashboard", page)
}

// Dashboard shows the travel entry form and the readings history.
func Dashboard(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		renderDashboard(d, w, r, render.DashboardPage{})
	}
}

// SubmitReading validates a travel entry, rejects duplicate or backwards
// odometer values, and saves it.
func SubmitReading(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		form := readingForm{
			TravelDate:   strings.TrimSpace(r.PostFormValue("travel_date")),
			OdoReadings:  strings.TrimSpace(r.PostFormValue("odo_readings")),
			FuelAdded:    strings.TrimSpace(r.PostFormValue("fuel_added")),
			FuelReadings: strings.TrimSpace(r.PostFormValue("fuel_readings")),
			Destination:  strings.TrimSpace(r.PostFormValue("destination")),
		}
		echo := render.DashboardPage{
			TravelDate:   form.TravelDate,
			OdoReadings:  form.OdoReadings,
			FuelAdded:    form.FuelAdded,
			FuelReadings: form.FuelReadings,
			Destination:  form.Destination,
		}

		entry, errs := validateReading(form, fuelCapacity(d, r))
		if len(errs) > 0 {
			echo.Errors = errs
			renderDashboard(d, w, r, echo)
			return
		}

		c := &pipeline.Context{Ctx: r.Context(), Entry: entry}
		err := pipeline.Run(c,
			pipeline.DuplicateOdometerCheck(d.Store),
			pipeline.FetchLatestReading(d.Store),
			pipeline.PreviousEntryChecks(),
			pipeline.SaveReading(d.Store),
		)
		if err != nil {
			if f, ok := pipeline.AsFailure(err); ok {
				echo.Errors = f.Messages
			} else {
				log.Printf("submit reading: %v", err)
				echo.Errors = []string{genericErrorMessage}
			}
			renderDashboard(d, w, r, echo)
			return
		}

		renderDashboard(d, w, r, render.DashboardPage{Jump: "readings_list_section"})
	}
}
