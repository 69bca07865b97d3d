package handlers

import (
	"strconv"
	"time"

	"mileage-manager/internal/models"
	"mileage-manager/internal/utils"
)

// Field validators accumulate every error before reporting, so the user
// sees the full list in one round trip. They run before any pipeline
// touches the store.

func validateEmail(errs []string, email string) []string {
	switch {
	case email == "":
		errs = append(errs, "Please enter email id.")
	case utils.Validate.Var(email, "email") != nil:
		errs = append(errs, "Please enter valid email id.")
	case len(email) > 100:
		errs = append(errs, "Email id too long.")
	}
	return errs
}

func validatePassword(errs []string, password string) []string {
	switch {
	case password == "":
		errs = append(errs, "Please enter password.")
	case len(password) < 6:
		errs = append(errs, "Password should be at least 6 characters.")
	case len(password) > 30:
		errs = append(errs, "Password too long.")
	}
	return errs
}

func validateRetypePassword(errs []string, password, retype string) []string {
	if password != retype {
		errs = append(errs, "Retype password does not match.")
	}
	return errs
}

type readingForm struct {
	TravelDate   string
	OdoReadings  string
	FuelAdded    string
	FuelReadings string
	Destination  string
}

var dateLayouts = []string{"01/02/2006", "1/2/2006", "2006-01-02"}

func parseDate(s string) (time.Time, bool) {
	for _, layout := range dateLayouts {
		if d, err := time.Parse(layout, s); err == nil {
			return d, true
		}
	}
	return time.Time{}, false
}

// validateReading checks the travel entry form against the configured
// fuel capacity and returns the parsed entry alongside any errors.
func validateReading(form readingForm, capacity float64) (models.Reading, []string) {
	var entry models.Reading
	var errs []string

	switch {
	case form.TravelDate == "":
		errs = append(errs, "Please enter the date.")
	case len(form.TravelDate) > 10:
		errs = append(errs, "Please enter valid date.")
	default:
		d, ok := parseDate(form.TravelDate)
		switch {
		case !ok:
			errs = append(errs, "Please enter valid date.")
		case d.After(time.Now()):
			errs = append(errs, "Date exceeds today's date.")
		default:
			entry.Date = d
		}
	}

	switch {
	case form.OdoReadings == "":
		errs = append(errs, "Please enter the odometer readings.")
	case len(form.OdoReadings) > 6:
		errs = append(errs, "Please enter valid odometer readings.")
	default:
		n, err := strconv.Atoi(form.OdoReadings)
		if err != nil || n < 1 {
			errs = append(errs, "Please enter valid odometer readings.")
		} else {
			entry.KmReadings = n
		}
	}

	// Fuel added is optional; an empty field means none was added.
	if form.FuelAdded != "" {
		v, err := strconv.ParseFloat(form.FuelAdded, 64)
		switch {
		case err != nil:
			errs = append(errs, "Please enter valid added fuel amount.")
		case v < 0:
			errs = append(errs, "Added fuel quantity can not be negative.")
		case v > capacity:
			errs = append(errs, "Added fuel quantity exceeds the maximum fuel capacity.")
		default:
			entry.FuelAdded = v
		}
	}

	if form.FuelReadings == "" {
		errs = append(errs, "Please enter the fuel readings.")
	} else {
		v, err := strconv.ParseFloat(form.FuelReadings, 64)
		switch {
		case err != nil:
			errs = append(errs, "Please enter valid fuel readings.")
		case v < 0:
			errs = append(errs, "Fuel readings can not be negative.")
		case v > capacity:
			errs = append(errs, "Fuel readings exceeds the maximum fuel capacity.")
		default:
			entry.FuelReadings = v
		}
	}

	switch {
	case form.Destination == "":
		errs = append(errs, "Please enter the destination.")
	case len(form.Destination) > 50:
		errs = append(errs, "Destination name too long.")
	default:
		entry.Destination = form.Destination
	}

	return entry, errs
}

func validateSettings(kmMile, capacity string) (int, []string) {
	var errs []string

	switch {
	case kmMile == "":
		errs = append(errs, "Please select Kilometer or Mile.")
	case kmMile != models.UnitKm && kmMile != models.UnitMile:
		errs = append(errs, "Please enter valid Km/Mile value.")
	}

	var value int
	switch {
	case capacity == "":
		errs = append(errs, "Please enter maximum fuel capacity.")
	case len(capacity) > 2:
		errs = append(errs, "Please enter valid maximum fuel capacity.")
	default:
		n, err := strconv.Atoi(capacity)
		if err != nil || n < 1 {
			errs = append(errs, "Please enter valid maximum fuel capacity.")
		} else {
			value = n
		}
	}

	return value, errs
}
