package handlers

import (
	"context"
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mileage-manager/internal/models"
	"mileage-manager/internal/store"
)

func yesterday() string {
	return time.Now().AddDate(0, 0, -1).Format("01/02/2006")
}

func readingFormValues(date, odo, fuelAdded, fuelReadings, destination string) url.Values {
	return url.Values{
		"travel_date":   {date},
		"odo_readings":  {odo},
		"fuel_added":    {fuelAdded},
		"fuel_readings": {fuelReadings},
		"destination":   {destination},
	}
}

func seedStoredReading(t *testing.T, d Deps, km int, fuel float64, age time.Duration) {
	t.Helper()
	created := time.Now().UTC().Add(-age)
	_, err := d.Store.Create(context.Background(), store.Readings, &models.Reading{
		Date:         created,
		KmReadings:   km,
		FuelReadings: fuel,
		Destination:  "office",
		CreatedAt:    created,
		UpdatedAt:    created,
	})
	require.NoError(t, err)
}

func countReadings(t *testing.T, d Deps) int64 {
	t.Helper()
	n, err := d.Store.Count(context.Background(), store.Readings, nil)
	require.NoError(t, err)
	return n
}

func TestSubmitReadingInvalidOdometerCreatesNothing(t *testing.T) {
	d := newTestDeps()
	h := NewRouter(d)
	ck := signUp(t, h, "abc@sample.com", "123456")

	rec := doRequest(h, http.MethodPost, "/readings",
		readingFormValues(yesterday(), "0", "", "10", "office"), ck)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Please enter valid odometer readings.")
	assert.Zero(t, countReadings(t, d))
}

func TestSubmitReadingValidationAccumulatesAllErrors(t *testing.T) {
	d := newTestDeps()
	h := NewRouter(d)
	ck := signUp(t, h, "abc@sample.com", "123456")

	rec := doRequest(h, http.MethodPost, "/readings",
		readingFormValues("", "", "", "", ""), ck)
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Please enter the date.")
	assert.Contains(t, body, "Please enter the odometer readings.")
	assert.Contains(t, body, "Please enter the fuel readings.")
	assert.Contains(t, body, "Please enter the destination.")
	assert.Zero(t, countReadings(t, d))
}

func TestSubmitReadingRejectsDuplicateOdometer(t *testing.T) {
	d := newTestDeps()
	h := NewRouter(d)
	ck := signUp(t, h, "abc@sample.com", "123456")
	seedStoredReading(t, d, 1200, 10, 24*time.Hour)

	rec := doRequest(h, http.MethodPost, "/readings",
		readingFormValues(yesterday(), "1200", "", "10", "office"), ck)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Odometer readings 1200 already entered.")
	assert.Equal(t, int64(1), countReadings(t, d))
}

func TestSubmitReadingRejectsBackwardsOdometer(t *testing.T) {
	d := newTestDeps()
	h := NewRouter(d)
	ck := signUp(t, h, "abc@sample.com", "123456")
	seedStoredReading(t, d, 2000, 10, 24*time.Hour)

	rec := doRequest(h, http.MethodPost, "/readings",
		readingFormValues(yesterday(), "1500", "", "10", "office"), ck)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Odometer readings less than previous entry.")
	assert.Equal(t, int64(1), countReadings(t, d))
}

func TestSubmitReadingRejectsFuelAboveBudget(t *testing.T) {
	d := newTestDeps()
	h := NewRouter(d)
	ck := signUp(t, h, "abc@sample.com", "123456")
	seedStoredReading(t, d, 1000, 5, 24*time.Hour)

	// 5 in the tank plus 2 added cannot read 12.
	rec := doRequest(h, http.MethodPost, "/readings",
		readingFormValues(yesterday(), "1100", "2", "12", "office"), ck)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Fuel readings higher than sum of added fuel and previous fuel readings.")
	assert.Equal(t, int64(1), countReadings(t, d))
}

func TestSubmitReadingSavesValidEntry(t *testing.T) {
	d := newTestDeps()
	h := NewRouter(d)
	ck := signUp(t, h, "abc@sample.com", "123456")

	rec := doRequest(h, http.MethodPost, "/readings",
		readingFormValues(yesterday(), "1500", "5", "12", "airport"), ck)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "alert alert-danger")

	var saved models.Reading
	require.NoError(t, d.Store.FindOne(context.Background(), store.Readings, store.Filter{"km_readings": 1500}, nil, &saved))
	assert.Equal(t, "airport", saved.Destination)
	assert.Equal(t, 5.0, saved.FuelAdded)
	assert.Equal(t, 12.0, saved.FuelReadings)
}

func TestDashboardListsReadingsAndDestinations(t *testing.T) {
	d := newTestDeps()
	h := NewRouter(d)
	ck := signUp(t, h, "abc@sample.com", "123456")
	seedStoredReading(t, d, 1000, 10, 48*time.Hour)
	seedStoredReading(t, d, 1200, 8, 24*time.Hour)

	rec := doRequest(h, http.MethodGet, "/readings", nil, ck)
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "form_readings")
	assert.Contains(t, body, "readings_list_section")
	assert.Contains(t, body, "1000")
	assert.Contains(t, body, "1200")
	assert.Contains(t, body, "office")
}
