// Package render produces the HTML pages. Templates are deliberately
// plain: the interesting behavior lives in the pipelines, not the views.
package render

import (
	"embed"
	"html/template"
	"log"
	"net/http"

	"mileage-manager/internal/models"
)

//go:embed templates/*.tmpl
var files embed.FS

var pages = template.Must(template.ParseFS(files, "templates/*.tmpl"))

type SigninPage struct {
	Title     string
	HeaderMsg string
	Email     string
	Notice    string
	Errors    []string
}

type SignupPage struct {
	Title      string
	HeaderMsg  string
	Email      string
	FirstAdmin bool
	Errors     []string
}

type ForgotPasswordPage struct {
	Email  string
	Errors []string
}

type ResetPasswordPage struct {
	ResetLink string
	Errors    []string
}

type ChangePasswordPage struct {
	UserName string
	Errors   []string
}

type MessagePage struct {
	Title            string
	HeaderMsg        string
	Messages         []string
	ResetLink        string
	DisplayResetLink bool
}

type DashboardPage struct {
	UserName     string
	Errors       []string
	TravelDate   string
	OdoReadings  string
	FuelAdded    string
	FuelReadings string
	Destination  string
	Jump         string
	Destinations []string
	Readings     []models.Reading
}

type SettingsPage struct {
	UserName        string
	Errors          []string
	Success         bool
	KmMile          string
	MaxFuelCapacity int
}

// Page writes the named template with the given data. A template error at
// this point is a programming mistake; it is logged and the partial
// response stands.
func Page(w http.ResponseWriter, status int, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := pages.ExecuteTemplate(w, name, data); err != nil {
		log.Printf("render %s: %v", name, err)
	}
}
