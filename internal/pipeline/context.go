package pipeline

import (
	"context"

	"mileage-manager/internal/models"
)

// Context is the per-request state threaded through a pipeline. Input
// fields are set by the handler before Run; result slots are filled by
// query steps and consumed by decision steps. Decision steps zero the
// scratch slot (Count, Latest) they consume so stale values never leak
// into a later step.
type Context struct {
	Ctx context.Context

	// Submitted form fields. Password always holds the candidate being
	// verified or stored; NewPassword holds the replacement on reset and
	// change-password flows.
	Email       string
	Password    string
	NewPassword string
	Role        string
	FirstAdmin  bool
	ResetPhrase string

	// Reading entry and settings input.
	Entry           models.Reading
	KmMile          string
	MaxFuelCapacity int

	// Reset-link construction.
	Host             string
	Env              string
	ResetLink        string
	DisplayResetLink bool

	// Result slots.
	User         *models.User
	Token        *models.PassReset
	Latest       *models.Reading
	Settings     *models.Settings
	Readings     []models.Reading
	Destinations []string
	Count        int64
}
