package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voicelane/frontdesk/core"
)

func TestInitSeedsTreatmentCatalog(t *testing.T) {
	b := New()
	require.NoError(t, b.Init(context.Background()))
	require.NoError(t, b.Init(context.Background())) // idempotent

	all, err := b.Treatments(context.Background(), "", "")
	require.NoError(t, err)
	assert.Len(t, all, 11)
}

func TestTreatmentLookups(t *testing.T) {
	b := New()
	require.NoError(t, b.Init(context.Background()))

	byName, err := b.Treatments(context.Background(), "Basic Cleaning", "")
	require.NoError(t, err)
	require.Len(t, byName, 1)
	assert.Equal(t, 120, byName[0].PriceRangeMin)

	byCategory, err := b.Treatments(context.Background(), "", "restorative")
	require.NoError(t, err)
	assert.Len(t, byCategory, 3)

	byKeyword, err := b.SearchTreatments(context.Background(), "cleaning")
	require.NoError(t, err)
	assert.Len(t, byKeyword, 2)

	pricing, err := b.TreatmentPricing(context.Background(), "root_canal")
	require.NoError(t, err)
	assert.Equal(t, 1200, pricing.PriceRangeMax)

	_, err = b.TreatmentPricing(context.Background(), "unicorn_polish")
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestPatientLookupAndUniqueness(t *testing.T) {
	b := New()
	require.NoError(t, b.Init(context.Background()))

	p := core.Patient{ID: core.NewID(), Name: "Ada", Phone: "555-0101", DateOfBirth: "1990-01-01", Status: "active"}
	require.NoError(t, b.CreatePatient(context.Background(), p))

	found, err := b.FindPatient(context.Background(), "555-0101", "1990-01-01")
	require.NoError(t, err)
	assert.Equal(t, p.ID, found.ID)
	assert.NotNil(t, found.LastVisit)

	_, err = b.FindPatient(context.Background(), "555-0101", "1991-01-01")
	assert.ErrorIs(t, err, core.ErrNotFound)

	dup := core.Patient{ID: core.NewID(), Name: "Other", Phone: "555-0101", Status: "active"}
	assert.Error(t, b.CreatePatient(context.Background(), dup))
}

func TestAppointmentHistoryOrdering(t *testing.T) {
	b := New()
	require.NoError(t, b.Init(context.Background()))

	pid := core.NewID()
	for _, a := range []core.Appointment{
		{ID: core.NewID(), PatientID: pid, Date: "2026-01-10", Time: "09:00"},
		{ID: core.NewID(), PatientID: pid, Date: "2026-03-02", Time: "14:30"},
		{ID: core.NewID(), PatientID: pid, Date: "2026-03-02", Time: "10:00"},
	} {
		require.NoError(t, b.CreateAppointment(context.Background(), a))
	}

	history, err := b.AppointmentHistory(context.Background(), pid, 2)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "14:30", history[0].Time)
	assert.Equal(t, "10:00", history[1].Time)
}

func TestSessionDataUnknownSession(t *testing.T) {
	b := New()
	_, err := b.SessionData(context.Background(), "missing")
	assert.ErrorIs(t, err, core.ErrNotFound)
}
