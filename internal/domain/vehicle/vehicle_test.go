package vehicle

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/laraibshahid/carrental/pkg/domain"
)

func newTestVehicle(t *testing.T) *Vehicle {
	t.Helper()
	v, err := NewVehicle(uuid.New(), Attributes{
		Make:         "Toyota",
		Model:        "Corolla",
		Year:         2022,
		LicensePlate: "ABC-1234",
		VehicleType:  "sedan",
		Transmission: "automatic",
		FuelType:     "petrol",
		Color:        "white",
		MileageKm:    42000,
	}, 5500, "USD")
	require.NoError(t, err)
	return v
}

func TestNewVehicle_Defaults(t *testing.T) {
	v := newTestVehicle(t)

	assert.Equal(t, StatusAvailable, v.Status())
	assert.Equal(t, int64(1), v.Version())
	assert.True(t, v.IsBookable())
}

func TestNewVehicle_Validation(t *testing.T) {
	owner := uuid.New()
	valid := Attributes{Make: "Toyota", Model: "Corolla", Year: 2022, LicensePlate: "ABC-1234"}

	tests := []struct {
		name     string
		mutate   func(a *Attributes)
		rate     int64
		currency string
	}{
		{"missing make", func(a *Attributes) { a.Make = "" }, 5500, "USD"},
		{"missing model", func(a *Attributes) { a.Model = "" }, 5500, "USD"},
		{"year too old", func(a *Attributes) { a.Year = 1899 }, 5500, "USD"},
		{"year in far future", func(a *Attributes) { a.Year = 2999 }, 5500, "USD"},
		{"missing plate", func(a *Attributes) { a.LicensePlate = "" }, 5500, "USD"},
		{"zero rate", func(a *Attributes) {}, 0, "USD"},
		{"missing currency", func(a *Attributes) {}, 5500, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			attrs := valid
			tt.mutate(&attrs)
			_, err := NewVehicle(owner, attrs, tt.rate, tt.currency)
			assert.Equal(t, domain.CodeValidation, domain.CodeOf(err))
		})
	}

	_, err := NewVehicle(uuid.Nil, valid, 5500, "USD")
	assert.Equal(t, domain.CodeValidation, domain.CodeOf(err))
}

func TestVehicle_Apply(t *testing.T) {
	v := newTestVehicle(t)

	newRate := int64(7000)
	newColor := "black"
	require.NoError(t, v.Apply(UpdatePatch{DailyRateCents: &newRate, Color: &newColor}))
	assert.Equal(t, int64(7000), v.DailyRateCents())
	assert.Equal(t, "black", v.Attrs().Color)
	assert.Equal(t, "Toyota", v.Attrs().Make, "untouched fields survive a partial update")

	badRate := int64(0)
	err := v.Apply(UpdatePatch{DailyRateCents: &badRate})
	assert.Equal(t, domain.CodeValidation, domain.CodeOf(err))

	badMileage := -1
	err = v.Apply(UpdatePatch{MileageKm: &badMileage})
	assert.Equal(t, domain.CodeValidation, domain.CodeOf(err))
}

func TestVehicle_SetAvailability(t *testing.T) {
	v := newTestVehicle(t)

	require.NoError(t, v.SetAvailability(StatusMaintenance))
	assert.Equal(t, StatusMaintenance, v.Status())
	assert.False(t, v.IsBookable())

	require.NoError(t, v.SetAvailability(StatusAvailable))
	assert.True(t, v.IsBookable())

	// Retired is not reachable through the availability toggle.
	err := v.SetAvailability(StatusRetired)
	assert.Equal(t, domain.CodeValidation, domain.CodeOf(err))
}

func TestVehicle_RetireIsTerminal(t *testing.T) {
	v := newTestVehicle(t)

	require.NoError(t, v.Retire())
	assert.Equal(t, StatusRetired, v.Status())
	assert.False(t, v.IsBookable())

	err := v.Retire()
	assert.Equal(t, domain.CodeInvalidState, domain.CodeOf(err))

	err = v.SetAvailability(StatusAvailable)
	assert.Equal(t, domain.CodeInvalidState, domain.CodeOf(err), "retired vehicles stay retired")
}

func TestParseVehicleStatus(t *testing.T) {
	s, err := ParseVehicleStatus("maintenance")
	assert.NoError(t, err)
	assert.Equal(t, StatusMaintenance, s)

	_, err = ParseVehicleStatus("broken")
	assert.Error(t, err)
}
