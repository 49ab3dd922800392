package permissions

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestZeroValue(t *testing.T) {
	var p Permission
	assert.False(t, p.Administrator())
	assert.False(t, p.ViewUsers())
	assert.False(t, p.CreateViolation())
	assert.False(t, p.CreateVehicle())
	assert.False(t, p.CreateRefutation())
	assert.False(t, p.RespondRefutation())
	assert.False(t, p.ManageDetected())
}

func TestAdministratorBypassesEverything(t *testing.T) {
	p := Administrator
	for _, flag := range []Permission{
		ViewUsers, CreateViolation, CreateVehicle,
		CreateRefutation, RespondRefutation, ManageDetected,
	} {
		assert.False(t, p.Has(flag))
		assert.True(t, p.Allows(flag))
	}
}

func TestSpecificFlags(t *testing.T) {
	p := ViewUsers | ManageDetected
	assert.False(t, p.Administrator())
	assert.True(t, p.Allows(ViewUsers))
	assert.True(t, p.Allows(ManageDetected))
	assert.False(t, p.Allows(CreateViolation))
	assert.False(t, p.Allows(RespondRefutation))
}

func TestBitLayoutIsStable(t *testing.T) {
	// The layout is part of the stored data format.
	assert.Equal(t, Permission(1), Administrator)
	assert.Equal(t, Permission(2), ViewUsers)
	assert.Equal(t, Permission(4), CreateViolation)
	assert.Equal(t, Permission(8), CreateVehicle)
	assert.Equal(t, Permission(16), CreateRefutation)
	assert.Equal(t, Permission(32), RespondRefutation)
	assert.Equal(t, Permission(64), ManageDetected)
}
