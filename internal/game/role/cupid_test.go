package role

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCupid_PowerAvailableOnDayZero(t *testing.T) {
	c := NewCupid(1)
	assert.True(t, c.Power())
}

func TestCupid_PowerExpiresAtNightZeroIfUnused(t *testing.T) {
	c := NewCupid(1)

	Tick(c, 0, false) // night 0 begins

	assert.False(t, c.Power())
}

func TestCupid_UsingPowerOnDayZeroConsumesIt(t *testing.T) {
	c := NewCupid(1)
	c.UsePower()
	assert.False(t, c.Power())
}

func TestCupid_OnlyTheNightZeroBoundaryExpiresPower(t *testing.T) {
	c := NewCupid(1)

	Tick(c, 1, false) // night 1: not the expiry boundary
	assert.True(t, c.Power())

	Tick(c, 0, false) // night 0: expires
	assert.False(t, c.Power())
}
