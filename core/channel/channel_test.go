package channel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/navbus/navbus/core/units"
)

func TestRegistryKinds(t *testing.T) {
	assert.Equal(t, units.KindAngle, AWA.Code().Kind())
	assert.Equal(t, units.KindVelocity, AWS.Code().Kind())
	assert.Equal(t, units.KindGeoPosition, GPSPos.Code().Kind())
	assert.Equal(t, units.KindDateTime, DateTime.Code().Kind())
	assert.Equal(t, units.KindOrientation, Orient.Code().Kind())
}

func TestCodesAreContiguousAndNamed(t *testing.T) {
	codes := Codes()
	require.Len(t, codes, int(CodeLogDuration))
	for i, c := range codes {
		assert.Equal(t, Code(i+1), c)
		info, ok := c.Info()
		require.True(t, ok)
		assert.NotEmpty(t, info.Name)
		assert.NotEqual(t, units.KindUnknown, info.Kind)
	}
}

func TestParse(t *testing.T) {
	c, err := Parse("gps_pos")
	require.NoError(t, err)
	assert.Equal(t, CodeGPSPos, c)
	assert.Equal(t, "GPS_POS", c.String())

	_, err = Parse("nope")
	assert.Error(t, err)
	assert.False(t, Code(200).Valid())
	assert.Equal(t, "Code(200)", Code(200).String())
}
