package setup

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadStreamflowFile(t *testing.T) {
	sf, err := ReadStreamflowFile(fixture("frxst_pts_out.txt"))
	require.NoError(t, err)

	assert.Equal(t, []string{"101", "102"}, sf.IDs())
	require.Len(t, sf["101"], 3)
	require.Len(t, sf["102"], 2)

	assert.Equal(t, StreamflowPoint{
		SimSeconds: 7200,
		ID:         "101",
		Lat:        44.12,
		Lon:        8.54,
		QM3s:       1.75,
		QFt3s:      61.801,
		WaterLevel: 0.35,
	}, sf["101"][1])
	assert.Equal(t, 10800.0, sf["101"][2].SimSeconds)
}

func TestReadStreamflowErrors(t *testing.T) {
	_, err := ReadStreamflow(strings.NewReader("3600, 101, 44.1, 8.5, 1.2\n"))
	assert.Error(t, err)

	_, err = ReadStreamflow(strings.NewReader("3600, 101, north, 8.5, 1.2, 44.1, 0.3\n"))
	assert.Error(t, err)

	_, err = ReadStreamflowFile("/nonexistent/frxst_pts_out.txt")
	assert.Error(t, err)
}

func TestReadStreamflowEmpty(t *testing.T) {
	sf, err := ReadStreamflow(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, sf.IDs())
}
