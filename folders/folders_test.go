package folders

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLDASFilename(t *testing.T) {
	dt := time.Date(2017, 6, 3, 7, 0, 0, 0, time.UTC)
	assert.Equal(t, "2017060307.LDASIN_DOMAIN3", LDASFilename(dt, "", 0))
	assert.Equal(t, "2017060307.LDASOUT_DOMAIN1", LDASFilename(dt, Out, 1))
}

func TestDateFromLDASRoundTrip(t *testing.T) {
	start := time.Date(2016, 12, 31, 20, 0, 0, 0, time.UTC)
	for i := 0; i < 48; i++ {
		dt := start.Add(time.Duration(i) * time.Hour)
		for _, dir := range []Direction{In, Out} {
			got, err := DateFromLDAS(LDASFilename(dt, dir, 2))
			require.NoError(t, err)
			assert.True(t, dt.Equal(got), "expected %s, got %s", dt, got)
		}
	}
}

func TestDateFromLDASIgnoresDirectory(t *testing.T) {
	got, err := DateFromLDAS("/data/setup_001/forcing/2017060300.LDASIN_DOMAIN3")
	require.NoError(t, err)
	assert.Equal(t, "2017060300", got.Format(LDASDateFormat))
}

func TestDateFromLDASMalformed(t *testing.T) {
	for _, fn := range []string{
		"namelist.hrldas",
		"201706030.LDASIN_DOMAIN3",
		"20170603000.LDASIN_DOMAIN3",
		"2017x60300.LDASIN_DOMAIN3",
		"2017130300.LDASIN_DOMAIN3",
		"",
	} {
		_, err := DateFromLDAS(fn)
		assert.Error(t, err, fn)
		assert.True(t, errors.Is(err, ErrParse), fn)

		var perr *ParseError
		assert.True(t, errors.As(err, &perr), fn)
	}
}

func TestSetupNames(t *testing.T) {
	assert.Equal(t, "setup_001", SetupName(1))
	assert.Equal(t, "setup_999", SetupName(999))

	n, ok := SetupNumber("setup_042")
	assert.True(t, ok)
	assert.Equal(t, 42, n)

	for _, name := range []string{"setup_000", "setup_1", "setup_0001", "run_001", "setup_abc"} {
		_, ok := SetupNumber(name)
		assert.False(t, ok, name)
	}
}
