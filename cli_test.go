package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ctessum/sparse"
	"github.com/meteocima/wrfhydro-runner/folders"
	"github.com/meteocima/wrfhydro-runner/rainfall"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDatesFromArgs(t *testing.T) {
	dates, err := datesFromArgs("2020112600", "2020112712", folders.LDASDateFormat)
	require.NoError(t, err)
	require.Len(t, dates.Periods, 1)
	assert.Equal(t, time.Date(2020, 11, 26, 0, 0, 0, 0, time.UTC), dates.Periods[0].Start)
	assert.Equal(t, 36*time.Hour, dates.Periods[0].Duration)

	_, err = datesFromArgs("2020112700", "2020112600", folders.LDASDateFormat)
	assert.Error(t, err)

	_, err = datesFromArgs("26/11/2020", "2020112600", folders.LDASDateFormat)
	assert.Error(t, err)
}

func TestResolveArg(t *testing.T) {
	assert.Equal(t, "/data/inputs/italy.cfg", resolveArg("/data/inputs/arguments.txt", "italy.cfg"))
	assert.Equal(t, "/etc/italy.cfg", resolveArg("/data/inputs/arguments.txt", "/etc/italy.cfg"))
}

func TestInfoListsDuplicates(t *testing.T) {
	dir := t.TempDir()
	runs := filepath.Join(dir, "runs")
	for _, name := range []string{"setup_002", "setup_001", "june"} {
		require.NoError(t, os.MkdirAll(filepath.Join(runs, name), 0755))
	}
	cfgFile := filepath.Join(dir, defaultConfig)
	require.NoError(t, os.WriteFile(cfgFile, []byte("[Folders]\nRootDir = \"runs\"\n"), 0644))

	var out bytes.Buffer
	RootCmd.SetOut(&out)
	RootCmd.SetArgs([]string{"--config", cfgFile, "info"})
	defer RootCmd.SetOut(nil)

	require.NoError(t, RootCmd.Execute())
	assert.Equal(t,
		filepath.Join(runs, "setup_001")+"\n"+filepath.Join(runs, "setup_002")+"\n",
		out.String(),
	)
}

func TestDescribeRainfall(t *testing.T) {
	src := rainfall.NewSeries()
	assert.Equal(t, "rainfall dataset is empty", describeRainfall(src, folders.LDASDateFormat))

	day := time.Date(2017, 6, 3, 0, 0, 0, 0, time.UTC)
	src.Add(day.Add(2*time.Hour), sparse.ZerosDense(2, 2))
	src.Add(day, sparse.ZerosDense(2, 2))
	src.Add(day.Add(time.Hour), sparse.ZerosDense(2, 2))
	assert.Equal(t,
		"rainfall dataset: 3 timesteps from 2017060300 to 2017060302",
		describeRainfall(src, folders.LDASDateFormat),
	)
}
