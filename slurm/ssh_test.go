package slurm

import (
	"testing"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommand(t *testing.T) {
	s := &SSH{User: "chwala-c", Server: "keal"}
	assert.Equal(t, "chwala-c@keal", s.Target())
	assert.Equal(t, `ssh chwala-c@keal "cd /data/setup_001; sbatch run_slurm.sh"`, s.Command("/data/setup_001"))

	s = &SSH{Server: "keal", Script: "job.sh"}
	assert.Equal(t, "keal", s.Target())
	assert.Equal(t, `ssh keal "cd /data; sbatch job.sh"`, s.Command("/data"))
}

func TestSubmitCapturesStdout(t *testing.T) {
	logger, hook := test.NewNullLogger()
	s := &SSH{User: "hydro", Server: "keal", Binary: "echo", Log: logger}

	out, err := s.Submit("/data/setup_002")
	require.NoError(t, err)
	assert.Equal(t, "hydro@keal cd /data/setup_002; sbatch run_slurm.sh\n", out)
	assert.Len(t, hook.AllEntries(), 1)
}

func TestSubmitFailure(t *testing.T) {
	s := &SSH{Server: "keal", Binary: "false"}
	_, err := s.Submit("/data")
	assert.Error(t, err)

	s = &SSH{}
	_, err = s.Submit("/data")
	assert.Error(t, err)
}

func TestJobID(t *testing.T) {
	id, ok := JobID("Submitted batch job 2723147\n")
	assert.True(t, ok)
	assert.Equal(t, "2723147", id)

	_, ok = JobID("sbatch: error: invalid partition")
	assert.False(t, ok)
}
