// Package slurm submits setups to a remote SLURM scheduler.
package slurm

import (
	"bytes"
	"fmt"
	"os/exec"
	"regexp"
	"strings"

	"github.com/meteocima/wrfhydro-runner/folders"
	"github.com/sirupsen/logrus"
)

// Submitter submits the batch job of the setup in dir
// and returns the scheduler output.
type Submitter interface {
	Submit(dir string) (string, error)
}

// SSH submits jobs running `sbatch` on Server through the ssh client.
type SSH struct {
	User   string
	Server string
	// Script defaults to run_slurm.sh.
	Script string
	// Binary defaults to ssh.
	Binary string
	Log    logrus.FieldLogger
}

// Target returns the [user@]server destination.
func (s *SSH) Target() string {
	if s.User == "" {
		return s.Server
	}
	return s.User + "@" + s.Server
}

func (s *SSH) script() string {
	if s.Script == "" {
		return folders.SlurmScript
	}
	return s.Script
}

func (s *SSH) binary() string {
	if s.Binary == "" {
		return "ssh"
	}
	return s.Binary
}

// RemoteCommand returns the command run on the server.
func (s *SSH) RemoteCommand(dir string) string {
	return fmt.Sprintf("cd %s; sbatch %s", dir, s.script())
}

// Command returns the full command line, as it would be typed in a shell.
func (s *SSH) Command(dir string) string {
	return fmt.Sprintf("%s %s \"%s\"", s.binary(), s.Target(), s.RemoteCommand(dir))
}

// Submit runs the command and waits for the ssh client to return.
// It does not wait for the job to complete.
func (s *SSH) Submit(dir string) (string, error) {
	if s.Server == "" {
		return "", fmt.Errorf("Submit `%s`: no server configured", dir)
	}
	log := s.Log
	if log == nil {
		log = logrus.StandardLogger()
	}

	log.WithField("dir", dir).Infof("Submit: %s", s.Command(dir))

	cmd := exec.Command(s.binary(), s.Target(), s.RemoteCommand(dir))
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if err != nil {
		return stdout.String(), fmt.Errorf("Submit `%s`: %w (stderr: %s)", dir, err, strings.TrimSpace(stderr.String()))
	}
	return stdout.String(), nil
}

var jobIDRe = regexp.MustCompile(`Submitted batch job (\d+)`)

// JobID extracts the job id from the output of sbatch.
func JobID(output string) (string, bool) {
	m := jobIDRe.FindStringSubmatch(output)
	if m == nil {
		return "", false
	}
	return m[1], true
}
