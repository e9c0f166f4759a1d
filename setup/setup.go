// Package setup handles WRF-Hydro setup directories:
// a Template is duplicated into Instances, which are
// then modified and submitted to the cluster scheduler.
package setup

import (
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/meteocima/wrfhydro-runner/conf"
	"github.com/meteocima/wrfhydro-runner/folders"
	"github.com/meteocima/wrfhydro-runner/forcing"
	"github.com/meteocima/wrfhydro-runner/rainfall"
	"github.com/meteocima/wrfhydro-runner/slurm"
	"github.com/sirupsen/logrus"
)

// ErrNoSubmitter is returned by Submit when the
// instance was opened without a Submitter.
var ErrNoSubmitter = errors.New("no submitter configured")

// Options are shared by every setup opened by the command.
type Options struct {
	ForcingSubdir string
	Vars          forcing.Variables
	Log           logrus.FieldLogger
}

// OptionsFromConf builds Options from the configuration file values.
func OptionsFromConf(cfg conf.Configuration, log logrus.FieldLogger) Options {
	return Options{
		ForcingSubdir: cfg.Folders.ForcingSubdir,
		Vars: forcing.Variables{
			Rain: cfg.Forcing.RainVar,
			Lon:  cfg.Forcing.LonVar,
			Lat:  cfg.Forcing.LatVar,
		},
		Log: log,
	}
}

func (opts Options) withDefaults() Options {
	if opts.ForcingSubdir == "" {
		opts.ForcingSubdir = conf.Default().Folders.ForcingSubdir
	}
	def := forcing.DefaultVariables()
	if opts.Vars.Rain == "" {
		opts.Vars.Rain = def.Rain
	}
	if opts.Vars.Lon == "" {
		opts.Vars.Lon = def.Lon
	}
	if opts.Vars.Lat == "" {
		opts.Vars.Lat = def.Lat
	}
	if opts.Log == nil {
		opts.Log = logrus.StandardLogger()
	}
	return opts
}

// Setup is a simulation directory. Its time span and grid are
// computed when it is opened and are not refreshed if forcing
// files are later added or removed: open it again instead.
type Setup struct {
	// Path is absolute.
	Path          string
	RootDir       string
	ForcingSubdir string
	Start         time.Time
	Stop          time.Time
	Grid          *forcing.Grid

	opts Options
	log  logrus.FieldLogger
}

// Open opens the setup in dir, reading the time span from the names of
// its forcing files and the grid from the first one.
func Open(dir string, opts Options) (*Setup, error) {
	opts = opts.withDefaults()

	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("Open `%s`: Abs error: %w", dir, err)
	}

	s := &Setup{
		Path:          abs,
		RootDir:       filepath.Dir(abs),
		ForcingSubdir: opts.ForcingSubdir,
		opts:          opts,
		log:           opts.Log.WithField("setup", filepath.Base(abs)),
	}

	listing, err := s.Files(forcing.Range{})
	if err != nil {
		return nil, fmt.Errorf("Open `%s`: %w", abs, err)
	}
	s.Start, s.Stop, err = listing.Span()
	if err != nil {
		return nil, fmt.Errorf("Open `%s`: %w", abs, err)
	}
	s.Grid, err = forcing.ReadGrid(listing.Files[0], opts.Vars)
	if err != nil {
		return nil, fmt.Errorf("Open `%s`: %w", abs, err)
	}

	return s, nil
}

// ForcingDir returns the absolute path of the forcing directory.
func (s *Setup) ForcingDir() string {
	return folders.ForcingDir(s.Path, s.ForcingSubdir)
}

// Files lists the forcing files of the setup within rng.
func (s *Setup) Files(rng forcing.Range) (*forcing.Listing, error) {
	return forcing.List(s.Path, s.ForcingSubdir, rng, s.log)
}

func (s *Setup) String() string {
	return fmt.Sprintf("%s [%s, %s]", s.Path, s.Start.Format(folders.LDASDateFormat), s.Stop.Format(folders.LDASDateFormat))
}

// Template is a setup used as source for duplicates.
type Template struct {
	*Setup
	rootDir string
}

// OpenTemplate opens the template in dir. Duplicates
// are created inside rootDir.
func OpenTemplate(dir, rootDir string, opts Options) (*Template, error) {
	s, err := Open(dir, opts)
	if err != nil {
		return nil, err
	}
	if rootDir == "" {
		rootDir = s.RootDir
	}
	rootDir, err = filepath.Abs(rootDir)
	if err != nil {
		return nil, fmt.Errorf("OpenTemplate `%s`: Abs error: %w", dir, err)
	}
	return &Template{Setup: s, rootDir: rootDir}, nil
}

// DuplicatesDir returns the directory where duplicates are created.
func (t *Template) DuplicatesDir() string {
	return t.rootDir
}

// Instance is a setup ready to be modified and submitted.
type Instance struct {
	*Setup
	submitter slurm.Submitter
}

// OpenInstance opens the setup in dir. submitter may be nil
// if the instance is never submitted.
func OpenInstance(dir string, opts Options, submitter slurm.Submitter) (*Instance, error) {
	s, err := Open(dir, opts)
	if err != nil {
		return nil, err
	}
	return &Instance{Setup: s, submitter: submitter}, nil
}

// OverwriteRainfall replaces the rain rate of every forcing
// file whose timestep is available in src.
func (in *Instance) OverwriteRainfall(src rainfall.Source) (*forcing.RainfallReport, error) {
	listing, err := in.Files(forcing.Range{})
	if err != nil {
		return nil, err
	}
	return forcing.OverwriteRainfall(listing.Files, src, in.opts.Vars, in.log), nil
}

// SetStartDate patches the start date of the namelist.
func (in *Instance) SetStartDate(t time.Time) error {
	return SetStartDate(in.Path, t)
}

// Submit submits the job of the instance and returns the scheduler output.
func (in *Instance) Submit() (string, error) {
	if in.submitter == nil {
		return "", fmt.Errorf("Submit `%s`: %w", in.Path, ErrNoSubmitter)
	}
	out, err := in.submitter.Submit(in.Path)
	if err != nil {
		return out, err
	}
	if id, ok := slurm.JobID(out); ok {
		in.log.WithField("job", id).Info("Job submitted")
	}
	return out, nil
}

// Streamflow reads the streamflow output of the instance.
func (in *Instance) Streamflow() (Streamflow, error) {
	return ReadStreamflowFile(folders.Streamflow(in.Path))
}
