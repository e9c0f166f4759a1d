// Package runner prepares and submits a WRF-Hydro simulation
// for each period read from the command arguments.
package runner

import (
	"errors"
	"fmt"

	"github.com/meteocima/wrfhydro-runner/conf"
	"github.com/meteocima/wrfhydro-runner/folders"
	"github.com/meteocima/wrfhydro-runner/forcing"
	"github.com/meteocima/wrfhydro-runner/fsutil"
	"github.com/meteocima/wrfhydro-runner/rainfall"
	"github.com/meteocima/wrfhydro-runner/setup"
	"github.com/meteocima/wrfhydro-runner/slurm"
	"github.com/parro-it/fileargs"
	"github.com/sirupsen/logrus"
)

// ErrNoRainfall is returned when the phase overwrites
// rainfall but no dataset was given.
var ErrNoRainfall = errors.New("rainfall dataset required")

// Result is the outcome of the run for one period.
type Result struct {
	Period   *fileargs.Period
	Instance *setup.Instance
	Copy     *fsutil.Report
	Rainfall *forcing.RainfallReport
	// Output of the scheduler, empty if the job was not submitted.
	Output string
	JobID  string
}

// NewSubmitter returns the ssh submitter described by cfg.
func NewSubmitter(cfg conf.RemoteConf, log logrus.FieldLogger) *slurm.SSH {
	return &slurm.SSH{
		User:   cfg.User,
		Server: cfg.Server,
		Script: cfg.Script,
		Binary: cfg.SSH,
		Log:    log,
	}
}

// OpenRainfall reads the rainfall dataset configured in cfg.
func OpenRainfall(cfg conf.RainfallConf) (*rainfall.Series, error) {
	if cfg.File == "" {
		return nil, ErrNoRainfall
	}
	return rainfall.OpenNetCDF(cfg.File, cfg.Var)
}

// Run duplicates the configured template once for every period,
// covering the forcing files from the period start to its end.
// Depending on phase, the rainfall of every duplicate is then
// overwritten with src and the job is submitted.
//
// Run stops at the first period that fails, and returns the
// results of the periods completed so far.
func Run(cfg conf.Configuration, periods []*fileargs.Period, phase conf.RunPhase,
	src rainfall.Source, submitter slurm.Submitter, log logrus.FieldLogger,
) ([]Result, error) {
	if log == nil {
		log = logrus.StandardLogger()
	}
	if phase.Rainfall() && src == nil {
		return nil, ErrNoRainfall
	}
	if phase.Submit() && submitter == nil {
		return nil, setup.ErrNoSubmitter
	}

	tmpl, err := setup.OpenTemplate(cfg.Folders.TemplateDir, cfg.Folders.RootDir, setup.OptionsFromConf(cfg, log))
	if err != nil {
		return nil, err
	}

	results := make([]Result, 0, len(periods))
	for _, period := range periods {
		start := period.Start.Format(folders.LDASDateFormat)
		log.Infof("STARTING RUN FOR DATE %s, with a duration of %d", start, int(period.Duration.Hours()))

		res, err := runPeriod(tmpl, period, phase, src, submitter)
		if err != nil {
			return results, fmt.Errorf("Run for date %s: %w", start, err)
		}
		results = append(results, res)
		log.Infof("RUN FOR DATE %s COMPLETED in %s", start, res.Instance.Path)
	}

	return results, nil
}

func runPeriod(tmpl *setup.Template, period *fileargs.Period, phase conf.RunPhase,
	src rainfall.Source, submitter slurm.Submitter,
) (Result, error) {
	res := Result{Period: period}

	inst, report, err := tmpl.Duplicate(setup.DuplicateOptions{
		Range: forcing.Range{
			Start: period.Start,
			Stop:  period.Start.Add(period.Duration),
		},
		Submitter: submitter,
	})
	res.Copy = report
	if err != nil {
		return res, err
	}
	res.Instance = inst

	if phase.Rainfall() {
		res.Rainfall, err = inst.OverwriteRainfall(src)
		if err != nil {
			return res, err
		}
	}

	if phase.Submit() {
		res.Output, err = inst.Submit()
		if err != nil {
			return res, err
		}
		res.JobID, _ = slurm.JobID(res.Output)
	}

	return res, nil
}
