package main

import (
	"fmt"
	"path/filepath"

	"github.com/meteocima/wrfhydro-runner/conf"
	"github.com/meteocima/wrfhydro-runner/forcing"
	"github.com/meteocima/wrfhydro-runner/rainfall"
	"github.com/meteocima/wrfhydro-runner/runner"
	"github.com/meteocima/wrfhydro-runner/setup"
	"github.com/parro-it/fileargs"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// Version of the command
var Version string = "development"

const defaultConfig = "wrfhydro-runner.cfg"

var (
	configFile string
	verbose    bool

	log = logrus.New()
)

// RootCmd is the main command.
var RootCmd = &cobra.Command{
	Use:   "wrfhydro-runner",
	Short: "Prepare and submit WRF-Hydro simulations.",
	Long: `Prepare and submit WRF-Hydro simulations.

A template setup is duplicated into setup_NNN directories, keeping only
the forcing files of the requested period. The rainfall of the duplicates
can be replaced with a gridded dataset in mm/h before the job is submitted
to the SLURM scheduler of the configured server.

Format for dates is YYYYMMDDHH unless the configuration says otherwise.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if verbose {
			log.SetLevel(logrus.DebugLevel)
		}
	},
}

func init() {
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	RootCmd.PersistentFlags().StringVar(&configFile, "config", defaultConfig, "configuration file location")
	RootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log every copied file")

	RootCmd.AddCommand(
		newDuplicateCmd(),
		newRainfallCmd(),
		newSubmitCmd(),
		newInfoCmd(),
		newRunCmd(),
		versionCmd,
	)
}

func failed(err error) {
	log.Fatalf("%s\n", err)
}

func main() {
	if err := RootCmd.Execute(); err != nil {
		failed(err)
	}
}

func loadConfig() (conf.Configuration, error) {
	return conf.Load(configFile)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of wrfhydro-runner",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("wrfhydro-runner ver. %s\n", Version)
	},
}

type duplicateFlags struct {
	Name     string
	Start    string
	Stop     string
	Template string
	RootDir  string
}

// Bind registers the flag definitions with the given flag set.
func (f *duplicateFlags) Bind(flagSet *pflag.FlagSet) {
	flagSet.StringVar(&f.Name, "name", "", "name of the new setup directory, default is the first free setup_NNN")
	flagSet.StringVar(&f.Start, "start", "", "first forcing date to copy, and start date of the simulation")
	flagSet.StringVar(&f.Stop, "stop", "", "last forcing date to copy")
	flagSet.StringVar(&f.Template, "template", "", "template directory, overrides the configuration")
	flagSet.StringVar(&f.RootDir, "root", "", "directory of the duplicates, overrides the configuration")
}

func newDuplicateCmd() *cobra.Command {
	flags := &duplicateFlags{}
	cmd := &cobra.Command{
		Use:   "duplicate",
		Short: "Duplicate the template setup",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if flags.Template != "" {
				cfg.Folders.TemplateDir = flags.Template
			}
			if flags.RootDir != "" {
				cfg.Folders.RootDir = flags.RootDir
			}

			rng, err := forcing.ParseRange(flags.Start, flags.Stop, cfg.Forcing.DateFormat)
			if err != nil {
				return err
			}

			tmpl, err := setup.OpenTemplate(cfg.Folders.TemplateDir, cfg.Folders.RootDir, setup.OptionsFromConf(cfg, log))
			if err != nil {
				return err
			}
			log.Infof("Duplicates of %s go in %s", tmpl.Path, tmpl.DuplicatesDir())
			inst, report, err := tmpl.Duplicate(setup.DuplicateOptions{Name: flags.Name, Range: rng})
			if err != nil {
				return err
			}
			for _, failure := range report.Failed {
				fmt.Fprintf(cmd.ErrOrStderr(), "not copied: %s\n", failure.Error())
			}
			fmt.Fprintln(cmd.OutOrStdout(), inst.String())
			return nil
		},
	}
	flags.Bind(cmd.Flags())
	return cmd
}

type rainfallFlags struct {
	File string
	Var  string
}

// Bind registers the flag definitions with the given flag set.
func (f *rainfallFlags) Bind(flagSet *pflag.FlagSet) {
	flagSet.StringVar(&f.File, "file", "", "NetCDF rainfall dataset in mm/h, overrides the configuration")
	flagSet.StringVar(&f.Var, "var", "", "rainfall variable of the dataset, overrides the configuration")
}

// describeRainfall summarizes the timesteps of a rainfall dataset.
func describeRainfall(src *rainfall.Series, dateFormat string) string {
	times := src.Times()
	if len(times) == 0 {
		return "rainfall dataset is empty"
	}
	return fmt.Sprintf("rainfall dataset: %d timesteps from %s to %s",
		src.Len(), times[0].Format(dateFormat), times[len(times)-1].Format(dateFormat))
}

func newRainfallCmd() *cobra.Command {
	flags := &rainfallFlags{}
	cmd := &cobra.Command{
		Use:   "rainfall <setupdir>",
		Short: "Overwrite the rainfall of the forcing files of a setup",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if flags.File != "" {
				cfg.Rainfall.File = flags.File
			}
			if flags.Var != "" {
				cfg.Rainfall.Var = flags.Var
			}

			src, err := runner.OpenRainfall(cfg.Rainfall)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), describeRainfall(src, cfg.Forcing.DateFormat))
			inst, err := setup.OpenInstance(args[0], setup.OptionsFromConf(cfg, log), nil)
			if err != nil {
				return err
			}
			report, err := inst.OverwriteRainfall(src)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%d updated, %d skipped, %d failed\n",
				len(report.Updated), len(report.Skipped), len(report.Failed))
			if !report.OK() {
				return fmt.Errorf("%d forcing files could not be updated", len(report.Failed))
			}
			return nil
		},
	}
	flags.Bind(cmd.Flags())
	return cmd
}

func newSubmitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "submit <setupdir>",
		Short: "Submit the job of a setup to the scheduler",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			inst, err := setup.OpenInstance(args[0], setup.OptionsFromConf(cfg, log), runner.NewSubmitter(cfg.Remote, log))
			if err != nil {
				return err
			}
			out, err := inst.Submit()
			fmt.Fprint(cmd.OutOrStdout(), out)
			return err
		},
	}
}

func newInfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info [setupdir]",
		Short: "Show a setup, or the duplicates of the template",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			if len(args) == 0 {
				dups, err := setup.Duplicates(cfg.Folders.RootDir)
				if err != nil {
					return err
				}
				for _, dir := range dups {
					fmt.Fprintln(out, dir)
				}
				return nil
			}

			inst, err := setup.OpenInstance(args[0], setup.OptionsFromConf(cfg, log), nil)
			if err != nil {
				return err
			}
			ny, nx := inst.Grid.Shape()
			fmt.Fprintln(out, inst.String())
			fmt.Fprintf(out, "grid: %d x %d\n", ny, nx)

			if sf, err := inst.Streamflow(); err == nil {
				for _, id := range sf.IDs() {
					points := sf[id]
					last := points[len(points)-1]
					fmt.Fprintf(out, "station %s: %d points, last Q %.3f m3/s\n", id, len(points), last.QM3s)
				}
			}
			return nil
		},
	}
}

type runFlags struct {
	Phase string
}

// Bind registers the flag definitions with the given flag set.
func (f *runFlags) Bind(flagSet *pflag.FlagSet) {
	flagSet.StringVarP(&f.Phase, "phase", "p", "ALL", "phase to execute: DUP, DUPRAIN, DUPSUBMIT or ALL")
}

func newRunCmd() *cobra.Command {
	flags := &runFlags{}
	cmd := &cobra.Command{
		Use:   "run (<argsfile> | <startdate> <enddate>)",
		Short: "Duplicate, update and submit a setup for every period",
		Long: `Duplicate, update and submit a setup for every period.

To choose which dates to elaborate you can use startdate and enddate arguments
if you need a single period. Otherwise, pass an arguments file containing all
the periods to run. If the arguments file names a configuration file, it is
used unless --config is given.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var phase conf.RunPhase
			if err := phase.FromString(flags.Phase); err != nil {
				return err
			}

			var dates *fileargs.FileArguments
			var err error
			if len(args) == 1 {
				dates, err = runner.ReadTimes(args[0])
				if err != nil {
					return err
				}
				if dates.CfgPath != "" && !cmd.Flags().Changed("config") {
					configFile = resolveArg(args[0], dates.CfgPath)
				}
			}

			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if len(args) == 2 {
				dates, err = datesFromArgs(args[0], args[1], cfg.Forcing.DateFormat)
				if err != nil {
					return err
				}
			}

			var src rainfall.Source
			if phase.Rainfall() {
				series, err := runner.OpenRainfall(cfg.Rainfall)
				if err != nil {
					return err
				}
				src = series
			}

			results, err := runner.Run(cfg, dates.Periods, phase, src, runner.NewSubmitter(cfg.Remote, log), log)
			for _, res := range results {
				line := res.Instance.Path
				if res.JobID != "" {
					line += " job " + res.JobID
				}
				fmt.Fprintln(cmd.OutOrStdout(), line)
			}
			return err
		},
	}
	flags.Bind(cmd.Flags())
	return cmd
}

func datesFromArgs(start, end, layout string) (*fileargs.FileArguments, error) {
	rng, err := forcing.ParseRange(start, end, layout)
	if err != nil {
		return nil, err
	}
	return &fileargs.FileArguments{
		Periods: []*fileargs.Period{{
			Start:    rng.Start,
			Duration: rng.Stop.Sub(rng.Start),
		}},
	}, nil
}

// resolveArg resolves path relative to the directory of argsFile.
func resolveArg(argsFile, path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(filepath.Dir(argsFile), path)
}
