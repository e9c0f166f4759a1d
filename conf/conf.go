package conf

// This module contains data structures
// used to keep configuration variables
// for the command.

import (
	"fmt"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/meteocima/wrfhydro-runner/folders"
)

// FoldersConf contains path of all
// the directories needed by the command
type FoldersConf struct {
	// RootDir is where duplicates are created.
	RootDir string
	// TemplateDir is the template setup.
	TemplateDir string
	// ForcingSubdir is the name of the forcing
	// directory inside every setup.
	ForcingSubdir string
}

// ForcingConf contains the names of the variables
// read from and written to forcing files.
type ForcingConf struct {
	RainVar    string
	LonVar     string
	LatVar     string
	DateFormat string
}

// RemoteConf describes how to reach the cluster scheduler.
type RemoteConf struct {
	User   string
	Server string
	Script string
	SSH    string
}

// RainfallConf describes the default gridded rainfall dataset.
type RainfallConf struct {
	File string
	Var  string
}

// Configuration contains all configuration
// sub structures
type Configuration struct {
	Folders  FoldersConf
	Forcing  ForcingConf
	Remote   RemoteConf
	Rainfall RainfallConf
}

// Default returns a Configuration with every
// optional value set.
func Default() Configuration {
	return Configuration{
		Folders: FoldersConf{
			ForcingSubdir: "forcing",
		},
		Forcing: ForcingConf{
			RainVar:    "RAINRATE",
			LonVar:     "XLONG",
			LatVar:     "XLAT",
			DateFormat: folders.LDASDateFormat,
		},
		Remote: RemoteConf{
			Script: folders.SlurmScript,
			SSH:    "ssh",
		},
		Rainfall: RainfallConf{
			Var: "rainfall",
		},
	}
}

// Load reads configuration from `confPath` file.
// Relative folders are resolved against the
// directory containing the file.
func Load(confPath string) (Configuration, error) {
	cfg := Default()
	if _, err := toml.DecodeFile(confPath, &cfg); err != nil {
		return cfg, fmt.Errorf("Load `%s`: DecodeFile error: %w", confPath, err)
	}

	confDir := filepath.Dir(confPath)
	cfg.Folders.RootDir = resolve(confDir, cfg.Folders.RootDir)
	cfg.Folders.TemplateDir = resolve(confDir, cfg.Folders.TemplateDir)
	cfg.Rainfall.File = resolve(confDir, cfg.Rainfall.File)

	return cfg, cfg.Check()
}

// Check returns an error if a required value is missing.
func (cfg Configuration) Check() error {
	if cfg.Folders.ForcingSubdir == "" {
		return fmt.Errorf("Folders.ForcingSubdir must not be empty")
	}
	if cfg.Forcing.RainVar == "" || cfg.Forcing.LonVar == "" || cfg.Forcing.LatVar == "" {
		return fmt.Errorf("Forcing variable names must not be empty")
	}
	return nil
}

func resolve(base, dir string) string {
	if dir == "" || filepath.IsAbs(dir) {
		return dir
	}
	return filepath.Join(base, dir)
}
