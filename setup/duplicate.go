package setup

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/meteocima/wrfhydro-runner/folders"
	"github.com/meteocima/wrfhydro-runner/forcing"
	"github.com/meteocima/wrfhydro-runner/fsutil"
	"github.com/meteocima/wrfhydro-runner/slurm"
)

// ErrAlreadyExists is returned when the directory of
// a new duplicate already exists.
var ErrAlreadyExists = errors.New("setup directory already exists")

// ErrLimitExceeded is returned when every auto-generated
// name from setup_001 to setup_999 is taken.
var ErrLimitExceeded = errors.New("no free setup name left")

// DuplicateOptions ...
type DuplicateOptions struct {
	// Name of the new directory. If empty the first
	// free setup_NNN name is used.
	Name string
	// Range selects the forcing files to copy.
	// If Range.Start is set, the namelist of the
	// new setup starts on that date.
	Range forcing.Range
	// Submitter of the new instance, may be nil.
	Submitter slurm.Submitter
}

// Duplicate copies the template into a new directory and opens it.
//
// The forcing selection is checked before anything is created.
// Once the directory is created, copy errors of single entries do not
// stop the duplication: they are returned in the report, and the
// new instance is returned anyway.
func (t *Template) Duplicate(opts DuplicateOptions) (*Instance, *fsutil.Report, error) {
	listing, err := t.Files(opts.Range)
	if err != nil {
		return nil, nil, fmt.Errorf("Duplicate `%s`: %w", t.Path, err)
	}

	target, err := t.createTarget(opts.Name)
	if err != nil {
		return nil, nil, fmt.Errorf("Duplicate `%s`: %w", t.Path, err)
	}
	log := t.log.WithField("dir", target)
	log.Infof("Duplicate template to %s with %d forcing files", target, len(listing.Files))

	tr := fsutil.New(fsutil.Path(target), log)
	src := fsutil.Path(t.Path)
	forcingDir := fsutil.Path(t.ForcingSubdir)

	tr.CopyFilesAbs(src, ".")
	tr.CopyTreeAbs(src.Join(folders.LibDir), folders.LibDir)
	tr.MkDir(forcingDir)
	for _, file := range listing.Files {
		src := fsutil.Path(file)
		tr.CopyAbs(src, forcingDir.Join(src.Filename()))
	}
	if tr.Err != nil {
		return nil, &tr.Report, fmt.Errorf("Duplicate `%s`: %w", t.Path, tr.Err)
	}

	if !opts.Range.Start.IsZero() {
		if err := SetStartDate(target, opts.Range.Start); err != nil {
			log.Warnf("Cannot set start date: %s", err)
			tr.Report.Fail(fsutil.Path(folders.Namelist(target)), err)
		}
	}

	if tr.Report.OK() {
		log.Info("Copy done")
	} else {
		log.Warnf("Duplication degraded: %d entries failed", len(tr.Report.Failed))
	}

	inst, err := OpenInstance(target, t.opts, opts.Submitter)
	return inst, &tr.Report, err
}

// createTarget creates the directory of the new duplicate.
// Directories are created with os.Mkdir so that two duplications
// racing on the same name never share a directory.
func (t *Template) createTarget(name string) (string, error) {
	if err := os.MkdirAll(t.rootDir, os.FileMode(0755)); err != nil {
		return "", fmt.Errorf("MkDir `%s`: MkdirAll error: %w", t.rootDir, err)
	}

	if name != "" {
		if filepath.Base(name) != name {
			return "", fmt.Errorf("invalid setup name `%s`", name)
		}
		target := filepath.Join(t.rootDir, name)
		if err := os.Mkdir(target, os.FileMode(0755)); err != nil {
			if os.IsExist(err) {
				return "", fmt.Errorf("%w: `%s`", ErrAlreadyExists, target)
			}
			return "", fmt.Errorf("MkDir `%s`: Mkdir error: %w", target, err)
		}
		return target, nil
	}

	for i := 1; i <= folders.MaxSetupNumber; i++ {
		target := filepath.Join(t.rootDir, folders.SetupName(i))
		err := os.Mkdir(target, os.FileMode(0755))
		if err == nil {
			return target, nil
		}
		if !os.IsExist(err) {
			return "", fmt.Errorf("MkDir `%s`: Mkdir error: %w", target, err)
		}
	}
	return "", fmt.Errorf("%w in `%s`", ErrLimitExceeded, t.rootDir)
}

// Duplicates returns the absolute paths of the auto-named
// setup directories found in rootDir, in numeric order.
func Duplicates(rootDir string) ([]string, error) {
	entries, err := os.ReadDir(rootDir)
	if err != nil {
		return nil, fmt.Errorf("Duplicates `%s`: ReadDir error: %w", rootDir, err)
	}
	var res []string
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		if _, ok := folders.SetupNumber(entry.Name()); ok {
			res = append(res, filepath.Join(rootDir, entry.Name()))
		}
	}
	sort.Strings(res)
	return res, nil
}
