package folders

// This module contains the naming conventions
// of a WRF-Hydro setup directory.

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

// LDASDateFormat is the layout of the timestamp
// that prefixes every LDAS forcing file name.
const LDASDateFormat = "2006010215"

// ForcingMarker is the substring that identifies
// input forcing files.
const ForcingMarker = "LDASIN"

// Fixed names inside a setup directory.
const (
	LibDir         = "lib"
	NamelistFile   = "namelist.hrldas"
	StreamflowFile = "frxst_pts_out.txt"
	SlurmScript    = "run_slurm.sh"
)

// MaxSetupNumber is the highest number
// available to auto-named duplicates.
const MaxSetupNumber = 999

const setupPrefix = "setup_"

// Direction tags a forcing file as model input or output.
type Direction string

const (
	// In ...
	In Direction = "IN"
	// Out ...
	Out Direction = "OUT"
)

// DefaultDirection is used when LDASFilename receives an empty direction.
const DefaultDirection = In

// DefaultDomain is used when LDASFilename receives a domain <= 0.
const DefaultDomain = 3

// ErrParse is matched by every ParseError.
var ErrParse = errors.New("malformed LDAS filename")

// ParseError is returned when a file name does not
// start with a YYYYMMDDHH timestamp.
type ParseError struct {
	Filename string
	Err      error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s `%s`: %s", ErrParse, e.Filename, e.Err)
	}
	return fmt.Sprintf("%s `%s`", ErrParse, e.Filename)
}

// Is reports ErrParse as the kind of every ParseError.
func (e *ParseError) Is(target error) bool {
	return target == ErrParse
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// LDASFilename builds the name of the forcing file for date t.
func LDASFilename(t time.Time, direction Direction, domain int) string {
	if direction == "" {
		direction = DefaultDirection
	}
	if domain <= 0 {
		domain = DefaultDomain
	}
	return fmt.Sprintf("%s.LDAS%s_DOMAIN%d", t.Format(LDASDateFormat), direction, domain)
}

// DateFromLDAS returns the timestamp encoded in the name
// of a forcing file. Any directory part of fn is ignored.
func DateFromLDAS(fn string) (time.Time, error) {
	base := filepath.Base(fn)
	dateS := base
	if idx := strings.Index(base, "."); idx >= 0 {
		dateS = base[:idx]
	}

	if len(dateS) != len(LDASDateFormat) {
		return time.Time{}, &ParseError{Filename: base}
	}
	for _, c := range dateS {
		if c < '0' || c > '9' {
			return time.Time{}, &ParseError{Filename: base}
		}
	}

	date, err := time.Parse(LDASDateFormat, dateS)
	if err != nil {
		return time.Time{}, &ParseError{Filename: base, Err: err}
	}
	return date, nil
}

// SetupName returns the name of the n-th auto-named duplicate.
func SetupName(n int) string {
	return fmt.Sprintf("%s%03d", setupPrefix, n)
}

// SetupNumber returns the number of an auto-named duplicate
// directory, or false if name does not follow the setup_NNN pattern.
func SetupNumber(name string) (int, bool) {
	if !strings.HasPrefix(name, setupPrefix) {
		return 0, false
	}
	digits := name[len(setupPrefix):]
	if len(digits) != 3 {
		return 0, false
	}
	n := 0
	for _, c := range digits {
		if c < '0' || c > '9' {
			return 0, false
		}
		n = n*10 + int(c-'0')
	}
	if n < 1 || n > MaxSetupNumber {
		return 0, false
	}
	return n, true
}

// ForcingDir returns the forcing directory of the setup in dir.
func ForcingDir(dir, forcingSubdir string) string {
	return filepath.Join(dir, forcingSubdir)
}

// Namelist returns the path of the namelist of the setup in dir.
func Namelist(dir string) string {
	return filepath.Join(dir, NamelistFile)
}

// Streamflow returns the path of the streamflow output of the setup in dir.
func Streamflow(dir string) string {
	return filepath.Join(dir, StreamflowFile)
}
