package forcing

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/meteocima/wrfhydro-runner/folders"
	"github.com/sirupsen/logrus"
)

// ErrNotFound is returned when a listing would be empty.
var ErrNotFound = errors.New("no forcing files found")

// Range is an inclusive time interval. A zero Start or Stop
// leaves that side of the interval open.
type Range struct {
	Start time.Time
	Stop  time.Time
}

// IsZero returns true when both bounds are open.
func (rng Range) IsZero() bool {
	return rng.Start.IsZero() && rng.Stop.IsZero()
}

// Contains ...
func (rng Range) Contains(t time.Time) bool {
	if !rng.Start.IsZero() && t.Before(rng.Start) {
		return false
	}
	if !rng.Stop.IsZero() && t.After(rng.Stop) {
		return false
	}
	return true
}

func (rng Range) String() string {
	format := func(t time.Time) string {
		if t.IsZero() {
			return "…"
		}
		return t.Format(folders.LDASDateFormat)
	}
	return fmt.Sprintf("[%s, %s]", format(rng.Start), format(rng.Stop))
}

// ParseRange parses the two bounds using layout.
// An empty string leaves the bound open.
func ParseRange(start, stop, layout string) (Range, error) {
	var rng Range
	var err error
	if start != "" {
		rng.Start, err = time.Parse(layout, start)
		if err != nil {
			return rng, fmt.Errorf("cannot parse start date `%s`: %w", start, err)
		}
	}
	if stop != "" {
		rng.Stop, err = time.Parse(layout, stop)
		if err != nil {
			return rng, fmt.Errorf("cannot parse stop date `%s`: %w", stop, err)
		}
	}
	if !rng.Start.IsZero() && !rng.Stop.IsZero() && rng.Stop.Before(rng.Start) {
		return rng, fmt.Errorf("stop date %s is before start date %s", stop, start)
	}
	return rng, nil
}

// Bound identifies a side of a Range.
type Bound int

const (
	// StartBound ...
	StartBound Bound = iota
	// StopBound ...
	StopBound
)

// CoverageWarning signals that the requested range extends
// beyond the available forcing data.
type CoverageWarning struct {
	Bound     Bound
	Requested time.Time
	// Available is the first (for StartBound) or last (for StopBound)
	// retained timestamp.
	Available time.Time
}

func (w CoverageWarning) String() string {
	if w.Bound == StartBound {
		return fmt.Sprintf("requested start %s is before the first available forcing file %s",
			w.Requested.Format(folders.LDASDateFormat), w.Available.Format(folders.LDASDateFormat))
	}
	return fmt.Sprintf("requested stop %s is after the last available forcing file %s",
		w.Requested.Format(folders.LDASDateFormat), w.Available.Format(folders.LDASDateFormat))
}

// Listing is the result of List.
type Listing struct {
	// Files are absolute paths in chronological order.
	Files    []string
	Warnings []CoverageWarning
}

// List returns the input forcing files found in dir/forcingSubdir
// whose timestamp lies in rng, sorted in chronological order.
func List(dir, forcingSubdir string, rng Range, log logrus.FieldLogger) (*Listing, error) {
	if log == nil {
		log = logrus.StandardLogger()
	}

	forcingDir, err := filepath.Abs(folders.ForcingDir(dir, forcingSubdir))
	if err != nil {
		return nil, fmt.Errorf("List `%s`: Abs error: %w", dir, err)
	}

	entries, err := os.ReadDir(forcingDir)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("List `%s`: ReadDir error: %w", forcingDir, err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.Contains(entry.Name(), folders.ForcingMarker) {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)

	listing := &Listing{}
	var first, last time.Time
	for _, name := range names {
		if !rng.IsZero() {
			dt, err := folders.DateFromLDAS(name)
			if err != nil {
				return nil, fmt.Errorf("List `%s`: %w", forcingDir, err)
			}
			if !rng.Contains(dt) {
				continue
			}
			if first.IsZero() {
				first = dt
			}
			last = dt
		}
		listing.Files = append(listing.Files, filepath.Join(forcingDir, name))
	}

	if len(listing.Files) == 0 {
		if len(names) == 0 {
			return nil, fmt.Errorf("%w in `%s`", ErrNotFound, forcingDir)
		}
		return nil, fmt.Errorf("%w in `%s` for range %s", ErrNotFound, forcingDir, rng)
	}

	if !rng.Start.IsZero() && first.After(rng.Start) {
		listing.Warnings = append(listing.Warnings, CoverageWarning{Bound: StartBound, Requested: rng.Start, Available: first})
	}
	if !rng.Stop.IsZero() && last.Before(rng.Stop) {
		listing.Warnings = append(listing.Warnings, CoverageWarning{Bound: StopBound, Requested: rng.Stop, Available: last})
	}
	for _, w := range listing.Warnings {
		log.WithField("dir", forcingDir).Warn(w.String())
	}

	return listing, nil
}

// Span returns the timestamps of the first and last file of the listing.
func (l *Listing) Span() (start, stop time.Time, err error) {
	start, err = folders.DateFromLDAS(l.Files[0])
	if err != nil {
		return
	}
	stop, err = folders.DateFromLDAS(l.Files[len(l.Files)-1])
	return
}
