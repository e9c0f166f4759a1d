package forcing

import (
	"fmt"
	"math"
	"os"
	"time"

	"github.com/ctessum/cdf"
	"github.com/ctessum/sparse"
	"github.com/meteocima/wrfhydro-runner/folders"
	"github.com/meteocima/wrfhydro-runner/ncvar"
	"github.com/meteocima/wrfhydro-runner/rainfall"
	"github.com/sirupsen/logrus"
)

// SecondsPerHour converts mm/h rain rates to mm/s.
const SecondsPerHour = 3600.0

// ReasonNotAvailable is the reason of files skipped because the
// rainfall dataset does not contain their timestep.
const ReasonNotAvailable = "timestep not available"

// Skip is a forcing file left untouched.
type Skip struct {
	File   string
	Time   time.Time
	Reason string
}

// Failure is a forcing file that could not be updated.
type Failure struct {
	File string
	Err  error
}

func (f Failure) Error() string {
	return fmt.Sprintf("`%s`: %s", f.File, f.Err)
}

// RainfallReport collects the outcome of OverwriteRainfall.
type RainfallReport struct {
	Updated []string
	Skipped []Skip
	Failed  []Failure
}

// OK returns true when no file failed.
func (r *RainfallReport) OK() bool {
	return len(r.Failed) == 0
}

// MMPerSecond converts a rainfall field from mm/h to mm/s.
// Missing (NaN) cells are set to 0.
func MMPerSecond(field *sparse.DenseArray) *sparse.DenseArray {
	res := sparse.ZerosDense(field.Shape...)
	for i, v := range field.Elements {
		if math.IsNaN(v) {
			continue
		}
		res.Elements[i] = v / SecondsPerHour
	}
	return res
}

// OverwriteRainfall replaces the rain rate of every forcing file whose
// timestep is available in src. Files are processed one at a time;
// a file that cannot be updated is recorded and does not stop the others.
func OverwriteRainfall(files []string, src rainfall.Source, vars Variables, log logrus.FieldLogger) *RainfallReport {
	if log == nil {
		log = logrus.StandardLogger()
	}
	report := &RainfallReport{}

	log.Infof("Overwrite %s in %d forcing files", vars.Rain, len(files))

	for _, file := range files {
		flog := log.WithField("file", file)

		dt, err := folders.DateFromLDAS(file)
		if err != nil {
			flog.Errorf("Cannot decode timestep: %s", err)
			report.Failed = append(report.Failed, Failure{File: file, Err: err})
			continue
		}
		flog = flog.WithField("timestep", dt.Format(folders.LDASDateFormat))

		field, ok := src.At(dt)
		if !ok {
			flog.Info(ReasonNotAvailable)
			report.Skipped = append(report.Skipped, Skip{File: file, Time: dt, Reason: ReasonNotAvailable})
			continue
		}

		if err := overwriteFile(file, vars.Rain, MMPerSecond(field)); err != nil {
			flog.Errorf("Could not write to netCDF file: %s", err)
			report.Failed = append(report.Failed, Failure{File: file, Err: err})
			continue
		}
		flog.Infof("%s updated", vars.Rain)
		report.Updated = append(report.Updated, file)
	}

	return report
}

// forcingFile is an open forcing file, as used by overwriteFile.
type forcingFile interface {
	cdf.ReaderWriterAt
	Close() error
}

var openForcing = func(file string) (forcingFile, error) {
	return os.OpenFile(file, os.O_RDWR, 0)
}

func overwriteFile(file, varName string, field *sparse.DenseArray) (err error) {
	f, err := openForcing(file)
	if err != nil {
		return fmt.Errorf("OpenFile error: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("Close error: %w", cerr)
		}
	}()

	ff, err := cdf.Open(f)
	if err != nil {
		return fmt.Errorf("cdf.Open error: %w", err)
	}

	return ncvar.Write(ff, varName, 0, field)
}
