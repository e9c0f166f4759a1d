package setup

import (
	"fmt"
	"os"
	"regexp"
	"time"

	"github.com/meteocima/wrfhydro-runner/folders"
)

type startField struct {
	re     *regexp.Regexp
	format func(t time.Time) string
}

func fieldRe(name string) *regexp.Regexp {
	return regexp.MustCompile(`(?m)^(\s*` + name + `\s*=\s*)\d+`)
}

var startFields = []startField{
	{fieldRe("START_YEAR"), func(t time.Time) string { return fmt.Sprintf("%04d", t.Year()) }},
	{fieldRe("START_MONTH"), func(t time.Time) string { return fmt.Sprintf("%02d", int(t.Month())) }},
	{fieldRe("START_DAY"), func(t time.Time) string { return fmt.Sprintf("%02d", t.Day()) }},
}

// PatchStartDate returns the namelist content with START_YEAR,
// START_MONTH and START_DAY set to the date of t.
// Fields missing from content are left alone.
func PatchStartDate(content string, t time.Time) string {
	for _, field := range startFields {
		content = field.re.ReplaceAllString(content, "${1}"+field.format(t))
	}
	return content
}

// SetStartDate rewrites the namelist of the setup in dir
// so that the simulation starts on the date of t.
func SetStartDate(dir string, t time.Time) error {
	nml := folders.Namelist(dir)

	info, err := os.Stat(nml)
	if err != nil {
		return fmt.Errorf("SetStartDate `%s`: Stat error: %w", nml, err)
	}
	content, err := os.ReadFile(nml)
	if err != nil {
		return fmt.Errorf("SetStartDate `%s`: ReadFile error: %w", nml, err)
	}

	patched := PatchStartDate(string(content), t)

	if err := os.WriteFile(nml, []byte(patched), info.Mode().Perm()); err != nil {
		return fmt.Errorf("SetStartDate `%s`: WriteFile error: %w", nml, err)
	}
	return nil
}
