package runner

import (
	"os"
	"path/filepath"

	"github.com/parro-it/fileargs"
)

// ReadTimes reads the periods to run from file.
func ReadTimes(file string) (*fileargs.FileArguments, error) {
	abs, err := filepath.Abs(file)
	if err != nil {
		return nil, err
	}
	fsys := os.DirFS(filepath.Dir(abs))
	return fileargs.ReadFile(fsys, filepath.Base(abs))
}
