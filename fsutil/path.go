package fsutil

import (
	"path/filepath"
)

// Path ...
type Path string

// Join ...
func (pt Path) Join(part string) Path {
	return Path(filepath.Join(string(pt), part))
}

// JoinP ...
func (pt Path) JoinP(part Path) Path {
	return Path(filepath.Join(string(pt), string(part)))
}

// Filename returns the last element of the path.
func (pt Path) Filename() string {
	return filepath.Base(string(pt))
}

func (pt Path) String() string {
	return string(pt)
}
