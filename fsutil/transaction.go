package fsutil

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/sirupsen/logrus"
)

// Failure is a single entry that could not be
// processed during a batch of file operations.
type Failure struct {
	Path Path
	Err  error
}

func (f Failure) Error() string {
	return fmt.Sprintf("`%s`: %s", f.Path, f.Err)
}

// Report collects the outcome of the per-entry
// operations of a Transaction.
type Report struct {
	Copied []Path
	Failed []Failure
}

// OK returns true when no entry failed.
func (r *Report) OK() bool {
	return len(r.Failed) == 0
}

// Fail records a failed entry.
func (r *Report) Fail(path Path, err error) {
	r.Failed = append(r.Failed, Failure{Path: path, Err: err})
}

// Transaction runs a sequence of filesystem operations
// rooted in Root.
//
// Structural operations (MkDir, ReaddirAbs) set Err and turn
// every following operation into a no-op. Copy operations are
// best-effort instead: a failing entry is recorded in Report
// and logged, and the sequence continues.
type Transaction struct {
	Root   Path
	Err    error
	Report Report
	Log    logrus.FieldLogger
}

// New returns a Transaction rooted in root.
func New(root Path, log logrus.FieldLogger) *Transaction {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Transaction{Root: root, Log: log}
}

func (tr *Transaction) logger() logrus.FieldLogger {
	if tr.Log == nil {
		tr.Log = logrus.StandardLogger()
	}
	return tr.Log
}

// ReaddirAbs returns the sorted names of the entries of dir.
func (tr *Transaction) ReaddirAbs(dir Path) []fs.DirEntry {
	if tr.Err != nil {
		return nil
	}
	entries, err := os.ReadDir(dir.String())
	if err != nil {
		tr.Err = fmt.Errorf("ReaddirAbs `%s`: ReadDir error: %w", dir.String(), err)
		return nil
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name() < entries[j].Name()
	})
	return entries
}

// MkDir ...
func (tr *Transaction) MkDir(dir Path) {
	if tr.Err != nil {
		return
	}

	err := os.MkdirAll(tr.Root.JoinP(dir).String(), os.FileMode(0755))
	if err != nil {
		tr.Err = fmt.Errorf("MkDir `%s`: MkdirAll error: %w", dir.String(), err)
	}
}

// CopyAbs copies the absolute file from to the path to,
// relative to the transaction root.
func (tr *Transaction) CopyAbs(from, to Path) {
	if tr.Err != nil {
		return
	}

	target := tr.Root.JoinP(to)
	if err := copyFile(from, target); err != nil {
		tr.fail(from, err)
		return
	}
	tr.logger().Debugf("\tCopy from %s to %s", from, target)
	tr.Report.Copied = append(tr.Report.Copied, target)
}

func (tr *Transaction) fail(p Path, err error) {
	tr.logger().WithField("file", p.String()).Warnf("Copy failed: %s", err)
	tr.Report.Fail(p, err)
}

// CopyFilesAbs copies every entry of the absolute directory
// srcDir that is not a directory into to.
func (tr *Transaction) CopyFilesAbs(srcDir, to Path) {
	for _, entry := range tr.ReaddirAbs(srcDir) {
		src := srcDir.Join(entry.Name())
		if isDir(src, entry) {
			continue
		}
		tr.CopyAbs(src, to.Join(entry.Name()))
	}
}

// CopyTreeAbs recursively copies the absolute directory srcDir into to.
// Symbolic links to directories, srcDir included, are followed.
// A directory that cannot be read is recorded as failed
// and its content skipped.
func (tr *Transaction) CopyTreeAbs(srcDir, to Path) {
	if tr.Err != nil {
		return
	}
	tr.copyTree(srcDir, to, map[string]bool{})
}

// copyTree copies srcDir into to. ancestors holds the resolved
// paths of the directories being copied, to stop on link loops.
func (tr *Transaction) copyTree(srcDir, to Path, ancestors map[string]bool) {
	resolved, err := filepath.EvalSymlinks(srcDir.String())
	if err != nil {
		tr.fail(srcDir, err)
		return
	}
	info, err := os.Stat(resolved)
	if err != nil {
		tr.fail(srcDir, err)
		return
	}
	if !info.IsDir() {
		tr.fail(srcDir, fmt.Errorf("CopyTreeAbs `%s`: not a directory", srcDir.String()))
		return
	}
	if ancestors[resolved] {
		tr.fail(srcDir, fmt.Errorf("CopyTreeAbs `%s`: symbolic link loop", srcDir.String()))
		return
	}
	ancestors[resolved] = true
	defer delete(ancestors, resolved)

	if err := os.MkdirAll(tr.Root.JoinP(to).String(), os.FileMode(0755)); err != nil {
		tr.fail(srcDir, err)
		return
	}

	entries, err := os.ReadDir(resolved)
	if err != nil {
		tr.fail(srcDir, err)
		return
	}
	for _, entry := range entries {
		if tr.Err != nil {
			return
		}
		src := srcDir.Join(entry.Name())
		if isDir(src, entry) {
			tr.copyTree(src, to.Join(entry.Name()), ancestors)
			continue
		}
		tr.CopyAbs(src, to.Join(entry.Name()))
	}
}

func isDir(p Path, entry fs.DirEntry) bool {
	if entry.IsDir() {
		return true
	}
	if entry.Type()&fs.ModeSymlink == 0 {
		return false
	}
	info, err := os.Stat(p.String())
	return err == nil && info.IsDir()
}

func copyFile(from, to Path) error {
	source, err := os.Open(from.String())
	if err != nil {
		return fmt.Errorf("Copy from `%s` to `%s`: Open error: %w", from.String(), to.String(), err)
	}
	defer source.Close()

	info, err := source.Stat()
	if err != nil {
		return fmt.Errorf("Copy from `%s` to `%s`: Stat error: %w", from.String(), to.String(), err)
	}

	target, err := os.OpenFile(to.String(), os.O_CREATE|os.O_WRONLY|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return fmt.Errorf("Copy from `%s` to `%s`: OpenFile error: %w", from.String(), to.String(), err)
	}

	_, err = io.Copy(target, source)
	closeErr := target.Close()
	if err != nil {
		os.Remove(to.String())
		return fmt.Errorf("Copy from `%s` to `%s`: Copy error: %w", from.String(), to.String(), err)
	}
	if closeErr != nil {
		os.Remove(to.String())
		return fmt.Errorf("Copy from `%s` to `%s`: Close error: %w", from.String(), to.String(), closeErr)
	}
	return nil
}
