package fsutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestCopyFilesAbsSkipsDirectories(t *testing.T) {
	src := t.TempDir()
	dst := t.TempDir()

	writeFile(t, filepath.Join(src, "namelist.hrldas"), "nml")
	writeFile(t, filepath.Join(src, "hydro.namelist"), "hydro")
	writeFile(t, filepath.Join(src, "lib", "wrf_hydro.exe"), "exe")

	tr := New(Path(dst), nil)
	tr.CopyFilesAbs(Path(src), ".")
	require.NoError(t, tr.Err)
	assert.True(t, tr.Report.OK())
	assert.Len(t, tr.Report.Copied, 2)

	content, err := os.ReadFile(filepath.Join(dst, "namelist.hrldas"))
	require.NoError(t, err)
	assert.Equal(t, "nml", string(content))
	assert.NoFileExists(t, filepath.Join(dst, "lib"))
}

func TestCopyTreeAbs(t *testing.T) {
	src := t.TempDir()
	dst := t.TempDir()

	writeFile(t, filepath.Join(src, "lib", "a.tbl"), "a")
	writeFile(t, filepath.Join(src, "lib", "sub", "b.tbl"), "b")

	tr := New(Path(dst), nil)
	tr.CopyTreeAbs(Path(src).Join("lib"), "lib")
	require.NoError(t, tr.Err)
	assert.True(t, tr.Report.OK())

	content, err := os.ReadFile(filepath.Join(dst, "lib", "sub", "b.tbl"))
	require.NoError(t, err)
	assert.Equal(t, "b", string(content))
}

func TestCopyFailureIsRecordedAndLogged(t *testing.T) {
	dst := t.TempDir()
	logger, hook := test.NewNullLogger()

	tr := New(Path(dst), logger)
	tr.CopyAbs(Path(filepath.Join(dst, "missing")), "copy")
	tr.CopyTreeAbs(Path(filepath.Join(dst, "missing-dir")), "lib")

	require.NoError(t, tr.Err)
	assert.False(t, tr.Report.OK())
	assert.Len(t, tr.Report.Failed, 2)
	assert.Empty(t, tr.Report.Copied)

	require.NotEmpty(t, hook.AllEntries())
	assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)
}

func TestStructuralErrorIsSticky(t *testing.T) {
	dst := t.TempDir()
	writeFile(t, filepath.Join(dst, "file"), "x")

	tr := New(Path(dst), nil)
	tr.MkDir("file/sub")
	require.Error(t, tr.Err)

	tr.CopyAbs(Path(filepath.Join(dst, "file")), "other")
	assert.Empty(t, tr.Report.Copied)
	assert.Empty(t, tr.Report.Failed)
	assert.NoFileExists(t, filepath.Join(dst, "other"))
}

func TestPathJoin(t *testing.T) {
	p := Path("/data")
	assert.Equal(t, "/data/setup_001/forcing", p.Join("setup_001").JoinP("forcing").String())
	assert.Equal(t, "forcing", p.Join("forcing").Filename())
}

func TestCopyTreeAbsFollowsSymlinks(t *testing.T) {
	src := t.TempDir()
	dst := t.TempDir()

	writeFile(t, filepath.Join(src, "shared-lib", "libnetcdf.so"), "netcdf")
	writeFile(t, filepath.Join(src, "mpi-4.1", "libmpi.so"), "mpi")
	require.NoError(t, os.Symlink(filepath.Join(src, "shared-lib"), filepath.Join(src, "lib")))
	require.NoError(t, os.Symlink(filepath.Join(src, "mpi-4.1"), filepath.Join(src, "shared-lib", "mpi")))

	tr := New(Path(dst), nil)
	tr.CopyTreeAbs(Path(src).Join("lib"), "lib")
	require.NoError(t, tr.Err)
	assert.True(t, tr.Report.OK())
	assert.Len(t, tr.Report.Copied, 2)

	info, err := os.Lstat(filepath.Join(dst, "lib"))
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	content, err := os.ReadFile(filepath.Join(dst, "lib", "libnetcdf.so"))
	require.NoError(t, err)
	assert.Equal(t, "netcdf", string(content))

	content, err = os.ReadFile(filepath.Join(dst, "lib", "mpi", "libmpi.so"))
	require.NoError(t, err)
	assert.Equal(t, "mpi", string(content))
}

func TestCopyTreeAbsStopsOnLinkLoop(t *testing.T) {
	src := t.TempDir()
	dst := t.TempDir()

	writeFile(t, filepath.Join(src, "lib", "a.tbl"), "a")
	require.NoError(t, os.Symlink(filepath.Join(src, "lib"), filepath.Join(src, "lib", "self")))

	tr := New(Path(dst), nil)
	tr.CopyTreeAbs(Path(src).Join("lib"), "lib")
	require.NoError(t, tr.Err)
	require.Len(t, tr.Report.Failed, 1)
	assert.Equal(t, filepath.Join(src, "lib", "self"), tr.Report.Failed[0].Path.String())
	assert.FileExists(t, filepath.Join(dst, "lib", "a.tbl"))
}

func TestFailedCopyLeavesNoTarget(t *testing.T) {
	src := t.TempDir()
	dst := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(src, "lib"), 0755))

	tr := New(Path(dst), nil)
	tr.CopyAbs(Path(src).Join("lib"), "lib")
	require.NoError(t, tr.Err)
	assert.Len(t, tr.Report.Failed, 1)
	assert.NoFileExists(t, filepath.Join(dst, "lib"))
	assert.NoDirExists(t, filepath.Join(dst, "lib"))
}
