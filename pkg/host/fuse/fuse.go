// Package fuse projects the virtual tree through FUSE (via WinFSP on
// Windows, libfuse elsewhere). The filesystem is strictly read-only: every
// mutating operation fails with EROFS, and content materializes through the
// hydration engine on first read.
package fuse

import (
	"context"
	"errors"
	"os"
	"time"

	"github.com/winfsp/cgofuse/fuse"

	"github.com/DrChat/razmount/internal/logger"
	"github.com/DrChat/razmount/pkg/host"
	"github.com/DrChat/razmount/pkg/hydrate"
	"github.com/DrChat/razmount/pkg/placeholder"
	"github.com/DrChat/razmount/pkg/remote"
)

// Host implements host.Host over cgofuse.
type Host struct {
	fuse.FileSystemBase

	proj      host.Projector
	fsHost    *fuse.FileSystemHost
	mountPath string
	mountTime time.Time

	ctx    context.Context
	cancel context.CancelFunc
}

// New creates a FUSE host projecting proj at mountPath.
func New(proj host.Projector, mountPath string) *Host {
	return &Host{
		proj:      proj,
		mountPath: mountPath,
		mountTime: time.Now(),
	}
}

// Mount attaches the projection and blocks until unmount. Cancelling ctx
// unmounts and returns ctx.Err().
func (h *Host) Mount(ctx context.Context) error {
	if err := os.MkdirAll(h.mountPath, 0755); err != nil {
		return err
	}

	h.ctx, h.cancel = context.WithCancel(context.Background())
	h.fsHost = fuse.NewFileSystemHost(h)
	h.fsHost.SetCapReaddirPlus(false)

	logger.Info("Mounting projection at %s", h.mountPath)

	errCh := make(chan error, 1)
	go func() {
		if ok := h.fsHost.Mount(h.mountPath, []string{"-o", "ro"}); !ok {
			errCh <- errors.New("fuse mount failed")
		} else {
			errCh <- nil
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		h.fsHost.Unmount()
		<-errCh
		return ctx.Err()
	}
}

// Unmount detaches the projection.
func (h *Host) Unmount() error {
	if h.fsHost != nil {
		h.fsHost.Unmount()
	}
	return nil
}

// errno maps engine errors onto FUSE status codes.
func errno(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, hydrate.ErrPathNotFound):
		return -fuse.ENOENT
	case errors.Is(err, hydrate.ErrNotDirectory):
		return -fuse.ENOTDIR
	case errors.Is(err, hydrate.ErrIsDirectory):
		return -fuse.EISDIR
	case errors.Is(err, placeholder.ErrUnprojectableName):
		return -fuse.ENOENT
	case errors.Is(err, remote.ErrUnavailable):
		return -fuse.ENETUNREACH
	case errors.Is(err, context.DeadlineExceeded):
		return -fuse.ETIMEDOUT
	default:
		return -fuse.EIO
	}
}

// fillStat translates a placeholder record into stat form. Placeholders
// carry no timestamps, so everything reports the mount time.
func (h *Host) fillStat(p placeholder.Placeholder, stat *fuse.Stat_t) {
	ts := fuse.NewTimespec(h.mountTime)
	stat.Mtim = ts
	stat.Atim = ts
	stat.Ctim = ts
	stat.Uid = uint32(os.Getuid())
	stat.Gid = uint32(os.Getgid())
	if p.IsDir {
		stat.Mode = fuse.S_IFDIR | 0555
		stat.Nlink = 2
	} else {
		stat.Mode = fuse.S_IFREG | 0444
		stat.Nlink = 1
		stat.Size = int64(p.Size)
	}
}

// ----------------------------------------------------------------------------
// fuse.FileSystemInterface
// ----------------------------------------------------------------------------

func (h *Host) Init() {
	logger.Debug("fuse: init")
}

func (h *Host) Destroy() {
	logger.Debug("fuse: destroy")
	if h.cancel != nil {
		h.cancel()
	}
}

func (h *Host) Getattr(path string, stat *fuse.Stat_t, fh uint64) int {
	p, err := h.proj.GetPlaceholderInfo(h.ctx, path)
	if err != nil {
		return errno(err)
	}
	h.fillStat(p, stat)
	return 0
}

func (h *Host) Opendir(path string) (int, uint64) {
	p, err := h.proj.GetPlaceholderInfo(h.ctx, path)
	if err != nil {
		return errno(err), ^uint64(0)
	}
	if !p.IsDir {
		return -fuse.ENOTDIR, ^uint64(0)
	}
	return 0, 0
}

func (h *Host) Readdir(path string, fill func(name string, stat *fuse.Stat_t, ofst int64) bool, ofst int64, fh uint64) int {
	children, err := h.proj.EnumerateDirectory(h.ctx, path)
	if err != nil {
		return errno(err)
	}

	fill(".", nil, 0)
	fill("..", nil, 0)
	for _, child := range children {
		var st fuse.Stat_t
		h.fillStat(child, &st)
		if !fill(child.Name, &st, 0) {
			break
		}
	}
	return 0
}

func (h *Host) Open(path string, flags int) (int, uint64) {
	if flags&(os.O_WRONLY|os.O_RDWR) != 0 {
		return -fuse.EROFS, ^uint64(0)
	}
	p, err := h.proj.GetPlaceholderInfo(h.ctx, path)
	if err != nil {
		return errno(err), ^uint64(0)
	}
	if p.IsDir {
		return -fuse.EISDIR, ^uint64(0)
	}
	// Content is addressed by path and hydrated per range; no per-open
	// state is needed.
	return 0, 0
}

func (h *Host) Read(path string, buff []byte, ofst int64, fh uint64) int {
	if ofst < 0 {
		return -fuse.EINVAL
	}
	data, err := h.proj.GetFileData(h.ctx, path, uint64(ofst), uint64(len(buff)))
	if err != nil {
		if errors.Is(err, remote.ErrRangeUnsatisfiable) {
			return 0
		}
		logger.Error("Read %s at %d failed: %v", path, ofst, err)
		return errno(err)
	}
	return copy(buff, data)
}

func (h *Host) Access(path string, mask uint32) int {
	_, err := h.proj.GetPlaceholderInfo(h.ctx, path)
	return errno(err)
}

func (h *Host) Statfs(path string, stat *fuse.Statfs_t) int {
	stat.Bsize = 4096
	stat.Frsize = 4096
	stat.Blocks = 1 << 30
	stat.Bfree = 0
	stat.Bavail = 0
	stat.Namemax = 255
	return 0
}

// Write-path operations all refuse: the projection is read-only.

func (h *Host) Mknod(path string, mode uint32, dev uint64) int    { return -fuse.EROFS }
func (h *Host) Mkdir(path string, mode uint32) int                { return -fuse.EROFS }
func (h *Host) Unlink(path string) int                            { return -fuse.EROFS }
func (h *Host) Rmdir(path string) int                             { return -fuse.EROFS }
func (h *Host) Rename(oldpath string, newpath string) int         { return -fuse.EROFS }
func (h *Host) Link(oldpath string, newpath string) int           { return -fuse.EROFS }
func (h *Host) Symlink(target string, newpath string) int         { return -fuse.EROFS }
func (h *Host) Chmod(path string, mode uint32) int                { return -fuse.EROFS }
func (h *Host) Chown(path string, uid uint32, gid uint32) int     { return -fuse.EROFS }
func (h *Host) Truncate(path string, size int64, fh uint64) int   { return -fuse.EROFS }
func (h *Host) Create(path string, flags int, mode uint32) (int, uint64) {
	return -fuse.EROFS, ^uint64(0)
}
func (h *Host) Write(path string, buff []byte, ofst int64, fh uint64) int { return -fuse.EROFS }
func (h *Host) Utimens(path string, tmsp []fuse.Timespec) int             { return -fuse.EROFS }
func (h *Host) Setxattr(path string, name string, value []byte, flags int) int {
	return -fuse.EROFS
}
func (h *Host) Removexattr(path string, name string) int { return -fuse.EROFS }
