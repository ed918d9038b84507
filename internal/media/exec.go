package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"sync"
	"syscall"
	"time"
)

const (
	stderrTail    = 4 << 10
	killWaitDelay = 5 * time.Second
)

// Swapped in tests to run a fake tool.
var execCommand = exec.CommandContext

// newCommand builds a tool invocation that receives SIGTERM on cancellation and is
// killed if it has not exited killWaitDelay later.
func newCommand(ctx context.Context, name string, args ...string) *exec.Cmd {
	cmd := execCommand(ctx, name, args...)
	cmd.Cancel = func() error {
		return cmd.Process.Signal(syscall.SIGTERM)
	}
	cmd.WaitDelay = killWaitDelay
	return cmd
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}

// toolError classifies a failed tool run. Deadline and cancellation win over the exit status.
func toolError(ctx context.Context, tool string, kind Kind, err error, stderr string) *Error {
	switch {
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		return Fail(KindTimeout, err, "%s exceeded its time limit", tool)
	case errors.Is(ctx.Err(), context.Canceled):
		return Fail(KindCanceled, err, "%s canceled", tool)
	}
	if stderr != "" {
		return Fail(kind, err, "%s failed: %s", tool, stderr)
	}
	return Fail(kind, err, "%s failed", tool)
}

// tailBuffer keeps the last max bytes written to it.
type tailBuffer struct {
	mu  sync.Mutex
	max int
	buf []byte
}

func newTailBuffer() *tailBuffer {
	return &tailBuffer{max: stderrTail}
}

func (t *tailBuffer) Write(p []byte) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.buf = append(t.buf, p...)
	if len(t.buf) > t.max {
		t.buf = t.buf[len(t.buf)-t.max:]
	}
	return len(p), nil
}

func (t *tailBuffer) String() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return strings.TrimSpace(string(t.buf))
}

func formatSeconds(s float64) string {
	return strconv.FormatFloat(s, 'f', 3, 64)
}

var renameFunc = os.Rename

// RemoveFile deletes path. A missing file is not an error.
func RemoveFile(path string) error {
	if path == "" {
		return nil
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// moveFile renames src to dst, copying across filesystems when rename reports EXDEV.
// dst must not exist.
func moveFile(src, dst string) error {
	if _, err := os.Lstat(dst); err == nil {
		return fmt.Errorf("move %s: destination %s already exists", src, dst)
	}
	err := renameFunc(src, dst)
	if err == nil {
		return nil
	}
	if !errors.Is(err, syscall.EXDEV) {
		return err
	}
	if err := copyFile(src, dst); err != nil {
		_ = RemoveFile(dst)
		return err
	}
	return RemoveFile(src)
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return err
	}
	if _, err = io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	if err = out.Sync(); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
