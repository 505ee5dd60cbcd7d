package stage

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"
)

// renameFunc is swapped in tests to simulate cross-device moves.
var renameFunc = os.Rename

// moveFile moves src to dst, creating dst's directory. It never replaces
// an existing dst. When rename fails across filesystems it copies, checks
// the size, and only then removes src.
func moveFile(src, dst string) error {
	if di, err := os.Lstat(dst); err == nil {
		// a case-only rename on a case-insensitive volume sees itself
		si, serr := os.Lstat(src)
		if serr != nil || !os.SameFile(si, di) {
			return fmt.Errorf("move %s: %w", dst, fs.ErrExist)
		}
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("mkdir %s: %w", filepath.Dir(dst), err)
	}

	err := renameFunc(src, dst)
	if err == nil {
		return nil
	}
	if !isCrossDevice(err) {
		return err
	}

	info, err := os.Stat(src)
	if err != nil {
		return err
	}
	if err := copyFile(src, dst, info); err != nil {
		os.Remove(dst)
		return fmt.Errorf("copy %s: %w", src, err)
	}
	if got, err := os.Stat(dst); err != nil || got.Size() != info.Size() {
		os.Remove(dst)
		return fmt.Errorf("copy %s: size mismatch after copy", src)
	}
	return os.Remove(src)
}

func copyFile(src, dst string, srcInfo fs.FileInfo) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, srcInfo.Mode().Perm())
	if err != nil {
		return err
	}

	if _, err = io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}

	// Keep the original mtime; losing it is not worth failing the move.
	_ = os.Chtimes(dst, time.Now(), srcInfo.ModTime())
	return nil
}
