package exporter

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"
)

const lockRetryDelay = 100 * time.Millisecond

// WriteTo writes every census family in text exposition format, sorted by
// name. Families without samples still get their HELP and TYPE lines.
func (r *Registry) WriteTo(w io.Writer) (int64, error) {
	mfs, err := r.registry.Gather()
	if err != nil {
		return 0, fmt.Errorf("failed to gather metrics: %w", err)
	}
	byName := make(map[string]*dto.MetricFamily, len(mfs))
	for _, mf := range mfs {
		byName[mf.GetName()] = mf
	}

	var written int64
	for _, name := range Names() {
		var n int
		if mf, ok := byName[name]; ok {
			n, err = expfmt.MetricFamilyToText(w, mf)
		} else {
			n, err = io.WriteString(w, familyHeader(name))
		}
		written += int64(n)
		if err != nil {
			return written, fmt.Errorf("failed to write %s: %w", name, err)
		}
	}
	return written, nil
}

// WriteTextfile replaces path with the current registry contents. The file
// is written to a temporary sibling and renamed into place while holding an
// advisory lock on path.lock.
func (r *Registry) WriteTextfile(ctx context.Context, path string) (err error) {
	lock := flock.New(path + ".lock")
	locked, err := lock.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		return fmt.Errorf("failed to lock %s: %w", path, err)
	}
	if !locked {
		return fmt.Errorf("failed to lock %s", path)
	}
	defer func() {
		_ = lock.Unlock()
	}()

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}
	defer func() {
		if err != nil {
			_ = os.Remove(tmp.Name())
		}
	}()

	buf := bufio.NewWriter(tmp)
	if _, err = r.WriteTo(buf); err != nil {
		_ = tmp.Close()
		return err
	}
	if err = buf.Flush(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write %s: %w", tmp.Name(), err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", tmp.Name(), err)
	}
	//nolint:gosec // node_exporter textfiles must be world-readable
	if err = os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("failed to chmod %s: %w", tmp.Name(), err)
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to rename into %s: %w", path, err)
	}
	return nil
}
