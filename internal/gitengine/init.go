package gitengine

import (
	"archive/tar"
	"archive/zip"
	"bytes"
	"compress/gzip"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ssdajoker/sologit/internal/errs"
	"github.com/ssdajoker/sologit/internal/store"
)

// InitFromArchive extracts a zip or tar.gz archive into a fresh repo
// directory, initializes a git repository, and makes an initial trunk
// commit if the extracted tree has no history of its own.
func (e *Engine) InitFromArchive(ctx context.Context, data []byte, name string) (string, error) {
	id, err := e.store.CreateRepo(store.Repository{Name: name, Trunk: "main"})
	if err != nil {
		return "", err
	}
	dir := e.store.RepoDir(id)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		_ = e.store.DeleteRepo(id)
		return "", &errs.StoreError{Path: dir, Cause: err}
	}

	if err := extractArchive(data, dir); err != nil {
		os.RemoveAll(dir)
		_ = e.store.DeleteRepo(id)
		return "", err
	}

	if err := e.ensureInitialCommit(ctx, dir, "main"); err != nil {
		os.RemoveAll(dir)
		_ = e.store.DeleteRepo(id)
		return "", err
	}

	if err := e.store.UpdateRepo(id, func(r *store.Repository) { r.Path = dir }); err != nil {
		return "", err
	}
	e.log.Info("repo imported from archive", "repo_id", id, "name", name)
	return id, nil
}

// InitFromURL clones url into a fresh repo directory; the clone's current
// default branch becomes trunk (spec Open Question 2).
func (e *Engine) InitFromURL(ctx context.Context, url, name string) (string, error) {
	dir := filepath.Join(os.TempDir(), "sologit-clone-"+name)
	defer os.RemoveAll(dir)

	if _, err := e.git.Run(ctx, "", "clone", url, dir); err != nil {
		return "", &errs.PreconditionError{Op: "init_from_url", Reason: "clone failed", Details: map[string]any{"cause": err.Error()}}
	}

	trunk, err := e.currentBranch(ctx, dir)
	if err != nil || trunk == "" {
		return "", &errs.PreconditionError{Op: "init_from_url", Reason: "could not determine default branch"}
	}

	id, err := e.store.CreateRepo(store.Repository{Name: name, Trunk: trunk, OriginURL: url})
	if err != nil {
		return "", err
	}
	finalDir := e.store.RepoDir(id)
	if err := os.Rename(dir, finalDir); err != nil {
		_ = e.store.DeleteRepo(id)
		return "", &errs.StoreError{Path: finalDir, Cause: err}
	}

	if err := e.store.UpdateRepo(id, func(r *store.Repository) { r.Path = finalDir }); err != nil {
		return "", err
	}
	e.log.Info("repo cloned", "repo_id", id, "url", url, "trunk", trunk)
	return id, nil
}

// ensureInitialCommit initializes git in dir (if needed) and commits the
// working tree if there is no history yet.
func (e *Engine) ensureInitialCommit(ctx context.Context, dir, trunk string) error {
	if _, err := e.git.Run(ctx, dir, "rev-parse", "--is-inside-work-tree"); err != nil {
		if _, err := e.git.Run(ctx, dir, "init", "-b", trunk); err != nil {
			return err
		}
	}
	if _, err := e.git.Run(ctx, dir, "rev-parse", "HEAD"); err == nil {
		return nil // history already exists
	}

	if _, err := e.git.Run(ctx, dir, "add", "-A"); err != nil {
		return err
	}
	_, err := e.git.Run(ctx, dir, "-c", "user.email=sologit@localhost", "-c", "user.name=sologit",
		"commit", "--allow-empty", "-m", "Initial import")
	return err
}

func extractArchive(data []byte, dest string) error {
	if isZip(data) {
		return extractZip(data, dest)
	}
	return extractTarGz(data, dest)
}

func isZip(data []byte) bool {
	return len(data) >= 4 && bytes.Equal(data[:4], []byte{'P', 'K', 0x03, 0x04})
}

func extractZip(data []byte, dest string) error {
	r, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return &errs.MalformedError{What: "archive", Hint: err.Error()}
	}
	for _, f := range r.File {
		if err := extractZipEntry(f, dest); err != nil {
			return err
		}
	}
	return nil
}

func extractZipEntry(f *zip.File, dest string) error {
	target, err := safeJoin(dest, f.Name)
	if err != nil {
		return err
	}
	if f.FileInfo().IsDir() {
		return os.MkdirAll(target, 0o755)
	}
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return &errs.StoreError{Path: target, Cause: err}
	}
	rc, err := f.Open()
	if err != nil {
		return &errs.MalformedError{What: "archive", Hint: err.Error()}
	}
	defer rc.Close()

	out, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, f.Mode())
	if err != nil {
		return &errs.StoreError{Path: target, Cause: err}
	}
	defer out.Close()
	if _, err := io.Copy(out, rc); err != nil {
		return &errs.StoreError{Path: target, Cause: err}
	}
	return nil
}

func extractTarGz(data []byte, dest string) error {
	gz, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return &errs.MalformedError{What: "archive", Hint: err.Error()}
	}
	defer gz.Close()

	tr := tar.NewReader(gz)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return &errs.MalformedError{What: "archive", Hint: err.Error()}
		}
		target, err := safeJoin(dest, hdr.Name)
		if err != nil {
			return err
		}
		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, 0o755); err != nil {
				return &errs.StoreError{Path: target, Cause: err}
			}
		case tar.TypeReg:
			if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
				return &errs.StoreError{Path: target, Cause: err}
			}
			out, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, os.FileMode(hdr.Mode))
			if err != nil {
				return &errs.StoreError{Path: target, Cause: err}
			}
			if _, err := io.Copy(out, tr); err != nil {
				out.Close()
				return &errs.StoreError{Path: target, Cause: err}
			}
			out.Close()
		}
	}
}

// safeJoin joins dest and name, rejecting path-traversal entries so a
// malicious archive cannot write outside dest.
func safeJoin(dest, name string) (string, error) {
	cleaned := filepath.Clean("/" + name)[1:]
	if cleaned == "" || strings.HasPrefix(cleaned, "..") {
		return "", &errs.MalformedError{What: "archive", Hint: "unsafe path in archive entry: " + name}
	}
	return filepath.Join(dest, cleaned), nil
}
