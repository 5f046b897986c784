// Package blob stores uploaded binary files (resumes, company logos) and
// hands back the URL under which they are served.
//
// Two naming schemes are in use:
//
//	resumes/{userID}_resume.pdf        (fixed path, overwritten on re-upload)
//	company_logos/{companyID}_{ts}.jpg (timestamped, unique per upload)
//
// The disk implementation keeps everything under one root directory; the
// Store interface exists so a cloud object store can replace it without
// touching the services.
package blob

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"
)

// Store saves binary objects by relative name and returns their public URL.
type Store interface {
	Save(ctx context.Context, name string, r io.Reader) (string, error)
}

// ResumePath is the fixed, overwritable storage path for a student's
// profile resume.
func ResumePath(userID string) string {
	return "resumes/" + userID + "_resume.pdf"
}

// LogoPath is the storage path for a company logo upload. The timestamp
// makes every upload unique, so old logo URLs stay valid.
func LogoPath(companyID string, now time.Time) string {
	return fmt.Sprintf("company_logos/%s_%d.jpg", companyID, now.UnixMilli())
}

// DiskStore implements Store on the local filesystem.
type DiskStore struct {
	root    string
	baseURL string
}

var _ Store = (*DiskStore)(nil)

// NewDiskStore creates a DiskStore rooted at root. Files saved as
// "resumes/x.pdf" land at {root}/resumes/x.pdf and are reported as
// {baseURL}/resumes/x.pdf.
func NewDiskStore(root, baseURL string) (*DiskStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("blob: creating store root %s: %w", root, err)
	}
	return &DiskStore{
		root:    root,
		baseURL: strings.TrimSuffix(baseURL, "/"),
	}, nil
}

// Root returns the store's root directory, for serving files over HTTP.
func (s *DiskStore) Root() string {
	return s.root
}

// Save writes the object under the store root. The write goes to a temp
// file first and is renamed into place, so a half-written upload never
// replaces an existing file (the resume path is deliberately overwritable).
func (s *DiskStore) Save(ctx context.Context, name string, r io.Reader) (string, error) {
	clean := path.Clean(name)
	if clean == "." || strings.HasPrefix(clean, "..") || path.IsAbs(clean) {
		return "", fmt.Errorf("blob: invalid object name %q", name)
	}

	if err := ctx.Err(); err != nil {
		return "", err
	}

	dst := filepath.Join(s.root, filepath.FromSlash(clean))
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return "", fmt.Errorf("blob: creating directory for %s: %w", clean, err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(dst), ".upload-*")
	if err != nil {
		return "", fmt.Errorf("blob: creating temp file for %s: %w", clean, err)
	}
	tmpName := tmp.Name()

	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return "", fmt.Errorf("blob: writing %s: %w", clean, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return "", fmt.Errorf("blob: closing %s: %w", clean, err)
	}

	if err := os.Rename(tmpName, dst); err != nil {
		os.Remove(tmpName)
		return "", fmt.Errorf("blob: storing %s: %w", clean, err)
	}

	return s.baseURL + "/" + clean, nil
}
