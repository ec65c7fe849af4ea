// Package attachment stores ticket photo uploads on disk and records
// their metadata. Files land under a year/month tree with names derived
// from the ticket, uploader, and upload time, so a path can be traced
// back to its ticket without consulting the database.
package attachment

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/opsline/helpdesk/internal/models"
	"github.com/opsline/helpdesk/internal/ticket"
	"gorm.io/gorm"
)

// Fetcher retrieves attachment bytes by platform reference. Discord and
// Slack both hand us a URL; tests substitute an in-memory fetcher.
type Fetcher interface {
	Fetch(ctx context.Context, ref string) (io.ReadCloser, error)
}

// HTTPFetcher fetches attachment content over HTTP(S).
type HTTPFetcher struct {
	Client *http.Client // nil means http.DefaultClient
}

// Fetch issues a GET for ref and returns the response body. The caller
// owns closing it.
func (f *HTTPFetcher) Fetch(ctx context.Context, ref string) (io.ReadCloser, error) {
	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ref, nil)
	if err != nil {
		return nil, fmt.Errorf("attachment: fetch %s: %w", ref, err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("attachment: fetch %s: %w", ref, err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("attachment: fetch %s: unexpected status %s", ref, resp.Status)
	}
	return resp.Body, nil
}

// Store writes photo files under a root directory and records one
// TicketPhoto row per stored file.
type Store struct {
	db      *gorm.DB
	root    string
	fetcher Fetcher
	now     func() time.Time
}

// StoreOpts holds parameters for creating a Store.
type StoreOpts struct {
	DB      *gorm.DB
	Root    string
	Fetcher Fetcher          // defaults to HTTPFetcher
	Now     func() time.Time // defaults to time.Now
}

// NewStore creates a Store.
func NewStore(opts StoreOpts) (*Store, error) {
	if opts.DB == nil {
		return nil, fmt.Errorf("attachment: store: db is required")
	}
	if opts.Root == "" {
		return nil, fmt.Errorf("attachment: store: root is required")
	}
	s := &Store{
		db:      opts.DB,
		root:    opts.Root,
		fetcher: opts.Fetcher,
		now:     opts.Now,
	}
	if s.fetcher == nil {
		s.fetcher = &HTTPFetcher{}
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s, nil
}

// Store fetches the referenced file, writes it under
// root/YYYY/MM/ticket_{id}_{role}_{uploader}_{timestamp}_{seq}{ext},
// and records its metadata row. The sequence number disambiguates
// same-second uploads by the same actor.
func (s *Store) Store(ctx context.Context, fileRef, filename string, ticketID uint, uploader ticket.Actor) (*models.TicketPhoto, error) {
	body, err := s.fetcher.Fetch(ctx, fileRef)
	if err != nil {
		return nil, fmt.Errorf("attachment: store for ticket %d: %w", ticketID, err)
	}
	defer body.Close()

	now := s.now()
	dir := filepath.Join(s.root, now.Format("2006"), now.Format("01"))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("attachment: store for ticket %d: %w", ticketID, err)
	}

	prefix := fmt.Sprintf("ticket_%d_%s_%s_%s_",
		ticketID, uploader.Role(), uploader.ID, now.Format("20060102_150405"))
	seq, err := nextSequence(dir, prefix)
	if err != nil {
		return nil, fmt.Errorf("attachment: store for ticket %d: %w", ticketID, err)
	}
	path := filepath.Join(dir, fmt.Sprintf("%s%d%s", prefix, seq, extensionOf(filename)))

	size, err := writeFile(path, body)
	if err != nil {
		return nil, fmt.Errorf("attachment: store for ticket %d: %w", ticketID, err)
	}

	photo := &models.TicketPhoto{
		TicketID:     ticketID,
		FileRef:      fileRef,
		Path:         path,
		Filename:     filename,
		Size:         size,
		UploaderID:   uploader.ID,
		UploaderRole: uploader.Role(),
	}
	if err := s.db.WithContext(ctx).Create(photo).Error; err != nil {
		// The metadata row is the source of truth; an orphan file would
		// never be cleaned up, so remove it.
		if rmErr := os.Remove(path); rmErr != nil {
			log.Printf("attachment: remove orphan %s: %v", path, rmErr)
		}
		return nil, fmt.Errorf("attachment: record for ticket %d: %w", ticketID, err)
	}
	return photo, nil
}

// RemoveTicketFiles deletes the on-disk files for every photo recorded
// against the ticket. Rows stay; the retention sweeper owns deleting
// them. Missing files count as already removed, and individual failures
// are logged without aborting the rest.
func (s *Store) RemoveTicketFiles(ctx context.Context, ticketID uint) (int, error) {
	var photos []models.TicketPhoto
	if err := s.db.WithContext(ctx).Where("ticket_id = ?", ticketID).Find(&photos).Error; err != nil {
		return 0, fmt.Errorf("attachment: list for ticket %d: %w", ticketID, err)
	}

	removed := 0
	for _, p := range photos {
		err := os.Remove(p.Path)
		switch {
		case err == nil, os.IsNotExist(err):
			removed++
		default:
			log.Printf("attachment: remove %s: %v", p.Path, err)
		}
	}
	return removed, nil
}

// nextSequence returns 1 plus the number of existing files sharing the
// prefix in dir.
func nextSequence(dir, prefix string) (int, error) {
	matches, err := filepath.Glob(filepath.Join(dir, prefix+"*"))
	if err != nil {
		return 0, err
	}
	return len(matches) + 1, nil
}

func extensionOf(filename string) string {
	if ext := filepath.Ext(filename); ext != "" {
		return ext
	}
	return ".jpg"
}

func writeFile(path string, r io.Reader) (int64, error) {
	f, err := os.Create(path)
	if err != nil {
		return 0, err
	}
	size, err := io.Copy(f, r)
	if err != nil {
		f.Close()
		return 0, err
	}
	return size, f.Close()
}
