// Package mbox opens mbox archive files as mounted stores. An mbox
// file is a single flat folder: every message sits at the top level
// with no child folders.
package mbox

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	mboxlib "github.com/emersion/go-mbox"
	"github.com/emersion/go-message/mail"

	"github.com/markz0r/M365PowerKit/internal/core/domain"
	"github.com/markz0r/M365PowerKit/internal/core/ports/driven"
)

// Ensure Mounter implements the interface.
var _ driven.ArchiveMounter = (*Mounter)(nil)

// Mounter opens .mbox files. Mounting is cheap: messages are streamed
// from disk during traversal, not loaded up front.
type Mounter struct {
	mu     sync.Mutex
	active map[string]bool
}

// NewMounter creates a new mbox mounter.
func NewMounter() *Mounter {
	return &Mounter{active: make(map[string]bool)}
}

// Mounted returns the backing file paths of currently mounted stores.
func (m *Mounter) Mounted(_ context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var paths []string
	for path := range m.active {
		paths = append(paths, path)
	}
	return paths, nil
}

// Mount opens an mbox archive and returns its root folder.
func (m *Mounter) Mount(_ context.Context, archivePath string) (driven.ArchiveFolder, error) {
	if ext := strings.ToLower(filepath.Ext(archivePath)); ext != ".mbox" {
		return nil, fmt.Errorf("%w: %s is not an mbox archive", domain.ErrInvalidInput, archivePath)
	}
	if _, err := os.Stat(archivePath); err != nil {
		return nil, fmt.Errorf("open archive: %w", err)
	}

	m.mu.Lock()
	m.active[filepath.Clean(archivePath)] = true
	m.mu.Unlock()

	name := strings.TrimSuffix(filepath.Base(archivePath), filepath.Ext(archivePath))
	return &Folder{path: archivePath, name: name}, nil
}

// Unmount releases a mounted archive.
func (m *Mounter) Unmount(_ context.Context, archivePath string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := filepath.Clean(archivePath)
	if !m.active[key] {
		return fmt.Errorf("archive %s not mounted: %w", archivePath, domain.ErrNotFound)
	}
	delete(m.active, key)
	return nil
}

// Folder is the single flat folder of an mbox file.
type Folder struct {
	path string
	name string
}

var _ driven.ArchiveFolder = (*Folder)(nil)

// Name is the archive's base filename without extension.
func (f *Folder) Name() string {
	return f.name
}

// Items streams the messages in file order.
func (f *Folder) Items(ctx context.Context) (<-chan driven.ArchiveItem, <-chan error) {
	items := make(chan driven.ArchiveItem)
	errs := make(chan error, 1)

	go func() {
		defer close(items)
		defer close(errs)

		file, err := os.Open(f.path)
		if err != nil {
			errs <- fmt.Errorf("open %s: %w", f.path, err)
			return
		}
		defer file.Close()

		reader := mboxlib.NewReader(file)
		for idx := 0; ; idx++ {
			msg, err := reader.NextMessage()
			if errors.Is(err, io.EOF) {
				return
			}
			if err != nil {
				errs <- fmt.Errorf("message %d: %w", idx, err)
				return
			}

			raw, err := io.ReadAll(msg)
			if err != nil {
				errs <- fmt.Errorf("message %d: %w", idx, err)
				return
			}

			select {
			case items <- newItem(raw):
			case <-ctx.Done():
				errs <- ctx.Err()
				return
			}
		}
	}()

	return items, errs
}

// Folders returns no children: mbox archives are flat.
func (f *Folder) Folders(_ context.Context) ([]driven.ArchiveFolder, error) {
	return nil, nil
}

// Item is one message held as raw RFC 822 bytes. Header fields are
// decoded eagerly; attachments are parsed on demand.
type Item struct {
	raw      []byte
	subject  string
	received time.Time
}

var _ driven.ArchiveItem = (*Item)(nil)

func newItem(raw []byte) *Item {
	item := &Item{raw: raw}

	mr, err := mail.CreateReader(bytes.NewReader(raw))
	if err != nil {
		return item
	}
	defer mr.Close()

	if subject, err := mr.Header.Subject(); err == nil {
		item.subject = subject
	}
	if date, err := mr.Header.Date(); err == nil {
		item.received = date
	}
	return item
}

// Received is the message's Date header, zero when unparsable.
func (i *Item) Received() time.Time {
	return i.received
}

// Subject is the decoded Subject header.
func (i *Item) Subject() string {
	return i.subject
}

// Extension is the format SaveAs writes.
func (i *Item) Extension() string {
	return ".eml"
}

// SaveAs writes the raw message to path.
func (i *Item) SaveAs(_ context.Context, path string) error {
	return os.WriteFile(path, i.raw, 0o644)
}

// Attachments parses the MIME structure and returns every part with an
// attachment disposition. Transfer encodings are decoded.
func (i *Item) Attachments(_ context.Context) ([]driven.ArchiveAttachment, error) {
	mr, err := mail.CreateReader(bytes.NewReader(i.raw))
	if err != nil {
		return nil, fmt.Errorf("parse message %q: %w", i.subject, err)
	}
	defer mr.Close()

	var attachments []driven.ArchiveAttachment
	for {
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read part of %q: %w", i.subject, err)
		}

		header, ok := part.Header.(*mail.AttachmentHeader)
		if !ok {
			continue
		}
		filename, err := header.Filename()
		if err != nil || filename == "" {
			continue
		}

		data, err := io.ReadAll(part.Body)
		if err != nil {
			return nil, fmt.Errorf("read attachment %s: %w", filename, err)
		}
		attachments = append(attachments, &Attachment{name: filename, data: data})
	}
	return attachments, nil
}

// Attachment is one decoded attachment payload.
type Attachment struct {
	name string
	data []byte
}

var _ driven.ArchiveAttachment = (*Attachment)(nil)

// Filename is the attachment's decoded filename.
func (a *Attachment) Filename() string {
	return a.name
}

// Save writes the decoded payload to path.
func (a *Attachment) Save(_ context.Context, path string) error {
	return os.WriteFile(path, a.data, 0o644)
}
