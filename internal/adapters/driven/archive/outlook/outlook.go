//go:build windows

// Package outlook mounts pst archives through the desktop mail
// client's COM automation interface.
package outlook

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/go-ole/go-ole"
	"github.com/go-ole/go-ole/oleutil"

	"github.com/markz0r/M365PowerKit/internal/core/domain"
	"github.com/markz0r/M365PowerKit/internal/core/ports/driven"
	"github.com/markz0r/M365PowerKit/internal/logger"
)

// Ensure Mounter implements the interface.
var _ driven.ArchiveMounter = (*Mounter)(nil)

// Outlook object model constants.
const (
	olStoreUnicode = 2 // OlStoreType for AddStoreEx
	olSaveAsMsg    = 3 // OlSaveAsType for MailItem.SaveAs
)

// sFalse is returned by CoInitializeEx when COM is already initialised
// on the calling thread.
const sFalse = 0x00000001

// Mounter attaches pst files as stores of a running Outlook instance.
// The application is started on first use and shared across calls.
type Mounter struct {
	mu  sync.Mutex
	app *ole.IDispatch
	ns  *ole.IDispatch
}

// NewMounter creates a new Outlook mounter. The COM session is opened
// lazily on the first call that needs it.
func NewMounter() *Mounter {
	return &Mounter{}
}

// namespace attaches to the MAPI namespace, launching the application
// if it is not already running. Callers hold m.mu.
func (m *Mounter) namespace() (*ole.IDispatch, error) {
	if m.ns != nil {
		return m.ns, nil
	}

	if err := ole.CoInitializeEx(0, ole.COINIT_MULTITHREADED); err != nil {
		oleErr, ok := err.(*ole.OleError)
		if !ok || (oleErr.Code() != ole.S_OK && oleErr.Code() != sFalse) {
			return nil, fmt.Errorf("initialise COM: %w", err)
		}
	}

	unknown, err := oleutil.CreateObject("Outlook.Application")
	if err != nil {
		return nil, fmt.Errorf("start Outlook: %w", err)
	}
	defer unknown.Release()

	app, err := unknown.QueryInterface(ole.IID_IDispatch)
	if err != nil {
		return nil, fmt.Errorf("query Outlook dispatch: %w", err)
	}

	nsVar, err := oleutil.CallMethod(app, "GetNamespace", "MAPI")
	if err != nil {
		app.Release()
		return nil, fmt.Errorf("get MAPI namespace: %w", err)
	}

	m.app = app
	m.ns = nsVar.ToIDispatch()
	logger.Debug("Attached to Outlook MAPI namespace")
	return m.ns, nil
}

// Close releases the COM session. Safe to call when nothing was opened.
func (m *Mounter) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.ns != nil {
		m.ns.Release()
		m.ns = nil
	}
	if m.app != nil {
		m.app.Release()
		m.app = nil
		ole.CoUninitialize()
	}
	return nil
}

// Mounted returns the backing file paths of the stores currently
// attached to the session, skipping mailbox stores with no local file.
func (m *Mounter) Mounted(_ context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	ns, err := m.namespace()
	if err != nil {
		return nil, err
	}

	var paths []string
	err = m.eachStore(ns, func(store *ole.IDispatch) (bool, error) {
		path, err := getStr(store, "FilePath")
		if err != nil {
			return false, err
		}
		if path != "" {
			paths = append(paths, path)
		}
		return false, nil
	})
	if err != nil {
		return nil, err
	}
	return paths, nil
}

// Mount attaches the pst file as a store and returns its root folder.
func (m *Mounter) Mount(_ context.Context, archivePath string) (driven.ArchiveFolder, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	ns, err := m.namespace()
	if err != nil {
		return nil, err
	}

	abs, err := filepath.Abs(archivePath)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", archivePath, err)
	}

	if _, err := oleutil.CallMethod(ns, "AddStoreEx", abs, olStoreUnicode); err != nil {
		return nil, fmt.Errorf("add store %s: %w", abs, err)
	}

	store, err := m.findStore(ns, abs)
	if err != nil {
		return nil, err
	}
	if store == nil {
		return nil, fmt.Errorf("store %s not attached after AddStoreEx: %w", abs, domain.ErrNotFound)
	}
	defer store.Release()

	rootVar, err := oleutil.CallMethod(store, "GetRootFolder")
	if err != nil {
		return nil, fmt.Errorf("get root folder of %s: %w", abs, err)
	}
	return newFolder(rootVar.ToIDispatch())
}

// Unmount detaches the store backed by archivePath.
func (m *Mounter) Unmount(_ context.Context, archivePath string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	ns, err := m.namespace()
	if err != nil {
		return err
	}

	abs, err := filepath.Abs(archivePath)
	if err != nil {
		return fmt.Errorf("resolve %s: %w", archivePath, err)
	}

	store, err := m.findStore(ns, abs)
	if err != nil {
		return err
	}
	if store == nil {
		return fmt.Errorf("archive %s not mounted: %w", archivePath, domain.ErrNotFound)
	}
	defer store.Release()

	rootVar, err := oleutil.CallMethod(store, "GetRootFolder")
	if err != nil {
		return fmt.Errorf("get root folder of %s: %w", abs, err)
	}
	root := rootVar.ToIDispatch()
	defer root.Release()

	if _, err := oleutil.CallMethod(ns, "RemoveStore", root); err != nil {
		return fmt.Errorf("remove store %s: %w", abs, err)
	}
	return nil
}

// findStore returns the attached store whose FilePath equals path, or
// nil when no store matches. The caller releases the returned dispatch.
func (m *Mounter) findStore(ns *ole.IDispatch, path string) (*ole.IDispatch, error) {
	var found *ole.IDispatch
	err := m.eachStore(ns, func(store *ole.IDispatch) (bool, error) {
		filePath, err := getStr(store, "FilePath")
		if err != nil {
			return false, err
		}
		if strings.EqualFold(filepath.Clean(filePath), filepath.Clean(path)) {
			store.AddRef()
			found = store
			return true, nil
		}
		return false, nil
	})
	if err != nil {
		return nil, err
	}
	return found, nil
}

// eachStore iterates the session's store collection. The visit function
// returns true to stop early; store dispatches are released after each
// visit.
func (m *Mounter) eachStore(ns *ole.IDispatch, visit func(*ole.IDispatch) (bool, error)) error {
	storesVar, err := oleutil.GetProperty(ns, "Stores")
	if err != nil {
		return fmt.Errorf("get stores: %w", err)
	}
	stores := storesVar.ToIDispatch()
	defer stores.Release()

	count, err := getInt(stores, "Count")
	if err != nil {
		return err
	}

	// Store collections are 1-based.
	for i := 1; i <= count; i++ {
		itemVar, err := oleutil.CallMethod(stores, "Item", i)
		if err != nil {
			return fmt.Errorf("get store %d: %w", i, err)
		}
		store := itemVar.ToIDispatch()

		stop, err := visit(store)
		store.Release()
		if err != nil {
			return err
		}
		if stop {
			return nil
		}
	}
	return nil
}

// Folder wraps a MAPIFolder dispatch.
type Folder struct {
	dispatch *ole.IDispatch
	name     string
}

var _ driven.ArchiveFolder = (*Folder)(nil)

func newFolder(dispatch *ole.IDispatch) (*Folder, error) {
	name, err := getStr(dispatch, "Name")
	if err != nil {
		dispatch.Release()
		return nil, fmt.Errorf("get folder name: %w", err)
	}
	return &Folder{dispatch: dispatch, name: name}, nil
}

// Name is the folder's display name.
func (f *Folder) Name() string {
	return f.name
}

// Items streams the folder's items in store order.
func (f *Folder) Items(ctx context.Context) (<-chan driven.ArchiveItem, <-chan error) {
	items := make(chan driven.ArchiveItem)
	errs := make(chan error, 1)

	go func() {
		defer close(items)
		defer close(errs)

		collectionVar, err := oleutil.GetProperty(f.dispatch, "Items")
		if err != nil {
			errs <- fmt.Errorf("get items of %s: %w", f.name, err)
			return
		}
		collection := collectionVar.ToIDispatch()
		defer collection.Release()

		count, err := getInt(collection, "Count")
		if err != nil {
			errs <- err
			return
		}

		for i := 1; i <= count; i++ {
			itemVar, err := oleutil.CallMethod(collection, "Item", i)
			if err != nil {
				errs <- fmt.Errorf("get item %d of %s: %w", i, f.name, err)
				return
			}

			item, err := newItem(itemVar.ToIDispatch())
			if err != nil {
				errs <- err
				return
			}

			select {
			case items <- item:
			case <-ctx.Done():
				errs <- ctx.Err()
				return
			}
		}
	}()

	return items, errs
}

// Folders returns the immediate child folders in store order.
func (f *Folder) Folders(_ context.Context) ([]driven.ArchiveFolder, error) {
	collectionVar, err := oleutil.GetProperty(f.dispatch, "Folders")
	if err != nil {
		return nil, fmt.Errorf("get folders of %s: %w", f.name, err)
	}
	collection := collectionVar.ToIDispatch()
	defer collection.Release()

	count, err := getInt(collection, "Count")
	if err != nil {
		return nil, err
	}

	var children []driven.ArchiveFolder
	for i := 1; i <= count; i++ {
		childVar, err := oleutil.CallMethod(collection, "Item", i)
		if err != nil {
			return nil, fmt.Errorf("get folder %d of %s: %w", i, f.name, err)
		}
		child, err := newFolder(childVar.ToIDispatch())
		if err != nil {
			return nil, err
		}
		children = append(children, child)
	}
	return children, nil
}

// Item wraps a MailItem dispatch. Header fields are read eagerly so
// the accessors stay infallible.
type Item struct {
	dispatch *ole.IDispatch
	subject  string
	received time.Time
}

var _ driven.ArchiveItem = (*Item)(nil)

func newItem(dispatch *ole.IDispatch) (*Item, error) {
	item := &Item{dispatch: dispatch}

	subject, err := getStr(dispatch, "Subject")
	if err != nil {
		dispatch.Release()
		return nil, fmt.Errorf("get item subject: %w", err)
	}
	item.subject = subject

	// Non-mail items (meeting requests, receipts) have no ReceivedTime;
	// leave the timestamp zero for those.
	if receivedVar, err := oleutil.GetProperty(dispatch, "ReceivedTime"); err == nil {
		if received, ok := receivedVar.Value().(time.Time); ok {
			item.received = received
		}
	}
	return item, nil
}

// Received is the item's received timestamp.
func (i *Item) Received() time.Time {
	return i.received
}

// Subject is the item's subject line.
func (i *Item) Subject() string {
	return i.subject
}

// Extension is the format SaveAs writes.
func (i *Item) Extension() string {
	return ".msg"
}

// SaveAs writes the whole item in msg format.
func (i *Item) SaveAs(_ context.Context, path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolve %s: %w", path, err)
	}
	if _, err := oleutil.CallMethod(i.dispatch, "SaveAs", abs, olSaveAsMsg); err != nil {
		return fmt.Errorf("save item %q: %w", i.subject, err)
	}
	return nil
}

// Attachments lists the item's attachments.
func (i *Item) Attachments(_ context.Context) ([]driven.ArchiveAttachment, error) {
	collectionVar, err := oleutil.GetProperty(i.dispatch, "Attachments")
	if err != nil {
		return nil, fmt.Errorf("get attachments of %q: %w", i.subject, err)
	}
	collection := collectionVar.ToIDispatch()
	defer collection.Release()

	count, err := getInt(collection, "Count")
	if err != nil {
		return nil, err
	}

	var attachments []driven.ArchiveAttachment
	for n := 1; n <= count; n++ {
		attVar, err := oleutil.CallMethod(collection, "Item", n)
		if err != nil {
			return nil, fmt.Errorf("get attachment %d of %q: %w", n, i.subject, err)
		}
		dispatch := attVar.ToIDispatch()

		name, err := getStr(dispatch, "FileName")
		if err != nil {
			dispatch.Release()
			return nil, fmt.Errorf("get attachment filename: %w", err)
		}
		attachments = append(attachments, &Attachment{dispatch: dispatch, name: name})
	}
	return attachments, nil
}

// Attachment wraps an Attachment dispatch.
type Attachment struct {
	dispatch *ole.IDispatch
	name     string
}

var _ driven.ArchiveAttachment = (*Attachment)(nil)

// Filename is the attachment's original filename.
func (a *Attachment) Filename() string {
	return a.name
}

// Save writes the payload to path. SaveAsFile requires an absolute
// path.
func (a *Attachment) Save(_ context.Context, path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolve %s: %w", path, err)
	}
	if _, err := oleutil.CallMethod(a.dispatch, "SaveAsFile", abs); err != nil {
		return fmt.Errorf("save attachment %s: %w", a.name, err)
	}
	return nil
}

// getStr reads a string property.
func getStr(dispatch *ole.IDispatch, name string) (string, error) {
	v, err := oleutil.GetProperty(dispatch, name)
	if err != nil {
		return "", fmt.Errorf("get %s: %w", name, err)
	}
	return v.ToString(), nil
}

// getInt reads an integer property.
func getInt(dispatch *ole.IDispatch, name string) (int, error) {
	v, err := oleutil.GetProperty(dispatch, name)
	if err != nil {
		return 0, fmt.Errorf("get %s: %w", name, err)
	}
	return int(v.Val), nil
}
