package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/markz0r/M365PowerKit/internal/core/domain"
	"github.com/markz0r/M365PowerKit/internal/core/ports/driven"
	"github.com/markz0r/M365PowerKit/internal/core/ports/driving"
	"github.com/markz0r/M365PowerKit/internal/logger"
)

// Ensure ExtractorService implements the interface.
var _ driving.ArchiveExtractor = (*ExtractorService)(nil)

// ExtractorService walks mounted archives and writes their attachments
// or whole items to disk. At most one archive is mounted at a time; a
// stale mount of the same backing file is torn down before mounting.
type ExtractorService struct {
	mounter  driven.ArchiveMounter
	settings domain.ExtractionSettings
}

// NewExtractorService creates a new extractor service.
func NewExtractorService(mounter driven.ArchiveMounter, settings domain.ExtractionSettings) *ExtractorService {
	return &ExtractorService{
		mounter:  mounter,
		settings: settings,
	}
}

// ExtractAttachments mounts the archive, saves every accepted
// attachment into the output directory and unmounts.
func (s *ExtractorService) ExtractAttachments(ctx context.Context, req driving.ExtractRequest) (*domain.ExtractionResult, error) {
	return s.extract(ctx, req, false)
}

// ExtractDocuments saves whole items instead of their attachments,
// skipping the designated trash folder.
func (s *ExtractorService) ExtractDocuments(ctx context.Context, req driving.ExtractRequest) (*domain.ExtractionResult, error) {
	return s.extract(ctx, req, true)
}

func (s *ExtractorService) extract(ctx context.Context, req driving.ExtractRequest, wholeItems bool) (*domain.ExtractionResult, error) {
	mode := req.NamingMode
	if mode == "" {
		mode = s.settings.NamingMode
	}
	if !mode.IsValid() {
		return nil, fmt.Errorf("%w: naming mode %q", domain.ErrInvalidInput, mode)
	}

	if err := os.MkdirAll(req.OutputDir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir %s: %w", req.OutputDir, err)
	}

	// 1. Tear down any stale mount of the same backing file
	if err := s.unmountStale(ctx, req.ArchivePath); err != nil {
		return nil, err
	}

	// 2. Mount and wait for the client to settle
	state := domain.ArchiveClosed
	logger.Section("Extract " + filepath.Base(req.ArchivePath))
	root, err := s.mounter.Mount(ctx, req.ArchivePath)
	if err != nil {
		return nil, fmt.Errorf("mount %s: %w", req.ArchivePath, err)
	}
	state = domain.ArchiveMounted
	logger.Debug("Archive %s: %s", req.ArchivePath, state)
	s.settle(ctx)

	// 3. Traverse the whole tree; the walk owns a child context so an
	// abort unblocks in-flight item streams
	result := &domain.ExtractionResult{
		ArchivePath: req.ArchivePath,
		OutputDir:   req.OutputDir,
	}
	state = domain.ArchiveTraversing
	logger.Debug("Archive %s: %s", req.ArchivePath, state)

	walkErr := func() error {
		walkCtx, cancel := context.WithCancel(ctx)
		defer cancel()
		return s.walkFolder(walkCtx, root, req, mode, wholeItems, result)
	}()

	if walkErr != nil {
		state = domain.ArchiveFailed
	} else {
		state = domain.ArchiveExtracted
	}
	logger.Debug("Archive %s: %s", req.ArchivePath, state)

	// 4. Unmount on every exit path
	if err := s.mounter.Unmount(ctx, req.ArchivePath); err != nil {
		if walkErr == nil {
			return nil, fmt.Errorf("unmount %s: %w", req.ArchivePath, err)
		}
		logger.Warn("Unmount after failed traversal of %s: %v", req.ArchivePath, err)
	} else {
		s.settle(ctx)
	}
	logger.Debug("Archive %s: %s", req.ArchivePath, domain.ArchiveClosed)

	if walkErr != nil {
		return nil, walkErr
	}
	logger.Info("Extracted %d file(s) from %s", result.AttachmentsSaved, filepath.Base(req.ArchivePath))
	return result, nil
}

// unmountStale removes a leftover mount whose backing file equals
// archivePath. A stale mount from a previous run must not shadow the
// new one.
func (s *ExtractorService) unmountStale(ctx context.Context, archivePath string) error {
	mounted, err := s.mounter.Mounted(ctx)
	if err != nil {
		return fmt.Errorf("list mounted archives: %w", err)
	}
	for _, path := range mounted {
		if !samePath(path, archivePath) {
			continue
		}
		logger.Warn("Unmounting stale archive %s", path)
		if err := s.mounter.Unmount(ctx, path); err != nil {
			return fmt.Errorf("unmount stale %s: %w", path, err)
		}
		s.settle(ctx)
	}
	return nil
}

// walkFolder is a depth-first pre-order walk: the folder's own items
// first, then each child folder. Any failure aborts the traversal from
// the failing node upward; nothing is skipped over.
func (s *ExtractorService) walkFolder(ctx context.Context, folder driven.ArchiveFolder, req driving.ExtractRequest, mode domain.NamingMode, wholeItems bool, result *domain.ExtractionResult) error {
	if wholeItems && strings.EqualFold(folder.Name(), s.settings.TrashFolder) {
		logger.Debug("Skipping folder %s", folder.Name())
		return nil
	}

	result.FoldersVisited++
	logger.Debug("Traversing folder %s", folder.Name())

	items, errs := folder.Items(ctx)
	for item := range items {
		result.ItemsScanned++

		var err error
		if wholeItems {
			err = s.saveItem(ctx, item, req, result)
		} else {
			err = s.saveAttachments(ctx, item, req, mode, result)
		}
		if err != nil {
			return fmt.Errorf("folder %s: %w", folder.Name(), err)
		}
	}
	if err := <-errs; err != nil {
		return fmt.Errorf("folder %s: %w", folder.Name(), err)
	}

	children, err := folder.Folders(ctx)
	if err != nil {
		return fmt.Errorf("folder %s: %w", folder.Name(), err)
	}
	for _, child := range children {
		if err := s.walkFolder(ctx, child, req, mode, wholeItems, result); err != nil {
			return err
		}
	}
	return nil
}

// saveAttachments writes every accepted attachment of one item.
func (s *ExtractorService) saveAttachments(ctx context.Context, item driven.ArchiveItem, req driving.ExtractRequest, mode domain.NamingMode, result *domain.ExtractionResult) error {
	attachments, err := item.Attachments(ctx)
	if err != nil {
		return fmt.Errorf("read attachments of %q: %w", item.Subject(), err)
	}

	for _, attachment := range attachments {
		if !domain.MatchesExtension(attachment.Filename(), req.ExtensionFilter) {
			result.AttachmentsFiltered++
			continue
		}

		name := domain.AttachmentName(mode, item.Received(), item.Subject(), attachment.Filename())
		target, err := freeTarget(req.OutputDir, name)
		if err != nil {
			return err
		}
		if err := attachment.Save(ctx, target); err != nil {
			return fmt.Errorf("save attachment %s: %w", attachment.Filename(), err)
		}

		result.AttachmentsSaved++
		result.Files = append(result.Files, filepath.Base(target))
		logger.Debug("Saved %s", filepath.Base(target))
	}
	return nil
}

// saveItem writes one whole item in its source format. Items are always
// subject-named; there is no original filename to fall back to.
func (s *ExtractorService) saveItem(ctx context.Context, item driven.ArchiveItem, req driving.ExtractRequest, result *domain.ExtractionResult) error {
	name := domain.AttachmentName(domain.NameBySubject, item.Received(), item.Subject(), item.Extension())
	target, err := freeTarget(req.OutputDir, name)
	if err != nil {
		return err
	}
	if err := item.SaveAs(ctx, target); err != nil {
		return fmt.Errorf("save item %q: %w", item.Subject(), err)
	}

	result.AttachmentsSaved++
	result.Files = append(result.Files, filepath.Base(target))
	logger.Debug("Saved %s", filepath.Base(target))
	return nil
}

// freeTarget returns dir/name, or dir/Copy<N>-name with the smallest N
// that does not collide with a file already on disk.
func freeTarget(dir, name string) (string, error) {
	target := filepath.Join(dir, name)
	for n := 1; ; n++ {
		_, err := os.Stat(target)
		if errors.Is(err, os.ErrNotExist) {
			return target, nil
		}
		if err != nil {
			return "", fmt.Errorf("stat %s: %w", target, err)
		}
		target = filepath.Join(dir, fmt.Sprintf("Copy%d-%s", n, name))
	}
}

// settle pauses after mount and unmount operations while the mail
// client's asynchronous indexing catches up.
func (s *ExtractorService) settle(ctx context.Context) {
	if s.settings.SettleDelay <= 0 {
		return
	}
	select {
	case <-ctx.Done():
	case <-time.After(s.settings.SettleDelay):
	}
}

// samePath compares two file paths ignoring case and lexical noise.
func samePath(a, b string) bool {
	return strings.EqualFold(filepath.Clean(a), filepath.Clean(b))
}
