package archive

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	archivememory "github.com/markz0r/M365PowerKit/internal/adapters/driven/archive/memory"
	"github.com/markz0r/M365PowerKit/internal/core/domain"
)

// TestSelector_RoutesByExtension tests that mount and unmount reach the
// mounter registered for the file's extension, case-insensitively.
func TestSelector_RoutesByExtension(t *testing.T) {
	pst := archivememory.NewMounter()
	pst.Register("/data/export.pst", &archivememory.Folder{FolderName: "pst-root"})
	mbox := archivememory.NewMounter()
	mbox.Register("/data/export.mbox", &archivememory.Folder{FolderName: "mbox-root"})

	selector := NewSelector()
	selector.Register(".pst", pst)
	selector.Register(".MBOX", mbox)

	ctx := context.Background()

	root, err := selector.Mount(ctx, "/data/export.pst")
	require.NoError(t, err)
	assert.Equal(t, "pst-root", root.Name())

	root, err = selector.Mount(ctx, "/data/export.mbox")
	require.NoError(t, err)
	assert.Equal(t, "mbox-root", root.Name())

	require.NoError(t, selector.Unmount(ctx, "/data/export.pst"))
	assert.False(t, pst.IsMounted("/data/export.pst"))
	assert.True(t, mbox.IsMounted("/data/export.mbox"))
}

// TestSelector_UnknownExtension tests the error for a format no mounter
// handles.
func TestSelector_UnknownExtension(t *testing.T) {
	selector := NewSelector()
	selector.Register(".pst", archivememory.NewMounter())

	_, err := selector.Mount(context.Background(), "/data/export.zip")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	err = selector.Unmount(context.Background(), "/data/export.zip")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

// TestSelector_MountedUnion tests that Mounted merges every registered
// mounter's list, counting a mounter once even when it serves several
// extensions.
func TestSelector_MountedUnion(t *testing.T) {
	shared := archivememory.NewMounter()
	shared.Register("/data/a.pst", &archivememory.Folder{FolderName: "a"})
	shared.PreMount("/data/a.pst")

	other := archivememory.NewMounter()
	other.Register("/data/b.mbox", &archivememory.Folder{FolderName: "b"})
	other.PreMount("/data/b.mbox")

	selector := NewSelector()
	selector.Register(".pst", shared)
	selector.Register(".ost", shared)
	selector.Register(".mbox", other)

	mounted, err := selector.Mounted(context.Background())
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"/data/a.pst", "/data/b.mbox"}, mounted)
}
