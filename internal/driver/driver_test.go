package driver

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/jacobsenj/canto-fal/internal/cache"
	"github.com/jacobsenj/canto-fal/internal/identifier"
	"github.com/jacobsenj/canto-fal/internal/logger"
	"github.com/jacobsenj/canto-fal/pkg/canto"
	"github.com/jacobsenj/canto-fal/pkg/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAPI struct {
	canto.API

	calls    map[string]int
	assets   map[string]*canto.Asset
	folders  map[string]*canto.Folder
	tree     []canto.Folder
	treeReq  canto.TreeRequest
	album    *canto.ListResponse
	albumReq canto.ListAlbumContentRequest
	// albumAssets, when set, is served page by page instead of album
	albumAssets []canto.Asset
	content     map[string]string

	created   canto.CreateFolderRequest
	deleted   []canto.Reference
	renamed   canto.RenameContentRequest
	uploaded  canto.UploadFileRequest
	updated   []canto.BatchUpdatePropertiesRequest
	doneAfter int
	failWrite bool
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{
		calls:   map[string]int{},
		assets:  map[string]*canto.Asset{},
		folders: map[string]*canto.Folder{},
		content: map[string]string{},
		album:   &canto.ListResponse{},
	}
}

var errRemote = &canto.ResponseError{Kind: canto.ErrInvalidResponse, StatusCode: 500}

func (f *fakeAPI) AuthorizeWithClientCredentials(ctx context.Context, userID, scope string) (string, error) {
	f.calls["auth"]++
	return "tok", nil
}

func (f *fakeAPI) SetAccessToken(token string) {}

func (f *fakeAPI) GetContentDetails(ctx context.Context, scheme, id string) (*canto.Asset, error) {
	f.calls["content"]++
	if a, ok := f.assets[scheme+"<>"+id]; ok {
		return a, nil
	}
	return nil, errRemote
}

func (f *fakeAPI) GetFolderDetails(ctx context.Context, scheme, id string) (*canto.Folder, error) {
	f.calls["folder"]++
	if folder, ok := f.folders[scheme+"<>"+id]; ok {
		return folder, nil
	}
	return nil, errRemote
}

func (f *fakeAPI) GetTree(ctx context.Context, r canto.TreeRequest) ([]canto.Folder, error) {
	f.calls["tree"]++
	f.treeReq = r
	return f.tree, nil
}

func (f *fakeAPI) ListAlbumContent(ctx context.Context, r canto.ListAlbumContentRequest) (*canto.ListResponse, error) {
	f.calls["album"]++
	f.albumReq = r
	if f.albumAssets == nil {
		return f.album, nil
	}
	start := min(r.Start, len(f.albumAssets))
	end := min(start+r.Limit, len(f.albumAssets))
	return &canto.ListResponse{Found: len(f.albumAssets), Results: f.albumAssets[start:end]}, nil
}

func (f *fakeAPI) CreateFolder(ctx context.Context, r canto.CreateFolderRequest) (*canto.Folder, error) {
	f.created = r
	if f.failWrite {
		return nil, errRemote
	}
	return &canto.Folder{ID: "NEWF", Name: r.Name, Scheme: "folder", IDPath: "NEWF"}, nil
}

func (f *fakeAPI) CreateAlbum(ctx context.Context, r canto.CreateFolderRequest) (*canto.Folder, error) {
	f.created = r
	if f.failWrite {
		return nil, errRemote
	}
	return &canto.Folder{ID: "NEWA", Name: r.Name, Scheme: "album"}, nil
}

func (f *fakeAPI) DeleteFolderOrAlbum(ctx context.Context, refs []canto.Reference) error {
	f.deleted = refs
	if f.failWrite {
		return errRemote
	}
	return nil
}

func (f *fakeAPI) RenameContent(ctx context.Context, r canto.RenameContentRequest) error {
	f.renamed = r
	if f.failWrite {
		return errRemote
	}
	return nil
}

func (f *fakeAPI) BatchDeleteContent(ctx context.Context, refs []canto.Reference) error {
	f.deleted = refs
	if f.failWrite {
		return errRemote
	}
	return nil
}

func (f *fakeAPI) BatchUpdateProperties(ctx context.Context, r canto.BatchUpdatePropertiesRequest) error {
	f.updated = append(f.updated, r)
	if f.failWrite {
		return errRemote
	}
	return nil
}

func (f *fakeAPI) GetAuthorizedURLContent(ctx context.Context, rawURL string) (io.ReadCloser, error) {
	content, ok := f.content[rawURL]
	if !ok {
		return nil, canto.ErrTransport
	}
	return io.NopCloser(strings.NewReader(content)), nil
}

func (f *fakeAPI) GetUploadSetting(ctx context.Context) (*canto.UploadSetting, error) {
	return &canto.UploadSetting{URL: "https://upload", Fields: map[string]string{"key": "k"}}, nil
}

func (f *fakeAPI) UploadFile(ctx context.Context, r canto.UploadFileRequest) error {
	f.uploaded = r
	return nil
}

func (f *fakeAPI) QueryUploadStatus(ctx context.Context) ([]canto.UploadStatusItem, error) {
	f.calls["status"]++
	items := []canto.UploadStatusItem{{ID: "old", Name: "other.jpg", Scheme: "image", Status: canto.StatusDone}}
	if f.doneAfter > 0 && f.calls["status"] >= f.doneAfter {
		items = append(items, canto.UploadStatusItem{ID: "U1", Name: f.uploaded.FileName, Scheme: "image", Status: canto.StatusDone})
	} else if f.uploaded.FileName != "" {
		items = append(items, canto.UploadStatusItem{ID: "U1", Name: f.uploaded.FileName, Scheme: "image", Status: canto.StatusProcessing})
	}
	return items, nil
}

type memoryRegistry map[string]string

func (m memoryRegistry) Get(ctx context.Context, namespace, key string) (string, bool, error) {
	v, ok := m[namespace+"/"+key]
	return v, ok, nil
}

func (m memoryRegistry) Set(ctx context.Context, namespace, key, value string) error {
	m[namespace+"/"+key] = value
	return nil
}

type fixture struct {
	api    *fakeAPI
	driver *Driver
	sleeps []time.Duration
}

func newFixture(t *testing.T, mutate ...func(c *config.DriverConfig)) *fixture {
	t.Helper()

	cfg := &config.DriverConfig{StorageID: 2, CantoName: "acme", CantoDomain: "canto.com", AppID: "a", AppSecret: "s"}
	for _, m := range mutate {
		m(cfg)
	}

	backend, err := cache.NewMemoryBackend(cache.MemoryOptions{Shards: 8})
	require.NoError(t, err)
	t.Cleanup(func() { _ = backend.Close() })

	fx := &fixture{api: newFakeAPI()}
	factory := &Factory{
		Configs:   []*config.DriverConfig{cfg},
		Registry:  memoryRegistry{},
		Folders:   backend,
		NewClient: func(*config.DriverConfig) canto.API { return fx.api },
		TempDir:   t.TempDir(),
		Sleep: func(ctx context.Context, d time.Duration) error {
			fx.sleeps = append(fx.sleeps, d)
			return nil
		},
		Log: logger.Discard(),
	}

	fx.driver, err = factory.Open(context.Background(), cfg.StorageID)
	require.NoError(t, err)
	fx.driver.now = func() time.Time { return time.Unix(1700000000, 0) }
	t.Cleanup(func() { _ = fx.driver.Close() })

	return fx
}

// F1 > F2 > A1 and a top level album A0
func (fx *fixture) withLibrary() {
	fx.api.tree = []canto.Folder{
		{ID: "F1", Name: "One", Scheme: "folder", IDPath: "F1", Children: []canto.Folder{
			{ID: "F2", Name: "Two", Scheme: "folder", IDPath: "F1/F2", Children: []canto.Folder{
				{ID: "A1", Name: "Album", Scheme: "album", IDPath: "F1/F2/A1"},
			}},
		}},
		{ID: "A0", Name: "Top", Scheme: "album", IDPath: "A0"},
	}
	for _, f := range []canto.Folder{
		{ID: "F1", Name: "One", Scheme: "folder", IDPath: "F1", Time: "20240101000000000", Created: "20230101000000000"},
		{ID: "F2", Name: "Two", Scheme: "folder", IDPath: "F1/F2"},
		{ID: "A1", Name: "Album", Scheme: "album", IDPath: "F1/F2/A1"},
		{ID: "A0", Name: "Top", Scheme: "album", IDPath: "A0"},
		{ID: "X", Name: "Lost", Scheme: "folder", IDPath: "F9/X"},
	} {
		f := f
		fx.api.folders[f.Scheme+"<>"+f.ID] = &f
	}
	fx.api.assets["image<>1"] = &canto.Asset{
		ID: "1", Scheme: "image", Name: "photo.png", Width: "800", Height: "600",
		URL:           canto.AssetURLs{DirectURLOriginal: "https://acme.canto.com/direct/photo%20one.png"},
		Default:       canto.AssetDefaults{Size: "2048", DateModified: "20240131235959123", DateUploaded: "20240101000000000", ContentType: "image/png"},
		RelatedAlbums: []canto.Reference{{ID: "A1", Scheme: "album"}},
	}
	fx.api.assets["document<>d1"] = &canto.Asset{ID: "d1", Scheme: "document", Name: "report.pdf"}
}

func TestOpenRejectsBadStorages(t *testing.T) {
	factory := &Factory{
		Configs:  []*config.DriverConfig{{StorageID: 1, CantoName: "acme"}},
		Registry: memoryRegistry{},
		Log:      logger.Discard(),
	}

	_, err := factory.Open(context.Background(), 1)
	assert.ErrorIs(t, err, config.ErrInvalidConfiguration)

	_, err = factory.Open(context.Background(), 9)
	assert.ErrorIs(t, err, ErrUnknownStorage)
}

func TestConfigLeavesSharedConfigUntouched(t *testing.T) {
	shared := &config.DriverConfig{StorageID: 4, CantoName: "acme", CantoDomain: "canto.com", AppID: "a", AppSecret: "s"}
	factory := &Factory{Configs: []*config.DriverConfig{shared}, Log: logger.Discard()}

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			cfg, err := factory.Config(4)
			assert.NoError(t, err)
			assert.Equal(t, config.DefaultScope, cfg.Scope)
		}()
	}
	wg.Wait()

	assert.Empty(t, shared.Scope)
	assert.Empty(t, shared.RootFolder)
}

func TestContainment(t *testing.T) {
	fx := newFixture(t)
	fx.withLibrary()
	ctx := context.Background()

	assert.Empty(t, fx.driver.FilesInFolder(ctx, "folder<>F1", ListOptions{}))
	assert.Empty(t, fx.driver.FilesInFolder(ctx, fx.driver.RootLevelFolder(), ListOptions{}))
	assert.Empty(t, fx.driver.FoldersInFolder(ctx, "album<>A1", ListOptions{}))
	assert.Zero(t, fx.driver.CountFilesInFolder(ctx, "folder<>F1"))
	assert.Zero(t, fx.api.calls["album"])

	assert.False(t, fx.driver.FileExists(ctx, "folder<>F1"))
	assert.True(t, fx.driver.FileExists(ctx, "image<>1"))
	assert.True(t, fx.driver.FolderExists(ctx, "folder<>F1"))
	assert.True(t, fx.driver.FolderExists(ctx, "folder<>ROOT"))
	assert.False(t, fx.driver.FolderExists(ctx, "folder<>nope"))
}

func TestFoldersInFolder(t *testing.T) {
	fx := newFixture(t)
	fx.withLibrary()
	ctx := context.Background()
	root := fx.driver.RootLevelFolder()

	assert.Equal(t, []string{"folder<>F1", "album<>A0"}, fx.driver.FoldersInFolder(ctx, root, ListOptions{}))
	assert.Equal(t, canto.SortByName, fx.api.treeReq.SortBy)
	assert.Equal(t, canto.SortAscending, fx.api.treeReq.SortDirection)

	assert.Equal(t, []string{"folder<>F2"}, fx.driver.FoldersInFolder(ctx, "folder<>F1", ListOptions{}))
	assert.Equal(t, []string{"album<>A1"}, fx.driver.FoldersInFolder(ctx, "folder<>F2", ListOptions{}))
	assert.Equal(t, []string{"folder<>F2", "album<>A1"}, fx.driver.FoldersInFolder(ctx, "folder<>F1", ListOptions{Recursive: true}))

	all := fx.driver.FoldersInFolder(ctx, root, ListOptions{Recursive: true})
	assert.Equal(t, []string{"folder<>F1", "folder<>F2", "album<>A1", "album<>A0"}, all)
	assert.Equal(t, []string{"folder<>F2", "album<>A1"}, fx.driver.FoldersInFolder(ctx, root, ListOptions{Recursive: true, Start: 1, NumberOfItems: 2}))
	assert.Empty(t, fx.driver.FoldersInFolder(ctx, root, ListOptions{Start: 5}))

	// folders outside the tree have no children
	assert.Empty(t, fx.driver.FoldersInFolder(ctx, "folder<>X", ListOptions{}))

	assert.Equal(t, 4, fx.driver.CountFoldersInFolder(ctx, root, true))
	assert.Equal(t, 2, fx.driver.CountFoldersInFolder(ctx, root, false))

	fx.driver.FoldersInFolder(ctx, root, ListOptions{SortRev: true})
	assert.Equal(t, canto.SortDescending, fx.api.treeReq.SortDirection)
}

func TestFoldersBelowConfiguredRoot(t *testing.T) {
	fx := newFixture(t, func(c *config.DriverConfig) { c.RootFolder = "F1" })
	fx.withLibrary()
	fx.api.tree = fx.api.tree[0].Children
	ctx := context.Background()

	assert.Equal(t, "folder<>F1", fx.driver.RootLevelFolder())
	assert.Equal(t, []string{"folder<>F2"}, fx.driver.FoldersInFolder(ctx, "folder<>F1", ListOptions{}))
	assert.Equal(t, "F1", fx.api.treeReq.FolderID)
	assert.Equal(t, []string{"album<>A1"}, fx.driver.FoldersInFolder(ctx, "folder<>F2", ListOptions{}))
}

func TestParentFolderIdentifier(t *testing.T) {
	fx := newFixture(t)
	fx.withLibrary()
	ctx := context.Background()
	root := fx.driver.RootLevelFolder()

	assert.Equal(t, identifier.Root, fx.driver.ParentFolderIdentifier(ctx, ""))
	assert.Equal(t, root, fx.driver.ParentFolderIdentifier(ctx, root))
	assert.Equal(t, root, fx.driver.ParentFolderIdentifier(ctx, "folder<>F1"))
	assert.Equal(t, "folder<>F1", fx.driver.ParentFolderIdentifier(ctx, "folder<>F2"))
	assert.Equal(t, "folder<>F2", fx.driver.ParentFolderIdentifier(ctx, "album<>A1"))
	assert.Equal(t, root, fx.driver.ParentFolderIdentifier(ctx, "image<>1"))
}

func TestFolderInfo(t *testing.T) {
	fx := newFixture(t)
	fx.withLibrary()
	ctx := context.Background()

	root, err := fx.driver.FolderInfo(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, FolderInfo{Identifier: "folder<>ROOT", StorageID: 2, Name: "Canto", Mtime: 1700000000, Ctime: 1700000000, IDPath: "ROOT"}, root)

	folder, err := fx.driver.FolderInfo(ctx, "folder<>F1")
	require.NoError(t, err)
	assert.Equal(t, "F: One", folder.Name)
	assert.Equal(t, int64(1704067200), folder.Mtime)
	assert.Equal(t, int64(1672531200), folder.Ctime)

	album, err := fx.driver.FolderInfo(ctx, "album<>A1")
	require.NoError(t, err)
	assert.Equal(t, "A: Album", album.Name)
	assert.Equal(t, "F1/F2/A1", album.IDPath)

	_, err = fx.driver.FolderInfo(ctx, "folder<>nope")
	assert.Error(t, err)

	assert.Equal(t, "album<>A1", fx.driver.FolderInFolder(ctx, "Album", "folder<>F2"))
	assert.Equal(t, "album<>A1", fx.driver.FolderInFolder(ctx, "A: Album", "folder<>F2"))
	assert.Empty(t, fx.driver.FolderInFolder(ctx, "Nope", "folder<>F2"))
}

func TestFileInfo(t *testing.T) {
	fx := newFixture(t)
	fx.withLibrary()
	ctx := context.Background()

	info := fx.driver.FileInfo(ctx, "image<>1")
	assert.Equal(t, "photo.png", info.Name)
	assert.Equal(t, "png", info.Extension)
	assert.Equal(t, "image/png", info.MimeType)
	assert.Equal(t, int64(2048), info.Size)
	assert.Equal(t, int64(1706745599), info.Mtime)
	assert.Equal(t, int64(1704067200), info.Ctime)
	assert.Equal(t, []string{"album<>A1"}, info.FolderIdentifiers)
	assert.Equal(t, fx.driver.HashIdentifier("image<>1"), info.IdentifierHash)

	fallback := fx.driver.FileInfo(ctx, "image<>missing")
	assert.Equal(t, "fallbackimage.jpg", fallback.Name)
	assert.Equal(t, "jpg", fallback.Extension)
	assert.Equal(t, int64(1000), fallback.Size)
	assert.Zero(t, fallback.Mtime)
	assert.Empty(t, fallback.MimeType)
	assert.Equal(t, "image<>missing", fallback.Identifier)
}

func TestFilesInFolder(t *testing.T) {
	fx := newFixture(t)
	fx.withLibrary()
	fx.api.album = &canto.ListResponse{Found: 2, Results: []canto.Asset{
		{ID: "7", Scheme: "image", Name: "seven.jpg"},
		{ID: "8", Scheme: "document", Name: "eight.pdf"},
	}}
	ctx := context.Background()

	ids := fx.driver.FilesInFolder(ctx, "album<>A1", ListOptions{Sort: "fileext", SortRev: true, NumberOfItems: 5000})
	assert.Equal(t, []string{"image<>7", "document<>8"}, ids)
	assert.Equal(t, canto.ListAlbumContentRequest{AlbumID: "A1", Limit: 1000, SortBy: canto.SortByScheme, SortDirection: canto.SortDescending}, fx.api.albumReq)

	// listed assets are cached
	assert.True(t, fx.driver.FileExists(ctx, "image<>7"))
	assert.Zero(t, fx.api.calls["content"])

	fx.driver.FilesInFolder(ctx, "album<>A1", ListOptions{Sort: "other", Start: 3, NumberOfItems: 10})
	assert.Equal(t, canto.SortByTime, fx.api.albumReq.SortBy)
	assert.Equal(t, 10, fx.api.albumReq.Limit)
	assert.Equal(t, 3, fx.api.albumReq.Start)

	assert.Equal(t, "document<>8", fx.driver.FileInFolder(ctx, "eight.pdf", "album<>A1"))
	assert.Empty(t, fx.driver.FileInFolder(ctx, "nine.pdf", "album<>A1"))
	assert.Equal(t, 2, fx.driver.CountFilesInFolder(ctx, "album<>A1"))
	assert.False(t, fx.driver.IsFolderEmpty(ctx, "album<>A1"))
	assert.False(t, fx.driver.IsFolderEmpty(ctx, "folder<>F1"))
}

func TestFilesInFolderPagesLargeAlbums(t *testing.T) {
	fx := newFixture(t)
	fx.withLibrary()
	for i := range 1500 {
		fx.api.albumAssets = append(fx.api.albumAssets, canto.Asset{
			ID: strconv.Itoa(i), Scheme: "image", Name: fmt.Sprintf("f%d.jpg", i),
		})
	}
	ctx := context.Background()

	ids := fx.driver.FilesInFolder(ctx, "album<>A1", ListOptions{})
	assert.Len(t, ids, 1500)
	assert.Equal(t, 1500, fx.driver.CountFilesInFolder(ctx, "album<>A1"))
	assert.Equal(t, "image<>1200", fx.driver.FileInFolder(ctx, "f1200.jpg", "album<>A1"))

	fx.api.calls["album"] = 0
	ids = fx.driver.FilesInFolder(ctx, "album<>A1", ListOptions{Start: 100, NumberOfItems: 1200})
	require.Len(t, ids, 1200)
	assert.Equal(t, "image<>100", ids[0])
	assert.Equal(t, "image<>1299", ids[1199])
	assert.Equal(t, 2, fx.api.calls["album"])
	assert.Equal(t, 200, fx.api.albumReq.Limit)
	assert.Equal(t, 1100, fx.api.albumReq.Start)
}

func TestIsWithin(t *testing.T) {
	fx := newFixture(t)
	fx.withLibrary()
	ctx := context.Background()

	assert.True(t, fx.driver.IsWithin(ctx, "folder<>F1", "image<>1"))
	assert.True(t, fx.driver.IsWithin(ctx, "album<>A1", "image<>1"))
	assert.True(t, fx.driver.IsWithin(ctx, "folder<>F1", "album<>A1"))
	assert.True(t, fx.driver.IsWithin(ctx, "folder<>F2", "folder<>F2"))
	assert.True(t, fx.driver.IsWithin(ctx, fx.driver.RootLevelFolder(), "image<>1"))

	assert.False(t, fx.driver.IsWithin(ctx, "album<>A0", "image<>1"))
	assert.False(t, fx.driver.IsWithin(ctx, "folder<>F2", "folder<>F1"))
	assert.False(t, fx.driver.IsWithin(ctx, "bogus", "image<>1"))
	assert.False(t, fx.driver.IsWithin(ctx, "folder<>F1", "bogus"))
}

func TestCreateFolder(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	id, err := fx.driver.CreateFolder(ctx, "A:Summer", "folder<>F1")
	require.NoError(t, err)
	assert.Equal(t, "album<>NEWA", id)
	assert.Equal(t, canto.CreateFolderRequest{Name: "Summer", ParentFolder: "F1"}, fx.api.created)

	id, err = fx.driver.CreateFolder(ctx, "F:Winter", "folder<>ROOT")
	require.NoError(t, err)
	assert.Equal(t, "folder<>NEWF", id)
	assert.Equal(t, "Winter", fx.api.created.Name)
	assert.Empty(t, fx.api.created.ParentFolder)

	// the created folder was seeded
	assert.True(t, fx.driver.FolderExists(ctx, "folder<>NEWF"))
	assert.Zero(t, fx.api.calls["folder"])

	fx.api.failWrite = true
	_, err = fx.driver.CreateFolder(ctx, "Broken", "folder<>F1")
	assert.ErrorIs(t, err, ErrFolderCreation)
}

func TestMutationsFlushTheCache(t *testing.T) {
	fx := newFixture(t)
	fx.withLibrary()
	ctx := context.Background()

	fetches := func() int {
		fx.driver.FileExists(ctx, "image<>1")
		return fx.api.calls["content"]
	}
	require.Equal(t, 1, fetches())
	require.Equal(t, 1, fetches())

	fx.api.failWrite = true

	assert.True(t, fx.driver.DeleteFile(ctx, "image<>1"))
	assert.Equal(t, []canto.Reference{{ID: "1", Scheme: "image"}}, fx.api.deleted)
	assert.Equal(t, 2, fetches())

	_, err := fx.driver.RenameFile(ctx, "image<>1", "new.png")
	assert.Error(t, err)
	assert.Equal(t, 3, fetches())

	assert.False(t, fx.driver.DeleteFolder(ctx, "album<>A1"))
	assert.Equal(t, 4, fetches())

	fx.api.failWrite = false
	id, err := fx.driver.RenameFile(ctx, "image<>1", "new.png")
	require.NoError(t, err)
	assert.Equal(t, "image<>1", id)
	assert.Equal(t, canto.RenameContentRequest{Scheme: "image", ID: "1", Name: "new.png"}, fx.api.renamed)
	assert.True(t, fx.driver.DeleteFolder(ctx, "album<>A1"))
}

func TestAddFileWaitsForProcessing(t *testing.T) {
	fx := newFixture(t)
	fx.api.doneAfter = 3
	local := filepath.Join(t.TempDir(), "upload.jpg")
	require.NoError(t, os.WriteFile(local, []byte("jpg"), 0o600))

	id, err := fx.driver.AddFile(context.Background(), local, "album<>A1", "beach.jpg", true)
	require.NoError(t, err)
	assert.Equal(t, "image<>U1", id)
	assert.Equal(t, "A1", fx.api.uploaded.AlbumID)
	assert.Equal(t, "image", fx.api.uploaded.Scheme)
	assert.Equal(t, "beach.jpg", fx.api.uploaded.FileName)
	assert.Equal(t, "https://upload", fx.api.uploaded.Setting.URL)
	assert.Equal(t, 3, fx.api.calls["status"])
	assert.Equal(t, []time.Duration{2 * time.Second, 2 * time.Second}, fx.sleeps)
	assert.NoFileExists(t, local)
}

func TestAddFileTimesOut(t *testing.T) {
	fx := newFixture(t)
	local := filepath.Join(t.TempDir(), "upload.jpg")
	require.NoError(t, os.WriteFile(local, []byte("jpg"), 0o600))

	id, err := fx.driver.AddFile(context.Background(), local, "album<>A1", "beach.jpg", true)
	assert.ErrorIs(t, err, ErrUploadTimeout)
	assert.Empty(t, id)
	assert.Equal(t, 15, fx.api.calls["status"])
	assert.Len(t, fx.sleeps, 14)
	assert.FileExists(t, local)
}

func TestAddFileHonorsCancellation(t *testing.T) {
	fx := newFixture(t)
	fx.driver.sleep = func(ctx context.Context, d time.Duration) error { return context.Canceled }
	local := filepath.Join(t.TempDir(), "upload.jpg")
	require.NoError(t, os.WriteFile(local, []byte("jpg"), 0o600))

	_, err := fx.driver.AddFile(context.Background(), local, "album<>A1", "beach.jpg", false)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, fx.api.calls["status"])
}

func TestAddFileNeedsAnAlbum(t *testing.T) {
	fx := newFixture(t)
	_, err := fx.driver.AddFile(context.Background(), "/tmp/x.jpg", "folder<>F1", "x.jpg", false)
	assert.ErrorIs(t, err, ErrUploadTarget)
}

func TestCreateFileUploadsEmptyFile(t *testing.T) {
	fx := newFixture(t)
	fx.api.doneAfter = 1

	id, err := fx.driver.CreateFile(context.Background(), "empty.txt", "album<>A1")
	require.NoError(t, err)
	assert.Equal(t, "image<>U1", id)
	assert.Equal(t, "empty.txt", fx.api.uploaded.FileName)
	assert.Equal(t, ".txt", filepath.Ext(fx.api.uploaded.LocalPath))
	assert.NoFileExists(t, fx.api.uploaded.LocalPath)

	first := fx.api.uploaded.LocalPath
	_, err = fx.driver.CreateFile(context.Background(), "empty.txt", "album<>A1")
	require.NoError(t, err)
	assert.NotEqual(t, first, fx.api.uploaded.LocalPath)
}

func TestUnsupportedOperations(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	_, err := fx.driver.RenameFolder(ctx, "folder<>F1", "x")
	assert.ErrorIs(t, err, ErrUnsupportedOperation)
	_, err = fx.driver.MoveFolder(ctx, "folder<>F1", "folder<>F2", "x")
	assert.ErrorIs(t, err, ErrUnsupportedOperation)
	_, err = fx.driver.CopyFolder(ctx, "folder<>F1", "folder<>F2", "x")
	assert.ErrorIs(t, err, ErrUnsupportedOperation)
	_, err = fx.driver.CopyFile(ctx, "image<>1", "album<>A1", "x")
	assert.ErrorIs(t, err, ErrUnsupportedOperation)
	_, err = fx.driver.MoveFile(ctx, "image<>1", "album<>A1", "x")
	assert.ErrorIs(t, err, ErrUnsupportedOperation)
	_, err = fx.driver.ReplaceFile(ctx, "image<>1", "/tmp/x")
	assert.ErrorIs(t, err, ErrUnsupportedOperation)
	_, err = fx.driver.SetFileContents(ctx, "image<>1", []byte("x"))
	assert.ErrorIs(t, err, ErrUnsupportedOperation)
}

func TestPublicURL(t *testing.T) {
	fx := newFixture(t)
	fx.withLibrary()
	ctx := context.Background()

	assert.Equal(t, "https://acme.canto.com/direct/photo one.png", fx.driver.PublicURL(ctx, "image<>1"))
	assert.Empty(t, fx.driver.PublicURL(ctx, "image<>missing"))
	assert.Empty(t, fx.driver.PublicURL(ctx, "document<>d1"))

	mdc := newFixture(t, func(c *config.DriverConfig) {
		c.MdcActive = true
		c.MdcDomainName = "mdc.example.com"
		c.MdcAwsAccountID = "42"
	})
	mdc.withLibrary()

	assert.Equal(t, "https://mdc.example.com/image/42/image_1/-S800x600", mdc.driver.PublicURL(ctx, "image<>1"))
	assert.Equal(t, "https://mdc.example.com/asset/42/document_d1/report.pdf?content-disposition=inline", mdc.driver.PublicURL(ctx, "document<>d1"))
}

func TestStreamFile(t *testing.T) {
	fx := newFixture(t)
	fx.withLibrary()
	fx.api.content["https://acme.canto.com/direct/photo one.png"] = "png bytes"
	ctx := context.Background()

	header, body, err := fx.driver.StreamFile(ctx, "image<>1", StreamOptions{})
	require.NoError(t, err)
	defer body.Close()

	assert.Equal(t, `inline; filename="photo.png"`, header.Get("Content-Disposition"))
	assert.Equal(t, "image/png", header.Get("Content-Type"))
	assert.Equal(t, "2048", header.Get("Content-Length"))
	assert.Equal(t, "Wed, 31 Jan 2024 23:59:59 GMT", header.Get("Last-Modified"))
	data, err := io.ReadAll(body)
	require.NoError(t, err)
	assert.Equal(t, "png bytes", string(data))

	header, body, err = fx.driver.StreamFile(ctx, "image<>1", StreamOptions{AsDownload: true, FileName: "x.png", MimeType: "application/octet-stream"})
	require.NoError(t, err)
	body.Close()
	assert.Equal(t, `attachment; filename="x.png"`, header.Get("Content-Disposition"))
	assert.Equal(t, "application/octet-stream", header.Get("Content-Type"))

	contents, err := fx.driver.FileContents(ctx, "image<>1")
	require.NoError(t, err)
	assert.Equal(t, "png bytes", string(contents))

	_, err = fx.driver.FileContents(ctx, "image<>missing")
	assert.ErrorIs(t, err, ErrFileUnavailable)
}

func TestCloseRemovesLocalCopies(t *testing.T) {
	fallback := filepath.Join(t.TempDir(), "fallback.jpg")
	require.NoError(t, os.WriteFile(fallback, []byte("jpg"), 0o600))

	fx := newFixture(t, func(c *config.DriverConfig) { c.FallbackFilePath = fallback })
	fx.withLibrary()
	fx.api.assets["image<>1"].URL.DirectURLPreview = "https://acme.canto.com/preview/1"
	fx.api.content["https://acme.canto.com/preview/1"] = "preview"
	ctx := context.Background()

	preview, err := fx.driver.FileForLocalProcessing(ctx, "image<>1")
	require.NoError(t, err)
	assert.FileExists(t, preview)

	missing, err := fx.driver.FileForLocalProcessing(ctx, "image<>missing")
	require.NoError(t, err)
	assert.Equal(t, fallback, missing)

	require.NoError(t, fx.driver.Close())
	assert.NoFileExists(t, preview)
	assert.NoFileExists(t, fallback)
}

func TestHash(t *testing.T) {
	fx := newFixture(t)

	cases := map[string]string{
		"sha1":   "3ad77c1b351d87e988b9dcb67fe04a3cf3d20a7e",
		"md5":    "ad97c4c3e5016176a4f7669790be5eee",
		"sha256": "ce43e65117643497b52310bb3f0cc962f640a12fa8ad3864581fac0f25c4e8c6",
	}
	for algorithm, want := range cases {
		got, err := fx.driver.Hash("image<>123", algorithm)
		require.NoError(t, err)
		assert.Equal(t, want, got, algorithm)
	}
	assert.Equal(t, cases["sha1"], fx.driver.HashIdentifier("image<>123"))

	_, err := fx.driver.Hash("image<>123", "crc32")
	assert.True(t, errors.Is(err, ErrUnknownHash))

	assert.Equal(t, Permissions{Read: true, Write: true}, fx.driver.Permissions("image<>123"))
}

func TestImageSourceDomains(t *testing.T) {
	assert.Nil(t, ImageSourceDomains(nil))

	configs := []*config.DriverConfig{
		{CantoName: "acme", CantoDomain: "canto.com"},
		{CantoName: "acme", CantoDomain: "canto.com"},
		{CantoName: "beta", CantoDomain: "canto.de"},
	}
	assert.Equal(t, []string{"acme.canto.com", "beta.canto.de", "*.cloudfront.net"}, ImageSourceDomains(configs))
}

func TestExportMetadata(t *testing.T) {
	fx := newFixture(t, func(c *config.DriverConfig) {
		c.MetadataExportMapping = `{"title": "Title", "1:title": "Titel"}`
	})
	ctx := context.Background()

	ok, err := fx.driver.ExportMetadata(ctx, "image<>1", 1, map[string]any{"title": "Strand"})
	require.NoError(t, err)
	assert.True(t, ok)
	require.Len(t, fx.api.updated, 1)
	assert.Equal(t, []canto.Reference{{ID: "1", Scheme: "image"}}, fx.api.updated[0].Contents)
	assert.Equal(t, []canto.Property{{PropertyID: "Titel", PropertyValue: "Strand"}}, fx.api.updated[0].Properties)

	ok, err = fx.driver.ExportMetadata(ctx, "folder<>F1", 0, map[string]any{"title": "x"})
	require.NoError(t, err)
	assert.False(t, ok)

	fx.api.failWrite = true
	ok, err = fx.driver.ExportMetadata(ctx, "image<>1", 0, map[string]any{"title": "x"})
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestExportMetadataWithoutMapping(t *testing.T) {
	fx := newFixture(t)

	ok, err := fx.driver.ExportMetadata(context.Background(), "image<>1", 0, map[string]any{"title": "x"})
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, fx.api.updated)
}
