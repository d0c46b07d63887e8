package driver

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jacobsenj/canto-fal/internal/identifier"
	"github.com/jacobsenj/canto-fal/internal/metrics"
	"github.com/jacobsenj/canto-fal/internal/utils"
	"github.com/jacobsenj/canto-fal/pkg/canto"

	"github.com/sirupsen/logrus"
)

// CreateFolder creates a folder below parentFolderIdentifier. Names starting
// with "A:" create an album, the "A:" and "F:" markers are removed from the name.
func (d *Driver) CreateFolder(ctx context.Context, newFolderName, parentFolderIdentifier string) (string, error) {
	createAlbum := strings.HasPrefix(newFolderName, "A:")
	name := strings.NewReplacer("A:", "", "F:", "").Replace(newFolderName)

	req := canto.CreateFolderRequest{Name: name, ParentFolder: identifier.IDOf(parentFolderIdentifier)}
	if req.ParentFolder == identifier.Root {
		req.ParentFolder = ""
	}

	var (
		folder *canto.Folder
		err    error
		scheme = identifier.SchemeFolder
	)
	if createAlbum {
		scheme = identifier.SchemeAlbum
		folder, err = d.repo.Client().CreateAlbum(ctx, req)
	} else {
		folder, err = d.repo.Client().CreateFolder(ctx, req)
	}
	metrics.RecordRPC("create_"+string(scheme), err)
	d.invalidate(ctx)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrFolderCreation, err)
	}

	id := identifier.Encode(scheme, folder.ID)
	if !createAlbum {
		d.repo.SeedFolder(ctx, id, folder)
	}
	return id, nil
}

// DeleteFolder removes a folder or album, failures are logged and reported as false
func (d *Driver) DeleteFolder(ctx context.Context, folderIdentifier string) bool {
	defer d.invalidate(ctx)

	id, err := identifier.Decode(folderIdentifier)
	if err != nil {
		return false
	}

	err = d.repo.Client().DeleteFolderOrAlbum(ctx, []canto.Reference{{ID: id.ID, Scheme: string(id.Scheme)}})
	metrics.RecordRPC("delete_folder", err)
	if err != nil {
		d.log.WithFields(d.fields(logrus.Fields{"identifier": folderIdentifier})).WithError(err).Error("Deleting folder failed")
		return false
	}
	return true
}

// AddFile uploads a local file into an album and waits until the upload is processed.
// When processing takes too long ErrUploadTimeout is returned with an empty identifier,
// the file usually shows up later.
func (d *Driver) AddFile(ctx context.Context, localFilePath, targetFolderIdentifier, newFileName string, removeOriginal bool) (string, error) {
	target, err := identifier.Decode(targetFolderIdentifier)
	if err != nil {
		return "", err
	}
	if target.Scheme == identifier.SchemeFolder {
		return "", ErrUploadTarget
	}
	if newFileName == "" {
		newFileName = filepath.Base(localFilePath)
	}

	defer d.invalidate(ctx)

	client := d.repo.Client()
	setting, err := client.GetUploadSetting(ctx)
	metrics.RecordRPC("upload_setting", err)
	if err != nil {
		return "", err
	}

	err = client.UploadFile(ctx, canto.UploadFileRequest{
		LocalPath: localFilePath,
		FileName:  newFileName,
		AlbumID:   target.ID,
		Scheme:    string(identifier.SchemeImage),
		Setting:   *setting,
	})
	metrics.RecordRPC("upload", err)
	if err != nil {
		d.log.WithFields(d.fields(logrus.Fields{"file": newFileName})).WithError(err).Error("Upload failed")
		return "", err
	}

	id, err := d.awaitUpload(ctx, newFileName)
	if err != nil {
		return "", err
	}

	if removeOriginal {
		if err := os.Remove(localFilePath); err != nil {
			d.log.WithFields(d.fields(logrus.Fields{"path": localFilePath})).WithError(err).Warn("Could not remove uploaded file")
		}
	}
	return id, nil
}

// awaitUpload polls the upload status until fileName is processed
func (d *Driver) awaitUpload(ctx context.Context, fileName string) (string, error) {
	for attempt := 1; attempt <= uploadAttempts; attempt++ {
		items, err := d.repo.Client().QueryUploadStatus(ctx)
		metrics.RecordRPC("upload_status", err)
		if err != nil {
			d.log.WithFields(d.fields(logrus.Fields{"file": fileName})).WithError(err).Warn("Upload status unavailable")
		}
		for _, item := range items {
			if item.Name == fileName && item.Status == canto.StatusDone {
				return identifier.Encode(identifier.Scheme(item.Scheme), item.ID), nil
			}
		}

		if attempt == uploadAttempts {
			break
		}
		if err := d.sleep(ctx, uploadPollWait); err != nil {
			return "", err
		}
	}

	metrics.RecordUploadTimeout()
	d.log.WithFields(d.fields(logrus.Fields{"file": fileName, "attempts": uploadAttempts})).Warn("Upload not processed in time")
	return "", ErrUploadTimeout
}

// CreateFile uploads an empty file named fileName
func (d *Driver) CreateFile(ctx context.Context, fileName, parentFolderIdentifier string) (string, error) {
	dir := d.tempDir
	if dir == "" {
		dir = os.TempDir()
	}
	path := utils.TempFileName(dir, "canto_create_", filepath.Ext(fileName))

	file, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return "", err
	}
	file.Close()
	d.transient.Add(path)

	id, err := d.AddFile(ctx, path, parentFolderIdentifier, fileName, true)
	d.invalidate(ctx)
	return id, err
}

// RenameFile renames an asset, the identifier stays the same
func (d *Driver) RenameFile(ctx context.Context, fileIdentifier, newName string) (string, error) {
	defer d.invalidate(ctx)

	id, err := identifier.Decode(fileIdentifier)
	if err != nil {
		return "", err
	}

	err = d.repo.Client().RenameContent(ctx, canto.RenameContentRequest{Scheme: string(id.Scheme), ID: id.ID, Name: newName})
	metrics.RecordRPC("rename", err)
	if err != nil {
		return "", err
	}
	return fileIdentifier, nil
}

// DeleteFile removes an asset. Remote failures are logged only.
func (d *Driver) DeleteFile(ctx context.Context, fileIdentifier string) bool {
	defer d.invalidate(ctx)

	id, err := identifier.Decode(fileIdentifier)
	if err != nil {
		return false
	}

	err = d.repo.Client().BatchDeleteContent(ctx, []canto.Reference{{ID: id.ID, Scheme: string(id.Scheme)}})
	metrics.RecordRPC("delete_file", err)
	if err != nil {
		d.log.WithFields(d.fields(logrus.Fields{"identifier": fileIdentifier})).WithError(err).Error("Deleting file failed")
	}
	return true
}

func unsupported(operation string) error {
	return fmt.Errorf("%w: %s", ErrUnsupportedOperation, operation)
}

func (d *Driver) RenameFolder(ctx context.Context, folderIdentifier, newName string) (map[string]string, error) {
	return nil, unsupported("rename folder")
}

func (d *Driver) MoveFolder(ctx context.Context, sourceFolderIdentifier, targetFolderIdentifier, newFolderName string) (map[string]string, error) {
	return nil, unsupported("move folder")
}

func (d *Driver) CopyFolder(ctx context.Context, sourceFolderIdentifier, targetFolderIdentifier, newFolderName string) (bool, error) {
	return false, unsupported("copy folder")
}

func (d *Driver) CopyFile(ctx context.Context, fileIdentifier, targetFolderIdentifier, fileName string) (string, error) {
	return "", unsupported("copy file")
}

func (d *Driver) MoveFile(ctx context.Context, fileIdentifier, targetFolderIdentifier, newFileName string) (string, error) {
	return "", unsupported("move file")
}

func (d *Driver) ReplaceFile(ctx context.Context, fileIdentifier, localFilePath string) (bool, error) {
	return false, unsupported("replace file")
}

func (d *Driver) SetFileContents(ctx context.Context, fileIdentifier string, contents []byte) (int, error) {
	return 0, unsupported("set file contents")
}
