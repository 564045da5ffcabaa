package filestorage

import (
	"context"
	"fmt"
	"mime/multipart"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/skillpivot/api/internal/pkg/apperrors"
)

// Category selects where an upload lands and how it is tagged.
type Category string

const (
	CategoryProfile Category = "profile"
	CategoryNIC     Category = "nic"
	CategoryLogo    Category = "logo"
)

// subDir is the directory, relative to the storage root, of a category.
func (c Category) subDir() string {
	switch c {
	case CategoryNIC:
		return "nic"
	case CategoryLogo:
		return "logos"
	default:
		return ""
	}
}

// BlobStore persists uploaded files and hands back the URL to store on the
// owning row.
type BlobStore interface {
	Store(ctx context.Context, category Category, ownerID int64, fileHeader *multipart.FileHeader) (string, error)
	Delete(ctx context.Context, fileURL string) error
}

// objectKey builds "<subdir>/<owner>_<tag>_<uuid><ext>" for an upload.
func objectKey(category Category, ownerID int64, originalName string) string {
	ext := strings.ToLower(filepath.Ext(originalName))
	name := fmt.Sprintf("%d_%s_%s%s", ownerID, category, uuid.New().String(), ext)
	if dir := category.subDir(); dir != "" {
		return dir + "/" + name
	}
	return name
}

// OwnedBy reports whether fileURL names an object stored for ownerID under
// category. Replaced or orphaned files are only deleted when this holds, so a
// stored URL can never point the blob store at another owner's file.
func OwnedBy(fileURL string, category Category, ownerID int64) bool {
	if fileURL == "" || strings.Contains(fileURL, "..") {
		return false
	}
	if i := strings.IndexAny(fileURL, "?#"); i >= 0 {
		fileURL = fileURL[:i]
	}
	return strings.HasPrefix(path.Base(fileURL), fmt.Sprintf("%d_%s_", ownerID, category))
}

func checkUpload(fileHeader *multipart.FileHeader) error {
	if fileHeader == nil || fileHeader.Size <= 0 {
		return apperrors.NewCustomError(apperrors.ErrEmptyFile, "No file uploaded.")
	}
	return nil
}
