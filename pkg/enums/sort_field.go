package enums

import "fmt"

// AlbumSortField enumerates the album columns a listing may sort on. Unknown
// fields are rejected at the boundary rather than silently skipped.
type AlbumSortField string

const (
	AlbumSortCreatedAt AlbumSortField = "created_at"
	AlbumSortUpdatedAt AlbumSortField = "updated_at"
	AlbumSortName      AlbumSortField = "name"
)

var validAlbumSortFields = []AlbumSortField{
	AlbumSortCreatedAt,
	AlbumSortUpdatedAt,
	AlbumSortName,
}

// String implements fmt.Stringer.
func (f AlbumSortField) String() string {
	return string(f)
}

// IsValid reports whether the value names a sortable album column.
func (f AlbumSortField) IsValid() bool {
	for _, candidate := range validAlbumSortFields {
		if candidate == f {
			return true
		}
	}
	return false
}

// ParseAlbumSortField converts raw input into an AlbumSortField.
func ParseAlbumSortField(value string) (AlbumSortField, error) {
	for _, candidate := range validAlbumSortFields {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid album sort field %q", value)
}

// PhotoSortField enumerates the photo columns a listing may sort on.
type PhotoSortField string

const (
	PhotoSortCreatedAt PhotoSortField = "created_at"
	PhotoSortFileName  PhotoSortField = "file_name"
	PhotoSortSizeBytes PhotoSortField = "size_bytes"
)

var validPhotoSortFields = []PhotoSortField{
	PhotoSortCreatedAt,
	PhotoSortFileName,
	PhotoSortSizeBytes,
}

// String implements fmt.Stringer.
func (f PhotoSortField) String() string {
	return string(f)
}

// IsValid reports whether the value names a sortable photo column.
func (f PhotoSortField) IsValid() bool {
	for _, candidate := range validPhotoSortFields {
		if candidate == f {
			return true
		}
	}
	return false
}

// ParsePhotoSortField converts raw input into a PhotoSortField.
func ParsePhotoSortField(value string) (PhotoSortField, error) {
	for _, candidate := range validPhotoSortFields {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid photo sort field %q", value)
}
