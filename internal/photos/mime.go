package photos

import (
	"path/filepath"
	"strings"
)

// mimeTypes pins the content types the upload endpoint accepts. The table
// is deliberately independent of the host's mime database: HEIC and the
// video containers are missing from many platform registries.
var mimeTypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".webp": "image/webp",
	".heic": "image/heic",
	".bmp":  "image/bmp",
	".tif":  "image/tiff",
	".tiff": "image/tiff",
	".mp4":  "video/mp4",
	".mov":  "video/quicktime",
	".avi":  "video/x-msvideo",
	".mkv":  "video/x-matroska",
	".webm": "video/webm",
}

const defaultMimeType = "application/octet-stream"

// MimeTypeForFile returns the upload content type for a file based on its
// extension, falling back to application/octet-stream for anything unknown.
func MimeTypeForFile(path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	if mimeType, ok := mimeTypes[ext]; ok {
		return mimeType
	}
	return defaultMimeType
}
