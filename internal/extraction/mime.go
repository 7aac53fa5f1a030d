package extraction

import (
	"net/http"
	"path/filepath"
	"strings"
)

var extensionTypes = map[string]string{
	".pdf":  "application/pdf",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".bmp":  "image/bmp",
	".webp": "image/webp",
	".tif":  "image/tiff",
	".tiff": "image/tiff",
	".heic": "image/heic",
	".xlsx": "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	".xls":  "application/vnd.ms-excel",
}

// DetectMIMEType picks the media type from the file extension, falling back
// to content sniffing.
func DetectMIMEType(fileName string, content []byte) string {
	if t, ok := extensionTypes[strings.ToLower(filepath.Ext(fileName))]; ok {
		return t
	}
	t := http.DetectContentType(content)
	if i := strings.IndexByte(t, ';'); i >= 0 {
		t = t[:i]
	}
	return t
}

// IsSpreadsheet reports whether the file is an Excel workbook.
func IsSpreadsheet(fileName string) bool {
	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".xlsx", ".xls":
		return true
	}
	return false
}

// IsSupportedFile reports whether the file extension is a known document type.
func IsSupportedFile(fileName string) bool {
	_, ok := extensionTypes[strings.ToLower(filepath.Ext(fileName))]
	return ok
}
