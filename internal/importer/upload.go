package importer

import (
	"fmt"
	"mime"
	"path/filepath"
	"strings"

	"fjacquet/budget-tracker/internal/parsererror"
)

// Upload media types. MimeExcel is the legacy binary workbook; it is
// recognised only to reject it with a useful message.
const (
	MimeCSV       = "text/csv"
	MimeExcel     = "application/vnd.ms-excel"
	MimeExcelOpen = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

var allowedTypes = map[string]bool{
	MimeCSV:       true,
	MimeExcelOpen: true,
}

var extensionTypes = map[string]string{
	".csv":  MimeCSV,
	".xls":  MimeExcel,
	".xlsx": MimeExcelOpen,
}

// DetectType returns the media type implied by a file name, or "".
func DetectType(name string) string {
	return extensionTypes[strings.ToLower(filepath.Ext(name))]
}

// IsExcel reports whether the media type is a readable (.xlsx) workbook.
func IsExcel(mimeType string) bool {
	return mimeType == MimeExcelOpen
}

// CheckUpload rejects files that are not CSV or .xlsx, empty files and files
// larger than maxBytes. An empty mimeType is inferred from the name.
func CheckUpload(name, mimeType string, size, maxBytes int64) error {
	if mimeType == "" {
		mimeType = DetectType(name)
	}
	if parsed, _, err := mime.ParseMediaType(mimeType); err == nil {
		mimeType = parsed
	}
	if mimeType == MimeExcel {
		return &parsererror.UploadError{Name: name, Reason: "legacy .xls workbooks are not supported, save it as .xlsx"}
	}
	if !allowedTypes[mimeType] {
		return &parsererror.UploadError{Name: name, Reason: "only CSV and Excel files are allowed"}
	}
	if size <= 0 {
		return &parsererror.UploadError{Name: name, Reason: "file is empty"}
	}
	if maxBytes > 0 && size > maxBytes {
		return &parsererror.UploadError{
			Name:   name,
			Reason: fmt.Sprintf("file size %d exceeds limit of %d bytes", size, maxBytes),
		}
	}
	return nil
}
