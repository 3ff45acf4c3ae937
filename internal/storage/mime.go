package storage

import (
	"mime"
	"path"
	"strings"
)

// Extensions the system mime table commonly lacks
var dataMimeTypes = map[string]string{
	".md":      "text/markdown",
	".tif":     "image/tiff",
	".tiff":    "image/tiff",
	".parquet": "application/vnd.apache.parquet",
	".geojson": "application/geo+json",
	".nc":      "application/x-netcdf",
	".csv":     "text/csv",
	".zarr":    "application/vnd+zarr",
	".pmtiles": "application/vnd.pmtiles",
}

// DetectMimeType guesses a media type from the file extension, or returns "" when unknown
func DetectMimeType(name string) string {
	ext := strings.ToLower(path.Ext(name))
	if ext == "" {
		return ""
	}
	if t, ok := dataMimeTypes[ext]; ok {
		return t
	}
	t := mime.TypeByExtension(ext)
	if i := strings.Index(t, ";"); i >= 0 {
		t = strings.TrimSpace(t[:i])
	}
	return t
}
