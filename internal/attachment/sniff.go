package attachment

import (
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// rasterSubtypes maps detected MIME types to the subtype written after
// "data:image/".
var rasterSubtypes = map[string]string{
	"image/png":                "png",
	"image/jpeg":               "jpeg",
	"image/gif":                "gif",
	"image/bmp":                "bmp",
	"image/webp":               "webp",
	"image/tiff":               "tiff",
	"image/x-icon":             "ico",
	"image/vnd.microsoft.icon": "ico",
}

// MediaKind is the result of sniffing a payload.
type MediaKind struct {
	IsImage bool
	Subtype string
}

// Sniff inspects the leading bytes of data and reports whether it is a
// recognized raster image. Unknown content is a generic file.
func Sniff(data []byte) MediaKind {
	if len(data) == 0 {
		return MediaKind{Subtype: GenericSubtype}
	}

	detected, _, _ := strings.Cut(mimetype.Detect(data).String(), ";")
	if subtype, ok := rasterSubtypes[strings.TrimSpace(detected)]; ok {
		return MediaKind{IsImage: true, Subtype: subtype}
	}
	return MediaKind{Subtype: GenericSubtype}
}

// tag returns the element name used in the marker line.
func (k MediaKind) tag() string {
	if k.IsImage {
		return "img"
	}
	return "attachment"
}

// kind returns the top-level type in the data: field.
func (k MediaKind) kind() string {
	if k.IsImage {
		return "image"
	}
	return "file"
}
