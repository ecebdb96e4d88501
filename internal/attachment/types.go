// Package attachment embeds binary files in plain-text message bodies and
// finds, decodes and redacts those embedded blocks again on display.
//
// A block is a short header followed by a single tag line carrying the
// base64 payload:
//
//	Filename:notes.txt
//	Filesize:0.01KB
//	Encoding:base64
//
//	<attachment alt = "notes.txt" src='data:file/file;base64, aGVsbG8=' />
//
// The marker substrings are located by literal text search, so the
// encoder and scanner share them as a wire format.
package attachment

// Wire-format markers shared by the encoder and the scanner.
const (
	markerStart   = ";base64,"
	markerPayload = ";base64, "
	markerEnd     = "' />"
	markerAlt     = `alt = "`
	markerSrc     = `" src=`
	markerData    = "data:"

	headerFilename = "Filename:"
	headerFilesize = "Filesize:"
	headerEncoding = "Encoding:base64"
)

const (
	// Placeholder replaces each block when a message is redacted.
	Placeholder = "~<Attachment data removed for easier viewing>~"

	// DefaultFilename names blocks that carry no alt attribute.
	DefaultFilename = "Attachment"

	// GenericSubtype is the media subtype of anything not recognized as
	// a raster image.
	GenericSubtype = "file"

	// Separator goes between a message body and each appended block.
	Separator = "\n\n"
)

// Payload is a decoded (or about to be encoded) attachment.
type Payload struct {
	Filename       string
	DeclaredSizeKB float64
	IsImage        bool
	MediaSubtype   string
	Data           []byte
}

// Span is a half-open byte range [Start, End) into a message.
type Span struct {
	Start int
	End   int
}

// Len returns the number of bytes covered by the span.
func (s Span) Len() int {
	return s.End - s.Start
}

// Block is one embedded attachment located inside a message.
type Block struct {
	Span    Span
	Payload Payload
}
