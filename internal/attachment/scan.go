package attachment

import (
	"encoding/base64"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Scan finds every embedded block in message from left to right. It does
// not modify message.
//
// Scanning stops at the first block that cannot be parsed: the blocks
// found before it are returned together with a *MalformedBlockError.
func Scan(message string) ([]Block, error) {
	var blocks []Block

	s := scanner{message: message}
	for {
		block, found, err := s.next()
		if err != nil {
			return blocks, err
		}
		if !found {
			return blocks, nil
		}
		blocks = append(blocks, block)
	}
}

// scanner walks a message with a strictly advancing cursor.
type scanner struct {
	message string
	cursor  int
}

// next locates, describes and decodes the block after the cursor.
func (s *scanner) next() (Block, bool, error) {
	rel := strings.Index(s.message[s.cursor:], markerStart)
	if rel < 0 {
		s.cursor = len(s.message)
		return Block{}, false, nil
	}
	start := s.cursor + rel

	bodyStart := start + len(markerStart)
	relEnd := strings.Index(s.message[bodyStart:], markerEnd)
	if relEnd < 0 {
		return Block{}, false, &MalformedBlockError{
			Offset: start,
			Err:    ErrUnterminatedBlock,
		}
	}
	end := bodyStart + relEnd

	payload, spanStart := s.describe(start)

	data, err := decodePayload(s.message[bodyStart:end])
	if err != nil {
		return Block{}, false, &MalformedBlockError{
			Offset: spanStart,
			Err:    fmt.Errorf("%w: %v", ErrDecodeFailure, err),
		}
	}
	payload.Data = data
	if payload.DeclaredSizeKB == 0 {
		payload.DeclaredSizeKB = roundKB(SizeKB(len(data)))
	}

	block := Block{
		Span:    Span{Start: spanStart, End: end + len(markerEnd)},
		Payload: payload,
	}
	s.cursor = block.Span.End
	return block, true, nil
}

// describe reads the filename, media type and declared size from the text
// between the cursor and the start marker, and returns where the block
// begins.
func (s *scanner) describe(start int) (Payload, int) {
	prefix := s.message[s.cursor:start]

	p := Payload{Filename: DefaultFilename}
	p.IsImage, p.MediaSubtype = parseMediaType(prefix)

	alt := strings.LastIndex(prefix, markerAlt)
	if alt < 0 {
		return p, start
	}
	nameStart := alt + len(markerAlt)
	nameLen := strings.Index(prefix[nameStart:], markerSrc)
	if nameLen < 0 {
		return p, start
	}
	// The alt must belong to the tag holding this payload, not to an
	// earlier tag that was already closed.
	src := prefix[nameStart+nameLen+len(markerSrc):]
	if strings.Contains(src, markerEnd) || strings.ContainsAny(src, "\r\n") {
		return p, start
	}
	if name := prefix[nameStart : nameStart+nameLen]; name != "" {
		p.Filename = name
	}

	blockStart := tagStart(prefix, alt)
	if header, sizeKB, ok := headerStart(prefix[:blockStart]); ok {
		blockStart = header
		p.DeclaredSizeKB = sizeKB
	}
	return p, s.cursor + blockStart
}

// parseMediaType reads "data:<kind>/<subtype>" immediately preceding the
// start marker.
func parseMediaType(prefix string) (bool, string) {
	i := strings.LastIndex(prefix, markerData)
	if i < 0 {
		return false, GenericSubtype
	}
	kind, subtype, ok := strings.Cut(prefix[i+len(markerData):], "/")
	if !ok || subtype == "" || strings.ContainsAny(kind+subtype, " \t\r\n'\"<>") {
		return false, GenericSubtype
	}
	return kind == "image", subtype
}

// tagStart returns the offset of the '<' opening the tag that holds the
// alt attribute at alt, or alt itself when there is no such tag.
func tagStart(prefix string, alt int) int {
	lt := strings.LastIndexByte(prefix[:alt], '<')
	if lt < 0 {
		return alt
	}
	name := strings.TrimRight(prefix[lt+1:alt], " \t")
	if name == "" || strings.ContainsAny(name, " \t\r\n<>'\"") {
		return alt
	}
	return lt
}

// headerStart checks that before ends with the Filename/Filesize/Encoding
// header and returns the offset of its first line and the declared size.
func headerStart(before string) (int, float64, bool) {
	rest, ok := strings.CutSuffix(before, headerEncoding+"\n\n")
	if !ok {
		return 0, 0, false
	}
	rest, ok = strings.CutSuffix(rest, "KB\n")
	if !ok {
		return 0, 0, false
	}

	nl := strings.LastIndexByte(rest, '\n')
	if nl < 0 {
		return 0, 0, false
	}
	sizeText, ok := strings.CutPrefix(rest[nl+1:], headerFilesize)
	if !ok {
		return 0, 0, false
	}
	sizeKB, err := strconv.ParseFloat(sizeText, 64)
	if err != nil || !(sizeKB >= 0) || math.IsInf(sizeKB, 0) {
		return 0, 0, false
	}

	rest = rest[:nl]
	lineStart := strings.LastIndexByte(rest, '\n') + 1
	if !strings.HasPrefix(rest[lineStart:], headerFilename) {
		return 0, 0, false
	}
	return lineStart, sizeKB, true
}

// decodePayload strips the single space the encoder writes after the
// comma and decodes standard base64. Line breaks are ignored.
func decodePayload(text string) ([]byte, error) {
	return base64.StdEncoding.DecodeString(strings.TrimPrefix(text, " "))
}
