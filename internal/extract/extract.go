// Package extract derives a canonical transaction reference from the
// free-text narration and memo fields of a bank notification. Two channel
// formats are interleaved in the same field with no type tag, so extraction is
// a classifier feeding format-specific rules. It is pure text parsing: no
// input is ever an error, unparseable text just yields an empty reference.
package extract

import "strings"

// Format tags the narration channel format.
type Format int

const (
	FormatUnknown Format = iota
	FormatPointOfSale
	FormatMobileTransfer
)

func (f Format) String() string {
	switch f {
	case FormatPointOfSale:
		return "point_of_sale"
	case FormatMobileTransfer:
		return "mobile_transfer"
	default:
		return "unknown"
	}
}

// delimiter separates segments in narration text across both channel formats.
const delimiter = "~"

// Classify tags narration text by channel format. Point-of-sale narrations
// begin with a case-insensitive POS prefix; everything else non-empty is the
// mobile/instant-transfer format.
func Classify(text string) Format {
	segs := segments(text)
	if len(segs) == 0 || segs[0] == "" {
		return FormatUnknown
	}
	if strings.HasPrefix(strings.ToUpper(segs[0]), "POS") {
		return FormatPointOfSale
	}
	return FormatMobileTransfer
}

// Reference extracts the canonical reference, preferring the structured memo
// line over the raw narration. The narration is consulted only when the memo
// line is absent.
func Reference(memoLine, narration string) string {
	if strings.TrimSpace(memoLine) != "" {
		return referenceFrom(memoLine)
	}
	return referenceFrom(narration)
}

// referenceFrom applies the format-specific rule to one text field.
//
// Point-of-sale ("POSAG033732~524417002625 X"): the reference is the segment
// after the first delimiter, truncated to its first whitespace token; when no
// second segment exists the first segment itself is the best available
// reference. Mobile transfer ("TI28ZF3AQY~631412"): the reference is the
// first segment.
func referenceFrom(text string) string {
	segs := segments(text)
	if len(segs) == 0 {
		return ""
	}
	if Classify(text) == FormatPointOfSale {
		if len(segs) > 1 && segs[1] != "" {
			return firstToken(segs[1])
		}
	}
	return segs[0]
}

// MobileNumber recovers a local-format phone number from narration text: a
// 12-digit run starting with country code 254 is re-encoded with the local
// trunk prefix ("254712345678" → "0712345678"). This is an optional
// enrichment; absence is not an error.
func MobileNumber(narration string) string {
	digits := 0
	start := -1
	for i, r := range narration {
		if r >= '0' && r <= '9' {
			if digits == 0 {
				start = i
			}
			digits++
			continue
		}
		if n := number(narration, start, digits); n != "" {
			return n
		}
		digits = 0
	}
	return number(narration, start, digits)
}

// number converts one complete digit run into a local number, or "" when the
// run is not a 254-prefixed 12-digit sequence.
func number(text string, start, digits int) string {
	if digits != 12 {
		return ""
	}
	run := text[start : start+12]
	if !strings.HasPrefix(run, "254") {
		return ""
	}
	return "0" + run[3:]
}

// segments splits on the delimiter and trims whitespace around each segment.
// Returns nil for blank input.
func segments(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	segs := strings.Split(text, delimiter)
	for i := range segs {
		segs[i] = strings.TrimSpace(segs[i])
	}
	return segs
}

func firstToken(s string) string {
	if fields := strings.Fields(s); len(fields) > 0 {
		return fields[0]
	}
	return ""
}
