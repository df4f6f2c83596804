package header

import (
	"regexp"
	"strings"

	"github.com/DanielWuxiaoxiao/headstamp/pkg/models"
)

// Identity is the author identity stamped into every header.
type Identity struct {
	Author string
	Email  string
}

// leadingBlockRe matches a block comment at the very start of a file,
// minimally — first open marker through first close marker — plus any
// whitespace after it.
var leadingBlockRe = regexp.MustCompile(`(?s)\A/\*.*?\*/\s*`)

// markerTokens mark a leading block as a previous instance of this header
// rather than foreign content such as a license banner.
var markerTokens = []string{"@Author", "Author:", "@LastEditTime", "LastEditTime"}

// DetectEOL returns the dominant line terminator of content. CRLF wins only
// when it strictly outnumbers bare LF; ties and CRLF-free content get "\n".
func DetectEOL(content string) string {
	crlf := strings.Count(content, "\r\n")
	lf := strings.Count(content, "\n") - crlf
	if crlf > lf {
		return "\r\n"
	}
	return "\n"
}

// Build renders the fixed 8-line header block, lines joined with eol and a
// single trailing eol at the end. Absent timestamps render as empty field
// values; the lines themselves are never omitted.
func Build(id Identity, rec models.HeaderRecord, eol string) string {
	lines := []string{
		"/*",
		" * @Author: " + id.Author,
		" * @Email: " + id.Email,
		" * @Date: " + rec.Created,
		" * @LastEditors: " + id.Author,
		" * @LastEditTime: " + rec.LastEdited,
		" * @Description: ",
		" */",
	}
	return strings.Join(lines, eol) + eol
}

// Splice inserts header into content. A leading block comment carrying one
// of the marker tokens is replaced wholesale, trailing whitespace included;
// any other leading block (a license banner, say) stays put and the header
// goes above it; without a leading block the header is simply prepended.
func Splice(content, header string) string {
	if loc := leadingBlockRe.FindStringIndex(content); loc != nil {
		if isOwnHeader(content[:loc[1]]) {
			return header + content[loc[1]:]
		}
	}
	return header + content
}

func isOwnHeader(block string) bool {
	for _, token := range markerTokens {
		if strings.Contains(block, token) {
			return true
		}
	}
	return false
}
