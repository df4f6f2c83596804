package models

// TimeLayout is the timestamp layout used everywhere a header date is
// rendered: normalized git log output, filesystem fallback times and the
// stamped current time all reduce to this form.
const TimeLayout = "2006-01-02 15:04:05"

// FileTarget represents one candidate file for a header update
type FileTarget struct {
	Path string // Full file path
	EOL  string // Detected line terminator ("\n" or "\r\n")
}

// HeaderRecord holds the two timestamps rendered into a header.
// Empty strings mean the value could not be derived; the header still
// renders the field with an empty value.
type HeaderRecord struct {
	Created    string // First-commit or creation-like time
	LastEdited string // Last-commit or modification time
}

// Complete reports whether both timestamps were derived
func (r HeaderRecord) Complete() bool {
	return r.Created != "" && r.LastEdited != ""
}
