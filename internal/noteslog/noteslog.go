// Package noteslog reads and writes the legacy admin_notes journal: a free-text
// field holding marker-delimited sections plus loose "key: value" lines.
//
// New writes go to typed request_events rows; this package remains the only
// reader of the old format and backs the notes importer.
package noteslog

import (
	"regexp"
	"strings"
	"time"
)

type Marker string

const (
	MarkerAdminResponse       Marker = "=== رد الإدارة ==="
	MarkerAdminBooking        Marker = "=== حجز من الإدارة ==="
	MarkerBookingModification Marker = "=== تعديل الحجز ==="
	MarkerAdminCreated        Marker = "=== تم الإنشاء من الإدارة ==="
)

// Markers in the order they are checked when cutting a section.
var Markers = []Marker{
	MarkerAdminResponse,
	MarkerAdminBooking,
	MarkerBookingModification,
	MarkerAdminCreated,
}

const (
	DraftSentinel     = "[DRAFT]"
	BookingConfirmed  = "تم تأكيد الحجز"
	TimestampLayout   = "2006-01-02 15:04"
	dateLinePrefix    = "date:"
	dateLinePrefixAlt = "التاريخ:"
)

// Known loose keys.
const (
	KeyPhone        = "رقم الهاتف"
	KeyPurpose      = "الغرض من الزيارة"
	KeyPaymentImage = "صورة الدفع"
)

type Entry struct {
	Body     string
	DateText string
}

// Section is one marker occurrence in physical order.
type Section struct {
	Marker Marker
	Entry
}

// Append adds a section after the existing log. Prior content is kept byte for byte.
// A zero timestamp omits the date line.
func Append(log string, marker Marker, body string, timestamp time.Time) string {
	var b strings.Builder
	b.WriteString(string(marker))
	b.WriteString("\n")
	b.WriteString(strings.TrimSpace(body))
	if !timestamp.IsZero() {
		b.WriteString("\n")
		b.WriteString(dateLinePrefix)
		b.WriteString(" ")
		b.WriteString(timestamp.Format(TimestampLayout))
	}
	if log == "" {
		return b.String()
	}
	return log + "\n\n" + b.String()
}

// ExtractLatest returns the last section for marker. It reports false when the
// marker never occurs or the newest section has an empty body.
func ExtractLatest(log string, marker Marker) (Entry, bool) {
	idx := strings.LastIndex(log, string(marker))
	if idx < 0 || marker == "" {
		return Entry{}, false
	}
	entry := parseChunk(cutSection(log[idx+len(marker):]))
	if entry.Body == "" {
		return Entry{}, false
	}
	return entry, true
}

// ExtractAll returns every non-empty section for marker, newest first.
func ExtractAll(log string, marker Marker) []Entry {
	if marker == "" {
		return nil
	}
	var entries []Entry
	rest := log
	for {
		idx := strings.Index(rest, string(marker))
		if idx < 0 {
			break
		}
		rest = rest[idx+len(marker):]
		entry := parseChunk(cutSection(rest))
		if entry.Body != "" {
			entries = append(entries, entry)
		}
	}
	for i, j := 0, len(entries)-1; i < j; i, j = i+1, j-1 {
		entries[i], entries[j] = entries[j], entries[i]
	}
	return entries
}

// Parse returns all marker sections in the order they were written.
func Parse(log string) []Section {
	var sections []Section
	pos := 0
	for pos < len(log) {
		idx, marker := nextMarker(log[pos:])
		if idx < 0 {
			break
		}
		start := pos + idx + len(marker)
		entry := parseChunk(cutSection(log[start:]))
		if entry.Body != "" {
			sections = append(sections, Section{Marker: marker, Entry: entry})
		}
		pos = start
	}
	return sections
}

func IsDraft(log string) bool {
	return strings.HasPrefix(strings.TrimLeft(log, " \t\r\n"), DraftSentinel)
}

func IsBookingConfirmed(log string) bool {
	return strings.Contains(log, BookingConfirmed)
}

// Field returns the last value written for key, or "" when absent.
func Field(log, key string) string {
	values := Fields(log, key)
	if len(values) == 0 {
		return ""
	}
	return values[len(values)-1]
}

// Fields returns every value written for key in log order.
func Fields(log, key string) []string {
	key = strings.TrimSpace(key)
	if key == "" || log == "" {
		return nil
	}
	re, err := regexp.Compile(`(?m)^[ \t]*` + regexp.QuoteMeta(key) + `[ \t]*[:：][ \t]*(.*?)[ \t\r]*$`)
	if err != nil {
		return nil
	}
	var values []string
	for _, m := range re.FindAllStringSubmatch(log, -1) {
		if len(m) < 2 || m[1] == "" {
			continue
		}
		values = append(values, m[1])
	}
	return values
}

var urlPattern = regexp.MustCompile(`https?://[^\s"'<>]+`)

// PaymentImageURLs collects URLs found on payment image lines.
func PaymentImageURLs(log string) []string {
	var urls []string
	for _, value := range Fields(log, KeyPaymentImage) {
		urls = append(urls, urlPattern.FindAllString(value, -1)...)
	}
	return urls
}

func nextMarker(s string) (int, Marker) {
	best := -1
	var found Marker
	for _, m := range Markers {
		idx := strings.Index(s, string(m))
		if idx >= 0 && (best < 0 || idx < best) {
			best = idx
			found = m
		}
	}
	return best, found
}

func cutSection(s string) string {
	if idx, _ := nextMarker(s); idx >= 0 {
		return s[:idx]
	}
	return s
}

func parseChunk(chunk string) Entry {
	lines := strings.Split(strings.TrimSpace(chunk), "\n")
	var entry Entry
	last := len(lines) - 1
	if last >= 0 {
		tail := strings.TrimSpace(lines[last])
		for _, prefix := range []string{dateLinePrefix, dateLinePrefixAlt} {
			if len(tail) >= len(prefix) && strings.EqualFold(tail[:len(prefix)], prefix) {
				entry.DateText = strings.TrimSpace(tail[len(prefix):])
				lines = lines[:last]
				break
			}
		}
	}
	entry.Body = strings.TrimSpace(strings.Join(lines, "\n"))
	return entry
}
