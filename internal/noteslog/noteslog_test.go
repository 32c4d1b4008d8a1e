package noteslog

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var ts = time.Date(2024, 3, 10, 9, 30, 0, 0, time.UTC)

func TestAppendKeepsPriorContent(t *testing.T) {
	log := "رقم الهاتف: 0791234567"
	out := Append(log, MarkerAdminResponse, "  received  ", ts)

	assert.Equal(t, log+"\n\n"+string(MarkerAdminResponse)+"\nreceived\ndate: 2024-03-10 09:30", out)
	assert.Equal(t, string(MarkerAdminResponse)+"\nfirst", Append("", MarkerAdminResponse, "first", time.Time{}))
}

func TestExtractLatestWins(t *testing.T) {
	log := Append("", MarkerAdminResponse, "a", ts)
	log = Append(log, MarkerAdminResponse, "b", ts.Add(time.Hour))

	entry, ok := ExtractLatest(log, MarkerAdminResponse)
	require.True(t, ok)
	assert.Equal(t, "b", entry.Body)
	assert.Equal(t, "2024-03-10 10:30", entry.DateText)
}

func TestExtractLatestMissingOrEmpty(t *testing.T) {
	_, ok := ExtractLatest("", MarkerAdminResponse)
	assert.False(t, ok)

	_, ok = ExtractLatest("just text", MarkerAdminResponse)
	assert.False(t, ok)

	log := Append("", MarkerAdminResponse, "   ", ts)
	_, ok = ExtractLatest(log, MarkerAdminResponse)
	assert.False(t, ok)
}

func TestExtractLatestStopsAtNextMarker(t *testing.T) {
	log := Append("", MarkerAdminResponse, "reply", ts)
	log = Append(log, MarkerAdminBooking, "trip 42", ts)

	entry, ok := ExtractLatest(log, MarkerAdminResponse)
	require.True(t, ok)
	assert.Equal(t, "reply", entry.Body)
	assert.Equal(t, "2024-03-10 09:30", entry.DateText)
}

func TestExtractAllNewestFirst(t *testing.T) {
	log := ""
	for _, body := range []string{"A", "B", "C"} {
		log = Append(log, MarkerAdminResponse, body, ts)
	}
	log = Append(log, MarkerBookingModification, "changed", ts)

	entries := ExtractAll(log, MarkerAdminResponse)
	require.Len(t, entries, 3)
	assert.Equal(t, "C", entries[0].Body)
	assert.Equal(t, "B", entries[1].Body)
	assert.Equal(t, "A", entries[2].Body)

	assert.Empty(t, ExtractAll(log, MarkerAdminCreated))
}

func TestArabicDateLine(t *testing.T) {
	log := string(MarkerAdminResponse) + "\nتم استلام الطلب\nالتاريخ: 2024-01-05"

	entry, ok := ExtractLatest(log, MarkerAdminResponse)
	require.True(t, ok)
	assert.Equal(t, "تم استلام الطلب", entry.Body)
	assert.Equal(t, "2024-01-05", entry.DateText)
}

func TestParsePhysicalOrder(t *testing.T) {
	log := DraftSentinel + "\nالغرض من الزيارة: زيارة عائلية"
	log = Append(log, MarkerAdminCreated, "created by staff", ts)
	log = Append(log, MarkerAdminResponse, "welcome", ts)
	log = Append(log, MarkerAdminBooking, "trip booked", ts)

	sections := Parse(log)
	require.Len(t, sections, 3)
	assert.Equal(t, MarkerAdminCreated, sections[0].Marker)
	assert.Equal(t, MarkerAdminResponse, sections[1].Marker)
	assert.Equal(t, MarkerAdminBooking, sections[2].Marker)
	assert.Equal(t, "trip booked", sections[2].Body)
}

func TestSentinels(t *testing.T) {
	assert.True(t, IsDraft("[DRAFT]\nphone: 1"))
	assert.True(t, IsDraft("\n  [DRAFT]"))
	assert.False(t, IsDraft("note [DRAFT]"))

	log := Append("", MarkerAdminResponse, "تم تأكيد الحجز للرحلة", ts)
	assert.True(t, IsBookingConfirmed(log))
	assert.False(t, IsBookingConfirmed("pending"))
}

func TestFieldsBestEffort(t *testing.T) {
	log := "رقم الهاتف: 0790000000\n" +
		"garbage ::: line\n" +
		"صورة الدفع: https://cdn.example.com/a.jpg\n" +
		"رقم الهاتف : 0791111111\n" +
		"صورة الدفع: see https://cdn.example.com/b.png now"

	assert.Equal(t, "0791111111", Field(log, KeyPhone))
	assert.Equal(t, []string{"0790000000", "0791111111"}, Fields(log, KeyPhone))
	assert.Equal(t, "", Field(log, KeyPurpose))
	assert.Equal(t, "", Field(log, ""))
	assert.Equal(t, []string{"https://cdn.example.com/a.jpg", "https://cdn.example.com/b.png"}, PaymentImageURLs(log))
	assert.Empty(t, PaymentImageURLs("=== broken"))
}
