package entry

import (
	"strings"
	"testing"
)

func TestKindSeverityNamesTotal(t *testing.T) {
	for k := Kind(0); k < kindCount; k++ {
		name := k.String()
		if name == "" || name == "UNKNOWN" {
			t.Fatalf("kind %d has no wire name", k)
		}
		back, err := ParseKind(name)
		if err != nil || back != k {
			t.Fatalf("ParseKind(%q) = %v, %v", name, back, err)
		}
	}
	for s := Severity(0); s < severityCount; s++ {
		name := s.String()
		if name == "" || name == "UNKNOWN" {
			t.Fatalf("severity %d has no wire name", s)
		}
		back, err := ParseSeverity(name)
		if err != nil || back != s {
			t.Fatalf("ParseSeverity(%q) = %v, %v", name, back, err)
		}
	}
}

func TestParseRejectsUnknownNames(t *testing.T) {
	if _, err := ParseKind("FATAL"); err == nil {
		t.Fatal("expected error for unknown kind")
	}
	if _, err := ParseSeverity("EXTREME"); err == nil {
		t.Fatal("expected error for unknown severity")
	}
}

func TestFormatLineShape(t *testing.T) {
	e := Entry{
		Kind:       KindInfo,
		Severity:   SeverityMid,
		Timestamp:  42,
		ActivityID: 12345,
		Seq:        1,
		ParentID:   0,
		Message:    "Test log message number 1",
	}
	want := "[INFO], {MID}, Activity: 12345 Seq: 1 Parent: 0 -- Test log message number 1\n"
	if got := FormatLine(e); got != want {
		t.Fatalf("FormatLine:\n got %q\nwant %q", got, want)
	}
}

func TestFormatLineEscapesLineBreaks(t *testing.T) {
	e := Entry{Kind: KindError, Severity: SeverityHigh, Seq: 9, Message: "first\nsecond\rthird\\"}
	line := FormatLine(e)
	if strings.Count(line, "\n") != 1 || !strings.HasSuffix(line, "\n") {
		t.Fatalf("message broke the line format: %q", line)
	}
	if !strings.Contains(line, `first\nsecond\rthird\\`) {
		t.Fatalf("escapes missing: %q", line)
	}
}

func TestPayloadScenario(t *testing.T) {
	e := Entry{
		Kind:       KindInfo,
		Severity:   SeverityMid,
		Timestamp:  987654,
		ActivityID: 12345,
		Seq:        1,
		ParentID:   0,
		Message:    "Test log message number 1",
	}
	b, err := EncodePayload(e, "")
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	want := `{"timestamp":987654,"type":"INFO","severity":"MID","activity_uuid":12345,"seq_id":1,"parent_uuid":0,"message":"Test log message number 1"}`
	if string(b) != want {
		t.Fatalf("payload:\n got %s\nwant %s", b, want)
	}
}

func TestPayloadRoundTrip(t *testing.T) {
	e := Entry{
		Kind:       KindPanic,
		Severity:   SeverityHigh,
		Timestamp:  1234567890,
		ActivityID: 77,
		Seq:        3,
		ParentID:   76,
		Message:    "quote \" backslash \\ newline \n tab \t bell \x07 done",
	}
	b, err := EncodePayload(e, "")
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	got, producer, err := DecodePayload(b)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if producer != "" {
		t.Fatalf("unexpected producer id %q", producer)
	}
	if got != e {
		t.Fatalf("round trip mismatch:\n got %+v\nwant %+v", got, e)
	}
}

func TestPayloadProducerExtension(t *testing.T) {
	e := Entry{Kind: KindOK, Severity: SeverityNone, Seq: 1, Message: "m"}
	b, err := EncodePayload(e, "3f1c9a")
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if !strings.Contains(string(b), `"producer_uuid":"3f1c9a"`) {
		t.Fatalf("producer id not carried: %s", b)
	}
	_, producer, err := DecodePayload(b)
	if err != nil || producer != "3f1c9a" {
		t.Fatalf("decode producer: %q, %v", producer, err)
	}
}

func TestDecodeRejectsUnknownKind(t *testing.T) {
	_, _, err := DecodePayload([]byte(`{"timestamp":1,"type":"TRACE","severity":"LOW","activity_uuid":0,"seq_id":1,"parent_uuid":0,"message":"m"}`))
	if err == nil {
		t.Fatal("expected error for unknown type name")
	}
}
