package broker

import "testing"

const samplePayload = `{"timestamp":987654,"type":"INFO","severity":"MID","activity_uuid":12345,"seq_id":7,"parent_uuid":3,"message":"disk almost full"}`

func TestFilterDisabledMatchesEverything(t *testing.T) {
	f, err := NewFilter("   ")
	if err != nil {
		t.Fatalf("empty expression: %v", err)
	}
	if f.enabled {
		t.Fatal("blank expression should yield a disabled filter")
	}
	if !f.Eval(nil) {
		t.Fatal("disabled filter must match everything")
	}
}

func TestFilterEval(t *testing.T) {
	cases := []struct {
		expr string
		want bool
	}{
		{`type == "INFO"`, true},
		{`type == "ERROR"`, false},
		{`severity in ["MID", "HIGH"]`, true},
		{`seq_id > 5 && parent_uuid == 3`, true},
		{`message.contains("disk")`, true},
		{`message.startsWith("net")`, false},
		{`activity_uuid == 12345 && timestamp < 1000000`, true},
		{`text.contains("seq_id") && size > 10`, true},
		{`producer_uuid == ""`, true},
	}
	p := parsePayload([]byte(samplePayload))
	for _, tc := range cases {
		f, err := NewFilter(tc.expr)
		if err != nil {
			t.Fatalf("compile %q: %v", tc.expr, err)
		}
		if got := f.Eval(p); got != tc.want {
			t.Errorf("%q = %v, want %v", tc.expr, got, tc.want)
		}
	}
}

func TestFilterCompileErrors(t *testing.T) {
	for _, expr := range []string{
		`type ==`,            // parse error
		`unknown_var == "x"`, // undeclared variable
		`seq_id + 1`,         // non-boolean result still compiles; Eval rejects
	} {
		f, err := NewFilter(expr)
		if expr == `seq_id + 1` {
			if err != nil {
				t.Fatalf("compile %q: %v", expr, err)
			}
			if f.Eval(parsePayload([]byte(samplePayload))) {
				t.Fatalf("non-boolean expression %q must not match", expr)
			}
			continue
		}
		if err == nil {
			t.Errorf("compile %q: expected error", expr)
		}
	}
}

func TestFilterUnparsablePayloadNeverMatches(t *testing.T) {
	f, err := NewFilter(`size >= 0`)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	if f.Eval(parsePayload([]byte("not json"))) {
		t.Fatal("unparsable payload must count as a non-match")
	}
}
