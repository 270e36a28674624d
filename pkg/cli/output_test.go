package cli

import (
	"bytes"
	"encoding/json"
	"testing"
)

func TestTextFormatter(t *testing.T) {
	formatter := &TextFormatter{}

	output, err := formatter.Format("test message")
	if err != nil {
		t.Fatalf("Format() error = %v", err)
	}
	if string(output) != "test message\n" {
		t.Errorf("Format() = %q, want %q", string(output), "test message\n")
	}
}

func TestTextFormatter_SortedMap(t *testing.T) {
	formatter := &TextFormatter{}
	buf := &bytes.Buffer{}

	err := formatter.FormatTo(buf, map[string]string{
		"X-Timestamp": "1700000000",
		"X-Nonce":     "abcdefgh",
		"X-Signature": "41e1",
	})
	if err != nil {
		t.Fatalf("FormatTo() error = %v", err)
	}

	expected := "X-Nonce: abcdefgh\nX-Signature: 41e1\nX-Timestamp: 1700000000\n"
	if buf.String() != expected {
		t.Errorf("FormatTo() = %q, want %q", buf.String(), expected)
	}
}

func TestJSONFormatter(t *testing.T) {
	formatter := NewFormatter(FormatJSON)
	buf := &bytes.Buffer{}

	if err := formatter.FormatTo(buf, map[string]string{"k": "v"}); err != nil {
		t.Fatalf("FormatTo() error = %v", err)
	}

	var decoded map[string]string
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("invalid JSON %q: %v", buf.String(), err)
	}
	if decoded["k"] != "v" {
		t.Errorf("decoded = %v", decoded)
	}
}

func TestParseOutputFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    OutputFormat
		wantErr bool
	}{
		{"", FormatText, false},
		{"text", FormatText, false},
		{"JSON", FormatJSON, false},
		{"csv", "", true},
	}

	for _, tt := range tests {
		got, err := ParseOutputFormat(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseOutputFormat(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("ParseOutputFormat(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
