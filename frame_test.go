package okolab

import (
	"errors"
	"strings"
	"testing"
)

func TestEncodeFrame(t *testing.T) {
	tests := []struct {
		name     string
		code     string
		arg      string
		expected string
		wantErr  bool
	}{
		{"bare command", "026", "", "026\r", false},
		{"command with argument", "008", "37.0", "00837.0\r", false},
		{"negative argument", "112", "-1", "112-1\r", false},
		{"short code", "26", "", "", true},
		{"long code", "0026", "", "", true},
		{"non-digit code", "02x", "", "", true},
		{"empty code", "", "", "", true},
		{"terminator in argument", "071", "bad\rvalue", "", true},
		{"non-ascii argument", "071", "37\xff0", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			frame, err := encodeFrame(tt.code, tt.arg)
			if tt.wantErr {
				var encErr *EncodingError
				if !errors.As(err, &encErr) {
					t.Errorf("encodeFrame(%q, %q) error = %v, expected EncodingError", tt.code, tt.arg, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("encodeFrame(%q, %q) failed: %v", tt.code, tt.arg, err)
			}
			if string(frame) != tt.expected {
				t.Errorf("encodeFrame(%q, %q) = %q, expected %q", tt.code, tt.arg, frame, tt.expected)
			}
		})
	}
}

func TestDecodeFrame(t *testing.T) {
	tests := []struct {
		name      string
		code      string
		raw       string
		payload   string
		errorCode int
		isError   bool
		wantErr   bool
	}{
		{name: "value frame", code: "001", raw: "00137.0\r", payload: "37.0"},
		{name: "empty payload", code: "017", raw: "017\r", payload: ""},
		{name: "textual payload", code: "001", raw: "001OFF\r", payload: "OFF"},
		{name: "error frame", code: "001", raw: "E5\r", errorCode: 5, isError: true},
		{name: "two digit error frame", code: "001", raw: "E15\r", errorCode: 15, isError: true},
		{name: "empty input", code: "001", raw: "", wantErr: true},
		{name: "missing terminator", code: "001", raw: "00137.0", wantErr: true},
		{name: "truncated echo", code: "001", raw: "00\r", wantErr: true},
		{name: "echo mismatch", code: "001", raw: "00237.0\r", wantErr: true},
		{name: "non-numeric error code", code: "001", raw: "Exx\r", wantErr: true},
		{name: "bare terminator", code: "001", raw: "\r", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := decodeFrame(tt.code, []byte(tt.raw))
			if tt.wantErr {
				var framingErr *FramingError
				if !errors.As(err, &framingErr) {
					t.Errorf("decodeFrame(%q, %q) error = %v, expected FramingError", tt.code, tt.raw, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("decodeFrame(%q, %q) failed: %v", tt.code, tt.raw, err)
			}
			if f.IsError != tt.isError {
				t.Errorf("IsError = %v, expected %v", f.IsError, tt.isError)
			}
			if f.IsError && f.ErrorCode != tt.errorCode {
				t.Errorf("ErrorCode = %d, expected %d", f.ErrorCode, tt.errorCode)
			}
			if !f.IsError && f.Payload != tt.payload {
				t.Errorf("Payload = %q, expected %q", f.Payload, tt.payload)
			}
		})
	}
}

// Every representable (command, argument) pair must survive the trip
// through encode and decode unchanged.
func TestFrameRoundTrip(t *testing.T) {
	pairs := []struct {
		code string
		arg  string
	}{
		{"001", ""},
		{"008", "37.0"},
		{"008", "25.0"},
		{"063", "60.0"},
		{"112", "-1"},
		{"116", "2"},
		{"071", "12/31/2026 23:59:59"},
	}

	for _, pair := range pairs {
		raw, err := encodeFrame(pair.code, pair.arg)
		if err != nil {
			t.Fatalf("encodeFrame(%q, %q) failed: %v", pair.code, pair.arg, err)
		}
		f, err := decodeFrame(pair.code, raw)
		if err != nil {
			t.Fatalf("decodeFrame after encode failed for (%q, %q): %v", pair.code, pair.arg, err)
		}
		if f.IsError {
			t.Errorf("Round trip of (%q, %q) produced an error frame", pair.code, pair.arg)
		}
		if f.Payload != pair.arg {
			t.Errorf("Round trip of (%q, %q) = %q", pair.code, pair.arg, f.Payload)
		}
	}
}

func TestSystemErrorMessages(t *testing.T) {
	tests := []struct {
		code     int
		contains string
	}{
		{1, "command ID not valid"},
		{5, "value out of range"},
		{15, "request not properly formatted"},
		{99, "controller error 99"},
	}

	for _, tt := range tests {
		err := &SystemError{Code: tt.code}
		if got := err.Error(); !strings.Contains(got, tt.contains) {
			t.Errorf("SystemError{%d}.Error() = %q, expected to contain %q", tt.code, got, tt.contains)
		}
	}
}
