package decoder

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/DeBrosOfficial/smart-gateway/pkg/errors"
)

func TestParseFormat(t *testing.T) {
	tests := []struct {
		input string
		want  Format
	}{
		{"", FormatText},
		{"text", FormatText},
		{"JSON", FormatJSON},
		{" blob ", FormatBlob},
		{"xml", FormatText},
	}
	for _, tt := range tests {
		if got := ParseFormat(tt.input); got != tt.want {
			t.Errorf("ParseFormat(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestDecodeText(t *testing.T) {
	r := NewRegistry()

	v, err := r.Decode("text/plain", []byte("x"), FormatText)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v != "x" {
		t.Errorf("Expected \"x\", got %v", v)
	}

	v, err = r.Decode("", []byte{0xff, 'a'}, FormatText)
	if err != nil {
		t.Fatalf("text decoding should not fail: %v", err)
	}
	if v != "\uFFFDa" {
		t.Errorf("Expected replacement character, got %q", v)
	}
}

func TestDecodeJSON(t *testing.T) {
	r := NewRegistry()

	v, err := r.Decode("application/json", []byte(`{"name":"gw","n":3}`), FormatJSON)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	m, ok := v.(map[string]any)
	if !ok {
		t.Fatalf("Expected map, got %T", v)
	}
	if m["name"] != "gw" {
		t.Errorf("unexpected name %v", m["name"])
	}
	if m["n"] != json.Number("3") {
		t.Errorf("unexpected number %v", m["n"])
	}
}

func TestDecodeJSONFailure(t *testing.T) {
	r := NewRegistry()

	for _, body := range []string{"", "not json", `{"a":1} {"b":2}`} {
		t.Run(fmt.Sprintf("%q", body), func(t *testing.T) {
			_, err := r.Decode("application/json", []byte(body), FormatJSON)
			if !errors.IsDecodeFailed(err) {
				t.Fatalf("Expected decode failure, got %v", err)
			}
		})
	}
}

func TestDecodeBlob(t *testing.T) {
	r := NewRegistry()
	body := []byte{1, 2, 3}

	v, err := r.Decode("image/png", body, FormatBlob)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	blob, ok := v.(Blob)
	if !ok {
		t.Fatalf("Expected Blob, got %T", v)
	}
	if blob.ContentType != "image/png" || len(blob.Data) != 3 {
		t.Errorf("unexpected blob %+v", blob)
	}

	body[0] = 9
	if blob.Data[0] != 1 {
		t.Error("blob should not alias the input buffer")
	}
}

func TestUnknownFormatFallsBackToText(t *testing.T) {
	v, err := NewRegistry().Decode("", []byte("plain"), Format("yaml"))
	if err != nil || v != "plain" {
		t.Errorf("Expected text fallback, got %v, %v", v, err)
	}
}

func TestRegisterCustomDecoder(t *testing.T) {
	r := NewRegistry()
	r.Register(Format("len"), DecoderFunc(func(_ string, body []byte) (any, error) {
		if len(body) == 0 {
			return nil, fmt.Errorf("empty body")
		}
		return len(body), nil
	}))

	v, err := r.Decode("", []byte("abcd"), Format("len"))
	if err != nil || v != 4 {
		t.Errorf("Expected 4, got %v, %v", v, err)
	}

	_, err = r.Decode("", nil, Format("len"))
	if !errors.IsDecodeFailed(err) {
		t.Fatalf("Expected plain errors to be wrapped as decode failures, got %v", err)
	}
}
