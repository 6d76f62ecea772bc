// Package decoder turns gateway response bodies into caller-facing values.
package decoder

import (
	"bytes"
	"encoding/json"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/DeBrosOfficial/smart-gateway/pkg/errors"
)

// Format tags the requested decoding of a response body.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatBlob Format = "blob"
)

// ParseFormat maps a user-supplied string to a Format. Unknown or empty
// values yield FormatText.
func ParseFormat(s string) Format {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case FormatJSON:
		return FormatJSON
	case FormatBlob:
		return FormatBlob
	default:
		return FormatText
	}
}

// Blob is the raw body of a response along with its declared media type.
type Blob struct {
	Data        []byte
	ContentType string
}

// Decoder converts a body into a value.
type Decoder interface {
	Decode(contentType string, body []byte) (any, error)
}

// DecoderFunc adapts a function to the Decoder interface.
type DecoderFunc func(contentType string, body []byte) (any, error)

// Decode calls f.
func (f DecoderFunc) Decode(contentType string, body []byte) (any, error) {
	return f(contentType, body)
}

// Registry dispatches on Format. The zero value is not usable; use NewRegistry.
type Registry struct {
	mu       sync.RWMutex
	decoders map[Format]Decoder
}

// NewRegistry returns a registry with the text, json and blob decoders installed.
func NewRegistry() *Registry {
	r := &Registry{decoders: make(map[Format]Decoder)}
	r.Register(FormatText, DecoderFunc(decodeText))
	r.Register(FormatJSON, DecoderFunc(decodeJSON))
	r.Register(FormatBlob, DecoderFunc(decodeBlob))
	return r
}

// Register installs or replaces the decoder for format.
func (r *Registry) Register(format Format, d Decoder) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.decoders[format] = d
}

// Decode decodes body as format. Formats without a registered decoder fall
// back to text. Any failure is returned as a *errors.DecodeError.
func (r *Registry) Decode(contentType string, body []byte, format Format) (any, error) {
	r.mu.RLock()
	d, ok := r.decoders[format]
	if !ok {
		format = FormatText
		d = r.decoders[FormatText]
	}
	r.mu.RUnlock()

	v, err := d.Decode(contentType, body)
	if err != nil {
		if errors.IsDecodeFailed(err) {
			return nil, err
		}
		return nil, errors.NewDecodeError(string(format), err)
	}
	return v, nil
}

// decodeText never fails; invalid UTF-8 sequences become U+FFFD.
func decodeText(_ string, body []byte) (any, error) {
	if utf8.Valid(body) {
		return string(body), nil
	}
	return strings.ToValidUTF8(string(body), "\uFFFD"), nil
}

func decodeJSON(_ string, body []byte) (any, error) {
	var v any
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	if err := dec.Decode(&v); err != nil {
		return nil, errors.NewDecodeError(string(FormatJSON), err)
	}
	if dec.More() {
		return nil, errors.NewDecodeError(string(FormatJSON), errTrailingData)
	}
	return v, nil
}

func decodeBlob(contentType string, body []byte) (any, error) {
	data := make([]byte, len(body))
	copy(data, body)
	return Blob{Data: data, ContentType: contentType}, nil
}

var errTrailingData = errors.New("unexpected data after JSON value")
