// Package message builds the byte string Orderly expects to be signed for a request.
package message

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// Build concatenates, without separators, the decimal millisecond timestamp, the
// upper-cased method, the path (query string included) and the body when non-nil.
// body must be the exact bytes that will be transmitted.
func Build(timestampMillis int64, method, path string, body []byte) []byte {
	ts := strconv.FormatInt(timestampMillis, 10)
	method = strings.ToUpper(method)
	out := make([]byte, 0, len(ts)+len(method)+len(path)+len(body))
	out = append(out, ts...)
	out = append(out, method...)
	out = append(out, path...)
	if body != nil {
		out = append(out, body...)
	}
	return out
}

// EncodeBody serializes a request body once. The returned bytes are used both for
// signing and as the HTTP body, so they never diverge.
func EncodeBody(v any) ([]byte, error) {
	switch b := v.(type) {
	case nil:
		return nil, nil
	case json.RawMessage:
		if b == nil {
			return nil, nil
		}
		return append([]byte(nil), b...), nil
	case []byte:
		if b == nil {
			return nil, nil
		}
		return append([]byte(nil), b...), nil
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	out := bytes.TrimSuffix(buf.Bytes(), []byte("\n"))
	if bytes.Equal(out, []byte("null")) {
		return nil, nil
	}
	return out, nil
}
