package orderly

import (
	"encoding/json"
	"strconv"

	"orderly-client/internal/core"
)

// envelope is the common response wrapper of every REST endpoint.
type envelope struct {
	Success   bool            `json:"success"`
	Data      json.RawMessage `json:"data"`
	Message   string          `json:"message"`
	Code      int             `json:"code"`
	Timestamp int64           `json:"timestamp"`
}

// RequestError is returned for transport failures, non-2xx responses and
// success=false envelopes. Message is the server's message when one was sent.
type RequestError struct {
	StatusCode int
	Code       int
	Message    string
	Err        error
}

func (e *RequestError) Error() string {
	msg := "orderly request failed"
	if e.StatusCode != 0 {
		msg += " status=" + strconv.Itoa(e.StatusCode)
	}
	if e.Code != 0 {
		msg += " code=" + strconv.Itoa(e.Code)
	}
	return msg + ": " + e.Message
}

func (e *RequestError) Unwrap() error { return e.Err }

func (e *RequestError) Is(target error) bool { return target == core.ErrRequestFailed }

type wsSubscribe struct {
	ID    string `json:"id"`
	Event string `json:"event"`
	Topic string `json:"topic"`
}

type wsPong struct {
	Event string `json:"event"`
	TS    int64  `json:"ts"`
}

type wsFrame struct {
	ID      string          `json:"id,omitempty"`
	Event   string          `json:"event,omitempty"`
	Topic   string          `json:"topic,omitempty"`
	Success *bool           `json:"success,omitempty"`
	ErrMsg  string          `json:"errorMsg,omitempty"`
	TS      int64           `json:"ts"`
	Data    json.RawMessage `json:"data,omitempty"`
}
