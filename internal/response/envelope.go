// internal/response/envelope.go
//
// Uniform JSON body returned by every API endpoint.
//
// Context
// -------
// Clients check `success` first and then branch on `data` or `error`:
//
//	{ "success": true,  "message": "...", "data": <any>, "error": null,
//	  "metadata": { ... } }
//	{ "success": false, "message": "...", "data": null,
//	  "error": {"code": "...", "details": [...] | {...}}, "metadata": {} }
//
// Notes
// -----
// • `data` is forced to null on failure even if a caller set it.
// • `metadata` is never null; nil maps encode as `{}`.
// • Error details are either a list of messages or a field → messages map.
//   Details keeps the two shapes apart instead of exposing `any`.
package response

import (
	"bytes"
	"encoding/json"
)

// Envelope is the response body.  T is the payload type at the call site.
type Envelope[T any] struct {
	Success  bool           `json:"success"`
	Message  string         `json:"message"`
	Data     T              `json:"data"`
	Error    *ErrorBody     `json:"error"`
	Metadata map[string]any `json:"metadata"`
}

// MarshalJSON enforces the null-data / empty-metadata rules on the wire.
func (e Envelope[T]) MarshalJSON() ([]byte, error) {
	wire := struct {
		Success  bool           `json:"success"`
		Message  string         `json:"message"`
		Data     any            `json:"data"`
		Error    *ErrorBody     `json:"error"`
		Metadata map[string]any `json:"metadata"`
	}{
		Success:  e.Success,
		Message:  e.Message,
		Data:     e.Data,
		Error:    e.Error,
		Metadata: e.Metadata,
	}
	if !e.Success {
		wire.Data = nil
	} else {
		wire.Error = nil
	}
	if wire.Metadata == nil {
		wire.Metadata = map[string]any{}
	}
	return json.Marshal(wire)
}

// ErrorBody is the machine-readable half of a failure.
type ErrorBody struct {
	Code    string  `json:"code"`
	Details Details `json:"details"`
}

// Details holds either a message list or per-field messages.  The zero value
// is an empty list.
type Details struct {
	list   []string
	fields map[string][]string
	keyed  bool
}

// NewListDetails returns list-shaped details.
func NewListDetails(msgs ...string) Details {
	return Details{list: append([]string(nil), msgs...)}
}

// NewFieldDetails returns map-shaped details.  The map is copied.
func NewFieldDetails(fields map[string][]string) Details {
	cp := make(map[string][]string, len(fields))
	for k, v := range fields {
		cp[k] = append([]string(nil), v...)
	}
	return Details{fields: cp, keyed: true}
}

// IsFields reports whether the details are field-keyed.
func (d Details) IsFields() bool { return d.keyed }

// List returns the message list (nil when field-keyed).
func (d Details) List() []string { return d.list }

// Fields returns the field map (nil when list-shaped).
func (d Details) Fields() map[string][]string { return d.fields }

// Empty reports whether there are no messages at all.
func (d Details) Empty() bool {
	if d.keyed {
		return len(d.fields) == 0
	}
	return len(d.list) == 0
}

func (d Details) MarshalJSON() ([]byte, error) {
	if d.keyed {
		if d.fields == nil {
			return []byte("{}"), nil
		}
		return json.Marshal(d.fields)
	}
	if d.list == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(d.list)
}

func (d *Details) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.HasPrefix(b, []byte("{")) {
		var m map[string][]string
		if err := json.Unmarshal(b, &m); err != nil {
			return err
		}
		*d = Details{fields: m, keyed: true}
		return nil
	}
	var l []string
	if err := json.Unmarshal(b, &l); err != nil {
		return err
	}
	*d = Details{list: l}
	return nil
}

// Response pairs a status code with its envelope.
type Response[T any] struct {
	Status int
	Body   Envelope[T]
}
