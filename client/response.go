package client

import (
	"encoding/json"
	"net/http"

	"github.com/pkg/errors"
)

// Response is a fully read backend answer.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Decode unmarshals the whole body into v.
func (r *Response) Decode(v any) error {
	if len(r.Body) == 0 {
		return nil
	}
	return errors.Wrap(json.Unmarshal(r.Body, v), "[Response.Decode]")
}

// DecodeData unmarshals the { "data": ... } envelope into v. Bodies without an
// envelope are decoded whole.
func (r *Response) DecodeData(v any) error {
	if len(r.Body) == 0 {
		return nil
	}
	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(r.Body, &envelope); err != nil || len(envelope.Data) == 0 {
		return r.Decode(v)
	}
	return errors.Wrap(json.Unmarshal(envelope.Data, v), "[Response.DecodeData]")
}
