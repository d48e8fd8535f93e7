package client

import (
	"encoding/json"
	"net/url"

	"github.com/pkg/errors"
)

// Request describes one logical backend call, the unit the retry budget applies to.
type Request struct {
	Method string
	Path   string
	Body   any // JSON encoded; []byte and json.RawMessage are sent as is
	Params url.Values
	// Anonymous requests carry no bearer token and are never intercepted.
	Anonymous bool
}

func (r *Request) encodeBody() ([]byte, error) {
	switch b := r.Body.(type) {
	case nil:
		return nil, nil
	case []byte:
		return b, nil
	case json.RawMessage:
		return b, nil
	default:
		data, err := json.Marshal(b)
		if err != nil {
			return nil, errors.Wrap(err, "[Request.encodeBody]")
		}
		return data, nil
	}
}

func (r *Request) url(baseURL string) string {
	u := baseURL + r.Path
	if len(r.Params) > 0 {
		u += "?" + r.Params.Encode()
	}
	return u
}
