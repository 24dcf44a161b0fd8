package resource

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/yanizio/apikit/internal/apperr"
)

// MaxBody caps request bodies read by Decode.
const MaxBody = 1 << 20

// Decode reads one JSON object from r into dst.  Unknown fields, an empty
// body, and malformed JSON are all apperr.KindInvalid.
func Decode(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, MaxBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return apperr.Invalid("Request body is empty.")
		}
		return apperr.Invalid("Malformed JSON body.")
	}
	return nil
}
