package api

import (
	"encoding/json"
	"mime"
	"net/http"
	"strings"

	"github.com/fxamacker/cbor/v2"

	"github.com/o2calc/o2calc/pkg/types"
)

// ContentTypeCBOR is the media type for CBOR-encoded responses.
const ContentTypeCBOR = "application/cbor"

// wantsCBOR reports whether the request's Accept header lists CBOR.
func wantsCBOR(r *http.Request) bool {
	for _, part := range strings.Split(r.Header.Get("Accept"), ",") {
		mt, _, err := mime.ParseMediaType(strings.TrimSpace(part))
		if err == nil && mt == ContentTypeCBOR {
			return true
		}
	}
	return false
}

func writeResp(w http.ResponseWriter, r *http.Request, code int, v interface{}) {
	if wantsCBOR(r) {
		data, err := cbor.Marshal(v)
		if err == nil {
			w.Header().Set("Content-Type", ContentTypeCBOR)
			w.WriteHeader(code)
			w.Write(data) //nolint:errcheck
			return
		}
		// Fall through to JSON; every payload type is JSON-encodable.
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

func writeErr(w http.ResponseWriter, r *http.Request, code int, msg string) {
	writeResp(w, r, code, types.ErrorResponse{Error: msg})
}
