package handler

import (
	"encoding/json"
	"net/http"

	"github.com/sakif/second-brain/internal/validation"
)

// decodeAndValidate decodes the JSON request body into dst and runs the
// validator over it. On failure it writes the 400 response itself and
// returns false, so handlers read as:
//
//	var req signupRequest
//	if !decodeAndValidate(w, r, h.validate, &req) {
//	    return
//	}
func decodeAndValidate(w http.ResponseWriter, r *http.Request, v *validation.Validator, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "invalid JSON body",
		})
		return false
	}

	if err := v.Validate(dst); err != nil {
		writeError(w, err)
		return false
	}

	return true
}
