package httptransport

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	dErrors "trustgraph/pkg/domain-errors"
)

// errorBody is the JSON envelope every failed request gets. The numeric code
// is the stable discriminant clients should branch on; the message is
// advisory and may change between releases.
type errorBody struct {
	Error struct {
		Code    string `json:"code"`
		Number  int    `json:"number"`
		Message string `json:"message"`
	} `json:"error"`
}

func httpStatus(code dErrors.Code) int {
	switch code {
	case dErrors.CodeInvalidInput, dErrors.CodeZeroAddress:
		return http.StatusBadRequest
	case dErrors.CodeNotAuthorized, dErrors.CodeNotTrusted:
		return http.StatusForbidden
	case dErrors.CodeNotFound:
		return http.StatusNotFound
	case dErrors.CodeAlreadyExists, dErrors.CodeAlreadyVerified:
		return http.StatusConflict
	case dErrors.CodeInvalidCredential:
		return http.StatusUnprocessableEntity
	case dErrors.CodePaused, dErrors.CodeMisconfiguredDependency:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, err error) {
	code := dErrors.CodeOf(err)
	var body errorBody
	body.Error.Code = string(code)
	body.Error.Number = code.Number()
	body.Error.Message = err.Error()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(httpStatus(code))
	_ = json.NewEncoder(w).Encode(body)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// pageParams reads limit and offset from the query string. Both default to
// zero; a zero limit yields an empty page.
func pageParams(r *http.Request) (limit, offset uint64, err error) {
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err = strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return 0, 0, dErrors.Wrap(dErrors.CodeInvalidInput, "invalid limit", err)
		}
	}
	if raw := r.URL.Query().Get("offset"); raw != "" {
		offset, err = strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return 0, 0, dErrors.Wrap(dErrors.CodeInvalidInput, "invalid offset", err)
		}
	}
	return limit, offset, nil
}

// decodeJSON rejects malformed and trailing-garbage bodies up front so
// handlers only see fully parsed requests.
func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return dErrors.Wrap(dErrors.CodeInvalidInput, "invalid request body", err)
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return dErrors.New(dErrors.CodeInvalidInput, "request body must contain a single JSON object")
	}
	return nil
}
