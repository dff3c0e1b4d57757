package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/julienschmidt/httprouter"
	"github.com/rs/zerolog/log"

	apiContext "visitr/internal/api/context"
	apperrors "visitr/internal/pkg/errors"
	"visitr/internal/pkg/response"
)

// maxBodyBytes bounds JSON request bodies.
const maxBodyBytes = 10 << 20

func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		response.WriteError(w, http.StatusBadRequest, "Invalid request body", "")
		return false
	}
	return true
}

func param(r *http.Request, name string) string {
	params, _ := r.Context().Value(apiContext.Params).(httprouter.Params)
	return params.ByName(name)
}

func queryInt(r *http.Request, name string) int {
	n, _ := strconv.Atoi(r.URL.Query().Get(name))
	return n
}

// writeError renders err as the JSON envelope. Causes of 500s are logged
// and only echoed back in development.
func writeError(w http.ResponseWriter, r *http.Request, err error, dev bool) {
	appErr := apperrors.As(err)

	detail := ""
	if appErr.Status >= http.StatusInternalServerError {
		log.Error().Err(err).Str("method", r.Method).Str("path", r.URL.Path).Msg(appErr.Message)
		if dev && appErr.Err != nil {
			detail = appErr.Err.Error()
		}
	}
	response.WriteError(w, appErr.Status, appErr.Message, detail)
}
