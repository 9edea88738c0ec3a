package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"prizepool/domain/entities"

	log "github.com/sirupsen/logrus"
)

type httpError struct {
	cause  error
	status int
}

func (e *httpError) Error() string {
	return e.cause.Error()
}

func (e *httpError) Unwrap() error {
	return e.cause
}

// BadRequest marks an error as a malformed request
func BadRequest(cause error) error {
	return &httpError{cause: cause, status: http.StatusBadRequest}
}

// ErrorBody is the JSON body of a failed request
type ErrorBody struct {
	Error string             `json:"error"`
	Kind  entities.ErrorKind `json:"kind,omitempty"`
}

// HandlerFunc is an http.HandlerFunc that returns an error
type HandlerFunc func(http.ResponseWriter, *http.Request) error

// WrapHandlerFunc converts a HandlerFunc to an http.HandlerFunc. Domain errors
// are mapped to a status by kind; anything else is a 500.
func WrapHandlerFunc(f HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := f(w, r)
		if err == nil {
			return
		}

		status, kind := statusOf(err)
		if status >= http.StatusInternalServerError {
			log.WithFields(log.Fields{
				"path":  r.URL.Path,
				"error": err,
			}).Error("Request failed")
		}
		w.Header().Set("Content-Type", JSONContentType)
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(ErrorBody{Error: err.Error(), Kind: kind})
	}
}

func statusOf(err error) (int, entities.ErrorKind) {
	var he *httpError
	if errors.As(err, &he) {
		return he.status, entities.KindInvalidInput
	}

	kind := entities.KindOf(err)
	switch kind {
	case entities.KindUnauthorized:
		return http.StatusForbidden, kind
	case entities.KindStopped, entities.KindPrecondition:
		return http.StatusConflict, kind
	case entities.KindInvalidInput:
		return http.StatusBadRequest, kind
	case entities.KindArithmetic:
		return http.StatusUnprocessableEntity, kind
	}
	return http.StatusInternalServerError, ""
}

// JSONContentType is the content type of every response
const JSONContentType = "application/json; charset=utf-8"

// ParseJSON decodes a JSON object, rejecting unknown fields
func ParseJSON(r io.Reader, v any) error {
	decoder := json.NewDecoder(r)
	decoder.DisallowUnknownFields()
	return decoder.Decode(v)
}

// WriteJSON responds with obj encoded as JSON
func WriteJSON(w http.ResponseWriter, obj any) error {
	w.Header().Set("Content-Type", JSONContentType)
	return json.NewEncoder(w).Encode(obj)
}
