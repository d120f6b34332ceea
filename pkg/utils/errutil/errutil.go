package errutil

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/getsentry/sentry-go"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/polyconn/pkg/domain/model"
	"github.com/secmon-lab/polyconn/pkg/utils/logging"
)

// Handle logs the error with a message and reports it to Sentry.
// Used where a failure must not propagate, e.g. during provisioning.
func Handle(ctx context.Context, err error, msg string) {
	if err == nil {
		return
	}

	logger := logging.From(ctx)

	var ge *goerr.Error
	if errors.As(err, &ge) {
		logger.Error(msg,
			"error", err.Error(),
			"values", ge.Values(),
			"stack", ge.Stacks(),
		)
	} else {
		logger.Error(msg, "error", err.Error())
	}

	capture(ctx, err)
}

// StatusCode maps an error kind to its HTTP status
func StatusCode(kind string) int {
	switch kind {
	case model.KindValidation, model.KindUnsupportedProvider:
		return http.StatusBadRequest
	case model.KindAuth:
		return http.StatusUnauthorized
	case model.KindBlockedByPolicy:
		return http.StatusForbidden
	case model.KindNotFound:
		return http.StatusNotFound
	case model.KindUpstream:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// HandleHTTP logs the error and writes a JSON error response carrying the
// machine readable kind and a message.
func HandleHTTP(ctx context.Context, w http.ResponseWriter, err error) {
	if err == nil {
		return
	}

	kind := model.ErrorKind(err)
	statusCode := StatusCode(kind)
	logger := logging.From(ctx)

	var ge *goerr.Error
	switch {
	case statusCode >= 500 && errors.As(err, &ge):
		logger.Error("HTTP error",
			"status", statusCode,
			"kind", kind,
			"error", err.Error(),
			"values", ge.Values(),
			"stack", ge.Stacks(),
		)
		capture(ctx, err)
	case statusCode >= 500:
		logger.Error("HTTP error",
			"status", statusCode,
			"kind", kind,
			"error", err.Error(),
		)
		capture(ctx, err)
	default:
		logger.Warn("HTTP client error",
			"status", statusCode,
			"kind", kind,
			"error", err.Error(),
		)
	}

	message := err.Error()
	if statusCode == http.StatusInternalServerError {
		message = "internal server error"
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(errorBody{
		Error: errorDetail{Kind: kind, Message: message},
	})
}

func capture(ctx context.Context, err error) {
	if hub := sentry.GetHubFromContext(ctx); hub != nil {
		hub.CaptureException(err)
		return
	}
	sentry.CaptureException(err)
}
