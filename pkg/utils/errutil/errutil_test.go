package errutil_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/polyconn/pkg/domain/model"
	"github.com/secmon-lab/polyconn/pkg/utils/errutil"
)

func TestHandleHTTP(t *testing.T) {
	testCases := []struct {
		name       string
		err        error
		wantStatus int
		wantKind   string
	}{
		{"not found", goerr.Wrap(model.ErrNotFound, "connection not found"), http.StatusNotFound, model.KindNotFound},
		{"validation", goerr.Wrap(model.ErrValidation, "bad input"), http.StatusBadRequest, model.KindValidation},
		{"blocked", model.ErrBlockedByPolicy, http.StatusForbidden, model.KindBlockedByPolicy},
		{"upstream", model.NewUpstreamError(model.ProviderSlack, "fetch", goerr.New("timeout")), http.StatusBadGateway, model.KindUpstream},
		{"auth", model.NewAuthError(model.ProviderNotion, "list", goerr.New("unauthorized")), http.StatusUnauthorized, model.KindAuth},
		{"internal", goerr.New("boom"), http.StatusInternalServerError, model.KindInternal},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			errutil.HandleHTTP(context.Background(), w, tc.err)

			gt.Value(t, w.Code).Equal(tc.wantStatus)
			gt.Value(t, w.Header().Get("Content-Type")).Equal("application/json")

			var body struct {
				Error struct {
					Kind    string `json:"kind"`
					Message string `json:"message"`
				} `json:"error"`
			}
			gt.NoError(t, json.Unmarshal(w.Body.Bytes(), &body)).Required()
			gt.Value(t, body.Error.Kind).Equal(tc.wantKind)
			gt.String(t, body.Error.Message).NotEqual("")
		})
	}
}
