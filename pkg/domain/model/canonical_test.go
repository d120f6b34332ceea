package model_test

import (
	"errors"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/polyconn/pkg/domain/model"
)

func TestCanonicalDataValidate(t *testing.T) {
	t.Run("empty primary list is valid", func(t *testing.T) {
		data := model.CanonicalData{
			"channel_info": map[string]any{"name": "general"},
			"messages":     []map[string]any{},
		}
		gt.NoError(t, data.Validate("messages"))
	})

	t.Run("nil primary list is invalid", func(t *testing.T) {
		var messages []map[string]any
		data := model.CanonicalData{
			"channel_info": map[string]any{"name": "general"},
			"messages":     messages,
		}
		gt.Value(t, data.Validate("messages")).NotNil()
	})

	t.Run("missing info entry is invalid", func(t *testing.T) {
		data := model.CanonicalData{"messages": []map[string]any{}}
		gt.Value(t, data.Validate("messages")).NotNil()
	})
}

func TestErrorKind(t *testing.T) {
	cause := errors.New("invalid_auth")

	testCases := []struct {
		name string
		err  error
		want string
	}{
		{"auth", model.NewAuthError(model.ProviderSlack, "list", cause), model.KindAuth},
		{"upstream", model.NewUpstreamError(model.ProviderLinear, "fetch", cause), model.KindUpstream},
		{"not found", model.ErrNotFound, model.KindNotFound},
		{"unsupported", model.ErrUnsupportedProvider, model.KindUnsupportedProvider},
		{"blocked", model.ErrBlockedByPolicy, model.KindBlockedByPolicy},
		{"unknown", cause, model.KindInternal},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			gt.Value(t, model.ErrorKind(tc.err)).Equal(tc.want)
		})
	}

	t.Run("provider error keeps its cause", func(t *testing.T) {
		err := model.NewAuthError(model.ProviderSlack, "list", cause)
		gt.Bool(t, errors.Is(err, cause)).True()
		gt.String(t, err.Error()).Contains("slack")
	})
}

func TestParseProvider(t *testing.T) {
	p, err := model.ParseProvider("gcal")
	gt.NoError(t, err).Required()
	gt.Value(t, p).Equal(model.ProviderGCal)
	gt.Bool(t, p.IsGoogle()).True()

	_, err = model.ParseProvider("myspace")
	gt.Error(t, err).Is(model.ErrValidation)
}
