package discord_test

import (
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/polyconn/pkg/service/discord"
)

func TestEndpoints(t *testing.T) {
	endpoints := discord.Endpoints()
	gt.Array(t, endpoints).Length(5)

	for _, ep := range endpoints {
		gt.String(t, ep.Path).NotEqual("")
		gt.Bool(t, len(ep.Parameters) > 0).True()
	}
	gt.Value(t, discord.Info.APIVersion).Equal("v10")
}
