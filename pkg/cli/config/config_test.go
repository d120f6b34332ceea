package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/polyconn/pkg/cli/config"
	"github.com/secmon-lab/polyconn/pkg/domain/model"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	gt.NoError(t, os.WriteFile(path, []byte(content), 0600)).Required()
	return path
}

func TestLoadProvision(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr error
	}{
		{
			name: "owner and sources",
			content: `
[provision]
owner_id = "42"

[[provision.sources]]
provider = "slack"
source_id = "C001"
source_type = "channel"
name = "incident-room"

[[provision.sources]]
provider = "notion"
source_id = "db-1"
`,
		},
		{
			name:    "empty file",
			content: "",
		},
		{
			name: "unknown provider",
			content: `
[[provision.sources]]
provider = "myspace"
source_id = "x"
`,
			wantErr: config.ErrInvalidProvider,
		},
		{
			name: "missing source id",
			content: `
[[provision.sources]]
provider = "slack"
`,
			wantErr: config.ErrMissingSourceID,
		},
		{
			name: "duplicate source",
			content: `
[[provision.sources]]
provider = "slack"
source_id = "C001"

[[provision.sources]]
provider = "slack"
source_id = "C001"
`,
			wantErr: config.ErrDuplicateSource,
		},
		{
			name:    "malformed toml",
			content: `[provision`,
			wantErr: config.ErrInvalidConfigDoc,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prov, err := config.LoadProvision(writeConfig(t, tt.content))
			if tt.wantErr != nil {
				gt.Error(t, err).Is(tt.wantErr)
				return
			}
			gt.NoError(t, err).Required()
			gt.Value(t, prov).NotNil()
		})
	}
}

func TestLoadProvisionValues(t *testing.T) {
	prov, err := config.LoadProvision(writeConfig(t, `
[provision]
owner_id = "42"

[[provision.sources]]
provider = "slack"
source_id = "C001"
source_type = "channel"
name = "incident-room"
`))
	gt.NoError(t, err).Required()

	gt.Value(t, prov.Owner()).Equal("42")
	src, ok := prov.SourceFor(model.ProviderSlack)
	gt.Bool(t, ok).True()
	gt.Value(t, src.SourceID).Equal("C001")
	gt.Value(t, src.SourceType).Equal("channel")
	gt.Value(t, src.Name).Equal("incident-room")

	_, ok = prov.SourceFor(model.ProviderNotion)
	gt.Bool(t, ok).False()
}

func TestLoadProvisionNotFound(t *testing.T) {
	_, err := config.LoadProvision(filepath.Join(t.TempDir(), "missing.toml"))
	gt.Error(t, err).Is(config.ErrConfigNotFound)
}

func TestAppConfigWithoutFile(t *testing.T) {
	var cfg config.AppConfig
	prov, err := cfg.Configure()
	gt.NoError(t, err).Required()
	gt.Value(t, prov.Owner()).Equal("1")
}
