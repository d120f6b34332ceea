package cli

import (
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/polyconn/pkg/cli/config"
	"github.com/secmon-lab/polyconn/pkg/domain/interfaces"
	"github.com/secmon-lab/polyconn/pkg/service/adapter"
	"github.com/secmon-lab/polyconn/pkg/usecase"
)

func newUseCases(repo interfaces.Repository, appCfg *config.AppConfig, providers *config.Providers) (*usecase.UseCases, error) {
	provision, err := appCfg.Configure()
	if err != nil {
		return nil, goerr.Wrap(err, "failed to load configuration")
	}

	creds, err := providers.Credentials()
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read provider credentials")
	}

	return usecase.New(repo,
		usecase.WithAdapterFactory(adapter.New(adapter.WithTimeout(providers.Timeout()))),
		usecase.WithEnvironment(creds),
		usecase.WithProvision(provision),
	), nil
}
