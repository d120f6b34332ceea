package usecase

import (
	"github.com/secmon-lab/polyconn/pkg/domain/model"
)

// EnvironmentUseCase reports which providers have complete credentials in
// the process environment
type EnvironmentUseCase struct {
	credentials map[model.Provider]model.Credentials
}

func NewEnvironmentUseCase(creds map[model.Provider]model.Credentials) *EnvironmentUseCase {
	configured := make(map[model.Provider]model.Credentials, len(creds))
	for p, c := range creds {
		if model.ValidateCredentials(p, c) == nil {
			configured[p] = c
		}
	}
	return &EnvironmentUseCase{credentials: configured}
}

// Services returns the configured flag of every provider
func (uc *EnvironmentUseCase) Services() map[model.Provider]bool {
	result := make(map[model.Provider]bool)
	for _, p := range model.Providers() {
		_, ok := uc.credentials[p]
		result[p] = ok
	}
	return result
}

// Credentials returns the complete credential set of provider
func (uc *EnvironmentUseCase) Credentials(provider model.Provider) (model.Credentials, bool) {
	c, ok := uc.credentials[provider]
	return c, ok
}

// Configured returns the providers with credentials in the fixed provider order
func (uc *EnvironmentUseCase) Configured() []model.Provider {
	var result []model.Provider
	for _, p := range model.Providers() {
		if _, ok := uc.credentials[p]; ok {
			result = append(result, p)
		}
	}
	return result
}
