package model

import (
	"slices"

	"github.com/m-mizutani/goerr/v2"
)

// Provider identifies one external third-party service
type Provider string

const (
	ProviderSlack   Provider = "slack"
	ProviderNotion  Provider = "notion"
	ProviderLinear  Provider = "linear"
	ProviderGDrive  Provider = "gdrive"
	ProviderGitHub  Provider = "github"
	ProviderGmail   Provider = "gmail"
	ProviderGCal    Provider = "gcal"
	ProviderDiscord Provider = "discord"
)

var providers = []Provider{
	ProviderSlack,
	ProviderNotion,
	ProviderLinear,
	ProviderGDrive,
	ProviderGitHub,
	ProviderGmail,
	ProviderGCal,
	ProviderDiscord,
}

// Providers returns every supported provider in a fixed order
func Providers() []Provider {
	return slices.Clone(providers)
}

// Validate checks that p is a supported provider
func (p Provider) Validate() error {
	if !slices.Contains(providers, p) {
		return goerr.Wrap(ErrValidation, "unknown provider", goerr.V(ProviderKey, p))
	}
	return nil
}

// ParseProvider converts a string into a Provider
func ParseProvider(s string) (Provider, error) {
	p := Provider(s)
	if err := p.Validate(); err != nil {
		return "", err
	}
	return p, nil
}

func (p Provider) String() string {
	return string(p)
}

// IsGoogle reports whether p is one of the Google Workspace providers sharing OAuth2 credentials
func (p Provider) IsGoogle() bool {
	return p == ProviderGDrive || p == ProviderGmail || p == ProviderGCal
}
