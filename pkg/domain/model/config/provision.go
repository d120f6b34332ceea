package config

import "github.com/secmon-lab/polyconn/pkg/domain/model"

// DefaultOwnerID owns every connection created by the provisioner
const DefaultOwnerID = "1"

// ProvisionSource is a preferred default data source for one provider
type ProvisionSource struct {
	Provider   model.Provider
	SourceID   string
	SourceType string
	Name       string
}

// Provision holds the auto-provisioning settings
type Provision struct {
	OwnerID string
	Sources []ProvisionSource
}

// Owner returns the configured owner or DefaultOwnerID
func (p *Provision) Owner() string {
	if p == nil || p.OwnerID == "" {
		return DefaultOwnerID
	}
	return p.OwnerID
}

// SourceFor returns the first configured source of provider
func (p *Provision) SourceFor(provider model.Provider) (ProvisionSource, bool) {
	if p == nil {
		return ProvisionSource{}, false
	}
	for _, s := range p.Sources {
		if s.Provider == provider && s.SourceID != "" {
			return s, true
		}
	}
	return ProvisionSource{}, false
}
