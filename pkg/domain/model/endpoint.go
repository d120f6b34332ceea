package model

import (
	"encoding/json"
	"time"
)

// DiscoveredEndpoint describes one operation a provider exposes. It is
// metadata only and never dispatches a request.
type DiscoveredEndpoint struct {
	ID             string              `json:"id"`
	Name           string              `json:"name"`
	Description    string              `json:"description"`
	Path           string              `json:"path"`
	HTTPMethod     string              `json:"httpMethod"`
	Category       string              `json:"category"`
	Subcategory    string              `json:"subcategory,omitempty"`
	Parameters     []EndpointParameter `json:"parameters"`
	Authentication string              `json:"authentication,omitempty"`
	RateLimit      *RateLimit          `json:"rateLimit,omitempty"`
}

type EndpointParameter struct {
	Name        string   `json:"name"`
	Type        string   `json:"type"`
	Required    bool     `json:"required"`
	Description string   `json:"description,omitempty"`
	Enum        []string `json:"enum,omitempty"`
	Example     string   `json:"example,omitempty"`
}

// RateLimit is the documented quota of an endpoint: Requests per Window
type RateLimit struct {
	Requests int
	Window   time.Duration
}

func (r RateLimit) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Requests int    `json:"requests"`
		Window   string `json:"window"`
	}{
		Requests: r.Requests,
		Window:   r.Window.String(),
	})
}

// ServiceInfo is static descriptive metadata of a provider API
type ServiceInfo struct {
	Name       string `json:"name"`
	APIVersion string `json:"apiVersion"`
	BaseURL    string `json:"baseUrl"`
}
