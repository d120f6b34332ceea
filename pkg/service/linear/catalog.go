package linear

import (
	"time"

	"github.com/secmon-lab/polyconn/pkg/domain/model"
)

var Info = model.ServiceInfo{
	Name:       "Linear",
	APIVersion: "graphql",
	BaseURL:    DefaultEndpoint,
}

var rateLimit = &model.RateLimit{Requests: 1500, Window: time.Hour}

// Endpoints lists the GraphQL root fields the adapter relies on. Every
// operation is a POST against the single GraphQL endpoint.
func Endpoints() []model.DiscoveredEndpoint {
	firstParam := model.EndpointParameter{Name: "first", Type: "integer", Description: "Page size, maximum 250"}
	afterParam := model.EndpointParameter{Name: "after", Type: "string", Description: "Cursor of the previous page"}

	return []model.DiscoveredEndpoint{
		{
			ID:             "linear.teams",
			Name:           "List teams",
			Description:    "Lists teams of the workspace",
			Path:           "/graphql#teams",
			HTTPMethod:     "POST",
			Category:       "teams",
			Authentication: "api_key",
			RateLimit:      rateLimit,
			Parameters:     []model.EndpointParameter{firstParam, afterParam},
		},
		{
			ID:             "linear.team",
			Name:           "Get team",
			Description:    "Retrieves a team with its workflow states",
			Path:           "/graphql#team",
			HTTPMethod:     "POST",
			Category:       "teams",
			Authentication: "api_key",
			RateLimit:      rateLimit,
			Parameters: []model.EndpointParameter{
				{Name: "id", Type: "string", Required: true},
			},
		},
		{
			ID:             "linear.issues",
			Name:           "List issues",
			Description:    "Lists issues with optional filter",
			Path:           "/graphql#issues",
			HTTPMethod:     "POST",
			Category:       "issues",
			Authentication: "api_key",
			RateLimit:      rateLimit,
			Parameters: []model.EndpointParameter{
				{Name: "filter", Type: "object"},
				{Name: "orderBy", Type: "string", Enum: []string{"createdAt", "updatedAt"}},
				firstParam,
				afterParam,
			},
		},
		{
			ID:             "linear.issueCreate",
			Name:           "Create issue",
			Description:    "Creates an issue in a team",
			Path:           "/graphql#issueCreate",
			HTTPMethod:     "POST",
			Category:       "issues",
			Subcategory:    "mutations",
			Authentication: "api_key",
			RateLimit:      rateLimit,
			Parameters: []model.EndpointParameter{
				{Name: "teamId", Type: "string", Required: true},
				{Name: "title", Type: "string", Required: true},
				{Name: "description", Type: "string"},
			},
		},
		{
			ID:             "linear.user",
			Name:           "Get user",
			Description:    "Retrieves a workspace member",
			Path:           "/graphql#user",
			HTTPMethod:     "POST",
			Category:       "users",
			Authentication: "api_key",
			RateLimit:      rateLimit,
			Parameters: []model.EndpointParameter{
				{Name: "id", Type: "string", Required: true},
			},
		},
	}
}
