package notion

import (
	"time"

	"github.com/secmon-lab/polyconn/pkg/domain/model"
)

// Info describes the Notion public API
var Info = model.ServiceInfo{
	Name:       "Notion",
	APIVersion: "2022-06-28",
	BaseURL:    "https://api.notion.com/v1",
}

// Notion allows an average of three requests per second per integration
var rateLimit = &model.RateLimit{Requests: 3, Window: time.Second}

var (
	databaseIDParam = model.EndpointParameter{
		Name:     "database_id",
		Type:     "string",
		Required: true,
		Example:  "668d797c-76fa-4934-9b05-ad288df2d136",
	}
	pageSizeParam = model.EndpointParameter{
		Name:        "page_size",
		Type:        "integer",
		Description: "Maximum 100",
	}
	startCursorParam = model.EndpointParameter{
		Name: "start_cursor",
		Type: "string",
	}
)

func Endpoints() []model.DiscoveredEndpoint {
	return []model.DiscoveredEndpoint{
		{
			ID:             "notion.search",
			Name:           "Search",
			Description:    "Searches pages and databases shared with the integration",
			Path:           "/search",
			HTTPMethod:     "POST",
			Category:       "search",
			Authentication: "bearer",
			RateLimit:      rateLimit,
			Parameters: []model.EndpointParameter{
				{Name: "query", Type: "string"},
				{Name: "filter.value", Type: "string", Enum: []string{"page", "database"}},
				pageSizeParam,
				startCursorParam,
			},
		},
		{
			ID:             "notion.databases.retrieve",
			Name:           "Retrieve a database",
			Description:    "Retrieves a database schema",
			Path:           "/databases/{database_id}",
			HTTPMethod:     "GET",
			Category:       "databases",
			Authentication: "bearer",
			RateLimit:      rateLimit,
			Parameters:     []model.EndpointParameter{databaseIDParam},
		},
		{
			ID:             "notion.databases.query",
			Name:           "Query a database",
			Description:    "Lists pages of a database with optional filter and sorts",
			Path:           "/databases/{database_id}/query",
			HTTPMethod:     "POST",
			Category:       "databases",
			Subcategory:    "pages",
			Authentication: "bearer",
			RateLimit:      rateLimit,
			Parameters: []model.EndpointParameter{
				databaseIDParam,
				{Name: "filter", Type: "object"},
				{Name: "sorts", Type: "array"},
				pageSizeParam,
				startCursorParam,
			},
		},
		{
			ID:             "notion.pages.retrieve",
			Name:           "Retrieve a page",
			Description:    "Retrieves page properties",
			Path:           "/pages/{page_id}",
			HTTPMethod:     "GET",
			Category:       "pages",
			Authentication: "bearer",
			RateLimit:      rateLimit,
			Parameters: []model.EndpointParameter{
				{Name: "page_id", Type: "string", Required: true},
			},
		},
		{
			ID:             "notion.blocks.children.list",
			Name:           "Retrieve block children",
			Description:    "Lists the content blocks of a page or block",
			Path:           "/blocks/{block_id}/children",
			HTTPMethod:     "GET",
			Category:       "blocks",
			Authentication: "bearer",
			RateLimit:      rateLimit,
			Parameters: []model.EndpointParameter{
				{Name: "block_id", Type: "string", Required: true},
				pageSizeParam,
				startCursorParam,
			},
		},
		{
			ID:             "notion.users.retrieve",
			Name:           "Retrieve a user",
			Description:    "Retrieves a workspace member or bot",
			Path:           "/users/{user_id}",
			HTTPMethod:     "GET",
			Category:       "users",
			Authentication: "bearer",
			RateLimit:      rateLimit,
			Parameters: []model.EndpointParameter{
				{Name: "user_id", Type: "string", Required: true},
			},
		},
	}
}
