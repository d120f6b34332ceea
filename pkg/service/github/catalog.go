package github

import (
	"time"

	"github.com/secmon-lab/polyconn/pkg/domain/model"
)

var Info = model.ServiceInfo{
	Name:       "GitHub",
	APIVersion: "2022-11-28",
	BaseURL:    "https://api.github.com",
}

var (
	restQuota    = &model.RateLimit{Requests: 5000, Window: time.Hour}
	graphqlQuota = &model.RateLimit{Requests: 5000, Window: time.Hour}

	ownerParam = model.EndpointParameter{Name: "owner", Type: "string", Required: true, Example: "octocat"}
	repoParam  = model.EndpointParameter{Name: "repo", Type: "string", Required: true, Example: "hello-world"}
	pageParams = []model.EndpointParameter{
		{Name: "per_page", Type: "integer", Description: "Maximum 100"},
		{Name: "page", Type: "integer"},
	}
)

func withPaging(params ...model.EndpointParameter) []model.EndpointParameter {
	return append(params, pageParams...)
}

func Endpoints() []model.DiscoveredEndpoint {
	return []model.DiscoveredEndpoint{
		{
			ID:             "github.installation.repositories",
			Name:           "List installation repositories",
			Description:    "Lists repositories accessible to the app installation",
			Path:           "/installation/repositories",
			HTTPMethod:     "GET",
			Category:       "apps",
			Authentication: "installation_token",
			RateLimit:      restQuota,
			Parameters:     withPaging(),
		},
		{
			ID:             "github.user.repos",
			Name:           "List user repositories",
			Description:    "Lists repositories of the authenticated user",
			Path:           "/user/repos",
			HTTPMethod:     "GET",
			Category:       "repos",
			Authentication: "oauth_token",
			RateLimit:      restQuota,
			Parameters: withPaging(
				model.EndpointParameter{Name: "visibility", Type: "string", Enum: []string{"all", "public", "private"}},
			),
		},
		{
			ID:             "github.repos.commits",
			Name:           "List commits",
			Description:    "Lists commits of a repository",
			Path:           "/repos/{owner}/{repo}/commits",
			HTTPMethod:     "GET",
			Category:       "repos",
			Subcategory:    "commits",
			Authentication: "token",
			RateLimit:      restQuota,
			Parameters: withPaging(
				ownerParam,
				repoParam,
				model.EndpointParameter{Name: "sha", Type: "string"},
				model.EndpointParameter{Name: "since", Type: "string", Example: "2024-01-01T00:00:00Z"},
			),
		},
		{
			ID:             "github.repos.contributors",
			Name:           "List contributors",
			Description:    "Lists contributors sorted by number of commits",
			Path:           "/repos/{owner}/{repo}/contributors",
			HTTPMethod:     "GET",
			Category:       "repos",
			Authentication: "token",
			RateLimit:      restQuota,
			Parameters:     withPaging(ownerParam, repoParam),
		},
		{
			ID:             "github.repos.issues",
			Name:           "List issues",
			Description:    "Lists issues and pull requests of a repository",
			Path:           "/repos/{owner}/{repo}/issues",
			HTTPMethod:     "GET",
			Category:       "issues",
			Authentication: "token",
			RateLimit:      restQuota,
			Parameters: withPaging(
				ownerParam,
				repoParam,
				model.EndpointParameter{Name: "state", Type: "string", Enum: []string{"open", "closed", "all"}},
			),
		},
		{
			ID:             "github.users.get",
			Name:           "Get user",
			Description:    "Gets a public user profile",
			Path:           "/users/{username}",
			HTTPMethod:     "GET",
			Category:       "users",
			Authentication: "token",
			RateLimit:      restQuota,
			Parameters: []model.EndpointParameter{
				{Name: "username", Type: "string", Required: true},
			},
		},
		{
			ID:             "github.graphql.repository",
			Name:           "Query repository",
			Description:    "Reads repository metadata through GraphQL",
			Path:           "/graphql",
			HTTPMethod:     "POST",
			Category:       "graphql",
			Authentication: "token",
			RateLimit:      graphqlQuota,
			Parameters: []model.EndpointParameter{
				{Name: "query", Type: "string", Required: true},
				{Name: "variables", Type: "object"},
			},
		},
	}
}
