package slack

import (
	"time"

	"github.com/secmon-lab/polyconn/pkg/domain/model"
)

// Info describes the Slack Web API
var Info = model.ServiceInfo{
	Name:       "Slack",
	APIVersion: "web",
	BaseURL:    "https://slack.com/api/",
}

var (
	tier2 = &model.RateLimit{Requests: 20, Window: time.Minute}
	tier3 = &model.RateLimit{Requests: 50, Window: time.Minute}
	tier4 = &model.RateLimit{Requests: 100, Window: time.Minute}
)

var channelParam = model.EndpointParameter{
	Name:        "channel",
	Type:        "string",
	Required:    true,
	Description: "Conversation ID",
	Example:     "C0123456789",
}

var cursorParam = model.EndpointParameter{
	Name:        "cursor",
	Type:        "string",
	Description: "Pagination cursor from response_metadata.next_cursor",
}

// Endpoints returns the static catalog of Slack operations
func Endpoints() []model.DiscoveredEndpoint {
	return []model.DiscoveredEndpoint{
		{
			ID:             "slack.conversations.list",
			Name:           "List conversations",
			Description:    "Lists channels in the workspace",
			Path:           "/conversations.list",
			HTTPMethod:     "GET",
			Category:       "conversations",
			Authentication: "bearer",
			RateLimit:      tier2,
			Parameters: []model.EndpointParameter{
				{
					Name:    "types",
					Type:    "string",
					Enum:    []string{"public_channel", "private_channel", "mpim", "im"},
					Example: "public_channel",
				},
				{Name: "exclude_archived", Type: "boolean"},
				{Name: "limit", Type: "integer", Example: "200"},
				cursorParam,
			},
		},
		{
			ID:             "slack.conversations.info",
			Name:           "Get conversation info",
			Description:    "Retrieves metadata of a conversation",
			Path:           "/conversations.info",
			HTTPMethod:     "GET",
			Category:       "conversations",
			Authentication: "bearer",
			RateLimit:      tier3,
			Parameters: []model.EndpointParameter{
				channelParam,
				{Name: "include_num_members", Type: "boolean"},
			},
		},
		{
			ID:             "slack.conversations.history",
			Name:           "Get conversation history",
			Description:    "Fetches messages posted to a conversation",
			Path:           "/conversations.history",
			HTTPMethod:     "GET",
			Category:       "conversations",
			Subcategory:    "messages",
			Authentication: "bearer",
			RateLimit:      tier3,
			Parameters: []model.EndpointParameter{
				channelParam,
				{Name: "oldest", Type: "string", Description: "Start of time range as a message timestamp"},
				{Name: "latest", Type: "string", Description: "End of time range as a message timestamp"},
				{Name: "limit", Type: "integer", Example: "100"},
				cursorParam,
			},
		},
		{
			ID:             "slack.conversations.replies",
			Name:           "Get thread replies",
			Description:    "Fetches a thread of messages",
			Path:           "/conversations.replies",
			HTTPMethod:     "GET",
			Category:       "conversations",
			Subcategory:    "messages",
			Authentication: "bearer",
			RateLimit:      tier3,
			Parameters: []model.EndpointParameter{
				channelParam,
				{Name: "ts", Type: "string", Required: true, Description: "Timestamp of the parent message"},
				cursorParam,
			},
		},
		{
			ID:             "slack.users.info",
			Name:           "Get user info",
			Description:    "Retrieves a user profile",
			Path:           "/users.info",
			HTTPMethod:     "GET",
			Category:       "users",
			Authentication: "bearer",
			RateLimit:      tier4,
			Parameters: []model.EndpointParameter{
				{Name: "user", Type: "string", Required: true, Example: "U0123456789"},
			},
		},
		{
			ID:             "slack.users.list",
			Name:           "List users",
			Description:    "Lists members of the workspace",
			Path:           "/users.list",
			HTTPMethod:     "GET",
			Category:       "users",
			Authentication: "bearer",
			RateLimit:      tier2,
			Parameters:     []model.EndpointParameter{cursorParam},
		},
		{
			ID:             "slack.chat.postMessage",
			Name:           "Post message",
			Description:    "Sends a message to a conversation",
			Path:           "/chat.postMessage",
			HTTPMethod:     "POST",
			Category:       "chat",
			Authentication: "bearer",
			Parameters: []model.EndpointParameter{
				channelParam,
				{Name: "text", Type: "string", Required: true},
				{Name: "thread_ts", Type: "string"},
			},
		},
	}
}
