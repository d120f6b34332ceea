package google

import (
	"time"

	"github.com/secmon-lab/polyconn/pkg/domain/model"
)

var (
	DriveInfo = model.ServiceInfo{
		Name:       "Google Drive",
		APIVersion: "v3",
		BaseURL:    "https://www.googleapis.com/drive/v3/",
	}
	GmailInfo = model.ServiceInfo{
		Name:       "Gmail",
		APIVersion: "v1",
		BaseURL:    "https://gmail.googleapis.com/gmail/v1/",
	}
	CalendarInfo = model.ServiceInfo{
		Name:       "Google Calendar",
		APIVersion: "v3",
		BaseURL:    "https://www.googleapis.com/calendar/v3/",
	}
)

var (
	driveQuota    = &model.RateLimit{Requests: 12000, Window: time.Minute}
	gmailQuota    = &model.RateLimit{Requests: 250, Window: time.Second}
	calendarQuota = &model.RateLimit{Requests: 600, Window: time.Minute}

	pageTokenParam = model.EndpointParameter{Name: "pageToken", Type: "string"}
)

func DriveEndpoints() []model.DiscoveredEndpoint {
	fileID := model.EndpointParameter{Name: "fileId", Type: "string", Required: true}

	return []model.DiscoveredEndpoint{
		{
			ID:             "gdrive.files.list",
			Name:           "List files",
			Description:    "Lists or searches files",
			Path:           "/files",
			HTTPMethod:     "GET",
			Category:       "files",
			Authentication: "oauth2",
			RateLimit:      driveQuota,
			Parameters: []model.EndpointParameter{
				{Name: "q", Type: "string", Description: "Search query", Example: "'root' in parents"},
				{Name: "orderBy", Type: "string", Example: "modifiedTime desc"},
				{Name: "pageSize", Type: "integer"},
				pageTokenParam,
			},
		},
		{
			ID:             "gdrive.files.get",
			Name:           "Get file",
			Description:    "Gets file metadata",
			Path:           "/files/{fileId}",
			HTTPMethod:     "GET",
			Category:       "files",
			Authentication: "oauth2",
			RateLimit:      driveQuota,
			Parameters:     []model.EndpointParameter{fileID, {Name: "fields", Type: "string"}},
		},
		{
			ID:             "gdrive.files.export",
			Name:           "Export file",
			Description:    "Exports a Google Workspace document to the requested MIME type",
			Path:           "/files/{fileId}/export",
			HTTPMethod:     "GET",
			Category:       "files",
			Subcategory:    "content",
			Authentication: "oauth2",
			RateLimit:      driveQuota,
			Parameters: []model.EndpointParameter{
				fileID,
				{Name: "mimeType", Type: "string", Required: true, Example: "text/plain"},
			},
		},
		{
			ID:             "gdrive.permissions.list",
			Name:           "List permissions",
			Description:    "Lists sharing permissions of a file",
			Path:           "/files/{fileId}/permissions",
			HTTPMethod:     "GET",
			Category:       "permissions",
			Authentication: "oauth2",
			RateLimit:      driveQuota,
			Parameters:     []model.EndpointParameter{fileID, pageTokenParam},
		},
	}
}

func GmailEndpoints() []model.DiscoveredEndpoint {
	userID := model.EndpointParameter{Name: "userId", Type: "string", Required: true, Example: "me"}

	return []model.DiscoveredEndpoint{
		{
			ID:             "gmail.users.labels.list",
			Name:           "List labels",
			Description:    "Lists labels in the mailbox",
			Path:           "/users/{userId}/labels",
			HTTPMethod:     "GET",
			Category:       "labels",
			Authentication: "oauth2",
			RateLimit:      gmailQuota,
			Parameters:     []model.EndpointParameter{userID},
		},
		{
			ID:             "gmail.users.messages.list",
			Name:           "List messages",
			Description:    "Lists message IDs in the mailbox",
			Path:           "/users/{userId}/messages",
			HTTPMethod:     "GET",
			Category:       "messages",
			Authentication: "oauth2",
			RateLimit:      gmailQuota,
			Parameters: []model.EndpointParameter{
				userID,
				{Name: "labelIds", Type: "array"},
				{Name: "q", Type: "string", Example: "from:alice@example.com"},
				{Name: "maxResults", Type: "integer"},
				pageTokenParam,
			},
		},
		{
			ID:             "gmail.users.messages.get",
			Name:           "Get message",
			Description:    "Gets a message",
			Path:           "/users/{userId}/messages/{id}",
			HTTPMethod:     "GET",
			Category:       "messages",
			Authentication: "oauth2",
			RateLimit:      gmailQuota,
			Parameters: []model.EndpointParameter{
				userID,
				{Name: "id", Type: "string", Required: true},
				{Name: "format", Type: "string", Enum: []string{"minimal", "full", "raw", "metadata"}},
			},
		},
		{
			ID:             "gmail.users.threads.get",
			Name:           "Get thread",
			Description:    "Gets all messages of a thread",
			Path:           "/users/{userId}/threads/{id}",
			HTTPMethod:     "GET",
			Category:       "threads",
			Authentication: "oauth2",
			RateLimit:      gmailQuota,
			Parameters: []model.EndpointParameter{
				userID,
				{Name: "id", Type: "string", Required: true},
			},
		},
	}
}

func CalendarEndpoints() []model.DiscoveredEndpoint {
	calendarID := model.EndpointParameter{Name: "calendarId", Type: "string", Required: true, Example: "primary"}

	return []model.DiscoveredEndpoint{
		{
			ID:             "gcal.calendarList.list",
			Name:           "List calendars",
			Description:    "Lists calendars on the user's calendar list",
			Path:           "/users/me/calendarList",
			HTTPMethod:     "GET",
			Category:       "calendars",
			Authentication: "oauth2",
			RateLimit:      calendarQuota,
			Parameters:     []model.EndpointParameter{pageTokenParam},
		},
		{
			ID:             "gcal.calendars.get",
			Name:           "Get calendar",
			Description:    "Gets calendar metadata",
			Path:           "/calendars/{calendarId}",
			HTTPMethod:     "GET",
			Category:       "calendars",
			Authentication: "oauth2",
			RateLimit:      calendarQuota,
			Parameters:     []model.EndpointParameter{calendarID},
		},
		{
			ID:             "gcal.events.list",
			Name:           "List events",
			Description:    "Lists events of a calendar",
			Path:           "/calendars/{calendarId}/events",
			HTTPMethod:     "GET",
			Category:       "events",
			Authentication: "oauth2",
			RateLimit:      calendarQuota,
			Parameters: []model.EndpointParameter{
				calendarID,
				{Name: "timeMin", Type: "string", Example: "2024-01-01T00:00:00Z"},
				{Name: "timeMax", Type: "string"},
				{Name: "singleEvents", Type: "boolean"},
				{Name: "orderBy", Type: "string", Enum: []string{"startTime", "updated"}},
				pageTokenParam,
			},
		},
		{
			ID:             "gcal.events.insert",
			Name:           "Create event",
			Description:    "Creates an event",
			Path:           "/calendars/{calendarId}/events",
			HTTPMethod:     "POST",
			Category:       "events",
			Authentication: "oauth2",
			RateLimit:      calendarQuota,
			Parameters: []model.EndpointParameter{
				calendarID,
				{Name: "summary", Type: "string"},
				{Name: "start", Type: "object", Required: true},
				{Name: "end", Type: "object", Required: true},
			},
		},
	}
}
