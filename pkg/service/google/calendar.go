package google

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/polyconn/pkg/domain/interfaces"
	"github.com/secmon-lab/polyconn/pkg/domain/model"
	"google.golang.org/api/calendar/v3"
)

const (
	SourceTypeCalendar = "calendar"
	CalendarPrimaryKey = "events"
)

// CalendarAdapter reads upcoming events of Google calendars
type CalendarAdapter struct {
	service func() (*calendar.Service, error)
	limit   int64
	now     func() time.Time
}

var _ interfaces.Adapter = &CalendarAdapter{}

func NewCalendar(creds model.GoogleCredentials, opts ...Option) (*CalendarAdapter, error) {
	if err := creds.Validate(); err != nil {
		return nil, err
	}
	o := buildOptions(opts)

	return &CalendarAdapter{
		service: sync.OnceValues(func() (*calendar.Service, error) {
			svc, err := calendar.NewService(context.Background(), clientOptions(creds, o)...)
			if err != nil {
				return nil, goerr.Wrap(err, "failed to create calendar service")
			}
			return svc, nil
		}),
		limit: o.limit,
		now:   time.Now,
	}, nil
}

func (a *CalendarAdapter) ServiceInfo() model.ServiceInfo {
	return CalendarInfo
}

// ListSources returns the user's calendar list
func (a *CalendarAdapter) ListSources(ctx context.Context) ([]model.ExternalSource, error) {
	svc, err := a.service()
	if err != nil {
		return nil, model.NewUpstreamError(model.ProviderGCal, "init client", err)
	}

	sources := make([]model.ExternalSource, 0)
	var pageToken string
	for {
		call := svc.CalendarList.List().Context(ctx)
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}
		resp, err := call.Do()
		if err != nil {
			return nil, wrapError(model.ProviderGCal, "list calendars", err)
		}

		for _, c := range resp.Items {
			sources = append(sources, model.ExternalSource{
				ID:   c.Id,
				Name: c.Summary,
				Type: SourceTypeCalendar,
				Metadata: map[string]any{
					"primary":     c.Primary,
					"access_role": c.AccessRole,
					"time_zone":   c.TimeZone,
				},
			})
		}

		if resp.NextPageToken == "" {
			break
		}
		pageToken = resp.NextPageToken
	}
	return sources, nil
}

// CalendarRaw is the native payload of one calendar
type CalendarRaw struct {
	Calendar *calendar.Calendar
	Events   []*calendar.Event
}

func (r *CalendarRaw) Provider() model.Provider {
	return model.ProviderGCal
}

// FetchRaw reads calendar metadata and events starting from now
func (a *CalendarAdapter) FetchRaw(ctx context.Context, sourceID string) (model.RawData, error) {
	svc, err := a.service()
	if err != nil {
		return nil, model.NewUpstreamError(model.ProviderGCal, "init client", err)
	}

	cal, err := svc.Calendars.Get(sourceID).Context(ctx).Do()
	if err != nil {
		return nil, wrapError(model.ProviderGCal, "get calendar", err)
	}

	events, err := svc.Events.List(sourceID).
		TimeMin(a.now().UTC().Format(time.RFC3339)).
		SingleEvents(true).
		OrderBy("startTime").
		MaxResults(a.limit).
		Context(ctx).
		Do()
	if err != nil {
		return nil, wrapError(model.ProviderGCal, "list events", err)
	}

	return &CalendarRaw{Calendar: cal, Events: events.Items}, nil
}

// Normalize converts a *CalendarRaw into calendar_info, events and attendees
func (a *CalendarAdapter) Normalize(raw model.RawData) (model.CanonicalData, error) {
	r, ok := raw.(*CalendarRaw)
	if !ok || r == nil || r.Calendar == nil {
		return nil, goerr.Wrap(model.ErrValidation, "raw data is not a calendar payload")
	}

	attendees := make(map[string]any)
	events := make([]map[string]any, 0, len(r.Events))

	for _, ev := range r.Events {
		emails := make([]string, 0, len(ev.Attendees))
		for _, att := range ev.Attendees {
			if att.Email == "" {
				continue
			}
			id := strings.ToLower(att.Email)
			emails = append(emails, id)
			if _, ok := attendees[id]; !ok {
				attendees[id] = map[string]any{
					"id":    id,
					"name":  att.DisplayName,
					"email": att.Email,
				}
			}
		}

		entry := map[string]any{
			"id":          ev.Id,
			"summary":     ev.Summary,
			"description": ev.Description,
			"location":    ev.Location,
			"status":      ev.Status,
			"url":         ev.HtmlLink,
			"start":       eventTime(ev.Start),
			"end":         eventTime(ev.End),
			"attendees":   emails,
		}
		if ev.Organizer != nil {
			entry["organizer"] = ev.Organizer.Email
		}
		events = append(events, entry)
	}

	return model.CanonicalData{
		"calendar_info": map[string]any{
			"id":          r.Calendar.Id,
			"summary":     r.Calendar.Summary,
			"description": r.Calendar.Description,
			"time_zone":   r.Calendar.TimeZone,
		},
		CalendarPrimaryKey: events,
		"attendees":        attendees,
	}, nil
}

// eventTime returns the RFC3339 time of a timed event or the date of an all-day event
func eventTime(t *calendar.EventDateTime) string {
	if t == nil {
		return ""
	}
	if t.DateTime != "" {
		return t.DateTime
	}
	return t.Date
}
