package google

import (
	"context"
	"net/mail"
	"strings"
	"sync"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/polyconn/pkg/domain/interfaces"
	"github.com/secmon-lab/polyconn/pkg/domain/model"
	"github.com/secmon-lab/polyconn/pkg/utils/logging"
	"google.golang.org/api/gmail/v1"
)

const (
	gmailUser = "me"

	SourceTypeLabel = "label"
	GmailPrimaryKey = "messages"
)

var metadataHeaders = []string{"From", "To", "Subject", "Date"}

// GmailAdapter reads Gmail labels and message metadata. Message bodies are never fetched.
type GmailAdapter struct {
	service func() (*gmail.Service, error)
	limit   int64
}

var _ interfaces.Adapter = &GmailAdapter{}

func NewGmail(creds model.GoogleCredentials, opts ...Option) (*GmailAdapter, error) {
	if err := creds.Validate(); err != nil {
		return nil, err
	}
	o := buildOptions(opts)

	return &GmailAdapter{
		service: sync.OnceValues(func() (*gmail.Service, error) {
			svc, err := gmail.NewService(context.Background(), clientOptions(creds, o)...)
			if err != nil {
				return nil, goerr.Wrap(err, "failed to create gmail service")
			}
			return svc, nil
		}),
		limit: o.limit,
	}, nil
}

func (a *GmailAdapter) ServiceInfo() model.ServiceInfo {
	return GmailInfo
}

// ListSources returns the mailbox labels
func (a *GmailAdapter) ListSources(ctx context.Context) ([]model.ExternalSource, error) {
	svc, err := a.service()
	if err != nil {
		return nil, model.NewUpstreamError(model.ProviderGmail, "init client", err)
	}

	resp, err := svc.Users.Labels.List(gmailUser).Context(ctx).Do()
	if err != nil {
		return nil, wrapError(model.ProviderGmail, "list labels", err)
	}

	sources := make([]model.ExternalSource, 0, len(resp.Labels))
	for _, l := range resp.Labels {
		sources = append(sources, model.ExternalSource{
			ID:   l.Id,
			Name: l.Name,
			Type: SourceTypeLabel,
			Metadata: map[string]any{
				"label_type": l.Type,
			},
		})
	}
	return sources, nil
}

// GmailRaw is the native payload of one label
type GmailRaw struct {
	Label      *gmail.Label
	MessageIDs []string
	// Messages maps every listed ID to its metadata, nil when the lookup failed
	Messages map[string]*gmail.Message
}

func (r *GmailRaw) Provider() model.Provider {
	return model.ProviderGmail
}

// FetchRaw reads label counters and header metadata of its newest messages
func (a *GmailAdapter) FetchRaw(ctx context.Context, sourceID string) (model.RawData, error) {
	svc, err := a.service()
	if err != nil {
		return nil, model.NewUpstreamError(model.ProviderGmail, "init client", err)
	}

	label, err := svc.Users.Labels.Get(gmailUser, sourceID).Context(ctx).Do()
	if err != nil {
		return nil, wrapError(model.ProviderGmail, "get label", err)
	}

	list, err := svc.Users.Messages.List(gmailUser).
		LabelIds(sourceID).
		MaxResults(a.limit).
		Context(ctx).
		Do()
	if err != nil {
		return nil, wrapError(model.ProviderGmail, "list messages", err)
	}

	raw := &GmailRaw{
		Label:      label,
		MessageIDs: make([]string, 0, len(list.Messages)),
		Messages:   make(map[string]*gmail.Message, len(list.Messages)),
	}

	for _, ref := range list.Messages {
		raw.MessageIDs = append(raw.MessageIDs, ref.Id)

		msg, err := svc.Users.Messages.Get(gmailUser, ref.Id).
			Format("metadata").
			MetadataHeaders(metadataHeaders...).
			Context(ctx).
			Do()
		if err != nil {
			logging.From(ctx).Warn("failed to get gmail message, using placeholder",
				"message_id", ref.Id,
				"label_id", sourceID,
				"error", err.Error(),
			)
			raw.Messages[ref.Id] = nil
			continue
		}
		raw.Messages[ref.Id] = msg
	}

	return raw, nil
}

// Normalize converts a *GmailRaw into label_info, messages and senders
func (a *GmailAdapter) Normalize(raw model.RawData) (model.CanonicalData, error) {
	r, ok := raw.(*GmailRaw)
	if !ok || r == nil || r.Label == nil {
		return nil, goerr.Wrap(model.ErrValidation, "raw data is not a gmail payload")
	}

	senders := make(map[string]any)
	messages := make([]map[string]any, 0, len(r.MessageIDs))

	for _, id := range r.MessageIDs {
		msg := r.Messages[id]
		if msg == nil {
			messages = append(messages, model.Placeholder(id))
			continue
		}

		headers := messageHeaders(msg)
		entry := map[string]any{
			"id":            msg.Id,
			"thread_id":     msg.ThreadId,
			"snippet":       msg.Snippet,
			"internal_date": msg.InternalDate,
			"label_ids":     msg.LabelIds,
			"subject":       headers["Subject"],
			"to":            headers["To"],
			"date":          headers["Date"],
		}

		if from := headers["From"]; from != "" {
			sender := parseSender(from)
			entry["from"] = sender["id"]
			senders[sender["id"].(string)] = sender
		}

		messages = append(messages, entry)
	}

	return model.CanonicalData{
		"label_info": map[string]any{
			"id":              r.Label.Id,
			"name":            r.Label.Name,
			"type":            r.Label.Type,
			"messages_total":  r.Label.MessagesTotal,
			"messages_unread": r.Label.MessagesUnread,
			"threads_total":   r.Label.ThreadsTotal,
		},
		GmailPrimaryKey: messages,
		"senders":       senders,
	}, nil
}

func messageHeaders(msg *gmail.Message) map[string]string {
	out := make(map[string]string)
	if msg.Payload == nil {
		return out
	}
	for _, h := range msg.Payload.Headers {
		out[h.Name] = h.Value
	}
	return out
}

// parseSender keys a sender by address; unparsable headers are kept verbatim
func parseSender(from string) map[string]any {
	addr, err := mail.ParseAddress(from)
	if err != nil {
		from = strings.TrimSpace(from)
		return map[string]any{"id": from, "name": from, "email": ""}
	}
	return map[string]any{
		"id":    strings.ToLower(addr.Address),
		"name":  addr.Name,
		"email": addr.Address,
	}
}
