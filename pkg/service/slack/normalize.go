package slack

import (
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/polyconn/pkg/domain/model"
	"github.com/slack-go/slack"
)

// PrimaryKey is the canonical entry holding channel messages
const PrimaryKey = "messages"

// Normalize converts a *Raw into channel_info, messages and users
func (a *Adapter) Normalize(raw model.RawData) (model.CanonicalData, error) {
	r, ok := raw.(*Raw)
	if !ok || r == nil {
		return nil, goerr.Wrap(model.ErrValidation, "raw data is not a slack payload",
			goerr.V(model.ProviderKey, providerOf(raw)))
	}

	messages := make([]map[string]any, 0, len(r.Messages))
	for _, msg := range r.Messages {
		messages = append(messages, normalizeMessage(msg))
	}

	users := make(map[string]any, len(r.Users))
	for id, user := range r.Users {
		if user == nil {
			users[id] = model.Placeholder(id)
			continue
		}
		users[id] = map[string]any{
			"id":           user.ID,
			"name":         user.Name,
			"real_name":    user.RealName,
			"display_name": user.Profile.DisplayName,
			"is_bot":       user.IsBot,
		}
	}

	return model.CanonicalData{
		"channel_info": map[string]any{
			"id":          r.Channel.ID,
			"name":        r.Channel.Name,
			"topic":       r.Channel.Topic.Value,
			"purpose":     r.Channel.Purpose.Value,
			"num_members": r.Channel.NumMembers,
			"is_private":  r.Channel.IsPrivate,
		},
		PrimaryKey: messages,
		"users":    users,
	}, nil
}

func normalizeMessage(msg slack.Message) map[string]any {
	out := map[string]any{
		"ts":   msg.Timestamp,
		"user": msg.User,
		"text": msg.Text,
	}
	if msg.ThreadTimestamp != "" {
		out["thread_ts"] = msg.ThreadTimestamp
		out["reply_count"] = msg.ReplyCount
	}
	if msg.SubType != "" {
		out["subtype"] = msg.SubType
	}
	if msg.BotID != "" {
		out["bot_id"] = msg.BotID
	}
	return out
}

func providerOf(raw model.RawData) string {
	if raw == nil {
		return ""
	}
	return raw.Provider().String()
}
