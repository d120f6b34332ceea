package linear

import (
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/polyconn/pkg/domain/model"
)

const PrimaryKey = "issues"

// Normalize converts a *Raw into team_info, issues, users and states
func (a *Adapter) Normalize(raw model.RawData) (model.CanonicalData, error) {
	r, ok := raw.(*Raw)
	if !ok || r == nil {
		return nil, goerr.Wrap(model.ErrValidation, "raw data is not a linear payload")
	}

	states := make(map[string]any, len(r.States))
	for _, st := range r.States {
		states[st.ID] = map[string]any{
			"id":    st.ID,
			"name":  st.Name,
			"type":  st.Type,
			"color": st.Color,
		}
	}

	issues := make([]map[string]any, 0, len(r.Issues))
	for _, issue := range r.Issues {
		entry := map[string]any{
			"id":          issue.ID,
			"identifier":  issue.Identifier,
			"title":       issue.Title,
			"description": issue.Description,
			"priority":    issue.Priority,
			"url":         issue.URL,
			"created_at":  issue.CreatedAt,
			"updated_at":  issue.UpdatedAt,
			"state_id":    issue.State.ID,
		}
		if issue.Assignee != nil {
			entry["assignee_id"] = issue.Assignee.ID
		}
		if issue.Creator != nil {
			entry["creator_id"] = issue.Creator.ID
		}
		issues = append(issues, entry)
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
			"display_name": user.DisplayName,
			"email":        user.Email,
		}
	}

	return model.CanonicalData{
		"team_info": map[string]any{
			"id":          r.Team.ID,
			"name":        r.Team.Name,
			"key":         r.Team.Key,
			"description": r.Team.Description,
		},
		PrimaryKey: issues,
		"users":    users,
		"states":   states,
	}, nil
}
