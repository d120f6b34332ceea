package notion

import (
	"strings"
	"time"

	"github.com/jomei/notionapi"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/polyconn/pkg/domain/model"
)

const PrimaryKey = "pages"

// Normalize converts a *Raw into database_info, pages and users
func (a *Adapter) Normalize(raw model.RawData) (model.CanonicalData, error) {
	r, ok := raw.(*Raw)
	if !ok || r == nil {
		return nil, goerr.Wrap(model.ErrValidation, "raw data is not a notion payload")
	}

	pages := make([]map[string]any, 0, len(r.Pages))
	for _, page := range r.Pages {
		props := make(map[string]any, len(page.Properties))
		var title string
		for name, prop := range page.Properties {
			props[name] = propertyValue(prop)
			if t, ok := prop.(*notionapi.TitleProperty); ok {
				title = plainText(t.Title)
			}
		}

		pages = append(pages, map[string]any{
			"id":               page.ID.String(),
			"title":            title,
			"url":              page.URL,
			"archived":         page.Archived,
			"created_time":     page.CreatedTime,
			"last_edited_time": page.LastEditedTime,
			"created_by":       page.CreatedBy.ID.String(),
			"properties":       props,
		})
	}

	users := make(map[string]any, len(r.Users))
	for id, user := range r.Users {
		if user == nil {
			users[id] = model.Placeholder(id)
			continue
		}
		entry := map[string]any{
			"id":   user.ID.String(),
			"name": user.Name,
			"type": string(user.Type),
		}
		if user.Person != nil {
			entry["email"] = user.Person.Email
		}
		users[id] = entry
	}

	return model.CanonicalData{
		"database_info": map[string]any{
			"id":               r.Database.ID.String(),
			"title":            plainText(r.Database.Title),
			"description":      plainText(r.Database.Description),
			"url":              r.Database.URL,
			"created_time":     r.Database.CreatedTime,
			"last_edited_time": r.Database.LastEditedTime,
		},
		PrimaryKey: pages,
		"users":    users,
	}, nil
}

func plainText(texts []notionapi.RichText) string {
	var b strings.Builder
	for _, t := range texts {
		b.WriteString(t.PlainText)
	}
	return b.String()
}

// propertyValue flattens a page property into a JSON friendly scalar or list
func propertyValue(prop notionapi.Property) any {
	switch p := prop.(type) {
	case *notionapi.TitleProperty:
		return plainText(p.Title)
	case *notionapi.RichTextProperty:
		return plainText(p.RichText)
	case *notionapi.SelectProperty:
		return p.Select.Name
	case *notionapi.StatusProperty:
		return p.Status.Name
	case *notionapi.MultiSelectProperty:
		names := make([]string, 0, len(p.MultiSelect))
		for _, opt := range p.MultiSelect {
			names = append(names, opt.Name)
		}
		return names
	case *notionapi.CheckboxProperty:
		return p.Checkbox
	case *notionapi.NumberProperty:
		return p.Number
	case *notionapi.URLProperty:
		return p.URL
	case *notionapi.DateProperty:
		if p.Date == nil || p.Date.Start == nil {
			return nil
		}
		return time.Time(*p.Date.Start)
	case *notionapi.PeopleProperty:
		ids := make([]string, 0, len(p.People))
		for _, u := range p.People {
			ids = append(ids, u.ID.String())
		}
		return ids
	case nil:
		return nil
	default:
		return map[string]any{"type": string(prop.GetType())}
	}
}
