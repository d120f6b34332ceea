package github

import (
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/polyconn/pkg/domain/model"
)

const PrimaryKey = "commits"

// Normalize converts a *Raw into repository_info, commits and contributors
func (a *Adapter) Normalize(raw model.RawData) (model.CanonicalData, error) {
	r, ok := raw.(*Raw)
	if !ok || r == nil {
		return nil, goerr.Wrap(model.ErrValidation, "raw data is not a github payload")
	}

	repo := r.Repository
	info := map[string]any{
		"id":              repo.ID,
		"name":            repo.Name,
		"full_name":       repo.NameWithOwner,
		"description":     repo.Description,
		"url":             repo.URL,
		"private":         repo.IsPrivate,
		"stargazer_count": repo.StargazerCount,
		"fork_count":      repo.ForkCount,
		"updated_at":      repo.UpdatedAt.Time,
	}
	if repo.PrimaryLanguage != nil {
		info["primary_language"] = repo.PrimaryLanguage.Name
	}
	if repo.DefaultBranchRef != nil {
		info["default_branch"] = repo.DefaultBranchRef.Name
	}

	commits := make([]map[string]any, 0, len(r.Commits))
	for _, c := range r.Commits {
		author := c.GetCommit().GetAuthor()
		commits = append(commits, map[string]any{
			"sha":          c.GetSHA(),
			"message":      c.GetCommit().GetMessage(),
			"author_name":  author.GetName(),
			"author_email": author.GetEmail(),
			"author_login": c.GetAuthor().GetLogin(),
			"date":         author.GetDate().Time,
			"url":          c.GetHTMLURL(),
		})
	}

	contributors := make(map[string]any, len(r.Contributors))
	for _, c := range r.Contributors {
		login := c.GetLogin()
		if login == "" {
			continue
		}

		user, resolved := r.Users[login]
		if resolved && user == nil {
			entry := model.Placeholder(login)
			entry["contributions"] = c.GetContributions()
			contributors[login] = entry
			continue
		}

		entry := map[string]any{
			"id":            login,
			"login":         login,
			"contributions": c.GetContributions(),
		}
		if user != nil {
			entry["name"] = user.GetName()
			entry["email"] = user.GetEmail()
			entry["company"] = user.GetCompany()
		}
		contributors[login] = entry
	}

	return model.CanonicalData{
		"repository_info": info,
		PrimaryKey:        commits,
		"contributors":    contributors,
	}, nil
}
