package google

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/polyconn/pkg/domain/interfaces"
	"github.com/secmon-lab/polyconn/pkg/domain/model"
	"google.golang.org/api/drive/v3"
)

const (
	folderMimeType = "application/vnd.google-apps.folder"

	SourceTypeFolder = "folder"
	DrivePrimaryKey  = "files"
)

// DriveAdapter reads Google Drive folders
type DriveAdapter struct {
	service func() (*drive.Service, error)
	limit   int64
}

var _ interfaces.Adapter = &DriveAdapter{}

// NewDrive creates a Drive adapter. The API client is built on first use.
func NewDrive(creds model.GoogleCredentials, opts ...Option) (*DriveAdapter, error) {
	if err := creds.Validate(); err != nil {
		return nil, err
	}
	o := buildOptions(opts)

	return &DriveAdapter{
		service: sync.OnceValues(func() (*drive.Service, error) {
			svc, err := drive.NewService(context.Background(), clientOptions(creds, o)...)
			if err != nil {
				return nil, goerr.Wrap(err, "failed to create drive service")
			}
			return svc, nil
		}),
		limit: o.limit,
	}, nil
}

func (a *DriveAdapter) ServiceInfo() model.ServiceInfo {
	return DriveInfo
}

// ListSources returns folders visible to the user
func (a *DriveAdapter) ListSources(ctx context.Context) ([]model.ExternalSource, error) {
	svc, err := a.service()
	if err != nil {
		return nil, model.NewUpstreamError(model.ProviderGDrive, "init client", err)
	}

	sources := make([]model.ExternalSource, 0)
	var pageToken string
	for {
		call := svc.Files.List().
			Q(fmt.Sprintf("mimeType = '%s' and trashed = false", folderMimeType)).
			Fields("nextPageToken, files(id, name, modifiedTime, webViewLink)").
			PageSize(100).
			Context(ctx)
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}

		resp, err := call.Do()
		if err != nil {
			return nil, wrapError(model.ProviderGDrive, "list folders", err)
		}

		for _, f := range resp.Files {
			sources = append(sources, model.ExternalSource{
				ID:   f.Id,
				Name: f.Name,
				Type: SourceTypeFolder,
				Metadata: map[string]any{
					"modified_time": f.ModifiedTime,
					"url":           f.WebViewLink,
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

// DriveRaw is the native payload of one folder
type DriveRaw struct {
	Folder *drive.File
	Files  []*drive.File
}

func (r *DriveRaw) Provider() model.Provider {
	return model.ProviderGDrive
}

// FetchRaw reads folder metadata and its most recently modified children
func (a *DriveAdapter) FetchRaw(ctx context.Context, sourceID string) (model.RawData, error) {
	svc, err := a.service()
	if err != nil {
		return nil, model.NewUpstreamError(model.ProviderGDrive, "init client", err)
	}

	folder, err := svc.Files.Get(sourceID).
		Fields("id, name, mimeType, createdTime, modifiedTime, webViewLink, owners").
		Context(ctx).
		Do()
	if err != nil {
		return nil, wrapError(model.ProviderGDrive, "get folder", err)
	}

	query := fmt.Sprintf("'%s' in parents and trashed = false", strings.ReplaceAll(sourceID, "'", `\'`))
	resp, err := svc.Files.List().
		Q(query).
		Fields("files(id, name, mimeType, size, createdTime, modifiedTime, webViewLink, owners)").
		OrderBy("modifiedTime desc").
		PageSize(a.limit).
		Context(ctx).
		Do()
	if err != nil {
		return nil, wrapError(model.ProviderGDrive, "list folder files", err)
	}

	return &DriveRaw{Folder: folder, Files: resp.Files}, nil
}

// Normalize converts a *DriveRaw into folder_info, files and owners
func (a *DriveAdapter) Normalize(raw model.RawData) (model.CanonicalData, error) {
	r, ok := raw.(*DriveRaw)
	if !ok || r == nil || r.Folder == nil {
		return nil, goerr.Wrap(model.ErrValidation, "raw data is not a drive payload")
	}

	owners := make(map[string]any)
	ownerIDs := func(users []*drive.User) []string {
		ids := make([]string, 0, len(users))
		for _, u := range users {
			id := u.EmailAddress
			if id == "" {
				id = u.PermissionId
			}
			if id == "" {
				continue
			}
			ids = append(ids, id)
			if _, ok := owners[id]; !ok {
				owners[id] = map[string]any{
					"id":    id,
					"name":  u.DisplayName,
					"email": u.EmailAddress,
				}
			}
		}
		return ids
	}

	files := make([]map[string]any, 0, len(r.Files))
	for _, f := range r.Files {
		files = append(files, map[string]any{
			"id":            f.Id,
			"name":          f.Name,
			"mime_type":     f.MimeType,
			"size":          f.Size,
			"created_time":  f.CreatedTime,
			"modified_time": f.ModifiedTime,
			"url":           f.WebViewLink,
			"owners":        ownerIDs(f.Owners),
			"is_folder":     f.MimeType == folderMimeType,
		})
	}

	return model.CanonicalData{
		"folder_info": map[string]any{
			"id":            r.Folder.Id,
			"name":          r.Folder.Name,
			"created_time":  r.Folder.CreatedTime,
			"modified_time": r.Folder.ModifiedTime,
			"url":           r.Folder.WebViewLink,
			"owners":        ownerIDs(r.Folder.Owners),
		},
		DrivePrimaryKey: files,
		"owners":        owners,
	}, nil
}
