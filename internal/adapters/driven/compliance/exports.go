package compliance

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/markz0r/M365PowerKit/internal/core/domain"
)

// Fixed export parameters: one consolidated archive containing
// previously-indexed items only.
const (
	exportFormat        = "FxStream"
	exportArchiveFormat = "SinglePst"
	exportScope         = "IndexedItemsOnly"
)

// exportResource is the wire shape of an export job. Results is the
// free-text blob that eventually carries the transfer coordinates.
type exportResource struct {
	Name       string `json:"name"`
	SearchName string `json:"searchName"`
	Status     string `json:"status"`
	Results    string `json:"results"`
}

func (r exportResource) toDomain() domain.ExportJob {
	return domain.ExportJob{
		Name:       r.Name,
		SearchName: r.SearchName,
		Status:     domain.JobStatus(r.Status),
		Results:    r.Results,
	}
}

// exportRequest carries the fixed export parameters.
type exportRequest struct {
	Format        string `json:"format"`
	ArchiveFormat string `json:"archiveFormat"`
	Scope         string `json:"scope"`
}

// CreateExport issues the export action against a completed search.
func (c *Client) CreateExport(ctx context.Context, searchName string) (domain.ExportJob, error) {
	body := exportRequest{
		Format:        exportFormat,
		ArchiveFormat: exportArchiveFormat,
		Scope:         exportScope,
	}

	var created exportResource
	path := "/searches/" + url.PathEscape(searchName) + "/export"
	if err := c.do(ctx, http.MethodPost, path, body, &created); err != nil {
		if IsNotFound(err) {
			return domain.ExportJob{}, fmt.Errorf("search %s: %w", searchName, domain.ErrNotFound)
		}
		return domain.ExportJob{}, fmt.Errorf("create export for %s: %w", searchName, err)
	}
	return created.toDomain(), nil
}

// GetExport reads export state including the results blob.
func (c *Client) GetExport(ctx context.Context, name string) (*domain.ExportJob, error) {
	var res exportResource
	err := c.do(ctx, http.MethodGet, "/exports/"+url.PathEscape(name), nil, &res)
	if err != nil {
		if IsNotFound(err) {
			return nil, fmt.Errorf("export %s: %w", name, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get export %s: %w", name, err)
	}

	job := res.toDomain()
	return &job, nil
}
