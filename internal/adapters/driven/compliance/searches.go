package compliance

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/markz0r/M365PowerKit/internal/core/domain"
)

// searchResource is the wire shape of a search job.
type searchResource struct {
	Name             string   `json:"name"`
	Query            string   `json:"contentMatchQuery"`
	ExchangeLocation []string `json:"exchangeLocation"`
	Status           string   `json:"status"`
}

func (r searchResource) toDomain() domain.SearchJob {
	job := domain.SearchJob{
		Name:   r.Name,
		Query:  r.Query,
		Status: domain.JobStatus(r.Status),
	}
	if len(r.ExchangeLocation) > 0 {
		job.Mailbox = r.ExchangeLocation[0]
	}
	return job
}

// ListSearches returns all search jobs visible to the caller.
func (c *Client) ListSearches(ctx context.Context) ([]domain.SearchJob, error) {
	var payload struct {
		Value []searchResource `json:"value"`
	}
	if err := c.do(ctx, http.MethodGet, "/searches", nil, &payload); err != nil {
		return nil, fmt.Errorf("list searches: %w", err)
	}

	jobs := make([]domain.SearchJob, 0, len(payload.Value))
	for _, res := range payload.Value {
		jobs = append(jobs, res.toDomain())
	}
	return jobs, nil
}

// CreateSearch registers a new search job scoped to one mailbox.
func (c *Client) CreateSearch(ctx context.Context, job domain.SearchJob) (domain.SearchJob, error) {
	body := searchResource{
		Name:             job.Name,
		Query:            job.Query,
		ExchangeLocation: []string{job.Mailbox},
	}

	var created searchResource
	if err := c.do(ctx, http.MethodPost, "/searches", body, &created); err != nil {
		return domain.SearchJob{}, fmt.Errorf("create search %s: %w", job.Name, err)
	}
	return created.toDomain(), nil
}

// StartSearch begins executing a registered search job.
func (c *Client) StartSearch(ctx context.Context, name string) error {
	path := "/searches/" + url.PathEscape(name) + "/start"
	if err := c.do(ctx, http.MethodPost, path, nil, nil); err != nil {
		return fmt.Errorf("start search %s: %w", name, err)
	}
	return nil
}

// GetSearch reads current job state.
func (c *Client) GetSearch(ctx context.Context, name string) (*domain.SearchJob, error) {
	var res searchResource
	err := c.do(ctx, http.MethodGet, "/searches/"+url.PathEscape(name), nil, &res)
	if err != nil {
		if IsNotFound(err) {
			return nil, fmt.Errorf("search %s: %w", name, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get search %s: %w", name, err)
	}

	job := res.toDomain()
	return &job, nil
}

// DeleteSearch removes a search job and its results.
func (c *Client) DeleteSearch(ctx context.Context, name string) error {
	err := c.do(ctx, http.MethodDelete, "/searches/"+url.PathEscape(name), nil, nil)
	if err != nil {
		if IsNotFound(err) {
			return fmt.Errorf("search %s: %w", name, domain.ErrNotFound)
		}
		return fmt.Errorf("delete search %s: %w", name, err)
	}
	return nil
}
