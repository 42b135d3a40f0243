// Package services holds typed wrappers over the backend's REST endpoints.
// Each wrapper is a thin adapter: path + request shape in, envelope out; all
// cross-cutting behavior (auth, refresh, errors) lives in pkg/apiclient.
package services

import "github.com/otolor/clinic-client/pkg/apiclient"

// ListParams are the shared pagination/search query parameters.
type ListParams struct {
	Page   int
	Limit  int
	Sort   string
	Order  string
	Search string
}

func (p ListParams) query() apiclient.Query {
	q := apiclient.Query{}
	if p.Page > 0 {
		q["page"] = p.Page
	}
	if p.Limit > 0 {
		q["limit"] = p.Limit
	}
	q["sort"] = p.Sort
	q["order"] = p.Order
	q["search"] = p.Search
	return q
}
