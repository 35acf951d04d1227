package session

import (
	"context"
	"iter"

	"github.com/ortelius/griffon/model"
)

// PageSize is the fixed number of records requested per page
const PageSize = 100

// FetchPage requests one limit/offset window of a listing endpoint
func FetchPage[T any](ctx context.Context, c *Client, path string, filters model.Filters, limit, offset int) (model.Page[T], error) {
	var page model.Page[T]
	err := c.GetJSON(ctx, path, filters.Page(limit, offset), &page)
	return page, err
}

// Count returns the total reported by a listing endpoint for the filters, fetching a single record
func Count(ctx context.Context, c *Client, path string, filters model.Filters) (int, error) {
	page, err := FetchPage[map[string]any](ctx, c, path, filters, 1, 0)
	if err != nil {
		return 0, err
	}
	return page.Count, nil
}

// Paginate walks a listing endpoint page by page. The sequence is lazy and single pass: nothing is
// requested until it is ranged over, and ranging again starts over from offset 0. It ends when the
// service reports no next page, a page comes back empty, or maxResults (when > 0) records were yielded.
// A failing page is yielded as an error and ends the sequence.
func Paginate[T any](ctx context.Context, c *Client, path string, filters model.Filters, maxResults int) iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		var zero T
		yielded := 0
		for offset := 0; ; offset += PageSize {
			limit := PageSize
			if maxResults > 0 && maxResults-yielded < limit {
				limit = maxResults - yielded
			}

			page, err := FetchPage[T](ctx, c, path, filters, limit, offset)
			if err != nil {
				yield(zero, err)
				return
			}

			for _, item := range page.Results {
				if !yield(item, nil) {
					return
				}
				yielded++
				if maxResults > 0 && yielded >= maxResults {
					return
				}
			}

			if len(page.Results) == 0 || !page.HasNext() {
				return
			}
		}
	}
}

// Collect drains a paginated sequence, stopping at the first error
func Collect[T any](seq iter.Seq2[T, error]) ([]T, error) {
	var out []T
	for item, err := range seq {
		if err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, nil
}
