package userapi

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// maxParallelFetch bounds how many GET /users/{id} calls FetchMany keeps in
// flight at once.
const maxParallelFetch = 4

// FetchMany fetches the users with the given ids in parallel and returns them
// in the order of ids. The first failure cancels the remaining calls and is
// returned; no partial result is returned alongside an error.
func FetchMany(ctx context.Context, svc Service, ids []int) ([]User, error) {
	results := make([]User, len(ids))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelFetch)

	for i, id := range ids {
		g.Go(func() error {
			u, err := svc.GetUser(gctx, id)
			if err != nil {
				return err
			}
			results[i] = *u
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
