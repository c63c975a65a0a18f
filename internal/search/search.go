// Package search narrows a user sequence by name.
package search

import (
	"iter"
	"slices"
	"strings"

	"github.com/dusk-indust/usermgr/internal/userapi"
)

// Filter yields, in order, the users whose lower-cased name contains the
// lower-cased query. An empty query yields every user. The returned sequence
// is lazy and can be ranged over any number of times.
func Filter(users []userapi.User, query string) iter.Seq[userapi.User] {
	q := strings.ToLower(query)
	return func(yield func(userapi.User) bool) {
		for _, u := range users {
			if q != "" && !Matches(u, q) {
				continue
			}
			if !yield(u) {
				return
			}
		}
	}
}

// Matches reports whether u's name contains the already lower-cased query.
func Matches(u userapi.User, lowerQuery string) bool {
	return strings.Contains(strings.ToLower(u.Name), lowerQuery)
}

// Collect materialises Filter into a slice, never nil.
func Collect(users []userapi.User, query string) []userapi.User {
	out := slices.Collect(Filter(users, query))
	if out == nil {
		out = []userapi.User{}
	}
	return out
}
