package form

import "github.com/dusk-indust/usermgr/internal/userapi"

type field struct {
	path     string
	required bool
	ref      func(*userapi.User) *string
}

// fields is the closed set of editable paths, in form order.
var fields = []field{
	{"name", true, func(u *userapi.User) *string { return &u.Name }},
	{"email", true, func(u *userapi.User) *string { return &u.Email }},
	{"phone", true, func(u *userapi.User) *string { return &u.Phone }},
	{"address.street", false, func(u *userapi.User) *string { return &u.Address.Street }},
	{"address.city", false, func(u *userapi.User) *string { return &u.Address.City }},
	{"company.name", false, func(u *userapi.User) *string { return &u.Company.Name }},
	{"website", false, func(u *userapi.User) *string { return &u.Website }},
}

func lookup(path string) (field, bool) {
	for _, f := range fields {
		if f.path == path {
			return f, true
		}
	}
	return field{}, false
}

// Fields returns the recognised draft paths in form order.
func Fields() []string {
	out := make([]string, len(fields))
	for i, f := range fields {
		out[i] = f.path
	}
	return out
}

// Required returns the paths a presenting view should insist on.
func Required() []string {
	var out []string
	for _, f := range fields {
		if f.required {
			out = append(out, f.path)
		}
	}
	return out
}
