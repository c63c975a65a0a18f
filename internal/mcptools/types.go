package mcptools

import "github.com/dusk-indust/usermgr/internal/userapi"

// --- MCP Tool Input/Output Types ---
// The MCP Go SDK derives each tool's JSON schema from these struct tags.

// ListUsersInput is the input for the list_users MCP tool.
type ListUsersInput struct {
	Refresh bool `json:"refresh,omitempty" jsonschema:"reload the list from the user service before answering"`
}

// UserListOutput is the result of list_users and search_users.
type UserListOutput struct {
	Users []userapi.User `json:"users"`
	Total int            `json:"total"`
}

// SearchUsersInput is the input for the search_users MCP tool.
type SearchUsersInput struct {
	Query string `json:"query" jsonschema:"case-insensitive substring of the user's name; empty matches everyone"`
}

// GetUserInput is the input for the get_user MCP tool.
type GetUserInput struct {
	ID int `json:"id" jsonschema:"user id"`
}

// UserOutput carries one user record, plus a warning when the local list
// could not be reconciled with the server's answer.
type UserOutput struct {
	User    userapi.User `json:"user"`
	Warning string       `json:"warning,omitempty"`
}

// CreateUserInput is the input for the create_user MCP tool.
type CreateUserInput struct {
	Name    string `json:"name" jsonschema:"full name (required)"`
	Email   string `json:"email" jsonschema:"email address (required)"`
	Phone   string `json:"phone" jsonschema:"phone number (required)"`
	Website string `json:"website,omitempty" jsonschema:"website host name"`
	Street  string `json:"street,omitempty" jsonschema:"street address"`
	City    string `json:"city,omitempty" jsonschema:"city"`
	Company string `json:"company,omitempty" jsonschema:"company name"`
}

// fields maps the input onto draft field paths, skipping blanks.
func (in CreateUserInput) fields() map[string]string {
	out := map[string]string{
		"name":  in.Name,
		"email": in.Email,
		"phone": in.Phone,
	}
	for path, v := range map[string]string{
		"website":        in.Website,
		"address.street": in.Street,
		"address.city":   in.City,
		"company.name":   in.Company,
	} {
		if v != "" {
			out[path] = v
		}
	}
	return out
}

// UpdateUserInput is the input for the update_user MCP tool.
type UpdateUserInput struct {
	ID     int               `json:"id" jsonschema:"id of the user to edit"`
	Fields map[string]string `json:"fields" jsonschema:"new values keyed by field path: name, email, phone, website, address.street, address.city, company.name"`
}

// DeleteUserInput is the input for the delete_user MCP tool.
type DeleteUserInput struct {
	ID int `json:"id" jsonschema:"id of the user to delete"`
}

// DeleteUserOutput is the result of the delete_user MCP tool.
type DeleteUserOutput struct {
	ID        int    `json:"id"`
	Remaining int    `json:"remaining"`
	Warning   string `json:"warning,omitempty"`
}
