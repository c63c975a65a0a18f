package mcptools

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/dusk-indust/usermgr/internal/form"
	"github.com/dusk-indust/usermgr/internal/session"
	"github.com/dusk-indust/usermgr/internal/store"
	"github.com/dusk-indust/usermgr/internal/userapi"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// UserToolService handles MCP tool calls against one session.
type UserToolService struct {
	sess *session.Session
}

// NewUserToolService creates a UserToolService over sess.
func NewUserToolService(sess *session.Session) *UserToolService {
	return &UserToolService{sess: sess}
}

// ensureLoaded populates the session's store on first use.
func (s *UserToolService) ensureLoaded(ctx context.Context, force bool) error {
	if !force && s.sess.Store().Loaded() {
		return nil
	}
	if err := s.sess.Load(ctx); err != nil {
		return fmt.Errorf("load users: %w", err)
	}
	return nil
}

// ListUsers returns the cached user list, loading it if needed.
func (s *UserToolService) ListUsers(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ListUsersInput,
) (*mcp.CallToolResult, UserListOutput, error) {
	if err := s.ensureLoaded(ctx, input.Refresh); err != nil {
		return nil, UserListOutput{}, err
	}
	return nil, listOutput(s.sess.Users()), nil
}

// SearchUsers filters the cached list by name.
func (s *UserToolService) SearchUsers(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SearchUsersInput,
) (*mcp.CallToolResult, UserListOutput, error) {
	if err := s.ensureLoaded(ctx, false); err != nil {
		return nil, UserListOutput{}, err
	}
	return nil, listOutput(s.sess.Search(input.Query)), nil
}

// GetUser fetches one user from the service.
func (s *UserToolService) GetUser(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input GetUserInput,
) (*mcp.CallToolResult, UserOutput, error) {
	if input.ID <= 0 {
		return nil, UserOutput{}, fmt.Errorf("id must be positive, got %d", input.ID)
	}
	u, err := s.sess.Details(ctx, input.ID)
	if err != nil {
		return nil, UserOutput{}, err
	}
	return nil, UserOutput{User: u}, nil
}

// CreateUser creates a user from the required and optional fields.
func (s *UserToolService) CreateUser(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input CreateUserInput,
) (*mcp.CallToolResult, UserOutput, error) {
	if err := s.ensureLoaded(ctx, false); err != nil {
		return nil, UserOutput{}, err
	}
	return s.submit(ctx, s.sess.OpenCreate(), input.fields())
}

// UpdateUser edits the given fields of an existing user.
func (s *UserToolService) UpdateUser(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input UpdateUserInput,
) (*mcp.CallToolResult, UserOutput, error) {
	if len(input.Fields) == 0 {
		return nil, UserOutput{}, fmt.Errorf("fields is required")
	}
	if err := s.ensureLoaded(ctx, false); err != nil {
		return nil, UserOutput{}, err
	}

	ctl, err := s.sess.OpenEdit(ctx, input.ID)
	if err != nil {
		return nil, UserOutput{}, err
	}
	return s.submit(ctx, ctl, input.Fields)
}

// submit fills ctl, checks required fields, and saves. A store
// inconsistency is downgraded to a warning because the server accepted the
// change.
func (s *UserToolService) submit(ctx context.Context, ctl *form.Controller, values map[string]string) (*mcp.CallToolResult, UserOutput, error) {
	paths := make([]string, 0, len(values))
	for p := range values {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	for _, p := range paths {
		if err := ctl.SetField(p, values[p]); err != nil {
			ctl.Cancel()
			return nil, UserOutput{}, err
		}
	}
	if err := ctl.Validate(); err != nil {
		ctl.Cancel()
		return nil, UserOutput{}, err
	}

	saved, err := s.sess.Save(ctx, ctl)
	if errors.Is(err, store.ErrInconsistent) {
		return nil, UserOutput{User: saved, Warning: err.Error()}, nil
	}
	if err != nil {
		return nil, UserOutput{}, err
	}
	return nil, UserOutput{User: saved}, nil
}

// DeleteUser deletes a user on the service and drops it from the list.
func (s *UserToolService) DeleteUser(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input DeleteUserInput,
) (*mcp.CallToolResult, DeleteUserOutput, error) {
	if err := s.ensureLoaded(ctx, false); err != nil {
		return nil, DeleteUserOutput{}, err
	}

	out := DeleteUserOutput{ID: input.ID}
	err := s.sess.Delete(ctx, input.ID)
	if errors.Is(err, store.ErrInconsistent) {
		out.Warning = err.Error()
	} else if err != nil {
		return nil, DeleteUserOutput{}, err
	}
	out.Remaining = s.sess.Store().Len()
	return nil, out, nil
}

func listOutput(users []userapi.User) UserListOutput {
	if users == nil {
		users = []userapi.User{}
	}
	return UserListOutput{Users: users, Total: len(users)}
}
