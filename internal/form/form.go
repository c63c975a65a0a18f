// Package form manages one editable user draft and its submission.
package form

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/dusk-indust/usermgr/internal/future"
	"github.com/dusk-indust/usermgr/internal/userapi"
)

// Mode tells whether a Controller creates a new record or edits an existing
// one.
type Mode int

const (
	// ModeCreate starts from a blank draft and submits with POST.
	ModeCreate Mode = iota

	// ModeEdit starts from a copy of an existing record and submits with PUT.
	ModeEdit
)

func (m Mode) String() string {
	switch m {
	case ModeCreate:
		return "create"
	case ModeEdit:
		return "edit"
	default:
		return "unknown"
	}
}

var (
	// ErrUnknownField is wrapped by FieldError for paths outside Fields.
	ErrUnknownField = errors.New("form: unknown field")

	// ErrClosed is returned once the draft has been submitted or cancelled.
	ErrClosed = errors.New("form: closed")

	// ErrSubmitInFlight is returned when Submit is called while an earlier
	// submission of the same draft has not finished.
	ErrSubmitInFlight = errors.New("form: submit already in flight")

	// ErrNoID is returned by NewEdit for a record without a server id.
	ErrNoID = errors.New("form: record has no id")
)

// FieldError reports an unrecognised draft field path.
type FieldError struct {
	Path string
}

// Error implements the error interface.
func (e *FieldError) Error() string {
	return fmt.Sprintf("form: unknown field %q", e.Path)
}

// Unwrap returns ErrUnknownField.
func (e *FieldError) Unwrap() error {
	return ErrUnknownField
}

// ValidationError lists required fields left blank.
type ValidationError struct {
	Missing []string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return "form: missing required fields: " + strings.Join(e.Missing, ", ")
}

// Controller owns one draft for the duration of a form session. It never
// touches a store; callers apply the record returned by Submit themselves.
type Controller struct {
	svc  userapi.Service
	mode Mode

	mu         sync.Mutex
	draft      userapi.User
	submitting bool
	closed     bool
}

// NewCreate opens a Create-mode controller over a blank draft.
func NewCreate(svc userapi.Service) *Controller {
	return &Controller{svc: svc, mode: ModeCreate}
}

// NewEdit opens an Edit-mode controller over a copy of existing.
func NewEdit(svc userapi.Service, existing userapi.User) (*Controller, error) {
	if existing.IsNew() {
		return nil, ErrNoID
	}
	return &Controller{svc: svc, mode: ModeEdit, draft: existing}, nil
}

// Mode returns the controller's mode.
func (c *Controller) Mode() Mode {
	return c.mode
}

// Draft returns a copy of the current draft.
func (c *Controller) Draft() userapi.User {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.draft
}

// SetField sets one draft field addressed by a dotted path such as
// "address.street".
func (c *Controller) SetField(path, value string) error {
	f, ok := lookup(path)
	if !ok {
		return &FieldError{Path: path}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosed
	}
	*f.ref(&c.draft) = value
	return nil
}

// Field reads one draft field by path.
func (c *Controller) Field(path string) (string, error) {
	f, ok := lookup(path)
	if !ok {
		return "", &FieldError{Path: path}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	return *f.ref(&c.draft), nil
}

// Validate checks the required fields. Submit does not call it.
func (c *Controller) Validate() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var missing []string
	for _, f := range fields {
		if f.required && strings.TrimSpace(*f.ref(&c.draft)) == "" {
			missing = append(missing, f.path)
		}
	}
	if len(missing) > 0 {
		return &ValidationError{Missing: missing}
	}
	return nil
}

// Submit sends the draft: POST in Create mode, PUT to the draft's id in Edit
// mode. It makes exactly one attempt. On success the draft is discarded and
// the server's record is returned; on failure the draft is kept unchanged.
func (c *Controller) Submit(ctx context.Context) (userapi.User, error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return userapi.User{}, ErrClosed
	}
	if c.submitting {
		c.mu.Unlock()
		return userapi.User{}, ErrSubmitInFlight
	}
	c.submitting = true
	draft := c.draft
	c.mu.Unlock()

	var (
		saved *userapi.User
		err   error
	)
	switch c.mode {
	case ModeEdit:
		saved, err = c.svc.UpdateUser(ctx, draft.ID, draft)
	default:
		saved, err = c.svc.CreateUser(ctx, draft)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.submitting = false
	if err != nil {
		return userapi.User{}, fmt.Errorf("form: %s: %w", c.mode, err)
	}
	c.closed = true
	c.draft = userapi.User{}
	return *saved, nil
}

// SubmitAsync runs Submit on its own goroutine. Cancelling the returned
// Future aborts the request and guarantees its result is never delivered.
func (c *Controller) SubmitAsync(ctx context.Context) *future.Future[userapi.User] {
	return future.Go(ctx, c.Submit)
}

// Cancel discards the draft. It makes no network call.
func (c *Controller) Cancel() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	c.draft = userapi.User{}
}

// Closed reports whether the form session has ended.
func (c *Controller) Closed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}
