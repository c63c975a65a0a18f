package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"strconv"
	"strings"

	"github.com/dusk-indust/usermgr/internal/fakeapi"
	"github.com/dusk-indust/usermgr/internal/form"
	"github.com/dusk-indust/usermgr/internal/session"
	"github.com/dusk-indust/usermgr/internal/store"
	"github.com/dusk-indust/usermgr/internal/userapi"
	"go.uber.org/zap"
)

// fieldFlags maps command-line flag names to draft field paths.
var fieldFlags = []struct{ flag, path, help string }{
	{"name", "name", "full name"},
	{"email", "email", "email address"},
	{"phone", "phone", "phone number"},
	{"website", "website", "website host name"},
	{"street", "address.street", "street address"},
	{"city", "address.city", "city"},
	{"company", "company.name", "company name"},
}

func (c *cli) runList(ctx context.Context, sess *session.Session) error {
	if err := sess.Load(ctx); err != nil {
		return err
	}
	return writeTable(c.out, sess.Users())
}

func (c *cli) runSearch(ctx context.Context, sess *session.Session, args []string) error {
	if err := sess.Load(ctx); err != nil {
		return err
	}
	users := sess.Search(strings.Join(args, " "))
	if len(users) == 0 {
		fmt.Fprintln(c.out, "No users match.")
		return nil
	}
	return writeTable(c.out, users)
}

func (c *cli) runShow(ctx context.Context, sess *session.Session, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("show: at least one id is required")
	}
	ids := make([]int, 0, len(args))
	for _, a := range args {
		id, err := parseID(a)
		if err != nil {
			return fmt.Errorf("show: %w", err)
		}
		ids = append(ids, id)
	}

	users, err := userapi.FetchMany(ctx, sess.Service(), ids)
	if err != nil {
		return err
	}
	for i, u := range users {
		if i > 0 {
			fmt.Fprintln(c.out)
		}
		writeCard(c.out, u)
	}
	return nil
}

func (c *cli) runCreate(ctx context.Context, sess *session.Session, args []string) error {
	fs, values := c.fieldFlagSet("create")
	if err := fs.Parse(args); err != nil {
		return err
	}

	ctl := sess.OpenCreate()
	return c.save(ctx, sess, ctl, setFlags(fs, values))
}

func (c *cli) runEdit(ctx context.Context, sess *session.Session, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("edit: an id is required")
	}
	id, err := parseID(args[0])
	if err != nil {
		return fmt.Errorf("edit: %w", err)
	}

	fs, values := c.fieldFlagSet("edit")
	if err := fs.Parse(args[1:]); err != nil {
		return err
	}
	changed := setFlags(fs, values)
	if len(changed) == 0 {
		return fmt.Errorf("edit: no field flags given")
	}

	ctl, err := sess.OpenEdit(ctx, id)
	if err != nil {
		return err
	}
	return c.save(ctx, sess, ctl, changed)
}

func (c *cli) runQuickEdit(ctx context.Context, sess *session.Session, args []string) error {
	if len(args) != 4 {
		return fmt.Errorf("quick-edit: want <id> <name> <email> <phone>, got %d args", len(args))
	}
	id, err := parseID(args[0])
	if err != nil {
		return fmt.Errorf("quick-edit: %w", err)
	}

	saved, err := sess.QuickEdit(ctx, id, args[1], args[2], args[3])
	return c.report(saved, err)
}

func (c *cli) save(ctx context.Context, sess *session.Session, ctl *form.Controller, changed map[string]string) error {
	for _, ff := range fieldFlags {
		v, ok := changed[ff.path]
		if !ok {
			continue
		}
		if err := ctl.SetField(ff.path, v); err != nil {
			return err
		}
	}
	if err := ctl.Validate(); err != nil {
		ctl.Cancel()
		return err
	}

	return c.report(sess.Save(ctx, ctl))
}

// report prints a saved record. A store inconsistency is only a warning
// because the server accepted the change.
func (c *cli) report(saved userapi.User, err error) error {
	if err != nil && !errors.Is(err, store.ErrInconsistent) {
		return err
	}
	if err != nil {
		fmt.Fprintf(c.errOut, "warning: %v\n", err)
	}
	fmt.Fprintf(c.out, "Saved user %d.\n\n", saved.ID)
	writeCard(c.out, saved)
	return nil
}

func (c *cli) runDelete(ctx context.Context, sess *session.Session, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("delete: an id is required")
	}
	id, err := parseID(args[0])
	if err != nil {
		return fmt.Errorf("delete: %w", err)
	}

	fs := flag.NewFlagSet("delete", flag.ContinueOnError)
	fs.SetOutput(c.errOut)
	yes := fs.Bool("yes", false, "do not ask for confirmation")
	if err := fs.Parse(args[1:]); err != nil {
		return err
	}

	if !*yes {
		fmt.Fprintf(c.out, "Delete user %d? [y/N] ", id)
		answer, _ := bufio.NewReader(c.in).ReadString('\n')
		if a := strings.ToLower(strings.TrimSpace(answer)); a != "y" && a != "yes" {
			fmt.Fprintln(c.out, "Aborted.")
			return nil
		}
	}

	if err := sess.Delete(ctx, id); err != nil {
		return err
	}
	fmt.Fprintf(c.out, "Deleted user %d.\n", id)
	return nil
}

func (c *cli) runFakeServer(ctx context.Context, log *zap.Logger, args []string) error {
	fs := flag.NewFlagSet("fake-server", flag.ContinueOnError)
	fs.SetOutput(c.errOut)
	addr := fs.String("addr", ":8080", "listen address")
	if err := fs.Parse(args); err != nil {
		return err
	}

	fmt.Fprintf(c.out, "Serving %d demo users on %s (Ctrl-C to stop)\n", len(fakeapi.SeedUsers()), *addr)
	return fakeapi.New(fakeapi.WithLogger(log)).Listen(ctx, *addr)
}

// fieldFlagSet registers one string flag per editable field.
func (c *cli) fieldFlagSet(name string) (*flag.FlagSet, map[string]*string) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(c.errOut)
	values := make(map[string]*string, len(fieldFlags))
	for _, ff := range fieldFlags {
		values[ff.flag] = fs.String(ff.flag, "", ff.help)
	}
	return fs, values
}

// setFlags returns the field paths whose flags were given explicitly.
func setFlags(fs *flag.FlagSet, values map[string]*string) map[string]string {
	paths := make(map[string]string, len(fieldFlags))
	for _, ff := range fieldFlags {
		paths[ff.flag] = ff.path
	}
	out := make(map[string]string)
	fs.Visit(func(f *flag.Flag) {
		out[paths[f.Name]] = *values[f.Name]
	})
	return out
}

func parseID(s string) (int, error) {
	id, err := strconv.Atoi(s)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid user id %q", s)
	}
	return id, nil
}
