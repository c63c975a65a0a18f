package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/dusk-indust/usermgr/internal/config"
	"github.com/dusk-indust/usermgr/internal/logging"
	"github.com/dusk-indust/usermgr/internal/mcptools"
	"github.com/dusk-indust/usermgr/internal/session"
	"github.com/dusk-indust/usermgr/internal/userapi"
	"go.uber.org/zap"
)

// CLI flags parsed from command line.
type cliFlags struct {
	ConfigFile string
	BaseURL    string
	Timeout    time.Duration
	Verbose    bool
	ServeMCP   bool
	Version    bool
}

// version is set by goreleaser at build time.
var version = "dev"

const usage = `usage: usermgr [flags] <command> [args]

commands:
  list                         table of all users
  search <query>               users whose name contains query
  show <id>...                 detail cards for the given users
  create --name --email --phone [--website --street --city --company]
  edit <id> [field flags]      change fields of one user
  quick-edit <id> <name> <email> <phone>
                               replace the three required fields of one user
  delete <id> [--yes]          delete one user
  fake-server [--addr :8080]   serve an in-memory user service

flags:
`

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	c := &cli{in: os.Stdin, out: os.Stdout, errOut: os.Stderr, dir: "."}
	if err := c.run(ctx, os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// cli carries the process streams so commands can be run from tests.
type cli struct {
	in     io.Reader
	out    io.Writer
	errOut io.Writer
	dir    string // where usermgr.yml and .env are looked up
}

func (c *cli) run(ctx context.Context, args []string) error {
	var flags cliFlags

	fs := flag.NewFlagSet("usermgr", flag.ContinueOnError)
	fs.SetOutput(c.errOut)
	fs.Usage = func() {
		fmt.Fprint(c.errOut, usage)
		fs.PrintDefaults()
	}
	fs.StringVar(&flags.ConfigFile, "config", "", "path to a usermgr.yml config file")
	fs.StringVar(&flags.BaseURL, "base-url", "", "user service base URL (overrides config)")
	fs.DurationVar(&flags.Timeout, "timeout", 0, "per-request timeout (overrides config)")
	fs.BoolVar(&flags.Verbose, "verbose", false, "print change events and debug logs")
	fs.BoolVar(&flags.ServeMCP, "serve-mcp", false, "run as MCP server over stdio")
	fs.BoolVar(&flags.Version, "version", false, "print version and exit")

	if err := fs.Parse(args); err != nil {
		return err
	}

	if flags.Version {
		fmt.Fprintln(c.out, version)
		return nil
	}

	cfg, err := config.Load(c.dir, flags.ConfigFile)
	if err != nil {
		return err
	}
	if flags.BaseURL != "" {
		cfg.BaseURL = flags.BaseURL
	}
	if flags.Timeout != 0 {
		cfg.Timeout = flags.Timeout
	}
	if flags.Verbose {
		cfg.LogLevel = "debug"
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	log, err := logging.NewWithWriter(logging.Config{Level: cfg.LogLevel, Dev: cfg.LogDev}, c.errOut)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	client := userapi.NewHTTPClient(append(cfg.ClientOptions(), userapi.WithLogger(log))...)
	sess := session.New(client, session.WithLogger(log))

	if flags.ServeMCP {
		defer sess.Close()
		log.Info("serving MCP over stdio", zap.String("baseURL", client.BaseURL()))
		return mcptools.RunStdio(ctx, mcptools.NewUserMCPServer(sess))
	}

	rest := fs.Args()
	if len(rest) == 0 {
		fs.Usage()
		return fmt.Errorf("no command given")
	}

	err = c.dispatch(ctx, sess, log, rest[0], rest[1:])

	sess.Close()
	if flags.Verbose {
		for ev := range sess.Events() {
			fmt.Fprintln(c.errOut, session.FormatEvent(ev))
		}
	}
	return err
}

func (c *cli) dispatch(ctx context.Context, sess *session.Session, log *zap.Logger, cmd string, args []string) error {
	switch cmd {
	case "list":
		return c.runList(ctx, sess)
	case "search":
		return c.runSearch(ctx, sess, args)
	case "show":
		return c.runShow(ctx, sess, args)
	case "create":
		return c.runCreate(ctx, sess, args)
	case "edit":
		return c.runEdit(ctx, sess, args)
	case "quick-edit":
		return c.runQuickEdit(ctx, sess, args)
	case "delete":
		return c.runDelete(ctx, sess, args)
	case "fake-server":
		return c.runFakeServer(ctx, log, args)
	default:
		return fmt.Errorf("unknown command %q", cmd)
	}
}
