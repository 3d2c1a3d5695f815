// Command crafty is a command-line client of craftyd.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"google.golang.org/grpc/status"

	v1 "github.com/sachu255/CRAFTY-notes--sub000/internal/api/craftyv1"
	"github.com/sachu255/CRAFTY-notes--sub000/internal/config"
	"github.com/sachu255/CRAFTY-notes--sub000/internal/logger"
)

var (
	version   = "dev"
	buildDate = "unknown"
)

var errUsage = errors.New("usage")

func main() {
	cfg, args, err := config.LoadCLI(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		usage(os.Stderr)
		os.Exit(2)
	}
	log, closeLog, err := logger.New(cfg.Log, os.Stderr)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeout)
	err = run(ctx, &env{
		cfg:    cfg,
		out:    os.Stdout,
		errOut: os.Stderr,
		store:  sessionStore{dir: cfg.ConfigDir},
		dial:   networkDialer(cfg, log),
		now:    time.Now,
	}, args)
	cancel()
	_ = closeLog()

	switch {
	case err == nil:
	case errors.Is(err, errUsage):
		usage(os.Stderr)
		os.Exit(2)
	default:
		fail(os.Stderr, err)
		os.Exit(1)
	}
}

// env is what a command needs besides its arguments.
type env struct {
	cfg    config.CLI
	out    io.Writer
	errOut io.Writer
	store  sessionStore
	dial   dialFunc
	now    func() time.Time
}

type command struct {
	usage string
	// public commands run without a stored session.
	public bool
	run    func(ctx context.Context, e *env, cl *v1.Client, args []string) error
}

var commands map[string]command

func init() {
	commands = map[string]command{}
	for name, c := range noteCommands {
		commands[name] = c
	}
	for name, c := range accountCommands {
		commands[name] = c
	}
}

func run(ctx context.Context, e *env, args []string) error {
	if len(args) == 0 {
		return errUsage
	}
	name, rest := args[0], args[1:]
	switch name {
	case "version":
		fmt.Fprintf(e.out, "crafty %s (%s)\n", version, buildDate)
		return nil
	case "logout":
		return e.store.clear()
	case "whoami":
		sess, err := e.store.load(e.now())
		if err != nil {
			return err
		}
		sess.Token = ""
		return e.print(sess)
	}

	c, ok := commands[name]
	if !ok {
		return fmt.Errorf("unknown command %q: %w", name, errUsage)
	}
	var bearer string
	if !c.public {
		sess, err := e.store.load(e.now())
		if err != nil {
			return err
		}
		bearer = sess.Token
	}
	cc, err := e.dial(bearer)
	if err != nil {
		return err
	}
	defer cc.Close()
	return c.run(ctx, e, v1.NewClient(cc), rest)
}

func (e *env) print(v any) error {
	enc := json.NewEncoder(e.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// printResult prints v and warns on stderr when the server could not store the change.
func (e *env) printResult(v any, res v1.Result) error {
	if res.Unsaved {
		fmt.Fprintln(e.errOut, "warning: change applied but not saved on the server")
	}
	return e.print(v)
}

// newFlags returns a flag set that reports parse errors as usage errors.
func newFlags(name string, out io.Writer) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(out)
	return fs
}

func parse(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%s: %v: %w", fs.Name(), err, errUsage)
	}
	return nil
}

func need(fs *flag.FlagSet, names ...string) error {
	for _, n := range names {
		if fs.Lookup(n).Value.String() == "" {
			return fmt.Errorf("%s: need -%s: %w", fs.Name(), n, errUsage)
		}
	}
	return nil
}

func usage(w io.Writer) {
	fmt.Fprintln(w, `crafty CLI
Usage:
  crafty [-addr HOST:PORT] [-cacert file | -insecure | -plaintext] <cmd> [args]

Commands:
  version
  login      <name>               (saves session)
  logout
  whoami`)
	names := make([]string, 0, len(commands))
	for n := range commands {
		if n != "login" {
			names = append(names, n)
		}
	}
	sort.Strings(names)
	for _, n := range names {
		fmt.Fprintf(w, "  %-10s %s\n", n, commands[n].usage)
	}
}

func fail(w io.Writer, err error) {
	if s, ok := status.FromError(err); ok {
		fmt.Fprintf(w, "rpc error: code=%s msg=%s\n", s.Code(), s.Message())
		return
	}
	fmt.Fprintln(w, err)
}

func splitList(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
