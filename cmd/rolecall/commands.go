// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/rolecall/lib/config"
	"github.com/bureau-foundation/rolecall/lib/lifecycle"
	"github.com/bureau-foundation/rolecall/lib/reconcile"
	"github.com/bureau-foundation/rolecall/lib/ref"
	"github.com/bureau-foundation/rolecall/lib/rolecard"
	"github.com/bureau-foundation/rolecall/lib/roster"
	"github.com/bureau-foundation/rolecall/lib/schema"
	"github.com/bureau-foundation/rolecall/lib/service"
	"github.com/bureau-foundation/rolecall/lib/version"
)

// SocketEnvironmentVariable overrides the socket path when --socket is
// absent.
const SocketEnvironmentVariable = "ROLECALL_SOCKET"

// callTimeout bounds one administrative call, including any pass it
// runs.
const callTimeout = 3 * time.Minute

// connection holds the flags that locate the service socket.
type connection struct {
	socketPath string
	configPath string
}

func (c *connection) addFlags(flagSet *pflag.FlagSet) {
	flagSet.StringVar(&c.socketPath, "socket", "", "service socket path (default: $"+SocketEnvironmentVariable+", or socket_path from the config file)")
	flagSet.StringVar(&c.configPath, "config", "", "service config file to read socket_path from (default: $"+config.EnvironmentVariable+")")
}

// resolve returns the socket path: --socket, $ROLECALL_SOCKET, then the
// service config's socket_path.
func (c *connection) resolve() (string, error) {
	if c.socketPath != "" {
		return c.socketPath, nil
	}
	if path := os.Getenv(SocketEnvironmentVariable); path != "" {
		return path, nil
	}
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return "", fmt.Errorf("locating the service socket: %w (or pass --socket)", err)
	}
	return cfg.SocketPath, nil
}

// call sends one request to the service.
func (c *connection) call(action string, fields map[string]any, result any) error {
	socketPath, err := c.resolve()
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), callTimeout)
	defer cancel()
	return service.NewServiceClient(socketPath).Call(ctx, action, fields, result)
}

// output carries the --json flag and the writer for results.
type output struct {
	asJSON bool
	out    io.Writer
}

func (o *output) addFlags(flagSet *pflag.FlagSet) {
	flagSet.BoolVar(&o.asJSON, "json", false, "output as JSON")
}

// emitJSON writes value as indented JSON if --json is set and reports
// whether it did.
func (o *output) emitJSON(value any) (bool, error) {
	if !o.asJSON {
		return false, nil
	}
	encoder := json.NewEncoder(o.out)
	encoder.SetIndent("", "  ")
	return true, encoder.Encode(value)
}

func newRoot(stdout, stderr io.Writer) *Command {
	return &Command{
		Name:    "rolecall",
		Summary: "Administer the role-membership board",
		Description: "rolecall administers a running rolecall-service: it places the board,\n" +
			"chooses which roles the board tracks, and forces updates.",
		help: stderr,
		Subcommands: []*Command{
			statusCommand(stdout),
			placeCommand(stdout),
			addRoleCommand(stdout),
			removeRoleCommand(stdout),
			setTitleCommand(stdout),
			listRolesCommand(stdout),
			updateNowCommand(stdout),
			previewCommand(stdout),
			versionCommand(stdout),
		},
	}
}

// flagsFor builds a flag-set constructor for a command with the
// connection flags, an optional output, and extra flags.
func flagsFor(name string, conn *connection, out *output, extra func(*pflag.FlagSet)) func() *pflag.FlagSet {
	return func() *pflag.FlagSet {
		flagSet := pflag.NewFlagSet(name, pflag.ContinueOnError)
		conn.addFlags(flagSet)
		if out != nil {
			out.addFlags(flagSet)
		}
		if extra != nil {
			extra(flagSet)
		}
		return flagSet
	}
}

func requireArgs(args []string, count int, usage string) error {
	if len(args) != count {
		return fmt.Errorf("usage: %s", usage)
	}
	return nil
}

func statusCommand(stdout io.Writer) *Command {
	var conn connection
	out := output{out: stdout}
	return &Command{
		Name:    "status",
		Summary: "Show the board location, tracked roles and last pass",
		Flags:   flagsFor("status", &conn, &out, nil),
		Run: func(args []string) error {
			if err := requireArgs(args, 0, "rolecall status"); err != nil {
				return err
			}
			var status reconcile.Status
			if err := conn.call("status", nil, &status); err != nil {
				return err
			}
			if done, err := out.emitJSON(status); done {
				return err
			}
			writeStatus(stdout, status)
			return nil
		},
	}
}

func writeStatus(w io.Writer, status reconcile.Status) {
	tw := tabwriter.NewWriter(w, 2, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Title:\t%s\n", status.Title)
	if status.Pointer != nil {
		fmt.Fprintf(tw, "Board:\t%s in %s\n", status.Pointer.EventID, status.Pointer.RoomID)
	} else {
		fmt.Fprintf(tw, "Board:\tnot placed\n")
	}
	if status.ConfirmedAt != nil {
		fmt.Fprintf(tw, "Confirmed:\t%s\n", status.ConfirmedAt.UTC().Format(time.RFC3339))
	}
	if len(status.TrackedRoles) == 0 {
		fmt.Fprintf(tw, "Tracking:\tall roles with members\n")
	} else {
		fmt.Fprintf(tw, "Tracking:\t%s\n", strings.Join(status.TrackedRoles, ", "))
	}
	fmt.Fprintf(tw, "Interval:\t%s\n", status.Interval)
	fmt.Fprintf(tw, "Passes:\t%d\n", status.Passes)
	if status.LastPass != nil {
		fmt.Fprintf(tw, "Last pass:\t%s\n", describePass(*status.LastPass))
	}
	if status.PassRunning {
		fmt.Fprintf(tw, "Running:\tyes\n")
	}
	fmt.Fprintf(tw, "Started:\t%s\n", status.StartedAt.UTC().Format(time.RFC3339))
	tw.Flush()
}

func describePass(pass reconcile.PassResult) string {
	description := fmt.Sprintf("%s (%s trigger) at %s", pass.Outcome, pass.Trigger, pass.Started.UTC().Format(time.RFC3339))
	if pass.Error != "" {
		description += ": " + pass.Error
	}
	return description
}

func placeCommand(stdout io.Writer) *Command {
	var conn connection
	return &Command{
		Name:        "place",
		Summary:     "Post the board in a room, replacing any existing board",
		Description: "Post a fresh board in ROOM. The previous board, if any, is redacted.",
		Usage:       "rolecall place <room-id> [flags]",
		Flags:       flagsFor("place", &conn, nil, nil),
		Run: func(args []string) error {
			if err := requireArgs(args, 1, "rolecall place <room-id>"); err != nil {
				return err
			}
			if _, err := ref.ParseRoomID(args[0]); err != nil {
				return err
			}
			var placed struct {
				RoomID  ref.RoomID  `json:"room_id"`
				EventID ref.EventID `json:"event_id"`
			}
			if err := conn.call("place", map[string]any{"room_id": args[0]}, &placed); err != nil {
				return err
			}
			fmt.Fprintf(stdout, "Board placed: %s in %s\n", placed.EventID, placed.RoomID)
			return nil
		},
	}
}

// adminCommand builds a command that sends one string argument and
// prints the AdminResult.
func adminCommand(stdout io.Writer, name, action, field, argName, summary string) *Command {
	var conn connection
	usage := fmt.Sprintf("rolecall %s <%s>", name, argName)
	return &Command{
		Name:    name,
		Summary: summary,
		Usage:   usage + " [flags]",
		Flags:   flagsFor(name, &conn, nil, nil),
		Run: func(args []string) error {
			if err := requireArgs(args, 1, usage); err != nil {
				return err
			}
			var result reconcile.AdminResult
			if err := conn.call(action, map[string]any{field: args[0]}, &result); err != nil {
				return err
			}
			fmt.Fprintln(stdout, result.Message)
			if result.Pass != nil {
				fmt.Fprintf(stdout, "Board update: %s\n", describePass(*result.Pass))
			}
			return nil
		},
	}
}

func addRoleCommand(stdout io.Writer) *Command {
	return adminCommand(stdout, "add-role", "add_role", "role_id", "role-id", "Track a role on the board")
}

func removeRoleCommand(stdout io.Writer) *Command {
	return adminCommand(stdout, "remove-role", "remove_role", "role_id", "role-id", "Stop tracking a role")
}

func setTitleCommand(stdout io.Writer) *Command {
	return adminCommand(stdout, "set-title", "set_title", "title", "title", "Change the board title")
}

func listRolesCommand(stdout io.Writer) *Command {
	var conn connection
	out := output{out: stdout}
	return &Command{
		Name:    "list-roles",
		Summary: "List tracked roles with their current names",
		Flags:   flagsFor("list-roles", &conn, &out, nil),
		Run: func(args []string) error {
			if err := requireArgs(args, 0, "rolecall list-roles"); err != nil {
				return err
			}
			var listed reconcile.TrackedRoles
			if err := conn.call("list_roles", nil, &listed); err != nil {
				return err
			}
			if done, err := out.emitJSON(listed); done {
				return err
			}
			if listed.Dynamic {
				fmt.Fprintln(stdout, "No roles are tracked; the board shows every role with members.")
				return nil
			}
			tw := tabwriter.NewWriter(stdout, 2, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNAME")
			for _, role := range listed.Roles {
				fmt.Fprintf(tw, "%s\t%s\n", role.ID, role.Name)
			}
			return tw.Flush()
		},
	}
}

func updateNowCommand(stdout io.Writer) *Command {
	var conn connection
	return &Command{
		Name:    "update-now",
		Summary: "Run a reconciliation pass immediately",
		Flags:   flagsFor("update-now", &conn, nil, nil),
		Run: func(args []string) error {
			if err := requireArgs(args, 0, "rolecall update-now"); err != nil {
				return err
			}
			var pass reconcile.PassResult
			if err := conn.call("update_now", nil, &pass); err != nil {
				return err
			}
			fmt.Fprintf(stdout, "Board update: %s\n", describePass(pass))
			if pass.Outcome != lifecycle.OutcomeUpdated && pass.Outcome != reconcile.OutcomeCoalesced {
				return &exitError{Code: 1}
			}
			return nil
		},
	}
}

func previewCommand(stdout io.Writer) *Command {
	var (
		conn       connection
		rosterPath string
		title      string
		tracked    []string
		html       bool
	)
	out := output{out: stdout}
	return &Command{
		Name:    "preview",
		Summary: "Render the board without posting it",
		Description: "Render the board without posting it. With --roster, the board is\n" +
			"rendered offline from a JSONC roster file; otherwise the running\n" +
			"service renders it from the live roster.",
		Flags: flagsFor("preview", &conn, &out, func(flagSet *pflag.FlagSet) {
			flagSet.StringVar(&rosterPath, "roster", "", "render offline from this JSONC roster file")
			flagSet.StringVar(&title, "title", "", "board title for offline rendering (default: the service default)")
			flagSet.StringSliceVar(&tracked, "track", nil, "tracked role IDs for offline rendering (default: all roles with members)")
			flagSet.BoolVar(&html, "html", false, "print the HTML body instead of markdown (offline only)")
		}),
		Run: func(args []string) error {
			if err := requireArgs(args, 0, "rolecall preview"); err != nil {
				return err
			}
			if rosterPath == "" {
				var preview struct {
					Markdown string                  `json:"markdown"`
					Board    schema.RoleBoardContent `json:"board"`
				}
				if err := conn.call("preview", nil, &preview); err != nil {
					return err
				}
				if done, err := out.emitJSON(preview.Board); done {
					return err
				}
				fmt.Fprintln(stdout, preview.Markdown)
				return nil
			}

			document, err := renderOffline(rosterPath, title, tracked)
			if err != nil {
				return err
			}
			if done, err := out.emitJSON(document.Board()); done {
				return err
			}
			if html {
				body, err := document.HTML()
				if err != nil {
					return err
				}
				fmt.Fprint(stdout, body)
				return nil
			}
			fmt.Fprintln(stdout, document.Markdown())
			return nil
		},
	}
}

// renderOffline renders a board from a roster file. A roster without
// fetched_at is stamped with the current time.
func renderOffline(path, title string, tracked []string) (rolecard.Document, error) {
	current, err := roster.ReadFile(path)
	if err != nil {
		return rolecard.Document{}, err
	}
	if current.FetchedAt.IsZero() {
		current.FetchedAt = time.Now()
	}
	if title == "" {
		title = "Role Member Tracker"
	}
	return rolecard.Render(roster.Build(current, tracked), title), nil
}

func versionCommand(stdout io.Writer) *Command {
	return &Command{
		Name:    "version",
		Summary: "Print version information",
		Run: func(args []string) error {
			fmt.Fprintf(stdout, "rolecall %s\n", version.Info())
			return nil
		},
	}
}
