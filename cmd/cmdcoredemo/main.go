// Command cmdcoredemo exercises go.cmdcore.dev/cmdcore end to end: a tiny
// "greet"/"kick" command set dispatched through a CommandManager, driven
// either from a REPL or a single line on argv.
package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"

	"go.cmdcore.dev/cmdcore"
)

// demoSender is the domain sender type cmdcoredemo parameterizes
// CommandManager over: a username plus a set of held permissions.
type demoSender struct {
	Name        string
	Permissions map[string]bool
}

func (s demoSender) Has(permission string) bool { return s.Permissions[permission] }

var stdinMapper = cmdcore.FuncSenderMapper[string, demoSender]{
	ToDomain: func(name string) demoSender {
		return demoSender{Name: name, Permissions: map[string]bool{"cmdcore.demo.kick": name == "admin"}}
	},
	ToRaw: func(s demoSender) string { return s.Name },
}

func buildManager(debug bool) *cmdcore.CommandManager[string, demoSender] {
	opts := []cmdcore.Option[string, demoSender]{}
	if debug {
		opts = append(opts, cmdcore.WithLogger[string, demoSender](commonlog.GetLogger("cmdcoredemo")))
	}
	m := cmdcore.NewCommandManager[string, demoSender](stdinMapper, opts...)

	m.RegisterException(cmdcore.KindNoPermission, func(ctx *cmdcore.Context[demoSender], err *cmdcore.CommandError) error {
		fmt.Fprintf(os.Stderr, "%s lacks permission: %v\n", ctx.Sender.Name, err.Vars)
		return nil
	})

	greetName := cmdcore.RequiredComponent[demoSender, string]("name", cmdcore.NewStringParser[demoSender](cmdcore.StringSingle)).Build()
	greet := cmdcore.NewCommand[demoSender](cmdcore.LiteralComponent[demoSender]("greet")).
		Then(greetName).
		Handles(func(ctx *cmdcore.Context[demoSender]) error {
			name, _ := cmdcore.ComponentValue[demoSender, string](ctx, "name")
			fmt.Printf("Hello, %s! (from %s)\n", name, ctx.Sender.Name)
			return nil
		})
	if err := m.RegisterCommand(greet); err != nil {
		panic(err)
	}

	kickTarget := cmdcore.RequiredComponent[demoSender, string]("target", cmdcore.NewStringParser[demoSender](cmdcore.StringSingle)).Build()
	kickReason := cmdcore.GreedyStringComponent[demoSender]("reason").Build()
	kick := cmdcore.NewCommand[demoSender](cmdcore.LiteralComponent[demoSender]("kick")).
		Then(kickTarget).
		Then(kickReason).
		RequiresPermission(func(s demoSender) bool { return s.Has("cmdcore.demo.kick") }).
		Handles(func(ctx *cmdcore.Context[demoSender]) error {
			target, _ := cmdcore.ComponentValue[demoSender, string](ctx, "target")
			reason, _ := cmdcore.ComponentValue[demoSender, string](ctx, "reason")
			fmt.Printf("%s kicked %s: %s\n", ctx.Sender.Name, target, reason)
			return nil
		})
	if err := m.RegisterCommand(kick); err != nil {
		panic(err)
	}

	m.LockRegistration()
	return m
}

func runLine(m *cmdcore.CommandManager[string, demoSender], sender, line string) {
	outcome, err := m.ExecuteCommand(context.Background(), sender, line).Get()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %s\n", m.FormatError(err))
		return
	}
	_ = outcome
}

func newRootCmd() *cobra.Command {
	var debug bool
	root := &cobra.Command{
		Use:   "cmdcoredemo",
		Short: "Demo shell for go.cmdcore.dev/cmdcore",
	}
	root.PersistentFlags().BoolVar(&debug, "debug", false, "enable verbose logging")

	replCmd := &cobra.Command{
		Use:   "repl",
		Short: "Read command lines from stdin and dispatch them",
		RunE: func(cmd *cobra.Command, args []string) error {
			m := buildManager(debug)
			sender := os.Getenv("CMDCORE_DEMO_USER")
			if sender == "" {
				sender = "player"
			}
			scanner := bufio.NewScanner(os.Stdin)
			for scanner.Scan() {
				line := strings.TrimSpace(scanner.Text())
				if line == "" {
					continue
				}
				if line == "exit" || line == "quit" {
					return nil
				}
				runLine(m, sender, line)
			}
			return scanner.Err()
		},
	}

	execCmd := &cobra.Command{
		Use:   "exec <line...>",
		Short: "Dispatch a single command line and exit",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m := buildManager(debug)
			sender := os.Getenv("CMDCORE_DEMO_USER")
			if sender == "" {
				sender = "player"
			}
			runLine(m, sender, strings.Join(args, " "))
			return nil
		},
	}

	root.AddCommand(replCmd, execCmd)
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
