package cmdcore

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

type rawUser struct {
	Name  string
	Admin bool
}

func testSenderMapper() FuncSenderMapper[rawUser, permSender] {
	return FuncSenderMapper[rawUser, permSender]{
		ToDomain: func(r rawUser) permSender {
			perms := map[string]bool{}
			if r.Admin {
				perms["admin"] = true
			}
			return permSender{name: r.Name, perms: perms}
		},
		ToRaw: func(s permSender) rawUser { return rawUser{Name: s.name, Admin: s.Has("admin")} },
	}
}

func TestCommandManager_ExecuteCommandSuccessPath(t *testing.T) {
	m := NewCommandManager[rawUser, permSender](testSenderMapper())
	handled := false
	cmd := NewCommand[permSender](LiteralComponent[permSender]("ping")).
		Handles(func(ctx *Context[permSender]) error { handled = true; return nil })
	require.NoError(t, m.RegisterCommand(cmd))
	m.LockRegistration()

	outcome, err := m.ExecuteCommand(context.Background(), rawUser{Name: "ari"}, "ping").Get()
	require.NoError(t, err)
	require.Equal(t, "ping", outcome.CommandLine)
	require.True(t, handled)
}

func TestCommandManager_ExecuteCommandParseFailureRoutesToExceptionController(t *testing.T) {
	m := NewCommandManager[rawUser, permSender](testSenderMapper())
	cmd := NewCommand[permSender](LiteralComponent[permSender]("ping")).
		Handles(func(ctx *Context[permSender]) error { return nil })
	require.NoError(t, m.RegisterCommand(cmd))
	m.LockRegistration()

	var caughtKind ErrorKind
	m.RegisterException(KindNoSuchCommand, func(ctx *Context[permSender], err *CommandError) error {
		caughtKind = err.Kind
		return errors.New("reported to sender")
	})

	_, err := m.ExecuteCommand(context.Background(), rawUser{Name: "ari"}, "pong").Get()
	require.Error(t, err)
	require.Equal(t, KindNoSuchCommand, caughtKind)
}

func TestCommandManager_ExecuteCommandHandlerErrorWrappedAsCommandExecution(t *testing.T) {
	m := NewCommandManager[rawUser, permSender](testSenderMapper())
	cmd := NewCommand[permSender](LiteralComponent[permSender]("boom")).
		Handles(func(ctx *Context[permSender]) error { return errors.New("handler exploded") })
	require.NoError(t, m.RegisterCommand(cmd))
	m.LockRegistration()

	var caughtKind ErrorKind
	m.RegisterException(KindCommandExecution, func(ctx *Context[permSender], err *CommandError) error {
		caughtKind = err.Kind
		return err
	})

	_, err := m.ExecuteCommand(context.Background(), rawUser{Name: "ari"}, "boom").Get()
	require.Error(t, err)
	require.Equal(t, KindCommandExecution, caughtKind)
}

func TestCommandManager_PreprocessorHaltShortCircuitsExecution(t *testing.T) {
	m := NewCommandManager[rawUser, permSender](testSenderMapper())
	handled := false
	cmd := NewCommand[permSender](LiteralComponent[permSender]("ping")).
		Handles(func(ctx *Context[permSender]) error { handled = true; return nil })
	require.NoError(t, m.RegisterCommand(cmd))
	m.LockRegistration()

	m.RegisterPreprocessor(func(ctx *Context[permSender]) PreprocessVerdict { return Halt })

	outcome, err := m.ExecuteCommand(context.Background(), rawUser{Name: "ari"}, "ping").Get()
	require.NoError(t, err)
	require.Equal(t, "ping", outcome.CommandLine)
	require.False(t, handled)
}

func TestCommandManager_Suggest(t *testing.T) {
	m := NewCommandManager[rawUser, permSender](testSenderMapper())
	cmd := NewCommand[permSender](LiteralComponent[permSender]("ping")).
		Handles(func(ctx *Context[permSender]) error { return nil })
	require.NoError(t, m.RegisterCommand(cmd))
	m.LockRegistration()

	suggestions := m.Suggest(context.Background(), rawUser{Name: "ari"}, "p")
	require.Equal(t, []string{"ping"}, sortedSuggestionTexts(suggestions))
}

func TestCommandManager_SuggestHonorsPreprocessorHalt(t *testing.T) {
	m := NewCommandManager[rawUser, permSender](testSenderMapper())
	cmd := NewCommand[permSender](LiteralComponent[permSender]("ping")).
		Handles(func(ctx *Context[permSender]) error { return nil })
	require.NoError(t, m.RegisterCommand(cmd))
	m.LockRegistration()
	m.RegisterPreprocessor(func(ctx *Context[permSender]) PreprocessVerdict { return Halt })

	suggestions := m.Suggest(context.Background(), rawUser{Name: "ari"}, "p")
	require.Nil(t, suggestions)
}

func TestCommandManager_FormatErrorUsesCaptionRegistry(t *testing.T) {
	m := NewCommandManager[rawUser, permSender](testSenderMapper())
	m.CaptionRegistry().Register(CaptionKey("cmdcore.caption.no_such_command"), func(vars Vars) string {
		return "unknown command: " + vars["input"]
	})

	formatted := m.FormatError(NoSuchCommand("pong"))
	require.Equal(t, "unknown command: pong", formatted)
}
