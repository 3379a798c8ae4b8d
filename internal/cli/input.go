package cli

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"sort"
	"strings"

	"vendsim/internal/machine"
)

const (
	ExitSuccess           = 0
	ExitRejected          = 1
	ExitInvalidInvocation = 2
	ExitConfigError       = 3
	ExitInternalError     = 4
	ExitPersistFailure    = 5
)

type Command string

const (
	CmdMenu        Command = "menu"
	CmdInventory   Command = "inventory"
	CmdBuy         Command = "buy"
	CmdRefill      Command = "refill"
	CmdSetCost     Command = "set-cost"
	CmdAddDrink    Command = "add-drink"
	CmdUpdateDrink Command = "update-drink"
	CmdDeleteDrink Command = "delete-drink"
	CmdCollect     Command = "collect"
	CmdSetImage    Command = "set-image"
	CmdClearImage  Command = "clear-image"
	CmdImage       Command = "image"
	CmdHistory     Command = "history"
	CmdReport      Command = "report"
	CmdLowStock    Command = "low-stock"
)

// arity is the accepted number of positional arguments; max < 0 means
// unbounded.
type arity struct {
	min, max int
	usage    string
}

var commands = map[Command]arity{
	CmdMenu:        {0, 0, "menu"},
	CmdInventory:   {0, 0, "inventory"},
	CmdBuy:         {1, -1, "buy <drink>..."},
	CmdRefill:      {2, 2, "refill <ingredient> <amount>"},
	CmdSetCost:     {2, 2, "set-cost <ingredient> <unit-cost>"},
	CmdAddDrink:    {3, -1, "add-drink <name> <price> <ingredient=qty>..."},
	CmdUpdateDrink: {4, -1, "update-drink <old-name> <name> <price> <ingredient=qty>..."},
	CmdDeleteDrink: {1, 1, "delete-drink <name>"},
	CmdCollect:     {0, 0, "collect"},
	CmdSetImage:    {2, 2, "set-image <drink> <path>"},
	CmdClearImage:  {1, 1, "clear-image <drink>"},
	CmdImage:       {1, 1, "image <drink>"},
	CmdHistory:     {0, 0, "history"},
	CmdReport:      {0, 0, "report"},
	CmdLowStock:    {0, 0, "low-stock"},
}

// CLIInvocation is one parsed command line. Empty flag values mean "use the
// configured value".
type CLIInvocation struct {
	StateFile string
	LogLevel  string
	LogFormat string
	Command   Command
	Args      []string
}

type InvocationError struct {
	ExitCode int
	Message  string
}

func (e *InvocationError) Error() string {
	if e == nil {
		return ""
	}
	return e.Message
}

func invalidInvocationf(format string, args ...any) error {
	return &InvocationError{ExitCode: ExitInvalidInvocation, Message: fmt.Sprintf(format, args...)}
}

func configErrorf(format string, args ...any) error {
	return &InvocationError{ExitCode: ExitConfigError, Message: fmt.Sprintf(format, args...)}
}

// ParseInvocation parses global flags, then the command and its arguments.
// Flags must come before the command.
func ParseInvocation(args []string) (CLIInvocation, error) {
	fs := flag.NewFlagSet("vendsim", flag.ContinueOnError)
	fs.SetOutput(io.Discard) // parsing errors are returned, not printed

	var inv CLIInvocation
	fs.StringVar(&inv.StateFile, "state", "", "State document path (default from VENDSIM_STATE_FILE).")
	fs.StringVar(&inv.LogLevel, "log-level", "", "Log level: debug|info|warn|error.")
	fs.StringVar(&inv.LogFormat, "log-format", "", "Log format: console|json.")

	if err := fs.Parse(args); err != nil {
		return CLIInvocation{}, invalidInvocationf("%v", err)
	}
	if fs.NArg() == 0 {
		return CLIInvocation{}, invalidInvocationf("command is required (one of: %s)", strings.Join(commandNames(), ", "))
	}

	name := Command(strings.ToLower(strings.TrimSpace(fs.Arg(0))))
	a, ok := commands[name]
	if !ok {
		return CLIInvocation{}, invalidInvocationf("unknown command %q", fs.Arg(0))
	}
	rest := fs.Args()[1:]
	if len(rest) < a.min || (a.max >= 0 && len(rest) > a.max) {
		return CLIInvocation{}, invalidInvocationf("usage: vendsim [flags] %s", a.usage)
	}
	inv.Command = name
	inv.Args = append([]string(nil), rest...)
	return inv, nil
}

func commandNames() []string {
	names := make([]string, 0, len(commands))
	for c := range commands {
		names = append(names, string(c))
	}
	sort.Strings(names)
	return names
}

// ExitCode maps an error from Run to a semantic exit code.
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var invErr *InvocationError
	if errors.As(err, &invErr) && invErr != nil {
		if invErr.ExitCode != 0 {
			return invErr.ExitCode
		}
		return ExitInvalidInvocation
	}
	if errors.Is(err, machine.ErrPersistWrite) {
		return ExitPersistFailure
	}
	for _, kind := range []error{
		machine.ErrDuplicateDrink,
		machine.ErrDrinkNotFound,
		machine.ErrUnknownIngredient,
		machine.ErrInvalidAmount,
		machine.ErrInsufficientStock,
		machine.ErrInvalidName,
	} {
		if errors.Is(err, kind) {
			return ExitRejected
		}
	}
	return ExitInternalError
}
