package cli

import (
	"context"
	"io"

	"go.uber.org/zap"

	"vendsim/internal/config"
	"vendsim/internal/logging"
	"vendsim/internal/machine"
	"vendsim/internal/store"
)

// EnvFile is the optional dotenv file read from the working directory.
const EnvFile = ".env"

type CLIResult struct {
	ExitCode int
	Command  Command
}

// Run is a high-level CLI entrypoint suitable for black-box tests.
// It accepts the argument slice (excluding argv[0]), writes command output to
// stdout and returns the semantic exit code plus any error.
func Run(ctx context.Context, args []string, stdout io.Writer) (CLIResult, error) {
	inv, err := ParseInvocation(args)
	if err != nil {
		return CLIResult{ExitCode: ExitCode(err)}, err
	}
	cfg, err := resolveConfig(inv)
	if err != nil {
		return CLIResult{ExitCode: ExitCode(err), Command: inv.Command}, err
	}
	log, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		err = configErrorf("%v", err)
		return CLIResult{ExitCode: ExitCode(err), Command: inv.Command}, err
	}
	defer func() { _ = log.Sync() }()

	return Execute(ctx, inv, cfg, stdout, log)
}

func resolveConfig(inv CLIInvocation) (config.Config, error) {
	cfg, err := config.Load(EnvFile)
	if err != nil {
		return config.Config{}, configErrorf("config: %v", err)
	}
	if inv.StateFile != "" {
		cfg.StateFile = inv.StateFile
	}
	if inv.LogLevel != "" {
		cfg.LogLevel = inv.LogLevel
	}
	if inv.LogFormat != "" {
		cfg.LogFormat = inv.LogFormat
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, configErrorf("config: %v", err)
	}
	return cfg, nil
}

// Execute opens the machine at cfg.StateFile, runs one command and closes the
// machine again, which flushes its state.
func Execute(ctx context.Context, inv CLIInvocation, cfg config.Config, stdout io.Writer, log *zap.Logger) (res CLIResult, execErr error) {
	res.Command = inv.Command
	defer func() {
		res.ExitCode = ExitCode(execErr)
	}()

	if err := ctx.Err(); err != nil {
		return res, err
	}
	if log == nil {
		log = zap.NewNop()
	}
	log = log.With(zap.String("command", string(inv.Command)))

	st, err := store.NewFile(cfg.StateFile, log)
	if err != nil {
		return res, configErrorf("state file: %v", err)
	}
	m, err := machine.Open(st, machine.WithLogger(log))
	if err != nil {
		return res, err
	}

	cmdErr := dispatch(m, inv, cfg, stdout)
	closeErr := m.Close()
	if cmdErr != nil {
		log.Debug("command failed", zap.Error(cmdErr))
		return res, cmdErr
	}
	return res, closeErr
}
