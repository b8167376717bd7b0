package release

import (
	"go.uber.org/zap"

	"github.com/relgate/relgate/internal/execshell"
	"github.com/relgate/relgate/internal/githubcli"
	"github.com/relgate/relgate/internal/releases"
	"github.com/relgate/relgate/internal/ui"
)

// LoggerProvider yields a zap logger for command execution.
type LoggerProvider func() *zap.Logger

func resolveLogger(provider LoggerProvider) *zap.Logger {
	if provider == nil {
		return zap.NewNop()
	}
	logger := provider()
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}

func (builder *CommandBuilder) resolveGitExecutor(logger *zap.Logger, humanReadableLogging bool) (releases.GitExecutor, error) {
	if builder.GitExecutor != nil {
		return builder.GitExecutor, nil
	}

	commandRunner := execshell.NewOSCommandRunner()
	shellExecutor, creationError := execshell.NewShellExecutor(logger, commandRunner)
	if creationError != nil {
		return nil, creationError
	}
	if humanReadableLogging {
		shellExecutor.SetCommandEventObserver(ui.NewConsoleCommandEventLogger(logger))
	}
	return shellExecutor, nil
}

func (builder *CommandBuilder) resolveGitHubClient(gitExecutor releases.GitExecutor) (releases.GitHubClient, error) {
	if builder.GitHubClient != nil {
		return builder.GitHubClient, nil
	}

	commandExecutor, executorSupported := gitExecutor.(githubcli.GitHubCommandExecutor)
	if !executorSupported {
		commandRunner := execshell.NewOSCommandRunner()
		shellExecutor, creationError := execshell.NewShellExecutor(zap.NewNop(), commandRunner)
		if creationError != nil {
			return nil, creationError
		}
		commandExecutor = shellExecutor
	}
	return githubcli.NewClient(commandExecutor)
}

func (builder *CommandBuilder) resolveClock() releases.Clock {
	if builder.Clock != nil {
		return builder.Clock
	}
	return releases.NewSystemClock()
}
