package release

import (
	"strings"

	"github.com/relgate/relgate/internal/releases"
)

const (
	remoteConfigurationKeyConstant       = "remote"
	baseBranchConfigurationKeyConstant   = "base"
	timeoutConfigurationKeyConstant      = "timeout_minutes"
	pollIntervalConfigurationKeyConstant = "poll_interval_seconds"

	defaultRemoteNameConstant     = "origin"
	defaultBaseBranchConstant     = "main"
	defaultTimeoutMinutesConstant = 30.0

	configurationKeySeparatorConstant = "."
)

// CommandConfiguration captures configuration values for the release command.
type CommandConfiguration struct {
	RemoteName          string  `mapstructure:"remote"`
	BaseBranch          string  `mapstructure:"base"`
	TimeoutMinutes      float64 `mapstructure:"timeout_minutes"`
	PollIntervalSeconds float64 `mapstructure:"poll_interval_seconds"`
}

// DefaultCommandConfiguration provides default settings for the release command.
func DefaultCommandConfiguration() CommandConfiguration {
	return CommandConfiguration{
		RemoteName:          defaultRemoteNameConstant,
		BaseBranch:          defaultBaseBranchConstant,
		TimeoutMinutes:      defaultTimeoutMinutesConstant,
		PollIntervalSeconds: releases.DefaultPollIntervalSeconds,
	}
}

// Sanitize normalizes configuration values, replacing blanks and non-positive
// numbers with defaults.
func (configuration CommandConfiguration) Sanitize() CommandConfiguration {
	sanitized := configuration
	sanitized.RemoteName = strings.TrimSpace(configuration.RemoteName)
	if len(sanitized.RemoteName) == 0 {
		sanitized.RemoteName = defaultRemoteNameConstant
	}
	sanitized.BaseBranch = strings.TrimSpace(configuration.BaseBranch)
	if len(sanitized.BaseBranch) == 0 {
		sanitized.BaseBranch = defaultBaseBranchConstant
	}
	if sanitized.TimeoutMinutes <= 0 {
		sanitized.TimeoutMinutes = defaultTimeoutMinutesConstant
	}
	if sanitized.PollIntervalSeconds <= 0 {
		sanitized.PollIntervalSeconds = releases.DefaultPollIntervalSeconds
	}
	return sanitized
}

// DefaultConfigurationValues produces Viper defaults for the release command.
func DefaultConfigurationValues(rootKey string) map[string]any {
	defaults := DefaultCommandConfiguration()
	return map[string]any{
		rootKey + configurationKeySeparatorConstant + remoteConfigurationKeyConstant:       defaults.RemoteName,
		rootKey + configurationKeySeparatorConstant + baseBranchConfigurationKeyConstant:   defaults.BaseBranch,
		rootKey + configurationKeySeparatorConstant + timeoutConfigurationKeyConstant:      defaults.TimeoutMinutes,
		rootKey + configurationKeySeparatorConstant + pollIntervalConfigurationKeyConstant: defaults.PollIntervalSeconds,
	}
}
