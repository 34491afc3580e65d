package runner

import (
	"log/slog"
)

// Option configures a Runner.
type Option func(*Runner)

// WithHandler sets the IO strategy. Defaults to a TextHandler on stdio.
func WithHandler(h IOHandler) Option {
	return func(r *Runner) {
		r.handler = h
	}
}

// WithSessionID sets the session every turn of this conversation belongs to.
func WithSessionID(id string) Option {
	return func(r *Runner) {
		r.sessionID = id
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		r.logger = logger
	}
}

// WithExitCommands replaces the inputs that end the conversation.
func WithExitCommands(cmds ...string) Option {
	return func(r *Runner) {
		r.exitCommands = cmds
	}
}

// WithSkipBlank controls whether blank lines are ignored instead of sent as turns.
func WithSkipBlank(skip bool) Option {
	return func(r *Runner) {
		r.skipBlank = skip
	}
}
