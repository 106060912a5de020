// Package command parses chat commands and runs them against the ledgers,
// one unit of work per command.
package command

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/shlex"

	"github.com/msomdec/predictions/internal/domain"
	"github.com/msomdec/predictions/internal/metrics"
	"github.com/msomdec/predictions/internal/service"
	"github.com/msomdec/predictions/internal/timeparse"
)

// Prefix is the slash command users type in chat.
const Prefix = "/predict"

// Visibility controls who sees a response in the chat channel.
type Visibility string

const (
	Ephemeral Visibility = "ephemeral"
	Broadcast Visibility = "broadcast"
)

// Response is what a transport sends back to the chat client.
type Response struct {
	Text       string     `json:"text"`
	Visibility Visibility `json:"visibility"`
}

// Env is what a command runs with besides its arguments.
type Env struct {
	UoW  domain.UnitOfWork
	User *domain.User
	Now  time.Time
}

// Command is one entry of the verb registry. Params names the user-supplied
// arguments; dispatch checks the argument count against it before Run.
type Command struct {
	Name       string
	Params     []string
	Summary    string
	Visibility Visibility
	run        func(e *Engine, ctx context.Context, env *Env, args []string) (string, error)
}

// Usage renders the command the way a user would type it.
func (c *Command) Usage() string {
	var b strings.Builder
	b.WriteString(Prefix + " " + c.Name)
	for _, p := range c.Params {
		b.WriteString(" <" + p + ">")
	}
	return b.String()
}

// Deps are the collaborators an Engine needs. Limiter and Metrics may be nil.
type Deps struct {
	DB          domain.Database
	Identity    *service.IdentityRegistry
	Contracts   *service.ContractLedger
	Predictions *service.PredictionLedger
	Dates       *timeparse.Parser
	Limiter     *service.UserRateLimiter
	Metrics     *metrics.Metrics
	Now         func() time.Time
}

// Engine dispatches command text to registered commands.
type Engine struct {
	Deps
	commands []Command
	byName   map[string]*Command
}

// New creates an Engine with the standard command set.
func New(deps Deps) *Engine {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	e := &Engine{
		Deps:     deps,
		commands: registry,
		byName:   make(map[string]*Command, len(registry)),
	}
	for i := range e.commands {
		e.byName[e.commands[i].Name] = &e.commands[i]
	}
	return e
}

// Commands returns the registered commands in help order.
func (e *Engine) Commands() []Command {
	return e.commands
}

// Execute runs text on behalf of externalUserID. Domain errors become an
// ephemeral response and a nil error; any other error is returned after the
// unit of work has been rolled back.
func (e *Engine) Execute(ctx context.Context, externalUserID, text string) (Response, error) {
	start := time.Now()

	tokens, err := shlex.Split(text)
	if err != nil {
		e.Metrics.ObserveCommand("unparsed", metrics.OutcomeUserError, time.Since(start))
		return Response{
			Text:       fmt.Sprintf("%s: could not parse %q: %v", domain.ErrUsage, text, err),
			Visibility: Ephemeral,
		}, nil
	}
	cmd, args := e.lookup(tokens)

	if e.Limiter != nil && !e.Limiter.Allow(externalUserID) {
		e.Metrics.ObserveCommand(cmd.Name, metrics.OutcomeRateLimited, time.Since(start))
		return Response{Text: domain.ErrRateLimited.Error(), Visibility: Ephemeral}, nil
	}

	resp, err := e.dispatch(ctx, cmd, externalUserID, args)
	switch {
	case err == nil:
		e.Metrics.ObserveCommand(cmd.Name, metrics.OutcomeOK, time.Since(start))
		return resp, nil
	case domain.IsUserError(err):
		e.Metrics.ObserveCommand(cmd.Name, metrics.OutcomeUserError, time.Since(start))
		slog.Debug("command rejected", "verb", cmd.Name, "user", externalUserID, "error", err)
		return Response{Text: err.Error(), Visibility: Ephemeral}, nil
	default:
		e.Metrics.ObserveCommand(cmd.Name, metrics.OutcomeError, time.Since(start))
		return Response{}, fmt.Errorf("run %s: %w", cmd.Name, err)
	}
}

// lookup picks the command named by the first token, falling back to
// predict with every token as its arguments.
func (e *Engine) lookup(tokens []string) (*Command, []string) {
	if len(tokens) == 0 {
		return e.byName["help"], nil
	}
	if cmd, ok := e.byName[tokens[0]]; ok {
		return cmd, tokens[1:]
	}
	return e.byName["predict"], tokens
}

func (e *Engine) dispatch(ctx context.Context, cmd *Command, externalUserID string, args []string) (Response, error) {
	if len(args) != len(cmd.Params) {
		return Response{}, fmt.Errorf("%w: %s", domain.ErrUsage, cmd.Usage())
	}

	var text string
	err := service.WithinUnitOfWork(ctx, e.DB, func(uow domain.UnitOfWork) error {
		user, err := e.Identity.ResolveOrCreate(ctx, uow, externalUserID)
		if err != nil {
			return err
		}
		env := &Env{UoW: uow, User: user, Now: e.Now().UTC()}
		text, err = cmd.run(e, ctx, env, args)
		return err
	})
	if err != nil {
		return Response{}, err
	}
	return Response{Text: text, Visibility: cmd.Visibility}, nil
}
