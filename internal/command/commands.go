package command

import (
	"context"
	"fmt"
	"strings"

	"github.com/msomdec/predictions/internal/domain"
	"github.com/msomdec/predictions/internal/service"
)

var registry = []Command{
	{Name: "help", Summary: "show this message", Visibility: Ephemeral, run: (*Engine).help},
	{Name: "more_help", Summary: "explain how predictions are scored", Visibility: Ephemeral, run: (*Engine).moreHelp},
	{Name: "list", Summary: "list active contracts", Visibility: Broadcast, run: listOf(domain.ContractFilterActive)},
	{Name: "list_resolved", Summary: "list resolved contracts", Visibility: Broadcast, run: listOf(domain.ContractFilterResolved)},
	{Name: "list_cancelled", Summary: "list cancelled contracts", Visibility: Broadcast, run: listOf(domain.ContractFilterCancelled)},
	{Name: "show", Params: []string{"contract"}, Summary: "show a contract, its predictions and scores", Visibility: Broadcast, run: (*Engine).show},
	{Name: "create", Params: []string{"contract", "terms", "when_closes", "house_odds"}, Summary: "open a new contract with your house odds", Visibility: Broadcast, run: (*Engine).create},
	{Name: "predict", Params: []string{"contract", "percentage"}, Summary: "predict the chance a contract resolves true (the verb is optional)", Visibility: Broadcast, run: (*Engine).predict},
	{Name: "resolve", Params: []string{"contract", "true|false"}, Summary: "resolve a contract you created", Visibility: Broadcast, run: (*Engine).resolve},
	{Name: "cancel", Params: []string{"contract"}, Summary: "cancel a contract you created", Visibility: Broadcast, run: (*Engine).cancel},
}

func (e *Engine) help(_ context.Context, _ *Env, _ []string) (string, error) {
	var b strings.Builder
	b.WriteString("Commands:\n")
	for i := range e.commands {
		c := &e.commands[i]
		fmt.Fprintf(&b, "%s  %s\n", c.Usage(), c.Summary)
	}
	fmt.Fprintf(&b, "Example: %s create rain \"It rains in SF tomorrow\" \"2 days\" 30%%", Prefix)
	return b.String(), nil
}

func (e *Engine) moreHelp(_ context.Context, _ *Env, _ []string) (string, error) {
	return strings.Join([]string{
		"Anyone can create a contract: a statement that will turn out true or false, a close time, and your house odds.",
		"Until it closes, anyone can predict the chance it resolves true, as a fraction (0.3) or a percentage (30%).",
		"When the creator resolves it, each prediction is scored against the one before it:",
		"100 * ln(p_after / p_before), using the probability given to the actual outcome.",
		"Moving the estimate toward the truth earns points; moving it away costs points.",
		"The creator's own revisions before anyone else predicts are not scored.",
	}, "\n"), nil
}

func listOf(filter domain.ContractFilter) func(*Engine, context.Context, *Env, []string) (string, error) {
	return func(e *Engine, ctx context.Context, env *Env, _ []string) (string, error) {
		names, err := e.Contracts.List(ctx, env.UoW, filter)
		if err != nil {
			return "", err
		}
		if len(names) == 0 {
			return fmt.Sprintf("no %s contracts", filter), nil
		}
		return strings.Join(names, "\n"), nil
	}
}

func (e *Engine) show(ctx context.Context, env *Env, args []string) (string, error) {
	view, err := e.Contracts.Show(ctx, env.UoW, args[0])
	if err != nil {
		return "", err
	}
	return e.renderView(view, env.Now), nil
}

func (e *Engine) create(ctx context.Context, env *Env, args []string) (string, error) {
	name, terms, whenCloses, houseOdds := args[0], args[1], args[2], args[3]

	closesAt, err := e.Dates.Parse(whenCloses, env.Now)
	if err != nil {
		return "", err
	}

	contract, err := e.Contracts.Create(ctx, env.UoW, env.User, name, terms, closesAt, houseOdds)
	if err != nil {
		return "", err
	}

	// House odds passed validation inside Create.
	odds, _ := service.ParseProbability(houseOdds)
	return fmt.Sprintf("Created contract %s: %s\nCloses %s\nHouse odds %s",
		contract.Name, contract.Terms, e.when(contract.ClosesAt, env.Now), formatPercent(odds)), nil
}

func (e *Engine) predict(ctx context.Context, env *Env, args []string) (string, error) {
	p, err := e.Predictions.Add(ctx, env.UoW, env.User, args[0], args[1])
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s predicts %s for %s", env.User.ExternalID, formatPercent(p.Value), args[0]), nil
}

func (e *Engine) resolve(ctx context.Context, env *Env, args []string) (string, error) {
	contract, err := e.Contracts.Resolve(ctx, env.UoW, env.User, args[0], args[1])
	if err != nil {
		return "", err
	}

	view, err := e.Contracts.Show(ctx, env.UoW, contract.Name)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s resolved %s: %s", env.User.ExternalID, contract.Name, contract.Status())
	writeScores(&b, view.Scores)
	return b.String(), nil
}

func (e *Engine) cancel(ctx context.Context, env *Env, args []string) (string, error) {
	contract, err := e.Contracts.Cancel(ctx, env.UoW, env.User, args[0])
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s cancelled %s", env.User.ExternalID, contract.Name), nil
}
