// Package resolver turns classified player commands into backend calls and
// applies their outcomes to the world. All world mutation driven by backend
// output happens here.
package resolver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/DanJbk/tilequest/internal/services"
	"github.com/DanJbk/tilequest/pkg/entity"
	"github.com/DanJbk/tilequest/pkg/fuzzy"
	"github.com/DanJbk/tilequest/pkg/parse"
	"github.com/DanJbk/tilequest/pkg/prompts"
	"github.com/DanJbk/tilequest/pkg/world"
)

// ErrResolutionActive reports that a resolution is already in flight. The
// caller retries after the current one finishes.
var ErrResolutionActive = errors.New("resolution already in progress")

// resolutionTemperature pins action verdicts to greedy sampling so the same
// situation resolves the same way.
const resolutionTemperature = 0.0

// Resolution is the outcome of one player command. Exactly one of Stream and
// Text is set: streamed narration arrives lazily, everything else is final
// text. Success is meaningful for pickup, interact and trade.
type Resolution struct {
	Intent  prompts.Intent
	Text    string
	Stream  <-chan services.StreamChunk
	Success bool
}

// Resolver resolves commands against a world through a gateway. A single
// resolution may be in flight at a time.
type Resolver struct {
	world   *world.World
	gateway services.Gateway
	builder *prompts.Builder
	logger  *slog.Logger

	// Temperature applies to narrative generation only; verdict passes
	// always run at zero.
	Temperature float64

	mu   sync.Mutex
	busy bool
}

// New creates a resolver for the given world and gateway.
func New(w *world.World, gateway services.Gateway, logger *slog.Logger) *Resolver {
	return &Resolver{
		world:       w,
		gateway:     gateway,
		builder:     prompts.NewBuilder(w),
		logger:      logger,
		Temperature: 0.8,
	}
}

// Resolve classifies and resolves one command. turn is the UI targeting tag,
// text the player's words. On any gateway error the world is left untouched.
func (r *Resolver) Resolve(ctx context.Context, turn, text string) (*Resolution, error) {
	r.mu.Lock()
	if r.busy {
		r.mu.Unlock()
		return nil, ErrResolutionActive
	}
	r.busy = true
	r.mu.Unlock()

	res, err := r.resolve(ctx, turn, text)
	if err != nil || res.Stream == nil {
		// Streamed resolutions stay busy until the stream is drained.
		r.setIdle()
	}
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (r *Resolver) setIdle() {
	r.mu.Lock()
	r.busy = false
	r.mu.Unlock()
}

func (r *Resolver) resolve(ctx context.Context, turn, text string) (*Resolution, error) {
	req, err := r.builder.Build(turn, text)
	if err != nil {
		return nil, err
	}

	r.logger.Debug("resolving command", "intent", req.Intent.String(), "turn", turn, "text", text)

	if req.LocalText != "" {
		return &Resolution{Intent: req.Intent, Text: req.LocalText}, nil
	}

	switch req.Intent {
	case prompts.IntentLook:
		return r.resolveLook(ctx, req)
	case prompts.IntentPickup:
		return r.resolvePickup(ctx, req)
	case prompts.IntentInteract:
		return r.resolveInteract(ctx, req)
	case prompts.IntentTrade:
		return r.resolveTrade(ctx, req)
	default:
		return r.resolveNarrative(ctx, req)
	}
}

// resolveNarrative streams free text and look-at descriptions. The returned
// stream is wrapped so the resolver goes idle when it is drained.
func (r *Resolver) resolveNarrative(ctx context.Context, req *prompts.Request) (*Resolution, error) {
	ch, err := r.gateway.GenerateStream(ctx, services.GenerateRequest{
		Prompt:      req.Prompt,
		Temperature: r.Temperature,
	})
	if err != nil {
		return nil, err
	}

	out := make(chan services.StreamChunk)
	go func() {
		defer close(out)
		defer r.setIdle()
		for chunk := range ch {
			out <- chunk
		}
	}()

	return &Resolution{Intent: req.Intent, Stream: out}, nil
}

func (r *Resolver) resolveLook(ctx context.Context, req *prompts.Request) (*Resolution, error) {
	raw, err := r.gateway.Generate(ctx, services.GenerateRequest{
		Prompt:      req.Prompt,
		Temperature: r.Temperature,
	})
	if err != nil {
		return nil, err
	}

	desc := parse.ExtractTags(raw, "description")
	if desc == "" {
		desc = parse.StripScratchpad(raw)
	}
	return &Resolution{Intent: req.Intent, Text: desc}, nil
}

func (r *Resolver) resolvePickup(ctx context.Context, req *prompts.Request) (*Resolution, error) {
	raw, err := r.gateway.Generate(ctx, services.GenerateRequest{
		Prompt:      req.Prompt,
		Temperature: resolutionTemperature,
	})
	if err != nil {
		return nil, err
	}

	if !parse.IsAffirmative(raw) {
		r.logger.Debug("pickup refused", "target", req.Target.Name())
		return &Resolution{
			Intent: req.Intent,
			Text:   fmt.Sprintf("You fail to pick up the %s.", req.Target.Name()),
		}, nil
	}

	if !r.world.Player.AddItem(req.Target) {
		return nil, fmt.Errorf("already carrying an item named %s", req.Target.Name())
	}
	req.Target.Active = false
	r.logger.Info("entity picked up", "target", req.Target.Name())

	return &Resolution{
		Intent:  req.Intent,
		Text:    fmt.Sprintf("You pick up the %s.", req.Target.Name()),
		Success: true,
	}, nil
}

func (r *Resolver) resolveInteract(ctx context.Context, req *prompts.Request) (*Resolution, error) {
	raw, err := r.gateway.Generate(ctx, services.GenerateRequest{
		Prompt:      req.Prompt,
		Temperature: resolutionTemperature,
	})
	if err != nil {
		return nil, err
	}

	verdict := parse.StripScratchpad(raw)
	if !parse.IsAffirmative(raw) {
		r.logger.Debug("interaction refused", "target", req.Target.Name(), "verdict", verdict)
		return &Resolution{Intent: req.Intent, Text: verdict}, nil
	}

	// Second pass: the verdict settled that the action succeeds, now ask
	// what it changed.
	updateRaw, err := r.gateway.Generate(ctx, services.GenerateRequest{
		Prompt:      r.builder.UpdatePrompt(req.Target, req.Action),
		Temperature: resolutionTemperature,
	})
	if err != nil {
		return nil, err
	}

	r.applyUpdates(req.Target, parse.ExtractPropertyUpdates(updateRaw))
	return &Resolution{Intent: req.Intent, Text: verdict, Success: true}, nil
}

// applyUpdates writes backend-proposed property changes onto the target.
// Updates naming a key the target does not have are dropped, never added.
func (r *Resolver) applyUpdates(target *entity.Entity, updates []parse.PropertyUpdate) {
	for _, u := range updates {
		if target.SetProperty(u.Property, u.Value) {
			r.logger.Info("property updated",
				"entity", target.Name(), "property", u.Property, "value", u.Value.String())
		} else {
			r.logger.Warn("dropping update for unknown property",
				"entity", target.Name(), "property", u.Property)
		}
	}
}

func (r *Resolver) resolveTrade(ctx context.Context, req *prompts.Request) (*Resolution, error) {
	raw, err := r.gateway.Generate(ctx, services.GenerateRequest{
		Prompt:      req.Prompt,
		Temperature: resolutionTemperature,
	})
	if err != nil {
		return nil, err
	}

	verdict := parse.StripScratchpad(raw)
	given, received, ok := parse.ExtractTrade(raw)
	if !ok {
		r.logger.Debug("trade refused", "target", req.Target.Name(), "verdict", verdict)
		return &Resolution{Intent: req.Intent, Text: verdict}, nil
	}

	giveItem := matchItem(r.world.Player, given)
	receiveItem := matchItem(req.Target, received)
	if giveItem == nil || receiveItem == nil {
		r.logger.Warn("trade names unmatched items",
			"target", req.Target.Name(), "given", given, "received", received)
		return &Resolution{Intent: req.Intent, Text: verdict}, nil
	}

	// Both sides resolved: swap, or change nothing at all.
	r.world.Player.RemoveItem(giveItem.Name())
	if !req.Target.AddItem(giveItem) {
		// The partner already carries an item by that name. Put it back.
		r.world.Player.AddItem(giveItem)
		return &Resolution{Intent: req.Intent, Text: verdict}, nil
	}
	req.Target.RemoveItem(receiveItem.Name())
	if !r.world.Player.AddItem(receiveItem) {
		req.Target.AddItem(receiveItem)
		req.Target.RemoveItem(giveItem.Name())
		r.world.Player.AddItem(giveItem)
		return &Resolution{Intent: req.Intent, Text: verdict}, nil
	}

	r.logger.Info("trade completed",
		"target", req.Target.Name(), "given", giveItem.Name(), "received", receiveItem.Name())
	return &Resolution{
		Intent:  req.Intent,
		Text:    fmt.Sprintf("You hand over the %s and receive the %s.", giveItem.Name(), receiveItem.Name()),
		Success: true,
	}, nil
}

// matchItem fuzzy-matches a backend-reported item name against an inventory.
func matchItem(owner *entity.Entity, name string) *entity.Entity {
	best, ok := fuzzy.BestMatch(name, owner.ItemNames())
	if !ok {
		return nil
	}
	return owner.FindItem(best.Name)
}
