// Package prompts classifies player commands into intents and renders the
// backend prompt for each one. The Builder only reads world state; applying
// outcomes is the resolver's job.
package prompts

import (
	"errors"
	"fmt"
	"strings"

	"github.com/DanJbk/tilequest/pkg/entity"
	"github.com/DanJbk/tilequest/pkg/world"
)

// ErrTargetNotFound reports that a targeted command (interact, trade) named
// an entity that is not present or not in reach.
var ErrTargetNotFound = errors.New("target entity not found")

// Intent is the resolved command category.
type Intent int

const (
	IntentFreeform Intent = iota
	IntentLook
	IntentLookAt
	IntentPickup
	IntentInteract
	IntentTrade
)

func (i Intent) String() string {
	switch i {
	case IntentLook:
		return "look"
	case IntentLookAt:
		return "look_at"
	case IntentPickup:
		return "pickup"
	case IntentInteract:
		return "interact"
	case IntentTrade:
		return "trade"
	default:
		return "freeform"
	}
}

// Request is a classified command ready for resolution. When LocalText is
// non-empty the command was answered without the backend and Prompt is unset.
type Request struct {
	Intent    Intent
	Prompt    string
	Target    *entity.Entity
	Action    string
	LocalText string
	Stream    bool
}

// Builder classifies commands against a world.
type Builder struct {
	world *world.World
}

func NewBuilder(w *world.World) *Builder {
	return &Builder{world: w}
}

// Build classifies a command and renders its prompt. turn carries the UI
// targeting tag ("interact -> <name>", "trade -> <name>"); text is what the
// player typed. Classification order: look at, look, pickup, interact,
// trade, free-form.
func (b *Builder) Build(turn, text string) (*Request, error) {
	text = strings.TrimSpace(text)
	lower := strings.ToLower(text)

	switch {
	case strings.HasPrefix(lower, "look at "):
		return b.buildLookAt(text, strings.TrimSpace(text[len("look at "):])), nil
	case strings.HasPrefix(lower, "look"):
		return b.buildLook(), nil
	case strings.HasPrefix(lower, "pick up "):
		return b.buildPickup(strings.TrimSpace(text[len("pick up "):])), nil
	case strings.HasPrefix(lower, "pickup "):
		return b.buildPickup(strings.TrimSpace(text[len("pickup "):])), nil
	}

	if tag, name, ok := turnTag(turn); ok {
		switch tag {
		case "interact":
			return b.buildInteract(name, text)
		case "trade":
			return b.buildTrade(name, text)
		}
	}

	return &Request{Intent: IntentFreeform, Prompt: text, Stream: true}, nil
}

// UpdatePrompt renders the second-pass prompt that turns a successful
// interaction into set_property calls for the target.
func (b *Builder) UpdatePrompt(target *entity.Entity, action string) string {
	return updatePropertiesPrompt(
		b.world.Player.Describe(fullDescribe),
		target.Describe(fullDescribe),
		action,
	)
}

// fullDescribe is the action-resolution view of an entity: name, hidden
// properties, and the inventory summary all visible to the backend.
var fullDescribe = entity.DescribeOptions{
	IncludeName:      true,
	IncludeInventory: true,
	IncludeHidden:    true,
}

// actionDescribe is fullDescribe without the inventory line; pickup judges
// the item itself, not what anyone is carrying.
var actionDescribe = entity.DescribeOptions{
	IncludeName:   true,
	IncludeHidden: true,
}

// sceneDescribe is the narrative view: no hidden properties, and the npc
// marker is bookkeeping rather than something the player would see.
var sceneDescribe = entity.DescribeOptions{
	IncludeName: true,
	ExcludeKeys: []string{entity.KeyNPC},
}

func (b *Builder) buildLook() *Request {
	var parts []string
	for _, e := range b.world.Nearby(b.world.Player, entity.ReachDistance) {
		parts = append(parts, e.Describe(sceneDescribe))
	}
	return &Request{
		Intent: IntentLook,
		Prompt: lookPrompt(strings.Join(parts, "\n\n")),
	}
}

func (b *Builder) buildLookAt(command, name string) *Request {
	lower := strings.ToLower(name)
	for _, e := range b.world.Objects() {
		if !e.Active || !strings.Contains(strings.ToLower(e.Name()), lower) {
			continue
		}
		opts := sceneDescribe
		opts.IncludeName = false
		return &Request{
			Intent: IntentLookAt,
			Prompt: lookAtPrompt(e.Name(), e.Describe(opts)),
			Target: e,
			Stream: true,
		}
	}
	// The failure comment is still generated, unlike pickup's local message.
	return &Request{
		Intent: IntentLookAt,
		Prompt: lookAtFailPrompt(command),
		Stream: true,
	}
}

func (b *Builder) buildPickup(name string) *Request {
	for _, e := range b.world.Nearby(b.world.Player, entity.ReachDistance) {
		if !strings.EqualFold(e.Name(), name) {
			continue
		}
		action := "pick up the " + e.Name()
		return &Request{
			Intent: IntentPickup,
			Prompt: deterministicActionPrompt(
				b.world.Player.Describe(actionDescribe),
				e.Describe(actionDescribe),
				action,
			),
			Target: e,
			Action: action,
		}
	}
	return &Request{
		Intent:    IntentPickup,
		LocalText: fmt.Sprintf("There is no %s here.", name),
	}
}

func (b *Builder) buildInteract(name, text string) (*Request, error) {
	target := b.nearbyByName(name)
	if target == nil {
		return nil, fmt.Errorf("interact with %q: %w", name, ErrTargetNotFound)
	}
	return &Request{
		Intent: IntentInteract,
		Prompt: deterministicActionPrompt(
			b.world.Player.Describe(fullDescribe),
			target.Describe(fullDescribe),
			text,
		),
		Target: target,
		Action: text,
	}, nil
}

func (b *Builder) buildTrade(name, text string) (*Request, error) {
	target := b.nearbyByName(name)
	if target == nil {
		return nil, fmt.Errorf("trade with %q: %w", name, ErrTargetNotFound)
	}
	return &Request{
		Intent: IntentTrade,
		Prompt: tradeValidationPrompt(
			b.world.Player.Describe(fullDescribe),
			target.Describe(fullDescribe),
			text,
		),
		Target: target,
		Action: text,
	}, nil
}

func (b *Builder) nearbyByName(name string) *entity.Entity {
	lower := strings.ToLower(name)
	for _, e := range b.world.Nearby(b.world.Player, entity.ReachDistance) {
		if strings.Contains(strings.ToLower(e.Name()), lower) {
			return e
		}
	}
	return nil
}

// turnTag splits a UI targeting tag like "trade -> Trader Ghila" into its
// verb and target name.
func turnTag(turn string) (tag, name string, ok bool) {
	verb, target, found := strings.Cut(turn, "->")
	if !found {
		return "", "", false
	}
	return strings.ToLower(strings.TrimSpace(verb)), strings.TrimSpace(target), true
}
