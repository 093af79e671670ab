package handlers

import (
	"context"

	"pocket-arena/server/internal/battle"
	"pocket-arena/server/internal/effects"
)

// Item is the default ItemHandler.
type Item struct {
	env Env
}

// CanRemoveItem refuses sticky hold against foes and items hidden behind a
// substitute.
func (h *Item) CanRemoveItem(target, source *battle.Combatant) bool {
	if target == nil || target.Item == "" {
		return false
	}
	if source != nil && source != target {
		if target.HasAbility("sticky_hold") {
			return false
		}
		if effects.SubstituteOf(target) != nil {
			return false
		}
	}
	return true
}

func (h *Item) CanGiveItem(source, target *battle.Combatant) bool {
	return source != nil && target != nil && source.Item != "" && target.Item == "" && target.Alive()
}

// SetItem replaces the held item. Removing an item records it as consumed.
func (h *Item) SetItem(ctx context.Context, item string, target *battle.Combatant, announce bool, source *battle.Combatant, move *battle.Definition) {
	if target == nil {
		return
	}
	if item == "" && target.Item != "" {
		target.ConsumedItem = target.Item
	}
	previous := target.Item
	target.Item = item
	if !announce {
		return
	}
	if item == "" {
		h.env.say(battle.MessageText, target, 0, "%s lost its %s!", target.Name(), battle.DisplayName(previous))
		return
	}
	h.env.say(battle.MessageText, target, 0, "%s obtained %s!", target.Name(), battle.DisplayName(item))
}
