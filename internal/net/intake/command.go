package intake

import (
	"errors"

	"pocket-arena/server/internal/net/proto"
	"pocket-arena/server/internal/session"
)

// Reject reasons reported to clients.
const (
	RejectInvalidAction = "invalid_action"
	RejectUnknownActor  = "unknown_actor"
	RejectNotControlled = "not_controlled"
	RejectActionForced  = "action_forced"
	RejectUnknownMove   = "unknown_move"
	RejectMoveDisabled  = "move_disabled"
	RejectInvalidTarget = "invalid_target"
	RejectInvalidSwitch = "invalid_switch"
	RejectWrongPhase    = "wrong_phase"
	RejectBattleOver    = "battle_over"
	RejectUnavailable   = "unavailable"
)

// Submitter accepts battle choices. *session.Session satisfies it.
type Submitter interface {
	SubmitMove(userID, moveID string, targetBank, targetPosition int) error
	SubmitSwitch(userID, withID string) error
}

type CommandContext struct {
	Battle Submitter
}

// StageClientAction validates a client message and submits its action. On
// failure it returns the reject reason and whether retrying later may work.
func StageClientAction(ctx CommandContext, msg proto.ClientMessage) (proto.Action, bool, string, bool) {
	var zero proto.Action

	action, ok := proto.ClientAction(msg)
	if !ok {
		return zero, false, RejectInvalidAction, false
	}
	if ctx.Battle == nil {
		return zero, false, RejectUnavailable, true
	}

	var err error
	switch action.Kind {
	case proto.ActionMove:
		err = ctx.Battle.SubmitMove(action.Actor, action.Move, action.TargetBank, action.TargetPosition)
	case proto.ActionSwitch:
		err = ctx.Battle.SubmitSwitch(action.Actor, action.With)
	default:
		return zero, false, RejectInvalidAction, false
	}
	if err != nil {
		reason, retry := RejectReason(err)
		return zero, false, reason, retry
	}
	return action, true, "", false
}

// RejectReason maps a session error to its wire reason. Only a submission
// outside the choosing phase is worth retrying.
func RejectReason(err error) (string, bool) {
	switch {
	case errors.Is(err, session.ErrWrongPhase):
		return RejectWrongPhase, true
	case errors.Is(err, session.ErrBattleOver):
		return RejectBattleOver, false
	case errors.Is(err, session.ErrUnknownActor):
		return RejectUnknownActor, false
	case errors.Is(err, session.ErrNotControlled):
		return RejectNotControlled, false
	case errors.Is(err, session.ErrActionForced):
		return RejectActionForced, false
	case errors.Is(err, session.ErrUnknownMove):
		return RejectUnknownMove, false
	case errors.Is(err, session.ErrMoveDisabled):
		return RejectMoveDisabled, false
	case errors.Is(err, session.ErrInvalidTarget):
		return RejectInvalidTarget, false
	case errors.Is(err, session.ErrInvalidSwitch):
		return RejectInvalidSwitch, false
	default:
		return RejectInvalidAction, false
	}
}
