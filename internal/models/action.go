// internal/models/action.go
package models

import (
	"encoding/json"
	"fmt"
)

// ActionType discriminates inbound player actions.
type ActionType string

const (
	ActionSetInfo     ActionType = "setInfo"
	ActionToggleReady ActionType = "toggleReady"
	ActionStartGame   ActionType = "startGame"
	ActionPlayCard    ActionType = "playCard"
	ActionDrawCard    ActionType = "drawCard"
	ActionPassTurn    ActionType = "passTurn"
	ActionSayUno      ActionType = "sayUno"
	ActionCatchUno    ActionType = "catchUno"
	ActionRestartGame ActionType = "restartGame"
)

// SetInfoPayload carries a player's chosen display name.
type SetInfoPayload struct {
	Name string `json:"name"`
}

// PlayCardPayload identifies the card to play and, for wilds, the chosen color.
type PlayCardPayload struct {
	CardID      string    `json:"cardId"`
	ChooseColor CardColor `json:"chooseColor,omitempty"`
}

// Action is a decoded inbound message: one tagged variant per action name
// with a fixed payload shape, checked before dispatch. Exactly the payload
// field matching Type is non-nil for the types that carry one.
type Action struct {
	Type     ActionType
	SetInfo  *SetInfoPayload
	PlayCard *PlayCardPayload
}

// wireMessage is the raw JSON shape read off the websocket.
type wireMessage struct {
	Type    ActionType      `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// DecodeAction parses and shape-checks one inbound message. Unknown types and
// malformed payloads are rejected here so room logic only ever sees
// well-formed actions.
func DecodeAction(data []byte) (Action, error) {
	var msg wireMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return Action{}, fmt.Errorf("invalid message: %w", err)
	}

	act := Action{Type: msg.Type}
	switch msg.Type {
	case ActionSetInfo:
		var p SetInfoPayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			return Action{}, fmt.Errorf("setInfo payload: %w", err)
		}
		if p.Name == "" {
			return Action{}, fmt.Errorf("setInfo payload: name is required")
		}
		act.SetInfo = &p
	case ActionPlayCard:
		var p PlayCardPayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			return Action{}, fmt.Errorf("playCard payload: %w", err)
		}
		if p.CardID == "" {
			return Action{}, fmt.Errorf("playCard payload: cardId is required")
		}
		if p.ChooseColor != "" && !p.ChooseColor.IsPlayColor() {
			return Action{}, fmt.Errorf("playCard payload: invalid color %q", p.ChooseColor)
		}
		act.PlayCard = &p
	case ActionToggleReady, ActionStartGame, ActionDrawCard, ActionPassTurn,
		ActionSayUno, ActionCatchUno, ActionRestartGame:
		// No payload.
	default:
		return Action{}, fmt.Errorf("unknown action type %q", msg.Type)
	}
	return act, nil
}
