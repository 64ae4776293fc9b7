package models

// GameAction is a client command received over the websocket.
//
// Recognised action types and payloads:
//
//	action_play        {"card": <card id>}
//	action_meld        {"meld": "bezique", "cards": [<card id>, ...]}
//	action_skip_meld   {}
//	action_swap_seven  {}
//	action_draw        {}
//	action_next_round  {}
type GameAction struct {
	ActionType string                 `json:"type"`
	Payload    map[string]interface{} `json:"payload,omitempty"`
}
