package service

import (
	"encoding/json"
	"fmt"
	"time"

	"kirves-server/server/engine"
)

// ActionLogItem is one accepted action: who did what, with which
// parameters, and when.
type ActionLogItem struct {
	Email  string            `json:"email"`
	Action engine.ActionKind `json:"action"`
	Input  ActionIn          `json:"input"`
	At     time.Time         `json:"at"`
}

// ActionLog is the append-only audit trail of one hand. InitialState is
// the game snapshot right after the deal, so the hand can be replayed
// from it for debugging or dispute resolution.
type ActionLog struct {
	InitialState json.RawMessage `json:"initialState"`
	Items        []ActionLogItem `json:"items"`
}

func NewActionLog(initialState []byte) *ActionLog {
	return &ActionLog{InitialState: initialState}
}

func (l *ActionLog) Add(email string, in ActionIn, at time.Time) {
	l.Items = append(l.Items, ActionLogItem{Email: email, Action: in.Action, Input: in, At: at})
}

func (l *ActionLog) ToJSON() ([]byte, error) { return json.Marshal(l) }

func ActionLogFromJSON(data []byte) (*ActionLog, error) {
	var l ActionLog
	if err := json.Unmarshal(data, &l); err != nil {
		return nil, fmt.Errorf("decoding action log: %w", err)
	}
	return &l, nil
}

func actionLogKey(gameID string, handID int64) string {
	return fmt.Sprintf("%s-%d", gameID, handID)
}
