package actions

import (
	"encoding/json"
	"fmt"
)

// Unsupported stands in for a decoded action whose intent has no handler,
// so a batch can still report one result for it.
type Unsupported struct {
	Name string `json:"-"`
}

func (u *Unsupported) Intent() Intent { return Intent(u.Name) }

// Invalid stands in for a batch element that could not be decoded. Name is
// the intent the element claimed, empty when it had none.
type Invalid struct {
	Name   string `json:"-"`
	Reason string `json:"-"`
}

func (i *Invalid) Intent() Intent { return Intent(i.Name) }

// Known reports whether intent has a concrete action type.
func (i Intent) Known() bool {
	return newAction(i) != nil
}

func newAction(intent Intent) Action {
	switch intent {
	case IntentAddSchedule:
		return &AddSchedule{}
	case IntentEditSchedule:
		return &EditSchedule{}
	case IntentDeleteSchedule:
		return &DeleteSchedule{}
	case IntentAddTransaction:
		return &AddTransaction{}
	case IntentEditTransaction:
		return &EditTransaction{}
	case IntentDeleteTransaction:
		return &DeleteTransaction{}
	case IntentAddWorkout:
		return &AddWorkout{}
	case IntentEditWorkout:
		return &EditWorkout{}
	case IntentDeleteWorkout:
		return &DeleteWorkout{}
	case IntentAddFood:
		return &AddFood{}
	case IntentEditFood:
		return &EditFood{}
	case IntentDeleteFood:
		return &DeleteFood{}
	case IntentLogSleep:
		return &LogSleep{}
	case IntentEditCheckIn:
		return &EditCheckIn{}
	case IntentDeleteCheckIn:
		return &DeleteCheckIn{}
	case IntentAddGoal:
		return &AddGoal{}
	case IntentEditGoal:
		return &EditGoal{}
	case IntentDeleteGoal:
		return &DeleteGoal{}
	case IntentUnknown:
		return &Unknown{}
	default:
		return nil
	}
}

// Marshal renders an action as {"intent": ..., <fields>}.
func Marshal(a Action) ([]byte, error) {
	body, err := json.Marshal(a)
	if err != nil {
		return nil, err
	}
	fields := map[string]json.RawMessage{}
	if err := json.Unmarshal(body, &fields); err != nil {
		return nil, err
	}
	intent, _ := json.Marshal(a.Intent())
	fields["intent"] = intent
	return json.Marshal(fields)
}

// Decode parses one {"intent": ...} object. An intent with no handler
// decodes to *Unsupported rather than failing.
func Decode(raw []byte) (Action, error) {
	var head struct {
		Intent Intent `json:"intent"`
	}
	if err := json.Unmarshal(raw, &head); err != nil {
		return nil, fmt.Errorf("decode action: %w", err)
	}
	if head.Intent == "" {
		return nil, fmt.Errorf("decode action: missing intent")
	}

	a := newAction(head.Intent)
	if a == nil {
		return &Unsupported{Name: string(head.Intent)}, nil
	}
	if err := json.Unmarshal(raw, a); err != nil {
		return nil, fmt.Errorf("decode %s: %w", head.Intent, err)
	}
	return a, nil
}

// List is an ordered action batch with the wire form used in job variables.
type List []Action

func (l List) MarshalJSON() ([]byte, error) {
	out := make([]json.RawMessage, len(l))
	for i, a := range l {
		b, err := Marshal(a)
		if err != nil {
			return nil, fmt.Errorf("action %d: %w", i, err)
		}
		out[i] = b
	}
	return json.Marshal(out)
}

// UnmarshalJSON fails only when data is not an array. An element that does
// not decode keeps its slot as *Invalid so the batch stays 1:1.
func (l *List) UnmarshalJSON(data []byte) error {
	var raws []json.RawMessage
	if err := json.Unmarshal(data, &raws); err != nil {
		return err
	}
	list := make(List, len(raws))
	for i, raw := range raws {
		a, err := Decode(raw)
		if err != nil {
			a = &Invalid{Name: claimedIntent(raw), Reason: err.Error()}
		}
		list[i] = a
	}
	*l = list
	return nil
}

func claimedIntent(raw []byte) string {
	var head struct {
		Intent string `json:"intent"`
	}
	_ = json.Unmarshal(raw, &head)
	return head.Intent
}
