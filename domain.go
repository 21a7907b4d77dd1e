package main

import (
	"bytes"
	"encoding/json"
	"fmt"
)

type Expense struct {
	ExpenseID int64  `json:"expense_id"`
	Category  string `json:"category"`
	Amount    Amount `json:"amount"`
}

// Amount is the numeric column in its exact text form. Finite values are
// written as JSON numbers; NaN and the infinities as JSON strings.
type Amount string

func (a Amount) MarshalJSON() ([]byte, error) {
	if isJSONNumber(string(a)) {
		return []byte(a), nil
	}
	return json.Marshal(string(a))
}

func (a *Amount) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*a = Amount(s)
		return nil
	}
	if !isJSONNumber(string(data)) {
		return fmt.Errorf("invalid amount %s", data)
	}
	*a = Amount(data)
	return nil
}

func isJSONNumber(s string) bool {
	if s == "" || (s[0] != '-' && (s[0] < '0' || s[0] > '9')) {
		return false
	}
	return json.Valid([]byte(s))
}

// NewExpense is the payload of a create request. Fields are kept as raw JSON
// because only their presence is checked; the store converts the values.
type NewExpense struct {
	Category json.RawMessage
	Amount   json.RawMessage
}

// decodeNewExpense reads a JSON object body and keeps the category and
// amount members as they were sent.
func decodeNewExpense(body []byte) (NewExpense, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return NewExpense{}, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	e := NewExpense{
		Category: fields["category"],
		Amount:   fields["amount"],
	}
	return e, e.Validate()
}

// Validate only checks that both keys were present; a JSON null counts.
func (e NewExpense) Validate() error {
	if e.Category == nil || e.Amount == nil {
		return fmt.Errorf("%w: category and amount are required", ErrValidation)
	}
	return nil
}

// CategoryText returns the category as the text handed to the store.
func (e NewExpense) CategoryText() *string {
	return jsonText(e.Category)
}

// AmountText returns the amount as the text the store casts to numeric.
func (e NewExpense) AmountText() *string {
	return jsonText(e.Amount)
}

// jsonText turns a JSON value into SQL text: strings are unquoted, null is
// nil and anything else keeps its literal JSON text.
func jsonText(raw json.RawMessage) *string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			return &s
		}
	}
	s := string(raw)
	return &s
}
