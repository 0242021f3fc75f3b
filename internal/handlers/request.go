package handlers

import (
	"encoding/json"
	"fmt"
)

// optionalID tells an absent JSON field apart from an explicit null.
type optionalID struct {
	Set   bool
	Value *uint64
}

func (o *optionalID) UnmarshalJSON(data []byte) error {
	o.Set = true
	if string(data) == "null" {
		o.Value = nil
		return nil
	}
	var id uint64
	if err := json.Unmarshal(data, &id); err != nil {
		return fmt.Errorf("id must be a positive integer: %w", err)
	}
	o.Value = &id
	return nil
}
