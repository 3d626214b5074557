package claims

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// ObjectMember is one named member of an OrderedObject.
type ObjectMember struct {
	Name  string
	Value any
}

// OrderedObject is a JSON object whose members marshal in insertion
// order. Composite mapping values mirror the schema's declared member
// order, which a plain Go map would discard.
type OrderedObject struct {
	members []ObjectMember
}

// Set adds a member, or replaces the value of an existing member in place.
func (o *OrderedObject) Set(name string, value any) {
	for i := range o.members {
		if o.members[i].Name == name {
			o.members[i].Value = value
			return
		}
	}
	o.members = append(o.members, ObjectMember{Name: name, Value: value})
}

// Get returns the value for a member name.
func (o *OrderedObject) Get(name string) (any, bool) {
	for _, member := range o.members {
		if member.Name == name {
			return member.Value, true
		}
	}
	return nil, false
}

// Members returns the members in insertion order.
func (o *OrderedObject) Members() []ObjectMember {
	return o.members
}

// Len returns the number of members.
func (o *OrderedObject) Len() int {
	return len(o.members)
}

// MarshalJSON implements json.Marshaler, emitting members in order.
func (o *OrderedObject) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, member := range o.members {
		if i > 0 {
			buf.WriteByte(',')
		}
		name, err := json.Marshal(member.Name)
		if err != nil {
			return nil, fmt.Errorf("failed to encode member name %q: %w", member.Name, err)
		}
		buf.Write(name)
		buf.WriteByte(':')
		value, err := json.Marshal(member.Value)
		if err != nil {
			return nil, fmt.Errorf("failed to encode member %q: %w", member.Name, err)
		}
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
