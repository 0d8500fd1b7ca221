package datapack

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// object is a decoded JSON object whose fields are read lazily. The first
// error met while reading a field is kept and returned by done, so that
// decoders can read all the fields they need before checking for errors.
type object struct {
	kind   string
	fields map[string]json.RawMessage
	err    error
}

func decodeObject(raw json.RawMessage) (*object, error) {
	o := &object{}
	if err := json.Unmarshal(raw, &o.fields); err != nil {
		return nil, err
	}
	if t, ok := o.fields["type"]; ok {
		if err := json.Unmarshal(t, &o.kind); err != nil {
			return nil, fmt.Errorf("type: %w", err)
		}
		o.kind = resourceName(o.kind)
	}
	return o, nil
}

func (o *object) has(key string) bool {
	_, ok := o.fields[key]
	return ok
}

func (o *object) raw(key string) json.RawMessage {
	if o.err != nil {
		return nil
	}
	raw, ok := o.fields[key]
	if !ok {
		o.err = fmt.Errorf("%v: missing field %q", o.kind, key)
	}
	return raw
}

func (o *object) decode(key string, v any) {
	raw := o.raw(key)
	if o.err != nil {
		return
	}
	if err := json.Unmarshal(raw, v); err != nil {
		o.err = fmt.Errorf("%v: field %q: %w", o.kind, key, err)
	}
}

func (o *object) float(key string) (v float64) {
	o.decode(key, &v)
	return v
}

func (o *object) int(key string) (v int) {
	o.decode(key, &v)
	return v
}

func (o *object) string(key string) (v string) {
	o.decode(key, &v)
	return v
}

// optional decodes the field into v if it is present.
func (o *object) optional(key string, v any) {
	if o.has(key) {
		o.decode(key, v)
	}
}

func (o *object) fail(err error) {
	if o.err == nil {
		o.err = err
	}
}

func (o *object) done() error { return o.err }

// resourceName returns name with the minecraft namespace added if it has
// none.
func resourceName(name string) string {
	if strings.Contains(name, ":") {
		return name
	}
	return "minecraft:" + name
}

// leading returns the first non-space byte of raw.
func leading(raw json.RawMessage) byte {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return 0
	}
	return raw[0]
}
