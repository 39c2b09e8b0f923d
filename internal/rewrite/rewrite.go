// Package rewrite rewrites referential links to use remapped identifiers.
//
// It covers two shapes of reference: scalar foreign-key values, and player
// references embedded inside the serialized clan `members` JSON array. Two
// member encodings occur in production data: elements that are JSON object
// literals, and elements that are JSON strings containing a serialized object.
// The rewriter detects the encoding per array and preserves it on output.
package rewrite

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/lherron/svmerge/internal/mapping"
)

// MalformedReferenceError reports embedded-reference JSON that could not be
// parsed. It is fatal for the table being merged.
type MalformedReferenceError struct {
	Detail string
	Err    error
}

func (e *MalformedReferenceError) Error() string {
	return fmt.Sprintf("malformed embedded reference: %s: %v", e.Detail, e.Err)
}

func (e *MalformedReferenceError) Unwrap() error {
	return e.Err
}

// Scalar remaps a scalar foreign-key value, leaving the sentinel alone.
func Scalar(reg *mapping.Registry, kind mapping.Kind, id, sentinel int64) int64 {
	return reg.LookupOrSentinel(kind, id, sentinel)
}

// member is one element of the members array after decoding: the inner object
// text plus the encoding it arrived in.
type member struct {
	inner     string
	wasString bool
}

// Members rewrites the player ids inside a clan members JSON array.
//
// Each element's encoding (raw object vs string-encoded object) is detected
// individually and preserved. If one array mixes both encodings the whole
// array is re-encoded uniformly as raw objects rather than emitting a mixed
// result. Elements whose inner object lacks a numeric `id` field pass through
// unrewritten; unparsable outer or inner JSON fails with
// MalformedReferenceError.
func Members(reg *mapping.Registry, jsonText string) (string, error) {
	var outer []json.RawMessage
	if err := json.Unmarshal([]byte(jsonText), &outer); err != nil {
		return "", &MalformedReferenceError{Detail: "members array", Err: err}
	}

	members := make([]member, 0, len(outer))
	sawString, sawObject := false, false

	for i, raw := range outer {
		m := member{}

		var encoded string
		if err := json.Unmarshal(raw, &encoded); err == nil {
			m.wasString = true
			m.inner = encoded
			sawString = true
		} else {
			m.inner = string(raw)
			sawObject = true
		}

		inner, err := rewriteMember(reg, m.inner)
		if err != nil {
			return "", &MalformedReferenceError{
				Detail: fmt.Sprintf("member %d", i),
				Err:    err,
			}
		}
		if inner != "" {
			m.inner = inner
		}
		members = append(members, m)
	}

	// A mixed array is re-encoded uniformly as raw objects; otherwise the
	// original encoding is kept.
	asStrings := sawString && !sawObject

	out := make([]json.RawMessage, len(members))
	for i, m := range members {
		if asStrings {
			quoted, err := json.Marshal(m.inner)
			if err != nil {
				return "", &MalformedReferenceError{Detail: "re-encoding member", Err: err}
			}
			out[i] = quoted
		} else {
			out[i] = json.RawMessage(m.inner)
		}
	}

	result, err := json.Marshal(out)
	if err != nil {
		return "", &MalformedReferenceError{Detail: "re-encoding members array", Err: err}
	}
	return string(result), nil
}

// rewriteMember parses one inner member object and remaps its id field via the
// player mapping. It returns "" (and no error) when the object has no numeric
// id, meaning the caller should keep the original text.
func rewriteMember(reg *mapping.Registry, inner string) (string, error) {
	dec := json.NewDecoder(strings.NewReader(inner))
	dec.UseNumber()

	var obj map[string]any
	if err := dec.Decode(&obj); err != nil {
		return "", err
	}

	num, ok := obj["id"].(json.Number)
	if !ok {
		return "", nil
	}
	oldID, err := num.Int64()
	if err != nil {
		return "", nil
	}

	obj["id"] = reg.Lookup(mapping.KindPlayer, oldID)

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(obj); err != nil {
		return "", err
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}
