// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
)

// Records come from sources that disagree on cardinality and scalar types.
// Decoding never fails below the record object: a field of the wrong type
// decodes to its zero value and an entry of the wrong type is dropped.

var errNotObject = errors.New("record is not a JSON object")

// UnmarshalJSON decodes a record object. Only a non-object is an error.
func (r *Record) UnmarshalJSON(data []byte) error {
	m, ok := jsonObject(data)
	if !ok {
		return errNotObject
	}
	*r = Record{
		ExternalID: looseString(field(m, "externalId")),
		Title:      looseString(field(m, "title")),
		Authors:    decodeAuthors(field(m, "authorList")),
		History:    decodeHistory(field(m, "publicationHistory")),
	}
	return nil
}

// UnmarshalJSON decodes an author object; any other value yields an empty author.
func (a *RawAuthor) UnmarshalJSON(data []byte) error {
	m, _ := jsonObject(data)
	*a = rawAuthor(m)
	return nil
}

// UnmarshalJSON accepts a string or an object with affiliationText.
func (i *AffiliationInfo) UnmarshalJSON(data []byte) error {
	info, _ := decodeAffiliation(data)
	*i = info
	return nil
}

// UnmarshalJSON accepts a single string, a single object, or an array whose
// elements are strings or objects. Other elements are dropped.
func (l *AffiliationList) UnmarshalJSON(data []byte) error {
	*l = decodeAffiliations(data)
	return nil
}

// UnmarshalJSON decodes a history entry; numeric date parts are kept as text.
func (d *PubDate) UnmarshalJSON(data []byte) error {
	m, _ := jsonObject(data)
	*d = pubDate(m)
	return nil
}

func rawAuthor(m map[string]json.RawMessage) RawAuthor {
	return RawAuthor{
		LastName:       looseString(field(m, "lastName")),
		ForeName:       looseString(field(m, "foreName")),
		Initials:       looseString(field(m, "initials")),
		CollectiveName: looseString(field(m, "collectiveName")),
		Affiliations:   decodeAffiliations(field(m, "affiliationInfo")),
	}
}

func pubDate(m map[string]json.RawMessage) PubDate {
	return PubDate{
		Status: looseString(field(m, "status")),
		Year:   looseString(field(m, "year")),
		Month:  looseString(field(m, "month")),
		Day:    looseString(field(m, "day")),
	}
}

func decodeAuthors(data json.RawMessage) []RawAuthor {
	raw := elements(data)
	if raw == nil {
		return nil
	}
	out := make([]RawAuthor, 0, len(raw))
	for _, e := range raw {
		if m, ok := jsonObject(e); ok {
			out = append(out, rawAuthor(m))
		}
	}
	return out
}

func decodeHistory(data json.RawMessage) []PubDate {
	raw := elements(data)
	if raw == nil {
		return nil
	}
	out := make([]PubDate, 0, len(raw))
	for _, e := range raw {
		if m, ok := jsonObject(e); ok {
			out = append(out, pubDate(m))
		}
	}
	return out
}

func decodeAffiliations(data json.RawMessage) AffiliationList {
	raw := elements(data)
	if raw == nil {
		return nil
	}
	out := make(AffiliationList, 0, len(raw))
	for _, e := range raw {
		if info, ok := decodeAffiliation(e); ok {
			out = append(out, info)
		}
	}
	return out
}

func decodeAffiliation(data json.RawMessage) (AffiliationInfo, bool) {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		return AffiliationInfo{Text: looseString(data)}, true
	}
	if m, ok := jsonObject(data); ok {
		return AffiliationInfo{Text: looseString(field(m, "affiliationText"))}, true
	}
	return AffiliationInfo{}, false
}

// elements returns the members of an array, or data itself for any other
// non-null value.
func elements(data json.RawMessage) []json.RawMessage {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}
	if data[0] != '[' {
		return []json.RawMessage{data}
	}
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil
	}
	return raw
}

func jsonObject(data []byte) (map[string]json.RawMessage, bool) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || data[0] != '{' {
		return nil, false
	}
	var m map[string]json.RawMessage
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, false
	}
	return m, true
}

// field looks key up exactly, then case-insensitively like encoding/json.
func field(m map[string]json.RawMessage, key string) json.RawMessage {
	if v, ok := m[key]; ok {
		return v
	}
	for k, v := range m {
		if strings.EqualFold(k, key) {
			return v
		}
	}
	return nil
}

// looseString reads a JSON string, or a number as its literal text. Any
// other value reads as "".
func looseString(data json.RawMessage) string {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return ""
	}
	switch c := data[0]; {
	case c == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return ""
		}
		return s
	case c == '-' || (c >= '0' && c <= '9'):
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return ""
		}
		return n.String()
	default:
		return ""
	}
}
