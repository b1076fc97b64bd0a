package types

import (
	"encoding/json"
	"fmt"
)

// jsonValue is the wire shape of a TagValue.
type jsonValue struct {
	Type        string       `json:"type"`
	Value       string       `json:"value,omitempty"`
	MIME        string       `json:"mime,omitempty"`
	Data        []byte       `json:"data,omitempty"`
	PictureType *PictureType `json:"pictureType,omitempty"`
	Description string       `json:"description,omitempty"`
	URL         string       `json:"url,omitempty"`
	Encoding    string       `json:"encoding,omitempty"`
	Language    string       `json:"language,omitempty"`
}

func toJSONValue(v TagValue) jsonValue {
	switch v := v.(type) {
	case Text:
		return jsonValue{Type: "text", Value: string(v)}
	case Picture:
		jv := jsonValue{Type: "picture", MIME: v.MIME, Data: v.Data, Description: v.Description}
		if v.Type != PictureTypeNone {
			pt := v.Type
			jv.PictureType = &pt
		}
		return jv
	case UserText:
		return jsonValue{Type: "userText", Description: v.Description, Value: v.Value}
	case UserURL:
		return jsonValue{Type: "userUrl", Description: v.Description, URL: v.URL}
	case Comment:
		return jsonValue{Type: "comment", Encoding: v.Encoding, Language: v.Language,
			Description: v.Description, Value: v.Text}
	default:
		return jsonValue{}
	}
}

func (jv jsonValue) tagValue() (TagValue, error) {
	switch jv.Type {
	case "text", "":
		return Text(jv.Value), nil
	case "picture":
		p := Picture{MIME: jv.MIME, Data: jv.Data, Type: PictureTypeNone, Description: jv.Description}
		if jv.PictureType != nil {
			p.Type = *jv.PictureType
		}
		if p.MIME == "" {
			p.MIME = SniffImageMIME(p.Data)
		}
		return p, nil
	case "userText":
		return UserText{Description: jv.Description, Value: jv.Value}, nil
	case "userUrl":
		return UserURL{Description: jv.Description, URL: jv.URL}, nil
	case "comment":
		return Comment{Encoding: jv.Encoding, Language: jv.Language,
			Description: jv.Description, Text: jv.Value}, nil
	default:
		return nil, fmt.Errorf("unknown value type %q", jv.Type)
	}
}

// MarshalJSON encodes tags as {"title": [{"type": "text", "value": "..."}]}.
func (t Tags) MarshalJSON() ([]byte, error) {
	out := make(map[string][]jsonValue, len(t))
	for k, vs := range t {
		jvs := make([]jsonValue, 0, len(vs))
		for _, v := range vs {
			jvs = append(jvs, toJSONValue(v))
		}
		out[k.String()] = jvs
	}
	return json.Marshal(out)
}

// UnmarshalJSON accepts the MarshalJSON shape. A bare string stands for a
// single text value and a list of strings for several.
func (t *Tags) UnmarshalJSON(b []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	tags := make(Tags, len(raw))
	for name, msg := range raw {
		key, ok := ParseFrameKey(name)
		if !ok {
			return &UnknownKeyError{Name: name}
		}
		values, err := decodeJSONValues(msg)
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		tags[key] = values
	}
	*t = tags
	return nil
}

func decodeJSONValues(msg json.RawMessage) ([]TagValue, error) {
	var single string
	if err := json.Unmarshal(msg, &single); err == nil {
		return []TagValue{Text(single)}, nil
	}

	var items []json.RawMessage
	if err := json.Unmarshal(msg, &items); err != nil {
		return nil, err
	}
	values := make([]TagValue, 0, len(items))
	for _, item := range items {
		var s string
		if err := json.Unmarshal(item, &s); err == nil {
			values = append(values, Text(s))
			continue
		}
		var jv jsonValue
		if err := json.Unmarshal(item, &jv); err != nil {
			return nil, err
		}
		v, err := jv.tagValue()
		if err != nil {
			return nil, err
		}
		values = append(values, v)
	}
	return values, nil
}
