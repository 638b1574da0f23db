// parser.go - Verse JSON parsing and the sample documents written by init.
package template

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// JSONShapeError reports input that is not JSON or holds records of the
// wrong type.
type JSONShapeError struct {
	Reason string
}

func (e *JSONShapeError) Error() string { return "invalid verse JSON: " + e.Reason }

// listKeys are the object keys searched, in order, for a list of records.
var listKeys = []string{"items", "data", "shabads", "lines"}

// UnmarshalJSON accepts "text" as an alias for "line".
func (r *LineRecord) UnmarshalJSON(data []byte) error {
	var raw struct {
		Line     *string `json:"line"`
		Text     *string `json:"text"`
		Title    string  `json:"title"`
		Subtitle string  `json:"subtitle"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*r = LineRecord{Title: raw.Title, Subtitle: raw.Subtitle}
	switch {
	case raw.Line != nil:
		r.Text = *raw.Line
	case raw.Text != nil:
		r.Text = *raw.Text
	}
	return nil
}

// ParseRecords decodes verse records from UTF-8 JSON. Three shapes are
// accepted:
//
//   - a shabad object {"originalTitle", "englishTitle", "text": {"1": ...}}
//     whose text entries are taken in numeric key order, skipping blank
//     lines and lines starting with '#';
//   - a list whose elements are strings or record objects;
//   - an object holding such a list under items, data, shabads or lines.
//
// Any other well-formed JSON yields no records.
func ParseRecords(data []byte) ([]LineRecord, error) {
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))

	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, &JSONShapeError{Reason: err.Error()}
	}

	switch v := doc.(type) {
	case map[string]any:
		if text, ok := v["text"].(map[string]any); ok {
			return shabadRecords(text, stringField(v, "originalTitle"), stringField(v, "englishTitle")), nil
		}
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(data, &obj); err != nil {
			return nil, &JSONShapeError{Reason: err.Error()}
		}
		for _, k := range listKeys {
			if _, isList := v[k].([]any); isList {
				return listRecords(obj[k])
			}
		}
		return []LineRecord{}, nil
	case []any:
		return listRecords(data)
	default:
		return []LineRecord{}, nil
	}
}

func shabadRecords(text map[string]any, title, subtitle string) []LineRecord {
	keys := make([]string, 0, len(text))
	for k := range text {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keyLess(keys[i], keys[j]) })

	records := make([]LineRecord, 0, len(keys))
	for _, k := range keys {
		line := strings.TrimSpace(fmt.Sprint(text[k]))
		if text[k] == nil || IsEmptyVerse(line) {
			continue
		}
		records = append(records, LineRecord{Text: line, Title: title, Subtitle: subtitle})
	}
	return records
}

// keyLess orders numeric keys numerically, before non-numeric keys, which
// compare as strings.
func keyLess(a, b string) bool {
	ai, aerr := strconv.Atoi(a)
	bi, berr := strconv.Atoi(b)
	switch {
	case aerr == nil && berr == nil:
		return ai < bi
	case aerr == nil:
		return true
	case berr == nil:
		return false
	default:
		return a < b
	}
}

func listRecords(data []byte) ([]LineRecord, error) {
	var elems []json.RawMessage
	if err := json.Unmarshal(data, &elems); err != nil {
		return nil, &JSONShapeError{Reason: err.Error()}
	}
	records := make([]LineRecord, 0, len(elems))
	for i, raw := range elems {
		raw = bytes.TrimSpace(raw)
		if len(raw) == 0 {
			continue
		}
		var rec LineRecord
		switch raw[0] {
		case '"':
			if err := json.Unmarshal(raw, &rec.Text); err != nil {
				return nil, &JSONShapeError{Reason: fmt.Sprintf("element %d: %v", i, err)}
			}
		case '{':
			if err := json.Unmarshal(raw, &rec); err != nil {
				return nil, &JSONShapeError{Reason: fmt.Sprintf("element %d: %v", i, err)}
			}
		default:
			return nil, &JSONShapeError{Reason: fmt.Sprintf("element %d: expected string or object, got %s", i, raw)}
		}
		records = append(records, rec)
	}
	return records, nil
}

func stringField(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return strings.TrimSpace(s)
}

// IsEmptyVerse reports whether text has nothing to render: it is blank or
// is a '#' comment marker.
func IsEmptyVerse(text string) bool {
	t := strings.TrimSpace(text)
	return t == "" || strings.HasPrefix(t, "#")
}

// GetExampleJSON returns the sample verse document and config file written
// by gurbanicard init.
func GetExampleJSON() (dataJSON, configTOML string) {
	dataJSON = `{
  "originalTitle": "ਗੁਰੂ ਗ੍ਰੰਥ ਸਾਹਿਬ ਜੀ",
  "englishTitle": "Guru Granth Sahib",
  "text": {
    "0": "#100",
    "1": "ਰੇਨੁ ਸੰਤਨ ਕੀ ਮੇਰੈ ਮੁਖਿ ਲਾਗੀ ॥",
    "2": "ਦੁਰਮਤਿ ਬਿਨਸੀ ਕੁਬੁਧਿ ਅਭਾਗੀ ॥",
    "3": "ਸਚ ਘਰਿ ਬੈਸਿ ਰਹੇ ਗੁਣ ਗਾਏ ਨਾਨਕ ਬਿਨਸੇ ਕੂਰਾ ਜੀਉ ॥੪॥੧੧॥੧੮॥",
    "4": "ਮਾਝ ਮਹਲਾ ੫ ॥"
  }
}
`

	configTOML = `# gurbanicard render settings. Command-line flags override these.

[render]
canvas = "1080p"          # preset name or WxH, e.g. "2560x1440"
padding = 100
theme = "royal"           # royal, saffron, midnight, or a theme below
gurbani_size = 96         # starting size for auto-fit
gurbani_min_size = 24
line_spacing = 1.15
title_size = 56
subtitle_size = 40
frame = true
shadow = true
# vignette = 0.28         # negative disables
# watermark = "@sangat"
# font_gurmukhi = "fonts/AnmolUni.ttf"
# font_latin = "fonts/NotoSans-Regular.ttf"

[[themes]]
name = "lotus"
gradient_top = "#fffaf4"
gradient_bottom = "#fde2e4"
accent = "#b5838d"
primary_text = "#2b2d42"
secondary_text = "#4a4e69"
`
	return
}
