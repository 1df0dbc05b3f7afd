package manifest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"sort"

	"pattiprep/internal/naming"
)

// Entry is one sound in sounds-manifest.json. Fields the tool does not know
// about are kept in Extra and written back after the known ones. A known
// field whose value has the wrong JSON type is also kept in Extra under its
// own key and written back verbatim until the typed field is set.
type Entry struct {
	ID        string
	Name      string
	Category  string
	File      string
	Ext       string
	Waveform  []float64
	IsShuffle bool
	Segments  []string
	Extra     map[string]json.RawMessage
}

var knownKeys = []string{"id", "name", "category", "file", "ext", "waveform", "isShuffle", "segments"}

// FileName is the on-disk name of the backing file.
func (e Entry) FileName() string {
	return naming.FileKey(e.File, e.Ext)
}

// Key identifies the backing file. Shuffle sources live in their own
// directory, so their keys are namespaced.
func (e Entry) Key() string {
	return sourceKey(e.File, e.Ext, e.IsShuffle)
}

func sourceKey(file, ext string, shuffle bool) string {
	key := naming.FileKey(file, ext)
	if shuffle {
		return "shuffle:" + key
	}
	return key
}

// Clone returns a deep copy of e.
func (e Entry) Clone() Entry {
	out := e
	out.Waveform = slices.Clone(e.Waveform)
	out.Segments = slices.Clone(e.Segments)
	if e.Extra != nil {
		out.Extra = maps.Clone(e.Extra)
	}
	return out
}

// MarshalJSON writes known fields in a fixed order followed by extra fields
// sorted by key.
func (e Entry) MarshalJSON() ([]byte, error) {
	if err := validExtra(e.Extra); err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	buf.WriteByte('{')
	first := true
	write := func(key string, value any) error {
		raw, err := json.Marshal(value)
		if err != nil {
			return fmt.Errorf("marshal %s: %w", key, err)
		}
		writeRaw(&buf, &first, key, raw)
		return nil
	}

	kept := func(key string) bool {
		raw, ok := e.Extra[key]
		if ok {
			writeRaw(&buf, &first, key, raw)
		}
		return ok
	}

	for _, field := range []struct {
		key   string
		value string
	}{
		{"id", e.ID},
		{"name", e.Name},
		{"category", e.Category},
		{"file", e.File},
		{"ext", e.Ext},
	} {
		if field.value == "" && kept(field.key) {
			continue
		}
		if err := write(field.key, field.value); err != nil {
			return nil, err
		}
	}
	if len(e.Waveform) > 0 {
		if err := write("waveform", e.Waveform); err != nil {
			return nil, err
		}
	} else {
		kept("waveform")
	}
	if e.IsShuffle {
		if err := write("isShuffle", true); err != nil {
			return nil, err
		}
	} else {
		kept("isShuffle")
	}
	if len(e.Segments) > 0 {
		if err := write("segments", e.Segments); err != nil {
			return nil, err
		}
	} else {
		kept("segments")
	}

	extraKeys := make([]string, 0, len(e.Extra))
	for key := range e.Extra {
		if !slices.Contains(knownKeys, key) {
			extraKeys = append(extraKeys, key)
		}
	}
	sort.Strings(extraKeys)
	for _, key := range extraKeys {
		writeRaw(&buf, &first, key, e.Extra[key])
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func validExtra(extra map[string]json.RawMessage) error {
	for key, raw := range extra {
		if !json.Valid(raw) {
			return fmt.Errorf("extra field %q is not valid JSON", key)
		}
	}
	return nil
}

func writeRaw(buf *bytes.Buffer, first *bool, key string, raw []byte) {
	if !*first {
		buf.WriteByte(',')
	}
	*first = false
	name, _ := json.Marshal(key)
	buf.Write(name)
	buf.WriteByte(':')
	buf.Write(raw)
}

// UnmarshalJSON reads known fields and keeps everything else in Extra,
// including known fields that fail to decode. Only a non-object entry is an
// error.
func (e *Entry) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw == nil {
		return fmt.Errorf("manifest entry must be an object")
	}

	var out Entry
	decoders := map[string]func(json.RawMessage) error{
		"id":        decodeField(&out.ID),
		"name":      decodeField(&out.Name),
		"category":  decodeField(&out.Category),
		"file":      decodeField(&out.File),
		"ext":       decodeField(&out.Ext),
		"waveform":  decodeField(&out.Waveform),
		"isShuffle": decodeField(&out.IsShuffle),
		"segments":  decodeField(&out.Segments),
	}
	for key, value := range raw {
		if decode, known := decoders[key]; known && decode(value) == nil {
			continue
		}
		if out.Extra == nil {
			out.Extra = make(map[string]json.RawMessage)
		}
		out.Extra[key] = slices.Clone(value)
	}
	*e = out
	return nil
}

// decodeField assigns to dst only when the whole value decodes.
func decodeField[T any](dst *T) func(json.RawMessage) error {
	return func(raw json.RawMessage) error {
		var v T
		if err := json.Unmarshal(raw, &v); err != nil {
			return err
		}
		*dst = v
		return nil
	}
}
