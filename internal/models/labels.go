package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"

	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

// Labels is an ordered list of free-text labels. It is stored as a JSON object
// keyed by 1-based position ({"1":"Anime","2":"Cosplay"}) and exposed over the
// API as a JSON array.
type Labels []string

// Positional returns the stored positional-map form.
func (l Labels) Positional() map[string]string {
	out := make(map[string]string, len(l))
	for i, label := range l {
		out[strconv.Itoa(i+1)] = label
	}
	return out
}

// LabelsFromPositional rebuilds Labels from a positional map. Keys are ordered
// numerically; keys that are not integers sort after numeric ones, by name.
func LabelsFromPositional(m map[string]string) Labels {
	if len(m) == 0 {
		return Labels{}
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.SliceStable(keys, func(i, j int) bool {
		a, errA := strconv.Atoi(keys[i])
		b, errB := strconv.Atoi(keys[j])
		switch {
		case errA == nil && errB == nil:
			return a < b
		case errA == nil:
			return true
		case errB == nil:
			return false
		default:
			return keys[i] < keys[j]
		}
	})
	out := make(Labels, 0, len(keys))
	for _, k := range keys {
		out = append(out, m[k])
	}
	return out
}

// Value implements driver.Valuer.
func (l Labels) Value() (driver.Value, error) {
	b, err := json.Marshal(l.Positional())
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner. Both the positional object and a plain JSON
// array are accepted.
func (l *Labels) Scan(value any) error {
	raw, err := rawJSON(value)
	if err != nil {
		return fmt.Errorf("scan labels: %w", err)
	}
	if len(raw) == 0 || string(raw) == "null" {
		*l = Labels{}
		return nil
	}
	if raw[0] == '[' {
		var list []string
		if err := json.Unmarshal(raw, &list); err != nil {
			return fmt.Errorf("scan labels: %w", err)
		}
		*l = Labels(list)
		return nil
	}
	var m map[string]string
	if err := json.Unmarshal(raw, &m); err != nil {
		return fmt.Errorf("scan labels: %w", err)
	}
	*l = LabelsFromPositional(m)
	return nil
}

// GormDataType implements schema.GormDataTypeInterface.
func (Labels) GormDataType() string {
	return "json"
}

// GormDBDataType implements migrator.GormDBDataTypeInterface.
func (Labels) GormDBDataType(db *gorm.DB, _ *schema.Field) string {
	return jsonColumnType(db)
}

// StringList is an ordered list stored as a plain JSON array.
type StringList []string

// Value implements driver.Valuer.
func (s StringList) Value() (driver.Value, error) {
	if s == nil {
		s = StringList{}
	}
	b, err := json.Marshal([]string(s))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner.
func (s *StringList) Scan(value any) error {
	raw, err := rawJSON(value)
	if err != nil {
		return fmt.Errorf("scan string list: %w", err)
	}
	if len(raw) == 0 || string(raw) == "null" {
		*s = StringList{}
		return nil
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err != nil {
		return fmt.Errorf("scan string list: %w", err)
	}
	*s = StringList(list)
	return nil
}

// GormDataType implements schema.GormDataTypeInterface.
func (StringList) GormDataType() string {
	return "json"
}

// GormDBDataType implements migrator.GormDBDataTypeInterface.
func (StringList) GormDBDataType(db *gorm.DB, _ *schema.Field) string {
	return jsonColumnType(db)
}

func jsonColumnType(db *gorm.DB) string {
	if db.Dialector.Name() == "postgres" {
		return "JSONB"
	}
	return "JSON"
}

func rawJSON(value any) ([]byte, error) {
	switch v := value.(type) {
	case nil:
		return nil, nil
	case []byte:
		return v, nil
	case string:
		return []byte(v), nil
	default:
		return nil, fmt.Errorf("unsupported type %T", value)
	}
}
