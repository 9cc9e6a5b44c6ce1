package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/kendall-kelly/formalwear-orders-api/dto"
	"github.com/kendall-kelly/formalwear-orders-api/intake"
	"gopkg.in/yaml.v2"
)

// draftEntry is one "field: value" line of a draft file
type draftEntry struct {
	key   intake.FieldKey
	value string
}

func readDraftFile(path string) ([]draftEntry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return parseDraft(data)
}

// parseDraft reads a YAML mapping of dotted field names, such as
// "jacket.color: black", keeping the order of the file
func parseDraft(data []byte) ([]draftEntry, error) {
	var doc yaml.MapSlice
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("invalid draft file: %w", err)
	}

	entries := make([]draftEntry, 0, len(doc))
	for _, item := range doc {
		name, ok := item.Key.(string)
		if !ok {
			return nil, fmt.Errorf("invalid draft file: field name %v is not a string", item.Key)
		}
		key, err := intake.ParseFieldKey(name)
		if err != nil {
			return nil, err
		}
		value, err := scalar(item.Value)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		entries = append(entries, draftEntry{key: key, value: value})
	}
	return entries, nil
}

func scalar(v interface{}) (string, error) {
	switch t := v.(type) {
	case nil:
		return "", nil
	case string:
		return t, nil
	case bool:
		return strconv.FormatBool(t), nil
	case int:
		return strconv.Itoa(t), nil
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), nil
	case time.Time:
		return t.Format(dto.DateLayout), nil
	case []interface{}:
		parts := make([]string, 0, len(t))
		for _, e := range t {
			s, err := scalar(e)
			if err != nil {
				return "", err
			}
			parts = append(parts, s)
		}
		return strings.Join(parts, ","), nil
	default:
		return "", fmt.Errorf("unsupported value %v", v)
	}
}

// applyDraft writes entries into w. Flags go first so the fields they enable
// accept values whatever the order of the file. The balance is derived and
// skipped.
func applyDraft(w *intake.Wizard, entries []draftEntry) error {
	for _, pass := range []bool{true, false} {
		for _, e := range entries {
			if e.key == intake.FieldBalance || (e.key.Kind() == intake.KindFlag) != pass {
				continue
			}
			if err := w.Set(e.key, e.value); err != nil {
				return err
			}
		}
	}
	return nil
}

// exportDraft renders d as a draft file. Fields left blank are omitted.
func exportDraft(d *intake.Draft) ([]byte, error) {
	var doc yaml.MapSlice
	for _, key := range intake.AllFields() {
		value := intake.Get(d, key)
		if value == "" {
			continue
		}
		doc = append(doc, yaml.MapItem{Key: key.String(), Value: value})
	}
	return yaml.Marshal(doc)
}
