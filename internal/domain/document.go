package domain

import (
	"fmt"
	"sort"
	"strings"
)

// Document is one retrievable unit with a fixed schema. Loose on-disk records
// are normalized into this shape once at load time so query paths never deal
// with fallback key lookups.
type Document struct {
	Content string
	Title   string
	DocType string
	Extra   map[string]string
}

// NormalizeRecord converts a loose metadata record (arbitrary keys, nested
// metadata map) into a Document. Key precedence:
//
//	content:  "page_content", then "content"
//	title:    "title", then metadata "title"
//	doc type: "type", then metadata "doc_type", then fallbackType
//
// Remaining metadata entries are stringified into Extra.
func NormalizeRecord(record map[string]any, fallbackType string) Document {
	meta := subMap(record, "metadata")

	content := firstString(record, "page_content", "content")
	title := firstString(record, "title")
	if title == "" {
		title = firstString(meta, "title")
	}

	docType := firstString(record, "type")
	if docType == "" {
		docType = firstString(meta, "doc_type")
	}
	if docType == "" {
		docType = fallbackType
	}

	extra := make(map[string]string, len(meta))
	for k, v := range meta {
		if k == "title" || k == "doc_type" {
			continue
		}
		extra[k] = stringify(v)
	}

	return Document{
		Content: strings.TrimSpace(content),
		Title:   strings.TrimSpace(title),
		DocType: docType,
		Extra:   extra,
	}
}

func subMap(record map[string]any, key string) map[string]any {
	if m, ok := record[key].(map[string]any); ok {
		return m
	}
	return nil
}

func firstString(record map[string]any, keys ...string) string {
	for _, key := range keys {
		if s, ok := record[key].(string); ok && s != "" {
			return s
		}
	}
	return ""
}

func stringify(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		// JSON numbers decode as float64; keep integers clean.
		if t == float64(int64(t)) {
			return fmt.Sprintf("%d", int64(t))
		}
		return fmt.Sprintf("%g", t)
	case bool:
		return fmt.Sprintf("%t", t)
	case nil:
		return ""
	case []any:
		parts := make([]string, len(t))
		for i, e := range t {
			parts[i] = stringify(e)
		}
		return strings.Join(parts, ",")
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, len(keys))
		for i, k := range keys {
			parts[i] = k + "=" + stringify(t[k])
		}
		return strings.Join(parts, ",")
	default:
		return fmt.Sprintf("%v", t)
	}
}
