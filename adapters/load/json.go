package load

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"tabkit/domain/table"
)

// LoadJSON reads an array of records or newline-delimited JSON objects into a
// dataset. Column order follows first appearance of each key in the input.
func LoadJSON(path string, opts Options) (*table.Dataset, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("open json: %w", err)
	}

	records, order, err := decodeRecords(raw)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("load: no rows found")
	}

	cells := make([][]string, len(order))
	for c := range order {
		cells[c] = make([]string, len(records))
	}
	for r, rec := range records {
		for c, key := range order {
			cells[c][r] = jsonCellString(rec[key])
		}
	}

	columns := make([]table.Column, len(order))
	for c, name := range order {
		colType, ok := opts.Types[name]
		if !ok {
			colType = inferColumnType(cells[c], opts.SampleSize)
		}
		columns[c] = buildColumn(name, colType, cells[c])
	}
	return table.New(columns...)
}

// decodeRecords handles both a top-level array of objects and NDJSON. Key
// order is taken from the raw token stream so columns come out in the order
// the file wrote them.
func decodeRecords(raw []byte) ([]map[string]any, []string, error) {
	trimmed := strings.TrimSpace(string(raw))
	var objects []json.RawMessage

	if strings.HasPrefix(trimmed, "[") {
		if err := json.Unmarshal(raw, &objects); err != nil {
			return nil, nil, fmt.Errorf("parse json array: %w", err)
		}
	} else {
		sc := bufio.NewScanner(strings.NewReader(trimmed))
		sc.Buffer(make([]byte, 1024*1024), 16*1024*1024)
		for sc.Scan() {
			line := strings.TrimSpace(sc.Text())
			if line == "" {
				continue
			}
			objects = append(objects, json.RawMessage(line))
		}
		if err := sc.Err(); err != nil {
			return nil, nil, fmt.Errorf("scan ndjson: %w", err)
		}
	}

	records := make([]map[string]any, 0, len(objects))
	var order []string
	seen := make(map[string]bool)

	for i, obj := range objects {
		var rec map[string]any
		if err := json.Unmarshal(obj, &rec); err != nil {
			return nil, nil, fmt.Errorf("parse record %d: %w", i, err)
		}
		for _, key := range objectKeys(obj) {
			if !seen[key] {
				seen[key] = true
				order = append(order, key)
			}
		}
		records = append(records, rec)
	}
	return records, order, nil
}

// objectKeys extracts top-level keys from a JSON object in source order.
func objectKeys(raw json.RawMessage) []string {
	dec := json.NewDecoder(strings.NewReader(string(raw)))
	tok, err := dec.Token()
	if err != nil {
		return nil
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil
	}
	var keys []string
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return keys
		}
		key, ok := tok.(string)
		if !ok {
			return keys
		}
		keys = append(keys, key)
		skipValue(dec)
	}
	return keys
}

func skipValue(dec *json.Decoder) {
	tok, err := dec.Token()
	if err != nil {
		return
	}
	if d, ok := tok.(json.Delim); ok && (d == '{' || d == '[') {
		depth := 1
		for depth > 0 {
			tok, err := dec.Token()
			if err != nil {
				return
			}
			if d, ok := tok.(json.Delim); ok {
				switch d {
				case '{', '[':
					depth++
				case '}', ']':
					depth--
				}
			}
		}
	}
}

func jsonCellString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	case float64:
		return strconv.FormatFloat(t, 'g', -1, 64)
	default:
		raw, err := json.Marshal(t)
		if err != nil {
			return ""
		}
		return string(raw)
	}
}
