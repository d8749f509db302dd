package tableio

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/JonMunkholm/datacleaner/internal/table"
)

// ReadJSON loads an array of flat objects. Column order follows first
// appearance of each key. A column whose non-null values are all JSON
// numbers is Numeric; anything else is Text. Nested values are kept as raw
// JSON text and null becomes absent.
func ReadJSON(r io.Reader) (*table.Table, error) {
	dec := json.NewDecoder(skipBOM(r))
	dec.UseNumber()

	tok, err := dec.Token()
	if errors.Is(err, io.EOF) {
		return nil, ErrEmptyFile
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidJSON, err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '[' {
		return nil, fmt.Errorf("%w: expected an array of objects", ErrInvalidJSON)
	}

	var (
		names   []string
		index   = map[string]int{}
		columns [][]table.Value
		numeric []bool
		rows    int
	)

	for dec.More() {
		var obj orderedObject
		if err := dec.Decode(&obj); err != nil {
			return nil, fmt.Errorf("%w: record %d: %v", ErrInvalidJSON, rows+1, err)
		}
		for _, kv := range obj {
			j, ok := index[kv.key]
			if !ok {
				j = len(names)
				index[kv.key] = j
				names = append(names, kv.key)
				columns = append(columns, make([]table.Value, rows))
				numeric = append(numeric, true)
			}
			v, isNum := jsonValue(kv.raw)
			if !v.IsNull() && !isNum {
				numeric[j] = false
			}
			// duplicate keys: last one wins
			if len(columns[j]) > rows {
				columns[j][rows] = v
				continue
			}
			columns[j] = append(columns[j], v)
		}
		rows++
		for j := range columns {
			if len(columns[j]) < rows {
				columns[j] = append(columns[j], table.Null())
			}
		}
	}

	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidJSON, err)
	}
	if len(names) == 0 {
		return nil, ErrEmptyFile
	}

	cols := make([]*table.Column, len(names))
	for j, name := range names {
		typ := table.TypeText
		if numeric[j] && hasValue(columns[j]) {
			typ = table.TypeNumeric
		} else {
			for i, v := range columns[j] {
				if n, ok := v.Num(); ok {
					columns[j][i] = table.String(table.FormatNumber(n))
				}
			}
		}
		cols[j] = table.NewColumn(name, typ, columns[j])
	}
	return table.New(cols...)
}

// WriteJSON writes t as an array of objects with keys in column order.
// Absent cells are null and numbers use their shortest representation.
func WriteJSON(w io.Writer, t *table.Table) error {
	bw := bufio.NewWriter(w)
	names := t.Names()
	keys := make([][]byte, len(names))
	for j, n := range names {
		k, err := json.Marshal(n)
		if err != nil {
			return err
		}
		keys[j] = k
	}

	bw.WriteByte('[')
	for i := 0; i < t.Len(); i++ {
		if i > 0 {
			bw.WriteByte(',')
		}
		bw.WriteString("\n  {")
		for j, v := range t.Row(i) {
			if j > 0 {
				bw.WriteByte(',')
			}
			bw.Write(keys[j])
			bw.WriteByte(':')
			b, err := marshalValue(v)
			if err != nil {
				return fmt.Errorf("row %d column %q: %w", i, names[j], err)
			}
			bw.Write(b)
		}
		bw.WriteByte('}')
	}
	if t.Len() > 0 {
		bw.WriteByte('\n')
	}
	bw.WriteString("]\n")
	return bw.Flush()
}

func marshalValue(v table.Value) ([]byte, error) {
	if v.IsNull() {
		return []byte("null"), nil
	}
	if n, ok := v.Num(); ok {
		return []byte(table.FormatNumber(n)), nil
	}
	return json.Marshal(v.Text())
}

type jsonField struct {
	key string
	raw json.RawMessage
}

// orderedObject decodes a JSON object keeping key order.
type orderedObject []jsonField

func (o *orderedObject) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return errors.New("expected an object")
	}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, _ := tok.(string)
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return err
		}
		*o = append(*o, jsonField{key: key, raw: raw})
	}
	_, err = dec.Token()
	return err
}

// jsonValue converts one raw JSON value to a cell. isNum reports a JSON number.
func jsonValue(raw json.RawMessage) (v table.Value, isNum bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return table.Null(), false
	}
	switch raw[0] {
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			return table.String(s), false
		}
	case '{', '[':
		return table.String(string(raw)), false
	case 't', 'f':
		return table.String(string(raw)), false
	default:
		var n json.Number
		if err := json.Unmarshal(raw, &n); err == nil {
			if f, err := n.Float64(); err == nil {
				return table.Number(f), true
			}
		}
	}
	return table.String(string(raw)), false
}

func hasValue(values []table.Value) bool {
	for _, v := range values {
		if !v.IsNull() {
			return true
		}
	}
	return false
}
