// Package jsondoc serializes basic trees to and from JSON.
//
// Mappings keep their entry order on both directions, which is why the
// package writes JSON itself instead of going through a Go map: the tag
// keys ($type, $version) stay in front and re-encoding a document is
// byte-stable. The writer drives an explicit stack, so output depth is
// bounded by memory, not by the goroutine stack; the reader streams
// decoder tokens and inherits encoding/json's nesting limit.
package jsondoc

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/matzehuels/pretree/pkg/basic"
)

// ErrUnsupportedValue is returned when a tree holds a value JSON cannot
// carry, such as a NaN or infinite float.
var ErrUnsupportedValue = errors.New("value not representable in JSON")

// Marshal renders tree as compact JSON.
func Marshal(tree basic.Value) ([]byte, error) {
	var buf bytes.Buffer
	if err := Write(tree, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// MarshalIndent renders tree as two-space indented JSON.
func MarshalIndent(tree basic.Value) ([]byte, error) {
	compact, err := Marshal(tree)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, compact, "", "  "); err != nil {
		return nil, fmt.Errorf("indent: %w", err)
	}
	return buf.Bytes(), nil
}

// writeItem is one unit of pending output: either a tree node to render
// or a literal chunk of syntax.
type writeItem struct {
	v   basic.Value
	lit string
}

// Write renders tree as compact JSON to w.
func Write(tree basic.Value, w io.Writer) error {
	bw := bufio.NewWriter(w)
	stack := []writeItem{{v: tree}}
	for len(stack) > 0 {
		it := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if it.v == nil {
			if _, err := bw.WriteString(it.lit); err != nil {
				return err
			}
			continue
		}
		var err error
		stack, err = writeValue(bw, stack, it.v)
		if err != nil {
			return err
		}
	}
	return bw.Flush()
}

func writeValue(bw *bufio.Writer, stack []writeItem, v basic.Value) ([]writeItem, error) {
	switch node := v.(type) {
	case basic.Null:
		_, err := bw.WriteString("null")
		return stack, err
	case basic.Bool:
		_, err := bw.WriteString(strconv.FormatBool(bool(node)))
		return stack, err
	case basic.Int:
		_, err := bw.WriteString(strconv.FormatInt(int64(node), 10))
		return stack, err
	case basic.Float:
		f := float64(node)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return stack, fmt.Errorf("%w: float %v", ErrUnsupportedValue, f)
		}
		_, err := bw.WriteString(formatFloat(f))
		return stack, err
	case basic.String:
		enc, err := encodeString(string(node))
		if err != nil {
			return stack, err
		}
		_, err = bw.WriteString(enc)
		return stack, err
	case *basic.Sequence:
		if err := bw.WriteByte('['); err != nil {
			return stack, err
		}
		stack = append(stack, writeItem{lit: "]"})
		for i := len(node.Elems) - 1; i >= 0; i-- {
			stack = append(stack, writeItem{v: node.Elems[i]})
			if i > 0 {
				stack = append(stack, writeItem{lit: ","})
			}
		}
		return stack, nil
	case *basic.Mapping:
		if err := bw.WriteByte('{'); err != nil {
			return stack, err
		}
		stack = append(stack, writeItem{lit: "}"})
		for i := node.Len() - 1; i >= 0; i-- {
			e := node.At(i)
			key, err := encodeString(e.Key)
			if err != nil {
				return stack, err
			}
			stack = append(stack, writeItem{v: e.Value}, writeItem{lit: key + ":"})
			if i > 0 {
				stack = append(stack, writeItem{lit: ","})
			}
		}
		return stack, nil
	}
	return stack, fmt.Errorf("%w: %T", ErrUnsupportedValue, v)
}

// formatFloat mirrors encoding/json: the shortest representation that
// reads back exactly, with an exponent only for extreme magnitudes. A
// trailing ".0" keeps whole floats distinguishable from integers across
// a round trip.
func formatFloat(f float64) string {
	abs := math.Abs(f)
	format := byte('f')
	if abs != 0 && (abs < 1e-6 || abs >= 1e21) {
		format = 'e'
	}
	s := strconv.FormatFloat(f, format, -1, 64)
	if format == 'f' && !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}

func encodeString(s string) (string, error) {
	b, err := json.Marshal(s)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Unmarshal parses JSON into a basic tree.
func Unmarshal(data []byte) (basic.Value, error) {
	return Read(bytes.NewReader(data))
}

// Read parses a single JSON document from r into a basic tree. Numbers
// become integers when they parse as one and floats otherwise. Read does
// not close r.
func Read(r io.Reader) (basic.Value, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	type frame struct {
		seq     *basic.Sequence
		m       *basic.Mapping
		key     string
		haveKey bool
	}
	var stack []frame
	var root basic.Value
	started := false

	place := func(v basic.Value) {
		if !started {
			root, started = v, true
		}
		if len(stack) == 0 {
			return
		}
		top := &stack[len(stack)-1]
		if top.seq != nil {
			top.seq.Elems = append(top.seq.Elems, v)
			return
		}
		top.m.Set(top.key, v)
		top.haveKey = false
	}

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			if !started {
				return nil, fmt.Errorf("decode: empty document")
			}
			if len(stack) > 0 {
				return nil, fmt.Errorf("decode: %w", io.ErrUnexpectedEOF)
			}
			return root, nil
		}
		if err != nil {
			return nil, fmt.Errorf("decode: %w", err)
		}

		expectKey := len(stack) > 0 && stack[len(stack)-1].m != nil && !stack[len(stack)-1].haveKey

		switch t := tok.(type) {
		case json.Delim:
			switch t {
			case '[':
				seq := &basic.Sequence{}
				place(seq)
				stack = append(stack, frame{seq: seq})
			case '{':
				m := basic.NewMapping()
				place(m)
				stack = append(stack, frame{m: m})
			default: // ']' or '}'
				stack = stack[:len(stack)-1]
			}
		case string:
			if expectKey {
				top := &stack[len(stack)-1]
				top.key, top.haveKey = t, true
				continue
			}
			place(basic.String(t))
		case json.Number:
			v, err := number(t)
			if err != nil {
				return nil, err
			}
			place(v)
		case bool:
			place(basic.Bool(t))
		case nil:
			place(basic.Null{})
		}
	}
}

func number(n json.Number) (basic.Value, error) {
	if i, err := n.Int64(); err == nil {
		return basic.Int(i), nil
	}
	f, err := n.Float64()
	if err != nil {
		return nil, fmt.Errorf("decode: number %q: %w", n, err)
	}
	return basic.Float(f), nil
}

// ExportFile writes tree as indented JSON to a file at path.
func ExportFile(tree basic.Value, path string) error {
	data, err := MarshalIndent(tree)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// ImportFile reads a JSON file at path into a basic tree.
func ImportFile(path string) (basic.Value, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return Read(f)
}
