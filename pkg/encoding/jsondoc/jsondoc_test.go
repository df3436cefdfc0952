package jsondoc

import (
	"errors"
	"io"
	"math"
	"strings"
	"testing"

	"github.com/matzehuels/pretree/pkg/basic"
)

func TestMarshal(t *testing.T) {
	tree := basic.Map(
		basic.Entry{Key: basic.TypeKey, Value: basic.String("parrot")},
		basic.Entry{Key: basic.VersionKey, Value: basic.Int(2)},
		basic.Entry{Key: "IsDead", Value: basic.Bool(true)},
		basic.Entry{Key: "Weight", Value: basic.Float(1.5)},
		basic.Entry{Key: "Perch", Value: basic.Null{}},
		basic.Entry{Key: "Words", Value: basic.Seq(basic.String("pining"), basic.String("fjords"))},
	)
	got, err := Marshal(tree)
	if err != nil {
		t.Fatalf("Marshal() = %v", err)
	}
	want := `{"$type":"parrot","$version":2,"IsDead":true,"Weight":1.5,"Perch":null,"Words":["pining","fjords"]}`
	if string(got) != want {
		t.Errorf("Marshal() = %s, want %s", got, want)
	}
}

func TestMarshal_KeyOrderPreserved(t *testing.T) {
	tree := basic.Map(
		basic.Entry{Key: "z", Value: basic.Int(1)},
		basic.Entry{Key: "a", Value: basic.Int(2)},
	)
	got, err := Marshal(tree)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != `{"z":1,"a":2}` {
		t.Errorf("Marshal() = %s, entry order not preserved", got)
	}
}

func TestMarshal_WholeFloatKeepsKind(t *testing.T) {
	got, err := Marshal(basic.Float(3))
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "3.0" {
		t.Errorf("Marshal(Float(3)) = %s, want 3.0", got)
	}

	back, err := Unmarshal(got)
	if err != nil {
		t.Fatal(err)
	}
	if back.Kind() != basic.KindFloat {
		t.Errorf("round trip kind = %v, want float", back.Kind())
	}
}

func TestMarshal_NaN(t *testing.T) {
	_, err := Marshal(basic.Float(math.NaN()))
	if !errors.Is(err, ErrUnsupportedValue) {
		t.Errorf("Marshal(NaN) = %v, want ErrUnsupportedValue", err)
	}
}

func TestUnmarshal(t *testing.T) {
	doc := `{"$type":"dict","":[["brian","naughty boy"],[3,"Antioch"]],"x":{"$ref":"#/x"}}`
	tree, err := Unmarshal([]byte(doc))
	if err != nil {
		t.Fatalf("Unmarshal() = %v", err)
	}

	m, ok := tree.(*basic.Mapping)
	if !ok {
		t.Fatalf("Unmarshal() = %T, want *basic.Mapping", tree)
	}
	if v, _ := m.Get(basic.TypeKey); !basic.Equal(v, basic.String("dict")) {
		t.Errorf("$type = %v", v)
	}
	// The catch-all key is the empty string; it must not confuse the
	// key/value state machine.
	pairs, ok := m.Get(basic.DataKey)
	if !ok {
		t.Fatal("catch-all entry missing")
	}
	want := basic.Seq(
		basic.Seq(basic.String("brian"), basic.String("naughty boy")),
		basic.Seq(basic.Int(3), basic.String("Antioch")),
	)
	if !basic.Equal(pairs, want) {
		t.Errorf("catch-all = %v, want %v", pairs, want)
	}

	x, _ := m.Get("x")
	if ptr, isRef := basic.RefTarget(x); !isRef || ptr != "#/x" {
		t.Errorf("x = %v, want reference to #/x", x)
	}
}

func TestUnmarshal_Numbers(t *testing.T) {
	tree, err := Unmarshal([]byte(`[123, 3.5, 1e2, 9223372036854775807]`))
	if err != nil {
		t.Fatal(err)
	}
	seq := tree.(*basic.Sequence)
	wantKinds := []basic.Kind{basic.KindInt, basic.KindFloat, basic.KindFloat, basic.KindInt}
	for i, k := range wantKinds {
		if seq.Elems[i].Kind() != k {
			t.Errorf("element %d kind = %v, want %v", i, seq.Elems[i].Kind(), k)
		}
	}
	if seq.Elems[3] != basic.Int(math.MaxInt64) {
		t.Errorf("element 3 = %v, want MaxInt64", seq.Elems[3])
	}
}

func TestUnmarshal_Invalid(t *testing.T) {
	for _, doc := range []string{"", "{", `{"a":}`} {
		if _, err := Unmarshal([]byte(doc)); err == nil {
			t.Errorf("Unmarshal(%q) = nil error", doc)
		}
	}
}

func TestUnmarshal_Truncated(t *testing.T) {
	// Input that ends inside an open container must not parse as a
	// partial tree.
	for _, doc := range []string{"{", "[1,", `{"a":1`, `[[true]`} {
		_, err := Unmarshal([]byte(doc))
		if !errors.Is(err, io.ErrUnexpectedEOF) {
			t.Errorf("Unmarshal(%q) = %v, want unexpected EOF", doc, err)
		}
	}
}

func TestRoundTrip(t *testing.T) {
	tree := basic.Map(
		basic.Entry{Key: basic.TypeKey, Value: basic.String("egg")},
		basic.Entry{Key: "chick", Value: basic.Map(
			basic.Entry{Key: basic.RefKey, Value: basic.String("#")},
		)},
		basic.Entry{Key: "weights", Value: basic.Seq(basic.Float(0.25), basic.Int(-3))},
	)

	data, err := Marshal(tree)
	if err != nil {
		t.Fatal(err)
	}
	back, err := Unmarshal(data)
	if err != nil {
		t.Fatal(err)
	}
	if !basic.Equal(tree, back) {
		t.Errorf("round trip mismatch:\nin:  %v\nout: %v", tree, back)
	}
}

func TestRoundTrip_Deep(t *testing.T) {
	tree := basic.Value(basic.Int(0))
	for i := 0; i < 50_000; i++ {
		tree = basic.Seq(tree)
	}
	data, err := Marshal(tree)
	if err != nil {
		t.Fatalf("Marshal(deep) = %v", err)
	}

	// Reading back is capped by encoding/json's nesting limit, so the
	// read-direction check stays below it.
	shallow := basic.Value(basic.Int(0))
	for i := 0; i < 9_000; i++ {
		shallow = basic.Seq(shallow)
	}
	data, err = Marshal(shallow)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := Unmarshal(data); err != nil {
		t.Fatalf("Unmarshal(deep) = %v", err)
	}
}

func TestMarshalIndent(t *testing.T) {
	got, err := MarshalIndent(basic.Map(basic.Entry{Key: "a", Value: basic.Int(1)}))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(got), "\n  \"a\": 1") {
		t.Errorf("MarshalIndent() = %q, want indented entry", got)
	}
}
