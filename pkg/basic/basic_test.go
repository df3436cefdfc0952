package basic

import (
	"errors"
	"testing"
)

func TestMapping_SetReplacesInPlace(t *testing.T) {
	m := NewMapping()
	m.Set("a", Int(1))
	m.Set("b", Int(2))
	m.Set("a", Int(3))

	if m.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", m.Len())
	}
	if e := m.At(0); e.Key != "a" || !Equal(e.Value, Int(3)) {
		t.Errorf("At(0) = %v=%v, want a=3", e.Key, e.Value)
	}
	if e := m.At(1); e.Key != "b" {
		t.Errorf("At(1).Key = %q, want b", e.Key)
	}
}

func TestRefTarget(t *testing.T) {
	ref := NewRef("#/spam/0")
	ptr, ok := RefTarget(ref)
	if !ok || ptr != "#/spam/0" {
		t.Errorf("RefTarget(ref) = %q, %v, want #/spam/0, true", ptr, ok)
	}

	// A mapping with $ref plus any other key is not a reference node.
	m := Map(
		Entry{Key: RefKey, Value: String("#")},
		Entry{Key: "extra", Value: Int(1)},
	)
	if _, ok := RefTarget(m); ok {
		t.Errorf("RefTarget(mapping with extra key) = true, want false")
	}
	if _, ok := RefTarget(Int(5)); ok {
		t.Errorf("RefTarget(primitive) = true, want false")
	}
}

func TestEqual(t *testing.T) {
	cases := []struct {
		name string
		a, b Value
		want bool
	}{
		{"ints", Int(7), Int(7), true},
		{"int vs float", Int(7), Float(7), false},
		{"nested", Seq(Int(1), Seq(String("x"))), Seq(Int(1), Seq(String("x"))), true},
		{"length", Seq(Int(1)), Seq(Int(1), Int(2)), false},
		{
			"mapping order matters",
			Map(Entry{Key: "a", Value: Int(1)}, Entry{Key: "b", Value: Int(2)}),
			Map(Entry{Key: "b", Value: Int(2)}, Entry{Key: "a", Value: Int(1)}),
			false,
		},
		{"nil vs null", nil, Null{}, false},
	}
	for _, c := range cases {
		if got := Equal(c.a, c.b); got != c.want {
			t.Errorf("%s: Equal() = %v, want %v", c.name, got, c.want)
		}
	}
}

func TestIsIdentifier(t *testing.T) {
	valid := []string{"brian", "_spam", "x2", "überraschung"}
	for _, s := range valid {
		if !IsIdentifier(s) {
			t.Errorf("IsIdentifier(%q) = false, want true", s)
		}
	}
	invalid := []string{"", "2x", "a-b", "a.b", "$type", "a b"}
	for _, s := range invalid {
		if IsIdentifier(s) {
			t.Errorf("IsIdentifier(%q) = true, want false", s)
		}
	}
}

func TestEscapeKey(t *testing.T) {
	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{"brian", "brian", true},
		{"", "$", true},
		{"$type", "$$type", true},
		{"$", "$$", true},
		{"a-b", "", false},
		{"3", "", false},
	}
	for _, c := range cases {
		got, ok := EscapeKey(c.in)
		if got != c.want || ok != c.ok {
			t.Errorf("EscapeKey(%q) = %q, %v, want %q, %v", c.in, got, ok, c.want, c.ok)
		}
		if ok {
			if back := UnescapeKey(got); back != c.in {
				t.Errorf("UnescapeKey(EscapeKey(%q)) = %q", c.in, back)
			}
		}
	}
}

func TestPath_Pointer(t *testing.T) {
	cases := []struct {
		path Path
		want string
	}{
		{Path{}, "#"},
		{Path{Key("spam"), Index(0)}, "#/spam/0"},
		{Path{Key(""), Index(2), Index(1)}, "#//2/1"},
		{Path{Key("a/b"), Key("c~d")}, "#/a~1b/c~0d"},
	}
	for _, c := range cases {
		if got := c.path.Pointer(); got != c.want {
			t.Errorf("Pointer() = %q, want %q", got, c.want)
		}
		back, err := ParsePointer(c.want)
		if err != nil {
			t.Errorf("ParsePointer(%q) = %v", c.want, err)
			continue
		}
		if back.Pointer() != c.want {
			t.Errorf("ParsePointer(%q).Pointer() = %q", c.want, back.Pointer())
		}
	}
}

func TestParsePointer_Invalid(t *testing.T) {
	for _, expr := range []string{"", "spam", "/spam", "#spam"} {
		if _, err := ParsePointer(expr); !errors.Is(err, ErrBadPointer) {
			t.Errorf("ParsePointer(%q) = %v, want ErrBadPointer", expr, err)
		}
	}
}

func TestResolve(t *testing.T) {
	tree := Map(
		Entry{Key: "spam", Value: Seq(Int(10), Int(20))},
		Entry{Key: DataKey, Value: Seq(String("egg"))},
	)

	got, err := Resolve(tree, Path{Key("spam"), Index(1)})
	if err != nil {
		t.Fatalf("Resolve() = %v", err)
	}
	if !Equal(got, Int(20)) {
		t.Errorf("Resolve(#/spam/1) = %v, want 20", got)
	}

	// Empty-string keys address the catch-all entry.
	got, err = Resolve(tree, Path{Key(""), Index(0)})
	if err != nil {
		t.Fatalf("Resolve() = %v", err)
	}
	if !Equal(got, String("egg")) {
		t.Errorf("Resolve(#//0) = %v, want egg", got)
	}

	if _, err := Resolve(tree, Path{Key("missing")}); err == nil {
		t.Errorf("Resolve(missing key) = nil error")
	}
	if _, err := Resolve(tree, Path{Key("spam"), Index(5)}); err == nil {
		t.Errorf("Resolve(out of range) = nil error")
	}
}
