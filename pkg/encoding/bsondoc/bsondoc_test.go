package bsondoc

import (
	"errors"
	"testing"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/matzehuels/pretree/pkg/basic"
)

func sampleTree() *basic.Mapping {
	return basic.Map(
		basic.Entry{Key: basic.TypeKey, Value: basic.String("parrot")},
		basic.Entry{Key: basic.VersionKey, Value: basic.Int(2)},
		basic.Entry{Key: "IsDead", Value: basic.Bool(true)},
		basic.Entry{Key: "Weight", Value: basic.Float(1.5)},
		basic.Entry{Key: "Perch", Value: basic.Null{}},
		basic.Entry{Key: "Words", Value: basic.Seq(basic.String("pining"), basic.Int(4))},
	)
}

func TestToBSON(t *testing.T) {
	v, err := ToBSON(sampleTree())
	if err != nil {
		t.Fatalf("ToBSON() = %v", err)
	}
	doc, ok := v.(bson.D)
	if !ok {
		t.Fatalf("ToBSON() = %T, want bson.D", v)
	}
	if doc[0].Key != basic.TypeKey || doc[0].Value != "parrot" {
		t.Errorf("doc[0] = %+v, want $type=parrot first", doc[0])
	}
	if doc[1].Value != int64(2) {
		t.Errorf("doc[1].Value = %v (%T), want int64 2", doc[1].Value, doc[1].Value)
	}
	arr, ok := doc[5].Value.(bson.A)
	if !ok || len(arr) != 2 {
		t.Fatalf("Words = %v, want two-element bson.A", doc[5].Value)
	}
	if arr[1] != int64(4) {
		t.Errorf("Words[1] = %v (%T), want int64 4", arr[1], arr[1])
	}
}

func TestRoundTrip(t *testing.T) {
	tree := sampleTree()
	data, err := Marshal(tree)
	if err != nil {
		t.Fatalf("Marshal() = %v", err)
	}
	back, err := Unmarshal(data)
	if err != nil {
		t.Fatalf("Unmarshal() = %v", err)
	}
	if !basic.Equal(tree, back) {
		t.Errorf("round trip mismatch:\nin:  %v\nout: %v", tree, back)
	}
}

func TestMarshal_NonDocumentRoot(t *testing.T) {
	if _, err := Marshal(basic.Int(5)); !errors.Is(err, ErrNotDocument) {
		t.Errorf("Marshal(primitive root) = %v, want ErrNotDocument", err)
	}
	if _, err := Marshal(basic.Seq()); !errors.Is(err, ErrNotDocument) {
		t.Errorf("Marshal(sequence root) = %v, want ErrNotDocument", err)
	}
}

func TestConvert_Deep(t *testing.T) {
	// Both converters walk with an explicit stack, so depth well past
	// any goroutine stack limit must convert both ways.
	tree := basic.Value(basic.Int(0))
	for i := 0; i < 50_000; i++ {
		tree = basic.Seq(tree)
	}
	v, err := ToBSON(tree)
	if err != nil {
		t.Fatalf("ToBSON(deep) = %v", err)
	}
	back, err := FromBSON(v)
	if err != nil {
		t.Fatalf("FromBSON(deep) = %v", err)
	}
	if !basic.Equal(tree, back) {
		t.Error("deep tree did not survive the round trip")
	}
}

func TestFromBSON_Int32(t *testing.T) {
	got, err := FromBSON(bson.D{{Key: "n", Value: int32(7)}})
	if err != nil {
		t.Fatalf("FromBSON() = %v", err)
	}
	v, _ := got.(*basic.Mapping).Get("n")
	if !basic.Equal(v, basic.Int(7)) {
		t.Errorf("n = %v, want Int(7)", v)
	}
}

func TestFromBSON_Unsupported(t *testing.T) {
	if _, err := FromBSON(bson.M{"a": 1}); !errors.Is(err, ErrUnsupportedValue) {
		t.Errorf("FromBSON(bson.M) = %v, want ErrUnsupportedValue", err)
	}
	if _, err := FromBSON(struct{}{}); !errors.Is(err, ErrUnsupportedValue) {
		t.Errorf("FromBSON(struct) = %v, want ErrUnsupportedValue", err)
	}
}
