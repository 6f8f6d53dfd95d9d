package jpool

import (
	"errors"
	"strings"
	"testing"

	"github.com/Jeffail/gabs/v2"
)

func must[I Index](t *testing.T) func(I, error) I {
	return func(i I, err error) I {
		t.Helper()
		if err != nil {
			t.Fatal(err)
		}
		return i
	}
}

func TestBuild_MatchesGabs(t *testing.T) {
	g := gabs.New()
	if _, err := g.Set(1, "n"); err != nil {
		t.Fatal(err)
	}
	if _, err := g.Set("x", "name"); err != nil {
		t.Fatal(err)
	}
	if err := g.ArrayAppend("a", "tags"); err != nil {
		t.Fatal(err)
	}
	if err := g.ArrayAppend("b", "tags"); err != nil {
		t.Fatal(err)
	}

	p, _ := NewWide(0)
	ok := must[uint32](t)
	tags := ok(p.NewArray(ok(p.NewString("a"))))
	if err := p.ArrayAdd(tags, ok(p.NewString("b"))); err != nil {
		t.Fatal(err)
	}
	obj := ok(p.NewObject(
		ok(p.NewString("tags")), tags,
		ok(p.NewString("n")), ok(p.NewNumber("1")),
	))
	if err := p.ObjectAdd(obj, ok(p.NewString("name")), ok(p.NewString("x"))); err != nil {
		t.Fatal(err)
	}
	if err := p.SetRoot(obj); err != nil {
		t.Fatal(err)
	}

	got, _ := p.PrettyWithOptions(mustRoot(t, p), &FormatOptions{SortKeys: true})
	if string(got) != g.String() {
		t.Errorf("built = %s, gabs gives %s", got, g.String())
	}
	if p.RootValue().Get("tags[1]").String() != "b" {
		t.Error("query on built tree failed")
	}
}

func TestBuild_OwnedTextSurvivesGrowth(t *testing.T) {
	p, _ := NewMedium(1)
	ok := must[uint16](t)

	long := strings.Repeat("abcdefghij", 30)
	first := ok(p.NewString(long))
	arr := ok(p.NewArray(first))
	for n := 0; n < 100; n++ {
		if err := p.ArrayAdd(arr, ok(p.NewString("filler"))); err != nil {
			t.Fatal(err)
		}
	}
	if p.Grows() == 0 {
		t.Fatal("pool never grew")
	}
	if got := string(p.Text(first)); got != long {
		t.Errorf("text after growth = %q", got)
	}
	if p.Members(arr) != 101 {
		t.Errorf("Members() = %d, want 101", p.Members(arr))
	}
}

func TestBuild_Scalars(t *testing.T) {
	p, _ := NewNarrow(0)
	ok := must[uint8](t)

	arr := ok(p.NewArray(
		ok(p.NewString("q\"t\n")),
		ok(p.NewRawString(`é`)),
		ok(p.NewNumber("-1.5e3")),
		ok(p.NewBool(true)),
		ok(p.NewBool(false)),
		ok(p.NewNull()),
		ok(p.NewString("")),
		ok(p.NewObject()),
		ok(p.NewArray()),
	))
	if err := p.SetRoot(arr); err != nil {
		t.Fatal(err)
	}
	got, _ := p.Ugly(arr)
	want := `["q\"t\n","é",-1.5e3,true,false,null,"",{},[]]`
	if string(got) != want {
		t.Errorf("Ugly() = %s, want %s", got, want)
	}
	if s := p.RootValue().Get("[1]").String(); s != "é" {
		t.Errorf("raw string value = %q", s)
	}

	// output decodes back to the same tree
	again, _ := NewNarrow(0)
	if err := again.Decode(got); err != nil {
		t.Fatalf("re-decode: %v", err)
	}
}

func TestBuild_Validation(t *testing.T) {
	p, _ := NewWide(0)
	ok := must[uint32](t)

	if _, err := p.NewNumber("01"); !errors.Is(err, ErrSyntax) {
		t.Errorf("NewNumber(01) error = %v", err)
	}
	if _, err := p.NewNumber("1 "); !errors.Is(err, ErrSyntax) {
		t.Errorf("NewNumber(1 ) error = %v", err)
	}
	if _, err := p.NewRawString(`a"b`); !errors.Is(err, ErrSyntax) {
		t.Errorf("NewRawString with quote error = %v", err)
	}
	if _, err := p.NewRawString(`\x`); !errors.Is(err, ErrSyntax) {
		t.Errorf("NewRawString with bad escape error = %v", err)
	}
	if _, err := p.NewRawString(`trailing\`); !errors.Is(err, ErrSyntax) {
		t.Errorf("NewRawString ending in backslash error = %v", err)
	}

	num := ok(p.NewNumber("1"))
	str := ok(p.NewString("k"))
	if _, err := p.NewObject(num, str); !errors.Is(err, ErrInvalidNode) {
		t.Errorf("NewObject with number key error = %v", err)
	}
	if _, err := p.NewObject(str); err == nil {
		t.Error("NewObject with odd node count succeeded")
	}
	arr := ok(p.NewArray(num))
	if err := p.ArrayAdd(arr, arr); !errors.Is(err, ErrInvalidNode) {
		t.Errorf("ArrayAdd(self) error = %v", err)
	}
	if err := p.ArrayAdd(str, num); !errors.Is(err, ErrInvalidNode) {
		t.Errorf("ArrayAdd to string error = %v", err)
	}
	if err := p.ObjectAdd(arr, str, num); !errors.Is(err, ErrInvalidNode) {
		t.Errorf("ObjectAdd to array error = %v", err)
	}
	if err := p.SetRoot(p.Invalid()); !errors.Is(err, ErrInvalidNode) {
		t.Errorf("SetRoot(invalid) error = %v", err)
	}
	if _, ok := p.Root(); ok {
		t.Error("Root() set without SetRoot")
	}
}

func TestBuild_LinkedNodeRejected(t *testing.T) {
	p, _ := NewWide(0)
	ok := must[uint32](t)
	a := ok(p.NewNumber("1"))
	b := ok(p.NewNumber("2"))
	arr1 := ok(p.NewArray(a, b))

	tests := []struct {
		name string
		add  func() error
	}{
		{"head_into_new_array", func() error {
			_, err := p.NewArray(a)
			return err
		}},
		{"tail_into_new_array", func() error {
			_, err := p.NewArray(b)
			return err
		}},
		{"tail_into_existing_array", func() error {
			return p.ArrayAdd(ok(p.NewArray()), b)
		}},
		{"tail_as_object_value", func() error {
			return p.ObjectAdd(ok(p.NewObject()), ok(p.NewString("k")), b)
		}},
		{"same_node_twice", func() error {
			c := ok(p.NewNull())
			_, err := p.NewArray(c, c)
			return err
		}},
		{"same_key_twice", func() error {
			k := ok(p.NewString("k"))
			_, err := p.NewObject(k, ok(p.NewNull()), k, ok(p.NewNull()))
			return err
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.add(); !errors.Is(err, ErrInvalidNode) {
				t.Errorf("error = %v, want ErrInvalidNode", err)
			}
		})
	}

	// rejected adds leave the original container intact
	if p.Len(arr1) != 2 {
		t.Errorf("Len(arr1) = %d, want 2", p.Len(arr1))
	}
	if got, _ := p.Ugly(arr1); string(got) != "[1,2]" {
		t.Errorf("arr1 = %s, want [1,2]", got)
	}
}

func TestBuild_CycleRejected(t *testing.T) {
	p, _ := NewWide(0)
	ok := must[uint32](t)

	inner := ok(p.NewArray())
	middle := ok(p.NewArray(inner))
	outer := ok(p.NewObject(ok(p.NewString("m")), middle))

	if err := p.ArrayAdd(inner, middle); !errors.Is(err, ErrInvalidNode) {
		t.Errorf("adding parent to child error = %v, want ErrInvalidNode", err)
	}
	if err := p.ArrayAdd(inner, outer); !errors.Is(err, ErrInvalidNode) {
		t.Errorf("adding grandparent to grandchild error = %v, want ErrInvalidNode", err)
	}
	if err := p.ObjectAdd(outer, ok(p.NewString("self")), outer); !errors.Is(err, ErrInvalidNode) {
		t.Errorf("adding object to itself error = %v, want ErrInvalidNode", err)
	}
	if err := p.ArrayAdd(inner, inner); !errors.Is(err, ErrInvalidNode) {
		t.Errorf("adding array to itself error = %v, want ErrInvalidNode", err)
	}

	// the tree is still finite and well formed
	if err := p.ArrayAdd(inner, ok(p.NewBool(true))); err != nil {
		t.Fatal(err)
	}
	got, err := p.Ugly(outer)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != `{"m":[[true]]}` {
		t.Errorf("Ugly() = %s", got)
	}
}

func TestBuild_TextSlotsAreNotNodes(t *testing.T) {
	p, _ := NewWide(0)
	ok := must[uint32](t)

	// 16 bytes of text take two 12-byte slots ahead of the node
	s := ok(p.NewString("abcdefghijklmnop"))
	if s != 2 {
		t.Fatalf("string node index = %d, want 2", s)
	}
	for slot := uint32(0); slot < s; slot++ {
		if p.Kind(slot) != Undefined {
			t.Errorf("Kind(text slot %d) = %s", slot, p.Kind(slot))
		}
		if err := p.SetRoot(slot); !errors.Is(err, ErrInvalidNode) {
			t.Errorf("SetRoot(text slot %d) error = %v", slot, err)
		}
		if _, err := p.NewArray(slot); !errors.Is(err, ErrInvalidNode) {
			t.Errorf("NewArray(text slot %d) error = %v", slot, err)
		}
		if p.Value(slot).Exists() {
			t.Errorf("Value(text slot %d) exists", slot)
		}
	}
	if p.Kind(s) != String || string(p.Text(s)) != "abcdefghijklmnop" {
		t.Errorf("string node = %s %q", p.Kind(s), p.Text(s))
	}
}

func TestBuild_StringsKeepHTMLCharacters(t *testing.T) {
	p, _ := NewWide(0)
	ok := must[uint32](t)

	key := ok(p.NewString("a<b&c>"))
	obj := ok(p.NewObject(key, ok(p.NewString("<tag>"))))
	if err := p.SetRoot(obj); err != nil {
		t.Fatal(err)
	}

	if string(p.Text(key)) != "a<b&c>" {
		t.Errorf("key text = %q", p.Text(key))
	}
	v, found := p.Find(obj, "a<b&c>")
	if !found {
		t.Fatal("Find did not match the built key")
	}
	if got := p.Value(v).String(); got != "<tag>" {
		t.Errorf("value = %q", got)
	}
	if got, _ := p.Ugly(obj); string(got) != `{"a<b&c>":"<tag>"}` {
		t.Errorf("Ugly() = %s", got)
	}
	if got := p.RootValue().Get(`a<b&c>`).String(); got != "<tag>" {
		t.Errorf("Get() = %q", got)
	}
}

func TestBuild_NarrowLimits(t *testing.T) {
	p, _ := NewNarrow(0)
	ok := must[uint8](t)
	if _, err := p.NewString(strings.Repeat("x", 32)); !errors.Is(err, ErrSyntax) {
		t.Errorf("32-byte string error = %v, want ErrSyntax", err)
	}
	arr := ok(p.NewArray())
	for n := 0; n < 31; n++ {
		if err := p.ArrayAdd(arr, ok(p.NewNull())); err != nil {
			t.Fatalf("ArrayAdd #%d: %v", n, err)
		}
	}
	if err := p.ArrayAdd(arr, ok(p.NewNull())); !errors.Is(err, ErrSyntax) {
		t.Errorf("32nd element error = %v, want ErrSyntax", err)
	}
}

func TestBuild_ReadOnlyAfterDecode(t *testing.T) {
	p, _ := NewWide(0)
	if err := p.Decode([]byte(`{"a":[]}`)); err != nil {
		t.Fatal(err)
	}
	if _, err := p.NewString("x"); !errors.Is(err, ErrReadOnly) {
		t.Errorf("NewString on decoded pool error = %v, want ErrReadOnly", err)
	}
	arr, _ := p.Query(mustRoot(t, p), "a")
	if err := p.ArrayAdd(arr, 0); !errors.Is(err, ErrReadOnly) {
		t.Errorf("ArrayAdd on decoded pool error = %v, want ErrReadOnly", err)
	}

	if err := p.Reset(); err != nil {
		t.Fatal(err)
	}
	s, err := p.NewString("x")
	if err != nil {
		t.Fatalf("NewString after Reset: %v", err)
	}
	if err := p.SetRoot(s); err != nil {
		t.Fatal(err)
	}
	if p.RootValue().String() != "x" {
		t.Errorf("root = %q", p.RootValue().String())
	}

	// a failed decode leaves the pool buildable
	_ = p.Decode([]byte(`[`))
	if _, err := p.NewNull(); err != nil {
		t.Errorf("NewNull after failed decode: %v", err)
	}
}
