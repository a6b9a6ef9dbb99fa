package charset

import "testing"

func TestRegisterAndLookup(t *testing.T) {
	cs := New()
	a := cs.Register("a")
	b := cs.Register("b")

	if a == b {
		t.Fatalf("distinct characters got the same id: %d", a)
	}
	if got := cs.Register("a"); got != a {
		t.Errorf("re-registering 'a' returned %d, want %d", got, a)
	}
	if cs.IDOf("b") != b {
		t.Errorf("IDOf('b') = %d, want %d", cs.IDOf("b"), b)
	}
	if cs.IDOf("z") != InvalidCharID {
		t.Errorf("IDOf of unknown char should be InvalidCharID")
	}
	if cs.StringOf(a) != "a" {
		t.Errorf("StringOf(%d) = %q, want 'a'", a, cs.StringOf(a))
	}
}

func TestCaseFolding(t *testing.T) {
	cs := FromString("aA")
	lower := cs.IDOf("a")
	upper := cs.IDOf("A")

	if cs.ToLower(upper) != lower {
		t.Errorf("ToLower('A') = %d, want %d", cs.ToLower(upper), lower)
	}
	if cs.ToLower(lower) != lower {
		t.Errorf("ToLower('a') should fold to itself")
	}

	// registration order should not matter
	cs2 := FromString("Ba")
	cs2.Register("b")
	if cs2.ToLower(cs2.IDOf("B")) != cs2.IDOf("b") {
		t.Errorf("upper registered first: ToLower('B') should reach 'b'")
	}
}

func TestNgramAndFragments(t *testing.T) {
	cs := FromString("rnm")
	ng := cs.Register("rn")
	cs.SetIsNgram(ng, true)

	if !cs.IsNgram(ng) {
		t.Fatal("ngram flag not retained")
	}
	if cs.IsNgram(cs.IDOf("r")) {
		t.Error("single char flagged as ngram")
	}

	f0 := cs.RegisterFragment("rn", 0, 2)
	f1 := cs.RegisterFragment("rn", 1, 2)
	if f0 == f1 {
		t.Fatal("fragment positions share an id")
	}
	info := cs.FragmentOf(f1)
	if info == nil || info.NgramID != ng || info.Pos != 1 || info.Total != 2 {
		t.Errorf("fragment info = %+v, want base %d pos 1 of 2", info, ng)
	}
	if cs.FragmentOf(cs.IDOf("m")) != nil {
		t.Error("plain char reported as fragment")
	}
}

func TestIDsOfStringRoundTrip(t *testing.T) {
	cs := FromString("cart")
	ids, ok := cs.IDsOfString("cart")
	if !ok || len(ids) != 4 {
		t.Fatalf("IDsOfString failed: %v %v", ids, ok)
	}
	if got := cs.StringOfIDs(ids); got != "cart" {
		t.Errorf("round trip = %q, want 'cart'", got)
	}
	if _, ok := cs.IDsOfString("cash"); ok {
		t.Error("unregistered rune should fail the mapping")
	}
}
