package match

import "testing"

func TestExpand_CanonicalPullsSynonyms(t *testing.T) {
	got := Expand([]string{"hello"})

	for _, want := range []string{"hello", "hi", "hey", "greetings", "namaste", "hola"} {
		if _, ok := got[want]; !ok {
			t.Errorf("Expand({hello}) missing %q", want)
		}
	}
}

func TestExpand_Symmetric(t *testing.T) {
	// "hi" is a synonym of "hello": expanding it must pull in the canonical
	// key and every sibling synonym.
	got := Expand([]string{"hi"})

	for _, want := range []string{"hi", "hello", "hey", "greetings", "namaste", "hola"} {
		if _, ok := got[want]; !ok {
			t.Errorf("Expand({hi}) missing %q", want)
		}
	}
}

func TestExpand_UnknownTokenPassesThrough(t *testing.T) {
	got := Expand([]string{"zebra"})
	if len(got) != 1 {
		t.Errorf("Expand({zebra}) = %v, want only the input token", got)
	}
	if _, ok := got["zebra"]; !ok {
		t.Error("Expand({zebra}) missing the input token")
	}
}

func TestExpand_Empty(t *testing.T) {
	if got := Expand(nil); len(got) != 0 {
		t.Errorf("Expand(nil) = %v, want empty set", got)
	}
}
