package match

// synonyms maps a canonical term to its accepted alternatives. Fixed at
// build time; not user-editable.
var synonyms = map[string][]string{
	"hello":   {"hi", "hey", "greetings", "namaste", "hola"},
	"help":    {"assist", "support", "aid", "guide"},
	"thanks":  {"thank you", "thankyou", "appreciate", "dhanyavad"},
	"what":    {"kya", "which"},
	"who":     {"kaun", "whom"},
	"how":     {"kaise"},
	"why":     {"kyu", "kyun"},
	"when":    {"kab"},
	"where":   {"kahan", "kaha"},
	"good":    {"nice", "great", "excellent", "awesome"},
	"bad":     {"poor", "terrible", "awful"},
	"model":   {"modal", "ai", "bot", "assistant"},
	"creator": {"maker", "developer", "author", "banaya"},
	"name":    {"naam", "called"},
}

// canonicalOf is the reverse index (synonym -> canonical key), built once so
// expansion never scans the whole table.
var canonicalOf = func() map[string]string {
	idx := make(map[string]string)
	for key, syns := range synonyms {
		for _, s := range syns {
			idx[s] = key
		}
	}
	return idx
}()

// Expand returns the symmetric closure of the token set over the synonym
// table: a canonical key pulls in its synonyms, and a synonym pulls in its
// key plus every sibling synonym.
func Expand(toks []string) map[string]struct{} {
	out := make(map[string]struct{}, len(toks))
	addGroup := func(key string) {
		out[key] = struct{}{}
		for _, s := range synonyms[key] {
			out[s] = struct{}{}
		}
	}
	for _, tok := range toks {
		out[tok] = struct{}{}
		if _, ok := synonyms[tok]; ok {
			addGroup(tok)
		}
		if key, ok := canonicalOf[tok]; ok {
			addGroup(key)
		}
	}
	return out
}
