package fts

// Synonyms holds the canonical bidirectional lexical equivalences
// applied transparently by the index (see GLOSSARY's synonym set).
// Each inner slice is one equivalence class; every member is treated
// as interchangeable with every other member.
var Synonyms = [][]string{
	{"js", "javascript"},
	{"ts", "typescript"},
	{"py", "python"},
	{"rb", "ruby"},
	{"cpp", "c++"},
	{"go", "golang"},
	{"pg", "postgresql", "postgres"},
	{"mongo", "mongodb"},
	{"k8s", "kubernetes"},
	{"wasm", "webassembly"},
	{"ml", "machine learning"},
	{"ai", "artificial intelligence"},
	{"os", "operating system"},
	{"db", "database"},
	{"api", "application programming interface"},
	{"cli", "command line interface"},
	{"ui", "user interface"},
	{"ux", "user experience"},
	{"oop", "object oriented programming"},
	{"fp", "functional programming"},
	{"docs", "documentation"},
	{"config", "configuration"},
	{"auth", "authentication"},
	{"env", "environment"},
	{"repo", "repository"},
	{"lib", "library"},
	{"pkg", "package"},
	{"deps", "dependencies"},
	{"dev", "development"},
	{"prod", "production"},
	{"impl", "implementation"},
	{"fn", "function"},
	{"var", "variable"},
	{"arg", "argument"},
	{"param", "parameter"},
	{"err", "error"},
	{"msg", "message"},
	{"async", "asynchronous"},
	{"sync", "synchronous"},
}

// synonymIndex maps every term to the full equivalence class it
// belongs to, built once at package init.
var synonymIndex = buildSynonymIndex()

func buildSynonymIndex() map[string][]string {
	idx := make(map[string][]string)

	for _, class := range Synonyms {
		for _, term := range class {
			idx[term] = class
		}
	}

	return idx
}

// expandSynonyms returns terms plus every synonym of every term, for
// use by adapters (like MemoryIndex) that do not delegate synonym
// expansion to an external engine.
func expandSynonyms(terms []string) []string {
	seen := make(map[string]bool, len(terms))

	var expanded []string

	for _, t := range terms {
		if !seen[t] {
			seen[t] = true

			expanded = append(expanded, t)
		}

		for _, syn := range synonymIndex[t] {
			if !seen[syn] {
				seen[syn] = true

				expanded = append(expanded, syn)
			}
		}
	}

	return expanded
}
