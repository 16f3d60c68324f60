// Package domain contains the core domain types for the word translator.
package domain

// TransReq asks for content to be translated between two languages.
type TransReq struct {
	Content string `json:"content" yaml:"content"`
	From    string `json:"from" yaml:"from"`
	To      string `json:"to" yaml:"to"`
}

// NewTransReq builds a translate request.
func NewTransReq(content, from, to string) TransReq {
	return TransReq{Content: content, From: from, To: to}
}

// TransResponse is the result of a resolvable translate request.
// When AbleToTranslate is false, Content echoes the original input.
type TransResponse struct {
	Content         string `json:"content"`
	AbleToTranslate bool   `json:"able_to_translate"`
}

// TransErr is returned when a translate request cannot be resolved at all,
// e.g. because one of its languages is unknown.
type TransErr struct {
	Content string `json:"content"`
}

// JsonErr reports a payload that could not be decoded.
//
//nolint:revive // wire name
type JsonErr struct {
	Content string `json:"content"`
}

// NewTransReq asks for a word and its meanings to be registered.
type NewTransReq struct {
	FromLang string   `json:"from_lang" yaml:"from_lang"`
	ToLang   string   `json:"to_lang" yaml:"to_lang"`
	Word     string   `json:"word" yaml:"word"`
	Meanings []string `json:"meanings" yaml:"meanings"`
}

// NewRegistration builds a registration request.
func NewRegistration(from, to, word string, meanings ...string) NewTransReq {
	return NewTransReq{FromLang: from, ToLang: to, Word: word, Meanings: meanings}
}

// NewTransErr is returned when a registration is rejected.
type NewTransErr struct {
	Content string `json:"content"`
}

// WordToOtherLang is one rendering of a word in the destination language Lang.
type WordToOtherLang struct {
	Lang        string `json:"lang" yaml:"lang"`
	SymbolChain string `json:"symbol_chain" yaml:"symbol_chain"`
}

// TransWord is a dictionary entry: the canonical spelling of a word in its
// owning language plus its meanings in other languages.
type TransWord struct {
	SymbolChain string            `json:"symbol_chain" yaml:"symbol_chain"`
	Meanings    []WordToOtherLang `json:"meanings" yaml:"meanings"`
}

// NewTransWord builds a word whose meanings all belong to lang.
func NewTransWord(word, lang string, meanings ...string) TransWord {
	w := TransWord{SymbolChain: word, Meanings: make([]WordToOtherLang, 0, len(meanings))}
	for _, m := range meanings {
		w.Meanings = append(w.Meanings, WordToOtherLang{Lang: lang, SymbolChain: m})
	}
	return w
}

// Language is a dictionary language. Each rune of UnitSplitSymbols and
// AllowedSymbols is one member of the respective set.
type Language struct {
	ID               string      `json:"id" yaml:"id"`
	Label            string      `json:"label" yaml:"label"`
	UnitSplitSymbols string      `json:"unit_split_symbols" yaml:"unit_split_symbols"`
	AllowedSymbols   string      `json:"allowed_symbols" yaml:"allowed_symbols"`
	Words            []TransWord `json:"words,omitempty" yaml:"words,omitempty"`
}

// ExampleTransReq returns the canonical translate payload shown in usage output.
func ExampleTransReq() TransReq {
	return NewTransReq("content to translate", "en", "elb")
}

// ExampleNewTransReq returns the canonical registration payload shown in usage output.
func ExampleNewTransReq() NewTransReq {
	return NewRegistration("en", "elb", "helllo", "something")
}
