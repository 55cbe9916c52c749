package query

import (
	"strings"

	"github.com/Uththunga/Ethos-Prompt-sub003/text"
)

// DefaultMaxExpansionTerms bounds how many related terms an expansion may add
// to a query. Keeping this small avoids topic drift in the keyword index.
const DefaultMaxExpansionTerms = 4

// Lexicon maps a term to its related terms for query expansion.
type Lexicon map[string][]string

// defaultLexicon covers common technical-documentation vocabulary.
var defaultLexicon = Lexicon{
	"error":      {"failure", "fault", "exception"},
	"bug":        {"defect", "error", "issue"},
	"fix":        {"repair", "patch", "resolve"},
	"delete":     {"remove", "erase", "purge"},
	"create":     {"add", "make", "new"},
	"update":     {"modify", "change", "edit"},
	"config":     {"configuration", "settings", "setup"},
	"configure":  {"setup", "settings", "config"},
	"install":    {"setup", "deploy"},
	"start":      {"launch", "run", "begin"},
	"stop":       {"halt", "terminate", "shutdown"},
	"fast":       {"quick", "performant", "speedy"},
	"slow":       {"latency", "sluggish", "performance"},
	"search":     {"query", "find", "lookup"},
	"query":      {"search", "request"},
	"document":   {"file", "record", "page"},
	"user":       {"account", "member"},
	"login":      {"authentication", "signin", "auth"},
	"auth":       {"authentication", "authorization", "login"},
	"permission": {"access", "authorization", "privilege"},
	"database":   {"storage", "datastore", "db"},
	"server":     {"host", "backend", "service"},
	"api":        {"endpoint", "interface", "service"},
	"cost":       {"price", "billing", "pricing"},
	"guide":      {"tutorial", "howto", "walkthrough"},
	"example":    {"sample", "demo", "snippet"},
	"version":    {"release", "revision"},
	"upgrade":    {"update", "migrate", "migration"},
	"test":       {"verify", "check", "validate"},
	"deploy":     {"release", "ship", "rollout"},
	"memory":     {"ram", "allocation", "heap"},
	"crash":      {"panic", "abort", "failure"},
	"limit":      {"quota", "cap", "threshold"},
	"secure":     {"security", "safety", "hardening"},
	"backup":     {"snapshot", "restore", "archive"},
}

// Expander adds related terms from a lexicon to a query, bounded to avoid
// topic drift.
type Expander struct {
	lexicon  Lexicon
	maxTerms int
}

// NewExpander builds an expander over a lexicon. A nil lexicon uses the
// built-in one; maxTerms below 1 uses DefaultMaxExpansionTerms.
func NewExpander(lexicon Lexicon, maxTerms int) *Expander {
	if lexicon == nil {
		lexicon = defaultLexicon
	}
	if maxTerms < 1 {
		maxTerms = DefaultMaxExpansionTerms
	}
	return &Expander{lexicon: lexicon, maxTerms: maxTerms}
}

// Expand returns up to maxTerms related terms for the query, in query token
// order, skipping terms already present in the query.
func (e *Expander) Expand(queryText string) []string {
	present := make(map[string]struct{})
	for _, tok := range strings.Fields(strings.ToLower(queryText)) {
		present[strings.Trim(tok, ".,!?;:'\"-()[]{}")] = struct{}{}
	}

	var expansion []string
	for _, tok := range text.Tokenize(queryText) {
		for _, related := range e.lexicon[tok] {
			if _, ok := present[related]; ok {
				continue
			}
			present[related] = struct{}{}
			expansion = append(expansion, related)
			if len(expansion) >= e.maxTerms {
				return expansion
			}
		}
	}
	return expansion
}
