package analysis

// Stopwords excluded from frequency analysis: short German and English
// function words that dominate transaction descriptions without
// carrying any tagging signal. Stored uppercase because tokens are
// uppercased before the lookup.
var stopwords = map[string]struct{}{
	// German
	"UND": {}, "FÜR": {}, "FUR": {}, "VON": {}, "DER": {}, "DIE": {},
	"MIT": {}, "AUF": {}, "IM": {}, "AM": {}, "DEN": {}, "EIN": {},
	"EINE": {}, "DES": {}, "IN": {}, "AN": {},
	// English
	"AND": {}, "THE": {}, "TO": {}, "FOR": {}, "OF": {}, "AT": {},
	"ON": {}, "BY": {}, "MY": {}, "PAY": {},
}

// IsStopword reports whether the (already uppercased) token is in the
// fixed stopword set.
func IsStopword(token string) bool {
	_, ok := stopwords[token]
	return ok
}
