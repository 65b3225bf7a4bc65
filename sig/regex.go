package sig

import "regexp"

// Pattern tables are ordered newest-player-shape-first; the extractor tries
// each in turn and stops at the first match. Older entries are kept so the
// daemon keeps working against cached or downgraded players. New shapes are
// added at the front, not appended.

// playerIDPattern pulls the 8 hex digit player id out of a landing page's
// reference to its player asset path.
var playerIDPattern = regexp.MustCompile(`/s/player/([0-9a-f]{8})/`)

// signatureTimestampPattern finds the player's signatureTimestamp constant,
// used to mark which player release a signed URL was generated against.
var signatureTimestampPattern = regexp.MustCompile(`signatureTimestamp[=:](\d+)`)

// globalVarPattern matches the player's top-of-file auxiliary array that
// some nsig/sig bodies reference by name, e.g.
// 'use strict';var ABC="xyz".split("");...  or  var ABC=["a","b","c"];
var globalVarPattern = regexp.MustCompile(`'use strict';\s*var (?P<name>[a-zA-Z0-9_$]+)\s*=\s*(?P<value>(?:"[^"]*"\.split\("[^"]*"\)|\[(?:[^\[\]]|\[[^\[\]]*\])*\]));`)

// nsigFunctionNamePatterns capture (array_name, index) at the nsig call
// site; the real function identifier is found by indexing the named array.
var nsigFunctionNamePatterns = []*regexp.Regexp{
	// newest shape: b=String.fromCharCode(110),c=a.get(b))&&(c=ARR[IDX](c))
	regexp.MustCompile(`b=String\.fromCharCode\(110\),c=a\.get\(b\)\)&&\(c=(?P<nfunc>[a-zA-Z0-9$]+)\[(?P<idx>\d+)\]\(c\)`),
	// a.get("n"))&&(b=ARR[IDX](b)
	regexp.MustCompile(`a\.get\("n"\)\)&&\(b=(?P<nfunc>[a-zA-Z0-9$]+)\[(?P<idx>\d+)\]\(b\)`),
	// looser spacing variant of the above
	regexp.MustCompile(`\.get\("n"\)\s*\)\s*&&\s*\(\s*b\s*=\s*(?P<nfunc>[a-zA-Z0-9$]+)\s*\[\s*(?P<idx>\d+)\s*\]\s*\(\s*b\s*\)`),
}

// nsigFunctionEndingPatterns extract the full nsig function body once its
// name is known; each targets a distinct closing-statement idiom.
func nsigFunctionEndingPatterns(name string) []*regexp.Regexp {
	quoted := regexp.QuoteMeta(name)
	return []*regexp.Regexp{
		regexp.MustCompile(`(?s)` + quoted + `=function\([a-zA-Z0-9_$]+\)\{.+?return\s*[a-zA-Z0-9_$.]+\.join\(""\)\}`),
		regexp.MustCompile(`(?s)` + quoted + `=function\([a-zA-Z0-9_$]+\)\{.+?return\s*[a-zA-Z0-9_$.]+\.call\([a-zA-Z0-9_$.]+,""\)\}`),
		regexp.MustCompile(`(?s)` + quoted + `=function\([a-zA-Z0-9_$]+\)\{.+?\}`),
	}
}

// sigFunctionNamePatterns capture the identifier of the function applied to
// a URL-decoded sig value.
var sigFunctionNamePatterns = []*regexp.Regexp{
	regexp.MustCompile(`\bc&&\(c=(?P<name>[a-zA-Z0-9$]{2,})\(decodeURIComponent\(c\)\)`),
	regexp.MustCompile(`(?P<name>[a-zA-Z0-9$]{2,})=function\(a\)\{a=a\.split\(""\);.+?return a\.join\(""\)\}`),
	regexp.MustCompile(`(?P<name>[a-zA-Z0-9$]{2,})=function\(a\)\{a=a\.split\(""\)`),
}

// helperObjNamePattern finds the helper object a sig function body invokes
// its reverse/splice/swap operations on.
var helperObjNamePattern = regexp.MustCompile(`;(?P<obj>[A-Za-z0-9_$]{2,})\.[a-zA-Z0-9$]+\(`)

// nsigGuardPatterns match the player-inserted guard some nsig bodies carry
// that refuses to run outside the player's own global scope. Two variants:
// a direct undefined check, and (when a global var name is known) a
// comparison against one of its elements.
func nsigGuardPatterns(globalVarName string) []*regexp.Regexp {
	pats := []*regexp.Regexp{
		regexp.MustCompile(`;\s*if\s*\(typeof\s+[a-zA-Z0-9_$]+\s*===?\s*"undefined"\)\s*return\s+[a-zA-Z0-9_$]+;`),
	}
	if globalVarName != "" {
		quoted := regexp.QuoteMeta(globalVarName)
		pats = append(pats, regexp.MustCompile(`;\s*if\s*\([a-zA-Z0-9_$]+\s*===?\s*`+quoted+`\[\d+\]\)\s*return\s+[a-zA-Z0-9_$]+;`))
	}
	return pats
}
