package sig

import (
	"fmt"
	"strconv"
	"strings"
)

// Extracted holds the two self-contained script fragments and metadata
// pulled out of one player release.
type Extracted struct {
	NsigCode           string
	SigCode            string
	SigName            string
	SignatureTimestamp uint64
}

// Extract locates the nsig transform, the sig transform and the signature
// timestamp inside a player's JavaScript source. A missing sig function is
// not fatal: SigCode and SigName are left empty, signalling to callers that
// the sig value should be passed through unchanged. A missing nsig function
// is fatal, since there is no passthrough equivalent for throttling removal.
func Extract(playerJS string) (Extracted, error) {
	nsigCode, err := extractNsig(playerJS)
	if err != nil {
		return Extracted{}, err
	}

	sigCode, sigName := extractSig(playerJS)

	ts, err := extractSignatureTimestamp(playerJS)
	if err != nil {
		return Extracted{}, err
	}

	return Extracted{
		NsigCode:           nsigCode,
		SigCode:            sigCode,
		SigName:            sigName,
		SignatureTimestamp: ts,
	}, nil
}

func extractSignatureTimestamp(playerJS string) (uint64, error) {
	m := signatureTimestampPattern.FindStringSubmatch(playerJS)
	if m == nil {
		return 0, NewError(ErrCodeNsigRegexFailed, "signatureTimestamp not found in player source")
	}
	ts, err := strconv.ParseUint(m[1], 10, 64)
	if err != nil {
		return 0, NewError(ErrCodeNsigRegexFailed, "signatureTimestamp not numeric", m[1])
	}
	return ts, nil
}

// extractGlobalVar returns the auxiliary array declaration some player
// releases require nsig/sig bodies to see, and the name it is bound to. An
// empty name means none was present, which is a normal, common case.
func extractGlobalVar(playerJS string) (name, decl string) {
	m := globalVarPattern.FindStringSubmatch(playerJS)
	if m == nil {
		return "", ""
	}
	return m[globalVarPattern.SubexpIndex("name")], m[0]
}

func extractNsig(playerJS string) (string, error) {
	var arrayName, idxStr string
	for _, pat := range nsigFunctionNamePatterns {
		m := pat.FindStringSubmatch(playerJS)
		if m == nil {
			continue
		}
		arrayName = m[pat.SubexpIndex("nfunc")]
		idxStr = m[pat.SubexpIndex("idx")]
		break
	}
	if arrayName == "" {
		return "", NewError(ErrCodeNsigRegexFailed, "no nsig call-site pattern matched")
	}
	idx, err := strconv.Atoi(idxStr)
	if err != nil {
		return "", NewError(ErrCodeNsigRegexFailed, "nsig array index not numeric", idxStr)
	}

	funcName, err := resolveArrayElement(playerJS, arrayName, idx)
	if err != nil {
		return "", err
	}

	var body string
	for _, pat := range nsigFunctionEndingPatterns(funcName) {
		if m := pat.FindString(playerJS); m != "" {
			body = m
			break
		}
	}
	if body == "" {
		// Fall back to brace-balanced extraction, which tolerates closing
		// idioms the fixed endings above don't anticipate.
		var err error
		body, err = extractFunctionByAssignment(playerJS, funcName)
		if err != nil {
			return "", NewError(ErrCodeNsigRegexFailed, "nsig function body not found", funcName)
		}
	}

	globalVarName, globalVarDecl := extractGlobalVar(playerJS)
	body = fixupNsigBody(body, globalVarName)

	var sb strings.Builder
	if globalVarDecl != "" {
		sb.WriteString(globalVarDecl)
		sb.WriteString("\n")
	}
	sb.WriteString(body)
	sb.WriteString("\nfunction decrypt_nsig(n){return ")
	sb.WriteString(funcName)
	sb.WriteString("(n);}")
	return sb.String(), nil
}

// fixupNsigBody strips the player-inserted early-return guard that refuses
// to run outside the player's own global scope, so the body can be
// evaluated standalone.
func fixupNsigBody(body, globalVarName string) string {
	for _, pat := range nsigGuardPatterns(globalVarName) {
		body = pat.ReplaceAllString(body, ";")
	}
	return body
}

func extractSig(playerJS string) (sigCode, sigName string) {
	var name string
	for _, pat := range sigFunctionNamePatterns {
		m := pat.FindStringSubmatch(playerJS)
		if m == nil {
			continue
		}
		name = m[pat.SubexpIndex("name")]
		break
	}
	if name == "" {
		// No sig function could be located; passthrough is handled by the
		// caller when SigName is empty.
		return "", ""
	}

	funcBody, err := extractFunctionByAssignment(playerJS, name)
	if err != nil {
		return "", ""
	}

	objName := ""
	if m := helperObjNamePattern.FindStringSubmatch(funcBody); m != nil {
		objName = m[helperObjNamePattern.SubexpIndex("obj")]
	}

	var helperObj string
	if objName != "" {
		helperObj = extractBraceBalancedLiteral(playerJS, "var "+objName+"=")
	}

	_, globalVarDecl := extractGlobalVar(playerJS)

	var sb strings.Builder
	sb.WriteString("var ")
	sb.WriteString(name)
	sb.WriteString(";")
	if globalVarDecl != "" {
		sb.WriteString(globalVarDecl)
	}
	if helperObj != "" {
		sb.WriteString(helperObj)
	}
	sb.WriteString(funcBody)

	return sb.String(), name
}

// resolveArrayElement extracts `var <name>=[...]` and returns the element
// at idx after splitting on top-level commas.
func resolveArrayElement(playerJS, name string, idx int) (string, error) {
	needle := "var " + name + "=["
	start := strings.Index(playerJS, needle)
	if start < 0 {
		return "", NewError(ErrCodeNsigRegexFailed, "array literal not found", name)
	}
	openBracket := start + len("var "+name+"=")
	end := matchingBracket(playerJS, openBracket, '[', ']')
	if end < 0 {
		return "", NewError(ErrCodeNsigRegexFailed, "array literal unterminated", name)
	}
	inner := playerJS[openBracket+1 : end]
	elems := strings.Split(inner, ",")
	if idx < 0 || idx >= len(elems) {
		return "", NewError(ErrCodeNsigRegexFailed, "array index out of range", fmt.Sprintf("%s[%d] len=%d", name, idx, len(elems)))
	}
	return strings.TrimSpace(elems[idx]), nil
}

// matchingBracket returns the index of the bracket that closes the one at
// openPos, honoring string-literal state so that brackets inside string
// contents are not mistaken for structural brackets.
func matchingBracket(src string, openPos int, open, close byte) int {
	depth := 0
	var strCh byte
	for i := openPos; i < len(src); i++ {
		b := src[i]
		switch {
		case strCh != 0:
			if b == strCh && (i == 0 || src[i-1] != '\\') {
				strCh = 0
			}
		case b == '"' || b == '\'' || b == '`':
			strCh = b
		case b == open:
			depth++
		case b == close:
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// extractFunctionByAssignment finds `name=function(...)` or
// `name = function(...)` or `function name(...)` and returns its full
// `(args){body}` text by scanning brace depth, tracking string-literal
// state so braces inside string or template literals are skipped.
func extractFunctionByAssignment(src, name string) (string, error) {
	candidates := []string{
		name + "=function(",
		name + " = function(",
		"function " + name + "(",
	}
	start := -1
	for _, c := range candidates {
		// Skip matches that are the tail of a longer identifier, e.g.
		// "sigFunc=function(" inside "nsigFunc=function(".
		for from := 0; start < 0; {
			idx := strings.Index(src[from:], c)
			if idx < 0 {
				break
			}
			idx += from
			if idx > 0 {
				if p := src[idx-1]; p == '_' || p == '$' || p >= '0' && p <= '9' || p >= 'a' && p <= 'z' || p >= 'A' && p <= 'Z' {
					from = idx + 1
					continue
				}
			}
			start = idx
		}
		if start >= 0 {
			break
		}
	}
	if start < 0 {
		return "", fmt.Errorf("function %s not found", name)
	}

	braceStart := strings.IndexByte(src[start:], '{')
	if braceStart < 0 {
		return "", fmt.Errorf("function %s has no body", name)
	}
	braceStart += start

	end := matchingBracket(src, braceStart, '{', '}')
	if end < 0 {
		return "", fmt.Errorf("function %s body unterminated", name)
	}
	return src[start : end+1], nil
}

// extractBraceBalancedLiteral finds `prefix{...}` (prefix already including
// the trailing `=`) and returns the whole `prefix{...};` text, brace
// depth balanced the same way as extractFunctionByAssignment.
func extractBraceBalancedLiteral(src, prefix string) string {
	start := strings.Index(src, prefix)
	if start < 0 {
		return ""
	}
	braceStart := strings.IndexByte(src[start:], '{')
	if braceStart < 0 {
		return ""
	}
	braceStart += start
	end := matchingBracket(src, braceStart, '{', '}')
	if end < 0 {
		return ""
	}
	tail := end + 1
	if tail < len(src) && src[tail] == ';' {
		tail++
	}
	return src[start:tail]
}
