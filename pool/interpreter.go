package pool

import "github.com/ytsig/sighelperd/sig"

// decryptNsigFuncName is the name the Extractor wraps every nsig program
// under, so the pool never needs to know the player's original identifier.
const decryptNsigFuncName = "decrypt_nsig"

// Interpreter is one pooled evaluator. sigContext and nsigContext are kept
// disjoint so the two routines never collide on global identifiers, even
// though a player's sig and nsig programs are evaluated by the same
// Interpreter.
type Interpreter struct {
	sigContext  scriptContext
	nsigContext scriptContext
}

func newInterpreter() *Interpreter {
	return &Interpreter{}
}

// DecryptNsig loads nsigCode into this Interpreter's nsig context if the
// cached program is for a different player, then evaluates decrypt_nsig(n).
func (in *Interpreter) DecryptNsig(id sig.PlayerID, nsigCode, n string) (string, error) {
	if err := in.nsigContext.ensureLoaded(id, nsigCode); err != nil {
		return "", err
	}
	return in.nsigContext.call(decryptNsigFuncName, n)
}

// DecryptSig loads sigCode into this Interpreter's sig context if the
// cached program is for a different player, then evaluates sigName(s).
// sigName is empty when the Extractor could not locate a sig function for
// the current player; callers should treat that as "return s unchanged"
// rather than calling DecryptSig.
func (in *Interpreter) DecryptSig(id sig.PlayerID, sigCode, sigName, s string) (string, error) {
	if err := in.sigContext.ensureLoaded(id, sigCode); err != nil {
		return "", err
	}
	return in.sigContext.call(sigName, s)
}
