package classify

import (
	"fmt"
	"strings"

	"github.com/dusk-indust/typelens/internal/diag"
)

// wrapperCandidate is a nominal wrapper declaration awaiting pairing:
// Name = Wrap('Name', BaseType). Only the conventional shape where the
// assigned variable equals the produced type name is collected.
type wrapperCandidate struct {
	name     string // produced type name
	baseType string
	line     int
	rawText  string
}

// factoryCandidate is a function that may validate-and-produce a wrapper.
// For the create_<snake> shape, pairKey holds the snake name transformed to
// PascalCase; for the validated-factory shape it is the function name as
// declared (already matching case).
type factoryCandidate struct {
	funcName   string
	returnType string
	pairKey    string
	line       int
}

// resolvePairs upgrades wrappers with a matching factory to tier2. Pairing is
// exact and case-sensitive on the produced name; the first factory in source
// order wins. More than one candidate for the same wrapper records a
// pairing-ambiguity diagnostic without changing the outcome. Unmatched
// wrappers stay tier1.
func resolvePairs(file string, wrappers []wrapperCandidate, factories []factoryCandidate, diags *[]diag.Diagnostic) []Declaration {
	decls := make([]Declaration, 0, len(wrappers))
	for _, w := range wrappers {
		var matches []factoryCandidate
		for _, f := range factories {
			if f.pairKey == w.name && f.returnType == w.name {
				matches = append(matches, f)
			}
		}

		d := Declaration{
			Name:    w.name,
			File:    file,
			Line:    w.line,
			RawText: w.rawText,
		}
		if len(matches) > 0 {
			d.Tier = Tier2
			d.Category = CategoryWrapperWithFactory
		} else {
			d.Tier = Tier1
			d.Category = CategoryWrapperPlain
		}

		if len(matches) > 1 {
			names := make([]string, len(matches))
			for i, m := range matches {
				names[i] = fmt.Sprintf("%s (line %d)", m.funcName, m.line)
			}
			*diags = append(*diags, diag.Diagnostic{
				File:   file,
				Reason: diag.ReasonPairingAmbiguity,
				Detail: fmt.Sprintf("wrapper %s has %d factory candidates: %s; first in source order wins",
					w.name, len(matches), strings.Join(names, ", ")),
			})
		}

		decls = append(decls, d)
	}
	return decls
}

// snakeToPascal converts a snake_case factory suffix to PascalCase:
// "user_profile_id" becomes "UserProfileId". Only the first letter of each
// segment is upcased; the rest is left untouched, so "userid" becomes
// "Userid" and deliberately does not match a wrapper named "UserId".
func snakeToPascal(s string) string {
	parts := strings.Split(s, "_")
	var b strings.Builder
	for _, p := range parts {
		if p == "" {
			continue
		}
		b.WriteString(strings.ToUpper(p[:1]))
		b.WriteString(p[1:])
	}
	return b.String()
}
