// Package pattern compiles each named haplotype's resolved allele
// array into a compact position-allele pattern and tests which sample
// strand permutations it is consistent with. Patterns are evaluated by
// direct position-by-position string comparison; the regex-style
// literal form (Pattern.Literal) is an interchange convenience only.
package pattern

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/starallele/diplocaller/internal/matchdata"
)

// Pattern is a compiled NamedAllele: one allele (or the wildcard token)
// per gene position index.
type Pattern struct {
	Name    string
	alleles []string
}

// Compile builds a Pattern from a prepared ResolvedHaplotype. Every
// slot must already be concrete (a real allele, or matchdata.AnyAllele)
// — Compile does not itself resolve missing data.
func Compile(h matchdata.ResolvedHaplotype) *Pattern {
	alleles := make([]string, len(h.Alleles))
	copy(alleles, h.Alleles)
	return &Pattern{Name: h.Name, alleles: alleles}
}

// Matches reports whether the given strand string (a Permutation's
// StrandA or StrandB, "index:allele;index:allele...") is consistent
// with this pattern: every indexed allele in strand either equals the
// pattern's allele at that index, or the pattern's slot is the
// wildcard token.
func (p *Pattern) Matches(strand string) bool {
	if strand == "" {
		return true
	}
	for _, tok := range strings.Split(strand, ";") {
		idx, allele, ok := splitToken(tok)
		if !ok {
			return false
		}
		if idx < 0 || idx >= len(p.alleles) {
			return false
		}
		want := p.alleles[idx]
		if want == matchdata.AnyAllele {
			continue
		}
		if want != allele {
			return false
		}
	}
	return true
}

// Literal renders the regex-style interchange form of the pattern:
// "0:A;1:G;2:.?". Matching never parses this string; it exists purely
// as a diagnostic/debug artifact.
func (p *Pattern) Literal() string {
	parts := make([]string, len(p.alleles))
	for i, a := range p.alleles {
		parts[i] = fmt.Sprintf("%d:%s", i, a)
	}
	return strings.Join(parts, ";")
}

// AlleleAt returns the compiled allele (or the wildcard token) at a
// gene position index.
func (p *Pattern) AlleleAt(i int) string {
	if i < 0 || i >= len(p.alleles) {
		return ""
	}
	return p.alleles[i]
}

func splitToken(tok string) (idx int, allele string, ok bool) {
	i := strings.IndexByte(tok, ':')
	if i < 0 {
		return 0, "", false
	}
	n, err := strconv.Atoi(tok[:i])
	if err != nil {
		return 0, "", false
	}
	return n, tok[i+1:], true
}

// Matcher compiles every resolved haplotype in a MatchData once and
// finds which sample permutations each is consistent with.
type Matcher struct {
	patterns []*Pattern
}

// NewMatcher compiles patterns for every haplotype retained in md.
func NewMatcher(md *matchdata.MatchData) *Matcher {
	patterns := make([]*Pattern, len(md.Haplotypes))
	for i, h := range md.Haplotypes {
		patterns[i] = Compile(h)
	}
	return &Matcher{patterns: patterns}
}

// Patterns returns the compiled patterns, in the haplotype order of
// the MatchData they were built from.
func (m *Matcher) Patterns() []*Pattern {
	return m.patterns
}

// ConsistentStrands returns the set of distinct strand strings (drawn
// from perms' StrandA/StrandB) that p is consistent with.
func ConsistentStrands(p *Pattern, perms []matchdata.Permutation) []string {
	seen := make(map[string]bool)
	var out []string
	for _, perm := range perms {
		for _, strand := range []string{perm.StrandA, perm.StrandB} {
			if seen[strand] {
				continue
			}
			if p.Matches(strand) {
				seen[strand] = true
				out = append(out, strand)
			}
		}
	}
	return out
}
