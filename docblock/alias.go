package docblock

import (
	"maps"
	"slices"
	"strings"
)

// DefaultNamespace is the namespace searched for unaliased tag names.
const DefaultNamespace = `OpenApi\Annotations\`

// AliasTable maps short names to fully-qualified identifiers and holds the
// ordered list of namespaces searched for bare names.
//
// A table is mutated only between parses; concurrent readers are safe.
// Create instances with [NewAliasTable].
type AliasTable struct {
	aliases    map[string]string
	namespaces []string
}

// NewAliasTable returns a table seeded with the default alias ("oa") and
// namespace.
func NewAliasTable() *AliasTable {
	return &AliasTable{
		aliases:    map[string]string{"oa": strings.TrimSuffix(DefaultNamespace, `\`)},
		namespaces: []string{DefaultNamespace},
	}
}

// AddAlias maps name to the fully-qualified identifier fq. A later call with
// the same name replaces the earlier mapping.
func (a *AliasTable) AddAlias(name, fq string) {
	a.aliases[name] = strings.TrimPrefix(fq, `\`)
}

// AddNamespace appends a namespace prefix to the search order.
func (a *AliasTable) AddNamespace(prefix string) {
	if slices.Contains(a.namespaces, prefix) {
		return
	}

	a.namespaces = append(a.namespaces, prefix)
}

// Aliases returns a copy of the alias mapping.
func (a *AliasTable) Aliases() map[string]string {
	return maps.Clone(a.aliases)
}

// Namespaces returns a copy of the namespaces in registration order.
func (a *AliasTable) Namespaces() []string {
	return slices.Clone(a.namespaces)
}

// Clone returns an independent copy of the table.
func (a *AliasTable) Clone() *AliasTable {
	return &AliasTable{
		aliases:    maps.Clone(a.aliases),
		namespaces: slices.Clone(a.namespaces),
	}
}

// With returns a copy of the table extended with extra aliases. The receiver
// is returned unchanged when extra is empty.
func (a *AliasTable) With(extra map[string]string) *AliasTable {
	if len(extra) == 0 {
		return a
	}

	out := a.Clone()
	for _, name := range slices.Sorted(maps.Keys(extra)) {
		out.AddAlias(name, extra[name])
	}

	return out
}

// Resolve returns the fully-qualified identifier for a tag name, asking known
// whether each candidate exists. Candidates are tried in order:
//
//  1. a name starting with `\` is already fully qualified;
//  2. the whole name as an alias;
//  3. the first segment as an alias prefix (oa\Get);
//  4. the name inside each namespace, in registration order;
//  5. the name as written.
func (a *AliasTable) Resolve(name string, known func(string) bool) (string, bool) {
	for _, candidate := range a.candidates(name) {
		if known(candidate) {
			return candidate, true
		}
	}

	return "", false
}

// ResolveType expands an identifier used in a constant reference. Only
// aliases apply; namespaces are not searched.
func (a *AliasTable) ResolveType(name string) string {
	if strings.HasPrefix(name, `\`) {
		return name[1:]
	}

	if fq, ok := a.lookup(name); ok {
		return fq
	}

	head, rest, found := strings.Cut(name, `\`)
	if found {
		if fq, ok := a.lookup(head); ok {
			return fq + `\` + rest
		}
	}

	return name
}

func (a *AliasTable) candidates(name string) []string {
	if strings.HasPrefix(name, `\`) {
		return []string{name[1:]}
	}

	var out []string

	if fq, ok := a.lookup(name); ok {
		out = append(out, fq)
	}

	if head, rest, found := strings.Cut(name, `\`); found {
		if fq, ok := a.lookup(head); ok {
			out = append(out, fq+`\`+rest)
		}
	}

	for _, ns := range a.namespaces {
		if !strings.HasSuffix(ns, `\`) {
			ns += `\`
		}

		out = append(out, strings.TrimPrefix(ns, `\`)+name)
	}

	return append(out, name)
}

// lookup finds an alias by exact key, falling back to a case-insensitive
// match so that the "oa" alias serves tags written as @OA\Name. Among several
// case-insensitive matches the lexically smallest key wins.
func (a *AliasTable) lookup(key string) (string, bool) {
	if fq, ok := a.aliases[key]; ok {
		return fq, true
	}

	for _, k := range slices.Sorted(maps.Keys(a.aliases)) {
		if strings.EqualFold(k, key) {
			return a.aliases[k], true
		}
	}

	return "", false
}
