package ambig

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/typefrag/glyphseg/pkg/charset"
)

// LoadOptions control table construction.
type LoadOptions struct {
	// UseDefiniteAmbigsForClassifier populates the 1->1 definite side
	// table consumed by the classifier-facing layer.
	UseDefiniteAmbigsForClassifier bool
}

// Load parses a line-oriented ambiguity rule file and builds the table.
//
// The file may start with a version marker line `v<N>`. Each following line
// holds: the wrong-ngram token count, the tokens, the replacement token
// count, the tokens, and (version > 0 only) an integer type code. Tokens are
// separated by tabs or spaces. Malformed lines are skipped with a warning;
// nothing in the file is fatal.
//
// Replacement ngrams and, for multi-token wrong ngrams, per-position
// fragment placeholders are registered into the charset before the rule is
// added, so every id a returned rule references is valid.
func Load(r io.Reader, cs *charset.Charset, opts LoadOptions) (*Table, error) {
	table := NewTable()
	scanner := bufio.NewScanner(r)

	version := 0
	lineNum := 0
	first := true
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		lineNum++
		if first {
			first = false
			if strings.HasPrefix(line, "v") {
				v, err := strconv.Atoi(line[1:])
				if err == nil {
					version = v
					continue
				}
			}
		}
		if line == "" {
			continue
		}
		wrong, replacement, declared, ok := parseLine(lineNum, version, line, cs)
		if !ok {
			continue
		}
		spec := buildSpec(cs, wrong, replacement, declared)
		table.insert(spec)

		if opts.UseDefiniteAmbigsForClassifier &&
			len(wrong) == 1 && len(replacement) == 1 && spec.Type == DefiniteAmbig {
			table.oneToOneDefinite[wrong[0]] = append(
				table.oneToOneDefinite[wrong[0]], spec.CorrectNgramID)
		}
	}
	if err := scanner.Err(); err != nil {
		return table, fmt.Errorf("reading ambiguity rules: %w", err)
	}
	return table, nil
}

// LoadFile is Load over a file path.
func LoadFile(path string, cs *charset.Charset, opts LoadOptions) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening ambiguity file %s: %w", path, err)
	}
	defer f.Close()
	return Load(f, cs, opts)
}

// parseLine splits one rule line into wrong ids, replacement tokens and the
// declared type. ok is false when the line is malformed; the caller skips it.
func parseLine(lineNum, version int, line string, cs *charset.Charset) (wrong []charset.CharID, replacement []string, declared Type, ok bool) {
	fields := strings.Fields(line)
	bad := func(format string, args ...any) (_ []charset.CharID, _ []string, _ Type, _ bool) {
		log.Warnf("ambiguity rule line %d: "+format+", skipping", append([]any{lineNum}, args...)...)
		return
	}

	idx := 0
	next := func() (string, bool) {
		if idx >= len(fields) {
			return "", false
		}
		f := fields[idx]
		idx++
		return f, true
	}

	tok, haveTok := next()
	if !haveTok {
		return bad("empty rule")
	}
	wrongCount, err := strconv.Atoi(tok)
	if err != nil || wrongCount <= 0 {
		return bad("bad wrong-ngram count %q", tok)
	}
	if wrongCount > MaxAmbigSize {
		return bad("wrong ngram too long (%d > %d)", wrongCount, MaxAmbigSize)
	}
	for i := 0; i < wrongCount; i++ {
		tok, haveTok = next()
		if !haveTok {
			return bad("truncated wrong ngram")
		}
		if !cs.Contains(tok) {
			return bad("unknown character %q in wrong ngram", tok)
		}
		wrong = append(wrong, cs.IDOf(tok))
	}

	tok, haveTok = next()
	if !haveTok {
		return bad("missing replacement count")
	}
	replCount, err := strconv.Atoi(tok)
	if err != nil || replCount <= 0 {
		return bad("bad replacement count %q", tok)
	}
	if replCount > MaxAmbigSize {
		return bad("replacement ngram too long (%d > %d)", replCount, MaxAmbigSize)
	}
	for i := 0; i < replCount; i++ {
		tok, haveTok = next()
		if !haveTok {
			return bad("truncated replacement ngram")
		}
		replacement = append(replacement, tok)
	}

	declared = NotAmbig
	if version > 0 {
		tok, haveTok = next()
		if !haveTok {
			return bad("missing type code")
		}
		code, err := strconv.Atoi(tok)
		if err != nil || code < int(NotAmbig) || code > int(CaseAmbig) {
			return bad("bad type code %q", tok)
		}
		declared = Type(code)
	}
	return wrong, replacement, declared, true
}

// buildSpec registers the replacement ngram and its fragment placeholders in
// the charset and resolves the rule into a Spec. A 1->1 rule whose sides
// share a lower-case mapping is forced to CaseAmbig regardless of the
// declared type.
func buildSpec(cs *charset.Charset, wrong []charset.CharID, replacement []string, declared Type) *Spec {
	replString := strings.Join(replacement, "")

	spec := &Spec{
		WrongNgram: wrong,
		Type:       declared,
	}

	// The base ngram must be registered before any of its fragments.
	spec.CorrectNgramID = cs.Register(replString)
	if len(replacement) > 1 {
		cs.SetIsNgram(spec.CorrectNgramID, true)
	}

	if len(wrong) == 1 && len(replacement) == 1 &&
		cs.ToLower(wrong[0]) == cs.ToLower(spec.CorrectNgramID) {
		spec.Type = CaseAmbig
	}

	spec.CorrectFragments = make([]charset.CharID, len(wrong))
	for i := range wrong {
		if len(wrong) == 1 {
			spec.CorrectFragments[i] = spec.CorrectNgramID
		} else {
			spec.CorrectFragments[i] = cs.RegisterFragment(replString, i, len(wrong))
		}
	}
	return spec
}
