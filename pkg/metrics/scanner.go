package metrics

import (
	"strings"
	"unicode"

	"github.com/maikgreubel/sourcetree/pkg/lang"
)

// Counts holds the per-file results of a scan.
type Counts struct {
	Lines      int
	Blank      int
	Comment    int
	Complexity int
}

// Scan tokenizes text in a single left-to-right pass and returns line,
// blank and comment counts plus a complexity score.
//
// Complexity is a lexical heuristic, not formal cyclomatic complexity: the
// score starts at 1 and increments once per decision token (per-language
// keyword or operator) found on a code line. No grammar is parsed and no
// control-flow graph is built; callers must not expect the textbook metric.
//
// Block comments are tracked with a single level of state. An unterminated
// block comment classifies the remainder of the file as comment rather than
// failing. Languages without a lexical table scan in fallback mode: every
// non-blank line is code and complexity stays at 1.
//
// Scan is deterministic and side-effect free.
func Scan(tag lang.Tag, text string) Counts {
	counts := Counts{Complexity: 1}
	if text == "" {
		return counts
	}

	lines := strings.Split(text, "\n")
	// A trailing newline does not open a new physical line.
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}

	counts.Lines = len(lines)

	spec, known := lang.SpecFor(tag)

	inBlock := false

	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			counts.Blank++

			continue
		}

		if !known {
			continue // Fallback mode: non-blank lines are code, no decisions.
		}

		code, nowInBlock := stripComments(line, spec, inBlock)
		inBlock = nowInBlock

		if strings.TrimSpace(code) == "" {
			counts.Comment++

			continue
		}

		counts.Complexity += countDecisions(code, spec)
	}

	return counts
}

// stripComments returns the code portion of a line, dropping comment text,
// and reports whether the scanner is inside a block comment after the line.
func stripComments(line string, spec lang.Spec, inBlock bool) (string, bool) {
	var code strings.Builder

	rest := line

	for rest != "" {
		if inBlock {
			end := -1
			if spec.BlockEnd != "" {
				end = strings.Index(rest, spec.BlockEnd)
			}

			if end < 0 {
				// Unterminated block: the rest of the file is comment.
				return code.String(), true
			}

			rest = rest[end+len(spec.BlockEnd):]
			inBlock = false

			continue
		}

		lineIdx := -1
		if spec.LineComment != "" {
			lineIdx = strings.Index(rest, spec.LineComment)
		}

		blockIdx := -1
		if spec.BlockStart != "" {
			blockIdx = strings.Index(rest, spec.BlockStart)
		}

		switch {
		case blockIdx >= 0 && (lineIdx < 0 || blockIdx < lineIdx):
			code.WriteString(rest[:blockIdx])

			rest = rest[blockIdx+len(spec.BlockStart):]
			inBlock = true
		case lineIdx >= 0:
			code.WriteString(rest[:lineIdx])

			return code.String(), false
		default:
			code.WriteString(rest)

			return code.String(), false
		}
	}

	return code.String(), inBlock
}

// countDecisions counts decision tokens in a code fragment.
func countDecisions(code string, spec lang.Spec) int {
	total := 0

	for _, word := range splitWords(code) {
		for _, keyword := range spec.DecisionKeywords {
			if word == keyword {
				total++

				break
			}
		}
	}

	for _, op := range spec.DecisionOperators {
		total += strings.Count(code, op)
	}

	return total
}

// splitWords splits a code fragment into identifier-like tokens.
func splitWords(code string) []string {
	return strings.FieldsFunc(code, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_'
	})
}
