package layout

import "strings"

// DefaultWrapWidth is the line width, in characters, used for quote text.
const DefaultWrapWidth = 20

// Wrap breaks text into lines of at most width characters at word
// boundaries. Runs of whitespace collapse to one space and words longer than
// width are split across lines.
func Wrap(text string, width int) []string {
	if width < 1 {
		width = 1
	}

	var (
		lines []string
		cur   []rune
	)
	flush := func() {
		if len(cur) > 0 {
			lines = append(lines, string(cur))
			cur = cur[:0]
		}
	}

	for _, word := range strings.Fields(text) {
		w := []rune(word)

		need := len(w)
		if len(cur) > 0 {
			need++
		}
		if len(cur)+need <= width {
			if len(cur) > 0 {
				cur = append(cur, ' ')
			}
			cur = append(cur, w...)
			continue
		}

		if len(w) <= width {
			flush()
			cur = append(cur, w...)
			continue
		}

		// Long word: fill what is left of the current line, then chunk.
		if len(cur) > 0 {
			if left := width - len(cur) - 1; left > 0 {
				cur = append(cur, ' ')
				cur = append(cur, w[:left]...)
				w = w[left:]
			}
			flush()
		}
		for len(w) > width {
			lines = append(lines, string(w[:width]))
			w = w[width:]
		}
		cur = append(cur, w...)
	}
	flush()

	return lines
}

// WrapSentences splits text on '.', wraps each sentence at width and puts the
// period back at the end of every sentence but the last. A sentence that
// wraps to nothing (as inside "...") adds its period to the previous line.
func WrapSentences(text string, width int) []string {
	sentences := strings.Split(text, ".")

	var lines []string
	for i, sentence := range sentences {
		wrapped := Wrap(sentence, width)
		last := i == len(sentences)-1

		if len(wrapped) == 0 {
			if last {
				continue
			}
			if len(lines) == 0 {
				lines = append(lines, ".")
			} else {
				lines[len(lines)-1] += "."
			}
			continue
		}

		if !last {
			wrapped[len(wrapped)-1] += "."
		}
		lines = append(lines, wrapped...)
	}
	return lines
}

