package report

import (
	"fmt"
	"strings"
)

func pageMarker(n, total int) string {
	return fmt.Sprintf("(page %d/%d)", n, total)
}

// paginate packs action lines into pages that leave room for a page marker,
// then appends the summary to the last page or to trailing pages of its own.
//
// The marker width depends on the page count, so packing is repeated with a
// wider reservation until the count fits the reserved digits.
func paginate(lines []string, summary string, maxSize int) []string {
	for limit := 10; ; limit *= 10 {
		// Reserve the widest marker for fewer than limit pages plus its newline.
		budget := maxSize - runeLen(pageMarker(limit-1, limit-1)) - 1

		pages := pack(lines, budget)
		switch {
		case len(pages) == 0:
			pages = pack(strings.Split(summary, "\n"), budget)
		case runeLen(pages[len(pages)-1])+2+runeLen(summary) <= budget:
			pages[len(pages)-1] += "\n\n" + summary
		default:
			pages = append(pages, pack(strings.Split(summary, "\n"), budget)...)
		}

		if len(pages) < limit {
			for i := range pages {
				pages[i] += "\n" + pageMarker(i+1, len(pages))
			}
			return pages
		}
	}
}

// pack greedily joins lines with newlines into chunks of at most budget runes.
// A line longer than budget is split across chunks.
func pack(lines []string, budget int) []string {
	budget = max(1, budget)
	var (
		pages []string
		cur   strings.Builder
		n     int
	)
	flush := func() {
		if n > 0 {
			pages = append(pages, cur.String())
			cur.Reset()
			n = 0
		}
	}
	for _, line := range lines {
		for _, piece := range split(line, budget) {
			size := runeLen(piece)
			if n > 0 && n+1+size > budget {
				flush()
			}
			if n > 0 {
				cur.WriteByte('\n')
				n++
			}
			cur.WriteString(piece)
			n += size
		}
	}
	flush()
	return pages
}

// split cuts s into pieces of at most size runes.
func split(s string, size int) []string {
	r := []rune(s)
	if len(r) <= size {
		return []string{s}
	}
	var out []string
	for len(r) > size {
		out = append(out, string(r[:size]))
		r = r[size:]
	}
	return append(out, string(r))
}

// truncate keeps the first and last k action lines around an elision marker,
// trying KeepLines and then FallbackKeepLines. If neither fits, the action part
// of the shortest candidate is cut so the summary stays whole; a summary longer
// than maxSize is itself cut.
func truncate(blocks []block, lines []string, summary string, opts Options) Report {
	attempts := []int{opts.KeepLines}
	if opts.KeepLines > FallbackKeepLines {
		attempts = append(attempts, FallbackKeepLines)
	}

	head := actionPart(lines)
	elided := 0
	for _, k := range attempts {
		if len(lines) <= 2*k {
			continue
		}
		dropped := 0
		for _, b := range blocks[k : len(blocks)-k] {
			dropped += len(b.entries)
		}
		kept := make([]string, 0, 2*k+1)
		kept = append(kept, lines[:k]...)
		kept = append(kept, fmt.Sprintf("... %d actions truncated ...", dropped))
		kept = append(kept, lines[len(lines)-k:]...)

		text := compose(kept, summary)
		head, elided = actionPart(kept), dropped
		if runeLen(text) <= opts.MaxSize {
			return Report{Pages: []string{text}, Elided: dropped}
		}
	}

	room := opts.MaxSize - runeLen(summary) - len("\n\n")
	switch {
	case room > 0:
		cut := []rune(head)
		cut = cut[:min(room, len(cut))]
		return Report{Pages: []string{string(cut) + "\n\n" + summary}, Elided: elided}
	case runeLen(summary) <= opts.MaxSize:
		return Report{Pages: []string{summary}, Elided: elided}
	default:
		return Report{Pages: []string{string([]rune(summary)[:opts.MaxSize])}, Elided: elided}
	}
}

// actionPart is the text compose places before the summary.
func actionPart(lines []string) string {
	if len(lines) == 0 {
		return noActions
	}
	return strings.Join(lines, "\n")
}
