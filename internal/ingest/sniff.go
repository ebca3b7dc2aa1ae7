package ingest

import (
	"errors"
	"strings"

	"github.com/MisterMushn/bilanzieren/pkg/contracts/domain"
)

// sniffLimit bounds how much of the input the dialect sniffer inspects.
const sniffLimit = 4096

// ErrDelimiterNotDetected is returned when the sniffed prefix contains
// neither `;` nor `,`, so no CSV dialect can be chosen.
var ErrDelimiterNotDetected = errors.New("can't detect delimiter")

type delimiterStats struct {
	consistent int // lines matching the candidate's modal per-line count
	total      int
}

// SniffDialect inspects up to the first 4096 bytes of raw CSV data and
// decides between the German (`;`/`,`) and default (`,`/`.`) dialects.
// The candidate whose per-line occurrence count is more consistent
// wins; remaining ties resolve to German, matching the convention of
// the bank exports this tool is built for. Invalid UTF-8 in the prefix
// is tolerated since only the two ASCII candidates matter.
func SniffDialect(data []byte) (domain.Dialect, error) {
	prefix := data
	if len(prefix) > sniffLimit {
		prefix = prefix[:sniffLimit]
	}

	lines := strings.Split(string(prefix), "\n")
	semicolons := gatherStats(lines, ';')
	commas := gatherStats(lines, ',')

	if semicolons.total == 0 && commas.total == 0 {
		return "", ErrDelimiterNotDetected
	}
	if semicolons.total == 0 {
		return domain.DialectDefault, nil
	}
	if commas.total == 0 {
		return domain.DialectGerman, nil
	}

	// Both candidates occur. A true field separator shows up the same
	// number of times on every line; decimal commas vary with the data.
	switch {
	case commas.consistent > semicolons.consistent:
		return domain.DialectDefault, nil
	case semicolons.consistent > commas.consistent:
		return domain.DialectGerman, nil
	case commas.total > semicolons.total:
		return domain.DialectDefault, nil
	}
	return domain.DialectGerman, nil
}

func gatherStats(lines []string, candidate rune) delimiterStats {
	var stats delimiterStats
	perLine := make(map[int]int)
	for _, line := range lines {
		line = strings.TrimSuffix(line, "\r")
		if line == "" {
			continue
		}
		n := strings.Count(line, string(candidate))
		if n == 0 {
			continue
		}
		stats.total += n
		perLine[n]++
	}
	for _, hits := range perLine {
		if hits > stats.consistent {
			stats.consistent = hits
		}
	}
	return stats
}
