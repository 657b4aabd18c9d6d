package config

import (
	"bufio"
	"os"
	"strings"

	"github.com/sidkik/fss/pkg/errors"
)

// Pair is a source directory and the target it's mirrored into.
type Pair struct {
	Source string
	Target string
}

// ParsePairs reads the pair list at path. Each line holds a source and a
// target separated by whitespace. Blank lines, lines starting with `#`, and
// lines with fewer than two fields are skipped. Any fields after the target
// are ignored.
func ParsePairs(path string) ([]Pair, error) {
	f, err := fs.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.FileNotFound{Path: path}
		}
		return nil, errors.WithContext(err, "open")
	}
	defer f.Close()

	var pairs []Pair
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}
		pairs = append(pairs, Pair{Source: fields[0], Target: fields[1]})
	}

	if err := scanner.Err(); err != nil {
		return nil, errors.WithContext(err, "read")
	}
	return pairs, nil
}
