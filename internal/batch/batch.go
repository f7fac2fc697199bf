// Package batch evaluates text files of operand pairs, one addition per line.
package batch

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/skim-satellite/adder/internal/adder"
)

// ResultSuffix is appended to the input name (minus its suffix) for output.
const ResultSuffix = ".sum"

// LineResult is the outcome of one input line.
type LineResult struct {
	Line   int          // 1-based line number in the input
	Result adder.Result // valid when Err is nil
	Err    error
}

// String renders the result the way it is written to a .sum file.
func (r LineResult) String() string {
	if r.Err != nil {
		return "error: " + r.Err.Error()
	}
	return fmt.Sprintf("%d", r.Result.Sum)
}

// Eval reads pairs from r and evaluates each one independently. Blank lines
// and lines starting with '#' produce no result.
func Eval(r io.Reader) ([]LineResult, error) {
	var results []LineResult
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		results = append(results, evalLine(lineNo, line))
	}
	if err := scanner.Err(); err != nil {
		return results, fmt.Errorf("read batch: %w", err)
	}
	return results, nil
}

func evalLine(lineNo int, line string) LineResult {
	fields := strings.FieldsFunc(line, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t'
	})
	if len(fields) != 2 {
		return LineResult{Line: lineNo, Err: fmt.Errorf("line %d: expected 2 operands, got %d", lineNo, len(fields))}
	}
	res, err := adder.ParsePair(fields[0], fields[1])
	if err != nil {
		return LineResult{Line: lineNo, Err: fmt.Errorf("line %d: %w", lineNo, err)}
	}
	return LineResult{Line: lineNo, Result: res}
}

// ResultPath returns the output path for a batch input path.
func ResultPath(inputPath, suffix string) string {
	return strings.TrimSuffix(inputPath, suffix) + ResultSuffix
}

// EvalFile evaluates the batch file at path and writes the results next to it.
// It returns the results and the path written.
func EvalFile(path, suffix string) ([]LineResult, string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, "", fmt.Errorf("open batch: %w", err)
	}
	defer f.Close()

	results, err := Eval(f)
	if err != nil {
		return nil, "", err
	}

	out := ResultPath(path, suffix)
	if err := WriteResults(out, results); err != nil {
		return results, "", err
	}
	return results, out, nil
}

// WriteResults writes one line per result to path, replacing it atomically.
func WriteResults(path string, results []LineResult) error {
	var sb strings.Builder
	for _, r := range results {
		sb.WriteString(r.String())
		sb.WriteByte('\n')
	}

	// A unique temp file per call keeps concurrent writers from
	// clobbering each other before the rename.
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("write results: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.WriteString(sb.String()); err != nil {
		tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("write results: %w", err)
	}
	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("write results: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("write results: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("write results: %w", err)
	}
	return nil
}
