// hcheck validates H-compress streams.
//
// Usage:
//
//	hcheck [-q|--quiet] [-s|--strict] <filename> [<filename> ...]
//
// Options:
//
//	-q, --quiet   Only output errors. Exit code indicates pass/fail.
//	-s, --strict  Also require canonical encoding and a useful ratio.
//	-h, --help    Show this help message.
//	--version     Show version information.
//
// Exit codes:
//
//	0: All files valid
//	1: One or more files invalid
//	2: Error (file not found, etc.)
package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mrjoshuak/go-hcompress/hcompress"
)

const version = "1.0.0"

// maxFileSize bounds the streams hcheck reads into memory.
const maxFileSize = 1 << 30

// ValidationIssue represents a single validation problem found in a file.
type ValidationIssue struct {
	Severity string // "error" or "warning"
	Message  string
}

// ValidationResult contains all validation results for a file.
type ValidationResult struct {
	Filename string
	Header   hcompress.Header
	Size     int
	Min, Max int32
	Issues   []ValidationIssue
	Checks   []string
}

// IsValid returns true if there are no errors (warnings are ok).
func (r *ValidationResult) IsValid() bool {
	for _, issue := range r.Issues {
		if issue.Severity == "error" {
			return false
		}
	}
	return true
}

func (r *ValidationResult) addError(msg string) {
	r.Issues = append(r.Issues, ValidationIssue{Severity: "error", Message: msg})
}

func (r *ValidationResult) addWarning(msg string) {
	r.Issues = append(r.Issues, ValidationIssue{Severity: "warning", Message: msg})
}

func main() {
	quiet := false
	strict := false
	files := []string{}

	for i := 1; i < len(os.Args); i++ {
		arg := os.Args[i]
		switch arg {
		case "-q", "--quiet":
			quiet = true
		case "-s", "--strict":
			strict = true
		case "-h", "--help":
			printUsage()
			os.Exit(0)
		case "--version":
			fmt.Printf("hcheck version %s\n", version)
			os.Exit(0)
		default:
			if strings.HasPrefix(arg, "-") {
				fmt.Fprintf(os.Stderr, "Unknown option: %s\n", arg)
				printUsage()
				os.Exit(2)
			}
			files = append(files, arg)
		}
	}

	if len(files) == 0 {
		fmt.Fprintln(os.Stderr, "Error: No input files specified")
		printUsage()
		os.Exit(2)
	}

	validCount := 0
	errorOccurred := false

	for _, filename := range files {
		result, err := validateFile(filename, strict)
		if err != nil {
			if !quiet {
				fmt.Fprintf(os.Stderr, "%s: error: %v\n", filename, err)
			}
			errorOccurred = true
			continue
		}

		if result.IsValid() {
			validCount++
		}

		if !quiet {
			printResult(result)
		} else if !result.IsValid() {
			for _, issue := range result.Issues {
				if issue.Severity == "error" {
					fmt.Fprintf(os.Stderr, "%s: %s\n", filename, issue.Message)
				}
			}
		}
	}

	if len(files) > 1 && !quiet {
		fmt.Printf("\nSummary: %d of %d files valid\n", validCount, len(files))
	}

	if errorOccurred {
		os.Exit(2)
	}
	if validCount < len(files) {
		os.Exit(1)
	}
	os.Exit(0)
}

func printUsage() {
	fmt.Println(`Usage: hcheck [options] <filename> [<filename> ...]

Validate H-compress streams.

Options:
  -q, --quiet    Only output errors. Exit code indicates pass/fail.
  -s, --strict   Also require canonical encoding and a useful ratio.
  -h, --help     Show this help message.
  --version      Show version information.

Exit codes:
  0: All files valid
  1: One or more files invalid
  2: Error (file not found, permission denied, etc.)`)
}

func printResult(result *ValidationResult) {
	if result.IsValid() {
		fmt.Printf("%s: OK (%s, %d bytes, samples %d..%d)\n",
			result.Filename, result.Header, result.Size, result.Min, result.Max)
	} else {
		fmt.Printf("%s: INVALID\n", result.Filename)
	}
	for _, issue := range result.Issues {
		fmt.Printf("  [%s] %s\n", strings.ToUpper(issue.Severity), issue.Message)
	}
	if len(result.Issues) > 0 {
		fmt.Printf("  Checks performed: %s\n", strings.Join(result.Checks, ", "))
	}
}

// validateFile reads and validates a single stream.
func validateFile(filename string, strict bool) (*ValidationResult, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	stat, err := file.Stat()
	if err != nil {
		return nil, err
	}
	if stat.Size() > maxFileSize {
		result := &ValidationResult{Filename: filename}
		result.addError(fmt.Sprintf("file too large for validation (%d bytes, max %d)", stat.Size(), maxFileSize))
		result.Checks = append(result.Checks, "file size")
		return result, nil
	}

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, err
	}
	return validateData(filename, data, strict), nil
}

// validateData runs every check on an in-memory stream.
func validateData(filename string, data []byte, strict bool) *ValidationResult {
	result := &ValidationResult{Filename: filename, Size: len(data)}

	// 1. Header
	result.Checks = append(result.Checks, "header")
	h, err := hcompress.ReadHeader(data)
	if err != nil {
		result.addError(describe(err))
		return result
	}
	result.Header = h

	// 2. Full decode
	result.Checks = append(result.Checks, "payload")
	g, err := hcompress.Decompress(data)
	if err != nil {
		result.addError(describe(err))
		return result
	}

	// 3. Statistics
	result.Checks = append(result.Checks, "statistics")
	result.Min, result.Max = g.Data[0], g.Data[0]
	for _, v := range g.Data {
		result.Min = min(result.Min, v)
		result.Max = max(result.Max, v)
	}

	// 4. Strict mode
	if strict {
		result.Checks = append(result.Checks, "strict compliance")
		if ratio, _ := hcompress.Ratio(data); ratio < 1 {
			result.addWarning(fmt.Sprintf("stream is larger than raw samples (ratio %.2f)", ratio))
		}
		if h.Lossless() {
			again, err := hcompress.Compress(g, 1)
			if err != nil || !bytes.Equal(again, data) {
				result.addError("stream is not canonically encoded")
			}
		} else {
			result.addWarning(fmt.Sprintf("lossy stream (scale %d)", h.Scale))
		}
	}
	return result
}

// describe turns a decode error into a one-line diagnosis.
func describe(err error) string {
	switch {
	case errors.Is(err, hcompress.ErrBadMagic):
		return fmt.Sprintf("not an H-compress stream: %v", err)
	case errors.Is(err, hcompress.ErrTruncatedStream):
		return fmt.Sprintf("stream is truncated: %v", err)
	case errors.Is(err, hcompress.ErrInvalidDimensions):
		return fmt.Sprintf("bad dimensions in header: %v", err)
	case errors.Is(err, hcompress.ErrCorruptPayload):
		return fmt.Sprintf("payload is corrupt: %v", err)
	}
	return err.Error()
}
