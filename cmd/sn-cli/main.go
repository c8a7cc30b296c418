package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/sqlvibe/sqlnorm/internal/log"
	"github.com/sqlvibe/sqlnorm/pkg/sqlnorm"
)

var (
	showFingerprint = flag.Bool("fingerprint", false, "Prefix each result with its fingerprint hash")
	verboseFlag     = flag.Bool("verbose", false, "Verbose output")
)

func main() {
	flag.Parse()

	if *verboseFlag {
		log.SetLevel(log.LevelDebug)
	}

	exitCode := 0

	if flag.NArg() > 0 {
		sql := strings.Join(flag.Args(), " ")
		if !emit(sql) {
			exitCode = 1
		}
		os.Exit(exitCode)
	}

	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if !emit(line) {
			exitCode = 1
		}
	}
	if err := scanner.Err(); err != nil {
		fmt.Fprintf(os.Stderr, "Error reading input: %v\n", err)
		exitCode = 1
	}
	os.Exit(exitCode)
}

func emit(sql string) bool {
	norm, err := sqlnorm.Normalize(sql)
	if err != nil {
		if pe, ok := sqlnorm.IsParseError(err); ok {
			fmt.Fprintf(os.Stderr, "parse error: %s (cursor %d)\n", pe.Message, pe.CursorPos)
		} else {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		return false
	}
	if *showFingerprint {
		fp, err := sqlnorm.FingerprintString(sql)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return false
		}
		fmt.Printf("%s  %s\n", fp, norm)
		return true
	}
	fmt.Println(norm)
	return true
}
