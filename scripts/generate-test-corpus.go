//go:build ignore

// Package main generates a synthetic tree of text files for timing index
// builds and searches.
// Usage: go run scripts/generate-test-corpus.go -files 5000 -depth 3 -output testdata/bench
package main

import (
	"flag"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
)

var (
	numFiles  = flag.Int("files", 1000, "Number of files to generate")
	depth     = flag.Int("depth", 2, "Directory nesting depth")
	fanout    = flag.Int("fanout", 4, "Subdirectories per directory")
	words     = flag.Int("words", 400, "Average words per file")
	outputDir = flag.String("output", "testdata/bench", "Output directory")
	seed      = flag.Int64("seed", 42, "Random seed for reproducibility")
)

// Word pool with a long tail so document frequencies vary like real prose.
var (
	common = []string{
		"the", "of", "and", "to", "in", "is", "that", "for", "it", "as",
		"with", "was", "on", "be", "at", "by", "this", "had", "not", "are",
	}
	topical = []string{
		"invoice", "quarterly", "budget", "forecast", "meeting", "agenda",
		"release", "deadline", "customer", "contract", "renewal", "incident",
		"outage", "latency", "migration", "database", "cluster", "backup",
		"onboarding", "holiday", "travel", "expense", "review", "roadmap",
		"kubernetes", "terraform", "network", "firewall", "certificate", "audit",
	}
	rare = []string{
		"zeppelin", "quasar", "obsidian", "marzipan", "fjord", "xylophone",
		"kumquat", "nebula", "tundra", "axolotl",
	}
	punctuation = []string{".", ",", "!", "?", ";", ""}
)

func sentence(r *rand.Rand) string {
	n := 6 + r.Intn(12)
	parts := make([]string, 0, n)
	for i := 0; i < n; i++ {
		var w string
		switch x := r.Intn(100); {
		case x < 60:
			w = common[r.Intn(len(common))]
		case x < 98:
			w = topical[r.Intn(len(topical))]
		default:
			w = rare[r.Intn(len(rare))]
		}
		if i == 0 {
			w = strings.ToUpper(w[:1]) + w[1:]
		}
		parts = append(parts, w)
	}
	return strings.Join(parts, " ") + punctuation[r.Intn(len(punctuation))]
}

func document(r *rand.Rand) string {
	target := *words/2 + r.Intn(*words+1)
	var b strings.Builder
	count := 0
	for count < target {
		s := sentence(r)
		count += strings.Count(s, " ") + 1
		b.WriteString(s)
		if r.Intn(5) == 0 {
			b.WriteString("\n\n")
		} else {
			b.WriteString(" ")
		}
	}
	return b.String()
}

// dirs returns every directory of the tree relative to the output root.
func dirs() []string {
	out := []string{"."}
	level := []string{"."}
	for d := 0; d < *depth; d++ {
		var next []string
		for _, parent := range level {
			for i := 0; i < *fanout; i++ {
				next = append(next, filepath.Join(parent, fmt.Sprintf("dir%02d", i)))
			}
		}
		out = append(out, next...)
		level = next
	}
	return out
}

func main() {
	flag.Parse()
	r := rand.New(rand.NewSource(*seed))

	tree := dirs()
	for _, d := range tree {
		if err := os.MkdirAll(filepath.Join(*outputDir, d), 0o755); err != nil {
			fmt.Fprintf(os.Stderr, "Error creating directory: %v\n", err)
			os.Exit(1)
		}
	}

	for i := 0; i < *numFiles; i++ {
		dir := tree[r.Intn(len(tree))]
		name := fmt.Sprintf("note_%05d.txt", i)
		// A few non-documents exercise the extension filter.
		if i%50 == 49 {
			name = fmt.Sprintf("data_%05d.csv", i)
		}
		path := filepath.Join(*outputDir, dir, name)
		if err := os.WriteFile(path, []byte(document(r)), 0o644); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing %s: %v\n", path, err)
			os.Exit(1)
		}
	}

	fmt.Printf("Generated %d files in %d directories under %s\n", *numFiles, len(tree), *outputDir)
}
