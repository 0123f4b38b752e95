// Command jsonpath evaluates a JSONPath query against a JSON document and
// prints the matches, one per line. The document is read from a file
// named by -f, or from stdin if -f is omitted.
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/tidwall/pretty"

	jsonpath "github.com/h2non/jsonpath-ng"
)

func main() {
	file := flag.String("f", "", "path to a JSON file (default: read from stdin)")
	prettyOut := flag.Bool("pretty", false, "pretty-print each matched value")
	wantPaths := flag.Bool("paths", false, "print the normalized path alongside each match")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: %s [-f file] [-pretty] [-paths] <query>\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}
	query := flag.Arg(0)

	path, err := jsonpath.Parse(query)
	if err != nil {
		log.Fatalf("jsonpath: %v", err)
	}

	raw, err := readInput(*file)
	if err != nil {
		log.Fatalf("jsonpath: %v", err)
	}

	doc, err := jsonpath.ParseJSON(raw)
	if err != nil {
		log.Fatalf("jsonpath: %v", err)
	}

	nodes := path.Find(doc)
	for _, n := range nodes {
		out, err := jsonpath.MarshalNode(n.Value)
		if err != nil {
			log.Fatalf("jsonpath: %v", err)
		}
		if *prettyOut {
			out = pretty.Pretty(out)
		}
		if *wantPaths {
			fmt.Printf("%s: %s", n.Path, out)
		} else {
			fmt.Printf("%s", out)
		}
		if len(out) == 0 || out[len(out)-1] != '\n' {
			fmt.Println()
		}
	}
}

func readInput(file string) ([]byte, error) {
	if file == "" {
		return io.ReadAll(os.Stdin)
	}
	f, err := os.Open(file)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}
