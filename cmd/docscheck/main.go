// cmd/docscheck/main.go checks a documentation site definition against its
// markdown tree.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/mfreeman451/zserve/pkg/docsite"
)

func main() {
	sitePath := flag.String("site", "", "Site definition (.json, .yaml or .toml); built-in site when empty")
	docsRoot := flag.String("docs", "docs", "Documentation root containing the markdown pages")
	asJSON := flag.Bool("json", false, "Print the report as JSON")
	flag.Parse()

	os.Exit(run(os.Stdout, *sitePath, *docsRoot, *asJSON))
}

func run(w io.Writer, sitePath, docsRoot string, asJSON bool) int {
	site := docsite.Default()

	if sitePath != "" {
		loaded, err := docsite.Load(sitePath)
		if err != nil {
			log.Printf("%v", err)
			return 2
		}

		site = loaded
	}

	report := docsite.Check(site, docsRoot)

	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")

		if err := enc.Encode(report); err != nil {
			log.Printf("Failed to encode report: %v", err)
			return 2
		}
	} else {
		for _, issue := range report.Issues {
			fmt.Fprintln(w, issue.String())
		}

		fmt.Fprintf(w, "%d links, %d pages, %d issues\n", report.Links, report.Pages, len(report.Issues))
	}

	if !report.OK() {
		return 1
	}

	return 0
}
