// cmd/tools/catalog-tool/main.go
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"valyntra-workers/internal/models"
	"valyntra-workers/internal/opportunity"
	"valyntra-workers/internal/scoring"
)

func main() {
	if len(os.Args) < 2 {
		help()
		os.Exit(1)
	}

	if err := run(os.Args[1], os.Args[2:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(command string, args []string, out io.Writer) error {
	switch command {
	case "validate":
		fs := flag.NewFlagSet("validate", flag.ContinueOnError)
		path := fs.String("path", "configs/catalog.yaml", "Path to catalog file")
		if err := fs.Parse(args); err != nil {
			return err
		}
		return validateCatalog(*path, out)

	case "rank":
		fs := flag.NewFlagSet("rank", flag.ContinueOnError)
		path := fs.String("path", "", "Path to catalog file (built-in catalog when empty)")
		industry := fs.String("industry", "", "Company industry (e.g., Healthcare)")
		overall := fs.Float64("overall", 50, "Overall readiness score, 0-100")
		limit := fs.Int("limit", opportunity.DefaultLimit, "Maximum opportunities to show")
		if err := fs.Parse(args); err != nil {
			return err
		}
		if *overall < 0 || *overall > 100 {
			return fmt.Errorf("overall must be within [0,100], got %v", *overall)
		}
		catalog, err := loadOrDefault(*path)
		if err != nil {
			return err
		}
		return rankUseCases(catalog, *industry, *overall, *limit, out)

	case "export":
		fs := flag.NewFlagSet("export", flag.ContinueOnError)
		path := fs.String("path", "", "Catalog to re-encode (built-in catalog when empty)")
		if err := fs.Parse(args); err != nil {
			return err
		}
		catalog, err := loadOrDefault(*path)
		if err != nil {
			return err
		}
		return opportunity.WriteCatalog(out, catalog)

	case "help":
		help()
		return nil
	}

	help()
	return fmt.Errorf("unknown command %q", command)
}

func loadOrDefault(path string) (*opportunity.Catalog, error) {
	if path == "" {
		return opportunity.DefaultCatalog(), nil
	}
	return opportunity.LoadCatalog(path)
}

func validateCatalog(path string, out io.Writer) error {
	catalog, err := opportunity.LoadCatalog(path)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "INDUSTRY\tUSE CASES")
	for _, industry := range catalog.Industries() {
		useCases, _ := catalog.UseCases(industry)
		fmt.Fprintf(tw, "%s\t%d\n", industry, len(useCases))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintln(out, "Catalog validation passed.")
	return nil
}

func rankUseCases(catalog *opportunity.Catalog, industry string, overall float64, limit int, out io.Writer) error {
	generator := opportunity.NewGenerator(catalog, limit)
	opportunities := generator.Generate(
		models.Company{Industry: industry},
		models.Score{Overall: overall, Tier: scoring.TierFor(overall)},
	)

	fmt.Fprintf(out, "Industry %q, overall %.1f (%s), effort multiplier %.0fx\n",
		industry, overall, scoring.TierFor(overall), opportunity.EffortMultiplier(overall))

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "RANK\tUSE CASE\tTAG\tIMPACT\tEFFORT\tROI\tPRIORITY")
	for _, o := range opportunities {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%.1f\n",
			o.Rank, o.UseCase.Name, o.UseCase.Tag, o.UseCase.Impact, o.UseCase.Effort, o.UseCase.ROI, o.Priority)
	}
	return tw.Flush()
}

func help() {
	fmt.Println("Usage: catalog-tool <command> [options]")
	fmt.Println("\nCommands:")
	fmt.Println("  validate    Validate a use-case catalog file")
	fmt.Println("  rank        Show the ranked opportunities for an industry and score")
	fmt.Println("  export      Write a catalog (built-in by default) as YAML")
	fmt.Println("  help        Show this help message")
	fmt.Println("\nExamples:")
	fmt.Println("  catalog-tool validate -path configs/catalog.yaml")
	fmt.Println("  catalog-tool rank -industry Healthcare -overall 72.5")
	fmt.Println("  catalog-tool export > configs/catalog.yaml")
}
