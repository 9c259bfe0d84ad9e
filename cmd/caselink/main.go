package main

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/coolbeans/caselink/pkg/collect"
	"github.com/coolbeans/caselink/pkg/match"
	"github.com/coolbeans/caselink/pkg/scdb"
	"github.com/coolbeans/caselink/pkg/watch"
	"github.com/coolbeans/caselink/pkg/wikiapi"
)

var version = "0.1.0"

func main() {
	rootCmd := &cobra.Command{
		Use:   "caselink",
		Short: "Supreme Court case popularity linker",
		Long: `Caselink collects Wikipedia articles that embed the U.S. Supreme Court
case infobox, extracts each article's U.S. Reports citation and docket
number, attaches monthly pageview metrics, and reconciles the records
against the Supreme Court Database (SCDB) to attach popularity metrics
to canonical case rows.`,
		Version: version,
	}

	rootCmd.AddCommand(collectCmd())
	rootCmd.AddCommand(mergeCmd())
	rootCmd.AddCommand(matchCmd())
	rootCmd.AddCommand(watchCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func collectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "collect",
		Short: "Collect case records from Wikipedia",
		Long: `Collect enumerates every article embedding the case infobox template,
extracts the U.S. Reports citation and docket number from each article's
wikitext, attaches pageview counts, and writes the records as CSV.

Wikimedia OAuth credentials are read from WIKI_OAUTH_* environment
variables, optionally loaded from a .env file.

Example:
  caselink collect --output wiki_infobox_cases.csv
  caselink collect --config collect.yaml --skip-pageviews`,
		RunE: func(cmd *cobra.Command, args []string) error {
			configPath, _ := cmd.Flags().GetString("config")
			output, _ := cmd.Flags().GetString("output")
			template, _ := cmd.Flags().GetString("template")
			batchSize, _ := cmd.Flags().GetInt("batch-size")
			workers, _ := cmd.Flags().GetInt("workers")
			skipPageviews, _ := cmd.Flags().GetBool("skip-pageviews")

			config := collect.DefaultConfig()
			if configPath != "" {
				loaded, err := collect.LoadConfig(configPath)
				if err != nil {
					return err
				}
				config = loaded
			}
			if output != "" {
				config.Output = output
			}
			if template != "" {
				config.Template = template
			}
			if batchSize > 0 {
				config.BatchSize = batchSize
			}
			if workers > 0 {
				config.WikitextWorkers = workers
			}
			if skipPageviews {
				config.SkipPageviews = true
			}

			credentials, err := wikiapi.LoadCredentials()
			if err != nil {
				return err
			}

			rate, err := config.RateConfig()
			if err != nil {
				return err
			}
			client, err := wikiapi.NewClient(wikiapi.Config{
				UserAgent: config.UserAgent,
				Rate:      rate,
			}, credentials)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			collector := collect.NewCollector(client, config)
			collector.SetProgress(collect.Progress{
				OnPages: func(total int) {
					fmt.Printf("Found %d pages embedding %s\n", total, config.Template)
				},
				OnBatch: func(done, total int) {
					fmt.Printf("\rWikitext batches: %d/%d", done, total)
					if done == total {
						fmt.Println()
					}
				},
				OnPageviews: func(done, total int) {
					fmt.Printf("\rPageviews: %d/%d", done, total)
					if done == total {
						fmt.Println()
					}
				},
			})

			records, report, err := collector.Run(ctx)
			if err != nil {
				return err
			}

			if err := collect.WriteCases(config.Output, records); err != nil {
				return err
			}

			fmt.Println()
			fmt.Print(report.String())
			fmt.Printf("\nOutput: %s\n", config.Output)
			return nil
		},
	}

	cmd.Flags().String("config", "", "YAML config file")
	cmd.Flags().String("output", "", "output CSV path (default wiki_infobox_cases.csv)")
	cmd.Flags().String("template", "", "infobox template to collect")
	cmd.Flags().Int("batch-size", 0, "titles per wikitext request (max 50)")
	cmd.Flags().Int("workers", 0, "wikitext batch workers")
	cmd.Flags().Bool("skip-pageviews", false, "skip pageview collection")
	return cmd
}

func mergeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "merge",
		Short: "Merge Legacy and Modern SCDB datasets",
		Long: `Merge concatenates the SCDB Legacy (1791-1945) and Modern (1946-present)
case-centered citation CSVs into a single dataset.

Example:
  caselink merge --legacy SCDB_Legacy_07_caseCentered_Citation.csv \
                 --modern SCDB_2025_01_caseCentered_Citation.csv \
                 --output SCDB_merged.csv`,
		RunE: func(cmd *cobra.Command, args []string) error {
			legacyPath, _ := cmd.Flags().GetString("legacy")
			modernPath, _ := cmd.Flags().GetString("modern")
			output, _ := cmd.Flags().GetString("output")

			if legacyPath == "" || modernPath == "" {
				return fmt.Errorf("--legacy and --modern flags are required")
			}

			fmt.Printf("Loading Legacy SCDB from: %s\n", legacyPath)
			legacy, err := scdb.ReadFile(legacyPath)
			if err != nil {
				return err
			}

			fmt.Printf("Loading Modern SCDB from: %s\n", modernPath)
			modern, err := scdb.ReadFile(modernPath)
			if err != nil {
				return err
			}

			merged, err := scdb.Merge(legacy, modern)
			if err != nil {
				return err
			}
			if err := scdb.WriteFile(output, merged); err != nil {
				return err
			}

			fmt.Printf("Merged %d rows into %s\n", len(merged.Rows), output)
			return nil
		},
	}

	cmd.Flags().String("legacy", "", "Legacy SCDB CSV path")
	cmd.Flags().String("modern", "", "Modern SCDB CSV path")
	cmd.Flags().String("output", "SCDB_merged.csv", "merged output path")
	return cmd
}

func matchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "match",
		Short: "Join collected wiki cases against SCDB rows",
		Long: `Match joins collected case records against SCDB rows by normalized
citation first, then by normalized docket with year-based disambiguation.
Every input record ends up in exactly one of the matched or unmatched
outputs.

Example:
  caselink match --wiki wiki_infobox_cases.csv --scdb SCDB_merged.csv`,
		RunE: func(cmd *cobra.Command, args []string) error {
			wikiPath, _ := cmd.Flags().GetString("wiki")
			scdbPath, _ := cmd.Flags().GetString("scdb")
			output, _ := cmd.Flags().GetString("output")
			unmatchedOutput, _ := cmd.Flags().GetString("unmatched")

			return runMatch(wikiPath, scdbPath, output, unmatchedOutput)
		},
	}

	cmd.Flags().String("wiki", "wiki_infobox_cases.csv", "collected wiki cases CSV")
	cmd.Flags().String("scdb", "SCDB_merged.csv", "merged SCDB CSV")
	cmd.Flags().String("output", "SCDB_with_infobox_views.csv", "matched output path")
	cmd.Flags().String("unmatched", "unmatched_wiki_cases.csv", "unmatched output path")
	return cmd
}

func watchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Re-run the match when dataset files change",
		Long: `Watch monitors a data directory and re-runs the match whenever the
collected-cases or SCDB CSV changes, keeping the matched outputs current
as new SCDB releases or collection runs land.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")
			wikiPath, _ := cmd.Flags().GetString("wiki")
			scdbPath, _ := cmd.Flags().GetString("scdb")
			output, _ := cmd.Flags().GetString("output")
			unmatchedOutput, _ := cmd.Flags().GetString("unmatched")

			rerun := func(changed string) {
				fmt.Printf("Change detected: %s\n", changed)
				if err := runMatch(
					filepath.Join(dir, wikiPath),
					filepath.Join(dir, scdbPath),
					filepath.Join(dir, output),
					filepath.Join(dir, unmatchedOutput),
				); err != nil {
					fmt.Fprintln(os.Stderr, err)
				}
			}

			datasetWatcher := watch.NewDatasetWatcher(dir, 0, func(path string) {
				base := filepath.Base(path)
				if base == wikiPath || base == scdbPath {
					rerun(base)
				}
			})
			if err := datasetWatcher.Start(); err != nil {
				return err
			}
			defer datasetWatcher.Stop()

			fmt.Printf("Watching %s (Ctrl-C to stop)\n", dir)
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()
			<-ctx.Done()
			return nil
		},
	}

	cmd.Flags().String("dir", ".", "data directory to watch")
	cmd.Flags().String("wiki", "wiki_infobox_cases.csv", "collected wiki cases filename")
	cmd.Flags().String("scdb", "SCDB_merged.csv", "merged SCDB filename")
	cmd.Flags().String("output", "SCDB_with_infobox_views.csv", "matched output filename")
	cmd.Flags().String("unmatched", "unmatched_wiki_cases.csv", "unmatched output filename")
	return cmd
}

// runMatch loads both datasets, runs the join, writes both outputs, and
// prints the summary with the count-conservation check.
func runMatch(wikiPath, scdbPath, output, unmatchedOutput string) error {
	records, err := collect.ReadCases(wikiPath)
	if err != nil {
		return err
	}

	table, err := scdb.ReadFile(scdbPath)
	if err != nil {
		return err
	}

	result := match.NewMatcher(table).Match(records)
	report := match.NewReport(result, len(records))

	if err := match.WriteMatched(output, table, result.Matched); err != nil {
		return err
	}
	if err := match.WriteUnmatched(unmatchedOutput, result.Unmatched); err != nil {
		return err
	}

	fmt.Print(report.String())
	fmt.Printf("\nMatched output:   %s\n", output)
	fmt.Printf("Unmatched output: %s\n", unmatchedOutput)
	return nil
}
