package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/google/subcommands"

	"github.com/bobmcallan/vigil/internal/app"
	"github.com/bobmcallan/vigil/internal/common"
	"github.com/bobmcallan/vigil/internal/confidence"
	"github.com/bobmcallan/vigil/internal/interfaces"
	"github.com/bobmcallan/vigil/internal/models"
)

var commands = []subcommands.Command{
	&runCmd{},
	&trackCmd{},
	&fundamentalsCmd{},
	&chartsCmd{},
	&synthesizeCmd{},
	&serveCmd{},
	&versionCmd{},
}

func newApp(ctx context.Context) (*app.App, subcommands.ExitStatus) {
	a, err := app.NewApp(ctx, configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize app: %v\n", err)
		return nil, subcommands.ExitFailure
	}
	return a, subcommands.ExitSuccess
}

func printJSON(v interface{}) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	enc.Encode(v)
}

// stepExit maps a step outcome to a process exit status.
func stepExit(step models.StepResult) subcommands.ExitStatus {
	if step.Status != models.StepStatusSuccess {
		fmt.Fprintf(os.Stderr, "Error: %s\n", step.Error)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

type runCmd struct {
	quiet bool
}

func (*runCmd) Name() string     { return "run" }
func (*runCmd) Synopsis() string { return "run the full daily analysis pipeline once" }
func (*runCmd) Usage() string {
	return `vigil run [-q]

  Runs technical analysis, fundamentals extraction, chart rendering and
  synthesis, saves full_analysis.json and posts the update to Discord.
`
}

func (c *runCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.quiet, "q", false, "do not print the run result")
}

func (c *runCmd) Execute(ctx context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	a, status := newApp(ctx)
	if a == nil {
		return status
	}
	common.PrintBanner(os.Stderr, a.Config, a.Logger, "run")

	result, err := a.Runner.Run(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	if !c.quiet {
		printJSON(result)
	}
	if result.Steps[app.StepTechnical].Status != models.StepStatusSuccess {
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

type trackCmd struct {
	notify bool
}

func (*trackCmd) Name() string     { return "track" }
func (*trackCmd) Synopsis() string { return "run technical analysis and print the report" }
func (*trackCmd) Usage() string {
	return `vigil track [-notify]

  Fetches holdings, computes indicators and signals, saves daily_report.json
  and portfolio_split.json, and prints the technical report.
`
}

func (c *trackCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.notify, "notify", false, "also post the report to Discord")
}

func (c *trackCmd) Execute(ctx context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	a, status := newApp(ctx)
	if a == nil {
		return status
	}

	report, step := a.Runner.Technical(ctx)
	if exit := stepExit(step); exit != subcommands.ExitSuccess {
		return exit
	}

	text := a.TrackerService.FormatReport(report)
	fmt.Println(text)

	if c.notify && a.Notifier != nil {
		if err := a.Notifier.SendMessage(ctx, text); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return subcommands.ExitFailure
		}
	}
	return subcommands.ExitSuccess
}

type fundamentalsCmd struct {
	list bool
}

func (*fundamentalsCmd) Name() string     { return "fundamentals" }
func (*fundamentalsCmd) Synopsis() string { return "extract fundamentals for RSI alerts" }
func (*fundamentalsCmd) Usage() string {
	return `vigil fundamentals [-list] [TICKER COMPANY]

  Without arguments, extracts fundamentals for every RSI alert in the saved
  daily report. With a ticker and company name, extracts that one holding.
  With -list, prints the stored fundamentals reports instead.
`
}

func (c *fundamentalsCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.list, "list", false, "list stored fundamentals reports")
}

func (c *fundamentalsCmd) Execute(ctx context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	a, status := newApp(ctx)
	if a == nil {
		return status
	}

	if c.list {
		if err := listFundamentals(ctx, a.Store, os.Stdout); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return subcommands.ExitFailure
		}
		return subcommands.ExitSuccess
	}

	switch f.NArg() {
	case 0:
		step := a.Runner.Fundamentals(ctx, nil)
		printJSON(step)
		return stepExit(step)
	case 1:
		fmt.Fprintln(os.Stderr, "Error: company name required with ticker")
		return subcommands.ExitUsageError
	}

	ticker := strings.ToUpper(f.Arg(0))
	alert := models.RSIAlert{
		Ticker:  ticker,
		Company: strings.Join(f.Args()[1:], " "),
		RSI:     models.NeutralRSI,
	}
	result := a.FundamentalsService.Extract(ctx, alert)
	if err := a.Store.SaveFundamentals(ctx, result); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	printJSON(result)
	return subcommands.ExitSuccess
}

// listFundamentals writes one line per stored fundamentals report.
func listFundamentals(ctx context.Context, store interfaces.SnapshotStore, w io.Writer) error {
	tickers, err := store.ListFundamentals(ctx)
	if err != nil {
		return err
	}
	if len(tickers) == 0 {
		fmt.Fprintln(w, "No fundamentals stored")
		return nil
	}
	for _, ticker := range tickers {
		report, err := store.GetFundamentals(ctx, ticker)
		if err != nil {
			fmt.Fprintf(w, "%-8s unreadable: %v\n", ticker, err)
			continue
		}
		fmt.Fprintf(w, "%-8s %-8s %s\n", report.Ticker, report.Status, report.Timestamp.Format("2006-01-02 15:04"))
	}
	return nil
}

type chartsCmd struct{}

func (*chartsCmd) Name() string     { return "charts" }
func (*chartsCmd) Synopsis() string { return "render portfolio charts from the saved split" }
func (*chartsCmd) Usage() string {
	return `vigil charts

  Renders the sector, pie and top holdings charts to the charts directory.
`
}

func (*chartsCmd) SetFlags(f *flag.FlagSet) {}

func (*chartsCmd) Execute(ctx context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	a, status := newApp(ctx)
	if a == nil {
		return status
	}

	step := a.Runner.Visual(ctx)
	for _, name := range step.Charts {
		fmt.Println(name)
	}
	return stepExit(step)
}

type synthesizeCmd struct {
	asJSON bool
}

func (*synthesizeCmd) Name() string     { return "synthesize" }
func (*synthesizeCmd) Synopsis() string { return "score holdings into confidence verdicts" }
func (*synthesizeCmd) Usage() string {
	return `vigil synthesize [-json]

  Combines the saved daily report with stored fundamentals, saves
  synthesis_report.json and prints the summary.
`
}

func (c *synthesizeCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.asJSON, "json", false, "print the full synthesis as JSON")
}

func (c *synthesizeCmd) Execute(ctx context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	a, status := newApp(ctx)
	if a == nil {
		return status
	}

	synthesis, step := a.Runner.Synthesis(ctx)
	if exit := stepExit(step); exit != subcommands.ExitSuccess {
		return exit
	}

	if c.asJSON {
		printJSON(synthesis)
	} else {
		fmt.Println(confidence.FormatSynthesisMessage(*synthesis))
	}
	return subcommands.ExitSuccess
}

type versionCmd struct{}

func (*versionCmd) Name() string             { return "version" }
func (*versionCmd) Synopsis() string         { return "print version information" }
func (*versionCmd) Usage() string            { return "vigil version\n" }
func (*versionCmd) SetFlags(f *flag.FlagSet) {}

func (*versionCmd) Execute(ctx context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	fmt.Printf("vigil %s\n", common.GetFullVersion())
	return subcommands.ExitSuccess
}
