package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/fatih/color"
	"github.com/jmerrifield20/phishguard/internal/config"
	"github.com/jmerrifield20/phishguard/internal/threat"
	"github.com/jmerrifield20/phishguard/pkg/client"
	"github.com/jmerrifield20/phishguard/pkg/target"
	"github.com/spf13/cobra"
)

// version is overridden by goreleaser via -ldflags "-X main.version=...".
var version = "dev"

// errPhishingDetected makes the process exit with status 2 under --fail-on-phishing.
var errPhishingDetected = errors.New("phishing detected")

func main() {
	err := newRootCmd().Execute()
	switch {
	case err == nil:
	case errors.Is(err, errPhishingDetected):
		os.Exit(2)
	default:
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var cfgFile string

	root := &cobra.Command{
		Use:   "phishguard",
		Short: "Heuristic phishing URL checker",
		Long: `phishguard scores a URL against a fixed set of phishing heuristics and
prints a verdict: a phishing flag, a 0-100 confidence, a risk tier and the
indicators that fired.

Scoring runs locally by default. Use --server to ask a running
phishguard-server instead.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&cfgFile, "config", "", "config file with rule overrides (default ./phishguard.yaml or ./configs/phishguard.yaml)")

	root.AddCommand(newCheckCmd(&cfgFile))
	root.AddCommand(newRulesCmd(&cfgFile))
	root.AddCommand(newVersionCmd())
	return root
}

// localScorer builds a scorer from the rule set in the config file, if any.
func localScorer(cfgFile string) (*threat.RuleBasedScorer, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, err
	}
	return threat.NewRuleBasedScorer(threat.WithRuleSet(cfg.Rules))
}

// ── check ────────────────────────────────────────────────────────────────────

type checkOptions struct {
	server         string
	format         string
	explain        bool
	failOnPhishing bool
	timeout        time.Duration
}

// checkResult is what the check command prints.
type checkResult struct {
	URL string `json:"url"`
	client.Verdict
	Hits []threat.Hit `json:"hits,omitempty"`
}

func newCheckCmd(cfgFile *string) *cobra.Command {
	opts := &checkOptions{}
	cmd := &cobra.Command{
		Use:   "check <url>",
		Short: "Score a single URL",
		Long: `Check scores one URL. A URL without http:// or https:// is checked as http://.

  phishguard check http://192.168.1.1/login
  phishguard check --explain secure-paypal-login.xyz/account
  phishguard check --server http://localhost:5000 bit.ly/abc`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd.Context(), cmd.OutOrStdout(), *cfgFile, opts, args[0])
		},
	}
	cmd.Flags().StringVar(&opts.server, "server", "", "phishguard-server base URL; scores locally when empty")
	cmd.Flags().StringVar(&opts.format, "format", "text", "Output format: text or json")
	cmd.Flags().BoolVar(&opts.explain, "explain", false, "Show points contributed by each rule (local only)")
	cmd.Flags().BoolVar(&opts.failOnPhishing, "fail-on-phishing", false, "Exit with status 2 when the URL is flagged")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", 10*time.Second, "Request timeout when using --server")
	return cmd
}

func runCheck(ctx context.Context, w io.Writer, cfgFile string, opts *checkOptions, arg string) error {
	if opts.format != "text" && opts.format != "json" {
		return fmt.Errorf("unknown format %q: expected text or json", opts.format)
	}
	if opts.explain && opts.server != "" {
		return errors.New("--explain is only available for local checks")
	}

	rawURL, err := target.Normalize(arg)
	if err != nil {
		return err
	}

	res := checkResult{URL: rawURL}
	if opts.server != "" {
		c, err := client.New(opts.server, client.WithTimeout(opts.timeout))
		if err != nil {
			return err
		}
		if ctx == nil {
			ctx = context.Background()
		}
		v, err := c.Check(ctx, rawURL)
		if err != nil {
			return fmt.Errorf("check %q: %w", rawURL, err)
		}
		res.Verdict = *v
	} else {
		scorer, err := localScorer(cfgFile)
		if err != nil {
			return err
		}
		report := scorer.Explain(rawURL)
		res.Verdict = client.Verdict{
			IsPhishing: report.IsPhishing,
			Confidence: report.Confidence,
			Risk:       string(report.Risk),
			Score:      report.Score,
			Reasons:    report.Reasons,
		}
		if opts.explain {
			res.Hits = report.Hits
		}
	}

	if opts.format == "json" {
		if err := printJSON(w, res); err != nil {
			return err
		}
	} else {
		printCheckText(w, res, opts.explain)
	}

	if opts.failOnPhishing && res.IsPhishing {
		return errPhishingDetected
	}
	return nil
}

func printCheckText(w io.Writer, r checkResult, explain bool) {
	verdict := color.New(color.FgGreen, color.Bold).Sprint("SAFE")
	if r.IsPhishing {
		verdict = color.New(color.FgRed, color.Bold).Sprint("PHISHING")
	}

	fmt.Fprintf(w, "URL:        %s\n", r.URL)
	fmt.Fprintf(w, "Verdict:    %s\n", verdict)
	fmt.Fprintf(w, "Risk:       %s\n", riskColor(r.Risk).Sprint(r.Risk))
	fmt.Fprintf(w, "Confidence: %d%%\n", r.Confidence)
	fmt.Fprintf(w, "Score:      %d\n", r.Score)
	if len(r.Reasons) > 0 {
		fmt.Fprintln(w, "Reasons:")
		for _, reason := range r.Reasons {
			fmt.Fprintf(w, "  - %s\n", reason)
		}
	}

	if explain {
		fmt.Fprintln(w, "Rule hits:")
		if len(r.Hits) == 0 {
			fmt.Fprintln(w, "  (none)")
			return
		}
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		for _, h := range r.Hits {
			fmt.Fprintf(tw, "  %s\t+%d\n", h.Rule, h.Points)
		}
		tw.Flush()
	}
}

func riskColor(risk string) *color.Color {
	switch threat.Risk(risk) {
	case threat.RiskHigh:
		return color.New(color.FgRed, color.Bold)
	case threat.RiskMedium:
		return color.New(color.FgYellow, color.Bold)
	case threat.RiskLow:
		return color.New(color.FgYellow)
	default:
		return color.New(color.FgGreen)
	}
}

// ── rules ────────────────────────────────────────────────────────────────────

func newRulesCmd(cfgFile *string) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "rules",
		Short: "Print the active rules, weights and indicator lists",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if format != "text" && format != "json" {
				return fmt.Errorf("unknown format %q: expected text or json", format)
			}
			scorer, err := localScorer(*cfgFile)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			if format == "json" {
				return printJSON(w, map[string]any{
					"rules":    scorer.RuleNames(),
					"rule_set": scorer.RuleSet(),
				})
			}
			printRulesText(w, scorer)
			return nil
		},
	}
	cmd.Flags().StringVar(&format, "format", "text", "Output format: text or json")
	return cmd
}

func printRulesText(w io.Writer, scorer *threat.RuleBasedScorer) {
	rs := scorer.RuleSet()
	weights := ruleWeights(rs.Weights)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "RULE\tPOINTS")
	for _, name := range scorer.RuleNames() {
		fmt.Fprintf(tw, "%s\t%d\n", name, weights[name])
	}
	tw.Flush()

	fmt.Fprintln(w)
	fmt.Fprintf(w, "Keywords:        %s\n", strings.Join(rs.Keywords, ", "))
	fmt.Fprintf(w, "Shorteners:      %s\n", strings.Join(rs.Shorteners, ", "))
	fmt.Fprintf(w, "Brands:          %s\n", strings.Join(rs.Brands, ", "))
	fmt.Fprintf(w, "Brand context:   %s\n", strings.Join(rs.BrandContext, ", "))
	fmt.Fprintf(w, "Suspicious TLDs: %s\n", strings.Join(rs.SuspiciousTLDs, ", "))
	fmt.Fprintf(w, "Misspellings:    %s\n", strings.Join(rs.Misspellings, ", "))
}

func ruleWeights(w threat.Weights) map[string]int {
	return map[string]int{
		threat.RuleIPHost:          w.IPHost,
		threat.RuleLongURL:         w.LongURL,
		threat.RuleAtSymbol:        w.AtSymbol,
		threat.RuleNoHTTPS:         w.NoHTTPS,
		threat.RuleKeyword:         w.Keyword,
		threat.RuleSubdomains:      w.Subdomains,
		threat.RuleDigitsInHost:    w.DigitsInHost,
		threat.RuleHyphenInHost:    w.HyphenInHost,
		threat.RuleShortener:       w.Shortener,
		threat.RuleSlashes:         w.Slashes,
		threat.RuleImpersonation:   w.Impersonation,
		threat.RuleDomainStructure: w.DomainStructure,
		threat.RuleSuspiciousTLD:   w.SuspiciousTLD,
		threat.RuleMisspelling:     w.Misspelling,
	}
}

// ── version ──────────────────────────────────────────────────────────────────

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the phishguard CLI version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "phishguard %s\n", version)
		},
	}
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
