package main

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/newsdesk-ai/newsdesk"
	"github.com/newsdesk-ai/newsdesk/bridge"
	"github.com/newsdesk-ai/newsdesk/internal"
	"github.com/newsdesk-ai/newsdesk/internal/config"
	"github.com/newsdesk-ai/newsdesk/knowledge"
	"github.com/newsdesk-ai/newsdesk/llm"
	"github.com/newsdesk-ai/newsdesk/search"
	"github.com/newsdesk-ai/newsdesk/thinking"
)

var rootCmd = &cobra.Command{
	Use:   "newsdesk [topic]",
	Short: "Multi-source news analysis with structured thinking and a knowledge graph",
	Long: `newsdesk researches a topic across BBC, CNN, and Reuters in parallel,
analyzes the findings step by step through the sequential-thinking tool
server, persists results in the memory server's knowledge graph, and
synthesizes a final report with historical context from previous runs.

Requires OPENAI_API_KEY (or api_key in the config file; op:// secret
references are resolved via the 1Password CLI). The tool servers run
via npx and need Node.js unless use_tool_servers is false.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))
		if !verbose {
			logger = slog.New(slog.NewTextHandler(io.Discard, nil))
		}

		cfg, err := config.LoadFile(configPath)
		if err != nil {
			return err
		}

		apiKey, wasSecret, err := internal.ResolveSecretReference(ctx, cfg.APIKey)
		if err != nil {
			return fmt.Errorf("error resolving API key: %w", err)
		}
		if wasSecret {
			logger.Info("resolved API key from secret reference")
		}
		cfg.APIKey = apiKey

		if err := cfg.Validate(); err != nil {
			return err
		}

		retryClient := retryablehttp.NewClient()
		retryClient.RetryMax = retries
		retryClient.RetryWaitMin = 1 * time.Second
		retryClient.RetryWaitMax = 30 * time.Second
		retryClient.HTTPClient.Timeout = timeout
		retryClient.Logger = logger

		if rps > 0 {
			retryClient.Backoff = func(min, max time.Duration, attemptNum int, resp *http.Response) time.Duration {
				// Ensure we wait at least 1/rps between requests
				minWait := time.Second / time.Duration(rps)
				if min < minWait {
					min = minWait
				}
				return retryablehttp.DefaultBackoff(min, max, attemptNum, resp)
			}
		}

		client := retryClient.StandardClient()
		client.Transport = &internal.HeaderTransport{
			Base:    client.Transport,
			Headers: http.Header{"User-Agent": []string{"newsdesk/" + version}},
		}

		searcher := search.NewDuckDuckGo(
			search.WithHTTPClient(client),
			search.WithMaxResults(cfg.MaxSearchResults),
		)

		model, err := llm.NewClient(cfg.APIKey,
			llm.WithModel(cfg.Model),
			llm.WithTemperature(cfg.Temperature),
			llm.WithHTTPClient(client),
		)
		if err != nil {
			return err
		}

		opts := []newsdesk.Option{newsdesk.WithLogger(logger)}
		var thinker thinking.Thinker = thinking.NewLocal()

		if cfg.UseToolServers {
			if cfg.EnableThinking {
				service, shutdown, err := startThinking(cfg, logger)
				if err != nil {
					return err
				}
				defer shutdown()
				thinker = service
			}

			graph, shutdown, err := startMemory(cfg, logger)
			if err != nil {
				return err
			}
			defer shutdown()
			opts = append(opts, newsdesk.WithKnowledgeGraph(graph))
		}

		pipeline, err := newsdesk.NewPipeline(searcher, model, thinker, opts...)
		if err != nil {
			return err
		}

		g, ctx := errgroup.WithContext(ctx)

		var report *newsdesk.Report
		g.Go(func() error {
			r, err := pipeline.Run(ctx, args[0])
			if err != nil {
				return err
			}
			report = r
			return nil
		})
		if err := g.Wait(); err != nil {
			return err
		}

		printReport(cmd.OutOrStdout(), report)
		return nil
	},
}

// startThinking launches the sequential-thinking server and wraps its
// tool. The returned shutdown terminates the process.
func startThinking(cfg *config.Config, logger *slog.Logger) (*thinking.Service, func(), error) {
	b, err := bridge.New(cfg.Thinking.Parameters(),
		bridge.WithLogger(logger),
		bridge.WithConnectTimeout(cfg.ConnectTimeout),
		bridge.WithCallTimeout(cfg.CallTimeout),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("error starting thinking server: %w", err)
	}

	adapter, err := findTool(b, thinking.ToolName)
	if err != nil {
		b.Shutdown()
		return nil, nil, err
	}
	service, err := thinking.NewService(adapter)
	if err != nil {
		b.Shutdown()
		return nil, nil, err
	}
	return service, b.Shutdown, nil
}

// startMemory launches the memory server and wires the knowledge graph
func startMemory(cfg *config.Config, logger *slog.Logger) (*knowledge.Graph, func(), error) {
	b, err := bridge.New(cfg.Memory.Parameters(),
		bridge.WithLogger(logger),
		bridge.WithConnectTimeout(cfg.ConnectTimeout),
		bridge.WithCallTimeout(cfg.CallTimeout),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("error starting memory server: %w", err)
	}

	var tools [3]*bridge.ToolAdapter
	for i, name := range []string{
		knowledge.ToolCreateEntities,
		knowledge.ToolCreateRelations,
		knowledge.ToolSearchNodes,
	} {
		tool, err := findTool(b, name)
		if err != nil {
			b.Shutdown()
			return nil, nil, err
		}
		tools[i] = tool
	}

	graph, err := knowledge.NewGraph(tools[0], tools[1], tools[2])
	if err != nil {
		b.Shutdown()
		return nil, nil, err
	}
	return graph, b.Shutdown, nil
}

func findTool(b *bridge.Bridge, name string) (*bridge.ToolAdapter, error) {
	adapters, err := bridge.Adapters(b)
	if err != nil {
		return nil, err
	}
	adapter, ok := adapters[name]
	if !ok {
		return nil, fmt.Errorf("tool server does not provide %q", name)
	}
	return adapter, nil
}

func printReport(w io.Writer, report *newsdesk.Report) {
	rule := "================================================================================"

	fmt.Fprintln(w, rule)
	fmt.Fprintf(w, "REPORT: %s\n", report.Topic)
	fmt.Fprintln(w, rule)
	fmt.Fprintln(w)
	fmt.Fprintln(w, report.Summary)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "--- Analysis ---")
	fmt.Fprintln(w, report.Analysis)

	fmt.Fprintln(w, "--- History ---")
	fmt.Fprintln(w, report.History)
	fmt.Fprintln(w)

	if report.Graph != "" {
		fmt.Fprintln(w, "--- Knowledge Graph ---")
		fmt.Fprintln(w, report.Graph)
	}

	fmt.Fprintln(w, "--- Sources ---")
	for _, f := range report.Findings {
		if f.Err != nil {
			fmt.Fprintf(w, "%s: unavailable (%v)\n", f.Source.Name, f.Err)
			continue
		}
		fmt.Fprintf(w, "%s: %d URLs\n", f.Source.Name, len(f.URLs))
		for _, u := range f.URLs {
			fmt.Fprintf(w, "  %s\n", u)
		}
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, rule)
	fmt.Fprintf(w, "Report %s generated in %.2fs\n", report.ID, report.Duration.Seconds())
	fmt.Fprintln(w, rule)
}

var (
	configPath string
	verbose    bool
	retries    int
	timeout    time.Duration
	rps        int

	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func init() {
	rootCmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to YAML config file")
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging to stderr")
	rootCmd.Flags().IntVar(&retries, "retries", 3, "Maximum number of retries for failed HTTP requests")
	rootCmd.Flags().DurationVar(&timeout, "timeout", 60*time.Second, "HTTP request timeout")
	rootCmd.Flags().IntVarP(&rps, "rps", "r", 0, "Maximum requests per second (0 for no limit)")

	rootCmd.Version = fmt.Sprintf("%s (commit: %s, built at: %s)", version, commit, date)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
