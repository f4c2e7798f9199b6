package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/gookit/color"
	"github.com/spf13/cobra"

	"github.com/gtempel/jiragraph/internal/config"
	"github.com/gtempel/jiragraph/internal/dot"
	"github.com/gtempel/jiragraph/internal/jira"
	"github.com/gtempel/jiragraph/internal/logger"
	"github.com/gtempel/jiragraph/internal/render"
	"github.com/gtempel/jiragraph/internal/traverse"
)

// defaultDotFile is used in local mode when no output path was given.
const defaultDotFile = "graph_data.dot"

// graph command flags
var (
	graphURL          string
	graphUser         string
	graphPassword     string
	graphCookie       string
	graphInsecure     bool
	graphFile         string
	graphLocal        bool
	graphMaxDepth     int
	graphIncludeLinks []string
	graphExcludeLinks []string
	graphIgnoreTypes  []string
	graphSubtasks     bool
	graphClosed       bool
	graphOther        bool
	graphRetries      int
	graphLabels       []string
	graphNodeShape    string
)

var graphCmd = &cobra.Command{
	Use:   "graph [flags] ISSUE-KEY...",
	Short: "Build and render the dependency graph for issues",
	Long: `Graph fetches the given issues from Jira, follows their issue links
and subtasks breadth-first up to the configured depth, and renders the
discovered relationships.

By default the graph is rendered to a PNG via an external layout service.
With --local, the Graphviz dot description is written instead, for use
with the standard graphviz toolchain (dot, neato, ...).

Example:
  jiragraph graph --url https://jira.example.com --user alice JRA-9 JRA-13
  jiragraph graph --local --exclude-link "is cloned by" --max-depth 2 JRA-9`,
	Args: cobra.ArbitraryArgs,
	RunE: runGraph,
}

func init() {
	graphCmd.Flags().StringVar(&graphURL, "url", "", "Jira base URL (with protocol)")
	graphCmd.Flags().StringVarP(&graphUser, "user", "u", "", "Username for basic auth")
	graphCmd.Flags().StringVarP(&graphPassword, "password", "p", "", "Password for basic auth")
	graphCmd.Flags().StringVar(&graphCookie, "cookie", "", "JSESSIONID session cookie value (overrides basic auth)")
	graphCmd.Flags().BoolVar(&graphInsecure, "insecure", false, "Skip TLS certificate verification")

	graphCmd.Flags().StringVarP(&graphFile, "file", "f", "", "Output file path")
	graphCmd.Flags().BoolVarP(&graphLocal, "local", "l", false, "Write the dot description instead of rendering an image")
	graphCmd.Flags().StringVar(&graphNodeShape, "node-shape", "", "Default Graphviz node shape (box, circle, ellipse, ...)")

	graphCmd.Flags().IntVar(&graphMaxDepth, "max-depth", 0, "Maximum hop distance from any seed (0 = seeds only)")
	graphCmd.Flags().StringArrayVarP(&graphIncludeLinks, "include-link", "i", nil, "Only follow this link type (repeatable)")
	graphCmd.Flags().StringArrayVarP(&graphExcludeLinks, "exclude-link", "x", nil, "Do not follow this link type (repeatable)")
	graphCmd.Flags().StringArrayVar(&graphIgnoreTypes, "ignore-type", nil, "Drop issues of this type from the graph (repeatable)")
	graphCmd.Flags().BoolVar(&graphSubtasks, "traverse-subtasks", true, "Follow subtask relationships")
	graphCmd.Flags().BoolVar(&graphClosed, "traverse-closed", true, "Expand links of closed/done issues")
	graphCmd.Flags().BoolVar(&graphOther, "traverse-other-projects", true, "Follow links into other projects")
	graphCmd.Flags().IntVar(&graphRetries, "retries", 0, "Retries for transient fetch failures on non-seed issues")

	graphCmd.Flags().StringArrayVar(&graphLabels, "label", nil, "Add all issues carrying this label as seeds (repeatable)")

	rootCmd.AddCommand(graphCmd)
}

func runGraph(cmd *cobra.Command, args []string) error {
	if len(args) == 0 && len(graphLabels) == 0 {
		return fmt.Errorf("at least one issue key or --label is required")
	}

	// Load configuration (optional file; flags fill in or override)
	cfg, err := config.LoadOptional(GetConfigFile())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	overrides := GetCLIOverrides()
	cfg.ApplyOverrides(overrides.LogLevel, overrides.LogFormat)
	applyGraphFlags(cmd, cfg)

	if err := cfg.Validate(); err != nil {
		return err
	}

	// Initialize logger
	log, err := logger.New(&cfg.Logging)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer log.Sync()

	ctx := context.Background()
	client := jira.NewClient(&cfg.Jira, log)

	// Resolve seeds: positional keys plus label search results
	seeds := append([]string{}, args...)
	if len(graphLabels) > 0 {
		labelSeeds, err := seedsFromLabels(ctx, client, graphLabels)
		if err != nil {
			return fmt.Errorf("label search failed: %w", err)
		}
		log.Infow("Resolved labels to seeds", "labels", graphLabels, "issues", len(labelSeeds))
		seeds = append(seeds, labelSeeds...)
	}
	if len(seeds) == 0 {
		return fmt.Errorf("no issues matched the given labels")
	}

	// Traverse
	traverser := traverse.New(client, traverse.OptionsFromConfig(&cfg.Traversal), log)
	result, err := traverser.Traverse(ctx, seeds)
	if err != nil {
		return err
	}

	// Build the graph description
	description := dot.Build(result, dot.Options{
		NodeShape: cfg.Output.NodeShape,
		BrowseURL: client.BrowseURL,
	})

	// Produce the output artifact
	outputPath := cfg.Output.File
	if cfg.Output.Local {
		if err := render.WriteDot(description, outputPath); err != nil {
			return err
		}
	} else {
		renderer := render.NewRenderer(cfg.Output.ChartURL, log)
		if err := renderer.RenderPNG(ctx, description, outputPath); err != nil {
			return err
		}
	}

	color.Success.Printf("Wrote %s (%d issues, %d edges)\n",
		outputPath, result.Visited.Len(), len(result.Edges))
	return nil
}

// applyGraphFlags merges graph command flags over the loaded config.
// Boolean and numeric flags only apply when explicitly set, so file
// values survive when the flag is left at its default.
func applyGraphFlags(cmd *cobra.Command, cfg *config.Config) {
	if graphURL != "" {
		cfg.Jira.URL = graphURL
	}
	if graphUser != "" {
		cfg.Jira.User = graphUser
	}
	if graphPassword != "" {
		cfg.Jira.Password = graphPassword
	}
	if graphCookie != "" {
		cfg.Jira.Cookie = graphCookie
	}
	if cmd.Flags().Changed("insecure") {
		cfg.Jira.Insecure = graphInsecure
	}

	if cmd.Flags().Changed("max-depth") {
		cfg.Traversal.MaxDepth = graphMaxDepth
	}
	if len(graphIncludeLinks) > 0 {
		cfg.Traversal.IncludeLinks = graphIncludeLinks
	}
	if len(graphExcludeLinks) > 0 {
		cfg.Traversal.ExcludeLinks = graphExcludeLinks
	}
	if len(graphIgnoreTypes) > 0 {
		cfg.Traversal.IgnoreTypes = graphIgnoreTypes
	}
	if cmd.Flags().Changed("traverse-subtasks") {
		cfg.Traversal.TraverseSubtasks = graphSubtasks
	}
	if cmd.Flags().Changed("traverse-closed") {
		cfg.Traversal.TraverseClosed = graphClosed
	}
	if cmd.Flags().Changed("traverse-other-projects") {
		cfg.Traversal.TraverseOtherProjects = graphOther
	}
	if cmd.Flags().Changed("retries") {
		cfg.Traversal.Retries = graphRetries
	}

	if cmd.Flags().Changed("local") {
		cfg.Output.Local = graphLocal
	}
	if graphFile != "" {
		cfg.Output.File = graphFile
	} else if cfg.Output.Local && !cmd.Flags().Changed("file") && cfg.Output.File == config.DefaultConfig().Output.File {
		cfg.Output.File = defaultDotFile
	}
	if graphNodeShape != "" {
		cfg.Output.NodeShape = graphNodeShape
	}
}

// seedsFromLabels resolves label names into issue keys via a JQL search.
func seedsFromLabels(ctx context.Context, client *jira.Client, labels []string) ([]string, error) {
	quoted := make([]string, 0, len(labels))
	for _, label := range labels {
		quoted = append(quoted, fmt.Sprintf("%q", label))
	}

	issues, err := client.Search(ctx, fmt.Sprintf("labels in (%s)", strings.Join(quoted, ",")))
	if err != nil {
		return nil, err
	}

	keys := make([]string, 0, len(issues))
	for _, issue := range issues {
		keys = append(keys, issue.Key)
	}
	return keys, nil
}
