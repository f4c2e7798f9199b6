package traverse

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/gtempel/jiragraph/internal/config"
	"github.com/gtempel/jiragraph/internal/jira"
	"github.com/gtempel/jiragraph/internal/logger"
)

// SubtaskLinkLabel is the pseudo link type under which subtask
// relationships pass through the include/exclude filter.
const SubtaskLinkLabel = "subtask of"

// Fetcher retrieves one issue per call. Satisfied by *jira.Client.
type Fetcher interface {
	Issue(ctx context.Context, key string) (*jira.Issue, error)
}

// Options control how far and through which relationships the walk goes.
type Options struct {
	// MaxDepth limits hop distance from any seed; 0 fetches seeds only.
	MaxDepth int
	// IncludeLinkTypes allows only the listed link-type labels when
	// non-empty. ExcludeLinkTypes wins when both match a label.
	IncludeLinkTypes []string
	ExcludeLinkTypes []string
	// IgnoreTypes drops relationships whose target is of a listed issue
	// type: no edge is emitted and the target is not followed.
	IgnoreTypes []string
	// TraverseSubtasks treats a parent's subtasks as links.
	TraverseSubtasks bool
	// SameProjectOnly keeps the walk inside the seeds' projects: edges
	// to outside issues are still emitted, but those issues are never
	// fetched.
	SameProjectOnly bool
	// TraverseClosed expands issues whose status category is done.
	// Closed issues are always recorded as nodes either way.
	TraverseClosed bool
	// Retries, when positive, retries transient transport failures on
	// non-seed fetches with exponential backoff before giving up on the
	// key. Seed fetches are never retried.
	Retries int
}

// OptionsFromConfig maps the traversal configuration section onto Options.
func OptionsFromConfig(cfg *config.TraversalConfig) Options {
	return Options{
		MaxDepth:         cfg.MaxDepth,
		IncludeLinkTypes: cfg.IncludeLinks,
		ExcludeLinkTypes: cfg.ExcludeLinks,
		IgnoreTypes:      cfg.IgnoreTypes,
		TraverseSubtasks: cfg.TraverseSubtasks,
		TraverseClosed:   cfg.TraverseClosed,
		SameProjectOnly:  !cfg.TraverseOtherProjects,
		Retries:          cfg.Retries,
	}
}

// Traverser performs breadth-first expansion from seed keys, producing
// the deduplicated edge set and the issue metadata for node styling.
type Traverser struct {
	fetcher     Fetcher
	opts        Options
	include     map[string]bool
	exclude     map[string]bool
	ignoreTypes map[string]bool
	log         *logger.Logger
}

// New creates a Traverser. A nil logger falls back to the default.
func New(fetcher Fetcher, opts Options, log *logger.Logger) *Traverser {
	if log == nil {
		log = logger.NewDefault()
	}
	return &Traverser{
		fetcher:     fetcher,
		opts:        opts,
		include:     labelSet(opts.IncludeLinkTypes),
		exclude:     labelSet(opts.ExcludeLinkTypes),
		ignoreTypes: labelSet(opts.IgnoreTypes),
		log:         log,
	}
}

func labelSet(labels []string) map[string]bool {
	set := make(map[string]bool, len(labels))
	for _, label := range labels {
		set[strings.TrimSpace(label)] = true
	}
	return set
}

// reference is one traversable relationship found on a fetched issue,
// covering both typed links and subtask membership.
type reference struct {
	edge       Edge
	target     string // key to enqueue for expansion
	targetType string // issue type of the target, when known
}

// projectKey returns the project portion of an issue key (the text
// before the first dash), or the whole key when there is none.
func projectKey(key string) string {
	if i := strings.Index(key, "-"); i > 0 {
		return key[:i]
	}
	return key
}

// Traverse explores the dependency graph outward from the seeds.
// A fetch failure on a seed aborts the run; failures on other keys are
// logged, marked visited-with-error, and skipped. Termination is
// guaranteed: every loop iteration either grows the visited set or
// drains an already-visited key from the frontier.
func (t *Traverser) Traverse(ctx context.Context, seeds []string) (*Result, error) {
	if len(seeds) == 0 {
		return nil, fmt.Errorf("at least one seed issue key is required")
	}

	startTime := time.Now()

	visited := NewVisitedSet()
	frontier := NewFrontier()
	seedSet := make(map[string]bool, len(seeds))
	seedProjects := make(map[string]bool, len(seeds))
	var edges []Edge
	emitted := make(map[edgeKey]bool)

	for _, seed := range seeds {
		seedSet[seed] = true
		seedProjects[projectKey(seed)] = true
		frontier.Push(seed, 0)
	}

	t.log.Infow("Starting traversal",
		"seeds", len(seedSet),
		"max_depth", t.opts.MaxDepth,
	)

	for frontier.Len() > 0 {
		item, _ := frontier.Pop()
		if visited.Has(item.key) {
			continue
		}

		issue, err := t.fetch(ctx, item.key, seedSet[item.key])
		if err != nil {
			if seedSet[item.key] {
				return nil, fmt.Errorf("failed to fetch seed issue %s: %w", item.key, err)
			}
			t.log.Warnw("Skipping issue after fetch failure",
				"issue", item.key,
				"depth", item.depth,
				"error", err,
			)
			visited.AddError(item.key, item.depth, err)
			continue
		}
		visited.Add(issue, item.depth)

		// Issues at the depth bound are recorded as nodes but none of
		// their relationships are processed.
		if item.depth >= t.opts.MaxDepth {
			continue
		}

		// Edges are emitted for every processed link; enqueueing of the
		// targets of a closed issue is gated separately.
		expand := t.opts.TraverseClosed || !issue.Closed
		if !expand {
			t.log.Debugw("Not expanding closed issue", "issue", issue.Key)
		}

		for _, ref := range t.references(issue) {
			if !t.allowed(ref.edge.Label) {
				continue
			}
			if t.ignoreTypes[ref.targetType] {
				t.log.Debugw("Ignoring issue by type",
					"issue", ref.target,
					"type", ref.targetType,
				)
				continue
			}

			key := edgeKey{from: ref.edge.From, to: ref.edge.To, label: ref.edge.Label}
			if !emitted[key] {
				emitted[key] = true
				edges = append(edges, ref.edge)
			}

			if t.opts.SameProjectOnly && !seedProjects[projectKey(ref.target)] {
				continue
			}
			if expand && !visited.Has(ref.target) {
				frontier.Push(ref.target, item.depth+1)
			}
		}
	}

	t.log.Infow("Traversal complete",
		"issues", visited.Len(),
		"edges", len(edges),
		"duration", time.Since(startTime),
	)

	return &Result{Visited: visited, Edges: edges}, nil
}

// references lists the traversable relationships of an issue in document
// order: typed links first, then subtasks when enabled. Subtask edges
// point from child to parent, the way the relationship reads.
func (t *Traverser) references(issue *jira.Issue) []reference {
	refs := make([]reference, 0, len(issue.Links)+len(issue.Subtasks))

	for _, link := range issue.Links {
		direction := Forward
		if link.Direction == jira.Inward {
			direction = Back
		}
		refs = append(refs, reference{
			edge: Edge{
				From:      issue.Key,
				To:        link.TargetKey,
				Label:     link.Type,
				Direction: direction,
			},
			target:     link.TargetKey,
			targetType: link.TargetType,
		})
	}

	if t.opts.TraverseSubtasks {
		for _, sub := range issue.Subtasks {
			refs = append(refs, reference{
				edge: Edge{
					From:      sub.Key,
					To:        issue.Key,
					Label:     SubtaskLinkLabel,
					Direction: Forward,
				},
				target:     sub.Key,
				targetType: sub.Type,
			})
		}
	}

	return refs
}

// allowed applies the include/exclude link-type filter. Exclude takes
// precedence when both match.
func (t *Traverser) allowed(label string) bool {
	label = strings.TrimSpace(label)
	if t.exclude[label] {
		return false
	}
	if len(t.include) > 0 && !t.include[label] {
		return false
	}
	return true
}

// fetch performs one issue lookup. Non-seed lookups are retried on
// transient transport failures when Retries is positive; everything else
// goes through exactly once.
func (t *Traverser) fetch(ctx context.Context, key string, seed bool) (*jira.Issue, error) {
	if seed || t.opts.Retries <= 0 {
		return t.fetcher.Issue(ctx, key)
	}

	// BackOff implementations are stateful; always use a fresh instance.
	bo := backoff.WithMaxRetries(backoff.NewExponentialBackOff(), uint64(t.opts.Retries))

	var issue *jira.Issue
	err := backoff.Retry(func() error {
		var fetchErr error
		issue, fetchErr = t.fetcher.Issue(ctx, key)
		if fetchErr != nil && !jira.IsTransient(fetchErr) {
			return backoff.Permanent(fetchErr)
		}
		return fetchErr
	}, backoff.WithContext(bo, ctx))
	if err != nil {
		return nil, err
	}
	return issue, nil
}
