// Package config provides configuration structures and loading for jiragraph.
package config

// Config represents the complete application configuration.
type Config struct {
	Jira      JiraConfig      `yaml:"jira" mapstructure:"jira"`
	Traversal TraversalConfig `yaml:"traversal" mapstructure:"traversal"`
	Output    OutputConfig    `yaml:"output" mapstructure:"output"`
	Logging   LoggingConfig   `yaml:"logging" mapstructure:"logging"`
}

// JiraConfig represents the Jira server connection configuration.
type JiraConfig struct {
	URL      string `yaml:"url" mapstructure:"url"`
	User     string `yaml:"user" mapstructure:"user"`
	Password string `yaml:"password" mapstructure:"password"`
	// Cookie is a JSESSIONID session value; when set it takes precedence
	// over basic credentials.
	Cookie   string `yaml:"cookie" mapstructure:"cookie"`
	Insecure bool   `yaml:"insecure" mapstructure:"insecure"` // skip TLS certificate verification
}

// TraversalConfig represents graph walk settings.
type TraversalConfig struct {
	MaxDepth         int      `yaml:"max_depth" mapstructure:"max_depth"`
	IncludeLinks     []string `yaml:"include_links" mapstructure:"include_links"`
	ExcludeLinks     []string `yaml:"exclude_links" mapstructure:"exclude_links"`
	IgnoreTypes      []string `yaml:"ignore_types" mapstructure:"ignore_types"` // issue types to drop from the graph
	TraverseSubtasks bool     `yaml:"traverse_subtasks" mapstructure:"traverse_subtasks"`
	TraverseClosed   bool     `yaml:"traverse_closed" mapstructure:"traverse_closed"`
	// TraverseOtherProjects, when false, keeps the walk inside the
	// seeds' projects.
	TraverseOtherProjects bool `yaml:"traverse_other_projects" mapstructure:"traverse_other_projects"`
	Retries               int  `yaml:"retries" mapstructure:"retries"`
}

// OutputConfig represents rendering and output settings.
type OutputConfig struct {
	File      string `yaml:"file" mapstructure:"file"`             // output file path
	Local     bool   `yaml:"local" mapstructure:"local"`           // write dot text instead of rendering an image
	NodeShape string `yaml:"node_shape" mapstructure:"node_shape"` // default Graphviz node shape
	ChartURL  string `yaml:"chart_url" mapstructure:"chart_url"`   // graphviz rendering endpoint
}

// LoggingConfig represents logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`   // debug, info, warn, error
	Format string `yaml:"format" mapstructure:"format"` // json or text
	Output string `yaml:"output" mapstructure:"output"` // stdout, stderr, or file path
}

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig() *Config {
	return &Config{
		Traversal: TraversalConfig{
			MaxDepth:              3,
			TraverseSubtasks:      true,
			TraverseClosed:        true,
			TraverseOtherProjects: true,
		},
		Output: OutputConfig{
			File:      "issue_graph.png",
			NodeShape: "box",
			ChartURL:  "https://chart.apis.google.com/chart",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
			Output: "stderr",
		},
	}
}
