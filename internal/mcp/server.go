package mcp

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Version is set at build time.
var Version = "dev"

// Resource URIs.
const (
	URISuggest = "jacocogate://suggest"
	URIHistory = "jacocogate://history"
)

// Server wraps the application service with MCP protocol handling.
type Server struct {
	svc    Service
	config Config
	server *mcp.Server
}

// New creates a new MCP server wrapping the given service.
func New(svc Service, cfg Config) *Server {
	if cfg.ConfigPath == "" {
		cfg.ConfigPath = DefaultConfig().ConfigPath
	}

	s := &Server{svc: svc, config: cfg}
	s.server = mcp.NewServer(&mcp.Implementation{
		Name:    "jacocogate",
		Version: Version,
	}, nil)
	s.registerTools()
	s.registerResources()
	return s
}

// Run serves over stdio and blocks until the context is canceled or the
// client disconnects.
func (s *Server) Run(ctx context.Context) error {
	if err := s.server.Run(ctx, &mcp.StdioTransport{}); err != nil {
		return fmt.Errorf("mcp server error: %w", err)
	}
	return nil
}

func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "evaluate",
		Description: "Evaluate a JaCoCo coverage report against the configured rules tables. Returns the verdict and every violation.",
	}, s.handleEvaluate)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "evaluate_tables",
		Description: "Evaluate coverage rows against rules rows passed inline as CSV text, without touching the filesystem.",
	}, s.handleEvaluateTables)
}

func (s *Server) registerResources() {
	s.server.AddResource(&mcp.Resource{
		URI:         URISuggest,
		Name:        "Rule Suggestions",
		Description: "Package-level LINE rules proposed from the current report",
		MIMEType:    "application/json",
	}, s.handleSuggestResource)

	s.server.AddResource(&mcp.Resource{
		URI:         URIHistory,
		Name:        "Run History",
		Description: "Recorded evaluation runs with LINE coverage statistics",
		MIMEType:    "application/json",
	}, s.handleHistoryResource)
}
