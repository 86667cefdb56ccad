package mcptools

import (
	"context"
	"errors"
	"net/http"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// version is set by the linker at build time.
var version = "dev"

// NewServer creates an MCP server with every code graph tool registered.
func NewServer(svc *Service) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    "codegraph",
		Version: version,
	}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "index_project",
		Description: "Index a directory: discover source files, parse them with tree-sitter into per-language code graphs, cluster files by import and save everything into the graph store.",
	}, svc.IndexProject)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "parse_file",
		Description: "Parse one source file and return its declarations (classes, methods, fields...) and the EXTENDS, IMPLEMENTS and MADE_OF relationships between them.",
	}, svc.ParseFile)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "parse_imports",
		Description: "List the import statements of one source file with their path, kind, alias and imported names.",
	}, svc.ParseImports)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "extract_names",
		Description: "List the distinct method, class or field names declared in one source file.",
	}, svc.ExtractNames)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "check_syntax",
		Description: "Report whether one source file contains syntax errors and where they are.",
	}, svc.CheckSyntax)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "query_nodes",
		Description: "Search indexed nodes by name substring. Optionally filter by node kind and limit results.",
	}, svc.QueryNodes)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_related",
		Description: "Walk inheritance and containment relationships from an indexed node, downstream or upstream, up to a depth.",
	}, svc.GetRelated)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_clusters",
		Description: "Return the file clusters found by the last index run. Clusters are groups of files connected by imports, with a cohesion score.",
	}, svc.GetClusters)

	return server
}

// RunStdio serves the tools over stdin and stdout until ctx is cancelled or
// the client disconnects.
func RunStdio(ctx context.Context, svc *Service) error {
	return NewServer(svc).Run(ctx, &mcp.StdioTransport{})
}

// RunHTTP serves the tools over streamable HTTP on addr.
func RunHTTP(ctx context.Context, svc *Service, addr string) error {
	server := NewServer(svc)

	handler := mcp.NewStreamableHTTPHandler(
		func(_ *http.Request) *mcp.Server { return server },
		nil,
	)

	httpServer := &http.Server{
		Addr:    addr,
		Handler: handler,
	}

	// Shutdown gracefully when context is cancelled.
	go func() {
		<-ctx.Done()
		_ = httpServer.Shutdown(context.Background())
	}()

	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
