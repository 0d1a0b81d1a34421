// Package mcpserver exposes ordering, stock and report operations as Model Context
// Protocol tools so an assistant can drive the shop.
package mcpserver

import (
	"github.com/mark3labs/mcp-go/server"

	"nainai/backend/internal/service"
)

const (
	serverName    = "nainai-tea"
	serverVersion = "0.3.0"
)

func New(svc *service.Service) *server.MCPServer {
	s := server.NewMCPServer(
		serverName,
		serverVersion,
		server.WithToolCapabilities(true),
	)
	registerTools(s, svc)
	return s
}
