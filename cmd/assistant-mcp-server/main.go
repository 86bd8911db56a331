package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/joho/godotenv"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"agentic-chat/internal/agent"
	"agentic-chat/internal/config"
	"agentic-chat/internal/intent"
	"agentic-chat/internal/llm"
	"agentic-chat/internal/memory"
	"agentic-chat/internal/tools"
)

type ChatParams struct {
	Message string `json:"message" mcp:"the user message to process"`
}

type MemorySummaryParams struct{}

type ClearMemoryParams struct{}

// AssistantMCPServer exposes the conversational agent over MCP.
type AssistantMCPServer struct {
	agent  *agent.Agent
	memory *memory.Store
}

func (s *AssistantMCPServer) Chat(ctx context.Context, session *mcp.ServerSession, params *mcp.CallToolParamsFor[ChatParams]) (*mcp.CallToolResultFor[any], error) {
	reply := s.agent.ProcessMessage(ctx, params.Arguments.Message)

	payload, err := json.MarshalIndent(reply, "", "  ")
	if err != nil {
		return &mcp.CallToolResultFor[any]{
			IsError: true,
			Content: []mcp.Content{
				&mcp.TextContent{Text: fmt.Sprintf("❌ Failed to encode reply: %v", err)},
			},
		}, nil
	}
	return &mcp.CallToolResultFor[any]{
		Content: []mcp.Content{
			&mcp.TextContent{Text: string(payload)},
		},
	}, nil
}

func (s *AssistantMCPServer) MemorySummary(ctx context.Context, session *mcp.ServerSession, params *mcp.CallToolParamsFor[MemorySummaryParams]) (*mcp.CallToolResultFor[any], error) {
	payload, err := json.MarshalIndent(s.memory.Stats(), "", "  ")
	if err != nil {
		return &mcp.CallToolResultFor[any]{
			IsError: true,
			Content: []mcp.Content{
				&mcp.TextContent{Text: fmt.Sprintf("❌ Failed to encode stats: %v", err)},
			},
		}, nil
	}
	return &mcp.CallToolResultFor[any]{
		Content: []mcp.Content{
			&mcp.TextContent{Text: string(payload)},
		},
	}, nil
}

func (s *AssistantMCPServer) ClearMemory(ctx context.Context, session *mcp.ServerSession, params *mcp.CallToolParamsFor[ClearMemoryParams]) (*mcp.CallToolResultFor[any], error) {
	s.memory.Clear()
	return &mcp.CallToolResultFor[any]{
		Content: []mcp.Content{
			&mcp.TextContent{Text: "Memory cleared successfully"},
		},
	}, nil
}

func main() {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Warning: .env file not found: %v", err)
	}

	cfg := config.New()

	llmClient, err := llm.NewFactory(cfg).CreateClient(string(cfg.LLMProvider), cfg.OpenAIModel)
	if err != nil {
		log.Fatalf("❌ failed to create llm client: %v", err)
	}

	store := memory.Open(cfg.MemoryFilePath, memory.DefaultScoringConfig())

	registry := tools.NewRegistry(
		tools.NewWeatherTool(cfg.OpenWeatherAPIKey),
		tools.NewLocationTool(),
		tools.NewDistanceTool(),
		tools.NewSearchTool(),
		tools.NewYouTubeTool(cfg.YouTubeAPIKey),
	)

	a := agent.New(llmClient, registry, store,
		intent.NewClassifier(intent.DefaultRules()), "", cfg.DefaultLocation)

	assistantServer := &AssistantMCPServer{agent: a, memory: store}

	log.Printf("🚀 Starting Assistant MCP Server")

	server := mcp.NewServer(&mcp.Implementation{
		Name:    "agentic-chat-mcp",
		Version: "1.0.0",
	}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "chat",
		Description: "Send a message to the conversational assistant and get a reply with any tool calls it made",
	}, assistantServer.Chat)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "memory_summary",
		Description: "Get a summary of the assistant's conversation memory",
	}, assistantServer.MemorySummary)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "clear_memory",
		Description: "Clear the assistant's conversation history",
	}, assistantServer.ClearMemory)

	log.Printf("📋 Registered %d tools: chat, memory_summary, clear_memory", 3)
	log.Printf("🔗 Starting server on stdin/stdout...")

	transport := mcp.NewStdioTransport()
	if err := server.Run(context.Background(), transport); err != nil {
		log.Fatalf("❌ Server failed: %v", err)
	}
}
