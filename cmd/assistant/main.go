package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"agentic-chat/internal/agent"
	"agentic-chat/internal/analytics"
	"agentic-chat/internal/config"
	"agentic-chat/internal/intent"
	"agentic-chat/internal/llm"
	"agentic-chat/internal/memory"
	"agentic-chat/internal/scheduler"
	"agentic-chat/internal/server"
	"agentic-chat/internal/telegram"
	"agentic-chat/internal/tools"
)

func main() {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Warning: .env file not found: %v", err)
	}

	mode := flag.String("mode", "web", "run mode: web, telegram or cli")
	flag.Parse()

	cfg := config.New()

	llmClient, err := llm.NewFactory(cfg).CreateClient(string(cfg.LLMProvider), cfg.OpenAIModel)
	if err != nil {
		log.Fatalf("failed to create llm client: %v", err)
	}

	store := memory.Open(cfg.MemoryFilePath, memory.DefaultScoringConfig())

	registry := tools.NewRegistry(
		tools.NewWeatherTool(cfg.OpenWeatherAPIKey),
		tools.NewLocationTool(),
		tools.NewDistanceTool(),
		tools.NewSearchTool(),
		tools.NewYouTubeTool(cfg.YouTubeAPIKey),
	)
	for _, t := range registry.List() {
		log.Printf("🔧 tool registered: %s", t.Name())
	}

	a := agent.New(llmClient, registry, store,
		intent.NewClassifier(intent.DefaultRules()),
		readSystemPrompt(cfg.SystemPromptPath), cfg.DefaultLocation)

	sched := scheduler.New(cfg.StatsReportCron)
	sched.SetReportFunction(func(ctx context.Context) error {
		stats := analytics.AnalyzeDaily(store.All(), time.Now().UTC())
		log.Print(stats.GenerateReportSummary())
		return nil
	})
	if err := sched.Start(); err != nil {
		log.Printf("⚠️ failed to start scheduler: %v", err)
	}
	defer sched.Stop()

	switch *mode {
	case "web":
		srv := server.New(a, store, cfg.Host, cfg.Port)
		if err := srv.Start(); err != nil {
			log.Fatalf("server stopped: %v", err)
		}
	case "telegram":
		if cfg.TelegramBotToken == "" {
			log.Fatalf("TELEGRAM_BOT_TOKEN is required for telegram mode")
		}
		bot, err := telegram.New(cfg.TelegramBotToken, a, store, cfg.AllowedUsers)
		if err != nil {
			log.Fatalf("failed to create telegram bot: %v", err)
		}
		bot.Start(context.Background())
	case "cli":
		runInteractive(a, store)
	default:
		log.Fatalf("unknown mode %q (expected web, telegram or cli)", *mode)
	}
}

func readSystemPrompt(path string) string {
	if path == "" {
		return ""
	}
	data, err := os.ReadFile(path)
	if err != nil {
		log.Printf("Warning: system prompt not loaded from %s: %v", path, err)
		return ""
	}
	return strings.TrimSpace(string(data))
}

// runInteractive is the terminal chat loop with the memory and clear
// commands.
func runInteractive(a *agent.Agent, store *memory.Store) {
	fmt.Println(strings.Repeat("=", 60))
	fmt.Println("🤖 Agentic Chat Assistant")
	fmt.Println(strings.Repeat("=", 60))
	fmt.Println("Available tools: Web Search, YouTube, Weather, Location")
	fmt.Println("Type 'quit', 'exit', or 'bye' to end the session")
	fmt.Println("Type 'memory' to see conversation summary")
	fmt.Println("Type 'clear' to clear conversation history")
	fmt.Println(strings.Repeat("=", 60))

	scanner := bufio.NewScanner(os.Stdin)
	ctx := context.Background()

	for {
		fmt.Print("You: ")
		if !scanner.Scan() {
			break
		}
		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}

		switch strings.ToLower(input) {
		case "quit", "exit", "bye":
			fmt.Println("👋 Goodbye!")
			return
		case "memory":
			stats := store.Stats()
			fmt.Printf("\n📊 Memory Summary:\n")
			fmt.Printf("Total conversations: %d\n", stats.TotalConversations)
			fmt.Printf("Recent topics: %v\n", stats.RecentTopics)
			fmt.Printf("Session data: %v\n\n", stats.SessionDataKeys)
			continue
		case "clear":
			store.Clear()
			fmt.Println("🗑️ Conversation history cleared!")
			continue
		}

		reply := a.ProcessMessage(ctx, input)
		fmt.Printf("🤖 Assistant: %s\n", reply.Response)
		if len(reply.ToolCalls) > 0 {
			var names []string
			for _, call := range reply.ToolCalls {
				names = append(names, call.Tool)
			}
			fmt.Printf("\n🔧 Tools used: %s\n", strings.Join(names, ", "))
		}
		fmt.Println()
	}
}
