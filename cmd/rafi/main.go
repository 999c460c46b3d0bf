package main

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/marko/rafi/config"
	"github.com/marko/rafi/internal/agent"
	"github.com/marko/rafi/internal/db"
	"github.com/marko/rafi/internal/discord"
	"github.com/marko/rafi/internal/insight"
	"github.com/marko/rafi/internal/llm"
	"github.com/marko/rafi/internal/memory"
	"github.com/marko/rafi/internal/planner"
	"github.com/marko/rafi/internal/routine"
	"github.com/marko/rafi/internal/scheduler"
	"github.com/marko/rafi/internal/search"
)

func main() {
	cfg := config.Load()

	database, err := db.Open(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer database.Close()

	apiKey := cfg.AnthropicKey
	if cfg.LLMProvider == "openai" {
		apiKey = cfg.OpenAIKey
	}

	client, err := llm.NewClient(llm.ProviderConfig{
		Provider:  cfg.LLMProvider,
		APIKey:    apiKey,
		AuthToken: cfg.AnthropicToken,
		Model:     cfg.LLMModel,
		BaseURL:   cfg.OllamaBaseURL,
	})
	if err != nil {
		log.Fatalf("failed to create LLM client: %v", err)
	}

	// Services are singletons wired once here and handed around by
	// reference; nothing holds hidden global state.
	tracker := routine.New(database)
	mem := memory.New(database)
	plan := planner.New(database)
	insights := insight.New(database, mem)
	searcher := search.NewClient(cfg.SearchAPIKey, cfg.SearchCX)

	ag := agent.New(database, client, tracker, mem, plan, insights, searcher)

	// If Discord token is set, run as bot
	if cfg.DiscordToken != "" {
		runBot(cfg, database, ag, tracker)
		return
	}

	// Otherwise, CLI mode
	runCLI(ag, tracker)
}

func runCLI(ag *agent.Agent, tracker *routine.Tracker) {
	ctx := context.Background()
	scanner := bufio.NewScanner(os.Stdin)

	// Check if stdin is a pipe (non-interactive)
	stat, _ := os.Stdin.Stat()
	isPipe := (stat.Mode() & os.ModeCharDevice) == 0

	if !isPipe {
		fmt.Print("rafi> ")
	}

	sess := ag.NewSession()

	for scanner.Scan() {
		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			if !isPipe {
				fmt.Print("rafi> ")
			}
			continue
		}
		if input == "exit" || input == "quit" {
			break
		}
		if input == "reset" {
			sess.Reset()
			fmt.Println("conversation cleared")
			if !isPipe {
				fmt.Print("rafi> ")
			}
			continue
		}

		now := ag.Now()
		if err := tracker.Record(routine.ActionChatMessage, map[string]any{
			"hour": now.Hour(), "day_of_week": int(now.Weekday()),
		}); err != nil {
			log.Printf("recording chat action: %v", err)
		}

		reply, err := sess.Send(ctx, input)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
		} else {
			fmt.Println(reply)
		}

		if isPipe {
			break // single exchange in pipe mode
		}
		fmt.Print("rafi> ")
	}
}

func runBot(cfg *config.Config, database *db.DB, ag *agent.Agent, tracker *routine.Tracker) {
	bot, err := discord.NewBot(cfg.DiscordToken, ag, database, tracker)
	if err != nil {
		log.Fatalf("failed to start Discord bot: %v", err)
	}
	defer bot.Close()

	sched := scheduler.New(database, ag, cfg.DiscordWebhook, bot.SendDM)
	if err := sched.Start(cfg.CheckInCron); err != nil {
		log.Fatalf("failed to start scheduler: %v", err)
	}
	defer sched.Stop()

	log.Println("bot is running. Press Ctrl+C to exit.")
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Println("shutting down.")
}
