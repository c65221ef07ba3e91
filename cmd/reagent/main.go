package main

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/reagent-go/reagent"
	"github.com/reagent-go/reagent/llm/claude"
	"github.com/reagent-go/reagent/llm/gemini"
	"github.com/reagent-go/reagent/llm/openai"
	"github.com/reagent-go/reagent/mcp"
	"github.com/reagent-go/reagent/parser"
)

func main() {
	app := &cli.Command{
		Name:  "reagent",
		Usage: "chat with a ReAct agent from the terminal",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "provider",
				Usage: "model provider (claude, openai, gemini)",
				Value: "claude",
			},
			&cli.StringFlag{
				Name:  "model",
				Usage: "model name (provider default if empty)",
			},
			&cli.StringFlag{
				Name:    "api-key",
				Usage:   "provider API key",
				Sources: cli.EnvVars("REAGENT_API_KEY"),
			},
			&cli.StringFlag{
				Name:  "format",
				Usage: "structured output format (react, tagged)",
				Value: "react",
			},
			&cli.StringFlag{
				Name:  "mcp",
				Usage: "path to a local MCP server executable providing tools",
			},
			&cli.IntFlag{
				Name:  "loop-limit",
				Usage: "maximum rounds per request",
				Value: reagent.DefaultLoopLimit,
			},
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "log agent internals to stderr",
			},
		},
		Action: run,
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		slog.Error("command failed", slog.Any("error", err))
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newClient(ctx context.Context, cmd *cli.Command) (reagent.StreamClient, error) {
	apiKey := cmd.String("api-key")
	model := cmd.String("model")

	switch cmd.String("provider") {
	case "claude":
		var options []claude.Option
		if model != "" {
			options = append(options, claude.WithModel(model))
		}
		return claude.New(ctx, apiKey, options...)
	case "openai":
		var options []openai.Option
		if model != "" {
			options = append(options, openai.WithModel(model))
		}
		return openai.New(ctx, apiKey, options...)
	case "gemini":
		var options []gemini.Option
		if model != "" {
			options = append(options, gemini.WithModel(model))
		}
		return gemini.New(ctx, apiKey, options...)
	default:
		return nil, fmt.Errorf("unknown provider: %s", cmd.String("provider"))
	}
}

func run(ctx context.Context, cmd *cli.Command) error {
	client, err := newClient(ctx, cmd)
	if err != nil {
		return err
	}

	logger := slog.New(slog.DiscardHandler)
	if cmd.Bool("verbose") {
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}

	baseOptions := []reagent.Option{
		reagent.WithFormat(parser.Format(cmd.String("format"))),
		reagent.WithLoopLimit(int(cmd.Int("loop-limit"))),
		reagent.WithLogger(logger),
		reagent.WithMessageHook(printMessage),
	}

	if path := cmd.String("mcp"); path != "" {
		invoker, err := mcp.NewStdio(ctx, path, nil)
		if err != nil {
			return err
		}
		defer invoker.Close()

		catalogue, err := invoker.Specs(ctx)
		if err != nil {
			return err
		}
		baseOptions = append(baseOptions, reagent.WithInvoker(invoker, catalogue...))
	}

	var session []reagent.Turn
	reader := bufio.NewReader(os.Stdin)

	for {
		fmt.Print("You: ")
		line, err := reader.ReadString('\n')
		if err != nil {
			return nil
		}
		prompt := strings.TrimSpace(line)
		if prompt == "" {
			continue
		}
		if prompt == "/quit" {
			return nil
		}

		options := append(baseOptions, reagent.WithSeedTurns(session...))
		agent := reagent.New(client, options...)

		answer, err := agent.Execute(ctx, prompt)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			continue
		}

		session = append(session,
			reagent.Turn{Role: reagent.RoleUser, Content: prompt},
			reagent.Turn{Role: reagent.RoleAssistant, Content: answer},
		)
	}
}

func printMessage(ctx context.Context, msg *reagent.Message) error {
	switch {
	case msg.Type == reagent.MessageTypeThought && msg.Status == reagent.MessageStatusStart:
		fmt.Print("\n[thinking] ")
	case msg.Type == reagent.MessageTypeThought && msg.Status == reagent.MessageStatusDelta:
		fmt.Print(msg.Content)
	case msg.Type == reagent.MessageTypeThought && msg.Status == reagent.MessageStatusEnd:
		fmt.Println()
	case msg.Type == reagent.MessageTypeAnswer && msg.Status == reagent.MessageStatusDelta:
		fmt.Print(msg.Content)
	case msg.Type == reagent.MessageTypeAnswer && msg.Status == reagent.MessageStatusEnd:
		fmt.Println()
	case msg.Type == reagent.MessageTypeToolUse && msg.Status == reagent.MessageStatusStart:
		fmt.Printf("\n[tool] %s\n", msg.Content)
	case msg.Type == reagent.MessageTypeError:
		fmt.Fprintf(os.Stderr, "\n[parse error] %s\n", msg.Content)
	}
	return nil
}
