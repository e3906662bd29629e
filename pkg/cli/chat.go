package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/urfave/cli/v3"

	"github.com/anglerlab/finbot/pkg/cli/config"
)

var exampleQueries = []string{
	"Do I need a license for freshwater fishing?",
	"What is the bag limit for brown trout?",
	"I caught a 26cm brown trout, can I keep it?",
	"What's the fishing weather like in Hobart?",
	"Where are good spots for flathead?",
}

func cmdChat() *cli.Command {
	var geminiCfg config.Gemini
	var corpusCfg config.Corpus
	var toolsCfg config.Tools

	var flags []cli.Flag
	flags = append(flags, geminiCfg.Flags()...)
	flags = append(flags, corpusCfg.Flags()...)
	flags = append(flags, toolsCfg.Flags()...)

	return &cli.Command{
		Name:  "chat",
		Usage: "Interactive question-and-answer session in the terminal",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			uc, err := buildPipeline(ctx, &geminiCfg, &corpusCfg, &toolsCfg)
			if err != nil {
				return err
			}

			title := color.New(color.FgCyan, color.Bold)
			prompt := color.New(color.FgGreen, color.Bold)
			muted := color.New(color.FgHiBlack)
			warn := color.New(color.FgYellow)

			title.Println("🎣 Tasmania Fishing Assistant")
			fmt.Println("Ask about regulations, species, licenses, fishing spots and weather.")
			fmt.Println("Type 'exit' or 'quit' to leave. Try for example:")
			for _, q := range exampleQueries {
				muted.Printf("  • %s\n", q)
			}
			fmt.Println()

			scanner := bufio.NewScanner(os.Stdin)
			for {
				prompt.Print("you> ")
				if !scanner.Scan() {
					break
				}
				line := strings.TrimSpace(scanner.Text())
				if line == "" {
					continue
				}
				if line == "exit" || line == "quit" {
					break
				}

				answer := uc.Ask(ctx, line)

				fmt.Println()
				fmt.Println(answer.Answer)
				if len(answer.Citations) > 0 {
					labels := make([]string, len(answer.Citations))
					for i, cit := range answer.Citations {
						labels[i] = cit.Label()
					}
					muted.Printf("\nSources: %s\n", strings.Join(labels, ", "))
				}
				if answer.Degraded {
					warn.Println("(answer degraded: the language model was unavailable)")
				}
				fmt.Println()
			}

			fmt.Println("Goodbye, and good luck fishing!")
			return scanner.Err()
		},
	}
}
