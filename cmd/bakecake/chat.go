package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/aretw0/bakecake/pkg/domain"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Talk to the bot in the terminal",
	Long: `Starts an interactive chat session on stdin/stdout. Useful for trying the
dialogue flow without a messaging transport. Type /start to restart the
conversation and /quit to leave.`,
	Run: func(cmd *cobra.Command, args []string) {
		sessionID, _ := cmd.Flags().GetString("session")
		name, _ := cmd.Flags().GetString("name")

		app, err := buildApp(false)
		if err != nil {
			fmt.Printf("Error initializing bakecake: %v\n", err)
			os.Exit(1)
		}
		defer app.close()

		ui := newChatUI()
		ctx := cmd.Context()

		_, replies, err := app.bot.Start(ctx, sessionID, name)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
		ui.printReplies(replies)

		scanner := bufio.NewScanner(os.Stdin)
		for {
			fmt.Print("> ")
			if !scanner.Scan() {
				break
			}
			input := strings.TrimSpace(scanner.Text())

			switch input {
			case "":
				continue
			case "/quit", "/exit":
				fmt.Println("Bye!")
				return
			case "/start":
				_, replies, err = app.bot.Start(ctx, sessionID, name)
			default:
				_, replies, err = app.bot.HandleEvent(ctx, sessionID, input)
			}
			if err != nil {
				fmt.Printf("Error: %v\n", err)
				continue
			}
			ui.printReplies(replies)
		}
	},
}

func init() {
	rootCmd.AddCommand(chatCmd)
	chatCmd.Flags().StringP("session", "s", "local", "Session identity to chat as")
	chatCmd.Flags().StringP("name", "n", "", "Display name for the greeting")
}

// chatUI renders bot replies for the terminal: colored text when stdout is a
// TTY, markdown documents through glamour.
type chatUI struct {
	isTTY    bool
	profile  termenv.Profile
	markdown *glamour.TermRenderer
}

func newChatUI() *chatUI {
	ui := &chatUI{
		isTTY:   term.IsTerminal(int(os.Stdout.Fd())),
		profile: termenv.ColorProfile(),
	}
	if ui.isTTY {
		ui.markdown, _ = glamour.NewTermRenderer(glamour.WithAutoStyle())
	}
	return ui
}

func (ui *chatUI) printReplies(replies []domain.Reply) {
	for _, reply := range replies {
		if reply.DocumentPath != "" {
			ui.printDocument(reply.DocumentPath)
		}
		if reply.Text != "" {
			ui.printText(reply.Text)
		}
		if len(reply.Suggestions) > 0 {
			ui.printSuggestions(reply.Suggestions)
		}
	}
}

func (ui *chatUI) printText(text string) {
	if ui.isTTY {
		fmt.Println(termenv.String(text).Foreground(ui.profile.Color("#c084fc")))
		return
	}
	fmt.Println(text)
}

func (ui *chatUI) printSuggestions(suggestions []string) {
	for _, s := range suggestions {
		line := "  [" + s + "]"
		if ui.isTTY {
			fmt.Println(termenv.String(line).Foreground(ui.profile.Color("#818cf8")).Faint())
			continue
		}
		fmt.Println(line)
	}
}

func (ui *chatUI) printDocument(path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Printf("(document unavailable: %v)\n", err)
		return
	}
	if ui.markdown != nil {
		if out, err := ui.markdown.Render(string(data)); err == nil {
			fmt.Print(out)
			return
		}
	}
	fmt.Println(string(data))
}
