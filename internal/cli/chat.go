package cli

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/poppitai/poppit/internal/chat"
	"github.com/poppitai/poppit/internal/export"
	"github.com/poppitai/poppit/internal/models"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive conversation",
	Long: `Start an interactive conversation. The answer is revealed character by
character on a terminal.

Slash commands inside the conversation:
  /new            start a fresh session
  /sessions       list stored sessions
  /load <n>       switch to session n (number from /sessions)
  /pin <n>        pin or unpin session n
  /like           save the last answer as good feedback
  /export [file]  write the current session as a text transcript
  /clear          delete all unpinned sessions
  /quit           leave`,
	Args: cobra.NoArgs,
	RunE: runChat,
}

func runChat(cmd *cobra.Command, args []string) error {
	if _, err := ctl.NewSession(); err != nil {
		return fmt.Errorf("start session: %w", err)
	}

	fmt.Println(theme.botStyle().Render("Poppit:"), ctl.Greeting())
	fmt.Println(theme.hintStyle().Render("Type /quit to leave, /new for a fresh session."))
	fmt.Println()

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print(theme.userStyle().Render("You> "))
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, "/") {
			if quit := runSlashCommand(line); quit {
				break
			}
			continue
		}

		fmt.Print(theme.botStyle().Render("Poppit: "))
		reply, err := ctl.Send(cmd.Context(), line, os.Stdout)
		if err != nil {
			fmt.Println()
			printSendError(err)
			continue
		}
		fmt.Println()
		printSuggestions(reply)
		fmt.Println()
	}
	return scanner.Err()
}

// runSlashCommand handles one REPL command and reports whether to exit.
func runSlashCommand(line string) bool {
	fields := strings.Fields(line)
	cmd, rest := fields[0], fields[1:]

	switch cmd {
	case "/quit", "/exit":
		return true

	case "/new":
		if _, err := ctl.NewSession(); err != nil {
			printSendError(err)
			return false
		}
		fmt.Println(theme.successStyle().Render("Started a new session."))

	case "/sessions":
		printSessionList()

	case "/load":
		if len(rest) != 1 {
			fmt.Println(theme.hintStyle().Render("usage: /load <n>"))
			return false
		}
		s, err := resolveSession(rest[0])
		if err != nil {
			fmt.Println(theme.errorStyle().Render(err.Error()))
			return false
		}
		if err := ctl.SwitchSession(s.ID); err != nil {
			printSendError(err)
			return false
		}
		fmt.Println(theme.successStyle().Render("Switched to: " + s.Title))
		for _, msg := range sessions.ActiveMessages() {
			label := "Poppit"
			if msg.Role == models.RoleUser {
				label = "You"
			}
			fmt.Printf("%s %s\n", theme.hintStyle().Render(label+":"), msg.Content)
		}

	case "/pin":
		if len(rest) != 1 {
			fmt.Println(theme.hintStyle().Render("usage: /pin <n>"))
			return false
		}
		s, err := resolveSession(rest[0])
		if err != nil {
			fmt.Println(theme.errorStyle().Render(err.Error()))
			return false
		}
		if err := sessions.TogglePin(s.ID); err != nil {
			fmt.Println(theme.errorStyle().Render(err.Error()))
			return false
		}
		fmt.Println(theme.successStyle().Render("Toggled pin on: " + s.Title))

	case "/like":
		ctl.Like(rootCmd.Context())
		fmt.Println(theme.successStyle().Render("Thanks for the feedback!"))

	case "/export":
		path := ""
		if len(rest) > 0 {
			path = rest[0]
		}
		if err := exportActiveSession(path); err != nil {
			fmt.Println(theme.errorStyle().Render(err.Error()))
		}

	case "/clear":
		if err := ctl.ClearSessions(true); err != nil {
			printSendError(err)
			return false
		}
		fmt.Println(theme.successStyle().Render("Cleared all unpinned sessions."))

	default:
		fmt.Println(theme.hintStyle().Render("Unknown command " + cmd))
	}
	return false
}

func printSendError(err error) {
	switch {
	case errors.Is(err, chat.ErrBusy):
		fmt.Println(theme.errorStyle().Render("Hold on, still answering."))
	case errors.Is(err, chat.ErrEmptyMessage):
		// Blank input is skipped silently.
	default:
		fmt.Println(theme.errorStyle().Render("Error: " + err.Error()))
	}
}

func printSuggestions(reply *chat.Reply) {
	for _, s := range reply.Suggestions {
		fmt.Println(theme.hintStyle().Render("  - " + s))
	}
}

func printSessionList() {
	all := sessions.Sessions()
	if len(all) == 0 {
		fmt.Println(theme.hintStyle().Render("No stored sessions."))
		return
	}
	for i, s := range all {
		marker := " "
		if s.ID == sessions.ActiveID() {
			marker = "*"
		}
		pin := ""
		if s.Pinned {
			pin = " [pinned]"
		}
		fmt.Printf("%s %2d. %s (%d messages)%s\n", marker, i+1, s.Title, len(s.Messages), pin)
	}
}

// exportActiveSession writes the current session transcript to path, or to
// a timestamped file in the working directory when path is empty.
func exportActiveSession(path string) error {
	id := sessions.ActiveID()
	if id == "" {
		return errors.New("no active session")
	}
	now := time.Now()
	if path == "" {
		path = export.Filename(now)
	}
	target, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create export file: %w", err)
	}
	defer target.Close()

	for _, s := range sessions.Sessions() {
		if s.ID == id {
			if err := export.Transcript(target, s, now); err != nil {
				return err
			}
			fmt.Println(theme.successStyle().Render("Exported to " + path))
			return nil
		}
	}
	return errors.New("active session has no stored messages yet")
}
