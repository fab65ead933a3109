package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var askHTML bool

var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Ask a single question and exit",
	Long: `Ask a single question and print the answer. The exchange is saved as a
session like any other conversation.

Examples:
  poppit ask "what can you do?"
  poppit ask --local "who created you"
  poppit ask --html "explain markdown" > answer.html`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().BoolVar(&askHTML, "html", false, "print the safe markup rendering instead of plain text")
}

func runAsk(cmd *cobra.Command, args []string) error {
	question := strings.Join(args, " ")

	if _, err := ctl.NewSession(); err != nil {
		return fmt.Errorf("start session: %w", err)
	}

	reply, err := ctl.Send(cmd.Context(), question, nil)
	if err != nil {
		return err
	}

	if askHTML {
		fmt.Println(reply.HTML)
	} else {
		fmt.Println(reply.Answer)
	}
	for _, s := range reply.Suggestions {
		fmt.Println(theme.hintStyle().Render("  - " + s))
	}
	return nil
}
