package cli

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/poppitai/poppit/internal/export"
	"github.com/poppitai/poppit/internal/models"
)

var (
	clearKeepPinned bool
	exportOutput    string
)

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "Manage stored conversations",
}

var sessionsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored sessions",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		printSessionList()
		return nil
	},
}

var sessionsDeleteCmd = &cobra.Command{
	Use:   "delete <n>",
	Short: "Delete a session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := resolveSession(args[0])
		if err != nil {
			return err
		}
		if err := ctl.DeleteSession(s.ID); err != nil {
			return err
		}
		fmt.Println(theme.successStyle().Render("Deleted: " + s.Title))
		return nil
	},
}

var sessionsPinCmd = &cobra.Command{
	Use:   "pin <n>",
	Short: "Pin or unpin a session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := resolveSession(args[0])
		if err != nil {
			return err
		}
		if err := sessions.TogglePin(s.ID); err != nil {
			return err
		}
		fmt.Println(theme.successStyle().Render("Toggled pin on: " + s.Title))
		return nil
	},
}

var sessionsClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete stored sessions in bulk",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := ctl.ClearSessions(clearKeepPinned); err != nil {
			return err
		}
		fmt.Println(theme.successStyle().Render("Sessions cleared."))
		return nil
	},
}

var sessionsExportCmd = &cobra.Command{
	Use:   "export <n>",
	Short: "Write a session transcript as plain text",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := resolveSession(args[0])
		if err != nil {
			return err
		}

		now := time.Now()
		if exportOutput == "-" {
			return export.Transcript(os.Stdout, s, now)
		}
		path := exportOutput
		if path == "" {
			path = export.Filename(now)
		}
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("create export file: %w", err)
		}
		defer f.Close()
		if err := export.Transcript(f, s, now); err != nil {
			return err
		}
		fmt.Println(theme.successStyle().Render("Exported to " + path))
		return nil
	},
}

func init() {
	sessionsClearCmd.Flags().BoolVar(&clearKeepPinned, "keep-pinned", true, "keep pinned sessions")
	sessionsExportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", `output file ("-" for stdout)`)

	sessionsCmd.AddCommand(sessionsListCmd)
	sessionsCmd.AddCommand(sessionsDeleteCmd)
	sessionsCmd.AddCommand(sessionsPinCmd)
	sessionsCmd.AddCommand(sessionsClearCmd)
	sessionsCmd.AddCommand(sessionsExportCmd)
}

// resolveSession accepts either a 1-based number from the list output or a
// full session ID.
func resolveSession(ref string) (models.ChatSession, error) {
	all := sessions.Sessions()
	if n, err := strconv.Atoi(ref); err == nil {
		if n < 1 || n > len(all) {
			return models.ChatSession{}, fmt.Errorf("no session %d, have %d", n, len(all))
		}
		return all[n-1], nil
	}
	for _, s := range all {
		if s.ID == ref {
			return s, nil
		}
	}
	return models.ChatSession{}, fmt.Errorf("no session %q", ref)
}
