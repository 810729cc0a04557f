package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/aretw0/stater/internal/cli"
	"github.com/aretw0/stater/internal/presentation/tui"
	"github.com/aretw0/stater/pkg/domain"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var explainCmd = &cobra.Command{
	Use:   "explain",
	Short: "Show how an update would be routed",
	Long: `Builds an update from flags and shows the tree path it takes, every candidate
handler in evaluation order and the one selected. No handler runs.`,
	Example: `  stater explain --text "/start" --state onboarding
  stater explain --kind callback_query --data "buy:42" --json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		bot, err := cli.LoadBot(cfg.Manifest, logger, nil)
		if err != nil {
			return err
		}
		u, state, err := updateFromFlags(cmd)
		if err != nil {
			return err
		}
		ex := bot.Router.Explain(&u, state)

		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(ex)
		}

		md := tui.ExplanationMarkdown(ex)
		if !term.IsTerminal(int(os.Stdout.Fd())) {
			fmt.Print(md)
			return nil
		}
		out, err := tui.NewRenderer()(md)
		if err != nil {
			return err
		}
		fmt.Print(out)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(explainCmd)
	addUpdateFlags(explainCmd)
	explainCmd.Flags().Bool("json", false, "Print the explanation as JSON")
}

func addUpdateFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.String("kind", string(domain.KindMessage), "Update kind")
	f.String("text", "", "Message text; a leading /command is parsed")
	f.Int64("chat", 1, "Chat ID")
	f.Int64("user", 1, "User ID")
	f.Int64("thread", 0, "Forum topic ID")
	f.String("data", "", "Callback data")
	f.String("query", "", "Inline query")
	f.String("state", "", "Conversation state (empty for the default state)")
}

func updateFromFlags(cmd *cobra.Command) (domain.Update, domain.StateID, error) {
	f := cmd.Flags()
	kind, _ := f.GetString("kind")
	text, _ := f.GetString("text")
	chat, _ := f.GetInt64("chat")
	user, _ := f.GetInt64("user")
	thread, _ := f.GetInt64("thread")
	data, _ := f.GetString("data")
	query, _ := f.GetString("query")
	state, _ := f.GetString("state")

	u := domain.Update{
		Kind:         domain.UpdateKind(kind),
		ChatID:       chat,
		UserID:       user,
		ThreadID:     thread,
		Text:         text,
		CallbackData: data,
		Query:        query,
	}
	if u.Kind.CarriesCommands() {
		u.Command, u.Args, _ = domain.ParseCommand(text)
	}
	if err := u.Validate(); err != nil {
		return u, "", err
	}
	return u, domain.StateID(state), nil
}
