package cmd

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/Beastwick18/nyaa/internal/keymap"
	"github.com/Beastwick18/nyaa/internal/tui"
)

var (
	keysHeaderStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	keysCellStyle   = lipgloss.NewStyle().Padding(0, 1)
	keysKeyStyle    = keysCellStyle.Foreground(lipgloss.AdaptiveColor{Light: "#7D5A00", Dark: "#F1FA8C"})
)

var keysCmd = &cobra.Command{
	Use:   "keys [[input:]ui]",
	Short: "Show the merged key bindings",
	Long: `Show the key bindings in effect for a mode, after built-in and user
bindings are merged. The mode defaults to normal:main.

With --check, only validate the configured bindings. With --yaml, print the
bindings in the keybinds config format instead of a table.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		kb, err := cfg.KeyBindings()
		if err != nil {
			return err
		}
		if err := tui.CheckActions(kb); err != nil {
			return err
		}

		if check, _ := cmd.Flags().GetBool("check"); check {
			fmt.Fprintln(cmd.OutOrStdout(), "ok")
			return nil
		}

		in, ui := keymap.Normal, keymap.Main
		if len(args) == 1 {
			in, ui, err = parseModePair(args[0])
			if err != nil {
				return err
			}
		}

		km := kb.Keymap(ui, in)
		if asYAML, _ := cmd.Flags().GetBool("yaml"); asYAML {
			out, err := keymapYAML(km)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), out)
			return nil
		}
		fmt.Fprintln(cmd.OutOrStdout(), renderKeymap(km))
		return nil
	},
}

func renderKeymap(km *keymap.Keymap) string {
	var rows [][]string
	for _, e := range km.Entries() {
		rows = append(rows, []string{e.Keys.Spec(), e.Spec.String(), e.Spec.Label(tui.Describe)})
	}
	return table.New().
		Border(lipgloss.NormalBorder()).
		Headers("KEYS", "ACTIONS", "DESCRIPTION").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return keysHeaderStyle
			case col == 0:
				return keysKeyStyle
			default:
				return keysCellStyle
			}
		}).
		String()
}

// keymapYAML encodes km as one bucket of the keybinds config section.
func keymapYAML(km *keymap.Keymap) (string, error) {
	doc := make(map[string]keymap.ActionSpec)
	for _, e := range km.Entries() {
		doc[e.Keys.Spec()] = e.Spec
	}
	out, err := yaml.Marshal(doc)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

func init() {
	keysCmd.Flags().Bool("check", false, "Only validate the configuration")
	keysCmd.Flags().Bool("yaml", false, "Print bindings as config YAML")
	rootCmd.AddCommand(keysCmd)
}
