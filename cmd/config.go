package cmd

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"video-translator/infrastructure/config"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration entries",
	Long: `Show and change settings, recipients, and CC recipients in the configuration file.

Examples:
  video-translator config show
  video-translator config set performance.workers 3
  video-translator config add recipient --key jane --name "Jane Doe" --email "jane@example.com"
  video-translator config default jane
  video-translator config remove recipient jane`,
}

func init() {
	rootCmd.AddCommand(configCmd)

	// Add subcommands
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configAddCmd)
	configCmd.AddCommand(configListCmd)
	configCmd.AddCommand(configRemoveCmd)
	configCmd.AddCommand(configUpdateCmd)
	configCmd.AddCommand(configDefaultCmd)
}

// --- SHOW command ---

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := requireConfig()
		if err != nil {
			return err
		}
		return RunConfigShowWithDependencies(cfg, cfgFile, DefaultOutput)
	},
}

// RunConfigShowWithDependencies prints cfg as YAML
func RunConfigShowWithDependencies(cfg *config.Config, configPath string, out OutputWriter) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to serialize config: %w", err)
	}
	fmt.Fprintf(out, "# %s\n", configPath)
	_, err = out.Write(data)
	return err
}

// --- SET command ---

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Change a single setting",
	Long: `Change a single setting by its dotted key. The file is only written when
the resulting configuration is valid.

Keys:
  ` + strings.Join(config.SettableKeys(), "\n  ") + `

Examples:
  video-translator config set models.translation openai/gpt-oss-20b
  video-translator config set api.timeout 90s
  video-translator config set prompt "Translate to French: {text}"`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := requireConfig()
		if err != nil {
			return err
		}
		return RunConfigSetWithDependencies(cfg, cfgFile, args[0], args[1], DefaultOutput)
	},
}

// RunConfigSetWithDependencies runs the set command with injected dependencies
func RunConfigSetWithDependencies(cfg *config.Config, configPath, key, value string, out OutputWriter) error {
	mgr := config.NewConfigManager(cfg, configPath)
	if err := mgr.Set(key, value); err != nil {
		return err
	}
	fmt.Fprintf(out, "Set %s = %q\n", key, value)
	return nil
}

// --- ADD command ---

var (
	addKey   string
	addName  string
	addEmail string
)

var configAddCmd = &cobra.Command{
	Use:   "add [recipient|cc]",
	Short: "Add a new config entry",
	Long: `Add a new recipient or CC to the configuration.

CCs are copied on every summary email and are keyed by their first name.

Examples:
  video-translator config add recipient --key jane --name "Jane Doe" --email "jane@example.com"
  video-translator config add cc --name "Mary Jones" --email "mary@example.com"`,
	Args: cobra.ExactArgs(1),
	RunE: runConfigAdd,
}

func init() {
	configAddCmd.Flags().StringVar(&addKey, "key", "", "Unique key for the entry (required for recipient)")
	configAddCmd.Flags().StringVar(&addName, "name", "", "Display name (required)")
	configAddCmd.Flags().StringVar(&addEmail, "email", "", "Email address (required)")
	configAddCmd.MarkFlagRequired("name")
	configAddCmd.MarkFlagRequired("email")
}

func runConfigAdd(cmd *cobra.Command, args []string) error {
	cfg, err := requireConfig()
	if err != nil {
		return err
	}

	return RunConfigAddWithDependencies(cfg, cfgFile, args[0], addKey, addName, addEmail, DefaultOutput)
}

// RunConfigAddWithDependencies runs the add command with injected dependencies
func RunConfigAddWithDependencies(cfg *config.Config, configPath, entityType, key, name, email string, out OutputWriter) error {
	mgr := config.NewConfigManager(cfg, configPath)

	switch entityType {
	case "recipient":
		if key == "" {
			return fmt.Errorf("--key is required for recipients")
		}
		if err := mgr.AddRecipient(key, name, email); err != nil {
			return err
		}
		fmt.Fprintf(out, "Added recipient %q: %s <%s>\n", key, name, email)

	case "cc":
		if err := mgr.AddCC(name, email); err != nil {
			return err
		}
		fmt.Fprintf(out, "Added CC: %s <%s>\n", name, email)

	default:
		return fmt.Errorf("unknown entity type %q. Use recipient or cc", entityType)
	}

	return nil
}

// --- LIST command ---

var configListCmd = &cobra.Command{
	Use:   "list [recipients|ccs]",
	Short: "List config entries",
	Long: `List all recipients or CC recipients. Default recipients are marked with *.

Examples:
  video-translator config list recipients
  video-translator config list ccs`,
	Args: cobra.ExactArgs(1),
	RunE: runConfigList,
}

func runConfigList(cmd *cobra.Command, args []string) error {
	cfg, err := requireConfig()
	if err != nil {
		return err
	}

	return RunConfigListWithDependencies(cfg, cfgFile, args[0], DefaultOutput)
}

// RunConfigListWithDependencies runs the list command with injected dependencies
func RunConfigListWithDependencies(cfg *config.Config, configPath, entityType string, out OutputWriter) error {
	mgr := config.NewConfigManager(cfg, configPath)
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)

	switch entityType {
	case "recipients":
		recipients := mgr.ListRecipients()
		if len(recipients) == 0 {
			fmt.Fprintln(out, "No recipients configured.")
			return nil
		}
		fmt.Fprintln(w, "KEY\tNAME\tEMAIL\tDEFAULT")
		for _, r := range recipients {
			isDefault := ""
			if r.Default {
				isDefault = "*"
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", r.Key, r.Name, r.Address, isDefault)
		}

	case "ccs":
		ccs := mgr.ListCCs()
		if len(ccs) == 0 {
			fmt.Fprintln(out, "No CCs configured.")
			return nil
		}
		fmt.Fprintln(w, "KEY\tNAME\tEMAIL")
		for _, c := range ccs {
			fmt.Fprintf(w, "%s\t%s\t%s\n", c.Key, c.Name, c.Address)
		}

	default:
		return fmt.Errorf("unknown entity type %q. Use recipients or ccs", entityType)
	}

	return w.Flush()
}

// --- REMOVE command ---

var configRemoveCmd = &cobra.Command{
	Use:   "remove [recipient|cc] <key>",
	Short: "Remove a config entry",
	Long: `Remove a recipient or CC from the configuration.

Examples:
  video-translator config remove recipient jane
  video-translator config remove cc mary`,
	Args: cobra.ExactArgs(2),
	RunE: runConfigRemove,
}

func runConfigRemove(cmd *cobra.Command, args []string) error {
	cfg, err := requireConfig()
	if err != nil {
		return err
	}

	return RunConfigRemoveWithDependencies(cfg, cfgFile, args[0], args[1], DefaultOutput)
}

// RunConfigRemoveWithDependencies runs the remove command with injected dependencies
func RunConfigRemoveWithDependencies(cfg *config.Config, configPath, entityType, key string, out OutputWriter) error {
	mgr := config.NewConfigManager(cfg, configPath)

	switch entityType {
	case "recipient":
		if err := mgr.RemoveRecipient(key); err != nil {
			return err
		}
		fmt.Fprintf(out, "Removed recipient %q\n", key)

	case "cc":
		if err := mgr.RemoveCC(key); err != nil {
			return err
		}
		fmt.Fprintf(out, "Removed CC %q\n", key)

	default:
		return fmt.Errorf("unknown entity type %q. Use recipient or cc", entityType)
	}

	return nil
}

// --- UPDATE command ---

var (
	updateName  string
	updateEmail string
)

var configUpdateCmd = &cobra.Command{
	Use:   "update [recipient|cc] <key>",
	Short: "Update a config entry",
	Long: `Update an existing recipient or CC in the configuration.

Examples:
  video-translator config update recipient jane --email "jane.new@example.com"
  video-translator config update cc mary --name "Mary Smith" --email "mary.smith@example.com"`,
	Args: cobra.ExactArgs(2),
	RunE: runConfigUpdate,
}

func init() {
	configUpdateCmd.Flags().StringVar(&updateName, "name", "", "New display name")
	configUpdateCmd.Flags().StringVar(&updateEmail, "email", "", "New email address")
}

func runConfigUpdate(cmd *cobra.Command, args []string) error {
	cfg, err := requireConfig()
	if err != nil {
		return err
	}

	if updateName == "" && updateEmail == "" {
		return fmt.Errorf("at least one of --name or --email is required")
	}

	return RunConfigUpdateWithDependencies(cfg, cfgFile, args[0], args[1], updateName, updateEmail, DefaultOutput)
}

// RunConfigUpdateWithDependencies runs the update command with injected dependencies
func RunConfigUpdateWithDependencies(cfg *config.Config, configPath, entityType, key, name, email string, out OutputWriter) error {
	mgr := config.NewConfigManager(cfg, configPath)

	switch entityType {
	case "recipient":
		if err := mgr.UpdateRecipient(key, name, email); err != nil {
			return err
		}
		fmt.Fprintf(out, "Updated recipient %q\n", key)

	case "cc":
		if err := mgr.UpdateCC(key, name, email); err != nil {
			return err
		}
		fmt.Fprintf(out, "Updated CC %q\n", key)

	default:
		return fmt.Errorf("unknown entity type %q. Use recipient or cc", entityType)
	}

	return nil
}

// --- DEFAULT command ---

var defaultRemove bool

var configDefaultCmd = &cobra.Command{
	Use:   "default <key>",
	Short: "Mark a recipient as a default summary recipient",
	Long: `Default recipients are mailed when run is given --notify default.

Examples:
  video-translator config default jane
  video-translator config default jane --remove`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := requireConfig()
		if err != nil {
			return err
		}
		return RunConfigDefaultWithDependencies(cfg, cfgFile, args[0], !defaultRemove, DefaultOutput)
	},
}

func init() {
	configDefaultCmd.Flags().BoolVar(&defaultRemove, "remove", false, "Stop mailing this recipient by default")
}

// RunConfigDefaultWithDependencies runs the default command with injected dependencies
func RunConfigDefaultWithDependencies(cfg *config.Config, configPath, key string, isDefault bool, out OutputWriter) error {
	mgr := config.NewConfigManager(cfg, configPath)
	if err := mgr.SetDefaultRecipient(key, isDefault); err != nil {
		return err
	}
	if isDefault {
		fmt.Fprintf(out, "Recipient %q will receive every summary sent with --notify default\n", key)
	} else {
		fmt.Fprintf(out, "Recipient %q is no longer a default recipient\n", key)
	}
	return nil
}
