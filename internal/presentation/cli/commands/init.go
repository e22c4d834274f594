package commands

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jbctechsolutions/markkeep/internal/infrastructure/config"
	"github.com/jbctechsolutions/markkeep/internal/presentation/cli/output"
)

// InitResult holds the result of the init command for JSON output.
type InitResult struct {
	ConfigDir    string `json:"config_dir"`
	ConfigFile   string `json:"config_file"`
	DatabasePath string `json:"database_path"`
	Initialized  bool   `json:"initialized"`
}

// NewInitCmd creates the init command.
func NewInitCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize markkeep configuration",
		Long: `Initialize markkeep configuration interactively.

This command creates the ~/.markkeep/ directory and generates a
config.yaml file with your storage, sync, and import settings.

The initialization process will:
  • Create ~/.markkeep/ directory
  • Generate ~/.markkeep/config.yaml
  • Prompt for the database path, offline mode, and import watch directory`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(force)
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "overwrite existing configuration")

	return cmd
}

// prompter handles interactive user input.
type prompter struct {
	reader    *bufio.Reader
	formatter *output.Formatter
}

// newPrompter creates a new prompter.
func newPrompter(formatter *output.Formatter) *prompter {
	return &prompter{
		reader:    bufio.NewReader(os.Stdin),
		formatter: formatter,
	}
}

// prompt asks a question and returns the answer (or default if empty).
func (p *prompter) prompt(question, defaultValue string) (string, error) {
	if defaultValue != "" {
		p.formatter.Print("%s [%s]: ", question, defaultValue)
	} else {
		p.formatter.Print("%s: ", question)
	}

	answer, err := p.reader.ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("failed to read input: %w", err)
	}

	answer = strings.TrimSpace(answer)
	if answer == "" {
		return defaultValue, nil
	}
	return answer, nil
}

// promptYesNo asks a yes/no question and returns true for yes.
func (p *prompter) promptYesNo(question string, defaultYes bool) (bool, error) {
	defaultStr := "[y/N]"
	if defaultYes {
		defaultStr = "[Y/n]"
	}

	p.formatter.Print("%s %s: ", question, defaultStr)

	answer, err := p.reader.ReadString('\n')
	if err != nil {
		return false, fmt.Errorf("failed to read input: %w", err)
	}

	answer = strings.ToLower(strings.TrimSpace(answer))
	if answer == "" {
		return defaultYes, nil
	}

	return answer == "y" || answer == "yes", nil
}

func runInit(force bool) error {
	// Create formatter - don't use colors for prompts to keep it clean
	format := output.FormatText
	if globalFlags.Output == "json" {
		format = output.FormatJSON
	}

	formatter := output.NewFormatter(
		output.WithFormat(format),
		output.WithColor(format != output.FormatJSON && output.IsColorSupported()),
	)

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("could not determine home directory: %w", err)
	}

	configDir := filepath.Join(homeDir, ".markkeep")
	configFile := filepath.Join(configDir, "config.yaml")
	defaultDBPath := filepath.Join(configDir, "markkeep.db")

	// Check if already initialized
	if _, err := os.Stat(configFile); err == nil && !force {
		if format == output.FormatJSON {
			return formatter.JSON(InitResult{
				ConfigDir:    configDir,
				ConfigFile:   configFile,
				DatabasePath: defaultDBPath,
				Initialized:  false,
			})
		}
		formatter.Warning("Configuration already exists at %s", configFile)
		formatter.Info("Use --force to overwrite existing configuration")
		return nil
	}

	// For JSON output, skip interactive prompts and use defaults
	if format == output.FormatJSON {
		cfg := config.NewDefaultConfig()
		if err := writeConfig(configDir, configFile, cfg); err != nil {
			return err
		}
		return formatter.JSON(InitResult{
			ConfigDir:    configDir,
			ConfigFile:   configFile,
			DatabasePath: defaultDBPath,
			Initialized:  true,
		})
	}

	// Interactive setup
	formatter.Header("Markkeep Configuration")
	formatter.Println("")
	formatter.Info("This wizard will help you set up markkeep.")
	formatter.Println("")

	p := newPrompter(formatter)

	cfg := config.NewDefaultConfig()

	formatter.SubHeader("Storage")
	formatter.Println("")

	dbPath, err := p.prompt("Database path", defaultDBPath)
	if err != nil {
		return err
	}
	cfg.Database.Path = dbPath

	formatter.Println("")
	formatter.SubHeader("Sync")
	formatter.Println("")

	forceOffline, err := p.promptYesNo("Start in offline mode (sync passes are refused)", false)
	if err != nil {
		return err
	}
	cfg.Connectivity.ForceOffline = forceOffline

	formatter.Println("")
	formatter.SubHeader("Import")
	formatter.Println("")
	formatter.Println("%s", formatter.Dim("Export files dropped into the watch directory are imported by 'mk import --watch'"))
	formatter.Println("")

	watchDir, err := p.prompt("Watch directory (empty to disable)", "")
	if err != nil {
		return err
	}
	cfg.Import.WatchDir = watchDir

	formatter.Println("")
	formatter.SubHeader("Logging")
	formatter.Println("")

	logLevel, err := p.prompt("Log level (debug, info, warn, error)", config.DefaultLogLevel)
	if err != nil {
		return err
	}
	cfg.Logging.Level = logLevel

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	formatter.Println("")

	if err := writeConfig(configDir, configFile, cfg); err != nil {
		return err
	}

	formatter.Println("")
	formatter.Success("Configuration initialized successfully!")
	formatter.Println("")
	formatter.Item("Config directory", configDir)
	formatter.Item("Config file", configFile)
	if cfg.Database.Path != "" {
		formatter.Item("Database", cfg.Database.Path)
	} else {
		formatter.Item("Database", defaultDBPath)
	}
	formatter.Println("")
	formatter.Info("Run 'mk add <url>' to save your first bookmark")
	formatter.Info("Run 'mk sync' to push your changes")

	return nil
}

// writeConfig creates the config directory and writes the configuration file.
func writeConfig(configDir, configFile string, cfg *config.Config) error {
	loader, err := config.NewLoader(configDir)
	if err != nil {
		return err
	}
	if err := loader.Save(cfg, configFile); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
