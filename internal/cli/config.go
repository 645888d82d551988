package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create default configuration file",
	RunE:  runConfigInit,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Display current configuration",
	RunE:  runConfigShow,
}

func init() {
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	home, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to get home directory: %w", err)
	}

	configDir := filepath.Join(home, ".config", "datasource-server")

	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	configFile := filepath.Join(configDir, "config.toml")

	// Check if config already exists
	if _, err := os.Stat(configFile); err == nil {
		fmt.Printf("Config file already exists at %s\n", configFile)
		fmt.Println("Use 'datasource-server config show' to view current configuration")
		return nil
	}

	// Write default config
	if err := os.WriteFile(configFile, []byte(defaultConfig), 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	fmt.Printf("Created config file at %s\n", configFile)
	fmt.Println()
	fmt.Println("Next steps:")
	fmt.Println("  1. Add a [[sources]] block per data source you want to expose")
	fmt.Println("  2. Run 'datasource-server sources' to check they register")
	fmt.Println("  3. Run 'datasource-server serve' from your MCP client config")

	return nil
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			fmt.Println("No config file found. Run 'datasource-server config init' to create one.")
			return nil
		}
		return fmt.Errorf("failed to read config: %w", err)
	}

	fmt.Printf("# Config file: %s\n\n", configPath)
	fmt.Println(string(data))
	return nil
}

const defaultConfig = `# datasource-server configuration

[logging]
level = "info"    # debug, info, warn, error
format = "text"   # text, json
# file = "~/.local/share/datasource-server/server.log"  # rotating copy of stderr
max_size_mb = 10
max_backups = 3

[scan]
whole_file_limit = 8388608  # files up to this many bytes are scanned in one read
chunk_size = 262144         # larger files are scanned in chunks of this size
overlap = 65536             # carried between chunks so matches can straddle them

[listing]
default_page_size = 100
max_page_size = 1000

[search]
workers = 8

# Directory names skipped during search walks. Matched against path segments.
ignore_patterns = [".*", "node_modules", "vendor"]

# A local directory. The first filesystem source is the default for
# search_project and the search command.
[[sources]]
id = "workspace"
provider = "filesystem"
root = "~/projects"

# Another MCP server, spawned over stdio and proxied.
# [[sources]]
# id = "everything"
# provider = "mcp"
# command = "npx"
# args = ["-y", "@modelcontextprotocol/server-everything"]

# A Notion workspace. The integration token needs read access.
# [[sources]]
# id = "wiki"
# provider = "notion"
# token = "ntn_..."

# Google Docs shared with a service account or OAuth token.
# [[sources]]
# id = "docs"
# provider = "googledocs"
# token_file = "~/.config/datasource-server/gdocs-token.json"
`
