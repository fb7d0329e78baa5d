package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// pluginInfo describes one registered language.
type pluginInfo struct {
	Name    string   `yaml:"name"`
	Aliases []string `yaml:"aliases,omitempty"`
	Chain   []string `yaml:"chain"`
}

func (c *CLI) newPluginsCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "plugins",
		Short: "List the supported languages and their capability chains",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runPlugins(format)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "text", "output format (text, yaml)")

	return cmd
}

func (c *CLI) pluginInfos() ([]pluginInfo, error) {
	names := c.registry.Names()
	infos := make([]pluginInfo, 0, len(names))
	for _, name := range names {
		p, err := c.registry.Lookup(name)
		if err != nil {
			return nil, err
		}
		infos = append(infos, pluginInfo{
			Name:    p.Name,
			Aliases: c.registry.Aliases(name),
			Chain:   p.Chain(),
		})
	}
	return infos, nil
}

func (c *CLI) runPlugins(format string) error {
	infos, err := c.pluginInfos()
	if err != nil {
		return err
	}

	switch format {
	case "yaml":
		enc := yaml.NewEncoder(c.output)
		enc.SetIndent(2)
		if err := enc.Encode(infos); err != nil {
			return fmt.Errorf("failed to encode plugins: %w", err)
		}
		return enc.Close()
	case "text":
		for _, info := range infos {
			line := info.Name
			if len(info.Aliases) > 0 {
				line += " (" + strings.Join(info.Aliases, ", ") + ")"
			}
			fmt.Fprintf(c.output, "%-28s %s\n", line, strings.Join(info.Chain, " -> "))
		}
		return nil
	default:
		return fmt.Errorf("unknown format %q", format)
	}
}
