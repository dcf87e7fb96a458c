package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nowwaveradio/smartdate/internal/config"
	"github.com/nowwaveradio/smartdate/internal/errorutil"
)

type initConfigCmd struct {
	root  *rootCommand
	force bool
}

func newInitConfigCommand(root *rootCommand) *cobra.Command {
	c := &initConfigCmd{root: root}

	cmd := &cobra.Command{
		Use:         "init-config",
		Short:       "Write a default configuration file",
		Long:        "Write a configuration file with every setting at its default value to the --config path.",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{skipConfigAnnotation: "true"},
		RunE:        c.run,
	}
	cmd.Flags().BoolVar(&c.force, "force", false, "overwrite an existing file")
	return cmd
}

func (c *initConfigCmd) run(cmd *cobra.Command, _ []string) error {
	path := c.root.configPath
	if err := errorutil.ValidateFileExists(path, "init config"); err == nil && !c.force {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	}

	if err := config.SaveConfig(config.DefaultConfig(), path); err != nil {
		return err
	}
	c.root.record("wrote default configuration to %s", path)
	fprintf(cmd.OutOrStdout(), "Default configuration created at: %s\n", path)
	return nil
}
