package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sapiens-run/sapiens/internal/config"
)

func defaultConfigPath() string {
	if v := os.Getenv("SAPIENS_CONFIG"); v != "" {
		return v
	}
	return "sapiens.yaml"
}

func buildConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the sapiens configuration file",
	}
	cmd.AddCommand(buildConfigInitCmd())
	return cmd
}

func buildConfigInitCmd() *cobra.Command {
	var path string
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !force {
				if _, err := os.Stat(path); err == nil {
					return fmt.Errorf("config: %s already exists (use --force to overwrite)", path)
				}
			}
			if err := config.Write(path, config.Defaults()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
			return nil
		},
	}

	cmd.Flags().StringVarP(&path, "config", "c", defaultConfigPath(), "Path to write")
	cmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite an existing file")
	return cmd
}
