package main

import (
	"github.com/spf13/cobra"

	"github.com/lvillar/pbitdoc/mcp"
)

func newMCPCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Run the MCP server on stdin/stdout",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.cfg.Validate(); err != nil {
				return err
			}
			logger := a.jsonLogger()
			mcp.Version = version

			s := mcp.NewServerWithIO(cmd.InOrStdin(), cmd.OutOrStdout())
			s.SetLogger(logger)
			mcp.RegisterDefaultTools(s, a.cfg.ProcessOptions(logger)...)
			mcp.RegisterDefaultResources(s)
			return s.Run()
		},
	}
}
