package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/l3aro/gopyan/pkg/callgraph"
)

func newNodesCmd() *cobra.Command {
	var root string

	cmd := &cobra.Command{
		Use:   "nodes [paths...]",
		Short: "List every node the analyzer discovers, one per line",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, logger, err := loadConfig()
			if err != nil {
				return err
			}
			if len(args) == 0 {
				args = []string{"."}
			}

			files, inferredRoot, err := collectFiles(args, root, true)
			if err != nil {
				return err
			}
			if len(files) == 0 {
				return fmt.Errorf("no Python files found under %v", args)
			}
			logger.Debug("resolved project root", "root", inferredRoot, "files", len(files))

			graph, err := callgraph.Analyze(files, callgraph.Options{Root: inferredRoot})
			if err != nil {
				return err
			}

			for _, n := range graph.Nodes {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s:%d\n", n.QualifiedName(), n.Flavor, n.Filename, n.Lineno)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&root, "root", "", "explicit project root (overrides inference)")
	return cmd
}
