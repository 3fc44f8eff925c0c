package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	mcpcmder "github.com/promptforge/promptforge/cmd/promptforge/mcpserve"
	refinecmder "github.com/promptforge/promptforge/cmd/promptforge/refine"
	servecmder "github.com/promptforge/promptforge/cmd/promptforge/serve"
)

func main() {
	root := &cobra.Command{
		Use:          "promptforge",
		Short:        "Prompt optimization service and tools",
		SilenceUsage: true,
	}

	root.AddCommand(servecmder.NewServeCmd())
	root.AddCommand(mcpcmder.NewMCPCmd())
	root.AddCommand(refinecmder.NewRefineCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
