package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/srulre/classiq-library/pkg/librarian"
)

const modulePath = "github.com/srulre/classiq-library"

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the librarian version",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "librarian v%s\nmodule: %s\n", librarian.Version, modulePath)
			return nil
		},
	}
}
