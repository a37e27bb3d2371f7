package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/symplace/pkg/errors"
	"github.com/matzehuels/symplace/pkg/placefile"
	"github.com/matzehuels/symplace/pkg/render/treedot"
)

// treeCommand creates the tree command for visualizing the HB*-tree
// structure (debug tool).
func (c *CLI) treeCommand() *cobra.Command {
	var (
		output string
		pack   bool
		dotOut bool
	)

	cmd := &cobra.Command{
		Use:   "tree <input-file>",
		Short: "Render the HB*-tree structure (debug tool)",
		Long: `Build the initial HB*-tree for a problem and render its structure as an
SVG diagram via Graphviz. Hierarchy nodes show their symmetry axis, contour
nodes their segment, and module nodes their packed position.`,
		Example: `  # Render the initial tree
  symplace tree opamp.txt -o tree.svg

  # Pack first so contour nodes and coordinates appear
  symplace tree opamp.txt -o tree.svg --pack`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			problem, err := placefile.Import(args[0])
			if err != nil {
				return err
			}
			tree, err := problem.NewTree()
			if err != nil {
				return err
			}
			if err := tree.ConstructInitialTree(); err != nil {
				return err
			}
			if pack {
				tree.Pack()
			}

			dot := treedot.ToDOT(tree)
			if dotOut {
				return writeFile([]byte(dot), output)
			}

			svg, err := treedot.RenderSVG(dot)
			if err != nil {
				return errors.Wrap(errors.ErrCodeInternal, err, "render tree")
			}
			if err := writeFile(svg, output); err != nil {
				return errors.Wrap(errors.ErrCodeIO, err, "write output")
			}

			printSuccess("HB*-tree rendered")
			if output != "" {
				printFile(output)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (stdout if empty)")
	cmd.Flags().BoolVar(&pack, "pack", false, "pack before rendering")
	cmd.Flags().BoolVar(&dotOut, "dot", false, "emit DOT source instead of SVG")

	return cmd
}
