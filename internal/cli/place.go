package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lemu/seamless-sea-sub003/pkg/board"
	"github.com/lemu/seamless-sea-sub003/pkg/grid"
)

// placeOpts holds options for the place command.
type placeOpts struct {
	width  int
	height int
	write  bool
	table  bool
}

// placeCommand creates the place command, which renders a board file once.
func (c *CLI) placeCommand() *cobra.Command {
	opts := placeOpts{}

	cmd := &cobra.Command{
		Use:   "place <board.yaml>",
		Short: "Place a board's widgets and print the layout",
		Long: `Place every widget of a board on the breakpoint that fits the given
viewport width. Stored rectangles are kept; widgets without one are placed in
the first free slot, top to bottom and left to right.`,
		Example: `  seamless place board.yaml
  seamless place board.yaml --width 500 --table
  seamless place board.yaml --store sqlite --write`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runPlace(cmd.Context(), args[0], opts)
		},
	}

	cmd.Flags().IntVar(&opts.width, "width", 1300, "viewport width in pixels")
	cmd.Flags().IntVar(&opts.height, "height", 0, "viewport height in pixels (0 fits one row)")
	cmd.Flags().BoolVar(&opts.write, "write", false, "persist the placed layout")
	cmd.Flags().BoolVar(&opts.table, "table", false, "print rectangles as a table instead of a grid")

	return cmd
}

// runPlace renders path once and optionally persists the result.
func (c *CLI) runPlace(ctx context.Context, path string, opts placeOpts) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	b, err := board.LoadFile(path)
	if err != nil {
		return err
	}

	prog := newProgress(c.Logger)
	repo, err := c.openStore(ctx, cfg, b)
	if err != nil {
		return err
	}
	defer repo.Close()

	before, err := repo.ReadLayouts(ctx, b.ID)
	if err != nil {
		return err
	}

	view, err := board.Open(ctx, repo, b, viewOptions(cfg, c.Logger, opts.width, opts.height))
	if err != nil {
		return err
	}
	defer view.Close()

	r := view.Render()
	placed := countPlaced(before[r.Breakpoint.Name], r.Layout)
	prog.done(fmt.Sprintf("Placed %d widgets on %s", placed, r.Breakpoint.Name))

	fmt.Println(StyleTitle.Render(b.String()))
	if opts.table {
		fmt.Println(layoutTable(b, r.Layout))
	} else {
		fmt.Println(drawLayout(r.Layout, r.Breakpoint.Columns, r.MaxRows, 6, ""))
	}
	printLayoutStats(r, placed)
	if r.Exhausted {
		printWarning("Row ceiling of %d reached; some widgets overlap", cfg.Grid.RowCeiling)
	}

	if !opts.write {
		if placed > 0 {
			printNewline()
			printNextStep("Persist the placement", "seamless place "+path+" --write")
		}
		return nil
	}
	if err := view.Interact(r.Layout); err != nil {
		return err
	}
	if err := view.Flush(ctx); err != nil {
		return err
	}
	printSuccess("Saved %s layout of %s", r.Breakpoint.Name, b.ID)
	return nil
}

// countPlaced returns how many rectangles of now have no counterpart in
// stored.
func countPlaced(stored, now grid.Layout) int {
	n := 0
	for _, r := range now {
		if _, ok := stored.Find(r.WidgetID); !ok {
			n++
		}
	}
	return n
}
