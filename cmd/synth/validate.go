package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/alfredjeanlab/synth/internal/driver"
	"github.com/alfredjeanlab/synth/internal/namespace"
	"github.com/alfredjeanlab/synth/internal/resolve"
)

var validateCmd = &cobra.Command{
	Use:   "validate <namespace-path>",
	Short: "Parse and statically validate a namespace without generating",
	Args:  cobra.ExactArgs(1),
	RunE:  runValidate,
}

func init() {
	validateCmd.Flags().Int("size", 0, "planned global size, to additionally check unique-node feasibility")
}

func runValidate(cmd *cobra.Command, args []string) error {
	fsys := os.DirFS(args[0])

	ns, err := namespace.Load(fsys)
	if err != nil {
		return err
	}
	order, err := resolve.Order(ns)
	if err != nil {
		return err
	}

	if size, _ := cmd.Flags().GetInt("size"); size > 0 {
		plan := driver.Distribute(ns.Names, size)
		sizes := make(map[string]int, len(order))
		for _, name := range order {
			sizes[name] = plan.Sizes[name]
		}
		if err := resolve.CheckFeasibility(ns, sizes); err != nil {
			return err
		}
	}

	fmt.Fprintf(cmd.OutOrStdout(), "ok: %d collection(s) valid\n", len(ns.Names))
	return nil
}
