package main

import (
	"fmt"
	"os"
	"strings"

	"clonekit/internal/value"

	"github.com/spf13/cobra"
)

// inspectCmd reports the kind and shape of a document
var inspectCmd = &cobra.Command{
	Use:   "inspect FILE",
	Short: "Show the kind and reference structure of a YAML document",
	Long: `Decodes FILE and prints its typeof result, its [object X] tag, the number
of distinct composite values it contains and how many of them are shared.

Example:
  clonekit inspect service.yaml`,
	Args: cobra.ExactArgs(1),
	RunE: runInspect,
}

func runInspect(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", args[0], err)
	}
	v, err := value.Decode(data)
	if err != nil {
		return fmt.Errorf("%s: %w", args[0], err)
	}

	out := cmd.OutOrStdout()
	census := value.Count(v)
	fmt.Fprintf(out, "typeof:     %s\n", value.TypeOf(v))
	fmt.Fprintf(out, "tag:        %s\n", value.Tag(v))
	fmt.Fprintf(out, "composites: %d\n", census.Composites)
	fmt.Fprintf(out, "shared:     %d\n", census.Shared)

	switch x := v.(type) {
	case *value.Object:
		fmt.Fprintf(out, "keys:       %s\n", strings.Join(x.EnumerableKeys(), ", "))
		if p := x.Proto(); p != nil {
			fmt.Fprintf(out, "inherited:  %s\n", strings.Join(p.EnumerableKeys(), ", "))
		}
	case *value.Array:
		fmt.Fprintf(out, "length:     %d\n", x.Len())
	}
	return nil
}
