package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/mattfehr/volleyball-rotation-tracker/codec"
	"github.com/mattfehr/volleyball-rotation-tracker/rotation"
	"github.com/sanity-io/litter"
	"github.com/spf13/cobra"
)

var (
	ErrNotLegal   = errors.New("rotation-not-legal")
	ErrSlotFlag   = errors.New("slot must be between 1 and 6")
	ErrSlotAndAll = errors.New("--slot and --all are exclusive")
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "rotationctl",
		Short:        "Inspect and convert exported rotation sets",
		SilenceUsage: true,
	}
	root.AddCommand(newCheckCmd(), newRotateCmd(), newKeyedCmd(), newFlatCmd(), newDumpCmd())
	return root
}

func readDocument(path string) (codec.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return codec.Document{}, err
	}
	doc, err := codec.Decode(data)
	if err != nil {
		return codec.Document{}, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}

func newCheckCmd() *cobra.Command {
	var slot int
	var all bool

	cmd := &cobra.Command{
		Use:   "check <file>",
		Short: "Check rotation legality",
		Long:  "Check one rotation (--slot, default 1) or every rotation (--all) of an exported file.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if all && cmd.Flags().Changed("slot") {
				return ErrSlotAndAll
			}
			doc, err := readDocument(args[0])
			if err != nil {
				return err
			}

			slots := []int{slot}
			if all {
				slots = []int{1, 2, 3, 4, 5, 6}
			} else if slot < 1 || slot > rotation.SlotCount {
				return ErrSlotFlag
			}

			illegal := 0
			for _, n := range slots {
				result := rotation.Check(doc.Rotations[n-1])
				if result.Outcome != rotation.Legal {
					illegal++
				}
				printResult(cmd.OutOrStdout(), codec.Labels[n-1], result)
			}
			if illegal > 0 {
				return fmt.Errorf("%w: %d of %d", ErrNotLegal, illegal, len(slots))
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&slot, "slot", 1, "rotation to check (1-6)")
	cmd.Flags().BoolVar(&all, "all", false, "check all six rotations")
	return cmd
}

func printResult(w io.Writer, label string, result rotation.Result) {
	fmt.Fprintf(w, "%s: %s\n", label, result.Outcome)
	fmt.Fprintln(w, result.Summary())
	if ids := result.ViolatorIDs(); len(ids) > 0 {
		fmt.Fprintf(w, "violators: %v\n", ids)
	}
}

func newRotateCmd() *cobra.Command {
	var slot int
	var out string

	cmd := &cobra.Command{
		Use:   "rotate <file>",
		Short: "Replace a rotation with the one derived from the rotation before it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if slot < 1 || slot > rotation.SlotCount {
				return ErrSlotFlag
			}
			doc, err := readDocument(args[0])
			if err != nil {
				return err
			}

			set := rotation.NewSet("")
			if err := codec.Apply(doc, set); err != nil {
				return err
			}
			if err := set.Select(slot - 1); err != nil {
				return err
			}
			set.RotateFromPrevious(rotation.DefaultPositions, rotation.UUIDGenerator{})

			data, err := codec.Encode(codec.Export(set))
			if err != nil {
				return err
			}
			return writeOutput(cmd.OutOrStdout(), out, data)
		},
	}
	cmd.Flags().IntVar(&slot, "slot", 0, "rotation to derive (1-6); R1 derives from R6")
	cmd.Flags().StringVarP(&out, "output", "o", "", "write the result to this file instead of stdout")
	cmd.MarkFlagRequired("slot")
	return cmd
}

func writeOutput(stdout io.Writer, path string, data []byte) error {
	if path == "" {
		_, err := fmt.Fprintln(stdout, string(data))
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}

func newKeyedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "keyed <file>",
		Short: "Convert an exported file to the keyed storage shape",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := readDocument(args[0])
			if err != nil {
				return err
			}
			data, err := json.MarshalIndent(codec.ToKeyed(doc), "", "  ")
			if err != nil {
				return err
			}
			return writeOutput(cmd.OutOrStdout(), "", data)
		},
	}
}

func newFlatCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "flat <file>",
		Short: "Convert a keyed storage document to the exported file shape",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			var kdoc codec.KeyedDocument
			if err := json.Unmarshal(data, &kdoc); err != nil {
				return fmt.Errorf("%w: %w", codec.ErrMalformedDocument, err)
			}
			doc, err := codec.FromKeyed(kdoc)
			if err != nil {
				return err
			}
			encoded, err := codec.Encode(doc)
			if err != nil {
				return err
			}
			return writeOutput(cmd.OutOrStdout(), "", encoded)
		},
	}
}

func newDumpCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dump <file>",
		Short: "Print the decoded document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := readDocument(args[0])
			if err != nil {
				return err
			}
			dumper := litter.Options{HidePrivateFields: false, StripPackageNames: true}
			fmt.Fprintln(cmd.OutOrStdout(), dumper.Sdump(doc))
			return nil
		},
	}
}
