package commands

import (
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/xpense-dev/xpense/internal/draft"
	"github.com/xpense-dev/xpense/internal/model"
	"github.com/xpense-dev/xpense/internal/validate"
)

func newFieldsCommand(a *app) *cobra.Command {
	var entryType string

	cmd := &cobra.Command{
		Use:   "fields [mode]",
		Short: "Show the entry types and fields of a mode (default from config)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.load(cmd); err != nil {
				return err
			}
			mode := a.cfg.Mode()
			if len(args) > 0 {
				m, err := model.ParseMode(args[0])
				if err != nil {
					return err
				}
				mode = m
			}
			return runFields(cmd, mode, entryType)
		},
	}

	cmd.Flags().StringVar(&entryType, "type", "", "entry type (default: the mode's first)")

	return cmd
}

func runFields(cmd *cobra.Command, mode model.Mode, entryType string) error {
	d, err := draft.SetMode(draft.New(time.Now()), mode)
	if err != nil {
		return err
	}
	if entryType != "" {
		t, err := model.ParseEntryType(entryType)
		if err != nil {
			return err
		}
		if d, err = draft.SetEntryType(d, t); err != nil {
			return err
		}
	}

	types := mode.EntryTypes()
	names := make([]string, len(types))
	for i, t := range types {
		names[i] = string(t)
	}
	names[0] += " (default)"

	legal := draft.Legal(d.Mode, d.EntryType)
	fields := []string{string(model.FieldDate)}
	for _, f := range draft.Fields() {
		if legal.Has(f) {
			fields = append(fields, string(f))
		}
	}

	// An empty draft's problems are exactly its required fields.
	var required []string
	for _, p := range validate.Check(d) {
		required = append(required, string(p.Field))
	}

	printf(cmd, "mode: %s\n", mode)
	printf(cmd, "entry types: %s\n", strings.Join(names, ", "))
	printf(cmd, "fields for %s: %s\n", d.EntryType, strings.Join(fields, ", "))
	printf(cmd, "required: %s\n", strings.Join(required, ", "))
	return nil
}
