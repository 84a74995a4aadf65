package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kpfaulkner/ledgerstore/pkg/clock"
	"github.com/kpfaulkner/ledgerstore/pkg/identity"
	"github.com/kpfaulkner/ledgerstore/pkg/records"
	"github.com/kpfaulkner/ledgerstore/pkg/storage"
)

// RecordOptions holds flags for the record commands.
type RecordOptions struct {
	*RootOptions
	Owner  string
	Caller string
}

// NewRecordCommand creates the record command group.
func NewRecordCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RecordOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "record",
		Short: "Manage owned records",
	}

	create := &cobra.Command{
		Use:   "create [id] <value>",
		Short: "Store a record owned by --owner, replacing any record under id",
		Long: `Store a record owned by --owner.

Any record already stored under id is replaced, owner included.
Without an id a fresh one is generated and printed.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			owner, err := identity.Parse(opts.Owner)
			if err != nil {
				return fmt.Errorf("--owner: %w", err)
			}
			id, value := records.NewID(), args[0]
			if len(args) == 2 {
				id, value = args[0], args[1]
			}
			return opts.records(func(s *records.Store) error {
				if err := s.Create(cmd.Context(), id, value, owner); err != nil {
					return err
				}
				return opts.print(cmd.OutOrStdout(), id, map[string]string{"id": id})
			})
		},
	}
	create.Flags().StringVar(&opts.Owner, "owner", "", "identity that will own the record")
	cmd.AddCommand(create)

	cmd.AddCommand(&cobra.Command{
		Use:   "read <id>",
		Short: "Show a record as [value owner last_modified]",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.records(func(s *records.Store) error {
				rec, err := s.Read(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if rec == nil {
					return opts.print(cmd.OutOrStdout(), "[]", []any{})
				}
				return opts.print(cmd.OutOrStdout(),
					fmt.Sprintf("[%s %s %d]", rec.Value, rec.Owner, rec.LastModified),
					[]any{rec.Value, rec.Owner, rec.LastModified})
			})
		},
	})

	update := &cobra.Command{
		Use:   "update <id> <value>",
		Short: "Replace the value of a record owned by --caller",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			caller, err := identity.Parse(opts.Caller)
			if err != nil {
				return fmt.Errorf("--caller: %w", err)
			}
			return opts.records(func(s *records.Store) error {
				return s.Update(cmd.Context(), args[0], args[1], caller)
			})
		},
	}
	update.Flags().StringVar(&opts.Caller, "caller", "", "identity performing the update")
	cmd.AddCommand(update)

	del := &cobra.Command{
		Use:   "delete <id>",
		Short: "Remove a record owned by --caller",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			caller, err := identity.Parse(opts.Caller)
			if err != nil {
				return fmt.Errorf("--caller: %w", err)
			}
			return opts.records(func(s *records.Store) error {
				return s.Delete(cmd.Context(), args[0], caller)
			})
		},
	}
	del.Flags().StringVar(&opts.Caller, "caller", "", "identity performing the delete")
	cmd.AddCommand(del)

	cmd.AddCommand(&cobra.Command{
		Use:   "is-owner <id> <address>",
		Short: "Report whether address owns the record",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			address, err := identity.Parse(args[1])
			if err != nil {
				return err
			}
			return opts.records(func(s *records.Store) error {
				owner, err := s.IsOwner(cmd.Context(), args[0], address)
				if err != nil {
					return err
				}
				return opts.print(cmd.OutOrStdout(), fmt.Sprint(owner), owner)
			})
		},
	})

	return cmd
}

func (o *RecordOptions) records(fn func(*records.Store) error) error {
	return o.withHost(recordsNamespace, func(h storage.Host) error {
		return fn(records.NewStore(h, clock.NewSystem()))
	})
}
