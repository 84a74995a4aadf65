package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/kpfaulkner/ledgerstore/pkg/inventory"
	"github.com/kpfaulkner/ledgerstore/pkg/storage"
)

// NewProductCommand creates the product command group.
func NewProductCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "product",
		Short: "Manage the product inventory",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "add <name> <quantity> <price>",
		Short: "Add a new product",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			quantity, price, err := parseQuantityPrice(args[1], args[2])
			if err != nil {
				return err
			}
			return opts.inventory(func(s *inventory.Store) error {
				return s.AddProduct(cmd.Context(), args[0], quantity, price)
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "get <name>",
		Short: "Show a product as [quantity price]",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.inventory(func(s *inventory.Store) error {
				p, err := s.GetProduct(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				return opts.print(cmd.OutOrStdout(), fmt.Sprint(p.Values()), p.Values())
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "update <name> <quantity> <price>",
		Short: "Overwrite an existing product",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			quantity, price, err := parseQuantityPrice(args[1], args[2])
			if err != nil {
				return err
			}
			return opts.inventory(func(s *inventory.Store) error {
				return s.UpdateProduct(cmd.Context(), args[0], quantity, price)
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "delete <name>",
		Short: "Remove a product (no error if absent)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.inventory(func(s *inventory.Store) error {
				return s.DeleteProduct(cmd.Context(), args[0])
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List all products by name",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.inventory(func(s *inventory.Store) error {
				products, err := s.ListProducts(cmd.Context())
				if err != nil {
					return err
				}
				if opts.Format == "json" {
					return opts.print(cmd.OutOrStdout(), "", products)
				}
				for _, p := range products {
					if _, err := fmt.Fprintf(cmd.OutOrStdout(), "%s %v\n", p.Name, p.Values()); err != nil {
						return err
					}
				}
				return nil
			})
		},
	})

	return cmd
}

func (o *RootOptions) inventory(fn func(*inventory.Store) error) error {
	return o.withHost(inventoryNamespace, func(h storage.Host) error {
		return fn(inventory.NewStore(h))
	})
}

func parseQuantityPrice(q string, p string) (int32, int32, error) {
	quantity, err := strconv.ParseInt(q, 10, 32)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid quantity %q: %w", q, err)
	}
	price, err := strconv.ParseInt(p, 10, 32)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid price %q: %w", p, err)
	}
	return int32(quantity), int32(price), nil
}
