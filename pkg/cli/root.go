package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/kpfaulkner/ledgerstore/cmd/common"
	"github.com/kpfaulkner/ledgerstore/pkg/config"
	"github.com/kpfaulkner/ledgerstore/pkg/storage"
)

// Namespaces the two engines use inside a shared backend.
const (
	inventoryNamespace = "inventory"
	recordsNamespace   = "records"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Backend  string
	Path     string
	LogLevel string
	Format   string // "json" | "text"
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command. cfg supplies the flag defaults.
func NewRootCommand(cfg config.Config) *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "ledgerstore",
		Short: "Product inventory and owned records on a local key/value store",
		Long: `Product inventory and owned records on a local key/value store.

Data lives under --path in the --backend store (sqlite unless
LEDGERSTORE_BACKEND says otherwise). The memory backend keeps nothing
once the command exits, so each invocation starts empty.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			if err := (config.Config{Backend: opts.Backend}).Validate(); err != nil {
				return err
			}
			common.SetLogLevel(opts.LogLevel)
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&opts.Backend, "backend", cfg.Backend, fmt.Sprintf("storage backend %v", storage.Backends()))
	cmd.PersistentFlags().StringVar(&opts.Path, "path", cfg.Path, "directory holding the backend files")
	cmd.PersistentFlags().StringVar(&opts.LogLevel, "loglevel", cfg.LogLevel, "Log Level: debug, info, warn, error")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")

	cmd.AddCommand(NewProductCommand(opts))
	cmd.AddCommand(NewRecordCommand(opts))

	return cmd
}

// withHost opens the configured backend, hands fn the namespaced view and closes it afterwards.
func (o *RootOptions) withHost(namespace string, fn func(storage.Host) error) error {
	host, err := storage.Open(o.Backend, o.Path)
	if err != nil {
		return err
	}
	defer host.Close()
	return fn(storage.Namespace(host, namespace))
}

// print writes v as JSON, or text in its fmt form.
func (o *RootOptions) print(w io.Writer, text string, v any) error {
	if o.Format == "json" {
		enc := json.NewEncoder(w)
		return enc.Encode(v)
	}
	_, err := fmt.Fprintln(w, text)
	return err
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}
