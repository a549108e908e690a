package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/MJE43/powerball-superposition/internal/store"
)

func newSavedCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "saved",
		Aliases: []string{"combinations"},
		Short:   "Manage saved combinations",
	}
	cmd.AddCommand(
		newSavedListCommand(a),
		newSavedShowCommand(a),
		newSavedAddCommand(a),
		newSavedDeleteCommand(a),
		newSavedClearCommand(a),
		newSavedExportCommand(a),
		newSavedImportCommand(a),
		newSavedInfoCommand(a),
	)
	return cmd
}

// withStore opens the configured store for the duration of fn.
func (a *app) withStore(fn func(db store.DB) error) error {
	db, err := a.openStore()
	if err != nil {
		return err
	}
	defer db.Close()
	return fn(db)
}

func newSavedListCommand(a *app) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List saved combinations, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withStore(func(db store.DB) error {
				list, err := db.List()
				if err != nil {
					return err
				}
				if asJSON {
					if list == nil {
						list = []store.Combination{}
					}
					return writeJSON(cmd.OutOrStdout(), list)
				}
				printCombinations(cmd.OutOrStdout(), list)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print as JSON")
	return cmd
}

func newSavedShowCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one saved combination",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withStore(func(db store.DB) error {
				c, err := db.Get(args[0])
				if err != nil {
					return err
				}
				return writeJSON(cmd.OutOrStdout(), c)
			})
		},
	}
}

func newSavedAddCommand(a *app) *cobra.Command {
	var powerball int
	cmd := &cobra.Command{
		Use:   "add <number>...",
		Short: "Save a combination picked by hand",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			main, err := parseInts(args)
			if err != nil {
				return err
			}
			return a.withStore(func(db store.DB) error {
				c := &store.Combination{Main: main, Powerball: powerball, Entropy: "manual"}
				if err := db.Save(c); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), c.ID)
				return nil
			})
		},
	}
	cmd.Flags().IntVarP(&powerball, "powerball", "p", 0, "Powerball number")
	_ = cmd.MarkFlagRequired("powerball")
	return cmd
}

func newSavedDeleteCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a saved combination",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withStore(func(db store.DB) error {
				ok, err := db.Delete(args[0])
				if err != nil {
					return err
				}
				if !ok {
					return fmt.Errorf("%w: %s", store.ErrNotFound, args[0])
				}
				fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", args[0])
				return nil
			})
		},
	}
}

func newSavedClearCommand(a *app) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete every saved combination",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !yes {
				return fmt.Errorf("refusing to clear without --yes")
			}
			return a.withStore(func(db store.DB) error {
				if err := db.Clear(); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "cleared")
				return nil
			})
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Confirm the deletion")
	return cmd
}

func newSavedExportCommand(a *app) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export saved combinations as JSON",
		Long: `Export saved combinations. Without --out the document is written to
lottery-combinations-YYYY-MM-DD.json in the current directory; use --out - for stdout.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withStore(func(db store.DB) error {
				now := time.Now()
				doc, err := store.Export(db, now)
				if err != nil {
					return err
				}
				if doc.Combinations == nil {
					doc.Combinations = []store.Combination{}
				}
				if out == "-" {
					return writeJSON(cmd.OutOrStdout(), doc)
				}
				path := out
				if path == "" {
					path = fmt.Sprintf("lottery-combinations-%s.json", now.Format("2006-01-02"))
				}
				data, err := json.MarshalIndent(doc, "", "  ")
				if err != nil {
					return err
				}
				if err := os.WriteFile(path, data, 0o644); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "exported %d combinations to %s\n", doc.Total, path)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "Output file")
	return cmd
}

func newSavedImportCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Import combinations from an export file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			var doc store.ExportDocument
			if err := json.Unmarshal(data, &doc); err != nil {
				return fmt.Errorf("%w: %v", store.ErrInvalidImport, err)
			}
			return a.withStore(func(db store.DB) error {
				n, err := db.Import(doc)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "imported %d combinations\n", n)
				return nil
			})
		},
	}
}

func newSavedInfoCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Show storage usage",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withStore(func(db store.DB) error {
				info, err := store.StorageInfo(db)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "driver:        %s\n", a.cfg.Storage.Driver)
				fmt.Fprintf(out, "path:          %s\n", a.storagePath())
				fmt.Fprintf(out, "combinations:  %d / %d\n", info.Combinations, info.Max)
				fmt.Fprintf(out, "size:          %s KB\n", strings.TrimSpace(info.SizeKB))
				return nil
			})
		},
	}
}
