package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/gosimple/slug"
	"github.com/spf13/cobra"

	"venture-match/internal/models"
)

// importFile is the document bundle accepted by the import command.
type importFile struct {
	Startups  []models.Startup  `json:"startups"`
	Investors []models.Investor `json:"investors"`
}

// readImportFile decodes a bundle and derives missing ids from names.
func readImportFile(path string) (*importFile, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var f importFile
	if err := json.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}

	for i := range f.Startups {
		s := &f.Startups[i]
		if s.ID == "" {
			s.ID = slug.Make(s.Name)
		}
		if s.ID == "" {
			return nil, fmt.Errorf("startup #%d has neither id nor name", i+1)
		}
	}
	for i := range f.Investors {
		inv := &f.Investors[i]
		if inv.ID == "" {
			inv.ID = slug.Make(inv.Name)
		}
		if inv.ID == "" {
			return nil, fmt.Errorf("investor #%d has neither id nor name", i+1)
		}
	}
	return &f, nil
}

func (c *cli) importCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <file.json>",
		Short: "Upsert startup and investor profiles from a JSON bundle",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			bundle, err := readImportFile(args[0])
			if err != nil {
				return err
			}

			deps, _, err := c.connect(cmd.Context())
			if err != nil {
				return err
			}
			defer deps.Close()

			for _, s := range bundle.Startups {
				if err := deps.Docs.SaveStartup(cmd.Context(), s); err != nil {
					return err
				}
			}
			for _, inv := range bundle.Investors {
				if err := deps.Docs.SaveInvestor(cmd.Context(), inv); err != nil {
					return err
				}
			}
			return c.printJSON(map[string]int{
				"startups":  len(bundle.Startups),
				"investors": len(bundle.Investors),
			})
		},
	}
}

func (c *cli) migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			deps, _, err := c.connect(cmd.Context())
			if err != nil {
				return err
			}
			defer deps.Close()

			if err := deps.Repo.Migrate(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(c.out, "schema up to date")
			return nil
		},
	}
}
