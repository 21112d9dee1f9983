package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/starallele/diplocaller/internal/definition"
)

func newDefinitionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "definitions",
		Short: "Inspect a gene definition directory",
	}

	cmd.AddCommand(newDefinitionsListCmd())
	return cmd
}

func newDefinitionsListCmd() *cobra.Command {
	var definitionsDir string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the genes available in a definitions directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDefinitionsList(cmd, definitionsDir)
		},
	}

	cmd.Flags().StringVar(&definitionsDir, "definitions", "", "directory of gene definition JSON files (required)")
	_ = cmd.MarkFlagRequired("definitions")

	return cmd
}

func runDefinitionsList(cmd *cobra.Command, definitionsDir string) error {
	log, err := newLogger("error")
	if err != nil {
		return err
	}
	defer log.Sync()

	store := definition.NewStore(log)
	if err := store.Load(definitionsDir); err != nil {
		return fmt.Errorf("load definitions: %w", err)
	}

	out := cmd.OutOrStdout()
	for _, name := range store.Genes() {
		gene := store.Gene(name)
		fmt.Fprintf(out, "%-12s chr=%-6s positions=%-4d haplotypes=%d\n",
			gene.Name, gene.Chromosome, len(gene.Positions), len(gene.Haplotypes))
	}
	return nil
}
