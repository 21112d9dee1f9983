package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	yaml "gopkg.in/yaml.v3"

	"github.com/starallele/diplocaller/internal/caller"
	"github.com/starallele/diplocaller/internal/definition"
	"github.com/starallele/diplocaller/internal/historycache"
	"github.com/starallele/diplocaller/internal/result"
)

func newCallCmd() *cobra.Command {
	var (
		definitionsDir string
		outputPath     string
	)

	cmd := &cobra.Command{
		Use:   "call <input.vcf>",
		Short: "Call diplotypes for every gene in a definitions directory against one sample",
		Long: `Read a gene definition directory and a single-sample VCF (plain or
gzip-compressed, or "-" for stdin), enumerate candidate diplotype pairs
per gene, score and rank them, and write a Result as JSON or YAML.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCall(args[0], definitionsDir, outputPath)
		},
	}

	cmd.Flags().StringVar(&definitionsDir, "definitions", "", "directory of gene definition JSON files (required)")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "output file (default: stdout)")
	cmd.Flags().Bool("assume-reference", false, "fill missing haplotype slots with the reference allele")
	cmd.Flags().Bool("top-candidate-only", true, "return only maximum-scoring diplotypes per gene")
	cmd.Flags().Bool("always-show-unmatched-haplotypes", false, "reporting-side only; does not affect search")
	cmd.Flags().String("output-format", "json", "result format: json or yaml")
	cmd.Flags().String("history-cache", "", "DuckDB file to cache results in (empty disables caching)")

	_ = cmd.MarkFlagRequired("definitions")
	_ = viper.BindPFlag("assumeReference", cmd.Flags().Lookup("assume-reference"))
	_ = viper.BindPFlag("topCandidateOnly", cmd.Flags().Lookup("top-candidate-only"))
	_ = viper.BindPFlag("alwaysShowUnmatchedHaplotypes", cmd.Flags().Lookup("always-show-unmatched-haplotypes"))
	_ = viper.BindPFlag("outputFormat", cmd.Flags().Lookup("output-format"))
	_ = viper.BindPFlag("historyCache.path", cmd.Flags().Lookup("history-cache"))

	return cmd
}

func runCall(inputPath, definitionsDir, outputPath string) error {
	log, err := newLogger(viper.GetString("logLevel"))
	if err != nil {
		return err
	}
	defer log.Sync()

	store := definition.NewStore(log)
	if err := store.Load(definitionsDir); err != nil {
		return fmt.Errorf("load definitions: %w", err)
	}

	cfg := caller.Config{
		AssumeReference:               viper.GetBool("assumeReference"),
		TopCandidateOnly:              viper.GetBool("topCandidateOnly"),
		AlwaysShowUnmatchedHaplotypes: viper.GetBool("alwaysShowUnmatchedHaplotypes"),
		OutputFormat:                  viper.GetString("outputFormat"),
	}

	c, err := caller.New(store, cfg, log)
	if err != nil {
		return err
	}

	res, cacheErr := callWithCache(c, inputPath, log)
	if cacheErr != nil {
		return cacheErr
	}

	return writeResult(res, cfg.OutputFormat, outputPath)
}

// callWithCache wraps Caller.Call with an optional DuckDB-backed cache
// keyed on the input file's fingerprint and the matcher version.
func callWithCache(c *caller.Caller, inputPath string, log *zap.Logger) (*result.Result, error) {
	cachePath := viper.GetString("historyCache.path")
	if cachePath == "" || inputPath == "-" {
		return c.Call(inputPath)
	}

	store, err := historycache.Open(cachePath)
	if err != nil {
		log.Warn("history cache unavailable, calling without it", zap.Error(err))
		return c.Call(inputPath)
	}
	defer store.Close()

	fp, err := historycache.Fingerprint(inputPath)
	if err != nil {
		return c.Call(inputPath)
	}

	if cached, ok, err := store.Lookup(fp, result.MatcherVersion); err == nil && ok {
		log.Debug("serving result from history cache", zap.String("input", inputPath))
		return cached, nil
	}

	res, err := c.Call(inputPath)
	if err != nil {
		return nil, err
	}

	if err := store.Put(fp, result.MatcherVersion, res); err != nil {
		log.Warn("failed to write history cache entry", zap.Error(err))
	}
	return res, nil
}

func writeResult(res *result.Result, format, outputPath string) error {
	out := os.Stdout
	if outputPath != "" {
		f, err := os.Create(outputPath)
		if err != nil {
			return fmt.Errorf("create output file: %w", err)
		}
		defer f.Close()
		out = f
	}

	switch format {
	case "yaml":
		enc := yaml.NewEncoder(out)
		defer enc.Close()
		return enc.Encode(res)
	default:
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	}
}
