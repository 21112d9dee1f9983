package caller

// outputFormats is the fixed vocabulary accepted for Config.OutputFormat.
// Unknown values are rejected with ConfigurationError rather than
// compared loosely, resolving the open question in spec.md §9 about
// output-format identity.
var outputFormats = map[string]bool{
	"json": true,
	"yaml": true,
}

// Config holds the enumerated matcher options from spec.md §6.
type Config struct {
	// AssumeReference fills missing haplotype slots with the
	// reference allele, and keeps a haplotype whose declared allele at
	// a position without sample data is the reference allele. A
	// haplotype declaring any other allele at such a position is still
	// dropped.
	AssumeReference bool

	// TopCandidateOnly returns only the maximum-scoring diplotypes per
	// gene. Defaults to true.
	TopCandidateOnly bool

	// AlwaysShowUnmatchedHaplotypes is reporting-side only; it does
	// not affect the search itself.
	AlwaysShowUnmatchedHaplotypes bool

	// OutputFormat is "json" or "yaml".
	OutputFormat string
}

// DefaultConfig returns the matcher's default configuration.
func DefaultConfig() Config {
	return Config{
		TopCandidateOnly: true,
		OutputFormat:     "json",
	}
}

// Validate checks enumerated options against their fixed vocabulary.
func (c Config) Validate() error {
	if !outputFormats[c.OutputFormat] {
		return &ConfigurationError{Option: "outputFormat", Value: c.OutputFormat}
	}
	return nil
}
