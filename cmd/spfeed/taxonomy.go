package main

import (
	"github.com/spf13/cobra"

	"github.com/crimson-sun/spfeed/internal/pipeline"
	"github.com/crimson-sun/spfeed/internal/taxonomy"
)

func init() {
	commandKeys["taxonomy"] = map[string]string{
		"check-paths":        "taxonomy.check_paths",
		"allow-non-guid-ids": "taxonomy.allow_non_guid_ids",
		"lenient":            "taxonomy.lenient",
		"flatten":            "taxonomy.flatten",
		"annotate-depth":     "taxonomy.annotate_depth",
	}
}

func newTaxonomyCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "taxonomy",
		Short: "Validate a term set payload and write it out",
		Long: `Reads a term set collection (a bare object or a ProcessQuery response),
checks that every TermsCount matches its child terms, that ids are GUIDs
and that no term repeats one of its ancestors, then writes the term sets
or, with --flatten, one label per term.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c := a.cfg.Taxonomy
			opts := pipeline.TaxonomyOptions{
				Validate: taxonomy.ValidateOptions{
					CheckPaths:      c.CheckPaths,
					AllowNonGuidIDs: c.AllowNonGuidIDs,
				},
				Lenient:       c.Lenient,
				AnnotateDepth: c.AnnotateDepth,
				Flatten:       c.Flatten,
			}
			return a.run(func(p *pipeline.Pipeline) error {
				_, err := p.RunTaxonomy(cmd.Context(), opts)
				return err
			})
		},
	}
	f := cmd.Flags()
	f.Bool("check-paths", false, "compare PathOfTerm with the names of each term's ancestors")
	f.Bool("allow-non-guid-ids", false, "accept term and term set ids that are not GUIDs")
	f.Bool("lenient", false, "log violations and write the term sets anyway")
	f.Bool("flatten", false, "write one label (id, path, depth) per term")
	f.Bool("annotate-depth", false, "set PathDepth on every term (top-level terms are 1)")
	return cmd
}
