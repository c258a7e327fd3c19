package main

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vango-dev/fiber/internal/config"
	"github.com/vango-dev/fiber/pkg/fiber"
	"github.com/vango-dev/fiber/pkg/host/memhost"
	"github.com/vango-dev/fiber/pkg/vdom"
)

type renderOptions struct {
	units   int
	format  string
	explain bool
}

// report is the outcome of rendering one tree file.
type report struct {
	Name       string               `json:"name"`
	File       string               `json:"file"`
	Units      int                  `json:"units"`
	Slices     int                  `json:"slices"`
	Placements int                  `json:"placements"`
	Updates    int                  `json:"updates"`
	Deletions  int                  `json:"deletions"`
	Mutations  int                  `json:"mutations"`
	Effects    []fiber.EffectRecord `json:"effects,omitempty"`
	Log        []memhost.Mutation   `json:"log"`
	HTML       string               `json:"html"`
}

func renderCmd(g *globals) *cobra.Command {
	opts := renderOptions{}

	cmd := &cobra.Command{
		Use:   "render FILE...",
		Short: "Render tree files one after another",
		Long: `Render tree files into an in-memory host tree.

Each file is rendered as an update of the previous one, so a sequence of
files shows exactly which host mutations the reconciler issues between
them. The mutation log of every commit is printed, followed by the
resulting tree as HTML.

Examples:
  fiberctl render first.yaml second.yaml
  fiberctl render --units 3 tree.yaml
  fiberctl render --format json --explain tree.yaml`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := g.load()
			if err != nil {
				return err
			}
			reports, err := renderFiles(cfg, opts, args, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			return writeReports(cmd.OutOrStdout(), opts, reports)
		},
	}

	cmd.Flags().IntVarP(&opts.units, "units", "u", 0, "Yield after every N work units (default: use the frame budget)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "text", "Output format (text, json)")
	cmd.Flags().BoolVar(&opts.explain, "explain", false, "Include the committed effect list")

	return cmd
}

func renderFiles(cfg *config.Config, opts renderOptions, paths []string, stderr io.Writer) ([]report, error) {
	if opts.format != "text" && opts.format != "json" {
		return nil, fmt.Errorf("unknown format %q (want text or json)", opts.format)
	}
	if opts.units < 0 {
		return nil, fmt.Errorf("--units must not be negative")
	}

	tree := memhost.New()
	var last fiber.CommitInfo
	s := fiber.New(tree,
		fiber.WithLogger(logger(cfg, stderr).With("component", "fiber")),
		fiber.WithYieldThreshold(cfg.Scheduler.YieldThreshold),
		fiber.WithCommitHook(func(info fiber.CommitInfo) { last = info }),
	)

	reports := make([]report, 0, len(paths))
	for _, path := range paths {
		file, nodes, err := vdom.LoadTree(path)
		if err != nil {
			return nil, err
		}
		if err := s.Render(tree.Container(), nodes...); err != nil {
			return nil, err
		}
		for s.Pending() {
			var d fiber.Deadline
			if opts.units > 0 {
				d = fiber.Units(opts.units)
			} else {
				d = fiber.Budget(cfg.Scheduler.FrameBudget)
			}
			if err := s.WorkLoop(d); err != nil {
				return nil, fmt.Errorf("%s: %w", path, err)
			}
		}

		name := file.Name
		if name == "" {
			name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		}
		r := report{
			Name:       name,
			File:       path,
			Units:      last.Units,
			Slices:     last.Slices,
			Placements: last.Placements,
			Updates:    last.Updates,
			Deletions:  last.Deletions,
			Mutations:  last.Mutations,
			Log:        tree.TakeLog(),
			HTML:       tree.HTML(),
		}
		if opts.explain {
			r.Effects = last.Effects
		}
		reports = append(reports, r)
	}
	return reports, nil
}

func writeReports(w io.Writer, opts renderOptions, reports []report) error {
	if opts.format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(reports)
	}

	for i, r := range reports {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintf(w, "== %s: %d units in %d slices\n", r.Name, r.Units, r.Slices)
		fmt.Fprintf(w, "placements=%d updates=%d deletions=%d mutations=%d\n",
			r.Placements, r.Updates, r.Deletions, r.Mutations)
		if len(r.Effects) > 0 {
			fmt.Fprintln(w, "-- effects")
			for _, e := range r.Effects {
				fmt.Fprintf(w, "%s %s %s\n", e.Effect, e.Path, describe(e))
			}
		}
		fmt.Fprintln(w, "-- mutations")
		fmt.Fprint(w, memhost.FormatLog(r.Log))
		fmt.Fprintln(w, "-- html")
		fmt.Fprintln(w, r.HTML)
	}
	return nil
}

func describe(e fiber.EffectRecord) string {
	if e.Tag == fiber.TagText {
		return fmt.Sprintf("%q", e.Text)
	}
	return "<" + e.Type + ">"
}
