package cli

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/dustin/go-humanize"
	"github.com/lherron/catimerge/internal/archive"
	"github.com/lherron/catimerge/internal/cli/appctx"
	"github.com/lherron/catimerge/internal/domain"
	"github.com/lherron/catimerge/internal/render"
	"github.com/lherron/catimerge/internal/table"
	"github.com/spf13/cobra"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect ZIP",
	Short: "Describe a Catima export zip",
	Long: `Parses a Catima export zip and reports its version, section counts,
section headers and image files. The table digest is an xxhash of the raw
catima.csv; "round trip" reports whether re-encoding the parsed table
reproduces it byte for byte.`,
	Args: cobra.ExactArgs(1),
	RunE: appctx.WithApp(appctx.DefaultOptions(), runInspect),
}

var (
	inspectJSON bool
	inspectYAML bool
)

func init() {
	rootCmd.AddCommand(inspectCmd)
	inspectCmd.Flags().BoolVar(&inspectJSON, "json", false, "Output as JSON")
	inspectCmd.Flags().BoolVar(&inspectYAML, "yaml", false, "Output as YAML")
	inspectCmd.Flags().StringP("output", "o", "", "Output format: table, json or yaml (overrides CATIMERGE_OUTPUT)")
}

type inspectReport struct {
	Path        string              `json:"path" yaml:"path"`
	Version     int                 `json:"version" yaml:"version"`
	Counts      domain.Counts       `json:"counts" yaml:"counts"`
	Headers     map[string][]string `json:"headers" yaml:"headers"`
	Groups      []string            `json:"groups" yaml:"groups"`
	TableSize   int                 `json:"table_size" yaml:"table_size"`
	TableDigest string              `json:"table_digest" yaml:"table_digest"`
	RoundTrip   bool                `json:"round_trip" yaml:"round_trip"`
	MaxCardID   int                 `json:"max_card_id" yaml:"max_card_id"`
	Images      []inspectImage      `json:"images" yaml:"images"`
}

type inspectImage struct {
	Name   string `json:"name" yaml:"name"`
	CardID int    `json:"card_id" yaml:"card_id"`
	Side   string `json:"side" yaml:"side"`
	Size   uint64 `json:"size" yaml:"size"`
}

func runInspect(app *appctx.App, cmd *cobra.Command, args []string) error {
	format, err := inspectFormat(app.Config.Output)
	if err != nil {
		return err
	}

	src, err := archive.Open(args[0])
	if err != nil {
		return err
	}
	defer src.Close()

	report, err := buildInspectReport(src)
	if err != nil {
		return err
	}

	r := render.NewRenderer(cmd.OutOrStdout(), format)
	if format != render.FormatTable {
		return r.Render(report)
	}
	return renderInspectTable(r, report)
}

func inspectFormat(configured string) (render.Format, error) {
	switch {
	case inspectJSON && inspectYAML:
		return "", fmt.Errorf("--json and --yaml are mutually exclusive")
	case inspectJSON:
		return render.FormatJSON, nil
	case inspectYAML:
		return render.FormatYAML, nil
	}
	return render.ParseFormat(configured)
}

func buildInspectReport(src *archive.Source) (*inspectReport, error) {
	export, ok := src.Export().(*domain.ExportV2)
	if !ok {
		return nil, domain.Errorf(domain.KindUnsupportedVersion, "unsupported version: %d", src.Export().Version())
	}

	data := src.TableData()
	encoded, err := table.Marshal(export)
	if err != nil {
		return nil, err
	}

	report := &inspectReport{
		Path:        src.Path(),
		Version:     export.Version(),
		Counts:      export.Counts(),
		Headers:     make(map[string][]string),
		TableSize:   len(data),
		TableDigest: fmt.Sprintf("%016x", xxhash.Sum64(data)),
		RoundTrip:   bytes.Equal(encoded, data),
		Groups:      []string{},
		Images:      []inspectImage{},
	}

	for _, s := range export.Sections() {
		report.Headers[s.Name] = s.Table.Keys
	}

	if len(export.Groups.Keys) > 0 {
		for _, rec := range export.Groups.Records {
			report.Groups = append(report.Groups, rec[0])
		}
	}

	idCol, err := export.Cards.MustIndex(domain.SectionCards, domain.KeyCardID)
	if err != nil {
		return nil, err
	}
	for _, rec := range export.Cards.Records {
		id, err := domain.ParseCardID(rec[idCol])
		if err != nil {
			return nil, err
		}
		if id > report.MaxCardID {
			report.MaxCardID = id
		}
	}

	sizes := make(map[string]uint64)
	for _, m := range src.Members() {
		sizes[m.Name] = m.Size
	}
	for _, name := range export.ImageFiles {
		img, err := domain.ParseImageName(name)
		if err != nil {
			return nil, err
		}
		report.Images = append(report.Images, inspectImage{
			Name:   name,
			CardID: img.CardID,
			Side:   img.Side,
			Size:   sizes[name],
		})
	}

	return report, nil
}

func renderInspectTable(r *render.Renderer, report *inspectReport) error {
	pairs := []render.KeyValue{
		{Key: "Path", Value: report.Path},
		{Key: "Version", Value: strconv.Itoa(report.Version)},
		{Key: "Groups", Value: strconv.Itoa(report.Counts.Groups)},
		{Key: "Cards", Value: strconv.Itoa(report.Counts.Cards)},
		{Key: "Card groups", Value: strconv.Itoa(report.Counts.CardGroups)},
		{Key: "Images", Value: strconv.Itoa(report.Counts.Images)},
		{Key: "Max card ID", Value: strconv.Itoa(report.MaxCardID)},
		{Key: "Table", Value: fmt.Sprintf("%s, xxhash %s", humanize.Bytes(uint64(report.TableSize)), report.TableDigest)},
		{Key: "Round trip", Value: roundTripLabel(report.RoundTrip)},
	}
	for _, s := range []string{domain.SectionGroups, domain.SectionCards, domain.SectionCardGroups} {
		pairs = append(pairs, render.KeyValue{
			Key:   s + " keys",
			Value: strings.Join(report.Headers[s], ", "),
		})
	}
	if err := r.RenderKeyValues(pairs); err != nil {
		return err
	}

	if len(report.Images) == 0 {
		return nil
	}
	fmt.Fprintln(r.Writer())
	rows := make([][]string, len(report.Images))
	for i, img := range report.Images {
		rows[i] = []string{strconv.Itoa(img.CardID), img.Side, humanize.Bytes(img.Size), img.Name}
	}
	return r.RenderTable([]string{"CARD", "SIDE", "SIZE", "NAME"}, rows)
}

func roundTripLabel(ok bool) string {
	if ok {
		return "identical"
	}
	return "differs"
}
