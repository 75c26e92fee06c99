package output

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/chrisdamba/tripzones/internal/models"
	"gopkg.in/yaml.v3"
)

// Renderer writes a report in one document format.
type Renderer func(w io.Writer, report *models.Report) error

// RendererFor returns the renderer and file extension for format. Parquet is
// not a streamed format and has its own destination.
func RendererFor(format string) (Renderer, string, error) {
	switch format {
	case models.OutputFormatText:
		return RenderText, "txt", nil
	case models.OutputFormatJSON:
		return RenderJSON, "json", nil
	case models.OutputFormatYAML:
		return RenderYAML, "yaml", nil
	case models.OutputFormatCSV:
		return RenderCSV, "csv", nil
	default:
		return nil, "", fmt.Errorf("unsupported output format: %s", format)
	}
}

// RenderText writes the plain ranking listing:
//
//	TOP_ZONES
//	<zone>,<count>
//	TOP_SLOTS
//	<zone>,<hour>,<count>
func RenderText(w io.Writer, report *models.Report) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, models.SectionTopZones)
	for _, z := range report.TopZones {
		fmt.Fprintf(bw, "%s,%d\n", z.Zone, z.Count)
	}
	fmt.Fprintln(bw, models.SectionTopSlots)
	for _, s := range report.TopSlots {
		fmt.Fprintf(bw, "%s,%d,%d\n", s.Zone, s.Hour, s.Count)
	}
	return bw.Flush()
}

func RenderJSON(w io.Writer, report *models.Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}

func RenderYAML(w io.Writer, report *models.Report) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(report); err != nil {
		return err
	}
	return enc.Close()
}

// RenderCSV writes one row per ranked entry. Zone rows leave the hour empty.
func RenderCSV(w io.Writer, report *models.Report) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"section", "rank", "zone", "hour", "count"}); err != nil {
		return err
	}
	for i, z := range report.TopZones {
		row := []string{models.SectionTopZones, strconv.Itoa(i + 1), z.Zone, "", strconv.Itoa(z.Count)}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	for i, s := range report.TopSlots {
		row := []string{models.SectionTopSlots, strconv.Itoa(i + 1), s.Zone, strconv.Itoa(s.Hour), strconv.Itoa(s.Count)}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
