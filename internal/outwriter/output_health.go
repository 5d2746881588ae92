package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/zeyadhassan/codepulse/internal/contract"
	"github.com/zeyadhassan/codepulse/schema"
)

// WriteHealthModelDefinition displays how the health score is computed.
// This is a static display that does not require any analysis.
func WriteHealthModelDefinition(model schema.HealthModel, cfg *contract.Config) error {
	return dispatch(cfg,
		func(w io.Writer) error { return writeJSON(w, model) },
		func(w io.Writer) error { return writeHealthModelCSV(w, model) },
		func(w io.Writer) error { return writeHealthModelText(w, model) },
	)
}

func writeHealthModelText(w io.Writer, model schema.HealthModel) error {
	var b strings.Builder
	b.WriteString("🩺 Health Score Model\n")
	b.WriteString("=====================\n\n")
	fmt.Fprintf(&b, "Every file starts at %g. Penalties are subtracted and the result is clamped to [0, %g].\n\n", model.Start, model.Start)

	terms := make([]string, 0, len(model.Penalties))
	for _, p := range model.Penalties {
		scope := "total"
		if p.CapPerIssue {
			scope = "per issue"
		}
		fmt.Fprintf(&b, "  %-12s %-28s capped at %g %s\n", p.Category, p.PerIssue, p.Cap, scope)
		if p.CapPerIssue {
			terms = append(terms, fmt.Sprintf("Σ min(%g, %s)", p.Cap, p.PerIssue))
		} else {
			terms = append(terms, fmt.Sprintf("min(%g, %s)", p.Cap, p.Category))
		}
	}
	fmt.Fprintf(&b, "\n  health = %g - %s\n\nBands:\n", model.Start, strings.Join(terms, " - "))
	for _, band := range model.Bands {
		fmt.Fprintf(&b, "  %-5s >= %g\n", band.Band, band.MinScore)
	}
	fmt.Fprintf(&b, "\nInputs longer than %s characters are not analyzed.\n", humanize.Comma(int64(model.MaxTextLen)))

	_, err := io.WriteString(w, b.String())
	return err
}

func writeHealthModelCSV(w io.Writer, model schema.HealthModel) error {
	return writeCSVWithHeader(w, []string{"kind", "name", "rule", "value"}, func(cw *csv.Writer) error {
		if err := cw.Write([]string{"start", "health", "", strconv.FormatFloat(model.Start, 'f', -1, 64)}); err != nil {
			return err
		}
		for _, p := range model.Penalties {
			rule := p.PerIssue
			if p.CapPerIssue {
				rule += " (per issue)"
			}
			if err := cw.Write([]string{"penalty", p.Category, rule, strconv.FormatFloat(p.Cap, 'f', -1, 64)}); err != nil {
				return err
			}
		}
		for _, band := range model.Bands {
			if err := cw.Write([]string{"band", string(band.Band), ">=", strconv.FormatFloat(band.MinScore, 'f', -1, 64)}); err != nil {
				return err
			}
		}
		return cw.Write([]string{"limit", "max_text_chars", "", strconv.Itoa(model.MaxTextLen)})
	})
}
