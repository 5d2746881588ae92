package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/sergi/go-diff/diffmatchpatch"
	"github.com/zeyadhassan/codepulse/internal/contract"
	"github.com/zeyadhassan/codepulse/schema"
)

// WriteSuggestionList outputs suggestions for one file, dispatching on the output format.
func WriteSuggestionList(path string, suggestions []schema.Suggestion, cfg *contract.Config) error {
	return dispatch(cfg,
		func(w io.Writer) error { return writeJSON(w, suggestions) },
		func(w io.Writer) error { return writeSuggestionsCSV(w, path, suggestions) },
		func(w io.Writer) error { return writeSuggestionsText(w, path, suggestions, cfg.UseColors) },
	)
}

func writeSuggestionsText(w io.Writer, path string, suggestions []schema.Suggestion, useColors bool) error {
	if len(suggestions) == 0 {
		_, err := fmt.Fprintf(w, "✅ No suggestions for %s\n", path)
		return err
	}

	fixable := 0
	var b strings.Builder
	fmt.Fprintf(&b, "💡 %d suggestions for %s\n", len(suggestions), path)
	for i, s := range suggestions {
		lines := fmt.Sprintf("L%d", s.StartLine+1)
		if s.EndLine != s.StartLine {
			lines = fmt.Sprintf("L%d-%d", s.StartLine+1, s.EndLine+1)
		}
		fmt.Fprintf(&b, "\n%d. [%s] %s: %s\n", i+1, s.Kind, lines, s.Title)
		if s.Description != "" && s.Description != s.Title {
			fmt.Fprintf(&b, "   %s\n", s.Description)
		}
		if s.Edit != nil {
			fixable++
			b.WriteString(RenderEditPreview(*s.Edit, useColors))
		}
	}
	fmt.Fprintf(&b, "\n%d of %d suggestions have an automatic edit\n", fixable, len(suggestions))
	_, err := io.WriteString(w, b.String())
	return err
}

// RenderEditPreview shows a line edit as removed and added lines plus an
// inline character diff where deletions are wrapped in [-...-] and insertions in {+...+}.
func RenderEditPreview(edit schema.TextEdit, useColors bool) string {
	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(edit.Original, edit.Replacement, false)

	del, ins := fmt.Sprint, fmt.Sprint
	if useColors {
		del = color.New(color.FgRed).Sprint
		ins = color.New(color.FgGreen).Sprint
	}

	var inline strings.Builder
	for _, d := range diffs {
		switch d.Type {
		case diffmatchpatch.DiffDelete:
			inline.WriteString(del("[-" + d.Text + "-]"))
		case diffmatchpatch.DiffInsert:
			inline.WriteString(ins("{+" + d.Text + "+}"))
		case diffmatchpatch.DiffEqual:
			inline.WriteString(d.Text)
		}
	}

	return fmt.Sprintf("   %s %s\n   %s %s\n   ~ %s\n",
		del("-"), edit.Original, ins("+"), edit.Replacement, inline.String())
}

func writeSuggestionsCSV(w io.Writer, path string, suggestions []schema.Suggestion) error {
	header := []string{"path", "kind", "start_line", "end_line", "title", "description", "fixable", "replacement"}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		for _, s := range suggestions {
			replacement := ""
			if s.Edit != nil {
				replacement = s.Edit.Replacement
			}
			rec := []string{
				path,
				string(s.Kind),
				strconv.Itoa(s.StartLine),
				strconv.Itoa(s.EndLine),
				s.Title,
				s.Description,
				strconv.FormatBool(s.Fixable()),
				replacement,
			}
			if err := cw.Write(rec); err != nil {
				return err
			}
		}
		return nil
	})
}
