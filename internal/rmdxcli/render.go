package rmdxcli

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"remindex/internal/model"
)

func writeRecords(cmd *cobra.Command, recs []model.Record, asJSON bool) error {
	out := cmd.OutOrStdout()
	if asJSON {
		enc := json.NewEncoder(out)
		for _, r := range recs {
			if err := enc.Encode(r); err != nil {
				return err
			}
		}
		return nil
	}
	for _, r := range recs {
		fmt.Fprintln(out, renderRecord(r))
	}
	return nil
}

func writeHits(cmd *cobra.Command, hits []model.SearchHit, asJSON bool) error {
	out := cmd.OutOrStdout()
	if asJSON {
		enc := json.NewEncoder(out)
		for _, h := range hits {
			if err := enc.Encode(h); err != nil {
				return err
			}
		}
		return nil
	}
	if len(hits) == 0 {
		fmt.Fprintln(out, "no results")
		return nil
	}
	for _, h := range hits {
		line := renderRecord(h.Record)
		if h.Score > 0 {
			line += fmt.Sprintf("  (%.2f)", h.Score)
		}
		fmt.Fprintln(out, line)
	}
	return nil
}

func renderRecord(r model.Record) string {
	var b strings.Builder
	if r.Completed {
		b.WriteString("[x] ")
	} else {
		b.WriteString("[ ] ")
	}
	b.WriteString(r.Title)
	if r.Flagged {
		b.WriteString(" !")
	}
	fmt.Fprintf(&b, "  (%s", r.ListName)
	if r.DueAt != nil {
		fmt.Fprintf(&b, ", due %s", time.Unix(*r.DueAt, 0).Format("2006-01-02"))
	}
	b.WriteString(")")
	return b.String()
}
