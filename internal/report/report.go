/*
 * Copyright 2024 The Mewt Authors
 *
 *    Licensed under the Apache License, Version 2.0 (the "License");
 *    you may not use this file except in compliance with the License.
 *    You may obtain a copy of the License at
 *
 *        http://www.apache.org/licenses/LICENSE-2.0
 *
 *    Unless required by applicable law or agreed to in writing, software
 *    distributed under the License is distributed on an "AS IS" BASIS,
 *    WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 *    See the License for the specific language governing permissions and
 *    limitations under the License.
 */

// Package report renders campaign results in table, ids, json, and sarif
// formats. The table/summary shape and its color/duration conventions
// are ported from this package's own prior reportStatus (killed/lived
// counters, durafmt-formatted elapsed time, fatih/color status coloring);
// the ids/json/sarif renderers are new, since the original only emitted
// a table and one custom JSON shape.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"github.com/fatih/color"
	"github.com/hako/durafmt"

	"github.com/trailofbits/mewt/internal/domain"
)

var (
	fgGreen  = color.New(color.FgGreen).SprintFunc()
	fgRed    = color.New(color.FgRed).SprintFunc()
	fgYellow = color.New(color.FgYellow).SprintFunc()
	fgGray   = color.New(color.FgHiBlack).SprintFunc()
)

// Table writes a human-readable summary: per-status counts, per-slug
// catch rate, and elapsed wall time.
func Table(w io.Writer, summary domain.CampaignSummary) error {
	elapsed := durafmt.Parse(summary.Elapsed).LimitFirstN(2)

	caught := summary.ByStatus[domain.StatusTestFail]
	uncaught := summary.ByStatus[domain.StatusUncaught]
	skipped := summary.ByStatus[domain.StatusSkipped]
	buildFail := summary.ByStatus[domain.StatusBuildFail]
	timeout := summary.ByStatus[domain.StatusTimeout]

	fmt.Fprintf(w, "\nMutation testing completed in %s\n", elapsed.String())
	fmt.Fprintf(w, "Total mutants: %d\n", summary.Total)
	fmt.Fprintf(w, "Caught: %s, Uncaught: %s, Skipped: %s\n", fgGreen(caught), fgRed(uncaught), fgGray(skipped))
	fmt.Fprintf(w, "Timed out: %s, Build failed: %s\n", fgYellow(timeout), fgYellow(buildFail))

	eligible := caught + uncaught
	if eligible > 0 {
		fmt.Fprintf(w, "Catch rate: %.2f%%\n", float64(caught)/float64(eligible)*100)
	}

	slugs := make([]string, 0, len(summary.BySlug))
	for slug := range summary.BySlug {
		slugs = append(slugs, slug)
	}
	sort.Strings(slugs)

	if len(slugs) > 0 {
		fmt.Fprintln(w, "\nBy mutation type:")
		for _, slug := range slugs {
			ss := summary.BySlug[slug]
			fmt.Fprintf(w, "  %-6s caught %d/%d (%.1f%%)\n", slug, ss.Caught, ss.Eligible, ss.CatchRate()*100)
		}
	}

	return nil
}

// IDs writes one mutant id per line, for piping into `mewt test
// --ids-file` to retest a specific subset.
func IDs(w io.Writer, views []domain.MutantView) error {
	for _, v := range views {
		if _, err := fmt.Fprintln(w, v.Mutant.ID); err != nil {
			return err
		}
	}
	return nil
}

// jsonOutcome is the JSON shape for one mutant, including its owning
// target path and line for external tooling.
type jsonOutcome struct {
	ID     int64  `json:"id"`
	Target string `json:"target"`
	Slug   string `json:"slug"`
	Line   uint32 `json:"line"`
	Status string `json:"status,omitempty"`
	Output string `json:"output,omitempty"`
}

type jsonResult struct {
	Total    int            `json:"total"`
	ByStatus map[string]int `json:"by_status"`
	Mutants  []jsonOutcome  `json:"mutants"`
}

// JSON writes the campaign summary and every mutant view as JSON.
func JSON(w io.Writer, summary domain.CampaignSummary, views []domain.MutantView) error {
	result := jsonResult{
		Total:    summary.Total,
		ByStatus: map[string]int{},
		Mutants:  make([]jsonOutcome, 0, len(views)),
	}
	for status, n := range summary.ByStatus {
		result.ByStatus[string(status)] = n
	}
	for _, v := range views {
		jo := jsonOutcome{
			ID:     v.Mutant.ID,
			Target: v.Target.Path,
			Slug:   v.Mutant.Slug,
			Line:   v.Mutant.LineOffset + 1,
		}
		if v.Outcome != nil {
			jo.Status = string(v.Outcome.Status)
			jo.Output = v.Outcome.Output
		}
		result.Mutants = append(result.Mutants, jo)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}
