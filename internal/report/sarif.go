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

package report

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/trailofbits/mewt/internal/domain"
)

// SARIF 2.1.0 output, uncaught mutants only: each surviving mutant is a
// result with ruleId set to its slug and level "warning", since an
// uncaught mutant flags a test-suite gap rather than a code defect. This
// renderer has no analogue in the teacher or the rest of the example
// corpus; it is a new addition for CI/code-scanning integration.
type sarifLog struct {
	Schema  string      `json:"$schema"`
	Version string      `json:"version"`
	Runs    []sarifRun  `json:"runs"`
}

type sarifRun struct {
	Tool    sarifTool     `json:"tool"`
	Results []sarifResult `json:"results"`
}

type sarifTool struct {
	Driver sarifDriver `json:"driver"`
}

type sarifDriver struct {
	Name    string      `json:"name"`
	Version string      `json:"version"`
	Rules   []sarifRule `json:"rules"`
}

type sarifRule struct {
	ID string `json:"id"`
}

type sarifResult struct {
	RuleID  string         `json:"ruleId"`
	Level   string         `json:"level"`
	Message sarifMessage   `json:"message"`
	Locations []sarifLocation `json:"locations"`
}

type sarifMessage struct {
	Text string `json:"text"`
}

type sarifLocation struct {
	PhysicalLocation sarifPhysicalLocation `json:"physicalLocation"`
}

type sarifPhysicalLocation struct {
	ArtifactLocation sarifArtifactLocation `json:"artifactLocation"`
	Region           sarifRegion           `json:"region"`
}

type sarifArtifactLocation struct {
	URI string `json:"uri"`
}

type sarifRegion struct {
	StartLine int `json:"startLine"`
}

// SARIF writes a SARIF 2.1.0 log containing one result per uncaught
// mutant among views.
func SARIF(w io.Writer, views []domain.MutantView) error {
	rules := map[string]bool{}
	var results []sarifResult

	for _, v := range views {
		if v.Outcome == nil || v.Outcome.Status != domain.StatusUncaught {
			continue
		}
		rules[v.Mutant.Slug] = true
		results = append(results, sarifResult{
			RuleID: v.Mutant.Slug,
			Level:  "warning",
			Message: sarifMessage{
				Text: fmt.Sprintf("mutant %s survived at %s:%d", v.Mutant.Slug, v.Target.Path, v.Mutant.LineOffset+1),
			},
			Locations: []sarifLocation{{
				PhysicalLocation: sarifPhysicalLocation{
					ArtifactLocation: sarifArtifactLocation{URI: v.Target.Path},
					Region:           sarifRegion{StartLine: int(v.Mutant.LineOffset) + 1},
				},
			}},
		})
	}

	ruleList := make([]sarifRule, 0, len(rules))
	for id := range rules {
		ruleList = append(ruleList, sarifRule{ID: id})
	}

	doc := sarifLog{
		Schema:  "https://raw.githubusercontent.com/oasis-tcs/sarif-spec/master/Schemata/sarif-schema-2.1.0.json",
		Version: "2.1.0",
		Runs: []sarifRun{{
			Tool: sarifTool{Driver: sarifDriver{
				Name:    "mewt",
				Version: "0.1.0",
				Rules:   ruleList,
			}},
			Results: results,
		}},
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}
