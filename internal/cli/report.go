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

package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/trailofbits/mewt/internal/domain"
	"github.com/trailofbits/mewt/internal/report"
)

// renderReport writes summary/views to cmd's stdout in the requested
// format: table, ids, json, or sarif.
func renderReport(cmd *cobra.Command, format string, summary domain.CampaignSummary, views []domain.MutantView) error {
	w := cmd.OutOrStdout()
	switch format {
	case "", "table":
		return report.Table(w, summary)
	case "ids":
		return report.IDs(w, views)
	case "json":
		return report.JSON(w, summary, views)
	case "sarif":
		return report.SARIF(w, views)
	default:
		return fmt.Errorf("cli: unknown format %q", format)
	}
}
