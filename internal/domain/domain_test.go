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

package domain_test

import (
	"testing"

	"github.com/trailofbits/mewt/internal/domain"
)

func TestStatus_EligibleAndCaught(t *testing.T) {
	testCases := []struct {
		status   domain.Status
		eligible bool
		caught   bool
	}{
		{domain.StatusTestFail, true, true},
		{domain.StatusUncaught, true, false},
		{domain.StatusTimeout, false, false},
		{domain.StatusSkipped, false, false},
		{domain.StatusBuildFail, false, false},
	}
	for _, tc := range testCases {
		if got := tc.status.Eligible(); got != tc.eligible {
			t.Errorf("%s.Eligible() = %v, want %v", tc.status, got, tc.eligible)
		}
		if got := tc.status.Caught(); got != tc.caught {
			t.Errorf("%s.Caught() = %v, want %v", tc.status, got, tc.caught)
		}
	}
}

func TestSeverityStats_CatchRate(t *testing.T) {
	if rate := (domain.SeverityStats{}).CatchRate(); rate != 0 {
		t.Errorf("expected CatchRate 0 with no eligible mutants, got %v", rate)
	}

	s := domain.SeverityStats{Eligible: 4, Caught: 3}
	if rate := s.CatchRate(); rate != 0.75 {
		t.Errorf("expected CatchRate 0.75, got %v", rate)
	}
}
