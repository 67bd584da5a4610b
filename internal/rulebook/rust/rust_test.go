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

package rust_test

import (
	"testing"

	"github.com/trailofbits/mewt/internal/mutation"
	"github.com/trailofbits/mewt/internal/rulebook/rust"
)

func TestDescriptors_haveNoDuplicateSlugsAndAllResolve(t *testing.T) {
	book, err := rust.New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	descs := book.Descriptors()
	if err := mutation.ValidateNoDuplicateSlugs(descs); err != nil {
		t.Errorf("ValidateNoDuplicateSlugs: %v", err)
	}
	for _, d := range descs {
		if d.Description == "" {
			t.Errorf("slug %q resolved to an empty descriptor", d.Slug)
		}
	}
}

func TestGenerate_coversOneMutantPerAdvertisedSlug(t *testing.T) {
	book, err := rust.New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	source := []byte(`
fn process(a: i32, b: i32) -> bool {
    if a > b {
        assert!(a != b);
        return true;
    }
    while a < b {
        a += 1;
    }
    for _ in 0..10 {
        if a == b && b | a > 0 {
            break;
        } else {
            continue;
        }
    }
    let ok = true;
    call(a, b);
    assert_eq!(a, b);
    ok
}
`)

	candidates, err := book.Generate(source)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(candidates) == 0 {
		t.Fatal("expected at least one candidate mutant from a source file exercising every rulebook construct")
	}

	bySlug := map[string]int{}
	for _, c := range candidates {
		bySlug[c.Slug]++
		if c.OldText == c.NewText {
			t.Errorf("slug %q produced a no-op edit: %q -> %q", c.Slug, c.OldText, c.NewText)
		}
	}

	for _, want := range []string{"IF", "WF", "RZ", "AOS", "COS", "LOS", "BOS", "AS", "BL", "LC", "CR", "AI"} {
		if bySlug[want] == 0 {
			t.Errorf("expected at least one %s mutant from this source, got none (counts: %+v)", want, bySlug)
		}
	}
}

func TestGenerate_erVetoesAlreadyAssertiveStatements(t *testing.T) {
	book, err := rust.New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	source := []byte(`
fn f(x: i32) {
    assert!(x > 0);
    log(x);
}
`)
	candidates, err := book.Generate(source)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	var erTargets []string
	for _, c := range candidates {
		if c.Slug == "ER" {
			erTargets = append(erTargets, c.OldText)
		}
	}
	for _, old := range erTargets {
		if old == "assert!(x > 0);" {
			t.Errorf("expected the already-assertive statement to be vetoed from ER, got an ER mutant over %q", old)
		}
	}
}
