// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


// Package segment splits extracted document text into bounded-size
// chunks suitable for independent embedding.
//
// The splitter is a pure function: deterministic, no side effects,
// testable in isolation. Text is divided into sentence-like units at
// boundaries following '.', '?' or '!' plus whitespace, then units are
// greedily accumulated into chunks up to a soft size cap.
package segment

import (
	"strings"
	"unicode"
)

// DefaultMaxChunkChars is the default soft cap on chunk length.
const DefaultMaxChunkChars = 1000

// Split divides text into an ordered sequence of non-empty chunks.
//
// Consecutive sentence units are joined with a single space; whenever
// appending the next unit would push the running chunk past maxChars,
// the running chunk is emitted and the unit starts a new one. The cap
// is a soft target: a single sentence longer than maxChars is emitted
// whole, never split mid-sentence. Empty or whitespace-only input
// yields no chunks.
func Split(text string, maxChars int) []string {
	if maxChars <= 0 {
		maxChars = DefaultMaxChunkChars
	}

	var chunks []string
	var current strings.Builder

	for _, unit := range sentenceUnits(text) {
		if current.Len() == 0 {
			current.WriteString(unit)
			continue
		}
		if current.Len()+1+len(unit) > maxChars {
			chunks = append(chunks, current.String())
			current.Reset()
			current.WriteString(unit)
			continue
		}
		current.WriteByte(' ')
		current.WriteString(unit)
	}

	if current.Len() > 0 {
		chunks = append(chunks, current.String())
	}
	return chunks
}

// sentenceUnits splits text at whitespace runs that directly follow a
// sentence terminator. Terminators stay attached to their unit, and
// whitespace not preceded by a terminator is preserved inside units.
// Units are trimmed; whitespace-only units are dropped.
func sentenceUnits(text string) []string {
	var units []string
	var b strings.Builder
	prevTerminator := false

	flush := func() {
		unit := strings.TrimSpace(b.String())
		if unit != "" {
			units = append(units, unit)
		}
		b.Reset()
	}

	inBreak := false
	for _, r := range text {
		if inBreak {
			if unicode.IsSpace(r) {
				continue
			}
			inBreak = false
		}
		if unicode.IsSpace(r) && prevTerminator {
			flush()
			prevTerminator = false
			inBreak = true
			continue
		}
		b.WriteRune(r)
		prevTerminator = isTerminator(r)
	}
	flush()

	return units
}

func isTerminator(r rune) bool {
	return r == '.' || r == '?' || r == '!'
}
