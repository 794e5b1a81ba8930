// SPDX-License-Identifier: MIT
// Copyright (c) 2026 patterncrush
// Source: github.com/patterncrush/crush

/*
Package crush discovers repeated substrings in a short source text and
emits a self-extracting artefact: a packed literal plus a tiny decoder that
reverses the substitutions at run time.

The package is not a general-purpose compressor. It targets inputs of a
few hundred to a few thousand bytes and produces decoders that rely on a
specific dynamic-language runtime's string/regex primitives; nothing here
streams, and the whole input is expected to fit comfortably in memory.

# Pack

Options may be nil (defaults to the beam strategy, default weights):

	results, err := crush.Pack(source, nil)

To pick a strategy and tune the search:

	results, err := crush.Pack(source, &crush.PackerOptions{
		Strategy:     crush.StrategyBeam,
		BeamWidth:    5,
		BranchFactor: 20,
	})

Each returned crush.PackerData carries the replacement list that was found
and a two-stage result: Result[0] is the packed literal, and Result[1] is
the complete decoder artefact, whose Details hold the verification report.

# Digit variant, synchronous and asynchronous

The digit-token strategy refuses any input containing a decimal digit. It
can run synchronously like the others, or be handed to a background
worker that reports progress:

	handle := crush.PackDigitAsync(source, opts)
	for msg := range handle.Progress() {
		...
	}
	result := <-handle.Done()
*/
package crush
