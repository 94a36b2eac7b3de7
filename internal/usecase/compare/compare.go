// Package compare computes character-level edit scripts between two prompt
// revisions and exposes them as directional highlight spans for a two-pane
// view, built on the sergi/go-diff engine.
package compare

import (
	"github.com/sergi/go-diff/diffmatchpatch"
)

// OpKind is one edit-script operation kind.
type OpKind string

const (
	OpEqual   OpKind = "equal"
	OpInsert  OpKind = "insert"
	OpDelete  OpKind = "delete"
	OpReplace OpKind = "replace"
)

// Opcode is one edit operation with half-open ranges into both texts.
type Opcode struct {
	Kind   OpKind
	StartA int
	EndA   int
	StartB int
	EndB   int
}

// Result is the full edit script between two texts. Opcodes cover both
// texts completely and in order.
type Result struct {
	A       string
	B       string
	Opcodes []Opcode
}

// SpanKind marks how one highlight span should be painted.
type SpanKind string

const (
	SpanEqual  SpanKind = "equal"
	SpanInsert SpanKind = "insert"
	SpanDelete SpanKind = "delete"
)

// Span is one contiguous highlight range taken from a single source text.
type Span struct {
	Kind  SpanKind
	Text  string
	Start int
	End   int
}

// Engine computes diffs. It is safe for concurrent use: the underlying
// diffmatchpatch instance is stateless across calls.
type Engine struct {
	dmp *diffmatchpatch.DiffMatchPatch
}

func NewEngine() *Engine {
	dmp := diffmatchpatch.New()
	dmp.DiffTimeout = 0 // accuracy over latency; inputs are editor sized
	return &Engine{dmp: dmp}
}

// Diff computes the edit script between a and b. Identical inputs yield a
// single equal opcode spanning the whole text; the result is deterministic.
func (e *Engine) Diff(a, b string) Result {
	if a == b {
		ops := []Opcode{}
		if a != "" {
			ops = append(ops, Opcode{Kind: OpEqual, StartA: 0, EndA: len(a), StartB: 0, EndB: len(b)})
		}
		return Result{A: a, B: b, Opcodes: ops}
	}
	diffs := e.dmp.DiffMain(a, b, false)
	diffs = e.dmp.DiffCleanupSemantic(diffs)
	return Result{A: a, B: b, Opcodes: toOpcodes(diffs)}
}

// toOpcodes converts diffmatchpatch runs to opcodes, folding an adjacent
// delete+insert pair into a single replace.
func toOpcodes(diffs []diffmatchpatch.Diff) []Opcode {
	var ops []Opcode
	posA, posB := 0, 0
	for i := 0; i < len(diffs); i++ {
		d := diffs[i]
		switch d.Type {
		case diffmatchpatch.DiffEqual:
			n := len(d.Text)
			ops = append(ops, Opcode{Kind: OpEqual, StartA: posA, EndA: posA + n, StartB: posB, EndB: posB + n})
			posA += n
			posB += n
		case diffmatchpatch.DiffDelete:
			nd := len(d.Text)
			if i+1 < len(diffs) && diffs[i+1].Type == diffmatchpatch.DiffInsert {
				ni := len(diffs[i+1].Text)
				ops = append(ops, Opcode{Kind: OpReplace, StartA: posA, EndA: posA + nd, StartB: posB, EndB: posB + ni})
				posA += nd
				posB += ni
				i++
				continue
			}
			ops = append(ops, Opcode{Kind: OpDelete, StartA: posA, EndA: posA + nd, StartB: posB, EndB: posB})
			posA += nd
		case diffmatchpatch.DiffInsert:
			ni := len(d.Text)
			ops = append(ops, Opcode{Kind: OpInsert, StartA: posA, EndA: posA, StartB: posB, EndB: posB + ni})
			posB += ni
		}
	}
	return ops
}

// LeftSpans renders the edit script for the left (old) pane. Deleted and
// replaced ranges are marked delete; inserts occupy no space on this side.
func LeftSpans(r Result) []Span {
	var spans []Span
	for _, op := range r.Opcodes {
		if op.StartA == op.EndA {
			continue
		}
		kind := SpanEqual
		if op.Kind == OpDelete || op.Kind == OpReplace {
			kind = SpanDelete
		}
		spans = append(spans, Span{Kind: kind, Text: r.A[op.StartA:op.EndA], Start: op.StartA, End: op.EndA})
	}
	return spans
}

// RightSpans renders the edit script for the right (new) pane. Inserted and
// replaced ranges are marked insert.
func RightSpans(r Result) []Span {
	var spans []Span
	for _, op := range r.Opcodes {
		if op.StartB == op.EndB {
			continue
		}
		kind := SpanEqual
		if op.Kind == OpInsert || op.Kind == OpReplace {
			kind = SpanInsert
		}
		spans = append(spans, Span{Kind: kind, Text: r.B[op.StartB:op.EndB], Start: op.StartB, End: op.EndB})
	}
	return spans
}
