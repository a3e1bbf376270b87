// Package qc implements the three quality gates a diagram passes through.
//
//   - [CheckDefinition] runs before layout, on the logical diagram.
//   - [CheckLayout] runs after layout, on the positioned result.
//   - [CheckRender] runs after rendering, on a structural [RenderReport]
//     the renderer derives from the bytes it actually wrote.
//
// Each gate returns a [Report] of warnings and, for the few conditions that
// make further work meaningless, an error coded DUPLICATE_ID or
// DANGLING_REFERENCE. Warnings are never dropped and nothing is repaired:
// the caller decides whether warnings block a build.
package qc
