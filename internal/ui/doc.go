// Package ui is the hireboard terminal board, built on Bubble Tea.
//
// The board has four views:
//
//   - Jobs: the board-ordered job list with a status filter, search and
//     paging. Jobs can be created, archived, deleted and moved.
//   - Pipeline: one column per stage for the selected job. Candidates
//     advance or step back a stage, take notes and show their timeline.
//   - Assessments: the assessment builder selection with expandable
//     sections.
//   - Logs: the tail of the client log file.
//
// Every edit goes through the mutation engine, so it shows up at once and
// rolls back if the service rejects it. The model subscribes to the state
// store and redraws on each change. The header shows pending changes, busy
// operations, the circuit breaker and whether the service is reachable.
//
// Filters, paging, the focused stage, open panels, the theme and the builder
// selection are saved to the preferences file whenever they change.
//
// # Key Bindings
//
//   - 1-4, Tab: switch views
//   - j/k, g/G: move the cursor
//   - h/l: focus the previous or next stage (pipeline), section (assessments)
//   - n: new job, a: archive or restore, D: delete, K/J: move the job up or down
//   - f: cycle the status filter, /: search, [ and ]: page
//   - enter: open the job's pipeline, or expand an assessment
//   - > and <: advance or step back a candidate, o: add a note, t: timeline
//   - S: sync now, T: next theme, ?: help, q: quit
package ui
