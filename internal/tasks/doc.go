// package tasks orchestrates the daily album checks.
//
// The core abstraction is CheckEngine, which runs the new-albums window
// check and the release-date anniversary check as independent steps and
// forwards formatted notifications. The engine is synchronous and
// side-effect scoped: it assumes nothing about the caller's threading
// model, and no failure inside a check is fatal to the hosting process.
package tasks
