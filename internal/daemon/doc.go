// Package daemon runs the check-in batch on a schedule.
//
// Every trigger takes the run lock first, so a trigger that overlaps a batch
// still in progress (from this process or a manual "run") is skipped. With
// daemon.watch_config the schedule follows edits to the app config file.
package daemon
