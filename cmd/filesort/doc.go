// Command filesort sorts the files of a directory into category folders by
// asking an LLM provider to classify each file from its metadata.
//
// Subcommands:
//   - organize: run a pass over a directory with live progress, pause and cancel
//   - history: list journaled runs and the moves they made
//   - undo: move the files of a journaled run back
//   - logs: print or follow the run log
//   - config: create, validate, and print the configuration file
//   - doctor: check configuration and provider connectivity
//   - test-notify: send a test ntfy notification
package main
