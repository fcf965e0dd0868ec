// Package file provides file-based implementations of driven port interfaces.
// These adapters persist data under the upfund home directory (~/.upfund).
//
// Adapters:
//   - ConfigStore: TOML-based configuration storage
//   - PromptStore: user-editable prompt templates
package file
