// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the application to function:
//
//   - DocumentSource: Enumerates and reads candidate source files
//   - ExtractorRegistry: Turns file bytes into text, keyed by extension
//   - PostProcessorPipeline: Normalises and chunks document text
//   - EmbeddingService: Generates vector embeddings
//   - VectorIndex: Stores entries and answers nearest-neighbour queries
//   - LLMService: Generates the final answer
//   - ConfigStore: Application configuration
//
// # Optional Interfaces
//
// These can be nil - the application falls back to built-in defaults:
//
//   - PromptStore: Custom answer prompt templates
//   - AIConfigValidator: Connectivity checks when changing providers
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter, connector, or extractor package
package driven
